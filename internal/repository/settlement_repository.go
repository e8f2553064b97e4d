package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/seller-settlement/internal/constants"
	"github.com/seller-settlement/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const settlementItemBatchSize = 200

// SettlementRepository 结算单数据访问接口
type SettlementRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) SettlementRepository

	GetByID(id uint64) (*models.Settlement, error)
	GetDetail(id uint64) (*models.Settlement, error)
	GetByIDForUpdate(id uint64) (*models.Settlement, error)
	GetBySellerAndPeriod(sellerID, periodID uint64) (*models.Settlement, error)
	CreateWithItems(settlement *models.Settlement, items []models.SettlementItem) error
	ReplaceItems(id uint64, allowedStatuses []string, totals SettlementTotals, items []models.SettlementItem, now time.Time) error
	UpdateStatus(id uint64, fromStatuses []string, toStatus string, updates map[string]interface{}) error
	List(filter SettlementListFilter) ([]models.Settlement, int64, error)
	ListItems(settlementID uint64) ([]models.SettlementItem, error)
	CountByPeriodStatuses(periodID uint64, statuses []string) (int64, error)
}

// GormSettlementRepository GORM 结算单仓储
type GormSettlementRepository struct {
	db *gorm.DB
}

// NewSettlementRepository 创建结算单仓储
func NewSettlementRepository(db *gorm.DB) *GormSettlementRepository {
	return &GormSettlementRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSettlementRepository) WithTx(tx *gorm.DB) SettlementRepository {
	if tx == nil {
		return r
	}
	return &GormSettlementRepository{db: tx}
}

// Transaction 执行事务
func (r *GormSettlementRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 按ID获取结算单（不含明细）
func (r *GormSettlementRepository) GetByID(id uint64) (*models.Settlement, error) {
	var settlement models.Settlement
	if err := r.db.First(&settlement, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settlement, nil
}

// GetDetail 获取结算单及商家、周期、明细
func (r *GormSettlementRepository) GetDetail(id uint64) (*models.Settlement, error) {
	var settlement models.Settlement
	err := r.db.
		Preload("Seller").
		Preload("Period").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_created_at ASC, id ASC")
		}).
		First(&settlement, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settlement, nil
}

// GetByIDForUpdate 加行锁获取结算单，需在事务内调用
func (r *GormSettlementRepository) GetByIDForUpdate(id uint64) (*models.Settlement, error) {
	var settlement models.Settlement
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&settlement, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settlement, nil
}

// GetBySellerAndPeriod 获取商家在某周期的结算单
func (r *GormSettlementRepository) GetBySellerAndPeriod(sellerID, periodID uint64) (*models.Settlement, error) {
	var settlement models.Settlement
	err := r.db.Where("seller_id = ? AND settlement_period_id = ?", sellerID, periodID).First(&settlement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settlement, nil
}

// CreateWithItems 原子创建结算单及全部明细，(seller_id, settlement_period_id) 冲突时整体回滚
func (r *GormSettlementRepository) CreateWithItems(settlement *models.Settlement, items []models.SettlementItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(settlement).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].SettlementID = settlement.ID
		}
		return tx.CreateInBatches(items, settlementItemBatchSize).Error
	})
}

// ReplaceItems 重算时在同一事务内替换明细与汇总并置为 calculating，仅当结算单处于 allowedStatuses 时生效
func (r *GormSettlementRepository) ReplaceItems(id uint64, allowedStatuses []string, totals SettlementTotals, items []models.SettlementItem, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Settlement{}).
			Where("id = ? AND status IN ?", id, allowedStatuses).
			Updates(map[string]interface{}{
				"status":                  constants.SettlementStatusCalculating,
				"total_order_amount":      totals.TotalOrderAmount,
				"total_commission":        totals.TotalCommission,
				"final_settlement_amount": totals.FinalSettlementAmount,
				"item_count":              totals.ItemCount,
				"calculated_at":           now,
				"updated_at":              now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStateConflict
		}
		if err := tx.Where("settlement_id = ?", id).Delete(&models.SettlementItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].ID = 0
			items[i].SettlementID = id
		}
		return tx.CreateInBatches(items, settlementItemBatchSize).Error
	})
}

// UpdateStatus 条件更新状态，仅当当前状态属于 fromStatuses 时生效
func (r *GormSettlementRepository) UpdateStatus(id uint64, fromStatuses []string, toStatus string, updates map[string]interface{}) error {
	values := map[string]interface{}{"status": toStatus}
	for key, val := range updates {
		values[key] = val
	}
	result := r.db.Model(&models.Settlement{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStateConflict
	}
	return nil
}

// List 分页查询结算单
func (r *GormSettlementRepository) List(filter SettlementListFilter) ([]models.Settlement, int64, error) {
	query := r.db.Model(&models.Settlement{})
	if filter.SellerID > 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.SettlementPeriodID > 0 {
		query = query.Where("settlement_period_id = ?", filter.SettlementPeriodID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if no := strings.TrimSpace(filter.SettlementNo); no != "" {
		query = query.Where("settlement_no = ?", no)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", filter.CreatedFrom.UTC())
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at < ?", filter.CreatedTo.UTC())
	}
	return countAndFind[models.Settlement](query, filter.Page, filter.PageSize, "id DESC", "Seller")
}

// ListItems 查询结算明细
func (r *GormSettlementRepository) ListItems(settlementID uint64) ([]models.SettlementItem, error) {
	var items []models.SettlementItem
	err := r.db.Where("settlement_id = ?", settlementID).
		Order("order_created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// CountByPeriodStatuses 统计周期内处于指定状态的结算单数量
func (r *GormSettlementRepository) CountByPeriodStatuses(periodID uint64, statuses []string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Settlement{}).
		Where("settlement_period_id = ? AND status IN ?", periodID, statuses).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
