package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/seller-settlement/internal/constants"
	"github.com/seller-settlement/internal/models"

	"gorm.io/gorm"
)

// SettlementPeriodRepository 结算周期数据访问接口
type SettlementPeriodRepository interface {
	GetByID(id uint64) (*models.SettlementPeriod, error)
	GetByName(name string) (*models.SettlementPeriod, error)
	Create(period *models.SettlementPeriod) error
	List(filter SettlementPeriodListFilter) ([]models.SettlementPeriod, int64, error)
	HasOverlap(start, end time.Time) (bool, error)
	MarkCompleted(id uint64, completedAt time.Time) error
}

// GormSettlementPeriodRepository GORM 结算周期仓储
type GormSettlementPeriodRepository struct {
	db *gorm.DB
}

// NewSettlementPeriodRepository 创建结算周期仓储
func NewSettlementPeriodRepository(db *gorm.DB) *GormSettlementPeriodRepository {
	return &GormSettlementPeriodRepository{db: db}
}

// GetByID 按ID获取结算周期
func (r *GormSettlementPeriodRepository) GetByID(id uint64) (*models.SettlementPeriod, error) {
	var period models.SettlementPeriod
	if err := r.db.First(&period, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

// GetByName 按名称获取结算周期
func (r *GormSettlementPeriodRepository) GetByName(name string) (*models.SettlementPeriod, error) {
	var period models.SettlementPeriod
	if err := r.db.Where("name = ?", strings.TrimSpace(name)).First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

// Create 创建结算周期
func (r *GormSettlementPeriodRepository) Create(period *models.SettlementPeriod) error {
	return r.db.Create(period).Error
}

// List 分页查询结算周期
func (r *GormSettlementPeriodRepository) List(filter SettlementPeriodListFilter) ([]models.SettlementPeriod, int64, error) {
	query := r.db.Model(&models.SettlementPeriod{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	return countAndFind[models.SettlementPeriod](query, filter.Page, filter.PageSize, "start_date DESC, id DESC")
}

// HasOverlap 判断 [start, end) 是否与已有周期重叠
func (r *GormSettlementPeriodRepository) HasOverlap(start, end time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.SettlementPeriod{}).
		Where("start_date < ? AND end_date > ?", end.UTC(), start.UTC()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkCompleted 将准备中的周期标记为完成
func (r *GormSettlementPeriodRepository) MarkCompleted(id uint64, completedAt time.Time) error {
	result := r.db.Model(&models.SettlementPeriod{}).
		Where("id = ? AND status <> ?", id, constants.SettlementPeriodStatusCompleted).
		Updates(map[string]interface{}{
			"status":       constants.SettlementPeriodStatusCompleted,
			"completed_at": completedAt,
			"updated_at":   completedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStateConflict
	}
	return nil
}
