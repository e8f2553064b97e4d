package repository

import (
	"github.com/seller-settlement/internal/constants"
	"github.com/seller-settlement/internal/models"

	"gorm.io/gorm"
)

// SettlementSummaryRepository 结算周期汇总数据访问接口
type SettlementSummaryRepository interface {
	GetPeriodStatusRows(periodID uint64) ([]SettlementStatusSummaryRow, error)
	GetPeriodTopSellers(periodID uint64, limit int) ([]SettlementSellerSummaryRow, error)
}

// SettlementStatusSummaryRow 按状态聚合的结算单统计
type SettlementStatusSummaryRow struct {
	Status                string
	SettlementCount       int64
	ItemCount             int64
	TotalOrderAmount      int64
	TotalCommission       int64
	FinalSettlementAmount int64
}

// SettlementSellerSummaryRow 商家应结算金额排行
type SettlementSellerSummaryRow struct {
	SellerID              uint64
	SellerCode            string
	SellerName            string
	Status                string
	TotalOrderAmount      int64
	FinalSettlementAmount int64
}

// GormSettlementSummaryRepository GORM 结算汇总仓储
type GormSettlementSummaryRepository struct {
	db *gorm.DB
}

// NewSettlementSummaryRepository 创建结算汇总仓储
func NewSettlementSummaryRepository(db *gorm.DB) *GormSettlementSummaryRepository {
	return &GormSettlementSummaryRepository{db: db}
}

// GetPeriodStatusRows 获取周期内各状态的结算单数量与金额合计
func (r *GormSettlementSummaryRepository) GetPeriodStatusRows(periodID uint64) ([]SettlementStatusSummaryRow, error) {
	var rows []SettlementStatusSummaryRow
	if err := r.db.Model(&models.Settlement{}).
		Select(`status,
			COUNT(*) AS settlement_count,
			COALESCE(SUM(item_count), 0) AS item_count,
			COALESCE(SUM(total_order_amount), 0) AS total_order_amount,
			COALESCE(SUM(total_commission), 0) AS total_commission,
			COALESCE(SUM(final_settlement_amount), 0) AS final_settlement_amount`).
		Where("settlement_period_id = ?", periodID).
		Group("status").
		Order("status ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetPeriodTopSellers 获取周期内应结算金额最高的商家，已取消的结算单不计入
func (r *GormSettlementSummaryRepository) GetPeriodTopSellers(periodID uint64, limit int) ([]SettlementSellerSummaryRow, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []SettlementSellerSummaryRow
	if err := r.db.Table("settlements AS s").
		Select(`s.seller_id AS seller_id,
			sellers.code AS seller_code,
			sellers.name AS seller_name,
			s.status AS status,
			s.total_order_amount AS total_order_amount,
			s.final_settlement_amount AS final_settlement_amount`).
		Joins("LEFT JOIN sellers ON sellers.id = s.seller_id").
		Where("s.settlement_period_id = ? AND s.status <> ?", periodID, constants.SettlementStatusCancelled).
		Order("s.final_settlement_amount DESC, s.seller_id ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
