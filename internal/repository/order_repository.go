package repository

import (
	"github.com/seller-settlement/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口，结算只读
type OrderRepository interface {
	Create(order *models.Order) error
	UpdateStatus(id uint64, status, paymentStatus string) error
	ListSettleableLineItems(filter LineItemFilter) ([]models.OrderLineItem, error)
	ListSettleableSellerIDs(filter LineItemFilter) ([]uint64, error)
}

// GormOrderRepository GORM 订单仓储
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create 创建订单及订单项
func (r *GormOrderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// UpdateStatus 更新订单与支付状态
func (r *GormOrderRepository) UpdateStatus(id uint64, status, paymentStatus string) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":         status,
		"payment_status": paymentStatus,
	}).Error
}

const lineItemColumns = `oi.order_id AS order_id,
	oi.id AS order_item_id,
	o.order_no AS order_no,
	o.seller_id AS seller_id,
	oi.product_name AS product_name,
	oi.sku_code AS sku_code,
	oi.category_code AS category_code,
	oi.quantity AS quantity,
	oi.unit_price AS unit_price,
	oi.total_price AS total_price,
	o.status AS order_status,
	o.payment_status AS payment_status,
	o.created_at AS order_created_at`

// ListSettleableLineItems 查询商家在周期内已履约且已支付订单的订单行
// 状态集合为空时不返回任何数据
func (r *GormOrderRepository) ListSettleableLineItems(filter LineItemFilter) ([]models.OrderLineItem, error) {
	rows := make([]models.OrderLineItem, 0)
	if len(filter.OrderStatuses) == 0 || len(filter.PaymentStatuses) == 0 {
		return rows, nil
	}
	err := r.settleableQuery(filter).
		Select(lineItemColumns).
		Where("o.seller_id = ?", filter.SellerID).
		Order("o.created_at ASC, oi.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListSettleableSellerIDs 查询周期内存在可结算订单的商家
func (r *GormOrderRepository) ListSettleableSellerIDs(filter LineItemFilter) ([]uint64, error) {
	ids := make([]uint64, 0)
	if len(filter.OrderStatuses) == 0 || len(filter.PaymentStatuses) == 0 {
		return ids, nil
	}
	err := r.settleableQuery(filter).
		Distinct("o.seller_id").
		Order("o.seller_id ASC").
		Pluck("o.seller_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *GormOrderRepository) settleableQuery(filter LineItemFilter) *gorm.DB {
	return r.db.Table("order_items AS oi").
		Joins("JOIN orders AS o ON o.id = oi.order_id").
		Where("o.created_at >= ? AND o.created_at < ?", filter.CreatedFrom.UTC(), filter.CreatedTo.UTC()).
		Where("o.status IN ?", filter.OrderStatuses).
		Where("o.payment_status IN ?", filter.PaymentStatuses)
}
