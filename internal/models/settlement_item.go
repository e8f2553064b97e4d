package models

import "time"

// SettlementItem 结算明细，一条订单项对应一条
type SettlementItem struct {
	ID                 uint64    `gorm:"primarykey" json:"id,string"`                       // 主键
	SettlementID       uint64    `gorm:"not null;index" json:"settlement_id,string"`        // 结算单ID
	OrderID            uint64    `gorm:"not null;index" json:"order_id,string"`             // 订单ID
	OrderItemID        uint64    `gorm:"not null;uniqueIndex" json:"order_item_id,string"`  // 订单项ID
	OrderNo            string    `gorm:"type:varchar(64)" json:"order_no"`                  // 订单号
	ProductName        string    `gorm:"type:varchar(255);not null" json:"product_name"`    // 商品名称
	SkuCode            string    `gorm:"type:varchar(64);not null" json:"sku_code"`         // SKU 编码
	CategoryCode       string    `gorm:"type:varchar(64)" json:"category_code"`             // 类目编码
	Quantity           int       `gorm:"not null" json:"quantity"`                          // 数量
	UnitPrice          int64     `gorm:"not null" json:"unit_price"`                        // 单价
	TotalPrice         int64     `gorm:"not null" json:"total_price"`                       // 小计
	CommissionRate     Percent   `gorm:"type:decimal(5,2);not null" json:"commission_rate"` // 适用佣金比例
	CommissionAmount   int64     `gorm:"not null" json:"commission_amount"`                 // 佣金金额
	SettlementAmount   int64     `gorm:"not null" json:"settlement_amount"`                 // 结算金额
	CommissionPolicyID uint64    `gorm:"not null;index" json:"commission_policy_id,string"` // 命中的佣金策略
	OrderCreatedAt     time.Time `gorm:"not null" json:"order_created_at"`                  // 下单时间
	CreatedAt          time.Time `gorm:"index" json:"created_at"`                           // 创建时间
}

// TableName 指定表名
func (SettlementItem) TableName() string {
	return "settlement_items"
}
