package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表，结算只读取已完成履约且已支付的订单
type Order struct {
	ID            uint64     `gorm:"primarykey" json:"id,string"`                                     // 主键
	OrderNo       string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"order_no"`           // 订单号
	SellerID      uint64     `gorm:"not null;index:idx_order_seller_created" json:"seller_id,string"` // 商家ID
	Status        string     `gorm:"type:varchar(32);not null;index" json:"status"`                   // 订单状态
	PaymentStatus string     `gorm:"type:varchar(32);not null;index" json:"payment_status"`           // 支付状态
	Currency      string     `gorm:"type:varchar(8);not null;default:'KRW'" json:"currency"`          // 币种
	TotalAmount   int64      `gorm:"not null;default:0" json:"total_amount"`                          // 订单总额（最小货币单位）
	PaidAt        *time.Time `json:"paid_at,omitempty"`                                               // 支付时间
	CreatedAt     time.Time  `gorm:"index:idx_order_seller_created" json:"created_at"`                // 下单时间
	UpdatedAt     time.Time  `gorm:"index" json:"updated_at"`                                         // 更新时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// BeforeSave 写入前统一转换为 UTC
func (o *Order) BeforeSave(tx *gorm.DB) error {
	o.PaidAt = utcPtr(o.PaidAt)
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	return nil
}
