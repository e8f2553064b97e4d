package models

import "time"

// OrderItem 订单项表，商品信息为下单时快照
type OrderItem struct {
	ID           uint64    `gorm:"primarykey" json:"id,string"`                    // 主键
	OrderID      uint64    `gorm:"index;not null" json:"order_id,string"`          // 订单ID
	SellerID     uint64    `gorm:"index;not null" json:"seller_id,string"`         // 商家ID
	ProductName  string    `gorm:"type:varchar(255);not null" json:"product_name"` // 商品名称快照
	SkuCode      string    `gorm:"type:varchar(64);not null" json:"sku_code"`      // SKU 编码快照
	CategoryCode string    `gorm:"type:varchar(64);index" json:"category_code"`    // 类目编码
	Quantity     int       `gorm:"not null" json:"quantity"`                       // 数量
	UnitPrice    int64     `gorm:"not null;default:0" json:"unit_price"`           // 单价
	TotalPrice   int64     `gorm:"not null;default:0" json:"total_price"`          // 小计，等于单价乘数量
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                        // 创建时间
	UpdatedAt    time.Time `gorm:"index" json:"updated_at"`                        // 更新时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// OrderLineItem 参与结算的订单行，由订单项与所属订单状态快照组成
type OrderLineItem struct {
	OrderID        uint64    `json:"order_id,string"`
	OrderItemID    uint64    `json:"order_item_id,string"`
	OrderNo        string    `json:"order_no"`
	SellerID       uint64    `json:"seller_id,string"`
	ProductName    string    `json:"product_name"`
	SkuCode        string    `json:"sku_code"`
	CategoryCode   string    `json:"category_code"`
	Quantity       int       `json:"quantity"`
	UnitPrice      int64     `json:"unit_price"`
	TotalPrice     int64     `json:"total_price"`
	OrderStatus    string    `json:"order_status"`
	PaymentStatus  string    `json:"payment_status"`
	OrderCreatedAt time.Time `json:"order_created_at"`
}
