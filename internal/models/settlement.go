package models

import "time"

// Settlement 商家结算单，每个商家每个结算周期至多一张
type Settlement struct {
	ID                    uint64     `gorm:"primarykey" json:"id,string"`                                                                // 主键
	SettlementNo          string     `gorm:"type:varchar(32);uniqueIndex;not null" json:"settlement_no"`                                 // 结算单号
	SellerID              uint64     `gorm:"not null;index;uniqueIndex:idx_settlement_seller_period" json:"seller_id,string"`            // 商家ID
	SettlementPeriodID    uint64     `gorm:"not null;index;uniqueIndex:idx_settlement_seller_period" json:"settlement_period_id,string"` // 结算周期ID
	TotalOrderAmount      int64      `gorm:"not null;default:0" json:"total_order_amount"`                                               // 订单总额
	TotalCommission       int64      `gorm:"not null;default:0" json:"total_commission"`                                                 // 平台佣金合计
	FinalSettlementAmount int64      `gorm:"not null;default:0" json:"final_settlement_amount"`                                          // 应结算金额
	ItemCount             int        `gorm:"not null;default:0" json:"item_count"`                                                       // 明细条数
	Status                string     `gorm:"type:varchar(20);not null;index" json:"status"`                                              // 结算状态
	HoldReason            string     `gorm:"type:varchar(255)" json:"hold_reason,omitempty"`                                             // 挂起原因
	CancelReason          string     `gorm:"type:varchar(255)" json:"cancel_reason,omitempty"`                                           // 取消原因
	CalculatedAt          time.Time  `json:"calculated_at"`                                                                              // 最近计算时间
	SettledAt             *time.Time `gorm:"index" json:"settled_at,omitempty"`                                                          // 完成时间
	CreatedAt             time.Time  `gorm:"index" json:"created_at"`                                                                    // 创建时间
	UpdatedAt             time.Time  `gorm:"index" json:"updated_at"`                                                                    // 更新时间

	Seller *Seller           `gorm:"foreignKey:SellerID" json:"seller,omitempty"`           // 商家
	Period *SettlementPeriod `gorm:"foreignKey:SettlementPeriodID" json:"period,omitempty"` // 结算周期
	Items  []SettlementItem  `gorm:"foreignKey:SettlementID" json:"items,omitempty"`        // 结算明细
}

// TableName 指定表名
func (Settlement) TableName() string {
	return "settlements"
}
