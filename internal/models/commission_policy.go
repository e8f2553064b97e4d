package models

import (
	"time"

	"gorm.io/gorm"
)

// CommissionPolicy 平台佣金策略，按商家 > 类目 > 全局的优先级解析
type CommissionPolicy struct {
	ID             uint64    `gorm:"primarykey" json:"id,string"`                                               // 主键
	Name           string    `gorm:"type:varchar(128);not null" json:"name"`                                    // 策略名称
	Scope          string    `gorm:"type:varchar(20);not null;index:idx_commission_policy_lookup" json:"scope"` // 作用范围 global/category/seller
	SellerID       *uint64   `gorm:"index" json:"seller_id,string,omitempty"`                                   // 商家ID（seller 范围）
	CategoryCode   string    `gorm:"type:varchar(64);index" json:"category_code,omitempty"`                     // 类目编码（category 范围）
	CommissionRate Percent   `gorm:"type:decimal(5,2);not null;default:0" json:"commission_rate"`               // 佣金比例（百分比）
	EffectiveDate  time.Time `gorm:"not null;index:idx_commission_policy_lookup" json:"effective_date"`         // 生效时间
	IsActive       bool      `gorm:"not null;index:idx_commission_policy_lookup" json:"is_active"`              // 是否启用
	Remark         string    `gorm:"type:varchar(255)" json:"remark"`                                           // 备注
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                                   // 创建时间
	UpdatedAt      time.Time `gorm:"index" json:"updated_at"`                                                   // 更新时间
}

// TableName 指定表名
func (CommissionPolicy) TableName() string {
	return "commission_policies"
}

// BeforeSave 写入前统一转换为 UTC
func (p *CommissionPolicy) BeforeSave(tx *gorm.DB) error {
	p.EffectiveDate = p.EffectiveDate.UTC()
	return nil
}
