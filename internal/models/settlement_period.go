package models

import (
	"time"

	"gorm.io/gorm"
)

// SettlementPeriod 结算周期，订单创建时间落在 [StartDate, EndDate) 内参与结算
type SettlementPeriod struct {
	ID             uint64     `gorm:"primarykey" json:"id,string"`                       // 主键
	Name           string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"name"` // 周期名称，如 2024-05
	StartDate      time.Time  `gorm:"not null;index" json:"start_date"`                  // 开始时间（含）
	EndDate        time.Time  `gorm:"not null;index" json:"end_date"`                    // 结束时间（不含）
	SettlementDate time.Time  `gorm:"not null" json:"settlement_date"`                   // 计划打款日
	Status         string     `gorm:"type:varchar(20);not null;index" json:"status"`     // 周期状态
	CompletedAt    *time.Time `json:"completed_at,omitempty"`                            // 完成时间
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt      time.Time  `gorm:"index" json:"updated_at"`                           // 更新时间
}

// TableName 指定表名
func (SettlementPeriod) TableName() string {
	return "settlement_periods"
}

// Contains 判断时间是否落在周期内
func (p SettlementPeriod) Contains(t time.Time) bool {
	return !t.Before(p.StartDate) && t.Before(p.EndDate)
}

// BeforeSave 写入前统一转换为 UTC
func (p *SettlementPeriod) BeforeSave(tx *gorm.DB) error {
	p.StartDate = p.StartDate.UTC()
	p.EndDate = p.EndDate.UTC()
	p.SettlementDate = p.SettlementDate.UTC()
	p.CompletedAt = utcPtr(p.CompletedAt)
	return nil
}
