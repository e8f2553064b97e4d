package models

import "time"

// Seller 入驻商家
type Seller struct {
	ID           uint64    `gorm:"primarykey" json:"id,string"`                       // 主键
	Code         string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"` // 商家编码
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`            // 商家名称
	Status       string    `gorm:"type:varchar(32);not null;index" json:"status"`     // 商家状态
	ContactEmail string    `gorm:"type:varchar(255)" json:"contact_email"`            // 结算联系邮箱
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt    time.Time `gorm:"index" json:"updated_at"`                           // 更新时间
}

// TableName 指定表名
func (Seller) TableName() string {
	return "sellers"
}
