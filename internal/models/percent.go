package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// PercentScale 佣金比例保留的小数位数
const PercentScale = 2

// Percent 百分比类型，5.00 表示 5%
type Percent struct {
	decimal.Decimal
}

// NewPercent 从 decimal 创建百分比
func NewPercent(value decimal.Decimal) Percent {
	return Percent{Decimal: value.Round(PercentScale)}
}

// MustPercent 从字符串创建百分比，仅用于常量与测试数据
func MustPercent(raw string) Percent {
	return Percent{Decimal: decimal.RequireFromString(raw).Round(PercentScale)}
}

// MarshalJSON 统一输出 2 位小数的字符串
func (p Percent) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON 解析百分比（字符串或数字），不做舍入以便校验精度
func (p *Percent) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		p.Decimal = d
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return err
	}
	p.Decimal = d
	return nil
}

// Value 用于数据库写入
func (p Percent) Value() (driver.Value, error) {
	return p.Decimal.Round(PercentScale).Value()
}

// Scan 用于数据库读取
func (p *Percent) Scan(value interface{}) error {
	if err := p.Decimal.Scan(value); err != nil {
		return err
	}
	p.Decimal = p.Decimal.Round(PercentScale)
	return nil
}

// String 返回 2 位小数格式
func (p Percent) String() string {
	return p.Decimal.Round(PercentScale).StringFixed(PercentScale)
}
