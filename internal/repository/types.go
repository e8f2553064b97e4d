package repository

import "time"

// SellerListFilter 查询商家列表的过滤条件
type SellerListFilter struct {
	Page     int
	PageSize int
	Status   string
	Keyword  string
}

// LineItemFilter 查询可结算订单行的条件，订单创建时间取 [CreatedFrom, CreatedTo)
type LineItemFilter struct {
	SellerID        uint64
	CreatedFrom     time.Time
	CreatedTo       time.Time
	OrderStatuses   []string
	PaymentStatuses []string
}

// CommissionPolicyListFilter 查询佣金策略列表的过滤条件
type CommissionPolicyListFilter struct {
	Page         int
	PageSize     int
	Scope        string
	SellerID     uint64
	CategoryCode string
	IsActive     *bool
}

// SettlementPeriodListFilter 查询结算周期列表的过滤条件
type SettlementPeriodListFilter struct {
	Page     int
	PageSize int
	Status   string
}

// SettlementListFilter 查询结算单列表的过滤条件
type SettlementListFilter struct {
	Page               int
	PageSize           int
	SellerID           uint64
	SettlementPeriodID uint64
	Status             string
	SettlementNo       string
	CreatedFrom        *time.Time
	CreatedTo          *time.Time
}

// SettlementTotals 结算单汇总金额
type SettlementTotals struct {
	TotalOrderAmount      int64
	TotalCommission       int64
	FinalSettlementAmount int64
	ItemCount             int
}
