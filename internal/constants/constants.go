package constants

// 订单状态常量
const (
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusPaid           = "paid"
	OrderStatusFulfilling     = "fulfilling"
	OrderStatusDelivered      = "delivered"
	OrderStatusCompleted      = "completed"
	OrderStatusCanceled       = "canceled"
	OrderStatusRefunded       = "refunded"
)

// 订单支付状态常量
const (
	PaymentStatusUnpaid            = "unpaid"
	PaymentStatusPaid              = "paid"
	PaymentStatusPartiallyRefunded = "partially_refunded"
	PaymentStatusRefunded          = "refunded"
)

// 商家状态常量
const (
	SellerStatusActive    = "active"
	SellerStatusSuspended = "suspended"
	SellerStatusClosed    = "closed"
)

// 佣金策略作用范围
const (
	CommissionScopeGlobal   = "global"
	CommissionScopeCategory = "category"
	CommissionScopeSeller   = "seller"
)

// 结算周期状态
const (
	SettlementPeriodStatusPreparing = "preparing"
	SettlementPeriodStatusCompleted = "completed"
)

// 结算单状态
const (
	SettlementStatusPending     = "pending"
	SettlementStatusCalculating = "calculating"
	SettlementStatusCompleted   = "completed"
	SettlementStatusOnHold      = "on_hold"
	SettlementStatusCancelled   = "cancelled"
)

// 结算生成结果
const (
	SettlementOutcomeCreated       = "created"
	SettlementOutcomeRecalculated  = "recalculated"
	SettlementOutcomeSkippedExists = "skipped_exists"
	SettlementOutcomeSkippedEmpty  = "skipped_empty"
	SettlementOutcomeSkippedBusy   = "skipped_busy"
	SettlementOutcomeFailed        = "failed"
)

// 结算事件路由键
const (
	EventSettlementCreated       = "settlement.created"
	EventSettlementRecalculated  = "settlement.recalculated"
	EventSettlementStatusChanged = "settlement.status_changed"
)

// 结算单导出格式
const (
	ExportFormatXLSX = "xlsx"
	ExportFormatPDF  = "pdf"
)

// 异步任务与队列
const (
	QueueDefault                 = "default"
	QueueCritical                = "critical"
	TaskSettlementGeneratePeriod = "settlement:generate_period"
	TaskSettlementGenerateSeller = "settlement:generate_seller"
	TaskSettlementMonthlyClose   = "settlement:monthly_close"
)
