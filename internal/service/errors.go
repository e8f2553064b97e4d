package service

import "errors"

// 通用错误
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// 商家相关错误
var (
	ErrSellerNotFound    = errors.New("seller not found")
	ErrSellerFetchFailed = errors.New("seller fetch failed")
)

// 佣金策略相关错误
var (
	ErrCommissionPolicyNotFound     = errors.New("no commission policy resolves")
	ErrCommissionPolicyInvalid      = errors.New("commission policy invalid")
	ErrCommissionPolicyFetchFailed  = errors.New("commission policy fetch failed")
	ErrCommissionPolicyUpdateFailed = errors.New("commission policy update failed")
	ErrCommissionRateInvalid        = errors.New("commission rate must be between 0 and 100")
)

// 结算周期相关错误
var (
	ErrSettlementPeriodNotFound           = errors.New("settlement period not found")
	ErrSettlementPeriodInvalid            = errors.New("settlement period invalid")
	ErrSettlementPeriodOverlap            = errors.New("settlement period overlaps an existing period")
	ErrSettlementPeriodClosed             = errors.New("settlement period already completed")
	ErrSettlementPeriodHasOpenSettlements = errors.New("settlement period has open settlements")
	ErrSettlementPeriodFetchFailed        = errors.New("settlement period fetch failed")
	ErrSettlementPeriodUpdateFailed       = errors.New("settlement period update failed")
)

// 结算单相关错误
var (
	ErrSettlementNotFound      = errors.New("settlement not found")
	ErrSettlementFrozen        = errors.New("settlement is completed or cancelled")
	ErrSettlementStatusInvalid = errors.New("settlement status transition not allowed")
	ErrSettlementReasonMissing = errors.New("settlement reason required")
	ErrSettlementFetchFailed   = errors.New("settlement fetch failed")
	ErrSettlementUpdateFailed  = errors.New("settlement update failed")
	ErrLineItemInconsistent    = errors.New("line item total does not equal unit price times quantity")
	ErrLineItemFetchFailed     = errors.New("line item fetch failed")
	ErrExportFormatInvalid     = errors.New("export format not supported")
	ErrExportFailed            = errors.New("settlement export failed")
	ErrQueueUnavailable        = errors.New("queue unavailable")
)
