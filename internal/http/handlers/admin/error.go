package admin

import (
	"errors"

	handlershared "github.com/seller-settlement/internal/http/handlers/shared"
	"github.com/seller-settlement/internal/http/response"
	"github.com/seller-settlement/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var commissionPolicyErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.commission_policy_not_found"},
	{target: service.ErrCommissionRateInvalid, code: response.CodeBadRequest, key: "error.commission_rate_invalid"},
	{target: service.ErrCommissionPolicyInvalid, code: response.CodeBadRequest, key: "error.commission_policy_invalid"},
	{target: service.ErrSellerNotFound, code: response.CodeBadRequest, key: "error.seller_not_found"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, key: "error.bad_request"},
}

var commissionResolveErrorRules = []mappedHandlerError{
	{target: service.ErrCommissionPolicyNotFound, code: response.CodeNotFound, key: "error.commission_policy_unresolved"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, key: "error.bad_request"},
}

var settlementPeriodErrorRules = []mappedHandlerError{
	{target: service.ErrSettlementPeriodNotFound, code: response.CodeNotFound, key: "error.settlement_period_not_found"},
	{target: service.ErrSettlementPeriodInvalid, code: response.CodeBadRequest, key: "error.settlement_period_invalid"},
	{target: service.ErrSettlementPeriodOverlap, code: response.CodeConflict, key: "error.settlement_period_overlap"},
	{target: service.ErrSettlementPeriodClosed, code: response.CodeConflict, key: "error.settlement_period_closed"},
	{target: service.ErrSettlementPeriodHasOpenSettlements, code: response.CodeConflict, key: "error.settlement_period_open_settlements"},
}

var settlementErrorRules = []mappedHandlerError{
	{target: service.ErrSettlementNotFound, code: response.CodeNotFound, key: "error.settlement_not_found"},
	{target: service.ErrSettlementFrozen, code: response.CodeConflict, key: "error.settlement_frozen"},
	{target: service.ErrSettlementStatusInvalid, code: response.CodeConflict, key: "error.settlement_status_invalid"},
	{target: service.ErrSettlementReasonMissing, code: response.CodeBadRequest, key: "error.settlement_reason_required"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, key: "error.bad_request"},
}

var settlementGenerateErrorRules = []mappedHandlerError{
	{target: service.ErrSellerNotFound, code: response.CodeNotFound, key: "error.seller_not_found"},
	{target: service.ErrCommissionPolicyNotFound, code: response.CodeUnprocessable, key: "error.commission_policy_unresolved"},
	{target: service.ErrCommissionRateInvalid, code: response.CodeUnprocessable, key: "error.commission_rate_invalid"},
	{target: service.ErrLineItemInconsistent, code: response.CodeUnprocessable, key: "error.settlement_line_item_inconsistent"},
	{target: service.ErrQueueUnavailable, code: response.CodeUnavailable, key: "error.queue_unavailable"},
}

var settlementExportErrorRules = []mappedHandlerError{
	{target: service.ErrExportFormatInvalid, code: response.CodeBadRequest, key: "error.settlement_export_format_invalid"},
	{target: service.ErrSettlementNotFound, code: response.CodeNotFound, key: "error.settlement_not_found"},
}

func respondCommissionPolicyError(c *gin.Context, err error, fallbackKey string) {
	respondWithMappedError(c, err, commissionPolicyErrorRules, response.CodeInternal, fallbackKey)
}

func respondSettlementPeriodError(c *gin.Context, err error, fallbackKey string) {
	respondWithMappedError(c, err, settlementPeriodErrorRules, response.CodeInternal, fallbackKey)
}

func respondSettlementError(c *gin.Context, err error, fallbackKey string) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(settlementErrorRules, settlementPeriodErrorRules, settlementGenerateErrorRules), response.CodeInternal, fallbackKey)
}

func respondSettlementGenerateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(settlementPeriodErrorRules, settlementGenerateErrorRules, settlementErrorRules), response.CodeInternal, "error.settlement_generate_failed")
}

func respondSettlementExportError(c *gin.Context, err error) {
	respondWithMappedError(c, err, settlementExportErrorRules, response.CodeInternal, "error.settlement_export_failed")
}
