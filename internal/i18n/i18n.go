package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	LocaleZhCN = "zh-CN"
	LocaleEnUS = "en-US"

	// DefaultLocale 未匹配时使用的语言
	DefaultLocale = LocaleZhCN
)

var messages = map[string]map[string]string{
	LocaleZhCN: {
		"error.bad_request":                        "请求参数错误",
		"error.not_found":                          "资源不存在",
		"error.internal":                           "服务器内部错误",
		"error.rate_limited":                       "请求过于频繁，请 %d 秒后重试",
		"error.rate_limit_unavailable":             "限流服务暂不可用",
		"error.queue_unavailable":                  "任务队列暂不可用",
		"error.seller_not_found":                   "商家不存在",
		"error.seller_fetch_failed":                "获取商家失败",
		"error.commission_policy_not_found":        "佣金策略不存在",
		"error.commission_policy_invalid":          "佣金策略参数无效",
		"error.commission_policy_unresolved":       "没有可用的佣金策略",
		"error.commission_policy_fetch_failed":     "获取佣金策略失败",
		"error.commission_policy_save_failed":      "保存佣金策略失败",
		"error.commission_rate_invalid":            "佣金比例须在 0 到 100 之间且最多两位小数",
		"error.settlement_period_not_found":        "结算周期不存在",
		"error.settlement_period_invalid":          "结算周期参数无效",
		"error.settlement_period_overlap":          "结算周期与已有周期重叠",
		"error.settlement_period_closed":           "结算周期已完成",
		"error.settlement_period_open_settlements": "结算周期内仍有未完成的结算单",
		"error.settlement_period_fetch_failed":     "获取结算周期失败",
		"error.settlement_period_save_failed":      "保存结算周期失败",
		"error.settlement_not_found":               "结算单不存在",
		"error.settlement_frozen":                  "结算单已完成或已取消，不可修改",
		"error.settlement_status_invalid":          "结算单状态不允许该操作",
		"error.settlement_reason_required":         "请填写原因",
		"error.settlement_fetch_failed":            "获取结算单失败",
		"error.settlement_update_failed":           "更新结算单失败",
		"error.settlement_generate_failed":         "生成结算单失败",
		"error.settlement_line_item_inconsistent":  "订单行金额不一致",
		"error.settlement_export_format_invalid":   "不支持的导出格式",
		"error.settlement_export_failed":           "导出结算单失败",
	},
	LocaleEnUS: {
		"error.bad_request":                        "Invalid request parameters",
		"error.not_found":                          "Resource not found",
		"error.internal":                           "Internal server error",
		"error.rate_limited":                       "Too many requests, retry in %d seconds",
		"error.rate_limit_unavailable":             "Rate limiter unavailable",
		"error.queue_unavailable":                  "Task queue unavailable",
		"error.seller_not_found":                   "Seller not found",
		"error.seller_fetch_failed":                "Failed to load seller",
		"error.commission_policy_not_found":        "Commission policy not found",
		"error.commission_policy_invalid":          "Invalid commission policy",
		"error.commission_policy_unresolved":       "No commission policy applies",
		"error.commission_policy_fetch_failed":     "Failed to load commission policy",
		"error.commission_policy_save_failed":      "Failed to save commission policy",
		"error.commission_rate_invalid":            "Commission rate must be between 0 and 100 with at most 2 decimals",
		"error.settlement_period_not_found":        "Settlement period not found",
		"error.settlement_period_invalid":          "Invalid settlement period",
		"error.settlement_period_overlap":          "Settlement period overlaps an existing period",
		"error.settlement_period_closed":           "Settlement period already completed",
		"error.settlement_period_open_settlements": "Settlement period still has open settlements",
		"error.settlement_period_fetch_failed":     "Failed to load settlement period",
		"error.settlement_period_save_failed":      "Failed to save settlement period",
		"error.settlement_not_found":               "Settlement not found",
		"error.settlement_frozen":                  "Settlement is completed or cancelled",
		"error.settlement_status_invalid":          "Settlement status does not allow this action",
		"error.settlement_reason_required":         "A reason is required",
		"error.settlement_fetch_failed":            "Failed to load settlement",
		"error.settlement_update_failed":           "Failed to update settlement",
		"error.settlement_generate_failed":         "Failed to generate settlement",
		"error.settlement_line_item_inconsistent":  "Order line amounts are inconsistent",
		"error.settlement_export_format_invalid":   "Unsupported export format",
		"error.settlement_export_failed":           "Failed to export settlement",
	},
}

// ResolveLocale 从 X-Locale 或 Accept-Language 解析语言
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	raw := strings.TrimSpace(c.GetHeader("X-Locale"))
	if raw == "" {
		raw = c.GetHeader("Accept-Language")
	}
	return NormalizeLocale(raw)
}

// NormalizeLocale 归一化语言标识
func NormalizeLocale(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if idx := strings.IndexAny(raw, ",;"); idx >= 0 {
		raw = raw[:idx]
	}
	switch {
	case strings.HasPrefix(raw, "en"):
		return LocaleEnUS
	case strings.HasPrefix(raw, "zh"):
		return LocaleZhCN
	default:
		return DefaultLocale
	}
}

// T 翻译消息，未找到时回退到默认语言，再回退到 key 本身
func T(locale, key string) string {
	if table, ok := messages[NormalizeLocale(locale)]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译并格式化消息
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
