package service

import (
	"strings"

	"github.com/seller-settlement/internal/constants"
)

// settlementTransitions 结算单状态流转表，completed 与 cancelled 为终态
var settlementTransitions = map[string][]string{
	constants.SettlementStatusPending: {
		constants.SettlementStatusCalculating,
		constants.SettlementStatusCompleted,
		constants.SettlementStatusOnHold,
		constants.SettlementStatusCancelled,
	},
	constants.SettlementStatusCalculating: {
		constants.SettlementStatusCompleted,
		constants.SettlementStatusOnHold,
		constants.SettlementStatusCancelled,
	},
	constants.SettlementStatusOnHold: {
		constants.SettlementStatusPending,
		constants.SettlementStatusCalculating,
		constants.SettlementStatusCancelled,
	},
	constants.SettlementStatusCompleted: nil,
	constants.SettlementStatusCancelled: nil,
}

// IsValidSettlementStatus 判断状态值是否合法
func IsValidSettlementStatus(status string) bool {
	_, ok := settlementTransitions[normalizeSettlementStatus(status)]
	return ok
}

// IsTerminalSettlementStatus 终态结算单的金额与状态均不可再修改
func IsTerminalSettlementStatus(status string) bool {
	switch normalizeSettlementStatus(status) {
	case constants.SettlementStatusCompleted, constants.SettlementStatusCancelled:
		return true
	}
	return false
}

// CanTransitSettlementStatus 判断状态流转是否允许
func CanTransitSettlementStatus(from, to string) bool {
	for _, next := range settlementTransitions[normalizeSettlementStatus(from)] {
		if next == normalizeSettlementStatus(to) {
			return true
		}
	}
	return false
}

// settlementSourceStatuses 返回可以流转到 to 的全部来源状态
func settlementSourceStatuses(to string) []string {
	to = normalizeSettlementStatus(to)
	sources := make([]string, 0, 3)
	for _, from := range settlementStatusOrder {
		for _, next := range settlementTransitions[from] {
			if next == to {
				sources = append(sources, from)
				break
			}
		}
	}
	return sources
}

// openSettlementStatuses 非终态状态
func openSettlementStatuses() []string {
	return []string{
		constants.SettlementStatusPending,
		constants.SettlementStatusCalculating,
		constants.SettlementStatusOnHold,
	}
}

var settlementStatusOrder = []string{
	constants.SettlementStatusPending,
	constants.SettlementStatusCalculating,
	constants.SettlementStatusOnHold,
	constants.SettlementStatusCompleted,
	constants.SettlementStatusCancelled,
}

func normalizeSettlementStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}
