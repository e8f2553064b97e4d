package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/seller-settlement/internal/constants"
	"github.com/seller-settlement/internal/models"
	"github.com/seller-settlement/internal/repository"

	"github.com/shopspring/decimal"
)

var (
	rateMin = decimal.Zero
	rateMax = decimal.NewFromInt(100)
)

// SettlementEligibility 可结算的订单状态与支付状态集合
type SettlementEligibility struct {
	orderStatuses   map[string]struct{}
	paymentStatuses map[string]struct{}
}

// NewSettlementEligibility 创建可结算状态集合
func NewSettlementEligibility(orderStatuses, paymentStatuses []string) SettlementEligibility {
	return SettlementEligibility{
		orderStatuses:   toStatusSet(orderStatuses),
		paymentStatuses: toStatusSet(paymentStatuses),
	}
}

// DefaultSettlementEligibility 已送达或已完成且已支付
func DefaultSettlementEligibility() SettlementEligibility {
	return NewSettlementEligibility(
		[]string{constants.OrderStatusDelivered, constants.OrderStatusCompleted},
		[]string{constants.PaymentStatusPaid},
	)
}

// Allows 判断订单状态快照是否可结算
func (e SettlementEligibility) Allows(orderStatus, paymentStatus string) bool {
	_, okOrder := e.orderStatuses[strings.ToLower(strings.TrimSpace(orderStatus))]
	_, okPayment := e.paymentStatuses[strings.ToLower(strings.TrimSpace(paymentStatus))]
	return okOrder && okPayment
}

// OrderStatuses 返回订单状态列表，用于仓储查询
func (e SettlementEligibility) OrderStatuses() []string {
	return statusSetKeys(e.orderStatuses)
}

// PaymentStatuses 返回支付状态列表，用于仓储查询
func (e SettlementEligibility) PaymentStatuses() []string {
	return statusSetKeys(e.paymentStatuses)
}

// SettlementDraft 计算结果，尚未落库
type SettlementDraft struct {
	Settlement models.Settlement
	Items      []models.SettlementItem
}

// Totals 汇总金额
func (d *SettlementDraft) Totals() repository.SettlementTotals {
	return repository.SettlementTotals{
		TotalOrderAmount:      d.Settlement.TotalOrderAmount,
		TotalCommission:       d.Settlement.TotalCommission,
		FinalSettlementAmount: d.Settlement.FinalSettlementAmount,
		ItemCount:             d.Settlement.ItemCount,
	}
}

// Empty 没有任何可结算明细
func (d *SettlementDraft) Empty() bool {
	return len(d.Items) == 0
}

// ComputeLineItem 按比例计算单个订单行的佣金与结算金额
// 佣金向下取整，结算金额恒为小计减佣金
func ComputeLineItem(line models.OrderLineItem, rate decimal.Decimal) (models.SettlementItem, error) {
	if err := validateLineItem(line); err != nil {
		return models.SettlementItem{}, err
	}
	if rate.LessThan(rateMin) || rate.GreaterThan(rateMax) {
		return models.SettlementItem{}, fmt.Errorf("%w: %s", ErrCommissionRateInvalid, rate.String())
	}

	commission := decimal.NewFromInt(line.TotalPrice).Mul(rate).Shift(-2).Floor().IntPart()

	return models.SettlementItem{
		OrderID:          line.OrderID,
		OrderItemID:      line.OrderItemID,
		OrderNo:          line.OrderNo,
		ProductName:      line.ProductName,
		SkuCode:          line.SkuCode,
		CategoryCode:     line.CategoryCode,
		Quantity:         line.Quantity,
		UnitPrice:        line.UnitPrice,
		TotalPrice:       line.TotalPrice,
		CommissionRate:   models.NewPercent(rate),
		CommissionAmount: commission,
		SettlementAmount: line.TotalPrice - commission,
		OrderCreatedAt:   line.OrderCreatedAt,
	}, nil
}

func validateLineItem(line models.OrderLineItem) error {
	if line.Quantity <= 0 || line.UnitPrice < 0 {
		return fmt.Errorf("%w: order_item=%d quantity=%d unit_price=%d",
			ErrLineItemInconsistent, line.OrderItemID, line.Quantity, line.UnitPrice)
	}
	qty := int64(line.Quantity)
	if line.UnitPrice > math.MaxInt64/qty || line.UnitPrice*qty != line.TotalPrice {
		return fmt.Errorf("%w: order_item=%d unit_price=%d quantity=%d total_price=%d",
			ErrLineItemInconsistent, line.OrderItemID, line.UnitPrice, line.Quantity, line.TotalPrice)
	}
	return nil
}

// BuildSettlement 将商家在周期内的订单行转换为结算单与明细
// 不满足状态或不在 [StartDate, EndDate) 内的订单行会被排除；没有明细时返回空草稿
func BuildSettlement(sellerID uint64, period models.SettlementPeriod, lines []models.OrderLineItem, resolver *CommissionResolver, eligibility SettlementEligibility) (*SettlementDraft, error) {
	draft := &SettlementDraft{
		Settlement: models.Settlement{
			SellerID:           sellerID,
			SettlementPeriodID: period.ID,
			Status:             constants.SettlementStatusPending,
		},
		Items: make([]models.SettlementItem, 0, len(lines)),
	}

	for _, line := range lines {
		if line.SellerID != 0 && line.SellerID != sellerID {
			continue
		}
		if !eligibility.Allows(line.OrderStatus, line.PaymentStatus) || !period.Contains(line.OrderCreatedAt) {
			continue
		}
		policy, err := resolver.Resolve(sellerID, line.CategoryCode, line.OrderCreatedAt)
		if err != nil {
			return nil, err
		}
		item, err := ComputeLineItem(line, policy.CommissionRate.Decimal)
		if err != nil {
			return nil, err
		}
		item.CommissionPolicyID = policy.ID

		draft.Items = append(draft.Items, item)
		draft.Settlement.TotalOrderAmount += item.TotalPrice
		draft.Settlement.TotalCommission += item.CommissionAmount
		draft.Settlement.FinalSettlementAmount += item.SettlementAmount
	}
	draft.Settlement.ItemCount = len(draft.Items)
	return draft, nil
}

func toStatusSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, raw := range values {
		if val := strings.ToLower(strings.TrimSpace(raw)); val != "" {
			set[val] = struct{}{}
		}
	}
	return set
}

func statusSetKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
