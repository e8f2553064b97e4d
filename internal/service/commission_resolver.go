package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/seller-settlement/internal/constants"
	"github.com/seller-settlement/internal/models"
)

const (
	tierSeller = iota
	tierCategory
	tierGlobal
	tierCount
)

// CommissionResolver 在一组启用策略中按 商家 > 类目 > 全局 的优先级解析佣金比例
type CommissionResolver struct {
	policies []models.CommissionPolicy
}

// NewCommissionResolver 基于策略快照创建解析器，未启用的策略会被忽略
func NewCommissionResolver(policies []models.CommissionPolicy) *CommissionResolver {
	active := make([]models.CommissionPolicy, 0, len(policies))
	for _, policy := range policies {
		if policy.IsActive {
			active = append(active, policy)
		}
	}
	return &CommissionResolver{policies: active}
}

// Resolve 返回对订单生效的策略
// 同一层级内取生效时间最近的一条，生效时间相同取ID较大者
func (r *CommissionResolver) Resolve(sellerID uint64, categoryCode string, orderDate time.Time) (*models.CommissionPolicy, error) {
	var best [tierCount]*models.CommissionPolicy
	categoryCode = normalizeCategoryCode(categoryCode)

	for i := range r.policies {
		policy := &r.policies[i]
		if !policy.IsActive || policy.EffectiveDate.After(orderDate) {
			continue
		}
		tier, ok := policyTier(policy, sellerID, categoryCode)
		if !ok {
			continue
		}
		if best[tier] == nil || newerPolicy(policy, best[tier]) {
			best[tier] = policy
		}
	}

	for _, candidate := range best {
		if candidate != nil {
			return candidate, nil
		}
	}
	return nil, fmt.Errorf("%w: seller=%d category=%s date=%s",
		ErrCommissionPolicyNotFound, sellerID, categoryCode, orderDate.Format(time.RFC3339))
}

func policyTier(policy *models.CommissionPolicy, sellerID uint64, categoryCode string) (int, bool) {
	switch policy.Scope {
	case constants.CommissionScopeSeller:
		if policy.SellerID != nil && *policy.SellerID == sellerID {
			return tierSeller, true
		}
	case constants.CommissionScopeCategory:
		if categoryCode != "" && normalizeCategoryCode(policy.CategoryCode) == categoryCode {
			return tierCategory, true
		}
	case constants.CommissionScopeGlobal:
		return tierGlobal, true
	}
	return 0, false
}

func newerPolicy(a, b *models.CommissionPolicy) bool {
	if !a.EffectiveDate.Equal(b.EffectiveDate) {
		return a.EffectiveDate.After(b.EffectiveDate)
	}
	return a.ID > b.ID
}

func normalizeCategoryCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
