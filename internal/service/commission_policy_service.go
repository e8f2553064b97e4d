package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/seller-settlement/internal/constants"
	"github.com/seller-settlement/internal/models"
	"github.com/seller-settlement/internal/repository"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// CommissionPolicyService 佣金策略服务
type CommissionPolicyService struct {
	repo       repository.CommissionPolicyRepository
	sellerRepo repository.SellerRepository
	snapshots  *gocache.Cache
}

// NewCommissionPolicyService 创建佣金策略服务，snapshotTTL<=0 时不缓存启用策略快照
func NewCommissionPolicyService(repo repository.CommissionPolicyRepository, sellerRepo repository.SellerRepository, snapshotTTL time.Duration) *CommissionPolicyService {
	svc := &CommissionPolicyService{repo: repo, sellerRepo: sellerRepo}
	if snapshotTTL > 0 {
		svc.snapshots = gocache.New(snapshotTTL, 2*snapshotTTL)
	}
	return svc
}

// CommissionPolicyInput 创建/更新佣金策略输入
type CommissionPolicyInput struct {
	Name           string
	Scope          string
	SellerID       uint64
	CategoryCode   string
	CommissionRate decimal.Decimal
	EffectiveDate  time.Time
	IsActive       bool
	Remark         string
}

// Create 创建佣金策略
func (s *CommissionPolicyService) Create(input CommissionPolicyInput) (*models.CommissionPolicy, error) {
	policy := &models.CommissionPolicy{}
	if err := s.applyInput(policy, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(policy); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCommissionPolicyUpdateFailed, err)
	}
	s.invalidate()
	return policy, nil
}

// Update 更新佣金策略
// 已用于结算的明细保存了当时的比例快照，修改策略不影响已生成的结算单
func (s *CommissionPolicyService) Update(id uint64, input CommissionPolicyInput) (*models.CommissionPolicy, error) {
	policy, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.applyInput(policy, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(policy); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCommissionPolicyUpdateFailed, err)
	}
	s.invalidate()
	return policy, nil
}

// Deactivate 停用佣金策略
func (s *CommissionPolicyService) Deactivate(id uint64) (*models.CommissionPolicy, error) {
	policy, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !policy.IsActive {
		return policy, nil
	}
	policy.IsActive = false
	if err := s.repo.Update(policy); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCommissionPolicyUpdateFailed, err)
	}
	s.invalidate()
	return policy, nil
}

// Get 获取佣金策略
func (s *CommissionPolicyService) Get(id uint64) (*models.CommissionPolicy, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	policy, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCommissionPolicyFetchFailed, err)
	}
	if policy == nil {
		return nil, ErrNotFound
	}
	return policy, nil
}

// List 分页查询佣金策略
func (s *CommissionPolicyService) List(filter repository.CommissionPolicyListFilter) ([]models.CommissionPolicy, int64, error) {
	rows, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCommissionPolicyFetchFailed, err)
	}
	return rows, total, nil
}

// Resolver 基于 asOf 之前已生效的启用策略构建解析器
func (s *CommissionPolicyService) Resolver(asOf time.Time) (*CommissionResolver, error) {
	policies, err := s.activeSnapshot(asOf)
	if err != nil {
		return nil, err
	}
	return NewCommissionResolver(policies), nil
}

// ResolveRate 预览某个商家、类目在指定日期命中的策略
func (s *CommissionPolicyService) ResolveRate(sellerID uint64, categoryCode string, orderDate time.Time) (*models.CommissionPolicy, error) {
	if orderDate.IsZero() {
		return nil, fmt.Errorf("%w: order_date required", ErrInvalidInput)
	}
	resolver, err := s.Resolver(orderDate)
	if err != nil {
		return nil, err
	}
	return resolver.Resolve(sellerID, categoryCode, orderDate)
}

func (s *CommissionPolicyService) activeSnapshot(asOf time.Time) ([]models.CommissionPolicy, error) {
	key := asOf.UTC().Format(time.RFC3339Nano)
	if s.snapshots != nil {
		if cached, ok := s.snapshots.Get(key); ok {
			return cached.([]models.CommissionPolicy), nil
		}
	}
	policies, err := s.repo.ListActiveEffective(asOf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCommissionPolicyFetchFailed, err)
	}
	if s.snapshots != nil {
		s.snapshots.SetDefault(key, policies)
	}
	return policies, nil
}

func (s *CommissionPolicyService) invalidate() {
	if s.snapshots != nil {
		s.snapshots.Flush()
	}
}

func (s *CommissionPolicyService) applyInput(policy *models.CommissionPolicy, input CommissionPolicyInput) error {
	scope := strings.ToLower(strings.TrimSpace(input.Scope))
	categoryCode := normalizeCategoryCode(input.CategoryCode)

	switch scope {
	case constants.CommissionScopeSeller:
		if input.SellerID == 0 || categoryCode != "" {
			return fmt.Errorf("%w: seller scope requires seller_id only", ErrCommissionPolicyInvalid)
		}
		seller, err := s.sellerRepo.GetByID(input.SellerID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSellerFetchFailed, err)
		}
		if seller == nil {
			return ErrSellerNotFound
		}
	case constants.CommissionScopeCategory:
		if categoryCode == "" || input.SellerID != 0 {
			return fmt.Errorf("%w: category scope requires category_code only", ErrCommissionPolicyInvalid)
		}
	case constants.CommissionScopeGlobal:
		if categoryCode != "" || input.SellerID != 0 {
			return fmt.Errorf("%w: global scope takes no seller_id or category_code", ErrCommissionPolicyInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown scope %q", ErrCommissionPolicyInvalid, input.Scope)
	}

	if err := validateCommissionRate(input.CommissionRate); err != nil {
		return err
	}
	if input.EffectiveDate.IsZero() {
		return fmt.Errorf("%w: effective_date required", ErrCommissionPolicyInvalid)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = defaultPolicyName(scope, input.SellerID, categoryCode)
	}

	policy.Name = name
	policy.Scope = scope
	policy.SellerID = nil
	if scope == constants.CommissionScopeSeller {
		sellerID := input.SellerID
		policy.SellerID = &sellerID
	}
	policy.CategoryCode = categoryCode
	policy.CommissionRate = models.NewPercent(input.CommissionRate)
	policy.EffectiveDate = input.EffectiveDate.UTC()
	policy.IsActive = input.IsActive
	policy.Remark = strings.TrimSpace(input.Remark)
	return nil
}

func validateCommissionRate(rate decimal.Decimal) error {
	if rate.LessThan(rateMin) || rate.GreaterThan(rateMax) {
		return fmt.Errorf("%w: %s", ErrCommissionRateInvalid, rate.String())
	}
	if !rate.Equal(rate.Round(models.PercentScale)) {
		return fmt.Errorf("%w: at most %d decimal places", ErrCommissionRateInvalid, models.PercentScale)
	}
	return nil
}

func defaultPolicyName(scope string, sellerID uint64, categoryCode string) string {
	switch scope {
	case constants.CommissionScopeSeller:
		return fmt.Sprintf("seller-%d", sellerID)
	case constants.CommissionScopeCategory:
		return "category-" + categoryCode
	default:
		return "global-default"
	}
}
