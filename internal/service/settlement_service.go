package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/seller-settlement/internal/constants"
	"github.com/seller-settlement/internal/logger"
	"github.com/seller-settlement/internal/metrics"
	"github.com/seller-settlement/internal/models"
	"github.com/seller-settlement/internal/repository"

	"golang.org/x/sync/errgroup"
)

// SettlementNoGenerator 结算单号生成器
type SettlementNoGenerator interface {
	NextSettlementNo() string
}

// GenerationLocker 商家+周期生成锁，ok=false 表示其他实例正在生成
type GenerationLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), ok bool, err error)
}

// SettlementEventPublisher 结算事件投递
type SettlementEventPublisher interface {
	PublishSettlementEvent(ctx context.Context, routingKey string, settlement *models.Settlement, previousStatus string) error
}

// PeriodSummaryInvalidator 结算单变化后清除周期汇总缓存
type PeriodSummaryInvalidator interface {
	InvalidatePeriodSummary(ctx context.Context, periodID uint64)
}

// SettlementServiceOptions 结算服务可选配置
type SettlementServiceOptions struct {
	Eligibility SettlementEligibility
	Concurrency int
	LockTTL     time.Duration
	Locker      GenerationLocker
	Publisher   SettlementEventPublisher
	Summaries   PeriodSummaryInvalidator
}

// SettlementService 结算单生成与生命周期服务
type SettlementService struct {
	settlementRepo repository.SettlementRepository
	periodRepo     repository.SettlementPeriodRepository
	orderRepo      repository.OrderRepository
	sellerRepo     repository.SellerRepository
	policyService  *CommissionPolicyService
	numbers        SettlementNoGenerator
	eligibility    SettlementEligibility
	concurrency    int
	lockTTL        time.Duration
	locker         GenerationLocker
	publisher      SettlementEventPublisher
	summaries      PeriodSummaryInvalidator
	now            func() time.Time
}

// NewSettlementService 创建结算服务
func NewSettlementService(
	settlementRepo repository.SettlementRepository,
	periodRepo repository.SettlementPeriodRepository,
	orderRepo repository.OrderRepository,
	sellerRepo repository.SellerRepository,
	policyService *CommissionPolicyService,
	numbers SettlementNoGenerator,
	opts SettlementServiceOptions,
) *SettlementService {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 5 * time.Minute
	}
	if len(opts.Eligibility.orderStatuses) == 0 || len(opts.Eligibility.paymentStatuses) == 0 {
		opts.Eligibility = DefaultSettlementEligibility()
	}
	return &SettlementService{
		settlementRepo: settlementRepo,
		periodRepo:     periodRepo,
		orderRepo:      orderRepo,
		sellerRepo:     sellerRepo,
		policyService:  policyService,
		numbers:        numbers,
		eligibility:    opts.Eligibility,
		concurrency:    opts.Concurrency,
		lockTTL:        opts.LockTTL,
		locker:         opts.Locker,
		publisher:      opts.Publisher,
		summaries:      opts.Summaries,
		now:            time.Now,
	}
}

// GenerateSellerInput 单商家结算生成输入
type GenerateSellerInput struct {
	PeriodID    uint64
	SellerID    uint64
	Recalculate bool // 已存在非终态结算单时是否重算替换
}

// GeneratePeriodInput 周期结算生成输入
type GeneratePeriodInput struct {
	PeriodID    uint64
	Recalculate bool
}

// GenerationResult 单商家生成结果
type GenerationResult struct {
	SellerID     uint64 `json:"seller_id,string"`
	SettlementID uint64 `json:"settlement_id,string,omitempty"`
	Outcome      string `json:"outcome"`
	Error        string `json:"error,omitempty"`
}

// PeriodGenerationReport 周期生成汇总
type PeriodGenerationReport struct {
	PeriodID      uint64             `json:"period_id,string"`
	Sellers       int                `json:"sellers"`
	Created       int                `json:"created"`
	Recalculated  int                `json:"recalculated"`
	SkippedExists int                `json:"skipped_exists"`
	SkippedEmpty  int                `json:"skipped_empty"`
	SkippedBusy   int                `json:"skipped_busy"`
	Failed        int                `json:"failed"`
	Results       []GenerationResult `json:"results"`
}

func (r *PeriodGenerationReport) add(result GenerationResult) {
	r.Results = append(r.Results, result)
	switch result.Outcome {
	case constants.SettlementOutcomeCreated:
		r.Created++
	case constants.SettlementOutcomeRecalculated:
		r.Recalculated++
	case constants.SettlementOutcomeSkippedExists:
		r.SkippedExists++
	case constants.SettlementOutcomeSkippedEmpty:
		r.SkippedEmpty++
	case constants.SettlementOutcomeSkippedBusy:
		r.SkippedBusy++
	default:
		r.Failed++
	}
}

// GenerateForSeller 为单个商家生成结算单
// 配置错误与数据不一致会返回错误；已存在结算单视为跳过而非失败
func (s *SettlementService) GenerateForSeller(ctx context.Context, input GenerateSellerInput) (*GenerationResult, error) {
	period, err := s.openPeriod(input.PeriodID)
	if err != nil {
		return nil, err
	}
	seller, err := s.sellerRepo.GetByID(input.SellerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSellerFetchFailed, err)
	}
	if seller == nil {
		return nil, ErrSellerNotFound
	}
	resolver, err := s.policyService.Resolver(period.EndDate)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, period, seller.ID, resolver, input.Recalculate)
}

// GenerateForPeriod 为周期内所有存在可结算订单的商家生成结算单，商家之间并行处理
// 单个商家失败不会中断其他商家，失败明细记录在报告中
func (s *SettlementService) GenerateForPeriod(ctx context.Context, input GeneratePeriodInput) (*PeriodGenerationReport, error) {
	period, err := s.openPeriod(input.PeriodID)
	if err != nil {
		return nil, err
	}
	sellerIDs, err := s.orderRepo.ListSettleableSellerIDs(s.lineItemFilter(0, period))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLineItemFetchFailed, err)
	}
	if input.Recalculate {
		sellerIDs, err = s.withOpenSettlementSellers(period.ID, sellerIDs)
		if err != nil {
			return nil, err
		}
	}
	resolver, err := s.policyService.Resolver(period.EndDate)
	if err != nil {
		return nil, err
	}

	report := &PeriodGenerationReport{PeriodID: period.ID, Sellers: len(sellerIDs)}
	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for _, sellerID := range sellerIDs {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			result, genErr := s.generate(groupCtx, period, sellerID, resolver, input.Recalculate)
			if genErr != nil {
				result.Error = genErr.Error()
			}
			mu.Lock()
			report.add(*result)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return report, err
	}

	logger.Infow("settlement_period_generated",
		"period_id", period.ID,
		"sellers", report.Sellers,
		"created", report.Created,
		"recalculated", report.Recalculated,
		"skipped_exists", report.SkippedExists,
		"skipped_empty", report.SkippedEmpty,
		"skipped_busy", report.SkippedBusy,
		"failed", report.Failed,
	)
	return report, nil
}

func (s *SettlementService) generate(ctx context.Context, period *models.SettlementPeriod, sellerID uint64, resolver *CommissionResolver, recalculate bool) (result *GenerationResult, err error) {
	startedAt := time.Now()
	result = &GenerationResult{SellerID: sellerID}
	defer func() {
		if err != nil {
			result.Outcome = constants.SettlementOutcomeFailed
			logger.Warnw("settlement_generate_failed",
				"period_id", period.ID,
				"seller_id", sellerID,
				"error", err,
			)
		}
		metrics.ObserveGenerate(result.Outcome, time.Since(startedAt))
	}()

	if s.locker != nil {
		unlock, ok, lockErr := s.locker.TryLock(ctx, generationLockKey(sellerID, period.ID), s.lockTTL)
		if lockErr != nil {
			return result, lockErr
		}
		if !ok {
			result.Outcome = constants.SettlementOutcomeSkippedBusy
			return result, nil
		}
		defer unlock()
	}

	existing, err := s.settlementRepo.GetBySellerAndPeriod(sellerID, period.ID)
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrSettlementFetchFailed, err)
	}
	if existing != nil {
		result.SettlementID = existing.ID
		// 挂起的结算单只能由人工恢复或重算
		if !recalculate || IsTerminalSettlementStatus(existing.Status) || existing.Status == constants.SettlementStatusOnHold {
			result.Outcome = constants.SettlementOutcomeSkippedExists
			return result, nil
		}
		if _, err := s.recalculate(ctx, existing, period, resolver); err != nil {
			return result, err
		}
		result.Outcome = constants.SettlementOutcomeRecalculated
		return result, nil
	}

	draft, err := s.buildDraft(sellerID, period, resolver)
	if err != nil {
		return result, err
	}
	if draft.Empty() {
		result.Outcome = constants.SettlementOutcomeSkippedEmpty
		return result, nil
	}

	settlement := draft.Settlement
	settlement.SettlementNo = s.numbers.NextSettlementNo()
	settlement.CalculatedAt = s.now().UTC()
	if err := s.settlementRepo.CreateWithItems(&settlement, draft.Items); err != nil {
		if repository.IsUniqueViolation(err) {
			// 并发生成时另一方已写入结算单；否则是订单行已归属其他结算单
			current, getErr := s.settlementRepo.GetBySellerAndPeriod(sellerID, period.ID)
			if getErr != nil {
				return result, fmt.Errorf("%w: %v", ErrSettlementFetchFailed, getErr)
			}
			if current != nil {
				result.SettlementID = current.ID
				result.Outcome = constants.SettlementOutcomeSkippedExists
				return result, nil
			}
			return result, fmt.Errorf("%w: order item already settled elsewhere: %v", ErrLineItemInconsistent, err)
		}
		return result, fmt.Errorf("%w: %v", ErrSettlementUpdateFailed, err)
	}

	result.SettlementID = settlement.ID
	result.Outcome = constants.SettlementOutcomeCreated
	logger.Infow("settlement_created",
		"settlement_id", settlement.ID,
		"settlement_no", settlement.SettlementNo,
		"seller_id", sellerID,
		"period_id", period.ID,
		"items", settlement.ItemCount,
		"total_order_amount", settlement.TotalOrderAmount,
		"total_commission", settlement.TotalCommission,
		"final_settlement_amount", settlement.FinalSettlementAmount,
	)
	s.publish(ctx, constants.EventSettlementCreated, &settlement, "")
	return result, nil
}

// Recalculate 重新计算非终态结算单，状态进入 calculating
func (s *SettlementService) Recalculate(ctx context.Context, id uint64) (*models.Settlement, error) {
	settlement, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if IsTerminalSettlementStatus(settlement.Status) {
		return nil, ErrSettlementFrozen
	}
	period, err := s.openPeriod(settlement.SettlementPeriodID)
	if err != nil {
		return nil, err
	}
	resolver, err := s.policyService.Resolver(period.EndDate)
	if err != nil {
		return nil, err
	}
	return s.recalculate(ctx, settlement, period, resolver)
}

func (s *SettlementService) recalculate(ctx context.Context, settlement *models.Settlement, period *models.SettlementPeriod, resolver *CommissionResolver) (*models.Settlement, error) {
	previous := settlement.Status
	if IsTerminalSettlementStatus(previous) {
		return nil, ErrSettlementFrozen
	}
	if previous != constants.SettlementStatusCalculating && !CanTransitSettlementStatus(previous, constants.SettlementStatusCalculating) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrSettlementStatusInvalid, previous, constants.SettlementStatusCalculating)
	}

	// 明细计算失败时结算单保持原状态与原金额
	draft, err := s.buildDraft(settlement.SellerID, period, resolver)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	err = s.settlementRepo.ReplaceItems(settlement.ID, []string{previous}, draft.Totals(), draft.Items, now)
	if previous != constants.SettlementStatusCalculating {
		metrics.IncTransition(constants.SettlementStatusCalculating, err)
	}
	if err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			return nil, fmt.Errorf("%w: status changed concurrently", ErrSettlementStatusInvalid)
		}
		if repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: order item already settled elsewhere: %v", ErrLineItemInconsistent, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrSettlementUpdateFailed, err)
	}

	settlement.TotalOrderAmount = draft.Settlement.TotalOrderAmount
	settlement.TotalCommission = draft.Settlement.TotalCommission
	settlement.FinalSettlementAmount = draft.Settlement.FinalSettlementAmount
	settlement.ItemCount = draft.Settlement.ItemCount
	settlement.CalculatedAt = now
	settlement.UpdatedAt = now
	settlement.Status = constants.SettlementStatusCalculating

	logger.Infow("settlement_recalculated",
		"settlement_id", settlement.ID,
		"seller_id", settlement.SellerID,
		"period_id", settlement.SettlementPeriodID,
		"previous_status", previous,
		"items", settlement.ItemCount,
		"final_settlement_amount", settlement.FinalSettlementAmount,
	)
	s.publish(ctx, constants.EventSettlementRecalculated, settlement, previous)
	return settlement, nil
}

// Hold 挂起结算单等待人工处理
func (s *SettlementService) Hold(ctx context.Context, id uint64, reason string) (*models.Settlement, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrSettlementReasonMissing
	}
	return s.changeStatus(ctx, id, constants.SettlementStatusOnHold, map[string]interface{}{"hold_reason": reason})
}

// Resume 恢复挂起的结算单；recalculate=true 时直接进入重算
func (s *SettlementService) Resume(ctx context.Context, id uint64, recalculate bool) (*models.Settlement, error) {
	settlement, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if settlement.Status != constants.SettlementStatusOnHold {
		if IsTerminalSettlementStatus(settlement.Status) {
			return nil, ErrSettlementFrozen
		}
		return nil, ErrSettlementStatusInvalid
	}
	if recalculate {
		return s.Recalculate(ctx, id)
	}
	return s.changeStatus(ctx, id, constants.SettlementStatusPending, map[string]interface{}{"hold_reason": ""})
}

// Complete 完成结算单，金额冻结并记录完成时间
func (s *SettlementService) Complete(ctx context.Context, id uint64) (*models.Settlement, error) {
	now := s.now().UTC()
	settlement, err := s.changeStatus(ctx, id, constants.SettlementStatusCompleted, map[string]interface{}{"settled_at": now})
	if err != nil {
		return nil, err
	}
	metrics.AddCompletedAmounts(settlement.TotalOrderAmount, settlement.TotalCommission, settlement.FinalSettlementAmount)
	return settlement, nil
}

// Cancel 取消结算单
func (s *SettlementService) Cancel(ctx context.Context, id uint64, reason string) (*models.Settlement, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrSettlementReasonMissing
	}
	return s.changeStatus(ctx, id, constants.SettlementStatusCancelled, map[string]interface{}{"cancel_reason": reason})
}

func (s *SettlementService) changeStatus(ctx context.Context, id uint64, to string, updates map[string]interface{}) (*models.Settlement, error) {
	settlement, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	previous := settlement.Status
	if err := s.transit(settlement, to, updates); err != nil {
		return nil, err
	}
	logger.Infow("settlement_status_changed",
		"settlement_id", settlement.ID,
		"from", previous,
		"to", to,
	)
	s.publish(ctx, constants.EventSettlementStatusChanged, settlement, previous)
	return settlement, nil
}

// transit 校验并落库状态流转，成功后同步内存对象
func (s *SettlementService) transit(settlement *models.Settlement, to string, updates map[string]interface{}) (err error) {
	defer func() { metrics.IncTransition(to, err) }()

	if IsTerminalSettlementStatus(settlement.Status) {
		return ErrSettlementFrozen
	}
	if !CanTransitSettlementStatus(settlement.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrSettlementStatusInvalid, settlement.Status, to)
	}
	now := s.now().UTC()
	values := map[string]interface{}{"updated_at": now}
	for key, val := range updates {
		values[key] = val
	}
	if err := s.settlementRepo.UpdateStatus(settlement.ID, settlementSourceStatuses(to), to, values); err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			return fmt.Errorf("%w: status changed concurrently", ErrSettlementStatusInvalid)
		}
		return fmt.Errorf("%w: %v", ErrSettlementUpdateFailed, err)
	}

	settlement.Status = to
	settlement.UpdatedAt = now
	if val, ok := values["settled_at"].(time.Time); ok {
		settlement.SettledAt = &val
	}
	if val, ok := values["hold_reason"].(string); ok {
		settlement.HoldReason = val
	}
	if val, ok := values["cancel_reason"].(string); ok {
		settlement.CancelReason = val
	}
	return nil
}

// Get 获取结算单（不含明细）
func (s *SettlementService) Get(id uint64) (*models.Settlement, error) {
	if id == 0 {
		return nil, ErrSettlementNotFound
	}
	settlement, err := s.settlementRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettlementFetchFailed, err)
	}
	if settlement == nil {
		return nil, ErrSettlementNotFound
	}
	return settlement, nil
}

// GetDetail 获取结算单详情（含商家、周期、明细）
func (s *SettlementService) GetDetail(id uint64) (*models.Settlement, error) {
	if id == 0 {
		return nil, ErrSettlementNotFound
	}
	settlement, err := s.settlementRepo.GetDetail(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettlementFetchFailed, err)
	}
	if settlement == nil {
		return nil, ErrSettlementNotFound
	}
	return settlement, nil
}

// List 分页查询结算单
func (s *SettlementService) List(filter repository.SettlementListFilter) ([]models.Settlement, int64, error) {
	if filter.Status != "" && !IsValidSettlementStatus(filter.Status) {
		return nil, 0, fmt.Errorf("%w: status %q", ErrInvalidInput, filter.Status)
	}
	rows, total, err := s.settlementRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrSettlementFetchFailed, err)
	}
	return rows, total, nil
}

func (s *SettlementService) buildDraft(sellerID uint64, period *models.SettlementPeriod, resolver *CommissionResolver) (*SettlementDraft, error) {
	lines, err := s.orderRepo.ListSettleableLineItems(s.lineItemFilter(sellerID, period))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLineItemFetchFailed, err)
	}
	return BuildSettlement(sellerID, *period, lines, resolver, s.eligibility)
}

func (s *SettlementService) lineItemFilter(sellerID uint64, period *models.SettlementPeriod) repository.LineItemFilter {
	return repository.LineItemFilter{
		SellerID:        sellerID,
		CreatedFrom:     period.StartDate,
		CreatedTo:       period.EndDate,
		OrderStatuses:   s.eligibility.OrderStatuses(),
		PaymentStatuses: s.eligibility.PaymentStatuses(),
	}
}

func (s *SettlementService) openPeriod(periodID uint64) (*models.SettlementPeriod, error) {
	if periodID == 0 {
		return nil, ErrSettlementPeriodNotFound
	}
	period, err := s.periodRepo.GetByID(periodID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettlementPeriodFetchFailed, err)
	}
	if period == nil {
		return nil, ErrSettlementPeriodNotFound
	}
	if period.Status == constants.SettlementPeriodStatusCompleted {
		return nil, ErrSettlementPeriodClosed
	}
	return period, nil
}

// withOpenSettlementSellers 重算时补充已有非终态结算单但当前无可结算订单的商家
func (s *SettlementService) withOpenSettlementSellers(periodID uint64, sellerIDs []uint64) ([]uint64, error) {
	existing, _, err := s.settlementRepo.List(repository.SettlementListFilter{SettlementPeriodID: periodID})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettlementFetchFailed, err)
	}
	seen := make(map[uint64]struct{}, len(sellerIDs))
	for _, id := range sellerIDs {
		seen[id] = struct{}{}
	}
	for _, settlement := range existing {
		if IsTerminalSettlementStatus(settlement.Status) {
			continue
		}
		if _, ok := seen[settlement.SellerID]; ok {
			continue
		}
		seen[settlement.SellerID] = struct{}{}
		sellerIDs = append(sellerIDs, settlement.SellerID)
	}
	return sellerIDs, nil
}

func (s *SettlementService) publish(ctx context.Context, routingKey string, settlement *models.Settlement, previousStatus string) {
	if s.summaries != nil {
		s.summaries.InvalidatePeriodSummary(ctx, settlement.SettlementPeriodID)
	}
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSettlementEvent(ctx, routingKey, settlement, previousStatus); err != nil {
		logger.Warnw("settlement_event_publish_failed",
			"event", routingKey,
			"settlement_id", settlement.ID,
			"error", err,
		)
	}
}

func generationLockKey(sellerID, periodID uint64) string {
	return "settlement:generate:" + strconv.FormatUint(sellerID, 10) + ":" + strconv.FormatUint(periodID, 10)
}
