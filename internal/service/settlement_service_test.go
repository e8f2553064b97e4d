package service

import (
	"context"
	"errors"
	"testing"

	"github.com/seller-settlement/internal/constants"
	"github.com/seller-settlement/internal/models"
	"github.com/seller-settlement/internal/repository"
)

func TestSettlementServiceGenerateForSeller(t *testing.T) {
	env := setupSettlementServiceTest(t, SettlementServiceOptions{})
	seller := env.createSeller(t, "S1")
	period := env.createPeriod(t)
	env.createPolicy(t, constants.CommissionScopeGlobal, 0, "", "10")

	env.createOrder(t, seller.ID, "ORD-1", constants.OrderStatusDelivered, constants.PaymentStatusPaid, testPeriodStart,
		testOrderLine{category: "FASHION", qty: 1, unit: 19900})
	env.createOrder(t, seller.ID, "ORD-2", constants.OrderStatusCompleted, constants.PaymentStatusPaid, mayDay(15),
		testOrderLine{category: "BOOKS", qty: 2, unit: 44500})
	env.createOrder(t, seller.ID, "ORD-3", constants.OrderStatusCanceled, constants.PaymentStatusPaid, mayDay(16),
		testOrderLine{category: "BOOKS", qty: 1, unit: 9000})
	env.createOrder(t, seller.ID, "ORD-4", constants.OrderStatusDelivered, constants.PaymentStatusPaid, testPeriodEnd,
		testOrderLine{category: "BOOKS", qty: 1, unit: 9000})

	result, err := env.settlements.GenerateForSeller(context.Background(), GenerateSellerInput{PeriodID: period.ID, SellerID: seller.ID})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if result.Outcome != constants.SettlementOutcomeCreated || result.SettlementID == 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	detail, err := env.settlements.GetDetail(result.SettlementID)
	if err != nil {
		t.Fatalf("get detail failed: %v", err)
	}
	if detail.Status != constants.SettlementStatusPending {
		t.Fatalf("expected pending, got %s", detail.Status)
	}
	if detail.SettlementNo != "ST000001" {
		t.Fatalf("unexpected settlement no: %s", detail.SettlementNo)
	}
	if detail.ItemCount != 2 || len(detail.Items) != 2 {
		t.Fatalf("expected 2 items, got %d/%d", detail.ItemCount, len(detail.Items))
	}
	if detail.TotalOrderAmount != 108900 || detail.TotalCommission != 10890 || detail.FinalSettlementAmount != 98010 {
		t.Fatalf("unexpected totals: %d/%d/%d", detail.TotalOrderAmount, detail.TotalCommission, detail.FinalSettlementAmount)
	}
	if detail.Seller == nil || detail.Seller.Code != "S1" || detail.Period == nil || detail.Period.ID != period.ID {
		t.Fatalf("expected seller and period preloaded")
	}
	if !detail.Items[0].CommissionRate.Equal(models.MustPercent("10").Decimal) {
		t.Fatalf("expected rate snapshot 10, got %s", detail.Items[0].CommissionRate.String())
	}

	event, ok := env.publisher.last()
	if !ok || event.routingKey != constants.EventSettlementCreated || event.settlementID != detail.ID {
		t.Fatalf("expected created event, got %+v", event)
	}
}

func TestSettlementServiceGenerateIsIdempotent(t *testing.T) {
	env := setupSettlementServiceTest(t, SettlementServiceOptions{})
	seller := env.createSeller(t, "S1")
	period := env.createPeriod(t)
	env.createPolicy(t, constants.CommissionScopeGlobal, 0, "", "5")
	env.createOrder(t, seller.ID, "ORD-1", constants.OrderStatusDelivered, constants.PaymentStatusPaid, mayDay(3),
		testOrderLine{category: "FASHION", qty: 1, unit: 10000})

	input := GenerateSellerInput{PeriodID: period.ID, SellerID: seller.ID}
	first, err := env.settlements.GenerateForSeller(context.Background(), input)
	if err != nil {
		t.Fatalf("first generate failed: %v", err)
	}

	env.createOrder(t, seller.ID, "ORD-2", constants.OrderStatusDelivered, constants.PaymentStatusPaid, mayDay(4),
		testOrderLine{category: "FASHION", qty: 1, unit: 20000})

	second, err := env.settlements.GenerateForSeller(context.Background(), input)
	if err != nil {
		t.Fatalf("second generate failed: %v", err)
	}
	if second.Outcome != constants.SettlementOutcomeSkippedExists || second.SettlementID != first.SettlementID {
		t.Fatalf("expected skipped_exists for same settlement, got %+v", second)
	}
	if env.countSettlements(t) != 1 {
		t.Fatalf("expected exactly one settlement")
	}
	current, err := env.settlements.Get(first.SettlementID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if current.TotalOrderAmount != 10000 {
		t.Fatalf("existing settlement must stay untouched, got %d", current.TotalOrderAmount)
	}

	input.Recalculate = true
	third, err := env.settlements.GenerateForSeller(context.Background(), input)
	if err != nil {
		t.Fatalf("recalculate generate failed: %v", err)
	}
	if third.Outcome != constants.SettlementOutcomeRecalculated {
		t.Fatalf("expected recalculated, got %+v", third)
	}
	current, err = env.settlements.Get(first.SettlementID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if current.TotalOrderAmount != 30000 || current.ItemCount != 2 || current.Status != constants.SettlementStatusCalculating {
		t.Fatalf("unexpected recalculated settlement: %+v", current)
	}
}

func TestSettlementServiceSkipsEmptySeller(t *testing.T) {
	env := setupSettlementServiceTest(t, SettlementServiceOptions{})
	seller := env.createSeller(t, "S1")
	period := env.createPeriod(t)
	env.createPolicy(t, constants.CommissionScopeGlobal, 0, "", "5")
	env.createOrder(t, seller.ID, "ORD-1", constants.OrderStatusDelivered, constants.PaymentStatusRefunded, mayDay(3),
		testOrderLine{category: "FASHION", qty: 1, unit: 10000})

	result, err := env.settlements.GenerateForSeller(context.Background(), GenerateSellerInput{PeriodID: period.ID, SellerID: seller.ID})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if result.Outcome != constants.SettlementOutcomeSkippedEmpty || result.SettlementID != 0 {
		t.Fatalf("expected skipped_empty, got %+v", result)
	}
	if env.countSettlements(t) != 0 {
		t.Fatalf("expected no settlement rows")
	}
}

func TestSettlementServiceMissingPolicyFails(t *testing.T) {
	env := setupSettlementServiceTest(t, SettlementServiceOptions{})
	seller := env.createSeller(t, "S1")
	period := env.createPeriod(t)
	env.createOrder(t, seller.ID, "ORD-1", constants.OrderStatusDelivered, constants.PaymentStatusPaid, mayDay(3),
		testOrderLine{category: "FASHION", qty: 1, unit: 10000})

	result, err := env.settlements.GenerateForSeller(context.Background(), GenerateSellerInput{PeriodID: period.ID, SellerID: seller.ID})
	if !errors.Is(err, ErrCommissionPolicyNotFound) {
		t.Fatalf("expected ErrCommissionPolicyNotFound, got %v", err)
	}
	if result == nil || result.Outcome != constants.SettlementOutcomeFailed {
		t.Fatalf("expected failed outcome, got %+v", result)
	}
	if env.countSettlements(t) != 0 {
		t.Fatalf("failed generation must not persist a settlement")
	}
}

func TestSettlementServiceSkipsWhenLockHeld(t *testing.T) {
	env := setupSettlementServiceTest(t, SettlementServiceOptions{Locker: busyLocker{}})
	seller := env.createSeller(t, "S1")
	period := env.createPeriod(t)
	env.createPolicy(t, constants.CommissionScopeGlobal, 0, "", "5")
	env.createOrder(t, seller.ID, "ORD-1", constants.OrderStatusDelivered, constants.PaymentStatusPaid, mayDay(3),
		testOrderLine{category: "FASHION", qty: 1, unit: 10000})

	result, err := env.settlements.GenerateForSeller(context.Background(), GenerateSellerInput{PeriodID: period.ID, SellerID: seller.ID})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if result.Outcome != constants.SettlementOutcomeSkippedBusy {
		t.Fatalf("expected skipped_busy, got %+v", result)
	}
}

func TestSettlementServiceRecalculateToZero(t *testing.T) {
	env := setupSettlementServiceTest(t, SettlementServiceOptions{})
	seller := env.createSeller(t, "S1")
	period := env.createPeriod(t)
	env.createPolicy(t, constants.CommissionScopeGlobal, 0, "", "5")
	order := env.createOrder(t, seller.ID, "ORD-1", constants.OrderStatusDelivered, constants.PaymentStatusPaid, mayDay(3),
		testOrderLine{category: "FASHION", qty: 1, unit: 10000})

	result, err := env.settlements.GenerateForSeller(context.Background(), GenerateSellerInput{PeriodID: period.ID, SellerID: seller.ID})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if err := env.orderRepo.UpdateStatus(order.ID, constants.OrderStatusRefunded, constants.PaymentStatusRefunded); err != nil {
		t.Fatalf("update order failed: %v", err)
	}

	settlement, err := env.settlements.Recalculate(context.Background(), result.SettlementID)
	if err != nil {
		t.Fatalf("recalculate failed: %v", err)
	}
	if settlement.Status != constants.SettlementStatusCalculating {
		t.Fatalf("expected calculating, got %s", settlement.Status)
	}
	if settlement.ItemCount != 0 || settlement.TotalOrderAmount != 0 || settlement.TotalCommission != 0 || settlement.FinalSettlementAmount != 0 {
		t.Fatalf("expected zero totals, got %+v", settlement)
	}
	items, err := env.settlementRepo.ListItems(result.SettlementID)
	if err != nil {
		t.Fatalf("list items failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected items replaced, got %d", len(items))
	}
	event, _ := env.publisher.last()
	if event.routingKey != constants.EventSettlementRecalculated || event.previousStatus != constants.SettlementStatusPending {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestSettlementServiceLifecycle(t *testing.T) {
	env := setupSettlementServiceTest(t, SettlementServiceOptions{})
	seller := env.createSeller(t, "S1")
	period := env.createPeriod(t)
	env.createPolicy(t, constants.CommissionScopeGlobal, 0, "", "5")
	env.createOrder(t, seller.ID, "ORD-1", constants.OrderStatusDelivered, constants.PaymentStatusPaid, mayDay(3),
		testOrderLine{category: "FASHION", qty: 1, unit: 10000})
	ctx := context.Background()

	result, err := env.settlements.GenerateForSeller(ctx, GenerateSellerInput{PeriodID: period.ID, SellerID: seller.ID})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	id := result.SettlementID

	if _, err := env.settlements.Hold(ctx, id, " "); !errors.Is(err, ErrSettlementReasonMissing) {
		t.Fatalf("expected ErrSettlementReasonMissing, got %v", err)
	}
	if _, err := env.settlements.Resume(ctx, id, false); !errors.Is(err, ErrSettlementStatusInvalid) {
		t.Fatalf("expected ErrSettlementStatusInvalid on resume of pending, got %v", err)
	}

	held, err := env.settlements.Hold(ctx, id, "bank account review")
	if err != nil {
		t.Fatalf("hold failed: %v", err)
	}
	if held.Status != constants.SettlementStatusOnHold || held.HoldReason != "bank account review" {
		t.Fatalf("unexpected held settlement: %+v", held)
	}
	event, _ := env.publisher.last()
	if event.routingKey != constants.EventSettlementStatusChanged || event.previousStatus != constants.SettlementStatusPending {
		t.Fatalf("unexpected event: %+v", event)
	}
	if _, err := env.settlements.Complete(ctx, id); !errors.Is(err, ErrSettlementStatusInvalid) {
		t.Fatalf("expected on_hold -> completed rejected, got %v", err)
	}

	resumed, err := env.settlements.Resume(ctx, id, false)
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if resumed.Status != constants.SettlementStatusPending || resumed.HoldReason != "" {
		t.Fatalf("unexpected resumed settlement: %+v", resumed)
	}

	completed, err := env.settlements.Complete(ctx, id)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.Status != constants.SettlementStatusCompleted || completed.SettledAt == nil {
		t.Fatalf("unexpected completed settlement: %+v", completed)
	}

	if _, err := env.settlements.Hold(ctx, id, "late"); !errors.Is(err, ErrSettlementFrozen) {
		t.Fatalf("expected ErrSettlementFrozen on hold, got %v", err)
	}
	if _, err := env.settlements.Cancel(ctx, id, "late"); !errors.Is(err, ErrSettlementFrozen) {
		t.Fatalf("expected ErrSettlementFrozen on cancel, got %v", err)
	}
	if _, err := env.settlements.Recalculate(ctx, id); !errors.Is(err, ErrSettlementFrozen) {
		t.Fatalf("expected ErrSettlementFrozen on recalculate, got %v", err)
	}
	if _, err := env.settlements.Resume(ctx, id, true); !errors.Is(err, ErrSettlementFrozen) {
		t.Fatalf("expected ErrSettlementFrozen on resume, got %v", err)
	}

	again, err := env.settlements.GenerateForSeller(ctx, GenerateSellerInput{PeriodID: period.ID, SellerID: seller.ID, Recalculate: true})
	if err != nil {
		t.Fatalf("generate after completion failed: %v", err)
	}
	if again.Outcome != constants.SettlementOutcomeSkippedExists {
		t.Fatalf("completed settlement must not be recalculated, got %+v", again)
	}
	stored, err := env.settlements.Get(id)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Status != constants.SettlementStatusCompleted || stored.TotalOrderAmount != 10000 {
		t.Fatalf("completed settlement changed: %+v", stored)
	}
}

func TestSettlementServiceCancel(t *testing.T) {
	env := setupSettlementServiceTest(t, SettlementServiceOptions{})
	seller := env.createSeller(t, "S1")
	period := env.createPeriod(t)
	env.createPolicy(t, constants.CommissionScopeGlobal, 0, "", "5")
	env.createOrder(t, seller.ID, "ORD-1", constants.OrderStatusDelivered, constants.PaymentStatusPaid, mayDay(3),
		testOrderLine{category: "FASHION", qty: 1, unit: 10000})
	ctx := context.Background()

	result, err := env.settlements.GenerateForSeller(ctx, GenerateSellerInput{PeriodID: period.ID, SellerID: seller.ID})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	cancelled, err := env.settlements.Cancel(ctx, result.SettlementID, "duplicate seller account")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != constants.SettlementStatusCancelled || cancelled.CancelReason != "duplicate seller account" {
		t.Fatalf("unexpected cancelled settlement: %+v", cancelled)
	}
	if _, err := env.settlements.Complete(ctx, result.SettlementID); !errors.Is(err, ErrSettlementFrozen) {
		t.Fatalf("expected ErrSettlementFrozen, got %v", err)
	}
}

func TestSettlementServiceGenerateForPeriod(t *testing.T) {
	env := setupSettlementServiceTest(t, SettlementServiceOptions{Concurrency: 1})
	first := env.createSeller(t, "S1")
	second := env.createSeller(t, "S2")
	third := env.createSeller(t, "S3")
	period := env.createPeriod(t)
	env.createPolicy(t, constants.CommissionScopeGlobal, 0, "", "5")
	env.createPolicy(t, constants.CommissionScopeCategory, 0, "FASHION", "3")
	env.createPolicy(t, constants.CommissionScopeSeller, second.ID, "", "2.5")

	env.createOrder(t, first.ID, "ORD-1", constants.OrderStatusDelivered, constants.PaymentStatusPaid, mayDay(3),
		testOrderLine{category: "FASHION", qty: 1, unit: 10000},
		testOrderLine{category: "BOOKS", qty: 1, unit: 10000})
	env.createOrder(t, second.ID, "ORD-2", constants.OrderStatusCompleted, constants.PaymentStatusPaid, mayDay(4),
		testOrderLine{category: "FASHION", qty: 2, unit: 10000})
	env.createOrder(t, third.ID, "ORD-3", constants.OrderStatusPendingPayment, constants.PaymentStatusUnpaid, mayDay(5),
		testOrderLine{category: "FASHION", qty: 1, unit: 10000})

	ctx := context.Background()
	report, err := env.settlements.GenerateForPeriod(ctx, GeneratePeriodInput{PeriodID: period.ID})
	if err != nil {
		t.Fatalf("generate period failed: %v", err)
	}
	if report.Sellers != 2 || report.Created != 2 || report.Failed != 0 || len(report.Results) != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}

	rows, total, err := env.settlements.List(repository.SettlementListFilter{SettlementPeriodID: period.ID, Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 settlements, got %d", total)
	}
	bySeller := map[uint64]models.Settlement{}
	for _, row := range rows {
		bySeller[row.SellerID] = row
	}
	// 类目 3% + 全局 5%
	if got := bySeller[first.ID].TotalCommission; got != 300+500 {
		t.Fatalf("unexpected commission for seller 1: %d", got)
	}
	// 商家 2.5% 优先于类目
	if got := bySeller[second.ID].TotalCommission; got != 500 {
		t.Fatalf("unexpected commission for seller 2: %d", got)
	}

	if _, err := env.settlements.Hold(ctx, bySeller[first.ID].ID, "kyc"); err != nil {
		t.Fatalf("hold failed: %v", err)
	}
	rerun, err := env.settlements.GenerateForPeriod(ctx, GeneratePeriodInput{PeriodID: period.ID, Recalculate: true})
	if err != nil {
		t.Fatalf("rerun failed: %v", err)
	}
	if rerun.SkippedExists != 1 || rerun.Recalculated != 1 || rerun.Created != 0 {
		t.Fatalf("unexpected rerun report: %+v", rerun)
	}
	held, err := env.settlements.Get(bySeller[first.ID].ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if held.Status != constants.SettlementStatusOnHold {
		t.Fatalf("batch rerun must not touch on_hold settlements, got %s", held.Status)
	}

	if _, _, err := env.settlements.List(repository.SettlementListFilter{Status: "settled"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad status filter, got %v", err)
	}
}

func TestSettlementServiceRejectsClosedPeriod(t *testing.T) {
	env := setupSettlementServiceTest(t, SettlementServiceOptions{})
	seller := env.createSeller(t, "S1")
	period := env.createPeriod(t)

	if _, err := env.periods.Complete(period.ID); err != nil {
		t.Fatalf("complete empty period failed: %v", err)
	}
	_, err := env.settlements.GenerateForSeller(context.Background(), GenerateSellerInput{PeriodID: period.ID, SellerID: seller.ID})
	if !errors.Is(err, ErrSettlementPeriodClosed) {
		t.Fatalf("expected ErrSettlementPeriodClosed, got %v", err)
	}
	if _, err := env.settlements.GenerateForPeriod(context.Background(), GeneratePeriodInput{PeriodID: 999}); !errors.Is(err, ErrSettlementPeriodNotFound) {
		t.Fatalf("expected ErrSettlementPeriodNotFound, got %v", err)
	}
}

func TestSettlementServiceFailedRecalculateKeepsStatus(t *testing.T) {
	env := setupSettlementServiceTest(t, SettlementServiceOptions{})
	seller := env.createSeller(t, "S1")
	period := env.createPeriod(t)
	policy := env.createPolicy(t, constants.CommissionScopeGlobal, 0, "", "10")
	env.createOrder(t, seller.ID, "ORD-1", constants.OrderStatusDelivered, constants.PaymentStatusPaid, mayDay(3),
		testOrderLine{category: "FASHION", qty: 1, unit: 10000})

	ctx := context.Background()
	result, err := env.settlements.GenerateForSeller(ctx, GenerateSellerInput{PeriodID: period.ID, SellerID: seller.ID})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := env.policies.Deactivate(policy.ID); err != nil {
		t.Fatalf("deactivate policy failed: %v", err)
	}

	if _, err := env.settlements.Recalculate(ctx, result.SettlementID); !errors.Is(err, ErrCommissionPolicyNotFound) {
		t.Fatalf("expected ErrCommissionPolicyNotFound, got %v", err)
	}
	current, err := env.settlements.Get(result.SettlementID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if current.Status != constants.SettlementStatusPending {
		t.Fatalf("failed recalculation must keep status pending, got %s", current.Status)
	}
	if current.TotalOrderAmount != 10000 || current.TotalCommission != 1000 || current.ItemCount != 1 {
		t.Fatalf("failed recalculation must keep totals, got %+v", current)
	}
	items, err := env.settlementRepo.ListItems(result.SettlementID)
	if err != nil {
		t.Fatalf("list items failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("failed recalculation must keep items, got %d", len(items))
	}
	event, _ := env.publisher.last()
	if event.routingKey != constants.EventSettlementCreated {
		t.Fatalf("expected no recalculated event, got %+v", event)
	}
}

// staleLookupRepository 首次按商家与周期查询时返回空，模拟并发生成时读到旧快照
type staleLookupRepository struct {
	repository.SettlementRepository
	lookups int
}

func (r *staleLookupRepository) GetBySellerAndPeriod(sellerID, periodID uint64) (*models.Settlement, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, nil
	}
	return r.SettlementRepository.GetBySellerAndPeriod(sellerID, periodID)
}

func TestSettlementServiceConcurrentCreateReportsExisting(t *testing.T) {
	env := setupSettlementServiceTest(t, SettlementServiceOptions{})
	seller := env.createSeller(t, "S1")
	period := env.createPeriod(t)
	env.createPolicy(t, constants.CommissionScopeGlobal, 0, "", "5")
	env.createOrder(t, seller.ID, "ORD-1", constants.OrderStatusDelivered, constants.PaymentStatusPaid, mayDay(3),
		testOrderLine{category: "FASHION", qty: 1, unit: 10000})

	ctx := context.Background()
	input := GenerateSellerInput{PeriodID: period.ID, SellerID: seller.ID}
	first, err := env.settlements.GenerateForSeller(ctx, input)
	if err != nil {
		t.Fatalf("first generate failed: %v", err)
	}

	stale := &staleLookupRepository{SettlementRepository: env.settlementRepo}
	racing := NewSettlementService(
		stale,
		repository.NewSettlementPeriodRepository(env.db),
		env.orderRepo,
		repository.NewSellerRepository(env.db),
		env.policies,
		&sequenceNumbers{next: 100},
		SettlementServiceOptions{Publisher: env.publisher, Concurrency: 1},
	)
	second, err := racing.GenerateForSeller(ctx, input)
	if err != nil {
		t.Fatalf("racing generate failed: %v", err)
	}
	if second.Outcome != constants.SettlementOutcomeSkippedExists || second.SettlementID != first.SettlementID {
		t.Fatalf("expected skipped_exists with existing id %d, got %+v", first.SettlementID, second)
	}
	if stale.lookups != 2 {
		t.Fatalf("expected a follow-up lookup after the unique violation, got %d lookups", stale.lookups)
	}
	if env.countSettlements(t) != 1 {
		t.Fatalf("expected exactly one settlement")
	}
}

func TestSettlementServiceLineItemSettledElsewhereFails(t *testing.T) {
	env := setupSettlementServiceTest(t, SettlementServiceOptions{})
	seller := env.createSeller(t, "S1")
	other := env.createSeller(t, "S2")
	period := env.createPeriod(t)
	env.createPolicy(t, constants.CommissionScopeGlobal, 0, "", "5")
	order := env.createOrder(t, seller.ID, "ORD-1", constants.OrderStatusDelivered, constants.PaymentStatusPaid, mayDay(3),
		testOrderLine{category: "FASHION", qty: 1, unit: 10000})

	ctx := context.Background()
	if _, err := env.settlements.GenerateForSeller(ctx, GenerateSellerInput{PeriodID: period.ID, SellerID: seller.ID}); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	// 已结算的订单被改挂到另一个商家
	if err := env.db.Model(&models.Order{}).Where("id = ?", order.ID).Update("seller_id", other.ID).Error; err != nil {
		t.Fatalf("move order failed: %v", err)
	}

	result, err := env.settlements.GenerateForSeller(ctx, GenerateSellerInput{PeriodID: period.ID, SellerID: other.ID})
	if !errors.Is(err, ErrLineItemInconsistent) {
		t.Fatalf("expected ErrLineItemInconsistent, got %v", err)
	}
	if result == nil || result.Outcome != constants.SettlementOutcomeFailed || result.SettlementID != 0 {
		t.Fatalf("expected failed outcome without settlement id, got %+v", result)
	}
	if env.countSettlements(t) != 1 {
		t.Fatalf("expected only the original settlement")
	}
}
