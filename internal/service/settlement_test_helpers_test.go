package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/seller-settlement/internal/constants"
	"github.com/seller-settlement/internal/models"
	"github.com/seller-settlement/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	testPeriodStart = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	testPeriodEnd   = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
)

type settlementTestEnv struct {
	db             *gorm.DB
	orderRepo      repository.OrderRepository
	settlementRepo repository.SettlementRepository
	policies       *CommissionPolicyService
	periods        *SettlementPeriodService
	settlements    *SettlementService
	publisher      *recordingPublisher
}

type sequenceNumbers struct {
	mu   sync.Mutex
	next int
}

func (g *sequenceNumbers) NextSettlementNo() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("ST%06d", g.next)
}

type recordedEvent struct {
	routingKey     string
	settlementID   uint64
	status         string
	previousStatus string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) PublishSettlementEvent(_ context.Context, routingKey string, settlement *models.Settlement, previousStatus string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{
		routingKey:     routingKey,
		settlementID:   settlement.ID,
		status:         settlement.Status,
		previousStatus: previousStatus,
	})
	return nil
}

func (p *recordingPublisher) last() (recordedEvent, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return recordedEvent{}, false
	}
	return p.events[len(p.events)-1], true
}

type busyLocker struct{}

func (busyLocker) TryLock(context.Context, string, time.Duration) (func(), bool, error) {
	return nil, false, nil
}

func openServiceTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{NowFunc: models.UTCNow})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func setupSettlementServiceTest(t *testing.T, opts SettlementServiceOptions) *settlementTestEnv {
	t.Helper()
	db := openServiceTestDB(t, "settlement_service_test")

	sellerRepo := repository.NewSellerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	policyRepo := repository.NewCommissionPolicyRepository(db)
	periodRepo := repository.NewSettlementPeriodRepository(db)
	settlementRepo := repository.NewSettlementRepository(db)

	publisher := &recordingPublisher{}
	if opts.Publisher == nil {
		opts.Publisher = publisher
	}
	if opts.Concurrency == 0 {
		// 内存 sqlite 共享缓存下并发写会触发表锁
		opts.Concurrency = 1
	}

	policies := NewCommissionPolicyService(policyRepo, sellerRepo, time.Minute)
	return &settlementTestEnv{
		db:             db,
		orderRepo:      orderRepo,
		settlementRepo: settlementRepo,
		policies:       policies,
		periods:        NewSettlementPeriodService(periodRepo, settlementRepo, time.UTC, 5),
		settlements:    NewSettlementService(settlementRepo, periodRepo, orderRepo, sellerRepo, policies, &sequenceNumbers{}, opts),
		publisher:      publisher,
	}
}

func (env *settlementTestEnv) createSeller(t *testing.T, code string) models.Seller {
	t.Helper()
	seller := models.Seller{Code: code, Name: "Seller " + code, Status: constants.SellerStatusActive}
	if err := env.db.Create(&seller).Error; err != nil {
		t.Fatalf("create seller failed: %v", err)
	}
	return seller
}

func (env *settlementTestEnv) createPeriod(t *testing.T) *models.SettlementPeriod {
	t.Helper()
	period, err := env.periods.Create(CreateSettlementPeriodInput{
		Name:           "2024-05",
		StartDate:      testPeriodStart,
		EndDate:        testPeriodEnd,
		SettlementDate: testPeriodEnd.AddDate(0, 0, 5),
	})
	if err != nil {
		t.Fatalf("create period failed: %v", err)
	}
	return period
}

func (env *settlementTestEnv) createPolicy(t *testing.T, scope string, sellerID uint64, categoryCode, rate string) *models.CommissionPolicy {
	t.Helper()
	policy, err := env.policies.Create(CommissionPolicyInput{
		Scope:          scope,
		SellerID:       sellerID,
		CategoryCode:   categoryCode,
		CommissionRate: decimal.RequireFromString(rate),
		EffectiveDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		IsActive:       true,
	})
	if err != nil {
		t.Fatalf("create policy failed: %v", err)
	}
	return policy
}

type testOrderLine struct {
	category string
	qty      int
	unit     int64
}

func (env *settlementTestEnv) createOrder(t *testing.T, sellerID uint64, orderNo, status, paymentStatus string, createdAt time.Time, lines ...testOrderLine) models.Order {
	t.Helper()
	order := models.Order{
		OrderNo:       orderNo,
		SellerID:      sellerID,
		Status:        status,
		PaymentStatus: paymentStatus,
		Currency:      "KRW",
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	for i, line := range lines {
		total := line.unit * int64(line.qty)
		order.Items = append(order.Items, models.OrderItem{
			SellerID:     sellerID,
			ProductName:  fmt.Sprintf("product-%d", i),
			SkuCode:      fmt.Sprintf("%s-SKU-%d", orderNo, i),
			CategoryCode: line.category,
			Quantity:     line.qty,
			UnitPrice:    line.unit,
			TotalPrice:   total,
		})
		order.TotalAmount += total
	}
	if err := env.orderRepo.Create(&order); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func (env *settlementTestEnv) countSettlements(t *testing.T) int64 {
	t.Helper()
	var count int64
	if err := env.db.Model(&models.Settlement{}).Count(&count).Error; err != nil {
		t.Fatalf("count settlements failed: %v", err)
	}
	return count
}

func mayDay(day int) time.Time {
	return time.Date(2024, 5, day, 10, 0, 0, 0, time.UTC)
}
