package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/seller-settlement/internal/config"
	"github.com/seller-settlement/internal/constants"
	"github.com/seller-settlement/internal/models"
	"github.com/seller-settlement/internal/provider"
	"github.com/seller-settlement/internal/queue"
	"github.com/seller-settlement/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupWorkerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{NowFunc: models.UTCNow})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	cfg := &config.Config{
		Settlement: config.SettlementConfig{
			EligibleOrderStatuses:   []string{constants.OrderStatusDelivered, constants.OrderStatusCompleted},
			EligiblePaymentStatuses: []string{constants.PaymentStatusPaid},
			Concurrency:             1,
			LockTTLSeconds:          60,
			SettlementDelayDays:     10,
			Timezone:                "UTC",
			SnowflakeNode:           1,
		},
	}
	container, err := provider.NewContainer(cfg, db)
	if err != nil {
		t.Fatalf("new container failed: %v", err)
	}
	return NewConsumer(container), db
}

func seedWorkerData(t *testing.T, consumer *Consumer, db *gorm.DB) models.Seller {
	t.Helper()
	seller := models.Seller{Code: "S1", Name: "Seller 1", Status: constants.SellerStatusActive}
	if err := db.Create(&seller).Error; err != nil {
		t.Fatalf("create seller failed: %v", err)
	}
	if _, err := consumer.CommissionPolicyService.Create(service.CommissionPolicyInput{
		Scope:          constants.CommissionScopeGlobal,
		CommissionRate: decimal.NewFromInt(10),
		EffectiveDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		IsActive:       true,
	}); err != nil {
		t.Fatalf("create policy failed: %v", err)
	}
	createdAt := time.Date(2024, 5, 12, 8, 0, 0, 0, time.UTC)
	order := models.Order{
		OrderNo:       "ORD-1",
		SellerID:      seller.ID,
		Status:        constants.OrderStatusDelivered,
		PaymentStatus: constants.PaymentStatusPaid,
		Currency:      "KRW",
		TotalAmount:   19900,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
		Items: []models.OrderItem{{
			SellerID:     seller.ID,
			ProductName:  "shirt",
			SkuCode:      "SKU-1",
			CategoryCode: "FASHION",
			Quantity:     1,
			UnitPrice:    19900,
			TotalPrice:   19900,
		}},
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return seller
}

func TestHandleMonthlyCloseGeneratesWithoutQueue(t *testing.T) {
	consumer, db := setupWorkerTest(t)
	seller := seedWorkerData(t, consumer, db)

	task, err := queue.NewMonthlyCloseTask(queue.MonthlyClosePayload{Month: "2024-05"})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleMonthlyClose(context.Background(), task); err != nil {
		t.Fatalf("monthly close failed: %v", err)
	}

	var settlement models.Settlement
	if err := db.Where("seller_id = ?", seller.ID).First(&settlement).Error; err != nil {
		t.Fatalf("expected settlement generated: %v", err)
	}
	if settlement.TotalCommission != 1990 || settlement.FinalSettlementAmount != 17910 {
		t.Fatalf("unexpected settlement amounts: %+v", settlement)
	}

	var period models.SettlementPeriod
	if err := db.First(&period, settlement.SettlementPeriodID).Error; err != nil {
		t.Fatalf("load period failed: %v", err)
	}
	if period.Name != "2024-05" || !period.SettlementDate.Equal(time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected period: %+v", period)
	}

	// 再次执行保持幂等
	if err := consumer.handleMonthlyClose(context.Background(), task); err != nil {
		t.Fatalf("second monthly close failed: %v", err)
	}
	var count int64
	db.Model(&models.Settlement{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 settlement, got %d", count)
	}
}

func TestHandleGenerateSellerSkipsRetryOnClosedPeriod(t *testing.T) {
	consumer, db := setupWorkerTest(t)
	seller := seedWorkerData(t, consumer, db)

	period, err := consumer.SettlementPeriodService.EnsureMonthlyPeriod(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ensure period failed: %v", err)
	}
	task, err := queue.NewGenerateSellerTask(queue.GenerateSellerPayload{PeriodID: period.ID, SellerID: seller.ID})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleGenerateSeller(context.Background(), task); err != nil {
		t.Fatalf("generate seller failed: %v", err)
	}

	missing, err := queue.NewGenerateSellerTask(queue.GenerateSellerPayload{PeriodID: period.ID + 100, SellerID: seller.ID})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleGenerateSeller(context.Background(), missing); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry for missing period, got %v", err)
	}
}

func TestHandleGeneratePeriodRejectsBadPayload(t *testing.T) {
	consumer, _ := setupWorkerTest(t)
	task := asynq.NewTask(queue.TaskGeneratePeriod, []byte("{bad"))
	if err := consumer.handleGeneratePeriod(context.Background(), task); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}

	empty, err := queue.NewGeneratePeriodTask(queue.GeneratePeriodPayload{})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleGeneratePeriod(context.Background(), empty); err != nil {
		t.Fatalf("expected empty payload to be ignored, got %v", err)
	}
}
