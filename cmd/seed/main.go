package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/seller-settlement/internal/config"
	"github.com/seller-settlement/internal/constants"
	"github.com/seller-settlement/internal/logger"
	"github.com/seller-settlement/internal/models"
	"github.com/seller-settlement/internal/repository"
	"github.com/seller-settlement/internal/service"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type seedLine struct {
	sku      string
	name     string
	category string
	qty      int
	unit     int64
}

type seedOrder struct {
	orderNo string
	seller  string
	status  string
	payment string
	day     int
	lines   []seedLine
}

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	db, err := models.OpenDB(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.LogLevel, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	})
	if err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(db); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加商家
	sellers := []models.Seller{
		{Code: "S-APPAREL", Name: "Seoul Apparel", Status: constants.SellerStatusActive, ContactEmail: "billing@apparel.example.com"},
		{Code: "S-BOOKS", Name: "Busan Books", Status: constants.SellerStatusActive, ContactEmail: "finance@books.example.com"},
		{Code: "S-TECH", Name: "Incheon Tech", Status: constants.SellerStatusActive, ContactEmail: "ops@tech.example.com"},
	}
	sellerIDs := map[string]uint64{}
	for _, seller := range sellers {
		var existing models.Seller
		err := db.Where("code = ?", seller.Code).First(&existing).Error
		switch {
		case err == nil:
			stdLog.Printf("Seller already exists: %s", seller.Code)
			sellerIDs[seller.Code] = existing.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := db.Create(&seller).Error; err != nil {
				stdLog.Fatalf("Failed to create seller %s: %v", seller.Code, err)
			}
			stdLog.Printf("Created seller: %s", seller.Code)
			sellerIDs[seller.Code] = seller.ID
		default:
			stdLog.Fatalf("Failed to load seller %s: %v", seller.Code, err)
		}
	}

	// 添加佣金策略：全局 5%，图书类目 3%，科技商家 2.5%
	policyRepo := repository.NewCommissionPolicyRepository(db)
	sellerRepo := repository.NewSellerRepository(db)
	policyService := service.NewCommissionPolicyService(policyRepo, sellerRepo, 0)
	_, total, err := policyService.List(repository.CommissionPolicyListFilter{Page: 1, PageSize: 1})
	if err != nil {
		stdLog.Fatalf("Failed to load commission policies: %v", err)
	}
	if total == 0 {
		effective := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		policies := []service.CommissionPolicyInput{
			{Scope: constants.CommissionScopeGlobal, CommissionRate: decimal.NewFromInt(5), EffectiveDate: effective, IsActive: true, Remark: "platform default"},
			{Scope: constants.CommissionScopeCategory, CategoryCode: "BOOKS", CommissionRate: decimal.NewFromInt(3), EffectiveDate: effective, IsActive: true},
			{Scope: constants.CommissionScopeSeller, SellerID: sellerIDs["S-TECH"], CommissionRate: decimal.RequireFromString("2.5"), EffectiveDate: effective, IsActive: true, Remark: "partner contract"},
		}
		for _, input := range policies {
			policy, err := policyService.Create(input)
			if err != nil {
				stdLog.Fatalf("Failed to create commission policy: %v", err)
			}
			stdLog.Printf("Created commission policy: %s (%s%%)", policy.Name, policy.CommissionRate.String())
		}
	} else {
		stdLog.Printf("Commission policies already exist, skipped")
	}

	// 添加上个月的订单
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	orders := []seedOrder{
		{orderNo: "SEED-1001", seller: "S-APPAREL", status: constants.OrderStatusDelivered, payment: constants.PaymentStatusPaid, day: 3, lines: []seedLine{
			{sku: "AP-TEE-01", name: "Cotton T-Shirt", category: "FASHION", qty: 2, unit: 19900},
			{sku: "AP-CAP-02", name: "Baseball Cap", category: "FASHION", qty: 1, unit: 15000},
		}},
		{orderNo: "SEED-1002", seller: "S-APPAREL", status: constants.OrderStatusCompleted, payment: constants.PaymentStatusPaid, day: 12, lines: []seedLine{
			{sku: "AP-JKT-03", name: "Rain Jacket", category: "FASHION", qty: 1, unit: 89000},
		}},
		{orderNo: "SEED-1003", seller: "S-APPAREL", status: constants.OrderStatusRefunded, payment: constants.PaymentStatusRefunded, day: 14, lines: []seedLine{
			{sku: "AP-TEE-01", name: "Cotton T-Shirt", category: "FASHION", qty: 1, unit: 19900},
		}},
		{orderNo: "SEED-2001", seller: "S-BOOKS", status: constants.OrderStatusDelivered, payment: constants.PaymentStatusPaid, day: 5, lines: []seedLine{
			{sku: "BK-NOV-11", name: "Paperback Novel", category: "BOOKS", qty: 3, unit: 12500},
			{sku: "BK-MUG-12", name: "Reading Mug", category: "HOME", qty: 1, unit: 9900},
		}},
		{orderNo: "SEED-3001", seller: "S-TECH", status: constants.OrderStatusCompleted, payment: constants.PaymentStatusPaid, day: 20, lines: []seedLine{
			{sku: "TC-KBD-21", name: "Mechanical Keyboard", category: "ELECTRONICS", qty: 1, unit: 129000},
		}},
		{orderNo: "SEED-3002", seller: "S-TECH", status: constants.OrderStatusFulfilling, payment: constants.PaymentStatusPaid, day: 27, lines: []seedLine{
			{sku: "TC-MSE-22", name: "Wireless Mouse", category: "ELECTRONICS", qty: 2, unit: 33333},
		}},
	}
	for _, item := range orders {
		var count int64
		if err := db.Model(&models.Order{}).Where("order_no = ?", item.orderNo).Count(&count).Error; err != nil {
			stdLog.Fatalf("Failed to check order %s: %v", item.orderNo, err)
		}
		if count > 0 {
			stdLog.Printf("Order already exists: %s", item.orderNo)
			continue
		}
		createdAt := monthStart.AddDate(0, 0, item.day-1).Add(10 * time.Hour)
		order := models.Order{
			OrderNo:       item.orderNo,
			SellerID:      sellerIDs[item.seller],
			Status:        item.status,
			PaymentStatus: item.payment,
			Currency:      "KRW",
			CreatedAt:     createdAt,
			UpdatedAt:     createdAt,
		}
		for _, line := range item.lines {
			total := line.unit * int64(line.qty)
			order.TotalAmount += total
			order.Items = append(order.Items, models.OrderItem{
				SellerID:     order.SellerID,
				ProductName:  line.name,
				SkuCode:      line.sku,
				CategoryCode: line.category,
				Quantity:     line.qty,
				UnitPrice:    line.unit,
				TotalPrice:   total,
			})
		}
		if err := db.Create(&order).Error; err != nil {
			stdLog.Fatalf("Failed to create order %s: %v", item.orderNo, err)
		}
		stdLog.Printf("Created order: %s", item.orderNo)
	}

	fmt.Printf("Seed data ready: %d sellers, %d orders for %s\n", len(sellers), len(orders), monthStart.Format("2006-01"))
}
