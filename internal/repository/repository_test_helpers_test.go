package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/seller-settlement/internal/constants"
	"github.com/seller-settlement/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openRepositoryTestDB(t *testing.T, name string) *gorm.DB {
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

func createRepoTestSeller(t *testing.T, db *gorm.DB, code string) models.Seller {
	t.Helper()
	seller := models.Seller{Code: code, Name: "Seller " + code, Status: constants.SellerStatusActive}
	if err := db.Create(&seller).Error; err != nil {
		t.Fatalf("create seller failed: %v", err)
	}
	return seller
}

func createRepoTestOrder(t *testing.T, db *gorm.DB, sellerID uint64, orderNo, status, paymentStatus string, createdAt time.Time, prices ...int64) models.Order {
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
	for i, price := range prices {
		order.Items = append(order.Items, models.OrderItem{
			SellerID:     sellerID,
			ProductName:  fmt.Sprintf("product-%d", i),
			SkuCode:      fmt.Sprintf("%s-SKU-%d", orderNo, i),
			CategoryCode: "FASHION",
			Quantity:     1,
			UnitPrice:    price,
			TotalPrice:   price,
		})
		order.TotalAmount += price
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}
