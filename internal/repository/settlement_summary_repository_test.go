package repository

import (
	"testing"
	"time"

	"github.com/seller-settlement/internal/constants"
)

func TestSettlementSummaryRepositoryGroupsByStatus(t *testing.T) {
	db := openRepositoryTestDB(t, "settlement_summary_repo")
	repo := NewSettlementSummaryRepository(db)
	period := createRepoTestPeriod(t, db, "2024-05", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	other := createRepoTestPeriod(t, db, "2024-06", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	sellerA := createRepoTestSeller(t, db, "A")
	sellerB := createRepoTestSeller(t, db, "B")
	sellerC := createRepoTestSeller(t, db, "C")

	a := newRepoTestSettlement("ST-A", sellerA.ID, period.ID)
	b := newRepoTestSettlement("ST-B", sellerB.ID, period.ID)
	b.TotalOrderAmount, b.TotalCommission, b.FinalSettlementAmount, b.ItemCount = 50000, 2500, 47500, 3
	c := newRepoTestSettlement("ST-C", sellerC.ID, period.ID)
	c.Status = constants.SettlementStatusCancelled
	c.FinalSettlementAmount = 99999
	elsewhere := newRepoTestSettlement("ST-X", sellerA.ID, other.ID)
	for _, settlement := range []interface{}{a, b, c, elsewhere} {
		if err := db.Create(settlement).Error; err != nil {
			t.Fatalf("create settlement failed: %v", err)
		}
	}

	rows, err := repo.GetPeriodStatusRows(period.ID)
	if err != nil {
		t.Fatalf("status rows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 status rows, got %+v", rows)
	}
	byStatus := map[string]SettlementStatusSummaryRow{}
	for _, row := range rows {
		byStatus[row.Status] = row
	}
	pending := byStatus[constants.SettlementStatusPending]
	if pending.SettlementCount != 2 || pending.ItemCount != 4 {
		t.Fatalf("unexpected pending counts: %+v", pending)
	}
	if pending.TotalOrderAmount != 69900 || pending.TotalCommission != 4490 || pending.FinalSettlementAmount != 65410 {
		t.Fatalf("unexpected pending amounts: %+v", pending)
	}
	if byStatus[constants.SettlementStatusCancelled].SettlementCount != 1 {
		t.Fatalf("expected one cancelled settlement, got %+v", byStatus)
	}

	top, err := repo.GetPeriodTopSellers(period.ID, 5)
	if err != nil {
		t.Fatalf("top sellers failed: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected cancelled settlement excluded, got %+v", top)
	}
	if top[0].SellerCode != "B" || top[0].FinalSettlementAmount != 47500 || top[1].SellerCode != "A" {
		t.Fatalf("unexpected ranking: %+v", top)
	}
}

func TestSettlementSummaryRepositoryEmptyPeriod(t *testing.T) {
	db := openRepositoryTestDB(t, "settlement_summary_repo_empty")
	repo := NewSettlementSummaryRepository(db)

	rows, err := repo.GetPeriodStatusRows(42)
	if err != nil {
		t.Fatalf("status rows failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %+v", rows)
	}
}
