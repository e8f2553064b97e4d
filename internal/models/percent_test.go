package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPercentJSON(t *testing.T) {
	var fromString Percent
	if err := json.Unmarshal([]byte(`"7.125"`), &fromString); err != nil {
		t.Fatalf("unmarshal string failed: %v", err)
	}
	// 解析阶段保留原始精度，由业务层校验小数位
	if fromString.Decimal.String() != "7.125" {
		t.Fatalf("expected raw precision kept, got %s", fromString.Decimal.String())
	}

	var fromNumber Percent
	if err := json.Unmarshal([]byte(`2.5`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	out, err := json.Marshal(fromNumber)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != `"2.50"` {
		t.Fatalf("expected fixed 2 decimals, got %s", string(out))
	}

	if err := json.Unmarshal([]byte(`"abc"`), &fromNumber); err == nil {
		t.Fatalf("expected error for non-numeric rate")
	}
}

func TestPercentScanRounds(t *testing.T) {
	var p Percent
	if err := p.Scan("3.456"); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if p.String() != "3.46" {
		t.Fatalf("expected 3.46, got %s", p.String())
	}
	value, err := MustPercent("10").Value()
	if err != nil || value != "10" {
		t.Fatalf("unexpected driver value: %v %v", value, err)
	}
}

func TestSettlementPeriodContains(t *testing.T) {
	period := SettlementPeriod{
		StartDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	if !period.Contains(period.StartDate) {
		t.Fatalf("start date should be inclusive")
	}
	if period.Contains(period.EndDate) {
		t.Fatalf("end date should be exclusive")
	}
	if period.Contains(period.StartDate.Add(-time.Nanosecond)) {
		t.Fatalf("instant before start should be excluded")
	}
}
