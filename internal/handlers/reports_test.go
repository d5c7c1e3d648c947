package handlers

import (
	"testing"
	"time"

	"github.com/planbar-app/planbar/internal/model"
)

func TestParseMonth(t *testing.T) {
	month, err := parseMonth("2026-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !month.Equal(want) {
		t.Fatalf("got %s, want %s", month, want)
	}

	if _, err := parseMonth("March 2026"); err == nil {
		t.Fatalf("expected error for malformed month")
	}

	month, err = parseMonth("")
	if err != nil {
		t.Fatalf("unexpected error for empty month: %v", err)
	}
	if month.Day() != 1 || month.Hour() != 0 {
		t.Fatalf("empty month must default to the first of the current month, got %s", month)
	}
}

func TestNominalRate(t *testing.T) {
	custom := model.Project{BillingType: model.BillingCustom, CustomRate: 95}
	if got := nominalRate(custom); got != 95 {
		t.Fatalf("custom project: got %v, want 95", got)
	}
	pkg := model.Project{BillingType: model.BillingPackage, PackageTier: model.TierAgency}
	if got := nominalRate(pkg); got != 230 {
		t.Fatalf("agency package: got %v, want 230", got)
	}
	unset := model.Project{BillingType: model.BillingPackage}
	if got := nominalRate(unset); got != 350 {
		t.Fatalf("unset tier: got %v, want 350", got)
	}
}
