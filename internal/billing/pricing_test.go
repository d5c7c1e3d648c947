package billing

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/planbar-app/planbar/internal/model"
)

func booking(projectID, clientID string, start time.Time, hours float64) model.Booking {
	return model.Booking{
		ClientID:  clientID,
		ProjectID: projectID,
		Start:     start,
		End:       start.Add(time.Duration(hours * float64(time.Hour))),
	}
}

func TestBookingHours_RoundsToOneDecimal(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		minutes int
		want    float64
	}{
		{60, 1.0},
		{90, 1.5},
		{100, 1.7}, // 1.666... rounds up
		{50, 0.8},  // 0.833... rounds down
		{44, 0.7},  // 0.733... rounds down
	}
	for _, tc := range cases {
		b := model.Booking{Start: start, End: start.Add(time.Duration(tc.minutes) * time.Minute)}
		if got := BookingHours(b); got != tc.want {
			t.Fatalf("%d minutes: got %v hours, want %v", tc.minutes, got, tc.want)
		}
	}
}

func TestBookingHours_MissingEndpoint(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	if got := BookingHours(model.Booking{Start: start}); got != 0 {
		t.Fatalf("missing end: got %v, want 0", got)
	}
	if got := BookingHours(model.Booking{End: start}); got != 0 {
		t.Fatalf("missing start: got %v, want 0", got)
	}
}

func TestRateFor_StepFunction(t *testing.T) {
	cases := []struct {
		hours float64
		want  float64
	}{
		{0, 350},
		{9.9, 350},
		{10, 260},
		{19.9, 260},
		{20, 230},
		{39.9, 230},
		{40, 160},
		{400, 160},
	}
	for _, tc := range cases {
		if got := DefaultRates.RateFor(tc.hours); got != tc.want {
			t.Fatalf("RateFor(%v) = %v, want %v", tc.hours, got, tc.want)
		}
	}
}

func TestResolveRate_CustomIgnoresHours(t *testing.T) {
	p := model.Project{BillingType: model.BillingCustom, CustomRate: 120}
	if got := DefaultRates.ResolveRate(p, 500); got != 120 {
		t.Fatalf("custom rate: got %v, want 120", got)
	}
	missing := model.Project{BillingType: model.BillingCustom}
	if got := DefaultRates.ResolveRate(missing, 500); got != 0 {
		t.Fatalf("custom project without a rate must resolve to 0, got %v", got)
	}
}

func TestTierRate_Labels(t *testing.T) {
	if got := TierRate(model.TierEnterprise); got != 160 {
		t.Fatalf("enterprise tier: got %v, want 160", got)
	}
	if got := TierRate("no-such-tier"); got != 350 {
		t.Fatalf("unknown tier must fall back to the lowest, got %v", got)
	}
	if got := TierRate(""); got != 350 {
		t.Fatalf("empty tier must fall back to the lowest, got %v", got)
	}
}

func TestProjectCost_RetroactiveTiering(t *testing.T) {
	p := &model.Project{ID: "p1", BillingType: model.BillingPackage}
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	// 5h + 6h = 11h lifetime: both bookings priced at the 10-hour bracket.
	all := []model.Booking{
		booking("p1", "c1", day, 5),
		booking("p1", "c1", day.AddDate(0, 0, 1), 6),
	}

	cost, err := DefaultRates.ProjectCost(all, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cost.TotalHours != 11 {
		t.Fatalf("total hours: got %v, want 11", cost.TotalHours)
	}
	if cost.PricePerHour != 260 {
		t.Fatalf("price per hour: got %v, want 260", cost.PricePerHour)
	}
	if cost.TotalAmount != 2860 {
		t.Fatalf("total amount: got %v, want 2860", cost.TotalAmount)
	}
}

func TestProjectCost_NilProject(t *testing.T) {
	_, err := DefaultRates.ProjectCost(nil, nil)
	if !errors.Is(err, ErrNoProject) {
		t.Fatalf("expected ErrNoProject, got %v", err)
	}
}

func TestMonthlyClientMetrics_BlendedRate(t *testing.T) {
	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	clients := []model.Client{{ID: "c1", Name: "Acme"}}
	projects := []model.Project{
		{ID: "p260", Name: "Refresh", ClientID: "c1", BillingType: model.BillingPackage},
		{ID: "p160", Name: "Retainer", ClientID: "c1", BillingType: model.BillingPackage},
	}

	var bookings []model.Booking
	// p260: 10 hours in March, lifetime 10h resolves the 260 bracket.
	bookings = append(bookings,
		booking("p260", "c1", march.AddDate(0, 0, 2).Add(9*time.Hour), 5),
		booking("p260", "c1", march.AddDate(0, 0, 3).Add(9*time.Hour), 5),
	)
	// p160: 40 lifetime hours before March push it into the 160 bracket,
	// then 5 hours booked in March.
	feb := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		bookings = append(bookings, booking("p160", "c1", feb.AddDate(0, 0, i), 5))
	}
	bookings = append(bookings, booking("p160", "c1", march.AddDate(0, 0, 4).Add(9*time.Hour), 5))

	metrics := DefaultRates.MonthlyClientMetrics(bookings, projects, clients, march)
	m, ok := metrics["Acme"]
	if !ok {
		t.Fatalf("expected metrics keyed by client name, got %v", metrics)
	}
	if m.TotalHours != 15 {
		t.Fatalf("total hours: got %v, want 15", m.TotalHours)
	}
	if m.TotalAmount != 3400 {
		t.Fatalf("total amount: got %v, want 3400 (2600 + 800)", m.TotalAmount)
	}
	want := 3400.0 / 15.0
	if math.Abs(m.PricePerHour-want) > 1e-9 {
		t.Fatalf("blended rate: got %v, want %v", m.PricePerHour, want)
	}
}

func TestMonthlyClientMetrics_SkipsDanglingReferences(t *testing.T) {
	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	clients := []model.Client{{ID: "c1", Name: "Acme"}}
	projects := []model.Project{{ID: "p1", Name: "Refresh", ClientID: "c1", BillingType: model.BillingPackage}}

	bookings := []model.Booking{
		booking("p1", "c1", march.AddDate(0, 0, 2).Add(9*time.Hour), 2),
		booking("p1", "ghost-client", march.AddDate(0, 0, 3).Add(9*time.Hour), 2),
		booking("ghost-project", "c1", march.AddDate(0, 0, 4).Add(9*time.Hour), 2),
	}

	metrics := DefaultRates.MonthlyClientMetrics(bookings, projects, clients, march)
	if len(metrics) != 1 {
		t.Fatalf("expected a single client entry, got %d", len(metrics))
	}
	if m := metrics["Acme"]; m.TotalHours != 2 {
		t.Fatalf("dangling references must contribute nothing, got %v hours", m.TotalHours)
	}
}

func TestMonthlyClientMetrics_EmptyMonth(t *testing.T) {
	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	metrics := DefaultRates.MonthlyClientMetrics(nil, nil, nil, march)
	if len(metrics) != 0 {
		t.Fatalf("expected empty map, got %v", metrics)
	}
}
