package billing

import (
	"errors"
	"math"
	"time"

	"github.com/planbar-app/planbar/internal/model"
)

// ErrNoProject is returned when a cost is requested for an absent project.
// Callers log and degrade; it is not a fatal condition.
var ErrNoProject = errors.New("billing: no project")

// Cost is the lifetime cost summary of a single project.
type Cost struct {
	TotalHours   float64
	PricePerHour float64
	TotalAmount  float64
}

// ClientMetric is one client's rollup for a reporting month. PricePerHour is
// the blended effective rate (amount over hours), not a tier value: a client
// can have projects on different resolved rates in the same month.
type ClientMetric struct {
	TotalHours   float64
	PricePerHour float64
	TotalAmount  float64
}

// BookingHours returns the booking's duration in hours, rounded to one
// decimal place. A booking missing either endpoint counts as zero hours.
func BookingHours(b model.Booking) float64 {
	if b.Start.IsZero() || b.End.IsZero() {
		return 0
	}
	h := b.End.Sub(b.Start).Hours()
	return math.Round(h*10) / 10
}

// ResolveRate returns the effective hourly rate for a project given its
// lifetime cumulative hours. Custom projects use their explicit rate and
// ignore hours entirely; package projects are priced from the rate table.
func (t RateTable) ResolveRate(p model.Project, cumulativeHours float64) float64 {
	if p.BillingType == model.BillingCustom {
		return p.CustomRate
	}
	return t.RateFor(cumulativeHours)
}

// ProjectCost sums every booking ever made on the project and prices the
// lifetime total at the resolved rate. Tiering is retroactive: once a
// project crosses a threshold, all of its hours are reported at the new
// bracket's rate.
func (t RateTable) ProjectCost(all []model.Booking, p *model.Project) (Cost, error) {
	if p == nil {
		return Cost{}, ErrNoProject
	}
	var hours float64
	for _, b := range all {
		hours += BookingHours(b)
	}
	rate := t.ResolveRate(*p, hours)
	return Cost{
		TotalHours:   hours,
		PricePerHour: rate,
		TotalAmount:  hours * rate,
	}, nil
}

// MonthlyClientMetrics rolls bookings up per client for the calendar month
// containing month. Rates are resolved against each project's lifetime
// hours (any month), then applied to the hours booked in the target month.
// Bookings whose client or project is missing from the reference lists
// contribute nothing; reporting degrades rather than failing on dangling
// references.
func (t RateTable) MonthlyClientMetrics(bookings []model.Booking, projects []model.Project, clients []model.Client, month time.Time) map[string]ClientMetric {
	clientsByID := make(map[string]model.Client, len(clients))
	for _, c := range clients {
		clientsByID[c.ID] = c
	}
	projectsByID := make(map[string]model.Project, len(projects))
	for _, p := range projects {
		projectsByID[p.ID] = p
	}

	// client -> project -> bookings in the target month
	monthly := map[string]map[string][]model.Booking{}
	for _, b := range bookings {
		if !sameMonth(b.Start, month) {
			continue
		}
		if _, ok := clientsByID[b.ClientID]; !ok {
			continue
		}
		if _, ok := projectsByID[b.ProjectID]; !ok {
			continue
		}
		byProject := monthly[b.ClientID]
		if byProject == nil {
			byProject = map[string][]model.Booking{}
			monthly[b.ClientID] = byProject
		}
		byProject[b.ProjectID] = append(byProject[b.ProjectID], b)
	}

	metrics := make(map[string]ClientMetric, len(monthly))
	for clientID, byProject := range monthly {
		var m ClientMetric
		for projectID, monthBookings := range byProject {
			project := projectsByID[projectID]

			var lifetime []model.Booking
			for _, b := range bookings {
				if b.ProjectID == projectID {
					lifetime = append(lifetime, b)
				}
			}
			cost, err := t.ProjectCost(lifetime, &project)
			if err != nil {
				continue
			}

			var monthHours float64
			for _, b := range monthBookings {
				monthHours += BookingHours(b)
			}
			m.TotalHours += monthHours
			m.TotalAmount += monthHours * cost.PricePerHour
		}
		if m.TotalHours > 0 {
			m.PricePerHour = m.TotalAmount / m.TotalHours
		}
		metrics[clientsByID[clientID].Name] = m
	}
	return metrics
}

func sameMonth(t, ref time.Time) bool {
	return t.Year() == ref.Year() && t.Month() == ref.Month()
}
