package billing

import "github.com/planbar-app/planbar/internal/model"

// RateTier is one bracket of the package rate table: projects whose lifetime
// booked hours reach MinHours are billed Rate per hour.
type RateTier struct {
	MinHours float64
	Rate     float64
}

// RateTable is an ordered list of tiers, descending by threshold. RateFor
// picks the first tier whose threshold is met, so the highest applicable
// bracket always wins.
type RateTable []RateTier

// DefaultRates is the studio's package pricing. The bottom bracket is the
// walk-in rate for projects under ten lifetime hours.
var DefaultRates = RateTable{
	{MinHours: 40, Rate: 160},
	{MinHours: 20, Rate: 230},
	{MinHours: 10, Rate: 260},
	{MinHours: 0, Rate: 350},
}

// RateFor resolves the hourly rate for the given lifetime hours. This is a
// step function, not a blend: a project at 39.9 hours pays the 20-hour
// bracket for all of its hours.
func (t RateTable) RateFor(hours float64) float64 {
	for _, tier := range t {
		if hours >= tier.MinHours {
			return tier.Rate
		}
	}
	return 0
}

// nominal tier rates shown on package projects before any hours accrue.
var tierRates = map[string]float64{
	model.TierStarter:    350,
	model.TierStudio:     260,
	model.TierAgency:     230,
	model.TierEnterprise: 160,
}

// TierRate returns the display rate for a named package tier. Unknown or
// empty labels fall back to the lowest tier.
func TierRate(tier string) float64 {
	if rate, ok := tierRates[tier]; ok {
		return rate
	}
	return tierRates[model.TierStarter]
}
