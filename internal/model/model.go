package model

import "time"

// Billing types a project can carry. Package projects are priced from the
// rate table against lifetime booked hours; custom projects carry their own
// hourly rate.
const (
	BillingCustom  = "custom"
	BillingPackage = "package"
)

// Named package tiers. The label is the nominal tier a client signed up
// for; the billed rate is always resolved from cumulative hours.
const (
	TierStarter    = "starter"
	TierStudio     = "studio"
	TierAgency     = "agency"
	TierEnterprise = "enterprise"
)

type Client struct {
	ID               string
	Name             string
	StripeCustomerID string
	CreatedAt        time.Time
}

type Project struct {
	ID          string
	Name        string
	ClientID    string
	BillingType string
	// CustomRate is only meaningful when BillingType is BillingCustom.
	CustomRate float64
	// PackageTier is only meaningful when BillingType is BillingPackage.
	PackageTier string
	CreatedAt   time.Time
}

// Booking is an hourly session booked by a client, optionally on a project.
// End is expected to be strictly after Start; the core does not validate
// this (the HTTP layer rejects inverted ranges on create).
type Booking struct {
	ID        string
	ClientID  string
	ProjectID string
	Start     time.Time
	End       time.Time
	Title     string
	Status    string
	CreatedAt time.Time

	// Display fields, filled by the week view when joining reference data.
	// Not persisted.
	ClientName  string
	ProjectName string
	Price       float64
}

// TimeSlot is one hour-wide calendar cell of the week view.
type TimeSlot struct {
	Start   time.Time
	Booked  bool
	Buffer  bool
	Booking *Booking
}
