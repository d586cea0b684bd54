package model

import "time"

// BillingUnit selects how call duration is converted into billed time.
type BillingUnit string

const (
	// PerMinute bills partial minutes as full minutes (telecom convention).
	PerMinute BillingUnit = "per_minute"
	// PerSecond bills exact duration at the per-second equivalent rate.
	PerSecond BillingUnit = "per_second"
)

// UnclassifiedCategory is the pseudo-category for call types that match
// no active category. It carries a zero price so unmatched traffic is
// counted but never billed.
const UnclassifiedCategory = "UNCLASSIFIED"

// Category is a billable classification bucket for call types.
type Category struct {
	CreatedAt      time.Time
	UpdatedAt      time.Time
	MarkupPercent  *float64
	Name           string
	DisplayName    string
	Description    string
	Currency       string
	Patterns       []string
	PricePerMinute float64
	IsActive       bool
}

// Contract is a billing entity aggregating calls for one client.
type Contract struct {
	MarkupPercent  *float64
	Code           string
	ClientLabel    string
	PriceOverrides map[string]float64
}
