// Package pricing computes billable call costs. Every computation is a
// pure function of its inputs; nothing here reads ambient state.
package pricing

import (
	"math"

	"github.com/cdrflow/cdrflow/internal/config"
	"github.com/cdrflow/cdrflow/internal/model"
)

// Cost computes the billable cost of one call.
//
// The effective per-minute rate is the category price (or the contract's
// per-category override when present) composed with a markup percent.
// The markup source is the first non-nil of: category override, contract
// override, global default.
//
// Billing units follow telecom convention: per_minute rounds duration up
// to whole minutes before multiplying, per_second bills exact duration
// at the per-second equivalent rate. Zero duration and unclassified
// calls (nil category) cost zero.
func Cost(durationSeconds int64, category *model.Category, contract *model.Contract, cfg config.Pricing) float64 {
	if category == nil || durationSeconds <= 0 {
		return 0
	}

	base := category.PricePerMinute
	if contract != nil {
		if override, ok := contract.PriceOverrides[category.Name]; ok {
			base = override
		}
	}

	rate := base * (1 + markupPercent(category, contract, cfg)/100)

	switch cfg.Unit {
	case model.PerSecond:
		return float64(durationSeconds) * rate / 60.0
	default:
		minutes := math.Ceil(float64(durationSeconds) / 60.0)
		return minutes * rate
	}
}

func markupPercent(category *model.Category, contract *model.Contract, cfg config.Pricing) float64 {
	if category.MarkupPercent != nil {
		return *category.MarkupPercent
	}
	if contract != nil && contract.MarkupPercent != nil {
		return *contract.MarkupPercent
	}
	return cfg.GlobalMarkupPercent
}
