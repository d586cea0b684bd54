package model

import "math"

// CategoryBreakdown accumulates calls, duration and cost for one
// (contract-or-global, category) pair. Merging is commutative and
// associative so parallel partial aggregations combine in any order.
type CategoryBreakdown struct {
	Calls           int64
	DurationSeconds int64
	Cost            float64
}

// Merge adds another breakdown into this one.
func (b *CategoryBreakdown) Merge(other CategoryBreakdown) {
	b.Calls += other.Calls
	b.DurationSeconds += other.DurationSeconds
	b.Cost += other.Cost
}

// CostPerMinute derives the effective per-minute rate from the
// accumulated totals. Zero duration yields zero.
func (b CategoryBreakdown) CostPerMinute() float64 {
	if b.DurationSeconds == 0 {
		return 0
	}
	return Round4(b.Cost / (float64(b.DurationSeconds) / 60.0))
}

// DailyBreakdown accumulates one calendar day of a contract's traffic.
type DailyBreakdown struct {
	Calls           int64
	DurationSeconds int64
	Cost            float64
}

// Merge adds another daily breakdown into this one.
func (d *DailyBreakdown) Merge(other DailyBreakdown) {
	d.Calls += other.Calls
	d.DurationSeconds += other.DurationSeconds
	d.Cost += other.Cost
}

// Round4 rounds to four decimal places, matching the precision the
// artifact format uses for euro amounts.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// Round2 rounds to two decimal places, used for minute totals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MergeCategoryBreakdowns sums two per-category maps into a new map.
func MergeCategoryBreakdowns(a, b map[string]CategoryBreakdown) map[string]CategoryBreakdown {
	out := make(map[string]CategoryBreakdown, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		acc := out[k]
		acc.Merge(v)
		out[k] = acc
	}
	return out
}
