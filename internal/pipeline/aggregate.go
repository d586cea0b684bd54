package pipeline

import (
	"sort"

	"github.com/cdrflow/cdrflow/internal/model"
	"github.com/cdrflow/cdrflow/internal/report"
)

// contractAccum is the in-flight aggregation state for one contract.
// The engine owns these exclusively during a run; merging is commutative
// and associative so parallel partials combine in any order.
type contractAccum struct {
	byCategory  map[string]model.CategoryBreakdown
	byDay       map[string]model.DailyBreakdown
	clientLabel string
	code        string
}

func newContractAccum(code string) *contractAccum {
	return &contractAccum{
		code:       code,
		byCategory: make(map[string]model.CategoryBreakdown),
		byDay:      make(map[string]model.DailyBreakdown),
	}
}

func (a *contractAccum) add(record model.CallRecord, category string, cost float64) {
	cb := a.byCategory[category]
	cb.Merge(model.CategoryBreakdown{Calls: 1, DurationSeconds: record.DurationSeconds, Cost: cost})
	a.byCategory[category] = cb

	day := record.Day()
	db := a.byDay[day]
	db.Merge(model.DailyBreakdown{Calls: 1, DurationSeconds: record.DurationSeconds, Cost: cost})
	a.byDay[day] = db

	if a.clientLabel == "" {
		a.clientLabel = record.ClientLabel
	}
}

func (a *contractAccum) merge(other *contractAccum) {
	a.byCategory = model.MergeCategoryBreakdowns(a.byCategory, other.byCategory)
	for day, db := range other.byDay {
		acc := a.byDay[day]
		acc.Merge(db)
		a.byDay[day] = acc
	}
	if a.clientLabel == "" {
		a.clientLabel = other.clientLabel
	}
}

func (a *contractAccum) totals() (calls, durationSeconds int64, cost float64) {
	for _, cb := range a.byCategory {
		calls += cb.Calls
		durationSeconds += cb.DurationSeconds
		cost += cb.Cost
	}
	return calls, durationSeconds, cost
}

// runAccum groups contract accumulators for one run.
type runAccum struct {
	contracts map[string]*contractAccum
}

func newRunAccum() *runAccum {
	return &runAccum{contracts: make(map[string]*contractAccum)}
}

func (r *runAccum) contract(code string) *contractAccum {
	acc, ok := r.contracts[code]
	if !ok {
		acc = newContractAccum(code)
		r.contracts[code] = acc
	}
	return acc
}

func (r *runAccum) merge(other *runAccum) {
	for code, acc := range other.contracts {
		if existing, ok := r.contracts[code]; ok {
			existing.merge(acc)
		} else {
			r.contracts[code] = acc
		}
	}
}

// buildContractReport freezes one contract's accumulator into the
// artifact structure.
func buildContractReport(acc *contractAccum, period, generationDate string) *model.ContractReport {
	calls, durationSeconds, cost := acc.totals()

	breakdown := make(map[string]model.ContractCategoryEntry, len(acc.byCategory))
	for name, cb := range acc.byCategory {
		breakdown[name] = model.ContractCategoryEntry{
			Calls:           cb.Calls,
			DurationSeconds: cb.DurationSeconds,
			Cost:            model.Round4(cb.Cost),
			CostPerMinute:   cb.CostPerMinute(),
		}
	}

	daily := make(map[string]model.DailyEntry, len(acc.byDay))
	for day, db := range acc.byDay {
		daily[day] = model.DailyEntry{
			Calls:           db.Calls,
			DurationMinutes: model.Round2(float64(db.DurationSeconds) / 60.0),
			Cost:            model.Round4(db.Cost),
		}
	}

	return &model.ContractReport{
		Filename:             report.ContractFilename(acc.code, period),
		ContractCode:         acc.code,
		ClientCity:           acc.clientLabel,
		GenerationDate:       generationDate,
		TotalCalls:           calls,
		TotalDurationMinutes: model.Round2(float64(durationSeconds) / 60.0),
		TotalCost:            model.Round4(cost),
		CallTypesBreakdown:   breakdown,
		DailyBreakdown:       daily,
		IsSummary:            false,
	}
}

// buildSummaryReport aggregates every contract processed in one run.
func buildSummaryReport(run *runAccum, period, generationDate string) *model.SummaryReport {
	byCategory := make(map[string]model.CategoryBreakdown)
	var totalCalls, totalDuration int64
	var totalCost float64

	type ranked struct {
		code  string
		label string
		calls int64
		cost  float64
	}
	rankings := make([]ranked, 0, len(run.contracts))

	for code, acc := range run.contracts {
		byCategory = model.MergeCategoryBreakdowns(byCategory, acc.byCategory)

		calls, durationSeconds, cost := acc.totals()
		totalCalls += calls
		totalDuration += durationSeconds
		totalCost += cost

		rankings = append(rankings, ranked{code: code, label: acc.clientLabel, calls: calls, cost: cost})
	}

	breakdown := make(map[string]model.SummaryCategoryEntry, len(byCategory))
	for name, cb := range byCategory {
		breakdown[name] = model.SummaryCategoryEntry{
			Calls:           cb.Calls,
			DurationMinutes: model.Round2(float64(cb.DurationSeconds) / 60.0),
			Cost:            model.Round4(cb.Cost),
		}
	}

	top := func(less func(a, b ranked) bool) []model.TopContract {
		sorted := make([]ranked, len(rankings))
		copy(sorted, rankings)
		sort.Slice(sorted, func(i, j int) bool {
			if less(sorted[i], sorted[j]) {
				return true
			}
			if less(sorted[j], sorted[i]) {
				return false
			}
			return sorted[i].code < sorted[j].code // deterministic ties
		})
		if len(sorted) > model.TopContractsLimit {
			sorted = sorted[:model.TopContractsLimit]
		}
		out := make([]model.TopContract, len(sorted))
		for i, r := range sorted {
			out[i] = model.TopContract{
				ContractCode: r.code,
				ClientCity:   r.label,
				TotalCalls:   r.calls,
				TotalCost:    model.Round4(r.cost),
			}
		}
		return out
	}

	return &model.SummaryReport{
		Filename:             report.SummaryFilename(period),
		ContractCode:         "SUMMARY",
		ContractsProcessed:   len(run.contracts),
		GenerationDate:       generationDate,
		TotalCalls:           totalCalls,
		TotalDurationMinutes: model.Round2(float64(totalDuration) / 60.0),
		TotalCost:            model.Round4(totalCost),
		CallTypesBreakdown:   breakdown,
		TopContracts: model.TopContracts{
			TopByCost:  top(func(a, b ranked) bool { return a.cost > b.cost }),
			TopByCalls: top(func(a, b ranked) bool { return a.calls > b.calls }),
		},
		IsSummary: true,
	}
}
