package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdrflow/cdrflow/internal/model"
)

func record(contract, callType string, day int, seconds int64) model.CallRecord {
	return model.CallRecord{
		Timestamp:       time.Date(2025, 1, day, 10, 0, 0, 0, time.UTC),
		CallType:        callType,
		ContractCode:    contract,
		ClientLabel:     "Milano",
		DurationSeconds: seconds,
	}
}

func TestContractAccumTotals(t *testing.T) {
	acc := newContractAccum("C1")
	acc.add(record("C1", "URBANE", 1, 30), "FISSI", 0.011)
	acc.add(record("C1", "CELLULARE", 1, 90), "MOBILI", 0.11)
	acc.add(record("C1", "URBANE", 2, 60), "FISSI", 0.022)

	calls, duration, cost := acc.totals()
	assert.Equal(t, int64(3), calls)
	assert.Equal(t, int64(180), duration)
	assert.InDelta(t, 0.143, cost, 1e-9)

	assert.Equal(t, int64(2), acc.byCategory["FISSI"].Calls)
	assert.Equal(t, int64(2), acc.byDay["2025-01-01"].Calls)
	assert.Equal(t, int64(1), acc.byDay["2025-01-02"].Calls)
	assert.Equal(t, "Milano", acc.clientLabel)
}

func TestRunAccumMergeOrderIndependent(t *testing.T) {
	records := []struct {
		contract string
		category string
		day      int
		seconds  int64
		cost     float64
	}{
		{"C1", "FISSI", 1, 30, 0.011},
		{"C1", "MOBILI", 1, 90, 0.11},
		{"C2", "FISSI", 2, 60, 0.022},
		{"C2", "UNCLASSIFIED", 2, 15, 0},
		{"C3", "MOBILI", 3, 300, 0.55},
	}

	build := func(order []int, split int) *runAccum {
		left, right := newRunAccum(), newRunAccum()
		for n, i := range order {
			r := records[i]
			target := left
			if n >= split {
				target = right
			}
			target.contract(r.contract).add(
				record(r.contract, "", r.day, r.seconds), r.category, r.cost)
		}
		left.merge(right)
		return left
	}

	a := build([]int{0, 1, 2, 3, 4}, 2)
	b := build([]int{4, 3, 2, 1, 0}, 3)

	require.Len(t, a.contracts, 3)
	require.Len(t, b.contracts, 3)
	for code, accA := range a.contracts {
		accB := b.contracts[code]
		require.NotNil(t, accB, "contract %s missing after reordered merge", code)
		assert.Equal(t, accA.byCategory, accB.byCategory, "contract %s categories", code)
		assert.Equal(t, accA.byDay, accB.byDay, "contract %s days", code)
	}
}

func TestBuildContractReport(t *testing.T) {
	acc := newContractAccum("C1")
	acc.add(record("C1", "URBANE", 1, 30), "FISSI", 0.011)
	acc.add(record("C1", "CELLULARE", 1, 90), "MOBILI", 0.11)

	rep := buildContractReport(acc, "2025-01", "2025-01-31T12:00:00Z")

	assert.Equal(t, "C1_2025-01.json", rep.Filename)
	assert.Equal(t, "C1", rep.ContractCode)
	assert.Equal(t, "Milano", rep.ClientCity)
	assert.False(t, rep.IsSummary)
	assert.Equal(t, int64(2), rep.TotalCalls)
	assert.InDelta(t, 2.0, rep.TotalDurationMinutes, 1e-9)
	assert.InDelta(t, 0.121, rep.TotalCost, 1e-9)

	fissi := rep.CallTypesBreakdown["FISSI"]
	assert.Equal(t, int64(1), fissi.Calls)
	assert.Equal(t, int64(30), fissi.DurationSeconds)
	assert.InDelta(t, 0.011, fissi.Cost, 1e-9)
	assert.InDelta(t, 0.022, fissi.CostPerMinute, 1e-9)

	day := rep.DailyBreakdown["2025-01-01"]
	assert.Equal(t, int64(2), day.Calls)
	assert.InDelta(t, 2.0, day.DurationMinutes, 1e-9)
	assert.InDelta(t, 0.121, day.Cost, 1e-9)
}

func TestBuildSummaryReport(t *testing.T) {
	run := newRunAccum()
	run.contract("C1").add(record("C1", "URBANE", 1, 60), "FISSI", 0.02)
	run.contract("C2").add(record("C2", "CELLULARE", 1, 120), "MOBILI", 0.30)
	run.contract("C2").add(record("C2", "CELLULARE", 2, 60), "MOBILI", 0.15)

	rep := buildSummaryReport(run, "2025-01", "2025-01-31T12:00:00Z")

	assert.Equal(t, "SUMMARY_2025-01.json", rep.Filename)
	assert.Equal(t, "SUMMARY", rep.ContractCode)
	assert.True(t, rep.IsSummary)
	assert.Equal(t, 2, rep.ContractsProcessed)
	assert.Equal(t, int64(3), rep.TotalCalls)
	assert.InDelta(t, 4.0, rep.TotalDurationMinutes, 1e-9)
	assert.InDelta(t, 0.47, rep.TotalCost, 1e-9)

	require.Len(t, rep.TopContracts.TopByCost, 2)
	assert.Equal(t, "C2", rep.TopContracts.TopByCost[0].ContractCode)
	require.Len(t, rep.TopContracts.TopByCalls, 2)
	assert.Equal(t, "C2", rep.TopContracts.TopByCalls[0].ContractCode)
}

func TestBuildSummaryReportRankingsDeterministicTies(t *testing.T) {
	run := newRunAccum()
	// Identical totals everywhere: ranking order falls back to contract code.
	for _, code := range []string{"C3", "C1", "C2"} {
		run.contract(code).add(record(code, "URBANE", 1, 60), "FISSI", 0.02)
	}

	rep := buildSummaryReport(run, "2025-01", "2025-01-31T12:00:00Z")

	codes := make([]string, len(rep.TopContracts.TopByCost))
	for i, tc := range rep.TopContracts.TopByCost {
		codes[i] = tc.ContractCode
	}
	assert.Equal(t, []string{"C1", "C2", "C3"}, codes)
}

func TestBuildSummaryReportTruncatesRankings(t *testing.T) {
	run := newRunAccum()
	for _, code := range []string{"C1", "C2", "C3", "C4", "C5", "C6", "C7"} {
		run.contract(code).add(record(code, "URBANE", 1, 60), "FISSI", 0.02)
	}

	rep := buildSummaryReport(run, "2025-01", "2025-01-31T12:00:00Z")

	assert.Len(t, rep.TopContracts.TopByCost, model.TopContractsLimit)
	assert.Len(t, rep.TopContracts.TopByCalls, model.TopContractsLimit)
	assert.Equal(t, 7, rep.ContractsProcessed)
}

func TestRunStateString(t *testing.T) {
	assert.Equal(t, "INITIALIZED", StateInitialized.String())
	assert.Equal(t, "NORMALIZING", StateNormalizing.String())
	assert.Equal(t, "CLASSIFYING", StateClassifying.String())
	assert.Equal(t, "AGGREGATING", StateAggregating.String())
	assert.Equal(t, "FINALIZED", StateFinalized.String())
	assert.Equal(t, "FAILED", StateFailed.String())
}
