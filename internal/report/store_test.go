package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdrflow/cdrflow/internal/common"
	"github.com/cdrflow/cdrflow/internal/model"
)

func sampleContractReport() *model.ContractReport {
	return &model.ContractReport{
		Filename:             ContractFilename("C1", "2025-01"),
		ContractCode:         "C1",
		ClientCity:           "Milano",
		GenerationDate:       "2025-01-31T12:00:00Z",
		TotalCalls:           2,
		TotalDurationMinutes: 2.0,
		TotalCost:            0.121,
		CallTypesBreakdown: map[string]model.ContractCategoryEntry{
			"URBANE":    {Calls: 1, DurationSeconds: 30, Cost: 0.011, CostPerMinute: 0.022},
			"CELLULARE": {Calls: 1, DurationSeconds: 90, Cost: 0.11, CostPerMinute: 0.0733},
		},
		DailyBreakdown: map[string]model.DailyEntry{
			"2025-01-01": {Calls: 2, DurationMinutes: 2.0, Cost: 0.121},
		},
		IsSummary: false,
	}
}

func sampleSummaryReport() *model.SummaryReport {
	return &model.SummaryReport{
		Filename:             SummaryFilename("2025-01"),
		ContractCode:         "SUMMARY",
		ContractsProcessed:   1,
		GenerationDate:       "2025-01-31T12:00:00Z",
		TotalCalls:           2,
		TotalDurationMinutes: 2.0,
		TotalCost:            0.121,
		CallTypesBreakdown: map[string]model.SummaryCategoryEntry{
			"URBANE": {Calls: 2, DurationMinutes: 2.0, Cost: 0.121},
		},
		TopContracts: model.TopContracts{
			TopByCost:  []model.TopContract{{ContractCode: "C1", ClientCity: "Milano", TotalCalls: 2, TotalCost: 0.121}},
			TopByCalls: []model.TopContract{{ContractCode: "C1", ClientCity: "Milano", TotalCalls: 2, TotalCost: 0.121}},
		},
		IsSummary: true,
	}
}

func TestStoreWriteReadContract(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	want := sampleContractReport()
	filename, err := store.Write(want)
	require.NoError(t, err)
	assert.Equal(t, "C1_2025-01.json", filename)

	got, err := store.Read(filename)
	require.NoError(t, err)

	contract, ok := got.(*model.ContractReport)
	require.True(t, ok, "contract artifacts reload as the contract variant")
	assert.Equal(t, want, contract)
}

func TestStoreWriteReadSummary(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	want := sampleSummaryReport()
	filename, err := store.Write(want)
	require.NoError(t, err)
	assert.Equal(t, "SUMMARY_2025-01.json", filename)

	got, err := store.Read(filename)
	require.NoError(t, err)

	summary, ok := got.(*model.SummaryReport)
	require.True(t, ok, "summary artifacts reload as the summary variant")
	assert.Equal(t, want, summary)
}

func TestStoreWriteIsCanonical(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	_, err = store.Write(sampleContractReport())
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(dir, "C1_2025-01.json"))
	require.NoError(t, err)

	_, err = store.Write(sampleContractReport())
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(dir, "C1_2025-01.json"))
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical reports serialize byte-identically")
	assert.NotContains(t, string(first), "\n", "canonical form carries no insignificant whitespace")
}

func TestStoreWriteSupersedes(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	first := sampleContractReport()
	_, err = store.Write(first)
	require.NoError(t, err)

	second := sampleContractReport()
	second.TotalCalls = 99
	_, err = store.Write(second)
	require.NoError(t, err)

	got, err := store.Read("C1_2025-01.json")
	require.NoError(t, err)
	assert.Equal(t, int64(99), got.(*model.ContractReport).TotalCalls)
}

func TestStoreReadMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Read("GHOST_2025-01.json")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestStoreReadCorrupt(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	tests := []struct {
		name    string
		content string
	}{
		{"truncated json", `{"contract_code": "C1", "total_`},
		{"wrong shape", `{"is_summary": false, "total_calls": "not a number"}`},
		{"summary missing fields", `{"is_summary": true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := "C9_2025-01.json"
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(tt.content), 0o644))

			_, err := store.Read(name)
			assert.ErrorIs(t, err, common.ErrCorruptArtifact)
		})
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	_, err = store.Write(sampleContractReport())
	require.NoError(t, err)
	_, err = store.Write(sampleSummaryReport())
	require.NoError(t, err)

	other := sampleContractReport()
	other.ContractCode = "C2"
	other.Filename = ContractFilename("C2", "2024-12")
	_, err = store.Write(other)
	require.NoError(t, err)

	// Stray files are invisible to the listing.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	all, err := store.List(ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "C1_2025-01.json", all[0].Filename)
	assert.Equal(t, "C2_2024-12.json", all[1].Filename)
	assert.Equal(t, "SUMMARY_2025-01.json", all[2].Filename)

	summaries, err := store.List(ListFilter{Kind: model.KindSummary})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Empty(t, summaries[0].ContractCode)
	assert.Equal(t, "2025-01", summaries[0].Period)

	byContract, err := store.List(ListFilter{ContractCode: "C2"})
	require.NoError(t, err)
	require.Len(t, byContract, 1)

	byPeriod, err := store.List(ListFilter{Period: "2025-01"})
	require.NoError(t, err)
	assert.Len(t, byPeriod, 2)
}

func TestFilenameHelpers(t *testing.T) {
	assert.Equal(t, "C1_2025-01.json", ContractFilename("C1", "2025-01"))
	assert.Equal(t, "SUMMARY_2025-01.json", SummaryFilename("2025-01"))

	assert.True(t, artifactName.MatchString("ACME-42_2025-01.json"))
	assert.False(t, artifactName.MatchString("_2025-01.json"))
	assert.False(t, artifactName.MatchString("C1_2025-1.json"))
	assert.False(t, artifactName.MatchString("C1_2025-01.json.tmp"))
}
