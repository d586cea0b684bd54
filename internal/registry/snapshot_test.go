package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdrflow/cdrflow/internal/model"
)

func testCategories() []model.Category {
	return []model.Category{
		{Name: "FISSI", Currency: "EUR", PricePerMinute: 0.02, IsActive: true,
			Patterns: []string{"URBANE", "FISSO", "LOCALE"}},
		{Name: "MOBILI", Currency: "EUR", PricePerMinute: 0.15, IsActive: true,
			Patterns: []string{"CELLULARE", "MOBILE", "TIM"}},
		{Name: "INTERNAZIONALI", Currency: "EUR", PricePerMinute: 0.25, IsActive: true,
			Patterns: []string{"INTERNAZIONALE", "ROAMING EU"}},
		{Name: "DISMESSI", Currency: "EUR", PricePerMinute: 0.99, IsActive: false,
			Patterns: []string{"URBANE"}},
	}
}

func TestSnapshotClassify(t *testing.T) {
	snapshot := NewSnapshot(testCategories())

	tests := []struct {
		name        string
		callType    string
		wantName    string
		wantPattern string
	}{
		{
			name:        "exact pattern match",
			callType:    "URBANE",
			wantName:    "FISSI",
			wantPattern: "URBANE",
		},
		{
			name:        "substring containment",
			callType:    "CHIAMATE URBANE NAZIONALI",
			wantName:    "FISSI",
			wantPattern: "URBANE",
		},
		{
			name:        "case insensitive",
			callType:    "cellulare tim",
			wantName:    "MOBILI",
			wantPattern: "CELLULARE",
		},
		{
			name:        "longest pattern wins across categories",
			callType:    "MOBILE ROAMING EU",
			wantName:    "INTERNAZIONALI",
			wantPattern: "ROAMING EU",
		},
		{
			name:        "inactive categories never match",
			callType:    "SCONOSCIUTO",
			wantName:    "",
			wantPattern: "",
		},
		{
			name:     "empty call type",
			callType: "   ",
			wantName: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := snapshot.Classify(tt.callType)
			if tt.wantName == "" {
				assert.Nil(t, match)
				return
			}
			require.NotNil(t, match)
			assert.Equal(t, tt.wantName, match.Category.Name)
			assert.Equal(t, tt.wantPattern, match.Pattern)
		})
	}
}

func TestSnapshotClassifyNameTieBreak(t *testing.T) {
	// Two active categories carry the same-length pattern; the
	// lexicographically smaller name must win regardless of input order.
	cats := []model.Category{
		{Name: "ZULU", Currency: "EUR", PricePerMinute: 1, IsActive: true, Patterns: []string{"FAX"}},
		{Name: "ALFA", Currency: "EUR", PricePerMinute: 1, IsActive: true, Patterns: []string{"FAX"}},
	}

	for range 10 {
		match := NewSnapshot(cats).Classify("SERVIZIO FAX")
		require.NotNil(t, match)
		assert.Equal(t, "ALFA", match.Category.Name)
	}

	// Reversed declaration order produces the identical winner.
	reversed := []model.Category{cats[1], cats[0]}
	match := NewSnapshot(reversed).Classify("SERVIZIO FAX")
	require.NotNil(t, match)
	assert.Equal(t, "ALFA", match.Category.Name)
}

func TestSnapshotClassifyDeterministic(t *testing.T) {
	snapshot := NewSnapshot(testCategories())

	first := snapshot.Classify("CELLULARE TIM ROAMING EU")
	require.NotNil(t, first)
	for range 100 {
		match := snapshot.Classify("CELLULARE TIM ROAMING EU")
		require.NotNil(t, match)
		assert.Equal(t, first.Category.Name, match.Category.Name)
		assert.Equal(t, first.Pattern, match.Pattern)
	}
}

func TestSnapshotFiltersInactive(t *testing.T) {
	snapshot := NewSnapshot(testCategories())
	assert.Equal(t, 3, snapshot.Len())
	for _, cat := range snapshot.Categories() {
		assert.True(t, cat.IsActive)
	}
}

func TestSnapshotIsolatedFromLaterEdits(t *testing.T) {
	cats := testCategories()
	snapshot := NewSnapshot(cats)

	// Mutating the source slice after the snapshot is taken must not
	// change classification results.
	cats[0].Patterns = nil
	match := snapshot.Classify("URBANE")
	require.NotNil(t, match)
	assert.Equal(t, "FISSI", match.Category.Name)
}
