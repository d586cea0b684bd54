package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdrflow/cdrflow/internal/model"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	t.Cleanup(func() { _ = store.Close() })
	return store
}

func floatPtr(f float64) *float64 { return &f }

func TestNewRequiresPath(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestMigrateSeedsDefaults(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 5)

	names := make([]string, len(categories))
	for i, cat := range categories {
		names[i] = cat.Name
		assert.True(t, cat.IsActive)
		assert.Equal(t, "EUR", cat.Currency)
		assert.NotEmpty(t, cat.Patterns)
	}
	assert.Equal(t, []string{"FAX", "FISSI", "INTERNAZIONALI", "MOBILI", "NUMERI_VERDI"}, names)

	verdi, err := store.GetCategory(ctx, "NUMERI_VERDI")
	require.NoError(t, err)
	require.NotNil(t, verdi)
	assert.Zero(t, verdi.PricePerMinute, "toll-free calls are priced at zero")
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Migrate(ctx))

	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 5)
}

func TestCategoryRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	cat := model.Category{
		Name:           "SATELLITARI",
		DisplayName:    "Chiamate Satellitari",
		Description:    "Traffico verso reti satellitari",
		Currency:       "EUR",
		Patterns:       []string{"SATELLITARE", "INMARSAT"},
		PricePerMinute: 1.50,
		MarkupPercent:  floatPtr(25),
		IsActive:       true,
	}
	require.NoError(t, store.InsertCategory(ctx, cat))

	got, err := store.GetCategory(ctx, "SATELLITARI")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, cat.DisplayName, got.DisplayName)
	assert.Equal(t, cat.Patterns, got.Patterns)
	assert.Equal(t, 1.50, got.PricePerMinute)
	require.NotNil(t, got.MarkupPercent)
	assert.Equal(t, 25.0, *got.MarkupPercent)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetCategoryMissing(t *testing.T) {
	store := setupStore(t)

	got, err := store.GetCategory(context.Background(), "GHOST")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInsertCategoryDuplicate(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	cat := model.Category{Name: "FISSI", Currency: "EUR", Patterns: []string{"X"}}
	err := store.InsertCategory(ctx, cat)
	assert.Error(t, err, "name is the primary key")
}

func TestUpdateCategory(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	cat, err := store.GetCategory(ctx, "FAX")
	require.NoError(t, err)
	require.NotNil(t, cat)

	cat.PricePerMinute = 0.05
	cat.MarkupPercent = floatPtr(5)
	require.NoError(t, store.UpdateCategory(ctx, *cat))

	got, err := store.GetCategory(ctx, "FAX")
	require.NoError(t, err)
	assert.Equal(t, 0.05, got.PricePerMinute)
	require.NotNil(t, got.MarkupPercent)
	assert.Equal(t, 5.0, *got.MarkupPercent)
}

func TestUpdateCategoryMissing(t *testing.T) {
	store := setupStore(t)

	err := store.UpdateCategory(context.Background(), model.Category{Name: "GHOST", Currency: "EUR"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestReplaceCategories(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	incoming := []model.Category{
		{Name: "SOLO", Currency: "EUR", Patterns: []string{"SOLO"}, PricePerMinute: 0.10, IsActive: true},
	}
	require.NoError(t, store.ReplaceCategories(ctx, incoming))

	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "SOLO", categories[0].Name)
}

func TestContractRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	c := model.Contract{
		Code:          "C1",
		ClientLabel:   "Milano",
		MarkupPercent: floatPtr(10),
		PriceOverrides: map[string]float64{
			"MOBILI": 0.12,
		},
	}
	require.NoError(t, store.UpsertContract(ctx, c))

	got, err := store.GetContract(ctx, "C1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Milano", got.ClientLabel)
	require.NotNil(t, got.MarkupPercent)
	assert.Equal(t, 10.0, *got.MarkupPercent)
	assert.Equal(t, map[string]float64{"MOBILI": 0.12}, got.PriceOverrides)
}

func TestUpsertContractReplaces(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertContract(ctx, model.Contract{Code: "C1", ClientLabel: "Milano"}))
	require.NoError(t, store.UpsertContract(ctx, model.Contract{Code: "C1", ClientLabel: "Roma"}))

	got, err := store.GetContract(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, "Roma", got.ClientLabel)
	assert.Nil(t, got.MarkupPercent)
}

func TestGetContractMissing(t *testing.T) {
	store := setupStore(t)

	got, err := store.GetContract(context.Background(), "GHOST")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListContractsOrdered(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for _, code := range []string{"C3", "C1", "C2"} {
		require.NoError(t, store.UpsertContract(ctx, model.Contract{Code: code}))
	}

	contracts, err := store.ListContracts(ctx)
	require.NoError(t, err)
	require.Len(t, contracts, 3)
	assert.Equal(t, "C1", contracts[0].Code)
	assert.Equal(t, "C3", contracts[2].Code)
}
