// Package testutil provides shared helpers for package tests: throwaway
// SQLite stores, category fixtures, and small value constructors.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cdrflow/cdrflow/internal/model"
	"github.com/cdrflow/cdrflow/internal/storage"
)

// SetupTestStore creates a migrated SQLite store under t.TempDir and
// registers cleanup. The store comes pre-seeded with the default
// categories installed by the migrations.
func SetupTestStore(t *testing.T) *storage.Store {
	t.Helper()

	store, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	return store
}

// SetupEmptyTestStore is SetupTestStore followed by removing the seeded
// defaults, for tests that need full control over the category set.
func SetupEmptyTestStore(t *testing.T) *storage.Store {
	t.Helper()

	store := SetupTestStore(t)
	if err := store.ReplaceCategories(context.Background(), nil); err != nil {
		t.Fatalf("failed to clear seeded categories: %v", err)
	}
	return store
}

// SeedCategories inserts the given categories or fails the test.
func SeedCategories(t *testing.T, store *storage.Store, cats ...model.Category) {
	t.Helper()

	ctx := context.Background()
	for _, cat := range cats {
		if err := store.InsertCategory(ctx, cat); err != nil {
			t.Fatalf("failed to seed category %q: %v", cat.Name, err)
		}
	}
}

// FloatPtr returns a pointer to v, for optional markup fields.
func FloatPtr(v float64) *float64 { return &v }

// Category builds an active category with the given name, price, and
// patterns. Tweak the returned value for anything else.
func Category(name string, price float64, patterns ...string) model.Category {
	return model.Category{
		Name:           name,
		DisplayName:    name,
		Currency:       "EUR",
		Patterns:       patterns,
		PricePerMinute: price,
		IsActive:       true,
	}
}
