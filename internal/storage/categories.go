package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cdrflow/cdrflow/internal/model"
)

// ListCategories returns every category, active or not, ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT name, display_name, description, price_per_minute, currency,
		       patterns, markup_percent, is_active, created_at, updated_at
		FROM categories
		ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// GetCategory returns a category by name, or nil if it does not exist.
func (s *Store) GetCategory(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("category name cannot be empty")
	}

	query := `
		SELECT name, display_name, description, price_per_minute, currency,
		       patterns, markup_percent, is_active, created_at, updated_at
		FROM categories
		WHERE name = ?`

	row := s.db.QueryRowContext(ctx, query, name)
	cat, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// InsertCategory stores a new category. The caller is responsible for
// validation and uniqueness checks.
func (s *Store) InsertCategory(ctx context.Context, cat model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	patterns, err := json.Marshal(cat.Patterns)
	if err != nil {
		return fmt.Errorf("failed to encode patterns: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO categories (name, display_name, description, price_per_minute,
		                        currency, patterns, markup_percent, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		cat.Name, cat.DisplayName, cat.Description, cat.PricePerMinute,
		cat.Currency, string(patterns), nullableFloat(cat.MarkupPercent), cat.IsActive)
	if err != nil {
		return fmt.Errorf("failed to insert category %s: %w", cat.Name, err)
	}

	return nil
}

// UpdateCategory replaces every mutable field of an existing category.
func (s *Store) UpdateCategory(ctx context.Context, cat model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	patterns, err := json.Marshal(cat.Patterns)
	if err != nil {
		return fmt.Errorf("failed to encode patterns: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE categories
		SET display_name = ?, description = ?, price_per_minute = ?, currency = ?,
		    patterns = ?, markup_percent = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE name = ?`,
		cat.DisplayName, cat.Description, cat.PricePerMinute, cat.Currency,
		string(patterns), nullableFloat(cat.MarkupPercent), cat.IsActive, cat.Name)
	if err != nil {
		return fmt.Errorf("failed to update category %s: %w", cat.Name, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %s does not exist", cat.Name)
	}

	return nil
}

// ReplaceCategories atomically swaps the whole category set. Used by
// replace-mode imports after the incoming set passes validation.
func (s *Store) ReplaceCategories(ctx context.Context, categories []model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return fmt.Errorf("failed to clear categories: %w", err)
	}

	for _, cat := range categories {
		patterns, err := json.Marshal(cat.Patterns)
		if err != nil {
			return fmt.Errorf("failed to encode patterns for %s: %w", cat.Name, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO categories (name, display_name, description, price_per_minute,
			                        currency, patterns, markup_percent, is_active)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			cat.Name, cat.DisplayName, cat.Description, cat.PricePerMinute,
			cat.Currency, string(patterns), nullableFloat(cat.MarkupPercent), cat.IsActive)
		if err != nil {
			return fmt.Errorf("failed to insert category %s: %w", cat.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit category replacement: %w", err)
	}

	slog.Info("replaced category set", "count", len(categories))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (model.Category, error) {
	var (
		cat      model.Category
		patterns string
		markup   sql.NullFloat64
		created  sql.NullTime
		updated  sql.NullTime
	)

	err := row.Scan(&cat.Name, &cat.DisplayName, &cat.Description, &cat.PricePerMinute,
		&cat.Currency, &patterns, &markup, &cat.IsActive, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cat, err
		}
		return cat, fmt.Errorf("failed to scan category: %w", err)
	}

	if err := json.Unmarshal([]byte(patterns), &cat.Patterns); err != nil {
		return cat, fmt.Errorf("failed to decode patterns for %s: %w", cat.Name, err)
	}
	if markup.Valid {
		v := markup.Float64
		cat.MarkupPercent = &v
	}
	if created.Valid {
		cat.CreatedAt = created.Time
	}
	if updated.Valid {
		cat.UpdatedAt = updated.Time
	}

	return cat, nil
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
