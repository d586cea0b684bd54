package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cdrflow/cdrflow/internal/model"
)

// ListContracts returns every known contract, ordered by code.
func (s *Store) ListContracts(ctx context.Context) ([]model.Contract, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT code, client_label, markup_percent, price_overrides
		FROM contracts
		ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	defer rows.Close()

	var contracts []model.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contracts: %w", err)
	}

	return contracts, nil
}

// GetContract returns a contract by code, or nil if it does not exist.
func (s *Store) GetContract(ctx context.Context, code string) (*model.Contract, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if code == "" {
		return nil, fmt.Errorf("contract code cannot be empty")
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT code, client_label, markup_percent, price_overrides
		FROM contracts
		WHERE code = ?`, code)

	c, err := scanContract(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertContract creates or fully replaces a contract.
func (s *Store) UpsertContract(ctx context.Context, c model.Contract) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if c.Code == "" {
		return fmt.Errorf("contract code cannot be empty")
	}

	overrides := c.PriceOverrides
	if overrides == nil {
		overrides = map[string]float64{}
	}
	encoded, err := json.Marshal(overrides)
	if err != nil {
		return fmt.Errorf("failed to encode price overrides: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO contracts (code, client_label, markup_percent, price_overrides)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			client_label = excluded.client_label,
			markup_percent = excluded.markup_percent,
			price_overrides = excluded.price_overrides`,
		c.Code, c.ClientLabel, nullableFloat(c.MarkupPercent), string(encoded))
	if err != nil {
		return fmt.Errorf("failed to upsert contract %s: %w", c.Code, err)
	}

	return nil
}

func scanContract(row rowScanner) (model.Contract, error) {
	var (
		c         model.Contract
		markup    sql.NullFloat64
		overrides string
	)

	err := row.Scan(&c.Code, &c.ClientLabel, &markup, &overrides)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, err
		}
		return c, fmt.Errorf("failed to scan contract: %w", err)
	}

	if markup.Valid {
		v := markup.Float64
		c.MarkupPercent = &v
	}
	if err := json.Unmarshal([]byte(overrides), &c.PriceOverrides); err != nil {
		return c, fmt.Errorf("failed to decode price overrides for %s: %w", c.Code, err)
	}

	return c, nil
}
