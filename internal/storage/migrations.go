package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// expectedSchemaVersion is the latest schema version the application expects.
const expectedSchemaVersion = 2

// migration represents one database schema migration.
type migration struct {
	up          func(*sql.Tx) error
	description string
	version     int
}

var migrations = []migration{
	{
		version:     1,
		description: "Initial schema",
		up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS categories (
					name TEXT PRIMARY KEY,
					display_name TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					price_per_minute REAL NOT NULL,
					currency TEXT NOT NULL DEFAULT 'EUR',
					patterns TEXT NOT NULL,
					markup_percent REAL,
					is_active INTEGER NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_categories_active ON categories(is_active)`,

				`CREATE TABLE IF NOT EXISTS contracts (
					code TEXT PRIMARY KEY,
					client_label TEXT NOT NULL DEFAULT '',
					markup_percent REAL,
					price_overrides TEXT NOT NULL DEFAULT '{}'
				)`,
			}
			for _, q := range queries {
				if _, err := tx.Exec(q); err != nil {
					return fmt.Errorf("failed to execute %q: %w", q[:40], err)
				}
			}
			return nil
		},
	},
	{
		version:     2,
		description: "Seed default call categories",
		up: func(tx *sql.Tx) error {
			type seed struct {
				name     string
				display  string
				desc     string
				patterns string
				price    float64
			}
			seeds := []seed{
				{"FISSI", "Chiamate Fisso", "Chiamate verso numeri fissi nazionali",
					`["INTERRURBANE URBANE","INTERURBANE URBANE","URBANE","FISSO","RETE FISSA","TELEFONIA FISSA","LOCALE","DISTRETTUALE"]`, 0.02},
				{"MOBILI", "Chiamate Mobile", "Chiamate verso numeri mobili",
					`["CELLULARE","MOBILE","RETE MOBILE","TELEFONIA MOBILE","GSM","UMTS","LTE","WIND","TIM","VODAFONE","ILIAD"]`, 0.15},
				{"FAX", "Servizi Fax", "Servizi di fax",
					`["FAX","TELEFAX","FACSIMILE"]`, 0.02},
				{"NUMERI_VERDI", "Numeri Verdi", "Numeri verdi e gratuiti",
					`["NUMERO VERDE","VERDE","800","GRATUITO","TOLL FREE"]`, 0.00},
				{"INTERNAZIONALI", "Chiamate Internazionali", "Chiamate internazionali",
					`["INTERNAZIONALE","INTERNATIONAL","ESTERO","UE","EUROPA","MONDO","ROAMING","EXTRA UE"]`, 0.25},
			}
			for _, s := range seeds {
				_, err := tx.Exec(
					`INSERT OR IGNORE INTO categories (name, display_name, description, price_per_minute, currency, patterns, is_active)
					 VALUES (?, ?, ?, ?, 'EUR', ?, 1)`,
					s.name, s.display, s.desc, s.price, s.patterns)
				if err != nil {
					return fmt.Errorf("failed to seed category %s: %w", s.name, err)
				}
			}
			return nil
		},
	},
}

// Migrate brings the database schema up to the expected version.
func (s *Store) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	current, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.version, err)
		}

		if err := m.up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.description, err)
		}

		if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, m.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
		}

		slog.Debug("applied migration", "version", m.version, "description", m.description)
	}

	final, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}
	if final != expectedSchemaVersion {
		return fmt.Errorf("schema version %d does not match expected %d", final, expectedSchemaVersion)
	}

	return nil
}

func (s *Store) schemaVersion(ctx context.Context) (int, error) {
	var version sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}
