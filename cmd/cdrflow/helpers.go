package main

import (
	"context"
	"fmt"

	"github.com/cdrflow/cdrflow/internal/config"
	"github.com/cdrflow/cdrflow/internal/pipeline"
	"github.com/cdrflow/cdrflow/internal/registry"
	"github.com/cdrflow/cdrflow/internal/report"
	"github.com/cdrflow/cdrflow/internal/source"
	"github.com/cdrflow/cdrflow/internal/storage"
)

// initStore opens the registry database with migrations applied.
func initStore(ctx context.Context) (*storage.Store, config.Settings, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, settings, err
	}

	store, err := storage.New(settings.DatabasePath)
	if err != nil {
		return nil, settings, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, settings, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, settings, nil
}

// buildSource resolves the configured file source.
func buildSource(settings config.Settings) (source.Source, error) {
	switch settings.Source.Kind {
	case "dir":
		return source.NewDirSource(settings.Source.Dir, settings.Source.Pattern), nil
	case "ftp":
		return source.NewFTPSource(
			settings.Source.Host,
			settings.Source.User,
			settings.Source.Password,
			settings.Source.Path,
			settings.Source.Pattern,
			settings.Source.Timeout,
		), nil
	default:
		return nil, fmt.Errorf("unknown source.kind %q: must be dir or ftp", settings.Source.Kind)
	}
}

// buildEngine wires the full pipeline from resolved settings.
func buildEngine(store *storage.Store, settings config.Settings, opts ...pipeline.Option) (*pipeline.Engine, error) {
	src, err := buildSource(settings)
	if err != nil {
		return nil, err
	}

	reports, err := report.NewStore(settings.ReportsDir)
	if err != nil {
		return nil, err
	}

	opts = append([]pipeline.Option{pipeline.WithWorkers(settings.Workers)}, opts...)
	return pipeline.New(registry.New(store), store, src, reports, settings.Pricing, opts...), nil
}
