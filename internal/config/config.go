// Package config resolves application configuration into immutable
// value objects handed to the pipeline at run start.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cdrflow/cdrflow/internal/model"
)

// Pricing is the run-level pricing configuration snapshot. Every cost
// computation is a pure function of (duration, category, contract, Pricing);
// nothing reads pricing state ambiently after a run starts.
type Pricing struct {
	Currency            string
	Unit                model.BillingUnit
	GlobalMarkupPercent float64
}

// Source describes where input files come from.
type Source struct {
	Kind     string // "dir" or "ftp"
	Dir      string
	Host     string
	User     string
	Password string
	Path     string
	Pattern  string
	Timeout  time.Duration
}

// Settings is everything a pipeline run needs, resolved once at startup.
type Settings struct {
	DatabasePath string
	ReportsDir   string
	Workers      int
	Pricing      Pricing
	Source       Source
}

// Load resolves Settings from viper, applying defaults.
func Load() (Settings, error) {
	s := Settings{
		DatabasePath: ExpandPath(viper.GetString("database.path")),
		ReportsDir:   ExpandPath(viper.GetString("reports.dir")),
		Workers:      viper.GetInt("pipeline.workers"),
		Pricing: Pricing{
			Currency:            viper.GetString("pricing.currency"),
			Unit:                model.BillingUnit(viper.GetString("pricing.unit")),
			GlobalMarkupPercent: viper.GetFloat64("pricing.markup_percent"),
		},
		Source: Source{
			Kind:     viper.GetString("source.kind"),
			Dir:      ExpandPath(viper.GetString("source.dir")),
			Host:     viper.GetString("source.host"),
			User:     viper.GetString("source.user"),
			Password: viper.GetString("source.password"),
			Path:     viper.GetString("source.path"),
			Pattern:  viper.GetString("source.pattern"),
			Timeout:  viper.GetDuration("source.timeout"),
		},
	}

	if s.DatabasePath == "" {
		s.DatabasePath = filepath.Join(defaultDataDir(), "cdrflow.db")
	}
	if s.ReportsDir == "" {
		s.ReportsDir = filepath.Join(defaultDataDir(), "reports")
	}
	if s.Workers <= 0 {
		s.Workers = 4
	}
	if s.Pricing.Currency == "" {
		s.Pricing.Currency = "EUR"
	}
	if s.Pricing.Unit == "" {
		s.Pricing.Unit = model.PerMinute
	}
	if s.Pricing.Unit != model.PerMinute && s.Pricing.Unit != model.PerSecond {
		return s, fmt.Errorf("invalid pricing.unit %q: must be per_minute or per_second", s.Pricing.Unit)
	}
	if s.Pricing.GlobalMarkupPercent < 0 {
		return s, fmt.Errorf("pricing.markup_percent must be non-negative, got %v", s.Pricing.GlobalMarkupPercent)
	}
	if s.Source.Kind == "" {
		s.Source.Kind = "dir"
	}
	if s.Source.Timeout <= 0 {
		s.Source.Timeout = 60 * time.Second
	}

	return s, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cdrflow"
	}
	return filepath.Join(home, ".local", "share", "cdrflow")
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}
