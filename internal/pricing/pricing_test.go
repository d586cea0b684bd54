package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cdrflow/cdrflow/internal/config"
	"github.com/cdrflow/cdrflow/internal/model"
)

func floatPtr(f float64) *float64 { return &f }

func TestCost(t *testing.T) {
	fissi := &model.Category{Name: "FISSI", PricePerMinute: 0.02}
	mobili := &model.Category{Name: "MOBILI", PricePerMinute: 0.15}

	tests := []struct {
		name     string
		category *model.Category
		contract *model.Contract
		cfg      config.Pricing
		duration int64
		want     float64
	}{
		{
			name:     "per minute rounds partial minutes up",
			category: fissi,
			duration: 61,
			cfg:      config.Pricing{Unit: model.PerMinute},
			want:     0.04, // 2 minutes at 0.02
		},
		{
			name:     "per minute exact boundary",
			category: fissi,
			duration: 120,
			cfg:      config.Pricing{Unit: model.PerMinute},
			want:     0.04,
		},
		{
			name:     "per second bills exact duration",
			category: fissi,
			duration: 61,
			cfg:      config.Pricing{Unit: model.PerSecond},
			want:     61 * 0.02 / 60,
		},
		{
			name:     "zero duration costs nothing",
			category: mobili,
			duration: 0,
			cfg:      config.Pricing{Unit: model.PerMinute},
			want:     0,
		},
		{
			name:     "nil category costs nothing",
			category: nil,
			duration: 600,
			cfg:      config.Pricing{Unit: model.PerMinute},
			want:     0,
		},
		{
			name:     "global markup applies when nothing overrides it",
			category: fissi,
			duration: 60,
			cfg:      config.Pricing{Unit: model.PerMinute, GlobalMarkupPercent: 10},
			want:     0.022,
		},
		{
			name:     "contract markup beats global",
			category: fissi,
			contract: &model.Contract{Code: "C1", MarkupPercent: floatPtr(50)},
			duration: 60,
			cfg:      config.Pricing{Unit: model.PerMinute, GlobalMarkupPercent: 10},
			want:     0.03,
		},
		{
			name: "category markup beats contract and global",
			category: &model.Category{
				Name: "FISSI", PricePerMinute: 0.02, MarkupPercent: floatPtr(100),
			},
			contract: &model.Contract{Code: "C1", MarkupPercent: floatPtr(50)},
			duration: 60,
			cfg:      config.Pricing{Unit: model.PerMinute, GlobalMarkupPercent: 10},
			want:     0.04,
		},
		{
			name:     "contract price override replaces category price",
			category: mobili,
			contract: &model.Contract{
				Code:           "C1",
				PriceOverrides: map[string]float64{"MOBILI": 0.10},
			},
			duration: 60,
			cfg:      config.Pricing{Unit: model.PerMinute},
			want:     0.10,
		},
		{
			name:     "override for another category is ignored",
			category: mobili,
			contract: &model.Contract{
				Code:           "C1",
				PriceOverrides: map[string]float64{"FISSI": 0.01},
			},
			duration: 60,
			cfg:      config.Pricing{Unit: model.PerMinute},
			want:     0.15,
		},
		{
			name:     "zero markup override suppresses global markup",
			category: &model.Category{Name: "FISSI", PricePerMinute: 0.02, MarkupPercent: floatPtr(0)},
			duration: 60,
			cfg:      config.Pricing{Unit: model.PerMinute, GlobalMarkupPercent: 10},
			want:     0.02,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cost(tt.duration, tt.category, tt.contract, tt.cfg)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCostWorkedScenario(t *testing.T) {
	// The documented billing example: 30s of URBANE at 0.01/min and 90s
	// of CELLULARE at 0.05/min, both under a 10% contract markup.
	urbane := &model.Category{Name: "URBANE", PricePerMinute: 0.01}
	cellulare := &model.Category{Name: "CELLULARE", PricePerMinute: 0.05}
	contract := &model.Contract{Code: "C1", MarkupPercent: floatPtr(10)}
	cfg := config.Pricing{Unit: model.PerMinute}

	assert.InDelta(t, 0.011, Cost(30, urbane, contract, cfg), 1e-9)
	assert.InDelta(t, 0.11, Cost(90, cellulare, contract, cfg), 1e-9)
}
