package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cdrflow/cdrflow/internal/common"
	"github.com/cdrflow/cdrflow/internal/model"
)

// exportedCategory is the interchange shape for import/export, keyed by
// name at the top level. The field names match the historical config
// file format so old exports stay importable.
type exportedCategory struct {
	MarkupPercent  *float64 `json:"markup_percent,omitempty"`
	DisplayName    string   `json:"display_name"`
	Description    string   `json:"description"`
	Currency       string   `json:"currency"`
	Patterns       []string `json:"patterns"`
	PricePerMinute float64  `json:"price_per_minute"`
	IsActive       bool     `json:"is_active"`
}

// Export serializes the full category set as indented JSON keyed by name.
func (r *Registry) Export(ctx context.Context) ([]byte, error) {
	categories, err := r.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]exportedCategory, len(categories))
	for _, cat := range categories {
		out[cat.Name] = exportedCategory{
			DisplayName:    cat.DisplayName,
			Description:    cat.Description,
			Currency:       cat.Currency,
			Patterns:       cat.Patterns,
			PricePerMinute: cat.PricePerMinute,
			MarkupPercent:  cat.MarkupPercent,
			IsActive:       cat.IsActive,
		}
	}

	return json.MarshalIndent(out, "", "  ")
}

// Import loads categories from an export blob. With merge=true existing
// categories are updated in place and new ones added; with merge=false
// the incoming set replaces the registry wholesale. The whole batch is
// validated first; nothing is written if any category is invalid.
func (r *Registry) Import(ctx context.Context, data []byte, merge bool) error {
	var incoming map[string]exportedCategory
	if err := json.Unmarshal(data, &incoming); err != nil {
		return fmt.Errorf("failed to parse category import: %w", err)
	}

	categories := make([]model.Category, 0, len(incoming))
	for name, ec := range incoming {
		categories = append(categories, model.Category{
			Name:           strings.ToUpper(strings.TrimSpace(name)),
			DisplayName:    ec.DisplayName,
			Description:    ec.Description,
			Currency:       ec.Currency,
			Patterns:       cleanPatterns(ec.Patterns),
			PricePerMinute: ec.PricePerMinute,
			MarkupPercent:  ec.MarkupPercent,
			IsActive:       ec.IsActive,
		})
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })

	if errs := validateSet(categories); len(errs) > 0 {
		violations := make([]string, 0, len(errs))
		for _, e := range errs {
			violations = append(violations, e.Error())
		}
		return common.NewValidationError("category import", violations)
	}

	if !merge {
		return r.store.ReplaceCategories(ctx, categories)
	}

	for _, cat := range categories {
		existing, err := r.store.GetCategory(ctx, cat.Name)
		if err != nil {
			return err
		}
		if existing == nil {
			err = r.store.InsertCategory(ctx, cat)
		} else {
			err = r.store.UpdateCategory(ctx, cat)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// Stats summarizes the stored category set for operator dashboards.
type Stats struct {
	Currencies         []string
	TotalCategories    int
	ActiveCategories   int
	InactiveCategories int
	TotalPatterns      int
	PriceMin           float64
	PriceMax           float64
	PriceAvg           float64
}

// Stats computes registry statistics across all categories.
func (r *Registry) Stats(ctx context.Context) (Stats, error) {
	categories, err := r.store.ListCategories(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{TotalCategories: len(categories)}
	currencies := make(map[string]bool)
	var priceSum float64

	for i, cat := range categories {
		if cat.IsActive {
			st.ActiveCategories++
		}
		st.TotalPatterns += len(cat.Patterns)
		currencies[cat.Currency] = true
		priceSum += cat.PricePerMinute

		if i == 0 || cat.PricePerMinute < st.PriceMin {
			st.PriceMin = cat.PricePerMinute
		}
		if cat.PricePerMinute > st.PriceMax {
			st.PriceMax = cat.PricePerMinute
		}
	}

	st.InactiveCategories = st.TotalCategories - st.ActiveCategories
	if len(categories) > 0 {
		st.PriceAvg = priceSum / float64(len(categories))
	}
	for c := range currencies {
		st.Currencies = append(st.Currencies, c)
	}
	sort.Strings(st.Currencies)

	return st, nil
}
