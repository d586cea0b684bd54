// Package registry owns the set of classification categories: validation,
// conflict detection, administrative mutation, and the per-run snapshots
// the pipeline classifies against.
package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/cdrflow/cdrflow/internal/common"
	"github.com/cdrflow/cdrflow/internal/model"
	"github.com/cdrflow/cdrflow/internal/storage"
)

// ProtectedCategories cannot be deactivated; historical reports depend
// on them staying interpretable.
var ProtectedCategories = map[string]bool{
	"FISSI":  true,
	"MOBILI": true,
}

// Registry mediates all access to the stored category set.
type Registry struct {
	store *storage.Store
}

// New creates a Registry backed by the given store.
func New(store *storage.Store) *Registry {
	return &Registry{store: store}
}

// Snapshot loads the active category set into an immutable value for one
// pipeline run. Concurrent admin edits never affect an in-flight run;
// only the next snapshot sees them. Snapshot fails if any active
// category violates its invariants, since classification results could
// not be trusted.
func (r *Registry) Snapshot(ctx context.Context) (*Snapshot, error) {
	categories, err := r.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	for _, cat := range categories {
		if !cat.IsActive {
			continue
		}
		if err := common.NewValidationError("category "+cat.Name, validateCategory(cat)); err != nil {
			return nil, err
		}
	}

	return NewSnapshot(categories), nil
}

// Fields carries a partial category update; nil members are left unchanged.
type Fields struct {
	DisplayName    *string
	Description    *string
	PricePerMinute *float64
	Currency       *string
	Patterns       *[]string
	MarkupPercent  *float64
	ClearMarkup    bool
}

// Add validates and stores a new category.
func (r *Registry) Add(ctx context.Context, cat model.Category) error {
	cat.Name = strings.ToUpper(strings.TrimSpace(cat.Name))
	cat.Patterns = cleanPatterns(cat.Patterns)

	violations := validateCategory(cat)

	existing, err := r.store.GetCategory(ctx, cat.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		violations = append(violations, fmt.Sprintf("name %q already exists", cat.Name))
	}

	if err := common.NewValidationError("category "+cat.Name, violations); err != nil {
		return err
	}

	return r.store.InsertCategory(ctx, cat)
}

// Update applies a partial update to an existing category, validating
// the resulting state before persisting it.
func (r *Registry) Update(ctx context.Context, name string, fields Fields) error {
	name = strings.ToUpper(strings.TrimSpace(name))

	cat, err := r.store.GetCategory(ctx, name)
	if err != nil {
		return err
	}
	if cat == nil {
		return fmt.Errorf("category %s does not exist", name)
	}

	if fields.DisplayName != nil {
		cat.DisplayName = strings.TrimSpace(*fields.DisplayName)
	}
	if fields.Description != nil {
		cat.Description = strings.TrimSpace(*fields.Description)
	}
	if fields.PricePerMinute != nil {
		cat.PricePerMinute = *fields.PricePerMinute
	}
	if fields.Currency != nil {
		cat.Currency = *fields.Currency
	}
	if fields.Patterns != nil {
		cat.Patterns = cleanPatterns(*fields.Patterns)
	}
	if fields.ClearMarkup {
		cat.MarkupPercent = nil
	} else if fields.MarkupPercent != nil {
		cat.MarkupPercent = fields.MarkupPercent
	}

	if err := common.NewValidationError("category "+name, validateCategory(*cat)); err != nil {
		return err
	}

	return r.store.UpdateCategory(ctx, *cat)
}

// SetActive toggles a category. Deactivation is the only supported
// removal path; protected categories cannot be deactivated.
func (r *Registry) SetActive(ctx context.Context, name string, active bool) error {
	name = strings.ToUpper(strings.TrimSpace(name))

	if !active && ProtectedCategories[name] {
		return common.NewValidationError("category "+name,
			[]string{"protected category cannot be deactivated"})
	}

	cat, err := r.store.GetCategory(ctx, name)
	if err != nil {
		return err
	}
	if cat == nil {
		return fmt.Errorf("category %s does not exist", name)
	}

	cat.IsActive = active
	if err := common.NewValidationError("category "+name, validateCategory(*cat)); err != nil {
		return err
	}

	return r.store.UpdateCategory(ctx, *cat)
}

// ValidateAll sweeps the full stored category set and returns one
// ValidationError per violating category. Used before accepting bulk
// imports and by the doctor-style CLI check.
func (r *Registry) ValidateAll(ctx context.Context) ([]*common.ValidationError, error) {
	categories, err := r.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return validateSet(categories), nil
}

// validateSet checks every category plus cross-category uniqueness.
func validateSet(categories []model.Category) []*common.ValidationError {
	var errs []*common.ValidationError
	seen := make(map[string]bool, len(categories))

	for _, cat := range categories {
		violations := validateCategory(cat)
		if seen[cat.Name] {
			violations = append(violations, fmt.Sprintf("duplicate name %q", cat.Name))
		}
		seen[cat.Name] = true

		if len(violations) > 0 {
			errs = append(errs, &common.ValidationError{
				Subject:    "category " + cat.Name,
				Violations: violations,
			})
		}
	}

	return errs
}

// validateCategory returns every violated constraint, not just the first.
func validateCategory(cat model.Category) []string {
	var violations []string

	if strings.TrimSpace(cat.Name) == "" {
		violations = append(violations, "name is required")
	}
	if cat.PricePerMinute < 0 {
		violations = append(violations, "price_per_minute must be non-negative")
	}
	if cat.MarkupPercent != nil && *cat.MarkupPercent < 0 {
		violations = append(violations, "markup_percent must be non-negative")
	}
	if strings.TrimSpace(cat.Currency) == "" {
		violations = append(violations, "currency is required")
	}
	if cat.IsActive && len(cleanPatterns(cat.Patterns)) == 0 {
		violations = append(violations, "active category requires at least one pattern")
	}

	return violations
}

func cleanPatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
