package registry

import (
	"strings"

	"github.com/cdrflow/cdrflow/internal/model"
)

// Snapshot is an immutable view of the active category set, taken at
// the start of a run. Classification is a pure function of (Snapshot,
// call type): safe for concurrent use by any number of workers.
type Snapshot struct {
	categories []model.Category
}

// NewSnapshot builds a snapshot directly from a category slice. The
// pipeline normally goes through Registry.Snapshot; this constructor
// exists for tests and embedded use.
func NewSnapshot(categories []model.Category) *Snapshot {
	active := make([]model.Category, 0, len(categories))
	for _, cat := range categories {
		if cat.IsActive {
			active = append(active, cat)
		}
	}
	sortByName(active)
	return &Snapshot{categories: active}
}

// Match is a successful classification: the winning category and the
// pattern that matched.
type Match struct {
	Category *model.Category
	Pattern  string
}

// Classify finds the category whose pattern matches the call type.
// Matching is case-insensitive substring containment. When several
// categories match, the longest matching pattern wins (most specific);
// remaining ties go to the lexicographically smallest category name.
// A nil return means the call is unclassified.
func (s *Snapshot) Classify(callType string) *Match {
	needle := strings.ToUpper(strings.TrimSpace(callType))
	if needle == "" {
		return nil
	}

	var best *Match
	var bestLen int

	// categories are sorted by name ascending, so keeping only strictly
	// longer patterns implements the name tie-break for free.
	for i := range s.categories {
		cat := &s.categories[i]
		for _, pattern := range cat.Patterns {
			p := strings.ToUpper(strings.TrimSpace(pattern))
			if p == "" || !strings.Contains(needle, p) {
				continue
			}
			if best == nil || len(p) > bestLen {
				best = &Match{Category: cat, Pattern: pattern}
				bestLen = len(p)
			}
		}
	}

	return best
}

// Categories returns the snapshot's category set in scan order.
func (s *Snapshot) Categories() []model.Category {
	return s.categories
}

// Len reports the number of active categories in the snapshot.
func (s *Snapshot) Len() int { return len(s.categories) }

func sortByName(categories []model.Category) {
	for i := 0; i < len(categories)-1; i++ {
		for j := 0; j < len(categories)-i-1; j++ {
			if categories[j].Name > categories[j+1].Name {
				categories[j], categories[j+1] = categories[j+1], categories[j]
			}
		}
	}
}
