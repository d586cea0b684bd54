package registry

import (
	"strings"
)

// ConflictSeverity grades how likely two patterns are to claim the same
// call type. Advisory only; conflicts never block classification.
type ConflictSeverity string

const (
	// SeverityHigh marks identical patterns in two categories.
	SeverityHigh ConflictSeverity = "HIGH"
	// SeverityMedium marks one pattern containing the other.
	SeverityMedium ConflictSeverity = "MEDIUM"
	// SeverityLow marks patterns sharing a whole token.
	SeverityLow ConflictSeverity = "LOW"
)

// ConflictReport describes one overlapping pattern pair between two
// active categories.
type ConflictReport struct {
	CategoryA string
	CategoryB string
	PatternA  string
	PatternB  string
	Severity  ConflictSeverity
}

// DetectConflicts compares every pair of active categories and reports
// pattern pairs that could match a common call-type string. Matching
// semantics stay literal substring containment: identical patterns are
// HIGH, containment is MEDIUM, and a shared whole token is LOW.
func (s *Snapshot) DetectConflicts() []ConflictReport {
	var reports []ConflictReport

	for i := 0; i < len(s.categories); i++ {
		for j := i + 1; j < len(s.categories); j++ {
			a, b := &s.categories[i], &s.categories[j]
			for _, pa := range a.Patterns {
				for _, pb := range b.Patterns {
					severity, ok := gradeOverlap(pa, pb)
					if !ok {
						continue
					}
					reports = append(reports, ConflictReport{
						CategoryA: a.Name,
						CategoryB: b.Name,
						PatternA:  pa,
						PatternB:  pb,
						Severity:  severity,
					})
				}
			}
		}
	}

	return reports
}

func gradeOverlap(a, b string) (ConflictSeverity, bool) {
	ua := strings.ToUpper(strings.TrimSpace(a))
	ub := strings.ToUpper(strings.TrimSpace(b))

	switch {
	case ua == "" || ub == "":
		return "", false
	case ua == ub:
		return SeverityHigh, true
	case strings.Contains(ua, ub) || strings.Contains(ub, ua):
		return SeverityMedium, true
	case shareToken(ua, ub):
		return SeverityLow, true
	default:
		return "", false
	}
}

func shareToken(a, b string) bool {
	tokens := make(map[string]bool)
	for _, t := range strings.Fields(a) {
		tokens[t] = true
	}
	for _, t := range strings.Fields(b) {
		if tokens[t] {
			return true
		}
	}
	return false
}
