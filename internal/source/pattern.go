package source

import (
	"path"
	"strings"
	"time"
)

// ExpandTemporal substitutes strftime-style placeholders in a download
// pattern with values from the reference time. Supported: %Y %m %d %H %M.
func ExpandTemporal(pattern string, now time.Time) string {
	r := strings.NewReplacer(
		"%Y", now.Format("2006"),
		"%m", now.Format("01"),
		"%d", now.Format("02"),
		"%H", now.Format("15"),
		"%M", now.Format("04"),
	)
	return r.Replace(pattern)
}

// MatchPattern reports whether a filename matches a glob pattern after
// temporal expansion. An empty pattern matches everything.
func MatchPattern(filename, pattern string, now time.Time) bool {
	if pattern == "" {
		return true
	}
	expanded := ExpandTemporal(pattern, now)
	ok, err := path.Match(expanded, filename)
	if err != nil {
		// Malformed glob: fall back to literal substring matching.
		return strings.Contains(filename, expanded)
	}
	return ok
}

func filterByPattern(names []string, pattern string, now time.Time) []string {
	if pattern == "" {
		return names
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if MatchPattern(n, pattern, now) {
			out = append(out, n)
		}
	}
	return out
}
