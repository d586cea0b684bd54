package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cdrflow/cdrflow/internal/common"
)

// DirSource serves files from a local directory. Used for offline runs
// and for batches already downloaded by an external fetcher.
type DirSource struct {
	root    string
	pattern string
	now     func() time.Time
}

// NewDirSource creates a directory-backed source. pattern may be empty
// to serve every regular file under root.
func NewDirSource(root, pattern string) *DirSource {
	return &DirSource{root: root, pattern: pattern, now: time.Now}
}

// List implements Source.
func (s *DirSource) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, mapCtxErr(ctx, "list files")
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSourceUnavailable, err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	return filterByPattern(names, s.pattern, s.now()), nil
}

// Fetch implements Source.
func (s *DirSource) Fetch(ctx context.Context, name string) (File, error) {
	if err := ctx.Err(); err != nil {
		return File{}, mapCtxErr(ctx, "fetch "+name)
	}

	data, err := os.ReadFile(filepath.Join(s.root, filepath.Base(name)))
	if os.IsNotExist(err) {
		return File{}, fmt.Errorf("%w: %s", common.ErrFileNotFound, name)
	}
	if err != nil {
		return File{}, fmt.Errorf("%w: %v", common.ErrSourceUnavailable, err)
	}

	return File{Name: name, Data: data}, nil
}
