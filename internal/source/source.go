// Package source provides the file-source collaborator the pipeline
// pulls raw CDR files from. The pipeline never cares whether bytes came
// from FTP, a local directory, or a test fixture.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/cdrflow/cdrflow/internal/common"
)

// File is one raw input file: name plus content.
type File struct {
	Name string
	Data []byte
}

// Source yields raw files on demand.
type Source interface {
	// List names the files currently available, filtered by the
	// source's configured pattern.
	List(ctx context.Context) ([]string, error)
	// Fetch retrieves one file by name.
	Fetch(ctx context.Context, name string) (File, error)
}

// mapCtxErr turns context expiry into the pipeline's distinct timeout
// error so callers can tell a blown budget from a source failure.
func mapCtxErr(ctx context.Context, op string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, common.ErrTimeout)
	}
	return ctx.Err()
}
