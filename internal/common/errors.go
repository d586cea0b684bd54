// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
	"strings"
)

// Common application errors.
var (
	// Report storage errors.
	ErrNotFound        = errors.New("report not found")
	ErrCorruptArtifact = errors.New("corrupt report artifact")

	// Pipeline errors.
	ErrRunInProgress = errors.New("a pipeline run is already in progress")
	ErrTimeout       = errors.New("operation exceeded its time budget")
	ErrRunCancelled  = errors.New("run cancelled")

	// File-source errors.
	ErrSourceUnavailable = errors.New("file source unavailable")
	ErrFileNotFound      = errors.New("file not found on source")
)

// ValidationError reports every constraint a category or contract
// configuration violates, not just the first one found.
type ValidationError struct {
	Subject    string
	Violations []string
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return fmt.Sprintf("%s: invalid configuration", e.Subject)
	}
	return fmt.Sprintf("%s: %s", e.Subject, strings.Join(e.Violations, "; "))
}

// NewValidationError builds a ValidationError, returning nil when there
// are no violations so callers can return it directly.
func NewValidationError(subject string, violations []string) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Subject: subject, Violations: violations}
}

// SchemaError marks a structured input file missing required columns.
// The whole file is skipped; nothing is partially parsed.
type SchemaError struct {
	Filename string
	Missing  []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Filename, strings.Join(e.Missing, ", "))
}

// EncodingError marks a file whose bytes decode under no supported
// encoding. The file is skipped without aborting the batch.
type EncodingError struct {
	Err      error
	Filename string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s: undecodable content: %v", e.Filename, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// RowError records one rejected row of a source file. Row errors are
// collected alongside valid results, never raised.
type RowError struct {
	Filename string
	Reason   string
	Row      int
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s row %d: %s", e.Filename, e.Row, e.Reason)
}
