// Package model defines the core domain types shared across the pipeline.
package model

import "time"

// CallRecord is one normalized row of a CDR source file.
type CallRecord struct {
	Timestamp       time.Time
	CallType        string
	ContractCode    string
	ClientLabel     string
	DurationSeconds int64
}

// Day returns the calendar date of the record in YYYY-MM-DD form,
// which is the aggregation key for daily breakdowns.
func (r CallRecord) Day() string {
	return r.Timestamp.Format("2006-01-02")
}

// OpaqueRecord wraps the full content of an unstructured source file.
// Opaque records are never classified; they exist so free-form text
// files survive a batch without being silently dropped.
type OpaqueRecord struct {
	SourceFile string
	Content    string
}
