// Package normalize parses raw source files into validated CallRecords.
// One entry point dispatches on detected file kind; row-level failures
// are collected, never raised, while file-level failures (missing
// columns, undecodable bytes) fail the whole file.
package normalize

import (
	"path/filepath"
	"strings"

	"github.com/cdrflow/cdrflow/internal/common"
	"github.com/cdrflow/cdrflow/internal/model"
)

// Kind tags the detected file format.
type Kind string

const (
	// KindCDR is the native semicolon-separated CDR layout.
	KindCDR Kind = "cdr"
	// KindCSV is a delimited file with a header row.
	KindCSV Kind = "csv"
	// KindExcel is an xlsx/xls spreadsheet.
	KindExcel Kind = "excel"
	// KindText is unstructured text, kept as one opaque record.
	KindText Kind = "text"
)

// Result is the outcome of normalizing one file.
type Result struct {
	Opaque    *model.OpaqueRecord
	Kind      Kind
	Records   []model.CallRecord
	RowErrors []common.RowError
}

// Parse normalizes one input file. File-level failures return
// *common.SchemaError or *common.EncodingError; row-level failures are
// collected in Result.RowErrors.
func Parse(data []byte, filename string) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	if ext == ".xlsx" || ext == ".xls" {
		return parseExcel(data, filename)
	}

	text, err := decodeText(data, filename)
	if err != nil {
		return nil, err
	}

	switch {
	case ext == ".cdr" || strings.Contains(strings.ToUpper(filename), "CDR"):
		return parseCDR(text, filename)
	case ext == ".csv":
		return parseDelimitedSniffed(text, filename)
	case ext == ".txt":
		if looksLikeCDR(text) {
			return parseCDR(text, filename)
		}
		if strings.Contains(firstLine(text), "\t") {
			return parseDelimited(text, filename, '\t')
		}
		return opaque(text, filename), nil
	default:
		if looksLikeCDR(text) {
			return parseCDR(text, filename)
		}
		return opaque(text, filename), nil
	}
}

// looksLikeCDR sniffs content for the semicolon-dense native layout.
func looksLikeCDR(text string) bool {
	line := firstLine(text)
	if strings.Count(line, ";") >= 5 {
		return true
	}
	return strings.Count(text, ";") > strings.Count(text, ",") && strings.Count(text, ";") > 10
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}

func opaque(text, filename string) *Result {
	return &Result{
		Kind:   KindText,
		Opaque: &model.OpaqueRecord{SourceFile: filename, Content: text},
	}
}
