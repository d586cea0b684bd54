package normalize

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/cdrflow/cdrflow/internal/common"
)

// parseDelimitedSniffed handles European CSV exports: semicolon first,
// falling back to comma when the header collapses to a single column.
func parseDelimitedSniffed(text, filename string) (*Result, error) {
	header, err := readHeader(text, ';')
	if err == nil && len(header) > 1 {
		return parseDelimited(text, filename, ';')
	}
	return parseDelimited(text, filename, ',')
}

func readHeader(text string, comma rune) ([]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = comma
	r.FieldsPerRecord = -1
	return r.Read()
}

func parseDelimited(text, filename string, comma rune) (*Result, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, &common.SchemaError{Filename: filename, Missing: []string{"header row"}}
	}

	cols, err := resolveColumns(header, filename)
	if err != nil {
		return nil, err
	}

	result := &Result{Kind: KindCSV}
	rowNum := 1 // header occupies row 1

	for {
		rowNum++
		cells, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.RowErrors = append(result.RowErrors, common.RowError{
				Filename: filename, Row: rowNum, Reason: "malformed row: " + err.Error(),
			})
			continue
		}
		if isBlank(cells) {
			continue
		}

		record, rowErr := buildRecord(cols, cells, rowNum, filename)
		if rowErr != nil {
			result.RowErrors = append(result.RowErrors, *rowErr)
			continue
		}
		result.Records = append(result.Records, record)
	}

	return result, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
