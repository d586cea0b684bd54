package normalize

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/cdrflow/cdrflow/internal/common"
)

// parseExcel normalizes the first sheet of a spreadsheet. The header row
// goes through the same alias resolution as delimited files.
func parseExcel(data []byte, filename string) (*Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &common.EncodingError{
			Filename: filename,
			Err:      fmt.Errorf("unreadable spreadsheet: %w", err),
		}
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &common.EncodingError{
			Filename: filename,
			Err:      fmt.Errorf("failed to read sheet %q: %w", sheet, err),
		}
	}
	if len(rows) == 0 {
		return nil, &common.SchemaError{Filename: filename, Missing: []string{"header row"}}
	}

	cols, err := resolveColumns(rows[0], filename)
	if err != nil {
		return nil, err
	}

	result := &Result{Kind: KindExcel}
	for i, cells := range rows[1:] {
		rowNum := i + 2 // header occupies row 1
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
