package normalize

import (
	"strings"
)

// Native CDR layout: eleven semicolon-separated fields, no header row.
// Positions are fixed by the upstream switch export.
const (
	cdrFieldTimestamp = 0
	cdrFieldDuration  = 3
	cdrFieldCallType  = 4
	cdrFieldContract  = 7
	cdrFieldClient    = 9
	cdrFieldCount     = 11
)

func parseCDR(text, filename string) (*Result, error) {
	result := &Result{Kind: KindCDR}
	cols := columnMap{
		timestamp: cdrFieldTimestamp,
		duration:  cdrFieldDuration,
		callType:  cdrFieldCallType,
		contract:  cdrFieldContract,
		client:    cdrFieldClient,
	}

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		cells := strings.Split(line, ";")
		for len(cells) < cdrFieldCount {
			cells = append(cells, "")
		}

		record, rowErr := buildRecord(cols, cells, i+1, filename)
		if rowErr != nil {
			result.RowErrors = append(result.RowErrors, *rowErr)
			continue
		}
		result.Records = append(result.Records, record)
	}

	return result, nil
}
