package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/cdrflow/cdrflow/internal/common"
	"github.com/cdrflow/cdrflow/internal/model"
)

// Column aliases seen across real exports, matched case-insensitively
// with whitespace and dashes normalized to underscores.
var (
	callTypeAliases  = []string{"tipo_chiamata", "call_type", "tipo", "type"}
	timestampAliases = []string{"data_ora_chiamata", "timestamp", "data_ora", "datetime", "data", "date", "call_date"}
	durationAliases  = []string{"durata_secondi", "duration_seconds", "durata", "duration", "billsec"}
	contractAliases  = []string{"codice_contratto", "contract_code", "contratto", "contract"}
	clientAliases    = []string{"cliente_finale_comune", "client_city", "cliente", "client", "comune"}
)

// columnMap holds resolved header positions. client is optional (-1 when
// absent); the others are required.
type columnMap struct {
	callType  int
	timestamp int
	duration  int
	contract  int
	client    int
}

// resolveColumns maps a header row to field positions. A missing
// required column fails the whole file with a SchemaError.
func resolveColumns(header []string, filename string) (columnMap, error) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeHeader(h)
	}

	cols := columnMap{
		callType:  findColumn(normalized, callTypeAliases),
		timestamp: findColumn(normalized, timestampAliases),
		duration:  findColumn(normalized, durationAliases),
		contract:  findColumn(normalized, contractAliases),
		client:    findColumn(normalized, clientAliases),
	}

	var missing []string
	if cols.callType < 0 {
		missing = append(missing, "call type")
	}
	if cols.timestamp < 0 {
		missing = append(missing, "timestamp")
	}
	if cols.duration < 0 {
		missing = append(missing, "duration")
	}
	if cols.contract < 0 {
		missing = append(missing, "contract code")
	}
	if len(missing) > 0 {
		return cols, &common.SchemaError{Filename: filename, Missing: missing}
	}

	return cols, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, "-", "_")
	return strings.Join(strings.Fields(h), "_")
}

func findColumn(headers []string, aliases []string) int {
	for _, alias := range aliases {
		for i, h := range headers {
			if h == alias {
				return i
			}
		}
	}
	return -1
}

// buildRecord validates one row's raw cell values into a CallRecord.
// rowNum is the 1-based position in the source file, used in RowErrors.
func buildRecord(cols columnMap, cells []string, rowNum int, filename string) (model.CallRecord, *common.RowError) {
	cell := func(i int) string {
		if i >= 0 && i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}

	ts, err := parseTimestamp(cell(cols.timestamp))
	if err != nil {
		return model.CallRecord{}, &common.RowError{
			Filename: filename, Row: rowNum,
			Reason: "unparsable timestamp " + strconv.Quote(cell(cols.timestamp)),
		}
	}

	duration, err := parseDuration(cell(cols.duration))
	if err != nil {
		return model.CallRecord{}, &common.RowError{
			Filename: filename, Row: rowNum, Reason: err.Error(),
		}
	}

	contract := cell(cols.contract)
	if contract == "" {
		return model.CallRecord{}, &common.RowError{
			Filename: filename, Row: rowNum, Reason: "missing contract code",
		}
	}

	return model.CallRecord{
		Timestamp:       ts,
		CallType:        cell(cols.callType),
		ContractCode:    contract,
		ClientLabel:     cell(cols.client),
		DurationSeconds: duration,
	}, nil
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

func parseTimestamp(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, value)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseDuration(value string) (int64, error) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil {
		return 0, &parseError{"non-numeric duration " + strconv.Quote(value)}
	}
	if f < 0 {
		return 0, &parseError{"negative duration " + strconv.Quote(value)}
	}
	return int64(f), nil
}

type parseError struct{ msg string }

func (e *parseError) Error() string { return e.msg }
