package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cdrflow/cdrflow/internal/common"
)

func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseExcel(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"tipo_chiamata", "data_ora_chiamata", "durata_secondi", "codice_contratto", "cliente_finale_comune"},
		{"URBANE", "2025-01-01 10:00:00", "30", "C1", "Milano"},
		{"CELLULARE", "2025-01-02 11:00:00", "90", "C2", "Roma"},
	})

	result, err := Parse(data, "traffico.xlsx")
	require.NoError(t, err)

	assert.Equal(t, KindExcel, result.Kind)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "URBANE", result.Records[0].CallType)
	assert.Equal(t, int64(90), result.Records[1].DurationSeconds)
	assert.Equal(t, "Roma", result.Records[1].ClientLabel)
}

func TestParseExcelMissingColumns(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"tipo_chiamata", "cliente_finale_comune"},
		{"URBANE", "Milano"},
	})

	_, err := Parse(data, "broken.xlsx")
	var serr *common.SchemaError
	require.ErrorAs(t, err, &serr)
}

func TestParseExcelRowErrors(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"tipo_chiamata", "data_ora_chiamata", "durata_secondi", "codice_contratto"},
		{"URBANE", "2025-01-01 10:00:00", "30", "C1"},
		{"URBANE", "bad-date", "30", "C1"},
	})

	result, err := Parse(data, "mixed.xlsx")
	require.NoError(t, err)
	assert.Len(t, result.Records, 1)
	require.Len(t, result.RowErrors, 1)
	assert.Equal(t, 3, result.RowErrors[0].Row)
}

func TestParseExcelUnreadable(t *testing.T) {
	_, err := Parse([]byte("not a zip archive"), "garbage.xlsx")
	var eerr *common.EncodingError
	require.ErrorAs(t, err, &eerr)
}
