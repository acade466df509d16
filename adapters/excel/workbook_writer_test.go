package excel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tnatlas/internal/report"
)

func TestWriteTablesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewWorkbookWriter(dir)

	tables := []report.Table{
		{
			Name:    "table1_cohort",
			Title:   "Cohort Overview",
			Columns: []string{"Characteristic", "Value"},
			Rows: [][]string{
				{"Total patients", "104,955"},
				{"States represented", "50"},
			},
		},
		{
			Name:    "table4_chi_square",
			Title:   "Tests of Independence",
			Columns: []string{"Test", "Chi-square", "p-value"},
			Rows: [][]string{
				{"Medication Preferences by Region", "11.667", "<0.001"},
			},
		},
	}

	require.NoError(t, w.WriteTables(tables))

	f, err := excelize.OpenFile(w.Path())
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"table1_cohort", "table4_chi_square"}, f.GetSheetList())

	rows, err := f.GetRows("table1_cohort")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Characteristic", "Value"}, rows[0])
	assert.Equal(t, []string{"Total patients", "104,955"}, rows[1])
}

func TestSheetNameTruncation(t *testing.T) {
	table := report.Table{Name: "a_very_long_table_name_that_exceeds_the_sheet_limit"}
	assert.Len(t, sheetName(table), 31)
}
