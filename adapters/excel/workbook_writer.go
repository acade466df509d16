// Package excel writes the publication tables into a single workbook, one
// sheet per table, for collaborators who review in a spreadsheet rather
// than the CSV bundle.
package excel

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"tnatlas/internal/errors"
	"tnatlas/internal/report"
)

// WorkbookWriter implements TableWriter against one .xlsx file.
type WorkbookWriter struct {
	path string
}

// NewWorkbookWriter creates a writer targeting dir/tables.xlsx.
func NewWorkbookWriter(dir string) *WorkbookWriter {
	return &WorkbookWriter{path: filepath.Join(dir, "tables.xlsx")}
}

// Path returns the output file path.
func (w *WorkbookWriter) Path() string {
	return w.path
}

// WriteTables writes every table to its own sheet and saves the workbook.
func (w *WorkbookWriter) WriteTables(tables []report.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "create header style")
	}

	for i, table := range tables {
		sheet := sheetName(table)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return errors.Wrapf(err, "rename sheet for %s", table.Name)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return errors.Wrapf(err, "create sheet for %s", table.Name)
			}
		}
		if err := w.writeSheet(f, sheet, table, header); err != nil {
			return err
		}
	}

	if err := f.SaveAs(w.path); err != nil {
		return errors.Wrapf(err, "save workbook %s", w.path)
	}
	return nil
}

func (w *WorkbookWriter) writeSheet(f *excelize.File, sheet string, table report.Table, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &table.Columns); err != nil {
		return errors.Wrapf(err, "write header row for %s", table.Name)
	}
	end, err := excelize.CoordinatesToCellName(len(table.Columns), 1)
	if err != nil {
		return errors.Wrapf(err, "resolve header range for %s", table.Name)
	}
	if err := f.SetCellStyle(sheet, "A1", end, headerStyle); err != nil {
		return errors.Wrapf(err, "style header row for %s", table.Name)
	}

	for i, row := range table.Rows {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "write row %d for %s", i+1, table.Name)
		}
	}
	return nil
}

// sheetName fits the table name into Excel's 31 character sheet limit.
func sheetName(table report.Table) string {
	name := table.Name
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}
