package ports

import "tnatlas/internal/report"

// TableWriter renders a set of report tables to some output medium
// (CSV files, an Excel workbook, an HTTP response).
type TableWriter interface {
	WriteTables(tables []report.Table) error
}
