// Package report assembles publication-ready tables and the manuscript
// methods section from a completed analysis run. Presentation policy lives
// here: p-value rendering, percentage precision, N/A substitution for failed
// strata. The statistical layer below never formats.
package report

// Table is one publication table, medium-agnostic: the CSV writer, the
// workbook writer and the API all render the same structure.
type Table struct {
	Name    string     `json:"name"`  // file-safe identifier, e.g. "table2_national_utilization"
	Title   string     `json:"title"` // numbered caption title
	Caption string     `json:"caption,omitempty"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// AddRow appends one row; missing trailing cells are padded empty so every
// row matches the header width.
func (t *Table) AddRow(cells ...string) {
	for len(cells) < len(t.Columns) {
		cells = append(cells, "")
	}
	t.Rows = append(t.Rows, cells)
}
