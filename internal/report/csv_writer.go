package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"tnatlas/internal/errors"
)

// CSVWriter renders each table to its own CSV file under dir.
type CSVWriter struct {
	dir string
}

// NewCSVWriter creates a writer targeting dir, creating it if needed.
func NewCSVWriter(dir string) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.IOError(fmt.Sprintf("create tables dir %s", dir), err)
	}
	return &CSVWriter{dir: dir}, nil
}

// WriteTables writes every table; files are independent so they fan out.
func (w *CSVWriter) WriteTables(tables []Table) error {
	var g errgroup.Group
	for _, table := range tables {
		table := table
		g.Go(func() error {
			return w.writeTable(table)
		})
	}
	return g.Wait()
}

func (w *CSVWriter) writeTable(table Table) error {
	path := filepath.Join(w.dir, table.Name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return errors.IOError(fmt.Sprintf("create %s", path), err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(table.Columns); err != nil {
		return errors.IOError(fmt.Sprintf("write header for %s", table.Name), err)
	}
	for _, row := range table.Rows {
		if err := cw.Write(row); err != nil {
			return errors.IOError(fmt.Sprintf("write row for %s", table.Name), err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.IOError(fmt.Sprintf("flush %s", table.Name), err)
	}
	return nil
}
