package etable

import(
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// A Writer persists named tables somewhere.
type Writer interface {
	WriteTable(name string, t *Table) error
}

// CSVDir writes each table as <Dir>/<name>.csv, creating Dir if needed.
type CSVDir struct {
	Dir string
}

func (cd CSVDir)Path(name string) string { return filepath.Join(cd.Dir, name + ".csv") }

func (cd CSVDir)WriteTable(name string, t *Table) error {
	return t.WriteCSV(cd.Path(name))
}

// WriteCSV writes the header row and every row, with no index column.
func (t *Table)WriteCSV(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("write csv '%s': %v", filename, err)
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("write csv '%s': %v", filename, err)
	}

	if err := t.WriteCSVTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write csv '%s': %v", filename, err)
	}
	return f.Close()
}

func (t *Table)WriteCSVTo(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			rec[i] = FormatCell(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
