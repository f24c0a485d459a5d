package etable

import(
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteSink appends tables into a SQLite database, one SQL table per
// named table. Every row is tagged with the run ID, so repeated runs
// can share a database.
type SQLiteSink struct {
	RunID string
	db    *sql.DB
}

func OpenSQLite(path, runID string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	return &SQLiteSink{RunID: runID, db: db}, nil
}

func (s *SQLiteSink)Close() error { return s.db.Close() }

// DB is exposed for queries (and tests).
func (s *SQLiteSink)DB() *sql.DB { return s.db }

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// sqlType picks a column type from the first row; an empty table gets
// all REAL columns.
func sqlType(t *Table, col int) string {
	if len(t.Rows) > 0 {
		switch t.Rows[0][col].(type) {
		case string: return "TEXT"
		case int:    return "INTEGER"
		}
	}
	return "REAL"
}

func (s *SQLiteSink)WriteTable(name string, t *Table) error {
	defs := []string{"run_id TEXT NOT NULL"}
	cols := []string{"run_id"}
	for i, c := range t.Columns {
		defs = append(defs, quote(c) + " " + sqlType(t, i))
		cols = append(cols, quote(c))
	}

	schema := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", quote(name), strings.Join(defs, ",\n\t"))
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("insert %s: %w", name, err)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quote(name), strings.Join(cols, ", "), placeholders))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert %s: %w", name, err)
	}
	defer stmt.Close()

	for i, row := range t.Rows {
		args := append([]interface{}{s.RunID}, row...)
		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s row %d: %w", name, i, err)
		}
	}

	return tx.Commit()
}
