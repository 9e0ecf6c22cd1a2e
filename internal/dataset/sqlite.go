package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "modernc.org/sqlite"
)

// DefaultTable is the table read when a sqlite location names none.
const DefaultTable = "air_quality"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteSource reads rows from a table whose columns are named like the CSV
// header ("Name", "Start_Date", "Data Value", "Geo Place Name", ...). The
// database is opened read-only.
type SQLiteSource struct {
	Path  string
	Table string

	db *sql.DB // set by tests to read an already open database
}

func (s *SQLiteSource) Rows(ctx context.Context) ([]Row, error) {
	if !tableName.MatchString(s.Table) {
		return nil, fmt.Errorf("invalid table name %q", s.Table)
	}

	db := s.db
	if db == nil {
		var err error
		db, err = sql.Open("sqlite", "file:"+s.Path+"?mode=ro")
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
	}

	rows, err := db.QueryContext(ctx, `SELECT * FROM "`+s.Table+`"`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.Table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	values := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return out, fmt.Errorf("scan %s: %w", s.Table, err)
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			if values[i].Valid {
				row[col] = values[i].String
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *SQLiteSource) Scheme() string { return "sqlite" }
func (s *SQLiteSource) String() string { return "sqlite://" + s.Path + "?table=" + s.Table }
