package ingest

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteSource streams the single column selected by Query from a SQLite
// database, opened read-only. Only one row is alive at a time, keeping memory
// usage constant.
type SQLiteSource struct {
	Path  string
	Query string
}

func (s *SQLiteSource) Header() bool { return false }

// Stream implements Source. NULL values are passed on as empty records.
func (s *SQLiteSource) Stream(ctx context.Context, fn func(rec string) error) error {
	db, err := sql.Open("sqlite", "file:"+s.Path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", s.Path, err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	rows, err := db.QueryContext(ctx, s.Query)
	if err != nil {
		return fmt.Errorf("query %s: %w", s.Path, err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	for rows.Next() {
		var id sql.NullString
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		if err := fn(id.String); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate rows: %w", err)
	}
	return nil
}
