// Package sqlite loads the anonymized table into a SQLite database via
// modernc.org/sqlite (pure-Go driver, no cgo).
//
// All columns are stored with TEXT affinity: the anonymizer's cell
// model is strings end to end, and the surrogate data is meant for test
// fixtures, not typed analytics.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"csvanon/internal/sink"
	"csvanon/internal/table"
)

func init() {
	sink.Register("sqlite", New)
}

type Sink struct {
	db      *sql.DB
	table   string
	replace bool
}

// New opens the database and verifies connectivity. The "replace"
// option (default true) drops any previous contents of the target
// table so reruns are idempotent.
func New(ctx context.Context, cfg sink.Config) (sink.Sink, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	return &Sink{
		db:      db,
		table:   cfg.Table,
		replace: cfg.Options.Bool("replace", true),
	}, nil
}

func (s *Sink) Close() error { return s.db.Close() }

// Write creates the table if needed and inserts every row in one
// transaction, so a failed load leaves either the previous contents or
// the complete new ones.
func (s *Sink) Write(ctx context.Context, t table.Table) error {
	cols := sink.NormalizeColumns(t.Header)

	ddlParts := make([]string, len(cols))
	for i, c := range cols {
		ddlParts[i] = ident(c) + " TEXT"
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", ident(s.table), strings.Join(ddlParts, ", "))
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlite create table %s: %w", s.table, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if s.replace {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+ident(s.table)); err != nil {
			return fmt.Errorf("sqlite clear table %s: %w", s.table, err)
		}
	}

	quoted := make([]string, len(cols))
	ph := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = ident(c)
		ph[i] = "?"
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		ident(s.table), strings.Join(quoted, ", "), strings.Join(ph, ", "))

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("sqlite prepare: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for _, row := range t.Rows {
		for i, v := range row {
			if v == "" {
				args[i] = nil
			} else {
				args[i] = v
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("sqlite insert into %s: %w", s.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite commit: %w", err)
	}
	return nil
}

func ident(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
