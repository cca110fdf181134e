// Package mssql loads the anonymized table into SQL Server via the
// go-mssqldb driver, using its CopyIn bulk-insert support.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	mssqldb "github.com/microsoft/go-mssqldb"

	"csvanon/internal/sink"
	"csvanon/internal/table"
)

func init() {
	sink.Register("mssql", New)
}

type Sink struct {
	db      *sql.DB
	table   string
	replace bool
}

func New(ctx context.Context, cfg sink.Config) (sink.Sink, error) {
	// The legacy "mssql" driver name is required for CopyIn prepared
	// statements; "sqlserver" rejects them.
	db, err := sql.Open("mssql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mssql open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mssql ping: %w", err)
	}
	return &Sink{
		db:      db,
		table:   cfg.Table,
		replace: cfg.Options.Bool("replace", true),
	}, nil
}

func (s *Sink) Close() error { return s.db.Close() }

// Write creates the table if needed and bulk-inserts all rows in one
// transaction.
func (s *Sink) Write(ctx context.Context, t table.Table) error {
	cols := sink.NormalizeColumns(t.Header)

	ddlParts := make([]string, len(cols))
	for i, c := range cols {
		ddlParts[i] = msIdent(c) + " NVARCHAR(MAX)"
	}
	ddl := fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (%s)",
		strings.ReplaceAll(s.table, "'", "''"),
		msFQN(s.table),
		strings.Join(ddlParts, ", "),
	)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("mssql create table %s: %w", s.table, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mssql begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if s.replace {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+msFQN(s.table)); err != nil {
			return fmt.Errorf("mssql clear table %s: %w", s.table, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, mssqldb.CopyIn(s.table, mssqldb.BulkOptions{}, cols...))
	if err != nil {
		return fmt.Errorf("mssql bulk prepare: %w", err)
	}

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
			_ = stmt.Close()
			return fmt.Errorf("mssql bulk insert into %s: %w", s.table, err)
		}
	}
	// Final Exec with no args flushes the bulk batch.
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return fmt.Errorf("mssql bulk flush into %s: %w", s.table, err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("mssql bulk close: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mssql commit: %w", err)
	}
	return nil
}

func msIdent(id string) string { return "[" + strings.ReplaceAll(id, "]", "]]") + "]" }

func msFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = msIdent(p)
	}
	return strings.Join(parts, ".")
}
