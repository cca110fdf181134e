// Package postgres loads the anonymized table into Postgres using pgx
// v5. Rows go in through CopyFrom, which is the fast path for bulk
// loads and needs no SQL generation per row.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"csvanon/internal/sink"
	"csvanon/internal/table"
)

func init() {
	sink.Register("postgres", New)
}

type Sink struct {
	pool    *pgxpool.Pool
	table   string
	replace bool
}

func New(ctx context.Context, cfg sink.Config) (sink.Sink, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &Sink{
		pool:    pool,
		table:   cfg.Table,
		replace: cfg.Options.Bool("replace", true),
	}, nil
}

func (s *Sink) Close() error {
	s.pool.Close()
	return nil
}

// Write creates the target table if needed, optionally truncates it,
// and bulk-copies all rows inside one transaction.
func (s *Sink) Write(ctx context.Context, t table.Table) error {
	cols := sink.NormalizeColumns(t.Header)

	ddlParts := make([]string, len(cols))
	for i, c := range cols {
		ddlParts[i] = pgIdent(c) + " text"
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", pgFQN(s.table), strings.Join(ddlParts, ", "))
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("postgres create table %s: %w", s.table, err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if s.replace {
		if _, err := tx.Exec(ctx, "TRUNCATE "+pgFQN(s.table)); err != nil {
			return fmt.Errorf("postgres truncate %s: %w", s.table, err)
		}
	}

	rows := make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		row := make([]any, len(r))
		for j, v := range r {
			if v == "" {
				row[j] = nil
			} else {
				row[j] = v
			}
		}
		rows[i] = row
	}

	if _, err := tx.CopyFrom(ctx, splitFQN(s.table), cols, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("postgres copy into %s: %w", s.table, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres commit: %w", err)
	}
	return nil
}

// pgIdent safely quotes a single identifier segment.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN quotes a possibly schema-qualified name like "public.fixtures"
// to "public"."fixtures".
func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}

// splitFQN converts "schema.table" into a pgx.Identifier.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
