package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"csvanon/internal/sink"
	"csvanon/internal/table"
)

func testDSN(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "out.db")
}

func fixture() table.Table {
	return table.Table{
		Header: []string{"id", "Email Address"},
		Rows: [][]string{
			{"1", "a@x"},
			{"2", ""},
		},
		HasHeader: true,
	}
}

//
// Write
//

// TestWriteCreatesAndLoads verifies DDL, insert, and null mapping: the
// empty string lands as SQL NULL and headers are normalized to safe
// identifiers.
func TestWriteCreatesAndLoads(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := testDSN(t)
	s, err := New(ctx, sink.Config{DSN: dsn, Table: "fixtures", Options: nil})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer s.Close()

	if err := s.Write(ctx, fixture()); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open for verify: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM "fixtures"`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("row count = %d, want 2", count)
	}

	var nulls int
	if err := db.QueryRow(`SELECT COUNT(*) FROM "fixtures" WHERE "email_address" IS NULL`).Scan(&nulls); err != nil {
		t.Fatalf("null count: %v", err)
	}
	if nulls != 1 {
		t.Fatalf("null count = %d, want 1", nulls)
	}
}

// TestWriteReplaceSemantics verifies reruns are idempotent by default
// and append when replace is disabled.
func TestWriteReplaceSemantics(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := testDSN(t)

	count := func(t *testing.T) int {
		t.Helper()
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			t.Fatalf("open for verify: %v", err)
		}
		defer db.Close()
		var n int
		if err := db.QueryRow(`SELECT COUNT(*) FROM "fixtures"`).Scan(&n); err != nil {
			t.Fatalf("count: %v", err)
		}
		return n
	}

	s, err := New(ctx, sink.Config{DSN: dsn, Table: "fixtures"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := s.Write(ctx, fixture()); err != nil {
		t.Fatalf("first Write() error: %v", err)
	}
	if err := s.Write(ctx, fixture()); err != nil {
		t.Fatalf("second Write() error: %v", err)
	}
	s.Close()
	if n := count(t); n != 2 {
		t.Fatalf("replace rerun count = %d, want 2", n)
	}

	appender, err := New(ctx, sink.Config{
		DSN: dsn, Table: "fixtures",
		Options: map[string]any{"replace": false},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := appender.Write(ctx, fixture()); err != nil {
		t.Fatalf("append Write() error: %v", err)
	}
	appender.Close()
	if n := count(t); n != 4 {
		t.Fatalf("append count = %d, want 4", n)
	}
}
