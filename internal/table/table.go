// Package table defines the in-memory dataset model shared by every
// pipeline stage.
//
// A Table is a rectangular grid of string cells with an ordered header.
// Headerless sources still get a header: synthetic column_<i> names are
// assigned at load time so that every downstream stage can address
// columns by name. The empty string is the null marker throughout.
//
// Stages never mutate a Table they received; they return a new value.
package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Table is an ordered sequence of rows under an ordered header.
//
// Invariant: every row has exactly len(Header) cells. Load paths enforce
// this; stage code may assume it.
type Table struct {
	// Header holds the column names in output order. For headerless
	// sources these are synthetic (column_0, column_1, ...).
	Header []string

	// Rows holds the data cells, aligned with Header.
	Rows [][]string

	// HasHeader records whether the source file carried a real header
	// row. Writers use it to decide whether to emit Header.
	HasHeader bool
}

// SyntheticHeader builds column_<i> names for a headerless table of the
// given width. The naming matches what callers are told to use when
// declaring sensitive or retained columns on headerless input.
func SyntheticHeader(width int) []string {
	out := make([]string, width)
	for i := range out {
		out[i] = "column_" + strconv.Itoa(i)
	}
	return out
}

// ColumnIndex resolves a caller-supplied column name to its position.
//
// On headerless tables a bare integer is accepted as a positional index
// in addition to the synthetic column_<i> form.
func (t Table) ColumnIndex(name string) (int, bool) {
	name = strings.TrimSpace(name)
	for i, h := range t.Header {
		if h == name {
			return i, true
		}
	}
	if !t.HasHeader {
		if ix, err := strconv.Atoi(name); err == nil && ix >= 0 && ix < len(t.Header) {
			return ix, true
		}
	}
	return -1, false
}

// Column copies out the values of one column by position.
func (t Table) Column(ix int) []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[ix]
	}
	return out
}

// CheckRectangular verifies the row-width invariant. Load paths call it
// after ingesting a source; a violation is reported with the first
// offending row number (1-based over data rows).
func (t Table) CheckRectangular() error {
	for i, r := range t.Rows {
		if len(r) != len(t.Header) {
			return fmt.Errorf("row %d has %d cells, header has %d", i+1, len(r), len(t.Header))
		}
	}
	return nil
}

// CheckHeader rejects blank and duplicate column names. Duplicate names
// would make sensitive-column declarations ambiguous, so they are an
// error rather than a guess.
func (t Table) CheckHeader() error {
	seen := make(map[string]struct{}, len(t.Header))
	for i, h := range t.Header {
		if strings.TrimSpace(h) == "" {
			return fmt.Errorf("column %d has an empty name", i)
		}
		if _, dup := seen[h]; dup {
			return fmt.Errorf("duplicate column name %q", h)
		}
		seen[h] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy. Stages that replace cells clone first so
// the caller's table is never written through.
func (t Table) Clone() Table {
	out := Table{
		Header:    append([]string(nil), t.Header...),
		Rows:      make([][]string, len(t.Rows)),
		HasHeader: t.HasHeader,
	}
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}
