// Package sample reduces a table to a subset of rows and/or columns.
//
// Row selection is uniform without replacement and preserves the
// original relative row order: the output is a stable subsequence of
// the input, which keeps diffs against the source readable and makes
// seeded runs reproducible.
package sample

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"csvanon/internal/table"
)

// Spec declares how much of the table to keep.
//
// Exactly one of RowCount / RowFraction must be set; Validate enforces
// this. KeepColumns optionally restricts the output to a subset of
// columns, retained in header order.
type Spec struct {
	RowCount    *int     `json:"rows,omitempty"`
	RowFraction *float64 `json:"fraction,omitempty"`
	KeepColumns []string `json:"keep_columns,omitempty"`
}

// Validate checks the spec independent of any dataset.
func (s Spec) Validate() error {
	switch {
	case s.RowCount == nil && s.RowFraction == nil:
		return fmt.Errorf("sample spec: one of rows or fraction is required")
	case s.RowCount != nil && s.RowFraction != nil:
		return fmt.Errorf("sample spec: rows and fraction are mutually exclusive")
	case s.RowCount != nil && *s.RowCount < 0:
		return fmt.Errorf("sample spec: rows must be >= 0, got %d", *s.RowCount)
	case s.RowFraction != nil && (*s.RowFraction <= 0 || *s.RowFraction > 1):
		return fmt.Errorf("sample spec: fraction must be in (0,1], got %v", *s.RowFraction)
	}
	return nil
}

// rowTarget resolves the spec to a concrete row count for a table of n
// rows, clamped to n. Fractions convert by rounding.
func (s Spec) rowTarget(n int) int {
	k := n
	if s.RowCount != nil {
		k = *s.RowCount
	} else if s.RowFraction != nil {
		k = int(math.Round(float64(n) * *s.RowFraction))
	}
	if k > n {
		k = n
	}
	return k
}

// Sample applies the spec to a table.
//
// Rows are chosen by a partial Fisher-Yates over the index space and
// the chosen indices are sorted back into source order. A RowCount of 0
// yields a header-only table. Unknown names in KeepColumns are an
// error, reported before any selection happens.
func Sample(t table.Table, spec Spec, rng *rand.Rand) (table.Table, error) {
	if err := spec.Validate(); err != nil {
		return table.Table{}, err
	}

	keep, err := resolveKeep(t, spec.KeepColumns)
	if err != nil {
		return table.Table{}, err
	}

	picked := pickRows(len(t.Rows), spec.rowTarget(len(t.Rows)), rng)

	out := table.Table{
		Header:    make([]string, len(keep)),
		Rows:      make([][]string, len(picked)),
		HasHeader: t.HasHeader,
	}
	for i, c := range keep {
		out.Header[i] = t.Header[c]
	}
	for i, rix := range picked {
		row := make([]string, len(keep))
		for j, c := range keep {
			row[j] = t.Rows[rix][c]
		}
		out.Rows[i] = row
	}
	return out, nil
}

// resolveKeep maps KeepColumns onto column positions in header order.
// An empty list keeps every column.
func resolveKeep(t table.Table, names []string) ([]int, error) {
	if len(names) == 0 {
		all := make([]int, len(t.Header))
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	want := make(map[int]struct{}, len(names))
	for _, name := range names {
		ix, ok := t.ColumnIndex(name)
		if !ok {
			return nil, fmt.Errorf("keep column %q not found in header [%s]",
				name, strings.Join(t.Header, ", "))
		}
		want[ix] = struct{}{}
	}

	out := make([]int, 0, len(want))
	for i := range t.Header {
		if _, ok := want[i]; ok {
			out = append(out, i)
		}
	}
	return out, nil
}

// pickRows selects k of n indices uniformly without replacement and
// returns them in ascending order.
func pickRows(n, k int, rng *rand.Rand) []int {
	if k >= n {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}

	ix := make([]int, n)
	for i := range ix {
		ix[i] = i
	}
	// Partial shuffle: after i swaps, ix[:i] is a uniform k-subset prefix.
	for i := 0; i < k; i++ {
		j := i + rng.Intn(n-i)
		ix[i], ix[j] = ix[j], ix[i]
	}
	out := ix[:k:k]
	sort.Ints(out)
	return out
}
