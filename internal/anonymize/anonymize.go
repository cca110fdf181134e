// Package anonymize replaces the values of declared sensitive columns
// with synthesized substitutes that match each column's statistical
// profile.
//
// Profiles are computed from the table as given — post-sampling — so
// the preserved statistics describe what ships, not the rows that were
// discarded. Cells outside the sensitive set pass through untouched.
package anonymize

import (
	"fmt"
	"math/rand"
	"strings"

	"csvanon/internal/profile"
	"csvanon/internal/synth"
	"csvanon/internal/table"
)

// Anonymize returns a copy of t with every cell of every sensitive
// column replaced by a fresh draw from that column's profile.
//
// Every sensitive name is resolved against the header before any cell
// is touched, so a bad name fails the whole operation with nothing
// replaced. An empty sensitive list returns an unchanged copy.
//
// Replacement is independent per cell: repeated source values may or
// may not map to the same substitute, and uniqueness is not guaranteed.
func Anonymize(t table.Table, sensitive []string, rng *rand.Rand) (table.Table, error) {
	cols := make([]int, 0, len(sensitive))
	for _, name := range sensitive {
		ix, ok := t.ColumnIndex(name)
		if !ok {
			return table.Table{}, fmt.Errorf("sensitive column %q not found in header [%s]",
				name, strings.Join(t.Header, ", "))
		}
		cols = append(cols, ix)
	}

	out := t.Clone()
	for _, c := range cols {
		prof := profile.Column(out.Column(c))
		syn := synth.New(prof, rng)
		for i := range out.Rows {
			v, err := syn.Value()
			if err != nil {
				return table.Table{}, fmt.Errorf("column %q: %w", out.Header[c], err)
			}
			out.Rows[i][c] = v
		}
	}
	return out, nil
}
