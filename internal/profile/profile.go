// Package profile derives a lightweight statistical summary of one
// column's raw values: inferred type, null fraction, distinct count,
// and a per-type shape (numeric range, category set, or length bounds).
//
// Profiles are computed once per sensitive column immediately before
// synthesis and are never persisted or mutated afterwards. Profiling is
// a pure function of the input values.
package profile

import (
	"sort"
	"strconv"
	"strings"
)

// Kind is the inferred column type. It is an explicit tagged variant so
// the synthesizer can switch over it exhaustively.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindFloat
	KindBoolean
	KindCategorical
)

// String returns the inference label for logs and error messages.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindCategorical:
		return "categorical"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Categorical inference thresholds: a column qualifies when its distinct
// set is small in absolute terms and relative to the non-null count.
const (
	maxCategories    = 50
	categoricalRatio = 0.5
)

// Profile is the immutable summary consumed by the synthesizer.
//
// Only the fields matching Kind are meaningful: IntMin/IntMax for
// KindInteger, FloatMin/FloatMax for KindFloat, Categories for
// KindCategorical, MinLen/MaxLen for KindText.
type Profile struct {
	Kind         Kind
	NullFraction float64
	Distinct     int

	IntMin, IntMax     int64
	FloatMin, FloatMax float64
	MinLen, MaxLen     int

	// Categories is sorted so that synthesis is deterministic for a
	// fixed seed regardless of input row order.
	Categories []string
}

// Column profiles one column. The empty string is the null marker: it
// counts toward NullFraction and is excluded from type inference and
// shape computation.
//
// A column with zero non-null values is Text with NullFraction 1 (or 0
// for an empty column) and zero length bounds; the synthesizer handles
// that without special-casing.
func Column(values []string) Profile {
	p := Profile{Kind: KindText}
	if len(values) == 0 {
		return p
	}

	var (
		nulls    int
		seen     bool
		allInt   = true
		allFlt   = true
		allBool  = true
		firstInt = true
		firstFlt = true
	)
	distinct := make(map[string]struct{})

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			nulls++
			continue
		}

		if !seen {
			seen = true
			p.MinLen, p.MaxLen = len(v), len(v)
		} else {
			if len(v) < p.MinLen {
				p.MinLen = len(v)
			}
			if len(v) > p.MaxLen {
				p.MaxLen = len(v)
			}
		}
		distinct[v] = struct{}{}

		if allInt {
			n, err := strconv.ParseInt(v, 10, 64)
			switch {
			case err != nil:
				allInt = false
			case firstInt:
				p.IntMin, p.IntMax = n, n
				firstInt = false
			default:
				if n < p.IntMin {
					p.IntMin = n
				}
				if n > p.IntMax {
					p.IntMax = n
				}
			}
		}
		if allFlt {
			f, err := strconv.ParseFloat(v, 64)
			switch {
			case err != nil:
				allFlt = false
			case firstFlt:
				p.FloatMin, p.FloatMax = f, f
				firstFlt = false
			default:
				if f < p.FloatMin {
					p.FloatMin = f
				}
				if f > p.FloatMax {
					p.FloatMax = f
				}
			}
		}
		if allBool {
			if _, ok := parseBoolLoose(v); !ok {
				allBool = false
			}
		}
	}

	p.NullFraction = float64(nulls) / float64(len(values))
	p.Distinct = len(distinct)

	if !seen {
		// All-null column: Text with empty shape.
		return p
	}

	nonNull := len(values) - nulls
	switch {
	case allInt:
		p.Kind = KindInteger
	case allFlt:
		p.Kind = KindFloat
	case allBool:
		p.Kind = KindBoolean
	case p.Distinct <= maxCategories &&
		float64(p.Distinct)/float64(nonNull) <= categoricalRatio:
		p.Kind = KindCategorical
		p.Categories = sortedKeys(distinct)
	default:
		p.Kind = KindText
	}
	return p
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "yes", "y":
		return true, true
	case "0", "f", "false", "no", "n":
		return false, true
	default:
		return false, false
	}
}
