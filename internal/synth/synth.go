// Package synth generates substitute cell values from a column profile.
//
// A Synthesizer is bound to one profile and one random generator; every
// Value call draws a fresh substitute so distinct rows get distinct-
// looking data. Nothing from the original cell values flows into the
// output — only the profile's shape does.
package synth

import (
	"fmt"
	"math/rand"
	"strconv"

	"csvanon/internal/profile"
)

// alphabet is the character set for synthesized text values.
const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// KindError reports a profile kind the synthesizer cannot handle. The
// profiler's kind set is exhaustive, so seeing this means a programming
// error; it is fatal, never silently defaulted.
type KindError struct {
	Kind profile.Kind
}

func (e *KindError) Error() string {
	return fmt.Sprintf("synthesize: unhandled column kind %d", int(e.Kind))
}

// Synthesizer draws substitute values for one column.
//
// The generator is injected by the orchestrator; with a fixed seed the
// sequence of values is fully reproducible.
type Synthesizer struct {
	prof profile.Profile
	rng  *rand.Rand
}

// New binds a profile to a random generator.
func New(p profile.Profile, rng *rand.Rand) *Synthesizer {
	return &Synthesizer{prof: p, rng: rng}
}

// Value draws one substitute cell.
//
// Null preservation: with probability equal to the profile's null
// fraction the null marker (empty string) is returned instead of a
// synthesized value, so output null density tracks the input.
func (s *Synthesizer) Value() (string, error) {
	if s.prof.NullFraction > 0 && s.rng.Float64() < s.prof.NullFraction {
		return "", nil
	}

	switch s.prof.Kind {
	case profile.KindInteger:
		return strconv.FormatInt(s.intInRange(), 10), nil

	case profile.KindFloat:
		lo, hi := s.prof.FloatMin, s.prof.FloatMax
		return strconv.FormatFloat(lo+s.rng.Float64()*(hi-lo), 'g', -1, 64), nil

	case profile.KindBoolean:
		if s.rng.Intn(2) == 0 {
			return "false", nil
		}
		return "true", nil

	case profile.KindCategorical:
		// Uniform over the category set, not weighted by original
		// frequency. Shape preservation over frequency fidelity.
		if len(s.prof.Categories) == 0 {
			return "", nil
		}
		return s.prof.Categories[s.rng.Intn(len(s.prof.Categories))], nil

	case profile.KindText:
		return s.text(), nil

	default:
		return "", &KindError{Kind: s.prof.Kind}
	}
}

// intInRange draws uniformly from [IntMin, IntMax] inclusive. The span
// is computed in uint64 so ranges spanning the full int64 domain do not
// overflow.
func (s *Synthesizer) intInRange() int64 {
	lo, hi := s.prof.IntMin, s.prof.IntMax
	if lo >= hi {
		return lo
	}
	span := uint64(hi-lo) + 1
	if span == 0 {
		// Span wrapped: the range covers all of int64.
		return int64(s.rng.Uint64())
	}
	return lo + int64(s.rng.Uint64()%span)
}

func (s *Synthesizer) text() string {
	lo, hi := s.prof.MinLen, s.prof.MaxLen
	if lo < 0 {
		lo = 0
	}
	n := lo
	if hi > lo {
		n = lo + s.rng.Intn(hi-lo+1)
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[s.rng.Intn(len(alphabet))]
	}
	return string(b)
}
