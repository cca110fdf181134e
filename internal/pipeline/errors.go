package pipeline

import "fmt"

// The pipeline classifies every failure into one of four taxonomy
// kinds. All are fatal to the run; classification exists so callers and
// tests can assert on the failure class without string matching.

// InputError: unreadable path, undecodable encoding, malformed table.
type InputError struct{ Err error }

func (e *InputError) Error() string { return fmt.Sprintf("input: %v", e.Err) }
func (e *InputError) Unwrap() error { return e.Err }

// SpecError: invalid sample specification or a declared column that
// does not exist. Raised before any transformation output exists.
type SpecError struct{ Err error }

func (e *SpecError) Error() string { return fmt.Sprintf("specification: %v", e.Err) }
func (e *SpecError) Unwrap() error { return e.Err }

// SynthesisError: the synthesizer met a profile it cannot handle.
// Should not occur; never silently defaulted.
type SynthesisError struct{ Err error }

func (e *SynthesisError) Error() string { return fmt.Sprintf("synthesis: %v", e.Err) }
func (e *SynthesisError) Unwrap() error { return e.Err }

// OutputError: the destination rejected the completed table.
type OutputError struct{ Err error }

func (e *OutputError) Error() string { return fmt.Sprintf("output: %v", e.Err) }
func (e *OutputError) Unwrap() error { return e.Err }
