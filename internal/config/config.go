// Package config defines the JSON-serializable job model for the
// anonymizer. A job can be assembled from CLI flags or decoded from a
// job file; either way the same Validate pass runs before any data is
// touched.
//
// The model is deliberately small and dependency-free: decoding is
// plain encoding/json, with a light Options helper for the free-form
// sink options bag.
package config

import "encoding/json"

// Job is the top-level document describing one sample-and-anonymize
// run.
type Job struct {
	// Name is the logical job name used for metrics tagging and
	// logging. Optional.
	Name string `json:"name,omitempty"`

	Input     Input     `json:"input"`
	Sample    Sample    `json:"sample"`
	Anonymize Anonymize `json:"anonymize"`
	Output    Output    `json:"output"`

	// Seed fixes the random generator for reproducible output. When
	// absent, each run differs.
	Seed *int64 `json:"seed,omitempty"`
}

// Input locates and describes the source table.
type Input struct {
	// Path is the local filesystem path of the delimited input file.
	Path string `json:"path"`

	// Encoding names the input character encoding (e.g. "utf-8",
	// "latin-1", "windows-1250"). Empty means auto-detect.
	Encoding string `json:"encoding,omitempty"`

	// Delimiter is the field separator as a one-character string.
	// Empty means comma.
	Delimiter string `json:"delimiter,omitempty"`

	// NoHeader marks the file as headerless; columns are then addressed
	// as column_<i> or by bare index.
	NoHeader bool `json:"no_header,omitempty"`
}

// Sample declares how much of the table to keep. Exactly one of Rows /
// Fraction must be present.
type Sample struct {
	Rows     *int     `json:"rows,omitempty"`
	Fraction *float64 `json:"fraction,omitempty"`

	// KeepColumns optionally retains only the named columns, in header
	// order.
	KeepColumns []string `json:"keep_columns,omitempty"`
}

// Anonymize declares the sensitive columns. An empty list means sample
// only.
type Anonymize struct {
	Columns []string `json:"columns"`
}

// Output selects the destination sink.
type Output struct {
	// Kind selects the sink implementation: "file" (default),
	// "sqlite", "postgres", or "mssql".
	Kind string `json:"kind,omitempty"`

	// Path is the destination file for the "file" sink.
	Path string `json:"path,omitempty"`

	// Encoding and Delimiter apply to the "file" sink. Empty means
	// UTF-8 / comma.
	Encoding  string `json:"encoding,omitempty"`
	Delimiter string `json:"delimiter,omitempty"`

	// DSN and Table apply to the database sinks.
	DSN   string `json:"dsn,omitempty"`
	Table string `json:"table,omitempty"`

	// Options is a free-form bag interpreted by the selected sink.
	Options Options `json:"options,omitempty"`
}

// Options fetches typed values from an arbitrary JSON map. It performs
// only minimal coercion and returns the provided default when a key is
// absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as
// float64, so both float64 and int are accepted.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// UnmarshalJSON makes a missing or null options object decode to a
// non-nil empty map so call sites need no nil checks.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
