package config

import (
	"encoding/json"
	"testing"
)

//
// Job decoding
//

// TestJobDecode verifies the JSON document shape round-trips into the
// model, including pointer-typed optionals and the options bag.
func TestJobDecode(t *testing.T) {
	t.Parallel()

	doc := `{
		"name": "nightly",
		"input": {"path": "in.csv", "encoding": "latin-1", "no_header": true},
		"sample": {"fraction": 0.25, "keep_columns": ["id", "email"]},
		"anonymize": {"columns": ["email"]},
		"output": {"kind": "sqlite", "dsn": "file:x.db", "table": "fixtures",
			"options": {"replace": false, "batch": 500}},
		"seed": 42
	}`

	var j Job
	if err := json.Unmarshal([]byte(doc), &j); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if j.Name != "nightly" || j.Input.Path != "in.csv" || !j.Input.NoHeader {
		t.Fatalf("input decoded wrong: %+v", j)
	}
	if j.Sample.Fraction == nil || *j.Sample.Fraction != 0.25 || j.Sample.Rows != nil {
		t.Fatalf("sample decoded wrong: %+v", j.Sample)
	}
	if j.Seed == nil || *j.Seed != 42 {
		t.Fatalf("seed decoded wrong: %v", j.Seed)
	}
	if j.Output.Kind != "sqlite" || j.Output.Options.Bool("replace", true) {
		t.Fatalf("output decoded wrong: %+v", j.Output)
	}
	if got := j.Output.Options.Int("batch", 0); got != 500 {
		t.Fatalf("options batch = %d, want 500", got)
	}
}

//
// Options getters
//

// TestOptionsGetters verifies type coercion and defaulting for the
// free-form sink options bag.
func TestOptionsGetters(t *testing.T) {
	t.Parallel()

	o := Options{
		"s":     "hello",
		"b":     true,
		"f":     3.0,
		"i":     7,
		"wrong": []any{},
	}

	if got := o.String("s", "d"); got != "hello" {
		t.Errorf("String(s) = %q", got)
	}
	if got := o.String("missing", "d"); got != "d" {
		t.Errorf("String(missing) = %q, want default", got)
	}
	if got := o.String("b", "d"); got != "d" {
		t.Errorf("String(wrong type) = %q, want default", got)
	}
	if !o.Bool("b", false) {
		t.Error("Bool(b) = false")
	}
	if o.Bool("missing", false) {
		t.Error("Bool(missing) = true, want default")
	}
	if got := o.Int("f", 0); got != 3 {
		t.Errorf("Int(float json number) = %d, want 3", got)
	}
	if got := o.Int("i", 0); got != 7 {
		t.Errorf("Int(int) = %d, want 7", got)
	}
	if got := o.Int("wrong", 9); got != 9 {
		t.Errorf("Int(wrong type) = %d, want default", got)
	}
}

// TestOptionsNullDecode verifies a null or absent options object
// decodes to a usable empty map.
func TestOptionsNullDecode(t *testing.T) {
	t.Parallel()

	var out Output
	if err := json.Unmarshal([]byte(`{"kind":"file","options":null}`), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Options == nil {
		t.Fatal("null options decoded to nil map")
	}
	if got := out.Options.String("anything", "d"); got != "d" {
		t.Fatalf("empty options String = %q, want default", got)
	}
}
