package config

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Severity classifies a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding with a dotted path into the job
// document.
type Issue struct {
	Severity Severity
	Path     string
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Path, i.Message)
}

// Validate checks a job for problems that can be caught without opening
// the input file. It returns all findings rather than stopping at the
// first, so an operator can fix a job file in one pass.
func Validate(j Job) []Issue {
	var issues []Issue
	errf := func(path, format string, a ...any) {
		issues = append(issues, Issue{SeverityError, path, fmt.Sprintf(format, a...)})
	}
	warnf := func(path, format string, a ...any) {
		issues = append(issues, Issue{SeverityWarning, path, fmt.Sprintf(format, a...)})
	}

	if strings.TrimSpace(j.Input.Path) == "" {
		errf("input.path", "input path is required")
	}
	if d := j.Input.Delimiter; d != "" && utf8.RuneCountInString(d) != 1 {
		errf("input.delimiter", "delimiter must be a single character, got %q", d)
	}

	switch {
	case j.Sample.Rows == nil && j.Sample.Fraction == nil:
		errf("sample", "one of sample.rows or sample.fraction is required")
	case j.Sample.Rows != nil && j.Sample.Fraction != nil:
		errf("sample", "sample.rows and sample.fraction are mutually exclusive")
	case j.Sample.Rows != nil && *j.Sample.Rows < 0:
		errf("sample.rows", "must be >= 0, got %d", *j.Sample.Rows)
	case j.Sample.Fraction != nil && (*j.Sample.Fraction <= 0 || *j.Sample.Fraction > 1):
		errf("sample.fraction", "must be in (0,1], got %v", *j.Sample.Fraction)
	}

	seen := make(map[string]struct{}, len(j.Anonymize.Columns))
	for i, c := range j.Anonymize.Columns {
		if strings.TrimSpace(c) == "" {
			errf(fmt.Sprintf("anonymize.columns[%d]", i), "column name is empty")
			continue
		}
		if _, dup := seen[c]; dup {
			warnf(fmt.Sprintf("anonymize.columns[%d]", i), "column %q listed twice", c)
		}
		seen[c] = struct{}{}
	}
	if len(j.Anonymize.Columns) == 0 {
		warnf("anonymize.columns", "no sensitive columns declared; output is sampled but not anonymized")
	}

	if len(j.Sample.KeepColumns) > 0 {
		kept := make(map[string]struct{}, len(j.Sample.KeepColumns))
		for _, c := range j.Sample.KeepColumns {
			kept[c] = struct{}{}
		}
		for i, c := range j.Anonymize.Columns {
			if strings.TrimSpace(c) == "" {
				continue
			}
			if _, ok := kept[c]; !ok {
				errf(fmt.Sprintf("anonymize.columns[%d]", i),
					"column %q is anonymized but not in sample.keep_columns", c)
			}
		}
	}

	kind := j.Output.Kind
	if kind == "" {
		kind = "file"
	}
	switch kind {
	case "file":
		if strings.TrimSpace(j.Output.Path) == "" {
			errf("output.path", "output path is required for the file sink")
		}
		if d := j.Output.Delimiter; d != "" && utf8.RuneCountInString(d) != 1 {
			errf("output.delimiter", "delimiter must be a single character, got %q", d)
		}
	case "sqlite", "postgres", "mssql":
		if strings.TrimSpace(j.Output.DSN) == "" {
			errf("output.dsn", "dsn is required for the %s sink", kind)
		}
		if strings.TrimSpace(j.Output.Table) == "" {
			errf("output.table", "table is required for the %s sink", kind)
		}
	default:
		errf("output.kind", "unknown sink kind %q", kind)
	}

	return issues
}

// HasError reports whether any issue is of error severity.
func HasError(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
