// Package pipeline orchestrates one sample-and-anonymize run:
//
//	load -> sample -> anonymize -> write
//
// Stages run strictly in sequence; any failure aborts before the next
// stage and before the sink sees a single row, so output is atomic with
// respect to failure. The orchestrator owns the dataset end to end and
// the single random generator threaded into sampling and synthesis.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"csvanon/internal/anonymize"
	"csvanon/internal/config"
	"csvanon/internal/csvio"
	"csvanon/internal/metrics"
	"csvanon/internal/sample"
	"csvanon/internal/sink"
	"csvanon/internal/table"
)

// Run executes a validated job. The caller is expected to have passed
// the job through config.Validate first; Run still re-checks everything
// it relies on, because stage code must not trust the CLI layer.
func Run(ctx context.Context, job config.Job, verbose bool) error {
	issues := config.Validate(job)
	for _, iss := range issues {
		if iss.Severity == config.SeverityError {
			return &SpecError{Err: errors.New(iss.String())}
		}
	}

	rng := newRand(job.Seed)

	// Load.
	start := time.Now()
	t, err := csvio.ReadTable(job.Input.Path, csvio.ReadOptions{
		Encoding:  job.Input.Encoding,
		Delimiter: firstRune(job.Input.Delimiter),
		HasHeader: !job.Input.NoHeader,
	})
	if err != nil {
		observeStage("load", start, err)
		return &InputError{Err: err}
	}
	observeStage("load", start, nil)
	metrics.IncCounter(metrics.RowsTotal, float64(len(t.Rows)), metrics.Labels{"kind": "read"})
	if verbose {
		log.Printf("loaded %s: %d rows, %d columns", job.Input.Path, len(t.Rows), len(t.Header))
	}

	// Resolve every declared column against the header before any
	// transformation, so bad names fail with nothing written.
	if err := checkColumns(t, job.Anonymize.Columns); err != nil {
		return &SpecError{Err: err}
	}
	if err := checkColumns(t, job.Sample.KeepColumns); err != nil {
		return &SpecError{Err: err}
	}
	if err := checkSensitiveKept(job.Anonymize.Columns, job.Sample.KeepColumns); err != nil {
		return &SpecError{Err: err}
	}

	// Sample.
	start = time.Now()
	sampled, err := sample.Sample(t, sample.Spec{
		RowCount:    job.Sample.Rows,
		RowFraction: job.Sample.Fraction,
		KeepColumns: job.Sample.KeepColumns,
	}, rng)
	if err != nil {
		observeStage("sample", start, err)
		return &SpecError{Err: err}
	}
	observeStage("sample", start, nil)
	metrics.IncCounter(metrics.RowsTotal, float64(len(sampled.Rows)), metrics.Labels{"kind": "sampled"})
	if verbose {
		log.Printf("sampled %d of %d rows", len(sampled.Rows), len(t.Rows))
	}

	// Anonymize.
	start = time.Now()
	anon, err := anonymize.Anonymize(sampled, job.Anonymize.Columns, rng)
	if err != nil {
		observeStage("anonymize", start, err)
		return &SynthesisError{Err: err}
	}
	observeStage("anonymize", start, nil)
	metrics.IncCounter(metrics.RowsTotal, float64(len(anon.Rows)), metrics.Labels{"kind": "anonymized"})
	for _, col := range job.Anonymize.Columns {
		metrics.IncCounter(metrics.CellsReplacedTotal, float64(len(anon.Rows)), metrics.Labels{"column": col})
	}

	// Write.
	start = time.Now()
	dst, err := sink.New(ctx, sink.Config{
		Kind:      job.Output.Kind,
		Path:      job.Output.Path,
		Encoding:  job.Output.Encoding,
		Delimiter: firstRune(job.Output.Delimiter),
		DSN:       job.Output.DSN,
		Table:     job.Output.Table,
		Options:   job.Output.Options,
	})
	if err != nil {
		observeStage("write", start, err)
		return &OutputError{Err: err}
	}
	defer func() { _ = dst.Close() }()

	if err := dst.Write(ctx, anon); err != nil {
		observeStage("write", start, err)
		return &OutputError{Err: err}
	}
	observeStage("write", start, nil)
	metrics.IncCounter(metrics.RowsTotal, float64(len(anon.Rows)), metrics.Labels{"kind": "written"})
	if verbose {
		log.Printf("wrote %d rows", len(anon.Rows))
	}
	return nil
}

// newRand builds the run's single generator. A nil seed means each run
// differs; a fixed seed reproduces the run bit for bit.
func newRand(seed *int64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewSource(*seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// checkSensitiveKept rejects a sensitive column that the keep list
// would drop; otherwise the mistake would only surface after sampling.
func checkSensitiveKept(sensitive, keep []string) error {
	if len(keep) == 0 {
		return nil
	}
	kept := make(map[string]struct{}, len(keep))
	for _, c := range keep {
		kept[c] = struct{}{}
	}
	for _, c := range sensitive {
		if _, ok := kept[c]; !ok {
			return fmt.Errorf("column %q is anonymized but not kept", c)
		}
	}
	return nil
}

func checkColumns(t table.Table, names []string) error {
	for _, n := range names {
		if _, ok := t.ColumnIndex(n); !ok {
			return fmt.Errorf("column %q not found in input (have: %s)", n, strings.Join(t.Header, ", "))
		}
	}
	return nil
}

func firstRune(s string) rune {
	if s == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func observeStage(stage string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ObserveHistogram(metrics.StageDurationSeconds, time.Since(start).Seconds(),
		metrics.Labels{"stage": stage, "status": status})
}
