// Package metrics is a tiny facade between the pipeline and whatever
// metrics system the operator configures. The pipeline only ever calls
// package-level helpers; the process wires a concrete Backend at
// startup (or leaves the nop default in place).
package metrics

import "sync/atomic"

// Labels are free-form metric dimensions (e.g. {"stage": "sample"}).
type Labels map[string]string

// Backend receives metric events. Implementations must be safe for
// concurrent use.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	Flush() error
}

// nopBackend swallows everything. It is the default so that metric
// calls are always safe.
type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

// holder keeps the stored concrete type constant, which atomic.Value
// requires across Stores.
type holder struct{ b Backend }

var backend atomic.Value

func init() {
	backend.Store(holder{nopBackend{}})
}

// SetBackend installs the process-wide backend. Call once at startup.
func SetBackend(b Backend) {
	if b == nil {
		b = nopBackend{}
	}
	backend.Store(holder{b})
}

func current() Backend { return backend.Load().(holder).b }

// IncCounter adds delta to a counter metric.
func IncCounter(name string, delta float64, labels Labels) {
	current().IncCounter(name, delta, labels)
}

// ObserveHistogram records one sample of a distribution metric.
func ObserveHistogram(name string, value float64, labels Labels) {
	current().ObserveHistogram(name, value, labels)
}

// Flush pushes any buffered metrics out through the backend.
func Flush() error { return current().Flush() }

// Metric names emitted by the pipeline. Kept in one place so backends
// can switch on them.
const (
	RowsTotal            = "anonymizer_rows_total"             // labels: kind=read|sampled|anonymized|written
	CellsReplacedTotal   = "anonymizer_cells_replaced_total"   // labels: column
	StageDurationSeconds = "anonymizer_stage_duration_seconds" // labels: stage, status
)
