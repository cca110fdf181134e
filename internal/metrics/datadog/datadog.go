// Package datadog implements a Datadog backend for internal/metrics.
//
// Metrics are buffered in memory and submitted on Flush: a background
// ticker flushes periodically during long runs, and Close performs one
// final flush at shutdown. Anonymization runs are usually short, so the
// final flush is the one that matters; the periodic loop exists so that
// very large datasets still produce a time series.
package datadog

import (
	"context"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	dd "github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"

	"csvanon/internal/metrics"
)

// Options configure the backend.
type Options struct {
	// JobName becomes tag "job:<name>" on every metric. Defaults to
	// "csvanon".
	JobName string

	// Tags are extra Datadog tags (e.g. []string{"env:ci"}).
	Tags []string

	// FlushEvery controls the periodic flush interval. <= 0 means 60s.
	FlushEvery time.Duration

	// Unexported test seams; production never sets these.
	now       func() time.Time
	submitter metricsSubmitter
}

// metricsSubmitter is the minimal slice of the Datadog SDK the backend
// needs. It exists so tests can stub submission without real HTTP.
type metricsSubmitter interface {
	SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error)
}

// Backend implements metrics.Backend for Datadog.
type Backend struct {
	api      metricsSubmitter
	ctx      context.Context
	baseTags []string
	now      func() time.Time

	flushEvery time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}

	mu         sync.Mutex
	rowCounts  map[string]float64   // kind -> rows
	cellCounts map[string]float64   // column -> cells replaced
	stageDur   map[string][]float64 // stage\x00status -> seconds
}

// NewBackend constructs the backend and starts its flush loop.
// Credentials come from the environment (DD_API_KEY etc.), as the
// official client expects.
func NewBackend(parent context.Context, opts Options) (*Backend, error) {
	job := opts.JobName
	if job == "" {
		job = "csvanon"
	}
	flushEvery := opts.FlushEvery
	if flushEvery <= 0 {
		flushEvery = 60 * time.Second
	}

	baseTags := make([]string, 0, 2+len(opts.Tags))
	baseTags = append(baseTags, resolveEnvTag(), "job:"+job)
	baseTags = append(baseTags, opts.Tags...)

	nowFn := opts.now
	if nowFn == nil {
		nowFn = time.Now
	}
	submitter := opts.submitter
	if submitter == nil {
		client := dd.NewAPIClient(dd.NewConfiguration())
		submitter = datadogV2.NewMetricsApi(client)
	}

	b := &Backend{
		api:        submitter,
		ctx:        dd.NewDefaultContext(parent),
		baseTags:   baseTags,
		now:        nowFn,
		flushEvery: flushEvery,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
		rowCounts:  make(map[string]float64),
		cellCounts: make(map[string]float64),
		stageDur:   make(map[string][]float64),
	}
	go b.loop()
	return b, nil
}

func resolveEnvTag() string {
	if v := strings.TrimSpace(os.Getenv("ENV")); v != "" {
		return "env:" + v
	}
	if v := strings.TrimSpace(os.Getenv("DD_ENV")); v != "" {
		return "env:" + v
	}
	return "env:unknown"
}

func (b *Backend) loop() {
	defer close(b.doneCh)
	t := time.NewTicker(b.flushEvery)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			_ = b.Flush()
		case <-b.stopCh:
			return
		}
	}
}

// Close stops the flush loop and performs one final Flush. Close once.
func (b *Backend) Close() error {
	close(b.stopCh)
	<-b.doneCh
	return b.Flush()
}

// IncCounter implements metrics.Backend. Unknown metric names are
// ignored.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if delta <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch name {
	case metrics.RowsTotal:
		kind := labels["kind"]
		if kind == "" {
			return
		}
		b.rowCounts[kind] += delta
	case metrics.CellsReplacedTotal:
		col := labels["column"]
		if col == "" {
			col = "unknown"
		}
		b.cellCounts[col] += delta
	}
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if value < 0 || name != metrics.StageDurationSeconds {
		return
	}
	k := labels["stage"] + "\x00" + labels["status"]
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stageDur[k] = append(b.stageDur[k], value)
}

type snapshot struct {
	rowCounts  map[string]float64
	cellCounts map[string]float64
	stageDur   map[string][]float64
}

func (s snapshot) isEmpty() bool {
	return len(s.rowCounts) == 0 && len(s.cellCounts) == 0 && len(s.stageDur) == 0
}

// snapshotAndReset detaches the buffered state under the lock so the
// network submission can happen outside it.
func (b *Backend) snapshotAndReset() snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := snapshot{rowCounts: b.rowCounts, cellCounts: b.cellCounts, stageDur: b.stageDur}
	b.rowCounts = make(map[string]float64)
	b.cellCounts = make(map[string]float64)
	b.stageDur = make(map[string][]float64)
	return s
}

// Flush submits buffered metrics and resets the buffers. Buffers are
// reset even when submission fails; delivery is best-effort.
func (b *Backend) Flush() error {
	snap := b.snapshotAndReset()
	if snap.isEmpty() {
		return nil
	}
	payload := datadogV2.MetricPayload{Series: b.buildSeries(snap, b.now().Unix())}
	_, _, err := b.api.SubmitMetrics(b.ctx, payload, *datadogV2.NewSubmitMetricsOptionalParameters())
	return err
}

// buildSeries is pure: no locks, clocks, or network. It defines the
// metric naming and tagging contract.
func (b *Backend) buildSeries(s snapshot, nowUnix int64) []datadogV2.MetricSeries {
	series := make([]datadogV2.MetricSeries, 0, len(s.rowCounts)+len(s.cellCounts)+4*len(s.stageDur))

	for kind, v := range s.rowCounts {
		if v == 0 {
			continue
		}
		series = append(series, countSeries("csvanon.rows.total", v,
			withTags(b.baseTags, "kind:"+kind), nowUnix))
	}
	for col, v := range s.cellCounts {
		if v == 0 {
			continue
		}
		series = append(series, countSeries("csvanon.cells_replaced.total", v,
			withTags(b.baseTags, "column:"+col), nowUnix))
	}
	for k, samples := range s.stageDur {
		if len(samples) == 0 {
			continue
		}
		cp := append([]float64(nil), samples...)
		sort.Float64s(cp)
		stage, status := splitKey(k)
		tags := withTags(b.baseTags, "stage:"+stage, "status:"+status)
		series = append(series,
			gaugeSeries("csvanon.stage.duration_seconds.p50", percentileNearestRank(cp, 0.50), tags, nowUnix),
			gaugeSeries("csvanon.stage.duration_seconds.p95", percentileNearestRank(cp, 0.95), tags, nowUnix),
			gaugeSeries("csvanon.stage.duration_seconds.max", cp[len(cp)-1], tags, nowUnix),
			gaugeSeries("csvanon.stage.duration_seconds.samples", float64(len(cp)), tags, nowUnix),
		)
	}
	return series
}

func countSeries(metric string, value float64, tags []string, nowUnix int64) datadogV2.MetricSeries {
	return datadogV2.MetricSeries{
		Metric: metric,
		Type:   datadogV2.METRICINTAKETYPE_COUNT.Ptr(),
		Points: []datadogV2.MetricPoint{
			{Timestamp: dd.PtrInt64(nowUnix), Value: dd.PtrFloat64(value)},
		},
		Tags: tags,
	}
}

func gaugeSeries(metric string, value float64, tags []string, nowUnix int64) datadogV2.MetricSeries {
	return datadogV2.MetricSeries{
		Metric: metric,
		Type:   datadogV2.METRICINTAKETYPE_GAUGE.Ptr(),
		Points: []datadogV2.MetricPoint{
			{Timestamp: dd.PtrInt64(nowUnix), Value: dd.PtrFloat64(value)},
		},
		Tags: tags,
	}
}

func splitKey(k string) (stage, status string) {
	parts := strings.SplitN(k, "\x00", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return k, "unknown"
}

func withTags(base []string, extras ...string) []string {
	out := make([]string, 0, len(base)+len(extras))
	out = append(out, base...)
	out = append(out, extras...)
	return out
}

func percentileNearestRank(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(p*float64(n-1) + 0.5)
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return sorted[idx]
}

var _ metrics.Backend = (*Backend)(nil)

// ParseTagsCSV parses comma-separated tags like "env:ci,team:data".
func ParseTagsCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
