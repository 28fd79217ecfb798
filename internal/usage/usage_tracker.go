// Package usage accounts for the work done by tools and pipelines. Counters
// are kept in memory for reporting and mirrored into Prometheus collectors
// registered on a caller-supplied registry.
package usage

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"shapeshift/internal/logging"
)

type contextKey struct{}

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "shapeshift"

// Tracker records usage events. It is safe for concurrent use.
type Tracker struct {
	mu   sync.Mutex
	data AggregatedStats

	calls       *prometheus.CounterVec
	operations  *prometheus.CounterVec
	typeChecks  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	pipelines   *prometheus.CounterVec
	pipelineDur prometheus.Histogram
}

// NewTracker creates a tracker whose collectors are registered on reg. A
// nil reg keeps the collectors unregistered, which is what one-shot CLI
// runs and most tests want.
func NewTracker(reg prometheus.Registerer, namespace string) *Tracker {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Tracker{
		data: AggregatedStats{ByOperation: make(map[string]Counts)},
		calls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calls_total",
				Help:      "Total number of tool calls and pipeline steps",
			},
			[]string{"operation", "result"},
		),
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of structural operations performed",
			},
			[]string{"operation"},
		),
		typeChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "type_checks_total",
				Help:      "Total number of value type checks performed",
			},
			[]string{"operation"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of tool calls and pipeline steps in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"operation"},
		),
		pipelines: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "runs_total",
				Help:      "Total number of pipeline runs",
			},
			[]string{"result"},
		),
		pipelineDur: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "run_duration_seconds",
				Help:      "Duration of pipeline runs in seconds",
				Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
			},
		),
	}
}

// Track records a completed tool call or pipeline step.
func (t *Tracker) Track(e Event) {
	if t == nil {
		return
	}

	t.mu.Lock()
	t.data.Total.Add(e)
	counts := t.data.ByOperation[e.Operation]
	counts.Add(e)
	t.data.ByOperation[e.Operation] = counts
	t.mu.Unlock()

	t.calls.WithLabelValues(e.Operation, resultLabel(e.Success)).Inc()
	t.operations.WithLabelValues(e.Operation).Add(float64(e.Operations))
	t.typeChecks.WithLabelValues(e.Operation).Add(float64(e.TypeChecks))
	t.duration.WithLabelValues(e.Operation).Observe(e.Duration.Seconds())

	logging.UsageDebug("tracked %s (success=%v, ops=%d, checks=%d, took=%s)",
		e.Operation, e.Success, e.Operations, e.TypeChecks, e.Duration)
}

// TrackPipeline records a finished pipeline run.
func (t *Tracker) TrackPipeline(e Event) {
	if t == nil {
		return
	}

	t.mu.Lock()
	t.data.PipelineRuns.Add(e)
	t.mu.Unlock()

	t.pipelines.WithLabelValues(resultLabel(e.Success)).Inc()
	t.pipelineDur.Observe(e.Duration.Seconds())
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// Stats returns a copy of the aggregated stats.
func (t *Tracker) Stats() AggregatedStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	stats := t.data
	stats.ByOperation = make(map[string]Counts, len(t.data.ByOperation))
	for key, counts := range t.data.ByOperation {
		stats.ByOperation[key] = counts
	}
	return stats
}

// Context Helpers

// NewContext returns a new context carrying the tracker.
func NewContext(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext retrieves the tracker from the context. It returns nil when
// none is attached; a nil *Tracker ignores every call.
func FromContext(ctx context.Context) *Tracker {
	t, _ := ctx.Value(contextKey{}).(*Tracker)
	return t
}
