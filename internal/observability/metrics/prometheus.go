// Package metrics provides Prometheus metrics for the print pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all pipeline metrics.
type Metrics struct {
	GridsRendered     prometheus.Counter
	RowsRendered      prometheus.Counter
	RenderFailures    prometheus.Counter
	RenderDuration    prometheus.Histogram
	SnapshotsStored   prometheus.Counter
	EventsPublished   prometheus.Counter
	RequestsConsumed  prometheus.Counter
	DuplicateRequests prometheus.Counter
	OutboxPending     prometheus.Gauge
	BreakerState      *prometheus.GaugeVec
}

// New creates and registers all metrics.
func New() *Metrics {
	m := &Metrics{
		GridsRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grids_rendered_total",
			Help: "Total administration grids rendered",
		}),
		RowsRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grid_rows_rendered_total",
			Help: "Total item rows rendered across all grids",
		}),
		RenderFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grid_render_failures_total",
			Help: "Total failed grid renders",
		}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "grid_render_duration_seconds",
			Help:    "Grid render duration",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5},
		}),
		SnapshotsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grid_snapshots_stored_total",
			Help: "Total rendered snapshots persisted",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "snapshot_events_published_total",
			Help: "Total snapshot events published to the broker",
		}),
		RequestsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "print_requests_consumed_total",
			Help: "Total print requests consumed",
		}),
		DuplicateRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "print_requests_duplicate_total",
			Help: "Print requests skipped as duplicates",
		}),
		OutboxPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "outbox_pending_entries",
			Help: "Outbox entries awaiting publication",
		}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		}, []string{"name"}),
	}

	prometheus.MustRegister(
		m.GridsRendered,
		m.RowsRendered,
		m.RenderFailures,
		m.RenderDuration,
		m.SnapshotsStored,
		m.EventsPublished,
		m.RequestsConsumed,
		m.DuplicateRequests,
		m.OutboxPending,
		m.BreakerState,
	)

	return m
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
