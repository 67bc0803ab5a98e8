// Package observability exposes Prometheus metrics for the derived-state
// engines. Failures here are the interesting signal: the engines swallow
// errors by design, so the counters are how operators notice lag.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	RecomputeRuns     *prometheus.CounterVec
	RecomputeDuration prometheus.Histogram

	SliceRefreshes      *prometheus.CounterVec
	SliceRefreshSeconds prometheus.Histogram

	SwallowedFailures *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RecomputeRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_recompute_runs_total",
			Help: "Running-balance recompute runs by outcome.",
		}, []string{"outcome"}),
		RecomputeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_recompute_duration_seconds",
			Help:    "Duration of the reload-sort-rewrite cycle.",
			Buckets: prometheus.DefBuckets,
		}),
		SliceRefreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_slice_refreshes_total",
			Help: "Month-slice refresh jobs by outcome.",
		}, []string{"outcome"}),
		SliceRefreshSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "booking_slice_refresh_duration_seconds",
			Help:    "Duration of a single booking's slice refresh.",
			Buckets: prometheus.DefBuckets,
		}),
		SwallowedFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "derived_state_swallowed_failures_total",
			Help: "Derived-state errors logged and swallowed, by subsystem.",
		}, []string{"subsystem"}),
	}
}

// Handler serves the /metrics endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
