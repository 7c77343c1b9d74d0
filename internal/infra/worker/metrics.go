package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"gentcache/internal/pkg/config"
)

// WorkerMetrics provides Prometheus metrics for the refresh worker. It
// embeds the shared ConfigMetrics for fallback tracking and adds counters
// for the scheduled refresh runs.
type WorkerMetrics struct {
	*config.ConfigMetrics

	// RefreshRunsTotal counts scheduled refresh runs by status
	// (success/failure).
	RefreshRunsTotal *prometheus.CounterVec

	// RefreshRunDurationSeconds measures the duration of one full run
	// across all collections.
	RefreshRunDurationSeconds prometheus.Histogram

	// RefreshCollectionsTotal counts collections refreshed across all
	// runs.
	RefreshCollectionsTotal prometheus.Counter

	// RefreshLastSuccessTimestamp records the Unix timestamp of the last
	// fully successful run.
	RefreshLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates the worker metrics. Registration happens via
// promauto on creation.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		RefreshRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_refresh_runs_total",
			Help: "Total number of scheduled refresh runs by status (success/failure)",
		}, []string{"status"}),

		RefreshRunDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_refresh_run_duration_seconds",
			Help:    "Duration of one scheduled refresh run in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		}),

		RefreshCollectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_refresh_collections_total",
			Help: "Total number of collections refreshed across all runs",
		}),

		RefreshLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_refresh_last_success_timestamp",
			Help: "Unix timestamp of the last fully successful refresh run",
		}),
	}
}

// MustRegister is a no-op kept for the conventional init sequence; the
// metrics register themselves via promauto.
func (m *WorkerMetrics) MustRegister() {}

// RecordRunResult increments the run counter with "success" or "failure".
func (m *WorkerMetrics) RecordRunResult(status string) {
	m.RefreshRunsTotal.WithLabelValues(status).Inc()
}

// RecordRunDuration observes the duration of one refresh run in seconds.
func (m *WorkerMetrics) RecordRunDuration(seconds float64) {
	m.RefreshRunDurationSeconds.Observe(seconds)
}

// RecordCollectionsRefreshed adds the number of collections refreshed in
// this run.
func (m *WorkerMetrics) RecordCollectionsRefreshed(count int) {
	m.RefreshCollectionsTotal.Add(float64(count))
}

// RecordLastSuccess marks the current time as the last successful run.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.RefreshLastSuccessTimestamp.SetToCurrentTime()
}
