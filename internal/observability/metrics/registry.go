// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

)

// Cache metrics track refresh cycles against the open-data portal and the
// state of the local store.
var (
	// CachedRecordsTotal tracks the number of rows cached per collection
	CachedRecordsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cached_records_total",
			Help: "Number of records currently cached per collection",
		},
		[]string{"collection"},
	)

	// RefreshTotal counts refresh cycles per collection by outcome
	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_refresh_total",
			Help: "Total number of cache refresh cycles",
		},
		[]string{"collection", "status"},
	)

	// RefreshDuration measures the duration of a full refresh cycle
	RefreshDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_refresh_duration_seconds",
			Help:    "Time taken to fetch and store one collection",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"collection"},
	)

	// RecordsFetchedTotal counts records fetched from the portal
	RecordsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_fetched_total",
			Help: "Total number of records fetched from the open-data portal",
		},
		[]string{"collection"},
	)

	// RefreshTriggersTotal counts what started each refresh
	RefreshTriggersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_refresh_triggers_total",
			Help: "Total number of refresh triggers by origin",
		},
		[]string{"collection", "trigger"}, // trigger: empty_cache, scheduled, manual
	)
)

// Content enrichment metrics track read-more page fetches for articles.
var (
	// ContentFetchAttemptsTotal counts content fetch attempts by result
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Total number of article content fetch attempts",
		},
		[]string{"result"}, // result: success, failure, skipped
	)

	// ContentFetchDuration measures time to fetch an article page
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Time taken to fetch an article page",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)
)

// Database metrics track local store performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
