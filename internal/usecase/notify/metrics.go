package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the alert dispatch pipeline.
var (
	alertDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "occupancy_alert_dispatched_total",
			Help: "Total number of occupancy alerts dispatched",
		},
		[]string{"channel"},
	)

	alertSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "occupancy_alert_sent_total",
			Help: "Total number of occupancy alerts sent",
		},
		[]string{"channel", "status"}, // status: success|failure
	)

	alertDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "occupancy_alert_duration_seconds",
			Help:    "Alert send duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"channel"},
	)

	circuitBreakerOpenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "occupancy_alert_circuit_breaker_open_total",
			Help: "Total number of circuit breaker open events",
		},
		[]string{"channel"},
	)

	alertDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "occupancy_alert_dropped_total",
			Help: "Total number of dropped occupancy alerts",
		},
		[]string{"channel", "reason"}, // reason: pool_full|circuit_open
	)

	activeAlertGoroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "occupancy_alert_active_goroutines",
			Help: "Number of active alert delivery goroutines",
		},
	)

	channelsEnabled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "occupancy_alert_channels_enabled",
			Help: "Number of enabled notification channels",
		},
	)

	alertsDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "occupancy_alerts_detected_total",
			Help: "Total number of occupancy threshold transitions detected",
		},
		[]string{"kind"}, // kind: full|almost_full|available
	)
)

// RecordDispatch records an alert dispatch attempt for a channel.
func RecordDispatch(channel string) {
	alertDispatchedTotal.WithLabelValues(channel).Inc()
}

// RecordSuccess records a successful alert send with its duration.
func RecordSuccess(channel string, duration time.Duration) {
	alertSentTotal.WithLabelValues(channel, "success").Inc()
	alertDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordFailure records a failed alert send with its duration.
func RecordFailure(channel string, duration time.Duration) {
	alertSentTotal.WithLabelValues(channel, "failure").Inc()
	alertDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordDropped records an alert dropped before delivery was attempted.
// Reason is pool_full or circuit_open.
func RecordDropped(channel string, reason string) {
	alertDroppedTotal.WithLabelValues(channel, reason).Inc()
}

// RecordCircuitBreakerOpen records a circuit breaker open event.
func RecordCircuitBreakerOpen(channel string) {
	circuitBreakerOpenTotal.WithLabelValues(channel).Inc()
}

// RecordAlertDetected records one detected occupancy transition.
func RecordAlertDetected(kind string) {
	alertsDetectedTotal.WithLabelValues(kind).Inc()
}

// IncrementActiveGoroutines increments the active goroutines gauge by 1.
func IncrementActiveGoroutines() {
	activeAlertGoroutines.Inc()
}

// DecrementActiveGoroutines decrements the active goroutines gauge by 1.
func DecrementActiveGoroutines() {
	activeAlertGoroutines.Dec()
}

// SetChannelsEnabled sets the number of enabled notification channels.
func SetChannelsEnabled(count float64) {
	channelsEnabled.Set(count)
}
