package worker

import (
	"fmt"
	"log/slog"
	"time"

	"gentcache/internal/pkg/config"
)

// WorkerConfig holds the configuration for the refresh worker. All fields
// have defaults and validation rules so the worker can start even with a
// broken environment.
type WorkerConfig struct {
	// RefreshSchedule is the cron expression driving periodic refreshes.
	// Format: "minute hour day month weekday".
	// Default: "*/10 * * * *" (every 10 minutes)
	RefreshSchedule string

	// Timezone is the IANA timezone name used by the cron scheduler.
	// Default: "Europe/Brussels"
	Timezone string

	// NotifyMaxConcurrent bounds concurrent notification deliveries.
	// Range: 1-50. Default: 10
	NotifyMaxConcurrent int

	// RefreshTimeout is the deadline for one full refresh run across all
	// collections. Default: 5 minutes
	RefreshTimeout time.Duration

	// HealthPort is the port for the health check HTTP server.
	// Range: 1024-65535. Default: 9091
	HealthPort int
}

// DefaultConfig returns the production defaults: a 10-minute refresh
// cadence in the timezone of the data source, a 5-minute run deadline and
// the usual exporter-adjacent health port.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		RefreshSchedule:     "*/10 * * * *",
		Timezone:            "Europe/Brussels",
		NotifyMaxConcurrent: 10,
		RefreshTimeout:      5 * time.Minute,
		HealthPort:          9091,
	}
}

// Validate checks every field and aggregates all failures into one error.
func (c *WorkerConfig) Validate() error {
	var errors []error

	if err := config.ValidateCronSchedule(c.RefreshSchedule); err != nil {
		errors = append(errors, fmt.Errorf("refresh schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errors = append(errors, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateIntRange(c.NotifyMaxConcurrent, 1, 50); err != nil {
		errors = append(errors, fmt.Errorf("notify max concurrent: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.RefreshTimeout); err != nil {
		errors = append(errors, fmt.Errorf("refresh timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errors = append(errors, fmt.Errorf("health port: %w", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}
	return nil
}

// LoadConfigFromEnv loads worker configuration from the environment with a
// fail-open strategy: every invalid value falls back to its default with a
// warning and a metrics increment, and the returned configuration is
// always valid.
//
// Environment variables:
//   - REFRESH_SCHEDULE: cron expression (default: "*/10 * * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default: "Europe/Brussels")
//   - NOTIFY_MAX_CONCURRENT: integer 1-50 (default: 10)
//   - REFRESH_TIMEOUT: duration string 30s-1h (default: "5m")
//   - WORKER_HEALTH_PORT: integer 1024-65535 (default: 9091)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	result := config.LoadEnvWithFallback("REFRESH_SCHEDULE", cfg.RefreshSchedule, config.ValidateCronSchedule)
	cfg.RefreshSchedule = result.Value.(string)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("refresh_schedule")
		metrics.RecordFallback("refresh_schedule", "default")
		logFallback(logger, "RefreshSchedule", result.Warnings)
	}

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("timezone")
		metrics.RecordFallback("timezone", "default")
		logFallback(logger, "Timezone", result.Warnings)
	}

	result = config.LoadEnvInt("NOTIFY_MAX_CONCURRENT", cfg.NotifyMaxConcurrent, func(v int) error {
		return config.ValidateIntRange(v, 1, 50)
	})
	cfg.NotifyMaxConcurrent = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("notify_max_concurrent")
		metrics.RecordFallback("notify_max_concurrent", "default")
		logFallback(logger, "NotifyMaxConcurrent", result.Warnings)
	}

	result = config.LoadEnvDuration("REFRESH_TIMEOUT", cfg.RefreshTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 30*time.Second, time.Hour)
	})
	cfg.RefreshTimeout = result.Value.(time.Duration)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("refresh_timeout")
		metrics.RecordFallback("refresh_timeout", "default")
		logFallback(logger, "RefreshTimeout", result.Warnings)
	}

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("health_port")
		metrics.RecordFallback("health_port", "default")
		logFallback(logger, "HealthPort", result.Warnings)
	}

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}

func logFallback(logger *slog.Logger, field string, warnings []string) {
	for _, warning := range warnings {
		logger.Warn("configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", warning))
	}
}
