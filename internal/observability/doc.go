// Package observability centralizes logging and metrics infrastructure.
//
// Subpackages:
//   - logging: structured logging utilities with slog
//   - metrics: Prometheus metrics registry and recorders
//
// Example usage:
//
//	import (
//	    "gentcache/internal/observability/logging"
//	    "gentcache/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started")
//
//	    metrics.RecordRecordsFetched("carparks", 20)
//	}
package observability
