// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count)
//   - Cache metrics (refresh cycles, cached rows, triggers)
//   - Content enrichment and notification metrics
//   - Database query metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "gentcache/internal/observability/metrics"
//
//	func refreshCarParks(ctx context.Context) {
//	    start := time.Now()
//	    err := cache.Refresh(ctx)
//	    metrics.RecordRefresh("carparks", time.Since(start), err)
//	}
package metrics
