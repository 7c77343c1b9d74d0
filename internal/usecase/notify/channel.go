// Package notify dispatches car park occupancy alerts to notification
// channels. It fans out alerts asynchronously with a bounded worker pool
// and a per-channel circuit breaker, so a slow or failing webhook never
// blocks the refresh cycle that produced the alert.
package notify

import (
	"context"

	"gentcache/internal/domain/entity"
)

// Channel represents a single notification delivery target.
type Channel interface {
	// Name returns the channel name used in logs and metrics.
	Name() string

	// IsEnabled reports whether the channel should receive alerts.
	IsEnabled() bool

	// Send delivers one occupancy alert. Implementations handle their own
	// retries and rate limiting.
	Send(ctx context.Context, alert *entity.OccupancyAlert) error
}
