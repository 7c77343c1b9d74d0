// Package notifier provides webhook delivery of car park occupancy alerts.
// It defines the Notifier interface which allows different delivery
// mechanisms (Slack-compatible webhooks, no-op) to be used interchangeably
// through dependency injection.
package notifier

import (
	"context"

	"gentcache/internal/domain/entity"
)

// Notifier sends occupancy alerts. Implementations handle rate limiting,
// retries and error logging internally.
type Notifier interface {
	// NotifyOccupancy sends a notification about a car park crossing an
	// occupancy threshold. Returns a non-nil error only after all retry
	// attempts failed.
	NotifyOccupancy(ctx context.Context, alert *entity.OccupancyAlert) error
}
