package notifier

import (
	"context"

	"gentcache/internal/domain/entity"
)

// NoOpNotifier is a no-operation implementation of the Notifier interface,
// used when notifications are disabled to avoid nil checks.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new NoOpNotifier instance.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// NotifyOccupancy does nothing and returns nil immediately.
func (n *NoOpNotifier) NotifyOccupancy(ctx context.Context, alert *entity.OccupancyAlert) error {
	return nil
}
