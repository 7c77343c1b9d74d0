package notify

import (
	"context"

	"gentcache/internal/domain/entity"
	"gentcache/internal/infra/notifier"
)

// SlackChannel adapts the webhook notifier to the Channel interface.
type SlackChannel struct {
	notifier notifier.Notifier
	enabled  bool
}

// NewSlackChannel creates a channel backed by a Slack-compatible webhook.
// A disabled channel carries a no-op notifier so callers never need nil
// checks.
func NewSlackChannel(config notifier.SlackConfig) *SlackChannel {
	if !config.Enabled {
		return &SlackChannel{
			notifier: notifier.NewNoOpNotifier(),
			enabled:  false,
		}
	}
	return &SlackChannel{
		notifier: notifier.NewSlackNotifier(config),
		enabled:  true,
	}
}

// Name implements Channel.Name.
func (c *SlackChannel) Name() string {
	return "Slack"
}

// IsEnabled implements Channel.IsEnabled.
func (c *SlackChannel) IsEnabled() bool {
	return c.enabled
}

// Send implements Channel.Send.
func (c *SlackChannel) Send(ctx context.Context, alert *entity.OccupancyAlert) error {
	return c.notifier.NotifyOccupancy(ctx, alert)
}
