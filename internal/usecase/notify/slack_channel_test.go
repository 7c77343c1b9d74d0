package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gentcache/internal/domain/entity"
	"gentcache/internal/infra/notifier"
)

func TestNewSlackChannel(t *testing.T) {
	t.Parallel()

	t.Run("disabled config yields disabled channel", func(t *testing.T) {
		t.Parallel()

		ch := NewSlackChannel(notifier.SlackConfig{Enabled: false})
		assert.Equal(t, "Slack", ch.Name())
		assert.False(t, ch.IsEnabled())

		// The no-op notifier backs a disabled channel, so Send is safe.
		err := ch.Send(context.Background(), &entity.OccupancyAlert{
			Kind:       entity.OccupancyFull,
			Park:       &entity.CarPark{Name: "Vrijdagmarkt"},
			ObservedAt: time.Now(),
		})
		assert.NoError(t, err)
	})

	t.Run("enabled config yields enabled channel", func(t *testing.T) {
		t.Parallel()

		ch := NewSlackChannel(notifier.SlackConfig{
			Enabled:    true,
			WebhookURL: "https://hooks.slack.com/services/T000/B000/XXX",
			Timeout:    5 * time.Second,
		})
		assert.True(t, ch.IsEnabled())
	})
}
