package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gentcache/internal/domain/entity"
)

func testAlert(kind entity.OccupancyAlertKind, available int) *entity.OccupancyAlert {
	return &entity.OccupancyAlert{
		Kind: kind,
		Park: &entity.CarPark{
			Name:              "Vrijdagmarkt",
			TotalCapacity:     595,
			AvailableCapacity: available,
			Operator:          "Mobiliteitsbedrijf Gent",
			IsOpenNow:         true,
		},
		ObservedAt: time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC),
	}
}

func TestSlackNotifier_NotifyOccupancy_SendsBlockKitPayload(t *testing.T) {
	t.Parallel()

	var payload SlackWebhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &payload))

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewSlackNotifier(SlackConfig{
		Enabled:    true,
		WebhookURL: server.URL,
		Timeout:    5 * time.Second,
	})

	err := notifier.NotifyOccupancy(context.Background(), testAlert(entity.OccupancyAlmostFull, 7))
	require.NoError(t, err)

	require.Len(t, payload.Blocks, 2)

	assert.Equal(t, "section", payload.Blocks[0].Type)
	require.NotNil(t, payload.Blocks[0].Text)
	assert.Contains(t, payload.Blocks[0].Text.Text, "Vrijdagmarkt")
	assert.Contains(t, payload.Blocks[0].Text.Text, "bijna vol")
	assert.Contains(t, payload.Blocks[0].Text.Text, "588/595")

	assert.Equal(t, "context", payload.Blocks[1].Type)
	require.Len(t, payload.Blocks[1].Elements, 1)
	assert.Contains(t, payload.Blocks[1].Elements[0].Text, "Mobiliteitsbedrijf Gent")
	assert.Contains(t, payload.Blocks[1].Elements[0].Text, "2024-03-15T09:30:00Z")

	assert.Contains(t, payload.Text, "Vrijdagmarkt")
}

func TestSlackNotifier_NotifyOccupancy_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewSlackNotifier(SlackConfig{
		Enabled:    true,
		WebhookURL: server.URL,
		Timeout:    5 * time.Second,
	})

	start := time.Now()
	err := notifier.NotifyOccupancy(context.Background(), testAlert(entity.OccupancyFull, 0))
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Second, "retry must back off before the second attempt")
}

func TestSlackNotifier_NotifyOccupancy_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("invalid_blocks"))
	}))
	defer server.Close()

	notifier := NewSlackNotifier(SlackConfig{
		Enabled:    true,
		WebhookURL: server.URL,
		Timeout:    5 * time.Second,
	})

	err := notifier.NotifyOccupancy(context.Background(), testAlert(entity.OccupancyFull, 0))
	require.Error(t, err)

	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, http.StatusBadRequest, clientErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSlackNotifier_NotifyOccupancy_HonorsRetryAfter(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewSlackNotifier(SlackConfig{
		Enabled:    true,
		WebhookURL: server.URL,
		Timeout:    5 * time.Second,
	})

	start := time.Now()
	err := notifier.NotifyOccupancy(context.Background(), testAlert(entity.OccupancyAvailable, 42))
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestSlackNotifier_NotifyOccupancy_CancelDuringBackoff(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier := NewSlackNotifier(SlackConfig{
		Enabled:    true,
		WebhookURL: server.URL,
		Timeout:    5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := notifier.NotifyOccupancy(ctx, testAlert(entity.OccupancyFull, 0))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAlertHeadline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		kind      entity.OccupancyAlertKind
		available int
		want      string
	}{
		{"full", entity.OccupancyFull, 0, "Parking Vrijdagmarkt is vol"},
		{"almost full", entity.OccupancyAlmostFull, 7, "Parking Vrijdagmarkt is bijna vol (7 plaatsen vrij)"},
		{"available again", entity.OccupancyAvailable, 42, "Parking Vrijdagmarkt heeft weer plaats (42 plaatsen vrij)"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := alertHeadline(testAlert(tt.kind, tt.available))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 200)
	got := truncate(long, 50, "...")
	assert.Len(t, got, 50)
	assert.True(t, strings.HasSuffix(got, "..."))

	short := "short"
	assert.Equal(t, short, truncate(short, 50, "..."))
}

func TestIsRetryableError(t *testing.T) {
	t.Parallel()

	assert.True(t, isRetryableError(&ServerError{StatusCode: 502, Message: "bad gateway"}))
	assert.False(t, isRetryableError(&ClientError{StatusCode: 400, Message: "bad request"}))
	assert.False(t, isRetryableError(&RateLimitError{RetryAfter: time.Second}))
	assert.True(t, isRetryableError(io.ErrUnexpectedEOF))
}
