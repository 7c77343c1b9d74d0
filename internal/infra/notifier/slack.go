package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"gentcache/internal/domain/entity"
)

// SlackConfig contains configuration for Slack-compatible webhook
// notifications.
type SlackConfig struct {
	// Enabled indicates whether webhook notifications are enabled
	Enabled bool

	// WebhookURL is the Incoming Webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for webhook calls
	Timeout time.Duration
}

// SlackNotifier sends occupancy alerts via a Slack-compatible Incoming
// Webhook.
type SlackNotifier struct {
	config      SlackConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewSlackNotifier creates a notifier with the specified configuration.
// The rate limiter matches the Slack webhook limit of one message per
// second.
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	return &SlackNotifier{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(1.0, 1),
	}
}

// SlackWebhookPayload is the JSON payload sent to the webhook using Block
// Kit.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`
	Blocks []SlackBlock `json:"blocks"`
}

// SlackBlock represents a Slack Block Kit block.
type SlackBlock struct {
	Type     string            `json:"type"`
	Text     *SlackTextObject  `json:"text,omitempty"`
	Elements []SlackTextObject `json:"elements,omitempty"`
}

// SlackTextObject represents a text object in Slack Block Kit.
type SlackTextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const (
	maxSectionTextLength = 3000
	maxFallbackLength    = 150

	slackTruncationSuffix = "..."
)

// alertHeadline returns the human-readable first line for an alert.
func alertHeadline(alert *entity.OccupancyAlert) string {
	switch alert.Kind {
	case entity.OccupancyFull:
		return fmt.Sprintf("Parking %s is vol", alert.Park.Name)
	case entity.OccupancyAlmostFull:
		return fmt.Sprintf("Parking %s is bijna vol (%d plaatsen vrij)",
			alert.Park.Name, alert.Park.AvailableCapacity)
	case entity.OccupancyAvailable:
		return fmt.Sprintf("Parking %s heeft weer plaats (%d plaatsen vrij)",
			alert.Park.Name, alert.Park.AvailableCapacity)
	default:
		return fmt.Sprintf("Parking %s: %s", alert.Park.Name, alert.Kind)
	}
}

// buildBlockKitPayload creates a webhook payload from an occupancy alert:
// a section block with the headline and occupancy numbers, and a context
// block with the operator and observation time.
func (s *SlackNotifier) buildBlockKitPayload(alert *entity.OccupancyAlert) SlackWebhookPayload {
	headline := alertHeadline(alert)
	fallbackText := truncate(headline, maxFallbackLength, slackTruncationSuffix)

	sectionText := fmt.Sprintf("*%s*\n\nBezetting: %d/%d",
		headline,
		alert.Park.TotalCapacity-alert.Park.AvailableCapacity,
		alert.Park.TotalCapacity)
	sectionText = truncate(sectionText, maxSectionTextLength, slackTruncationSuffix)

	contextText := fmt.Sprintf("%s • %s",
		alert.Park.Operator, alert.ObservedAt.Format(time.RFC3339))

	return SlackWebhookPayload{
		Text: fallbackText,
		Blocks: []SlackBlock{
			{
				Type: "section",
				Text: &SlackTextObject{Type: "mrkdwn", Text: sectionText},
			},
			{
				Type: "context",
				Elements: []SlackTextObject{
					{Type: "mrkdwn", Text: contextText},
				},
			},
		},
	}
}

// sendWebhookRequest performs one webhook POST. Non-2xx responses are
// classified so the retry loop can decide what to do with them.
func (s *SlackNotifier) sendWebhookRequest(ctx context.Context, alert *entity.OccupancyAlert) error {
	payload := s.buildBlockKitPayload(alert)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{
			Message:    "webhook rate limit exceeded",
			RetryAfter: extractRetryAfter(resp, body),
		}
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("webhook client error: %s", string(body)),
		}
	}

	if resp.StatusCode >= 500 {
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("webhook server error: %s", string(body)),
		}
	}

	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}

// extractRetryAfter reads the Retry-After header, falling back to a fixed
// backoff when it is missing or malformed.
func extractRetryAfter(resp *http.Response, body []byte) time.Duration {
	const defaultRetryAfter = 5 * time.Second

	header := resp.Header.Get("Retry-After")
	if header == "" {
		return defaultRetryAfter
	}
	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err != nil || seconds <= 0 {
		return defaultRetryAfter
	}
	return time.Duration(seconds) * time.Second
}

// sendWebhookRequestWithRetry sends the alert with bounded retries: two
// attempts, linear backoff, rate limits honored via Retry-After, client
// errors never retried.
func (s *SlackNotifier) sendWebhookRequestWithRetry(ctx context.Context, alert *entity.OccupancyAlert) error {
	const (
		maxAttempts = 2
		baseDelay   = 5 * time.Second
	)

	requestID, _ := ctx.Value(requestIDKey).(string)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := s.sendWebhookRequest(ctx, alert)
		if err == nil {
			slog.Info("occupancy notification sent",
				slog.String("request_id", requestID),
				slog.String("carpark", alert.Park.Name),
				slog.String("kind", string(alert.Kind)),
				slog.Int("attempt", attempt))
			return nil
		}

		lastErr = err

		if rateLimitErr, ok := is429Error(err); ok {
			slog.Warn("webhook rate limit hit, backing off",
				slog.String("request_id", requestID),
				slog.String("carpark", alert.Park.Name),
				slog.Duration("retry_after", rateLimitErr.RetryAfter),
				slog.Int("attempt", attempt))

			select {
			case <-time.After(rateLimitErr.RetryAfter):
				continue
			case <-ctx.Done():
				return fmt.Errorf("context canceled during rate limit backoff: %w", ctx.Err())
			}
		}

		if !isRetryableError(err) {
			slog.Error("occupancy notification failed with non-retryable error",
				slog.String("request_id", requestID),
				slog.String("carpark", alert.Park.Name),
				slog.Any("error", err),
				slog.Int("attempt", attempt))
			return err
		}

		if attempt < maxAttempts {
			delay := baseDelay * time.Duration(attempt)
			slog.Warn("webhook request failed, retrying",
				slog.String("request_id", requestID),
				slog.String("carpark", alert.Park.Name),
				slog.Any("error", err),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))

			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return fmt.Errorf("context canceled during retry backoff: %w", ctx.Err())
			}
		}
	}

	slog.Error("occupancy notification failed after all retries",
		slog.String("request_id", requestID),
		slog.String("carpark", alert.Park.Name),
		slog.Any("error", lastErr),
		slog.Int("max_attempts", maxAttempts))

	return fmt.Errorf("webhook notification failed after %d attempts: %w", maxAttempts, lastErr)
}

// NotifyOccupancy sends one occupancy alert through the webhook. This
// method implements the Notifier interface.
func (s *SlackNotifier) NotifyOccupancy(ctx context.Context, alert *entity.OccupancyAlert) error {
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	slog.Info("starting occupancy notification",
		slog.String("request_id", requestID),
		slog.String("carpark", alert.Park.Name),
		slog.String("kind", string(alert.Kind)))

	if err := s.rateLimiter.Allow(ctx); err != nil {
		slog.Error("rate limiter error",
			slog.String("request_id", requestID),
			slog.String("carpark", alert.Park.Name),
			slog.Any("error", err))
		return fmt.Errorf("rate limiter error: %w", err)
	}

	return s.sendWebhookRequestWithRetry(ctx, alert)
}
