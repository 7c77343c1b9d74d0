package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"gentcache/internal/handler/http/respond"
	"gentcache/internal/usecase/notify"
)

// HealthResponse is the JSON body of the health endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"` // "healthy" or "unhealthy"
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus is the status of one health check item.
type CheckStatus struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthHandler reports database connectivity and, when a notification
// service is wired, per-channel circuit breaker state.
type HealthHandler struct {
	DB      *sql.DB
	Version string

	// Notify is optional; nil skips the channel health section.
	Notify notify.Service
}

// ServeHTTP performs the health checks and renders the aggregate status.
// Database failure makes the whole response unhealthy with a 503; an open
// notification circuit breaker is reported but keeps the service healthy.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]CheckStatus)
	healthy := true

	checks["database"] = h.checkDatabase(r.Context())
	if checks["database"].Status != "healthy" {
		healthy = false
	}

	if h.Notify != nil {
		checks["notifications"] = h.checkNotifications()
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if h.DB == nil {
		return CheckStatus{Status: "unhealthy", Message: "database not configured"}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.DB.PingContext(pingCtx); err != nil {
		return CheckStatus{Status: "unhealthy", Message: "database unreachable"}
	}
	return CheckStatus{Status: "healthy"}
}

func (h *HealthHandler) checkNotifications() CheckStatus {
	statuses := h.Notify.GetChannelHealth()

	details := make(map[string]interface{}, len(statuses))
	degraded := false
	for _, s := range statuses {
		state := "closed"
		if s.CircuitBreakerOpen {
			state = "open"
			degraded = true
		}
		details[s.Name] = map[string]interface{}{
			"enabled":         s.Enabled,
			"circuit_breaker": state,
		}
	}

	if degraded {
		return CheckStatus{Status: "degraded", Message: "one or more channels disabled by circuit breaker", Details: details}
	}
	return CheckStatus{Status: "healthy", Details: details}
}
