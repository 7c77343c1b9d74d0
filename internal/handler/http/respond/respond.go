// Package respond provides utilities for sending HTTP responses in JSON
// format, including error sanitization to avoid leaking internals.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"gentcache/internal/domain/entity"
)

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are already sent, so the error can only be logged.
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes a JSON error response with the given status code and error
// message.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": err.Error()})
}

// RefreshError maps a refresh failure to a sanitized response: upstream
// trouble becomes 502, mapping failures and storage failures become 500.
// The full error is logged, never returned to the client.
func RefreshError(w http.ResponseWriter, err error) {
	logger := slog.Default()

	switch {
	case errors.Is(err, entity.ErrNetwork):
		logger.Warn("refresh failed: upstream error", slog.Any("error", err))
		JSON(w, http.StatusBadGateway, map[string]string{"error": "upstream data source unavailable"})
	case errors.Is(err, entity.ErrMapping):
		logger.Error("refresh failed: mapping error", slog.Any("error", err))
		JSON(w, http.StatusInternalServerError, map[string]string{"error": "upstream data could not be processed"})
	default:
		logger.Error("refresh failed", slog.Any("error", err))
		JSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// SafeError sanitizes storage and other internal errors to a generic
// message, logging the detail for debugging. Not-found style errors pass
// through untouched.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	if code >= 500 {
		slog.Default().Error("internal server error",
			slog.String("status", http.StatusText(code)),
			slog.Int("code", code),
			slog.Any("error", err))
		JSON(w, code, map[string]string{"error": "internal server error"})
		return
	}

	JSON(w, code, map[string]string{"error": err.Error()})
}
