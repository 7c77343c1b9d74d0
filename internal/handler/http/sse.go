package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"gentcache/internal/domain/entity"
	"gentcache/internal/handler/http/requestid"
	"gentcache/internal/result"
)

// sseEvent is the JSON body of one server-sent event on a watch endpoint.
// State is "loading", "success" or "error"; Data is present on success and
// Error carries a sanitized message on error.
type sseEvent struct {
	State string `json:"state"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// streamSSE forwards a Result stream to the client as server-sent events
// until the stream ends or the client disconnects. Transient errors appear
// as error events followed by fresh success events once the stream
// recovers; terminal errors close the response.
func streamSSE[T any, J any](w http.ResponseWriter, r *http.Request, updates <-chan result.Result[T], convert func(T) J) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case res, open := <-updates:
			if !open {
				return
			}
			if err := writeSSEEvent(w, toSSEEvent(res, convert)); err != nil {
				slog.Debug("sse write failed",
					slog.String("request_id", requestid.FromContext(r.Context())),
					slog.Any("error", err))
				return
			}
			flusher.Flush()
		}
	}
}

func toSSEEvent[T any, J any](res result.Result[T], convert func(T) J) sseEvent {
	switch res.State {
	case result.StateSuccess:
		return sseEvent{State: res.State.String(), Data: convert(res.Value)}
	case result.StateError:
		return sseEvent{State: res.State.String(), Error: sanitizeStreamError(res.Err)}
	default:
		return sseEvent{State: res.State.String()}
	}
}

func writeSSEEvent(w http.ResponseWriter, event sseEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal sse event: %w", err)
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}

// sanitizeStreamError maps stream failures to client-safe messages.
func sanitizeStreamError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, entity.ErrNetwork):
		return "upstream data source unavailable"
	case errors.Is(err, entity.ErrMapping):
		return "upstream data could not be processed"
	case errors.Is(err, entity.ErrStorage):
		return "local cache unavailable"
	default:
		return "internal error"
	}
}
