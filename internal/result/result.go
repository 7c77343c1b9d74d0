// Package result wraps streamed values in an explicit loading/success/error
// state so consumers can render progress and failures without extra
// bookkeeping. A stream starts with a single Loading emission, carries one
// Success per value, and recovers from transient failures by resubscribing
// after a fixed delay.
package result

import (
	"context"
	"time"

	"gentcache/internal/resilience/retry"
)

// DefaultRetryDelay is the pause before resubscribing after a transient
// failure. Fixed rather than exponential: the underlying fetch already has
// its own backoff, this delay only spaces out whole subscription cycles.
const DefaultRetryDelay = 15 * time.Second

// State is the position of a Result in the loading lifecycle.
type State int

const (
	// StateLoading means no value has arrived yet.
	StateLoading State = iota

	// StateSuccess carries a value.
	StateSuccess

	// StateError carries a failure.
	StateError
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is a value in one of three states. Value is only meaningful in
// StateSuccess and Err only in StateError.
type Result[T any] struct {
	State State
	Value T
	Err   error
}

// Loading returns a Result in the loading state.
func Loading[T any]() Result[T] {
	return Result[T]{State: StateLoading}
}

// Success returns a Result carrying the given value.
func Success[T any](value T) Result[T] {
	return Result[T]{State: StateSuccess, Value: value}
}

// Failure returns a Result carrying the given error.
func Failure[T any](err error) Result[T] {
	return Result[T]{State: StateError, Err: err}
}

// Update is one emission of an underlying subscription: a value or an
// error, never both. An error ends the subscription.
type Update[T any] struct {
	Value T
	Err   error
}

// StreamConfig tunes Stream's recovery behavior.
type StreamConfig struct {
	// RetryDelay is the pause before resubscribing after a transient failure
	RetryDelay time.Duration

	// IsTransient classifies errors worth a resubscribe. Defaults to the
	// shared retry classification: network-class failures recover, mapping
	// and storage failures do not.
	IsTransient func(error) bool
}

// DefaultStreamConfig returns the production stream configuration.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		RetryDelay:  DefaultRetryDelay,
		IsTransient: retry.IsRetryable,
	}
}

// Stream converts an update subscription into a Result stream. It emits
// Loading exactly once, then one Success per value. When the subscription
// fails it emits Error; a transient failure is followed by a fresh
// subscription after cfg.RetryDelay, anything else ends the stream. The
// returned channel closes when ctx is done or the stream ends.
func Stream[T any](ctx context.Context, cfg StreamConfig, subscribe func(context.Context) <-chan Update[T]) <-chan Result[T] {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.IsTransient == nil {
		cfg.IsTransient = retry.IsRetryable
	}

	out := make(chan Result[T], 1)
	go func() {
		defer close(out)

		if !emit(ctx, out, Loading[T]()) {
			return
		}

		for {
			err := consume(ctx, out, subscribe)
			if err == nil {
				// Subscription drained without error, the stream is done.
				return
			}
			if !emit(ctx, out, Failure[T](err)) {
				return
			}
			if !cfg.IsTransient(err) {
				return
			}

			select {
			case <-time.After(cfg.RetryDelay):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// consume forwards one subscription's values until it closes or fails. The
// subscription's context is cancelled on return so resubscribing never
// leaks the previous cycle.
func consume[T any](ctx context.Context, out chan<- Result[T], subscribe func(context.Context) <-chan Update[T]) error {
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := subscribe(subCtx)
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Err != nil {
				return update.Err
			}
			if !emit(ctx, out, Success(update.Value)) {
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// emit sends a result unless ctx is done first.
func emit[T any](ctx context.Context, out chan<- Result[T], r Result[T]) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}
