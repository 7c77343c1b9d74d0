// Package state implements presentation state holders: each holder owns one
// Result stream, keeps the latest emission as an immutable snapshot and
// merges it with UI-only state (search term, filter flags). Renderers poll
// Current or block on Updates; they never touch the streams directly.
package state

import (
	"context"
	"sync"

	"gentcache/internal/pkg/pubsub"
	"gentcache/internal/result"
)

// Holder tracks the latest result of one stream. Restarting with a new
// source atomically replaces the stream; late emissions of a replaced
// stream are dropped.
type Holder[T any] struct {
	mu      sync.Mutex
	current result.Result[T]
	gen     int
	cancel  context.CancelFunc

	changes *pubsub.Broadcaster
}

// NewHolder creates a holder in the loading state.
func NewHolder[T any]() *Holder[T] {
	return &Holder[T]{
		current: result.Loading[T](),
		changes: pubsub.NewBroadcaster(),
	}
}

// Start subscribes to the source and tracks its emissions until Stop, a
// later Start, or ctx cancellation. Starting resets the snapshot to
// loading.
func (h *Holder[T]) Start(ctx context.Context, source func(context.Context) <-chan result.Result[T]) {
	h.mu.Lock()
	if h.cancel != nil {
		h.cancel()
	}
	streamCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.gen++
	gen := h.gen
	h.current = result.Loading[T]()
	h.mu.Unlock()
	h.changes.Notify()

	stream := source(streamCtx)
	go func() {
		for r := range stream {
			if !h.store(gen, r) {
				return
			}
		}
	}()
}

// Stop cancels the current stream. The last snapshot stays readable.
func (h *Holder[T]) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	h.gen++
}

// Current returns the latest snapshot.
func (h *Holder[T]) Current() result.Result[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Updates returns a channel signalled after every snapshot change, closed
// when ctx is done.
func (h *Holder[T]) Updates(ctx context.Context) <-chan struct{} {
	return h.changes.Subscribe(ctx)
}

// store records an emission unless the stream was replaced in the
// meantime.
func (h *Holder[T]) store(gen int, r result.Result[T]) bool {
	h.mu.Lock()
	if gen != h.gen {
		h.mu.Unlock()
		return false
	}
	h.current = r
	h.mu.Unlock()
	h.changes.Notify()
	return true
}
