// Package pubsub provides a minimal in-process broadcaster used by the store
// adapters to signal mutations to observing readers. Signals are coalescing:
// a subscriber that has not drained its channel sees at most one pending
// signal, which is enough because observers re-query the store on wakeup.
package pubsub

import (
	"context"
	"sync"
)

// Broadcaster fans out mutation signals to an arbitrary number of
// subscribers. The zero value is not usable; use NewBroadcaster.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan struct{})}
}

// Subscribe registers a new subscriber. The returned channel receives a
// signal after every Notify and is closed when ctx is done.
func (b *Broadcaster) Subscribe(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(ch)
		b.mu.Unlock()
	}()

	return ch
}

// Notify signals all current subscribers. Subscribers with an undelivered
// signal are skipped rather than blocked on.
func (b *Broadcaster) Notify() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
