// Package cache implements the caching repositories: one per entity,
// combining the local sqlite store with the open-data client. The local
// store is the single source consumers observe; remote data only becomes
// visible after a refresh lands it in the store. A read that finds an empty
// store triggers a background refresh without changing what it emits.
package cache

import (
	"context"
	"log/slog"
	"time"

	"gentcache/internal/observability/metrics"
	"gentcache/internal/result"
)

// Collection labels used in logs and metrics.
const (
	collectionArticles       = "articles"
	collectionCarParks       = "carparks"
	collectionStudyLocations = "studylocations"
)

// backgroundRefreshTimeout bounds a refresh that was triggered by an empty
// read rather than an explicit call.
const backgroundRefreshTimeout = 2 * time.Minute

// listSource adapts a store list query plus its mutation signal into the
// update-stream shape result.Stream consumes. Every mutation signal causes a
// re-query; a query error ends the subscription.
type listSource[E any] struct {
	collection string
	query      func(context.Context) ([]*E, error)
	watch      func(context.Context) <-chan struct{}

	// onEmpty, when set, fires each time a query returns no rows. The empty
	// snapshot is still emitted unchanged.
	onEmpty func()
}

func (s listSource[E]) subscribe(ctx context.Context) <-chan result.Update[[]*E] {
	updates := make(chan result.Update[[]*E], 1)
	go func() {
		defer close(updates)
		signals := s.watch(ctx)

		for {
			items, err := s.query(ctx)
			if err != nil {
				sendUpdate(ctx, updates, result.Update[[]*E]{Err: err})
				return
			}
			if len(items) == 0 && s.onEmpty != nil {
				s.onEmpty()
			}
			metrics.UpdateCachedRecords(s.collection, len(items))
			if !sendUpdate(ctx, updates, result.Update[[]*E]{Value: items}) {
				return
			}

			select {
			case <-signals:
			case <-ctx.Done():
				return
			}
		}
	}()
	return updates
}

// itemSource is the single-entity counterpart of listSource. An absent
// entity is skipped rather than emitted; the stream emits once the entity
// appears.
type itemSource[E any] struct {
	query func(context.Context) (*E, error)
	watch func(context.Context) <-chan struct{}
}

func (s itemSource[E]) subscribe(ctx context.Context) <-chan result.Update[*E] {
	updates := make(chan result.Update[*E], 1)
	go func() {
		defer close(updates)
		signals := s.watch(ctx)

		for {
			item, err := s.query(ctx)
			if err != nil {
				sendUpdate(ctx, updates, result.Update[*E]{Err: err})
				return
			}
			if item != nil {
				if !sendUpdate(ctx, updates, result.Update[*E]{Value: item}) {
					return
				}
			}

			select {
			case <-signals:
			case <-ctx.Done():
				return
			}
		}
	}()
	return updates
}

func sendUpdate[T any](ctx context.Context, updates chan<- result.Update[T], u result.Update[T]) bool {
	select {
	case updates <- u:
		return true
	case <-ctx.Done():
		return false
	}
}

// backgroundRefresh runs refresh detached from the read that triggered it.
// Deduplication against concurrent triggers is the caller's concern.
func backgroundRefresh(collection string, refresh func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), backgroundRefreshTimeout)
	defer cancel()

	metrics.RecordRefreshTrigger(collection, "empty_cache")
	slog.Info("empty cache, refreshing in background",
		slog.String("collection", collection))

	if err := refresh(ctx); err != nil {
		slog.Warn("background refresh failed",
			slog.String("collection", collection),
			slog.Any("error", err))
	}
}
