package cache

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"gentcache/internal/domain/entity"
	"gentcache/internal/observability/metrics"
	"gentcache/internal/repository"
	"gentcache/internal/result"
)

// CarParkFetcher retrieves the live car park snapshot from the remote
// source.
type CarParkFetcher interface {
	FetchCarParks(ctx context.Context) ([]*entity.CarPark, error)
}

// CarParkCache is the caching repository for car park occupancy. Each
// refresh overwrites known parks by name, so availability is as fresh as the
// last completed refresh.
type CarParkCache struct {
	store     repository.CarParkStore
	fetcher   CarParkFetcher
	streamCfg result.StreamConfig
	group     singleflight.Group
}

// NewCarParkCache creates a car park caching repository.
func NewCarParkCache(store repository.CarParkStore, fetcher CarParkFetcher) *CarParkCache {
	return &CarParkCache{
		store:     store,
		fetcher:   fetcher,
		streamCfg: result.DefaultStreamConfig(),
	}
}

// WithStreamConfig overrides stream recovery tuning, used by tests.
func (c *CarParkCache) WithStreamConfig(cfg result.StreamConfig) *CarParkCache {
	c.streamCfg = cfg
	return c
}

// GetAll streams the cached car park collection: the current snapshot
// immediately, a fresh one after every mutation. An empty snapshot triggers
// a background refresh.
func (c *CarParkCache) GetAll(ctx context.Context) <-chan result.Result[[]*entity.CarPark] {
	source := listSource[entity.CarPark]{
		collection: collectionCarParks,
		query:      c.List,
		watch:      c.store.Watch,
		onEmpty:    c.triggerRefresh,
	}
	return result.Stream(ctx, c.streamCfg, source.subscribe)
}

// GetByID streams one car park. Nothing is emitted until the id exists.
func (c *CarParkCache) GetByID(ctx context.Context, id int64) <-chan result.Result[*entity.CarPark] {
	source := itemSource[entity.CarPark]{
		query: func(ctx context.Context) (*entity.CarPark, error) { return c.Get(ctx, id) },
		watch: c.store.Watch,
	}
	return result.Stream(ctx, c.streamCfg, source.subscribe)
}

// List returns the current car park snapshot in name order.
func (c *CarParkCache) List(ctx context.Context) ([]*entity.CarPark, error) {
	parks, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("List: %w: %w", entity.ErrStorage, err)
	}
	return parks, nil
}

// Get returns one car park, or (nil, nil) when the id is absent.
func (c *CarParkCache) Get(ctx context.Context, id int64) (*entity.CarPark, error) {
	park, err := c.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w: %w", entity.ErrStorage, err)
	}
	return park, nil
}

// Insert stores one car park locally, replacing any park with the same
// name.
func (c *CarParkCache) Insert(ctx context.Context, park *entity.CarPark) error {
	if err := c.store.Insert(ctx, park); err != nil {
		return fmt.Errorf("Insert: %w: %w", entity.ErrStorage, err)
	}
	return nil
}

// Refresh re-fetches the whole car park collection and inserts it
// sequentially in remote order. On any failure the local data is left
// exactly as it was.
func (c *CarParkCache) Refresh(ctx context.Context) error {
	start := time.Now()
	err := c.refresh(ctx)
	metrics.RecordRefresh(collectionCarParks, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("Refresh: %w", err)
	}
	return nil
}

func (c *CarParkCache) refresh(ctx context.Context) error {
	parks, err := c.fetcher.FetchCarParks(ctx)
	if err != nil {
		return err
	}
	metrics.RecordRecordsFetched(collectionCarParks, len(parks))

	for _, park := range parks {
		if err := c.store.Insert(ctx, park); err != nil {
			return fmt.Errorf("%w: insert carpark %q: %w", entity.ErrStorage, park.Name, err)
		}
	}
	return nil
}

func (c *CarParkCache) triggerRefresh() {
	go func() {
		_, _, _ = c.group.Do("refresh", func() (interface{}, error) {
			backgroundRefresh(collectionCarParks, c.Refresh)
			return nil, nil
		})
	}()
}
