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

// StudyLocationFetcher retrieves the study location collection from the
// remote source.
type StudyLocationFetcher interface {
	FetchStudyLocations(ctx context.Context) ([]*entity.StudyLocation, error)
}

// StudyLocationCache is the caching repository for study locations.
type StudyLocationCache struct {
	store     repository.StudyLocationStore
	fetcher   StudyLocationFetcher
	streamCfg result.StreamConfig
	group     singleflight.Group
}

// NewStudyLocationCache creates a study location caching repository.
func NewStudyLocationCache(store repository.StudyLocationStore, fetcher StudyLocationFetcher) *StudyLocationCache {
	return &StudyLocationCache{
		store:     store,
		fetcher:   fetcher,
		streamCfg: result.DefaultStreamConfig(),
	}
}

// WithStreamConfig overrides stream recovery tuning, used by tests.
func (c *StudyLocationCache) WithStreamConfig(cfg result.StreamConfig) *StudyLocationCache {
	c.streamCfg = cfg
	return c
}

// GetAll streams the cached study location collection: the current snapshot
// immediately, a fresh one after every mutation. An empty snapshot triggers
// a background refresh.
func (c *StudyLocationCache) GetAll(ctx context.Context) <-chan result.Result[[]*entity.StudyLocation] {
	source := listSource[entity.StudyLocation]{
		collection: collectionStudyLocations,
		query:      c.List,
		watch:      c.store.Watch,
		onEmpty:    c.triggerRefresh,
	}
	return result.Stream(ctx, c.streamCfg, source.subscribe)
}

// GetByID streams one study location. Nothing is emitted until the id
// exists.
func (c *StudyLocationCache) GetByID(ctx context.Context, id int64) <-chan result.Result[*entity.StudyLocation] {
	source := itemSource[entity.StudyLocation]{
		query: func(ctx context.Context) (*entity.StudyLocation, error) { return c.Get(ctx, id) },
		watch: c.store.Watch,
	}
	return result.Stream(ctx, c.streamCfg, source.subscribe)
}

// SearchByTerm streams the locations matching the term, re-evaluated on
// every mutation. A search never triggers a refresh: an empty match set is
// a valid answer, not a cold cache.
func (c *StudyLocationCache) SearchByTerm(ctx context.Context, term string) <-chan result.Result[[]*entity.StudyLocation] {
	source := listSource[entity.StudyLocation]{
		collection: collectionStudyLocations,
		query: func(ctx context.Context) ([]*entity.StudyLocation, error) {
			return c.Search(ctx, term)
		},
		watch: c.store.Watch,
	}
	return result.Stream(ctx, c.streamCfg, source.subscribe)
}

// List returns the current study location snapshot in title order.
func (c *StudyLocationCache) List(ctx context.Context) ([]*entity.StudyLocation, error) {
	locations, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("List: %w: %w", entity.ErrStorage, err)
	}
	return locations, nil
}

// Get returns one study location, or (nil, nil) when the id is absent.
func (c *StudyLocationCache) Get(ctx context.Context, id int64) (*entity.StudyLocation, error) {
	loc, err := c.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w: %w", entity.ErrStorage, err)
	}
	return loc, nil
}

// Search returns the locations whose title or address contains the term,
// case-insensitively. An empty term returns everything.
func (c *StudyLocationCache) Search(ctx context.Context, term string) ([]*entity.StudyLocation, error) {
	locations, err := c.store.SearchByTerm(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("Search: %w: %w", entity.ErrStorage, err)
	}
	return locations, nil
}

// Insert stores one study location locally, replacing any location with the
// same source-assigned id.
func (c *StudyLocationCache) Insert(ctx context.Context, loc *entity.StudyLocation) error {
	if err := c.store.Insert(ctx, loc); err != nil {
		return fmt.Errorf("Insert: %w: %w", entity.ErrStorage, err)
	}
	return nil
}

// Refresh re-fetches the whole study location collection and inserts it
// sequentially in remote order. On any failure the local data is left
// exactly as it was.
func (c *StudyLocationCache) Refresh(ctx context.Context) error {
	start := time.Now()
	err := c.refresh(ctx)
	metrics.RecordRefresh(collectionStudyLocations, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("Refresh: %w", err)
	}
	return nil
}

func (c *StudyLocationCache) refresh(ctx context.Context) error {
	locations, err := c.fetcher.FetchStudyLocations(ctx)
	if err != nil {
		return err
	}
	metrics.RecordRecordsFetched(collectionStudyLocations, len(locations))

	for _, loc := range locations {
		if err := c.store.Insert(ctx, loc); err != nil {
			return fmt.Errorf("%w: insert studylocation %q: %w", entity.ErrStorage, loc.Title, err)
		}
	}
	return nil
}

func (c *StudyLocationCache) triggerRefresh() {
	go func() {
		_, _, _ = c.group.Do("refresh", func() (interface{}, error) {
			backgroundRefresh(collectionStudyLocations, c.Refresh)
			return nil, nil
		})
	}()
}
