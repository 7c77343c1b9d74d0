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

// ArticleFetcher retrieves the current article collection from the remote
// source.
type ArticleFetcher interface {
	FetchArticles(ctx context.Context) ([]*entity.Article, error)
}

// ContentFetcher retrieves the readable body text of an article page.
type ContentFetcher interface {
	FetchContent(ctx context.Context, pageURL string) (string, error)
}

// ArticleCache is the caching repository for news articles. Refresh enriches
// articles whose mapped content is empty by fetching their read-more page;
// enrichment is best-effort and never fails the refresh.
type ArticleCache struct {
	store     repository.ArticleStore
	fetcher   ArticleFetcher
	content   ContentFetcher
	streamCfg result.StreamConfig
	group     singleflight.Group
}

// NewArticleCache creates an article caching repository.
func NewArticleCache(store repository.ArticleStore, fetcher ArticleFetcher) *ArticleCache {
	return &ArticleCache{
		store:     store,
		fetcher:   fetcher,
		streamCfg: result.DefaultStreamConfig(),
	}
}

// WithContentFetcher enables read-more page enrichment for articles whose
// mapped content is empty.
func (c *ArticleCache) WithContentFetcher(fetcher ContentFetcher) *ArticleCache {
	c.content = fetcher
	return c
}

// WithStreamConfig overrides stream recovery tuning, used by tests.
func (c *ArticleCache) WithStreamConfig(cfg result.StreamConfig) *ArticleCache {
	c.streamCfg = cfg
	return c
}

// GetAll streams the cached article collection: the current snapshot
// immediately, a fresh one after every mutation. An empty snapshot triggers
// a background refresh.
func (c *ArticleCache) GetAll(ctx context.Context) <-chan result.Result[[]*entity.Article] {
	source := listSource[entity.Article]{
		collection: collectionArticles,
		query:      c.List,
		watch:      c.store.Watch,
		onEmpty:    c.triggerRefresh,
	}
	return result.Stream(ctx, c.streamCfg, source.subscribe)
}

// GetByID streams one article. Nothing is emitted until the id exists.
func (c *ArticleCache) GetByID(ctx context.Context, id int64) <-chan result.Result[*entity.Article] {
	source := itemSource[entity.Article]{
		query: func(ctx context.Context) (*entity.Article, error) { return c.Get(ctx, id) },
		watch: c.store.Watch,
	}
	return result.Stream(ctx, c.streamCfg, source.subscribe)
}

// List returns the current article snapshot in date-descending order.
func (c *ArticleCache) List(ctx context.Context) ([]*entity.Article, error) {
	articles, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("List: %w: %w", entity.ErrStorage, err)
	}
	return articles, nil
}

// Get returns one article, or (nil, nil) when the id is absent.
func (c *ArticleCache) Get(ctx context.Context, id int64) (*entity.Article, error) {
	article, err := c.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w: %w", entity.ErrStorage, err)
	}
	return article, nil
}

// Insert stores one article locally. Duplicates by (title, date) are
// silently ignored by the store.
func (c *ArticleCache) Insert(ctx context.Context, article *entity.Article) error {
	if err := c.store.Insert(ctx, article); err != nil {
		return fmt.Errorf("Insert: %w: %w", entity.ErrStorage, err)
	}
	return nil
}

// Refresh re-fetches the whole article collection and inserts it
// sequentially in remote order. On any failure the local data is left
// exactly as it was.
func (c *ArticleCache) Refresh(ctx context.Context) error {
	start := time.Now()
	err := c.refresh(ctx)
	metrics.RecordRefresh(collectionArticles, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("Refresh: %w", err)
	}
	return nil
}

func (c *ArticleCache) refresh(ctx context.Context) error {
	articles, err := c.fetcher.FetchArticles(ctx)
	if err != nil {
		return err
	}
	metrics.RecordRecordsFetched(collectionArticles, len(articles))

	for _, article := range articles {
		c.enrich(ctx, article)
		if err := c.store.Insert(ctx, article); err != nil {
			return fmt.Errorf("%w: insert article %q: %w", entity.ErrStorage, article.Title, err)
		}
	}
	return nil
}

// enrich fills an empty article body from its read-more page. Failures fall
// back to the mapped record.
func (c *ArticleCache) enrich(ctx context.Context, article *entity.Article) {
	if c.content == nil {
		return
	}
	if article.Content != "" {
		metrics.RecordContentFetchSkipped()
		return
	}

	start := time.Now()
	content, err := c.content.FetchContent(ctx, article.ReadMoreURL)
	if err != nil {
		metrics.RecordContentFetchFailed(time.Since(start))
		return
	}
	metrics.RecordContentFetchSuccess(time.Since(start))
	article.Content = content
}

// triggerRefresh starts at most one concurrent background refresh.
func (c *ArticleCache) triggerRefresh() {
	go func() {
		_, _, _ = c.group.Do("refresh", func() (interface{}, error) {
			backgroundRefresh(collectionArticles, c.Refresh)
			return nil, nil
		})
	}()
}
