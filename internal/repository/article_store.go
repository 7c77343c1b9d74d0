// Package repository defines the store adapter contracts implemented by the
// sqlite persistence layer and consumed by the caching repositories. Each
// store owns physical persistence for one entity type; all mutation goes
// through Insert, and readers observe changes through Watch.
package repository

import (
	"context"

	"gentcache/internal/domain/entity"
)

// ArticleStore persists news articles. The conflict policy is ignore-on-
// conflict keyed by the (title, date) uniqueness constraint: re-inserting an
// identical logical article is a no-op and the existing row wins.
type ArticleStore interface {
	// Insert stores an article. A missing ID is assigned locally.
	Insert(ctx context.Context, article *entity.Article) error
	// List returns all articles ordered by date descending, ties broken
	// by title ascending.
	List(ctx context.Context) ([]*entity.Article, error)
	// GetByID returns (nil, nil) when the id is absent.
	GetByID(ctx context.Context, id int64) (*entity.Article, error)
	// Watch returns a channel signalled after every mutation and closed
	// when ctx is done.
	Watch(ctx context.Context) <-chan struct{}
}
