package repository

import (
	"context"

	"gentcache/internal/domain/entity"
)

// StudyLocationStore persists study locations. The conflict policy is
// replace-on-conflict keyed by the source-assigned id.
type StudyLocationStore interface {
	Insert(ctx context.Context, loc *entity.StudyLocation) error
	// List returns all study locations ordered by title ascending.
	List(ctx context.Context) ([]*entity.StudyLocation, error)
	// GetByID returns (nil, nil) when the id is absent.
	GetByID(ctx context.Context, id int64) (*entity.StudyLocation, error)
	// SearchByTerm returns the locations whose title or address contains
	// the term case-insensitively, ordered by title ascending. An empty
	// term is equivalent to List.
	SearchByTerm(ctx context.Context, term string) ([]*entity.StudyLocation, error)
	Watch(ctx context.Context) <-chan struct{}
}
