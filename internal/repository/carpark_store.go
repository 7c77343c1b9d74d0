package repository

import (
	"context"

	"gentcache/internal/domain/entity"
)

// CarParkStore persists car park occupancy snapshots. The conflict policy is
// replace-on-conflict keyed by the unique name: re-inserting a known park
// overwrites every field, which is how live availability updates land.
type CarParkStore interface {
	Insert(ctx context.Context, park *entity.CarPark) error
	// List returns all car parks ordered by name ascending.
	List(ctx context.Context) ([]*entity.CarPark, error)
	// GetByID returns (nil, nil) when the id is absent.
	GetByID(ctx context.Context, id int64) (*entity.CarPark, error)
	Watch(ctx context.Context) <-chan struct{}
}
