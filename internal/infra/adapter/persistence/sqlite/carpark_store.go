package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gentcache/internal/domain/entity"
	"gentcache/internal/pkg/pubsub"
	"gentcache/internal/repository"
)

// CarParkStore implements repository.CarParkStore on SQLite.
type CarParkStore struct {
	db      *sql.DB
	changes *pubsub.Broadcaster
}

// NewCarParkStore creates a SQLite-backed car park store.
func NewCarParkStore(db *sql.DB) repository.CarParkStore {
	return &CarParkStore{db: db, changes: pubsub.NewBroadcaster()}
}

// Insert stores a car park. A name conflict updates every field in place,
// so each refresh lands the live availability while the row id stays
// stable for detail and watch readers.
func (s *CarParkStore) Insert(ctx context.Context, park *entity.CarPark) error {
	defer recordQuery("insert_carpark", time.Now())
	const query = `
INSERT INTO carparks
(id, name, last_update, total_capacity, available_capacity, description,
 extra_info, is_open_now, is_temporary_closed, is_free, is_in_lez, operator, location)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (name) DO UPDATE SET
    last_update         = excluded.last_update,
    total_capacity      = excluded.total_capacity,
    available_capacity  = excluded.available_capacity,
    description         = excluded.description,
    extra_info          = excluded.extra_info,
    is_open_now         = excluded.is_open_now,
    is_temporary_closed = excluded.is_temporary_closed,
    is_free             = excluded.is_free,
    is_in_lez           = excluded.is_in_lez,
    operator            = excluded.operator,
    location            = excluded.location
`
	_, err := s.db.ExecContext(ctx, query,
		nullableID(park.ID), park.Name, park.LastUpdate.UTC(),
		park.TotalCapacity, park.AvailableCapacity, park.Description,
		nullableString(park.ExtraInfo), park.IsOpenNow, park.IsTemporaryClosed,
		park.IsFree, park.IsInLEZ, park.Operator, park.Location.String(),
	)
	if err != nil {
		return fmt.Errorf("Insert: ExecContext: %w", err)
	}
	s.changes.Notify()
	return nil
}

// List retrieves all car parks ordered by name.
func (s *CarParkStore) List(ctx context.Context) ([]*entity.CarPark, error) {
	defer recordQuery("list_carparks", time.Now())
	const query = `
SELECT id, name, last_update, total_capacity, available_capacity, description,
       extra_info, is_open_now, is_temporary_closed, is_free, is_in_lez, operator, location
FROM carparks
ORDER BY name ASC
`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	parks := make([]*entity.CarPark, 0, 20)
	for rows.Next() {
		park, err := scanCarPark(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		parks = append(parks, park)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows.Err: %w", err)
	}
	return parks, nil
}

// GetByID returns (nil, nil) when the car park is absent.
func (s *CarParkStore) GetByID(ctx context.Context, id int64) (*entity.CarPark, error) {
	defer recordQuery("get_carpark", time.Now())
	const query = `
SELECT id, name, last_update, total_capacity, available_capacity, description,
       extra_info, is_open_now, is_temporary_closed, is_free, is_in_lez, operator, location
FROM carparks
WHERE id = ?
LIMIT 1
`
	park, err := scanCarPark(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return park, nil
}

// Watch signals after every mutation until ctx is done.
func (s *CarParkStore) Watch(ctx context.Context) <-chan struct{} {
	return s.changes.Subscribe(ctx)
}

func scanCarPark(row rowScanner) (*entity.CarPark, error) {
	var (
		park     entity.CarPark
		extra    sql.NullString
		location string
	)
	err := row.Scan(&park.ID, &park.Name, &park.LastUpdate,
		&park.TotalCapacity, &park.AvailableCapacity, &park.Description,
		&extra, &park.IsOpenNow, &park.IsTemporaryClosed,
		&park.IsFree, &park.IsInLEZ, &park.Operator, &location)
	if err != nil {
		return nil, err
	}
	park.ExtraInfo = extra.String
	park.Location, err = entity.ParseGPSCoordinates(location)
	if err != nil {
		return nil, fmt.Errorf("scan location: %w", err)
	}
	return &park, nil
}
