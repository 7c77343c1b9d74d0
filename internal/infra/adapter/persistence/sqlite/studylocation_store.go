package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gentcache/internal/domain/entity"
	"gentcache/internal/pkg/pubsub"
	"gentcache/internal/repository"
)

// StudyLocationStore implements repository.StudyLocationStore on SQLite.
type StudyLocationStore struct {
	db      *sql.DB
	changes *pubsub.Broadcaster
}

// NewStudyLocationStore creates a SQLite-backed study location store.
func NewStudyLocationStore(db *sql.DB) repository.StudyLocationStore {
	return &StudyLocationStore{db: db, changes: pubsub.NewBroadcaster()}
}

// Insert stores a study location, replacing any row with the same
// source-assigned id.
func (s *StudyLocationStore) Insert(ctx context.Context, loc *entity.StudyLocation) error {
	defer recordQuery("insert_studylocation", time.Now())
	const query = `
INSERT OR REPLACE INTO studylocations
(id, title, label, address, total_capacity, reserved_amount, read_more_url,
 image_url, location, reservation_tag, available_tag)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`
	_, err := s.db.ExecContext(ctx, query,
		loc.ID, loc.Title, loc.Label, loc.Address,
		loc.TotalCapacity, loc.ReservedAmount, loc.ReadMoreURL,
		nullableString(loc.ImageURL), loc.Location.String(),
		nullableString(loc.ReservationTag), nullableString(loc.AvailableTag),
	)
	if err != nil {
		return fmt.Errorf("Insert: ExecContext: %w", err)
	}
	s.changes.Notify()
	return nil
}

// List retrieves all study locations ordered by title.
func (s *StudyLocationStore) List(ctx context.Context) ([]*entity.StudyLocation, error) {
	defer recordQuery("list_studylocations", time.Now())
	return s.query(ctx, selectStudyLocations+` ORDER BY title ASC`)
}

// SearchByTerm filters on a case-insensitive substring of title or address.
// An empty term degenerates to the unfiltered list. The term is matched
// literally; LIKE metacharacters in it carry no wildcard meaning.
func (s *StudyLocationStore) SearchByTerm(ctx context.Context, term string) ([]*entity.StudyLocation, error) {
	defer recordQuery("search_studylocations", time.Now())
	const query = selectStudyLocations + `
WHERE lower(title) LIKE ? ESCAPE '\' OR lower(address) LIKE ? ESCAPE '\'
ORDER BY title ASC
`
	param := "%" + escapeLikeTerm(strings.ToLower(term)) + "%"
	return s.query(ctx, query, param, param)
}

// escapeLikeTerm neutralizes LIKE wildcards so the term matches literally.
func escapeLikeTerm(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}

// GetByID returns (nil, nil) when the study location is absent.
func (s *StudyLocationStore) GetByID(ctx context.Context, id int64) (*entity.StudyLocation, error) {
	defer recordQuery("get_studylocation", time.Now())
	const query = selectStudyLocations + `
WHERE id = ?
LIMIT 1
`
	loc, err := scanStudyLocation(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return loc, nil
}

// Watch signals after every mutation until ctx is done.
func (s *StudyLocationStore) Watch(ctx context.Context) <-chan struct{} {
	return s.changes.Subscribe(ctx)
}

const selectStudyLocations = `
SELECT id, title, label, address, total_capacity, reserved_amount, read_more_url,
       image_url, location, reservation_tag, available_tag
FROM studylocations`

func (s *StudyLocationStore) query(ctx context.Context, query string, args ...any) ([]*entity.StudyLocation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	locations := make([]*entity.StudyLocation, 0, 100)
	for rows.Next() {
		loc, err := scanStudyLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("query: %w", err)
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query: rows.Err: %w", err)
	}
	return locations, nil
}

func scanStudyLocation(row rowScanner) (*entity.StudyLocation, error) {
	var (
		loc         entity.StudyLocation
		image       sql.NullString
		reservation sql.NullString
		available   sql.NullString
		location    string
	)
	err := row.Scan(&loc.ID, &loc.Title, &loc.Label, &loc.Address,
		&loc.TotalCapacity, &loc.ReservedAmount, &loc.ReadMoreURL,
		&image, &location, &reservation, &available)
	if err != nil {
		return nil, err
	}
	loc.ImageURL = image.String
	loc.ReservationTag = reservation.String
	loc.AvailableTag = available.String
	loc.Location, err = entity.ParseGPSCoordinates(location)
	if err != nil {
		return nil, fmt.Errorf("scan location: %w", err)
	}
	return &loc, nil
}
