package cache_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gentcache/internal/domain/entity"
	"gentcache/internal/pkg/pubsub"
	"gentcache/internal/result"
)

// fastStream keeps stream recovery quick in tests.
func fastStream() result.StreamConfig {
	cfg := result.DefaultStreamConfig()
	cfg.RetryDelay = 5 * time.Millisecond
	return cfg
}

// recv waits for the next result with a timeout so a broken stream fails
// the test instead of hanging it.
func recv[T any](t *testing.T, ch <-chan result.Result[T]) result.Result[T] {
	t.Helper()
	select {
	case r, ok := <-ch:
		require.True(t, ok, "stream closed unexpectedly")
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for result")
		return result.Result[T]{}
	}
}

// recvSuccess drains results until the next success and returns its value.
func recvSuccess[T any](t *testing.T, ch <-chan result.Result[T]) T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case r, ok := <-ch:
			require.True(t, ok, "stream closed unexpectedly")
			if r.State == result.StateSuccess {
				return r.Value
			}
			require.NotEqual(t, result.StateError, r.State, "unexpected stream error: %v", r.Err)
		case <-deadline:
			t.Fatal("timed out waiting for success")
		}
	}
}

// fakeCarParkStore is an in-memory repository.CarParkStore keyed like the
// sqlite adapter: unique name, replace on conflict.
type fakeCarParkStore struct {
	mu        sync.Mutex
	parks     []*entity.CarPark
	nextID    int64
	insertErr error
	listErr   error
	inserted  []string

	changes *pubsub.Broadcaster
}

func newFakeCarParkStore() *fakeCarParkStore {
	return &fakeCarParkStore{nextID: 1, changes: pubsub.NewBroadcaster()}
}

func (s *fakeCarParkStore) Insert(ctx context.Context, park *entity.CarPark) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, park.Name)

	clone := *park
	for i, existing := range s.parks {
		if existing.Name == clone.Name {
			clone.ID = existing.ID
			s.parks[i] = &clone
			s.changes.Notify()
			return nil
		}
	}
	clone.ID = s.nextID
	s.nextID++
	s.parks = append(s.parks, &clone)
	s.changes.Notify()
	return nil
}

func (s *fakeCarParkStore) List(ctx context.Context) ([]*entity.CarPark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]*entity.CarPark, len(s.parks))
	copy(out, s.parks)
	return out, nil
}

func (s *fakeCarParkStore) GetByID(ctx context.Context, id int64) (*entity.CarPark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, park := range s.parks {
		if park.ID == id {
			return park, nil
		}
	}
	return nil, nil
}

func (s *fakeCarParkStore) Watch(ctx context.Context) <-chan struct{} {
	return s.changes.Subscribe(ctx)
}

// fakeCarParkFetcher serves canned collections, failing a configurable
// number of times first.
type fakeCarParkFetcher struct {
	mu       sync.Mutex
	parks    []*entity.CarPark
	err      error
	failures int
	calls    int
}

func (f *fakeCarParkFetcher) FetchCarParks(ctx context.Context) ([]*entity.CarPark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, fmt.Errorf("fetch: %w", entity.ErrNetwork)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.parks, nil
}

func (f *fakeCarParkFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func carPark(name string, available int) *entity.CarPark {
	return &entity.CarPark{
		Name:              name,
		LastUpdate:        time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC),
		TotalCapacity:     600,
		AvailableCapacity: available,
		Description:       "Parking " + name,
		IsOpenNow:         true,
		Operator:          "Mobiliteitsbedrijf Gent",
		Location:          entity.GPSCoordinates{Longitude: 3.72, Latitude: 51.05},
	}
}
