package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gentcache/internal/domain/entity"
)

// OccupancyWatcher compares consecutive car park snapshots and raises an
// alert for every park that crosses an occupancy threshold. The first
// snapshot only seeds the baseline so a service restart does not replay
// alerts for parks that were already full. Safe for concurrent Observe
// calls; overlapping refresh runs serialize on the baseline.
type OccupancyWatcher struct {
	service Service

	mu       sync.Mutex
	baseline map[string]*entity.CarPark
}

// NewOccupancyWatcher creates a watcher dispatching through the given
// service.
func NewOccupancyWatcher(service Service) *OccupancyWatcher {
	return &OccupancyWatcher{
		service:  service,
		baseline: make(map[string]*entity.CarPark),
	}
}

// Observe ingests one refreshed snapshot. Parks are matched to the
// previous snapshot by name; parks seen for the first time never alert.
func (w *OccupancyWatcher) Observe(ctx context.Context, parks []*entity.CarPark) {
	w.mu.Lock()
	defer w.mu.Unlock()

	seeding := len(w.baseline) == 0

	next := make(map[string]*entity.CarPark, len(parks))
	for _, park := range parks {
		next[park.Name] = park

		if seeding {
			continue
		}

		previous, known := w.baseline[park.Name]
		if !known {
			continue
		}

		kind, transitioned := classifyTransition(previous, park)
		if !transitioned {
			continue
		}

		RecordAlertDetected(string(kind))
		slog.Info("occupancy transition detected",
			slog.String("carpark", park.Name),
			slog.String("kind", string(kind)),
			slog.Int("available", park.AvailableCapacity),
			slog.Int("total", park.TotalCapacity))

		alert := &entity.OccupancyAlert{
			Kind:       kind,
			Park:       park,
			ObservedAt: time.Now().UTC(),
		}
		if err := w.service.NotifyOccupancy(ctx, alert); err != nil {
			slog.Warn("occupancy alert dispatch failed",
				slog.String("carpark", park.Name),
				slog.Any("error", err))
		}
	}

	w.baseline = next
}

// classifyTransition maps a pair of snapshots of the same park to an
// alert kind. Full wins over almost-full when both became true at once.
func classifyTransition(previous, current *entity.CarPark) (entity.OccupancyAlertKind, bool) {
	switch {
	case !previous.IsFull() && current.IsFull():
		return entity.OccupancyFull, true
	case !previous.IsAlmostFull() && current.IsAlmostFull():
		return entity.OccupancyAlmostFull, true
	case previous.IsAlmostFull() && !current.IsAlmostFull():
		return entity.OccupancyAvailable, true
	default:
		return "", false
	}
}
