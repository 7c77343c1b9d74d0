package state

import (
	"context"
	"sync"

	"gentcache/internal/domain/entity"
	"gentcache/internal/result"
)

// CarParkSource is the repository surface the car park holder consumes.
type CarParkSource interface {
	GetAll(ctx context.Context) <-chan result.Result[[]*entity.CarPark]
}

// CarParkListState is one immutable snapshot of the car park screen: the
// latest data result with the filter flags applied.
type CarParkListState struct {
	Parks    result.Result[[]*entity.CarPark]
	OnlyOpen bool
	ShowMap  bool
}

// CarParkHolder merges the car park stream with the screen's filter flags.
type CarParkHolder struct {
	holder *Holder[[]*entity.CarPark]

	mu       sync.Mutex
	onlyOpen bool
	showMap  bool
}

// NewCarParkHolder creates a car park holder over the given source.
func NewCarParkHolder() *CarParkHolder {
	return &CarParkHolder{holder: NewHolder[[]*entity.CarPark]()}
}

// Start begins tracking the source's GetAll stream.
func (h *CarParkHolder) Start(ctx context.Context, source CarParkSource) {
	h.holder.Start(ctx, source.GetAll)
}

// Stop cancels the underlying stream.
func (h *CarParkHolder) Stop() {
	h.holder.Stop()
}

// SetOnlyOpen toggles the open-parks-only filter. Filtering is applied on
// read; the underlying stream keeps carrying the full collection.
func (h *CarParkHolder) SetOnlyOpen(onlyOpen bool) {
	h.mu.Lock()
	h.onlyOpen = onlyOpen
	h.mu.Unlock()
}

// SetShowMap toggles between list and map rendering.
func (h *CarParkHolder) SetShowMap(showMap bool) {
	h.mu.Lock()
	h.showMap = showMap
	h.mu.Unlock()
}

// State returns the current screen snapshot.
func (h *CarParkHolder) State() CarParkListState {
	h.mu.Lock()
	onlyOpen, showMap := h.onlyOpen, h.showMap
	h.mu.Unlock()

	parks := h.holder.Current()
	if onlyOpen && parks.State == result.StateSuccess {
		filtered := make([]*entity.CarPark, 0, len(parks.Value))
		for _, park := range parks.Value {
			if park.IsOpenNow && !park.IsTemporaryClosed {
				filtered = append(filtered, park)
			}
		}
		parks = result.Success(filtered)
	}

	return CarParkListState{Parks: parks, OnlyOpen: onlyOpen, ShowMap: showMap}
}

// Updates returns a channel signalled after every data change.
func (h *CarParkHolder) Updates(ctx context.Context) <-chan struct{} {
	return h.holder.Updates(ctx)
}
