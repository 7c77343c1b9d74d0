package state

import (
	"context"
	"sync"

	"gentcache/internal/domain/entity"
	"gentcache/internal/result"
)

// StudyLocationSource is the repository surface the study location holder
// consumes.
type StudyLocationSource interface {
	GetAll(ctx context.Context) <-chan result.Result[[]*entity.StudyLocation]
	SearchByTerm(ctx context.Context, term string) <-chan result.Result[[]*entity.StudyLocation]
}

// StudyLocationListState is one immutable snapshot of the study location
// screen.
type StudyLocationListState struct {
	Locations  result.Result[[]*entity.StudyLocation]
	SearchTerm string
}

// StudyLocationHolder merges the study location stream with the screen's
// search term. Changing the term restarts the underlying stream against the
// matching repository query.
type StudyLocationHolder struct {
	source StudyLocationSource
	holder *Holder[[]*entity.StudyLocation]

	mu   sync.Mutex
	term string
}

// NewStudyLocationHolder creates a study location holder over the given
// source.
func NewStudyLocationHolder(source StudyLocationSource) *StudyLocationHolder {
	return &StudyLocationHolder{
		source: source,
		holder: NewHolder[[]*entity.StudyLocation](),
	}
}

// Start begins tracking the unfiltered GetAll stream.
func (h *StudyLocationHolder) Start(ctx context.Context) {
	h.holder.Start(ctx, h.source.GetAll)
}

// Stop cancels the underlying stream.
func (h *StudyLocationHolder) Stop() {
	h.holder.Stop()
}

// SetSearchTerm switches the holder to the stream matching the term: the
// search stream for a non-empty term, GetAll otherwise. A repeated term is
// a no-op.
func (h *StudyLocationHolder) SetSearchTerm(ctx context.Context, term string) {
	h.mu.Lock()
	if term == h.term {
		h.mu.Unlock()
		return
	}
	h.term = term
	h.mu.Unlock()

	if term == "" {
		h.holder.Start(ctx, h.source.GetAll)
		return
	}
	h.holder.Start(ctx, func(streamCtx context.Context) <-chan result.Result[[]*entity.StudyLocation] {
		return h.source.SearchByTerm(streamCtx, term)
	})
}

// State returns the current screen snapshot.
func (h *StudyLocationHolder) State() StudyLocationListState {
	h.mu.Lock()
	term := h.term
	h.mu.Unlock()
	return StudyLocationListState{Locations: h.holder.Current(), SearchTerm: term}
}

// Updates returns a channel signalled after every data change.
func (h *StudyLocationHolder) Updates(ctx context.Context) <-chan struct{} {
	return h.holder.Updates(ctx)
}
