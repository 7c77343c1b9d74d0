package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gentcache/internal/domain/entity"
	"gentcache/internal/handler/http/respond"
	"gentcache/internal/result"
)

// CarParkSource is the car park cache surface the handlers consume.
type CarParkSource interface {
	GetAll(ctx context.Context) <-chan result.Result[[]*entity.CarPark]
	GetByID(ctx context.Context, id int64) <-chan result.Result[*entity.CarPark]
	List(ctx context.Context) ([]*entity.CarPark, error)
	Get(ctx context.Context, id int64) (*entity.CarPark, error)
	Refresh(ctx context.Context) error
}

// CarParkHandler serves the car park endpoints. The optional only_open
// query parameter filters list responses to parks that are currently open
// and not temporarily closed.
type CarParkHandler struct {
	source CarParkSource
}

// NewCarParkHandler creates the handler over the given cache.
func NewCarParkHandler(source CarParkSource) *CarParkHandler {
	return &CarParkHandler{source: source}
}

// Routes mounts the car park endpoints on a chi router.
func (h *CarParkHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/watch", h.watch)
	r.Post("/refresh", h.refresh)
	r.Get("/{id}", h.get)
	r.Get("/{id}/watch", h.watchOne)
}

func (h *CarParkHandler) list(w http.ResponseWriter, r *http.Request) {
	parks, err := h.source.List(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if onlyOpen(r) {
		parks = filterOpen(parks)
	}
	respond.JSON(w, http.StatusOK, toCollectionJSON(parks, toCarParkJSON))
}

func (h *CarParkHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}

	park, err := h.source.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if park == nil {
		respond.Error(w, http.StatusNotFound, fmt.Errorf("car park %d not found", id))
		return
	}
	respond.JSON(w, http.StatusOK, toCarParkJSON(park))
}

func (h *CarParkHandler) watch(w http.ResponseWriter, r *http.Request) {
	filter := onlyOpen(r)
	streamSSE(w, r, h.source.GetAll(r.Context()), func(parks []*entity.CarPark) any {
		if filter {
			parks = filterOpen(parks)
		}
		return toCollectionJSON(parks, toCarParkJSON)
	})
}

func (h *CarParkHandler) watchOne(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}
	streamSSE(w, r, h.source.GetByID(r.Context(), id), func(park *entity.CarPark) any {
		return toCarParkJSON(park)
	})
}

func (h *CarParkHandler) refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.source.Refresh(r.Context()); err != nil {
		respond.RefreshError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func onlyOpen(r *http.Request) bool {
	return r.URL.Query().Get("only_open") == "true"
}

func filterOpen(parks []*entity.CarPark) []*entity.CarPark {
	filtered := make([]*entity.CarPark, 0, len(parks))
	for _, p := range parks {
		if p.IsOpenNow && !p.IsTemporaryClosed {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
