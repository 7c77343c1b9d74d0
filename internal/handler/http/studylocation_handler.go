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

// StudyLocationSource is the study location cache surface the handlers
// consume.
type StudyLocationSource interface {
	GetAll(ctx context.Context) <-chan result.Result[[]*entity.StudyLocation]
	GetByID(ctx context.Context, id int64) <-chan result.Result[*entity.StudyLocation]
	SearchByTerm(ctx context.Context, term string) <-chan result.Result[[]*entity.StudyLocation]
	List(ctx context.Context) ([]*entity.StudyLocation, error)
	Get(ctx context.Context, id int64) (*entity.StudyLocation, error)
	Search(ctx context.Context, term string) ([]*entity.StudyLocation, error)
	Refresh(ctx context.Context) error
}

// StudyLocationHandler serves the study location endpoints, including
// term search over title, label and address via the q query parameter.
type StudyLocationHandler struct {
	source StudyLocationSource
}

// NewStudyLocationHandler creates the handler over the given cache.
func NewStudyLocationHandler(source StudyLocationSource) *StudyLocationHandler {
	return &StudyLocationHandler{source: source}
}

// Routes mounts the study location endpoints on a chi router.
func (h *StudyLocationHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/watch", h.watch)
	r.Post("/refresh", h.refresh)
	r.Get("/{id}", h.get)
	r.Get("/{id}/watch", h.watchOne)
}

func (h *StudyLocationHandler) list(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")

	var (
		locations []*entity.StudyLocation
		err       error
	)
	if term == "" {
		locations, err = h.source.List(r.Context())
	} else {
		locations, err = h.source.Search(r.Context(), term)
	}
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, toCollectionJSON(locations, toStudyLocationJSON))
}

func (h *StudyLocationHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}

	location, err := h.source.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if location == nil {
		respond.Error(w, http.StatusNotFound, fmt.Errorf("study location %d not found", id))
		return
	}
	respond.JSON(w, http.StatusOK, toStudyLocationJSON(location))
}

func (h *StudyLocationHandler) watch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")

	var updates <-chan result.Result[[]*entity.StudyLocation]
	if term == "" {
		updates = h.source.GetAll(r.Context())
	} else {
		updates = h.source.SearchByTerm(r.Context(), term)
	}

	streamSSE(w, r, updates, func(locations []*entity.StudyLocation) any {
		return toCollectionJSON(locations, toStudyLocationJSON)
	})
}

func (h *StudyLocationHandler) watchOne(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}
	streamSSE(w, r, h.source.GetByID(r.Context(), id), func(location *entity.StudyLocation) any {
		return toStudyLocationJSON(location)
	})
}

func (h *StudyLocationHandler) refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.source.Refresh(r.Context()); err != nil {
		respond.RefreshError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}
