package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gentcache/internal/domain/entity"
	"gentcache/internal/handler/http/respond"
	"gentcache/internal/result"
)

// ArticleSource is the article cache surface the handlers consume.
type ArticleSource interface {
	GetAll(ctx context.Context) <-chan result.Result[[]*entity.Article]
	GetByID(ctx context.Context, id int64) <-chan result.Result[*entity.Article]
	List(ctx context.Context) ([]*entity.Article, error)
	Get(ctx context.Context, id int64) (*entity.Article, error)
	Refresh(ctx context.Context) error
}

// ArticleHandler serves the news article endpoints.
type ArticleHandler struct {
	source ArticleSource
}

// NewArticleHandler creates the handler over the given cache.
func NewArticleHandler(source ArticleSource) *ArticleHandler {
	return &ArticleHandler{source: source}
}

// Routes mounts the article endpoints on a chi router.
func (h *ArticleHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/watch", h.watch)
	r.Post("/refresh", h.refresh)
	r.Get("/{id}", h.get)
	r.Get("/{id}/watch", h.watchOne)
}

func (h *ArticleHandler) list(w http.ResponseWriter, r *http.Request) {
	articles, err := h.source.List(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, toCollectionJSON(articles, toArticleJSON))
}

func (h *ArticleHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}

	article, err := h.source.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if article == nil {
		respond.Error(w, http.StatusNotFound, fmt.Errorf("article %d not found", id))
		return
	}
	respond.JSON(w, http.StatusOK, toArticleJSON(article))
}

func (h *ArticleHandler) watch(w http.ResponseWriter, r *http.Request) {
	streamSSE(w, r, h.source.GetAll(r.Context()), func(articles []*entity.Article) any {
		return toCollectionJSON(articles, toArticleJSON)
	})
}

func (h *ArticleHandler) watchOne(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}
	streamSSE(w, r, h.source.GetByID(r.Context(), id), func(article *entity.Article) any {
		return toArticleJSON(article)
	})
}

func (h *ArticleHandler) refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.source.Refresh(r.Context()); err != nil {
		respond.RefreshError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

// parseID reads the {id} route parameter as an int64.
func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
