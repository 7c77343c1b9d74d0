package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gentcache/internal/handler/http/requestid"
)

// maxRequestBodyBytes caps request bodies; the API only accepts empty
// bodies on its POST endpoints.
const maxRequestBodyBytes = 1 << 20

// RouterDeps carries everything the router mounts.
type RouterDeps struct {
	Logger         *slog.Logger
	Articles       ArticleSource
	CarParks       CarParkSource
	StudyLocations StudyLocationSource
	Health         *HealthHandler
}

// NewRouter builds the API router: resource endpoints under /api/v1,
// health and Prometheus metrics at the root.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(requestid.Middleware)
	r.Use(Recover(deps.Logger))
	r.Use(Logging(deps.Logger))
	r.Use(Metrics())
	r.Use(LimitRequestBody(maxRequestBodyBytes))

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/articles", NewArticleHandler(deps.Articles).Routes)
		api.Route("/carparks", NewCarParkHandler(deps.CarParks).Routes)
		api.Route("/studylocations", NewStudyLocationHandler(deps.StudyLocations).Routes)
	})

	if deps.Health != nil {
		r.Method(http.MethodGet, "/health", deps.Health)
	}
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
