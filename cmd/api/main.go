package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gentcache/internal/cache"
	"gentcache/internal/infra/adapter/persistence/sqlite"
	"gentcache/internal/infra/db"
	"gentcache/internal/infra/fetcher"
	"gentcache/internal/infra/opendata"
	"gentcache/internal/observability/logging"

	hhttp "gentcache/internal/handler/http"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	handler := setupHandler(logger, database)
	runServer(logger, handler)
}

// initDatabase opens the SQLite cache database and applies migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	path := os.Getenv("DB_PATH")
	if path == "" {
		path = "gentcache.db"
	}

	database, err := db.Open(path)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// setupHandler wires the caching repositories and builds the API router.
func setupHandler(logger *slog.Logger, database *sql.DB) http.Handler {
	client := opendata.NewClient(opendata.DefaultConfig())

	articles := cache.NewArticleCache(sqlite.NewArticleStore(database), client)
	if contentFetcher := buildContentFetcher(logger); contentFetcher != nil {
		articles = articles.WithContentFetcher(contentFetcher)
	}
	carParks := cache.NewCarParkCache(sqlite.NewCarParkStore(database), client)
	studyLocations := cache.NewStudyLocationCache(sqlite.NewStudyLocationStore(database), client)

	return hhttp.NewRouter(hhttp.RouterDeps{
		Logger:         logger,
		Articles:       articles,
		CarParks:       carParks,
		StudyLocations: studyLocations,
		Health:         &hhttp.HealthHandler{DB: database, Version: getVersion()},
	})
}

// buildContentFetcher creates the article page enrichment fetcher, or nil
// when enrichment is disabled or misconfigured.
func buildContentFetcher(logger *slog.Logger) cache.ContentFetcher {
	cfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Warn("content fetching disabled due to configuration error", slog.Any("error", err))
		return nil
	}
	if !cfg.Enabled {
		logger.Info("content fetching disabled")
		return nil
	}

	logger.Info("content fetching enabled", slog.Duration("timeout", cfg.Timeout))
	return fetcher.NewReadabilityFetcher(cfg)
}

func getVersion() string {
	if version := os.Getenv("VERSION"); version != "" {
		return version
	}
	return "dev"
}

// runServer starts the HTTP server and blocks until a shutdown signal.
func runServer(logger *slog.Logger, handler http.Handler) {
	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", getVersion()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
