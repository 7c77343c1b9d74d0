package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gentcache/internal/cache"
	"gentcache/internal/infra/adapter/persistence/sqlite"
	"gentcache/internal/infra/db"
	"gentcache/internal/infra/fetcher"
	"gentcache/internal/infra/notifier"
	"gentcache/internal/infra/opendata"
	"gentcache/internal/infra/worker"
	"gentcache/internal/observability/logging"
	"gentcache/internal/usecase/notify"
)

func main() {
	_ = godotenv.Load()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workerMetrics := worker.NewWorkerMetrics()
	workerMetrics.MustRegister()
	cfg, err := worker.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("refresh_schedule", cfg.RefreshSchedule),
		slog.String("timezone", cfg.Timezone),
		slog.Int("notify_max_concurrent", cfg.NotifyMaxConcurrent),
		slog.Duration("refresh_timeout", cfg.RefreshTimeout),
		slog.Int("health_port", cfg.HealthPort))

	notifyService := setupNotifications(logger, cfg.NotifyMaxConcurrent)

	healthAddr := fmt.Sprintf(":%d", cfg.HealthPort)
	healthServer := worker.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	scheduler := setupScheduler(logger, database, cfg, workerMetrics, notifyService)
	if err := scheduler.Start(ctx); err != nil {
		logger.Error("failed to start scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", cfg.RefreshSchedule),
		slog.String("timezone", cfg.Timezone))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down worker")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Error("scheduler stop failed", slog.Any("error", err))
	}
	if err := notifyService.Shutdown(shutdownCtx); err != nil {
		logger.Error("notification service shutdown failed", slog.Any("error", err))
	}
	cancel()
	logger.Info("worker stopped")
}

// initDatabase opens the SQLite cache database and applies migrations. The
// worker and API share one database file; migrations are idempotent so
// either process may run them first.
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

// setupNotifications builds the notification service from the configured
// channels. With no channels enabled the service still runs; alerts are
// counted but delivered nowhere.
func setupNotifications(logger *slog.Logger, maxConcurrent int) notify.Service {
	var channels []notify.Channel

	slackConfig := loadSlackConfig(logger)
	if slackConfig.Enabled {
		channels = append(channels, notify.NewSlackChannel(slackConfig))
		logger.Info("Slack channel initialized")
	} else {
		logger.Info("Slack channel disabled")
	}

	service := notify.NewService(channels, maxConcurrent)
	logger.Info("notification service initialized",
		slog.Int("channels", len(channels)),
		slog.Int("max_concurrent", maxConcurrent))
	return service
}

// setupScheduler wires the caching repositories and the occupancy watcher
// into the refresh scheduler.
func setupScheduler(
	logger *slog.Logger,
	database *sql.DB,
	cfg *worker.WorkerConfig,
	workerMetrics *worker.WorkerMetrics,
	notifyService notify.Service,
) *worker.Scheduler {
	client := opendata.NewClient(opendata.DefaultConfig())

	articles := cache.NewArticleCache(sqlite.NewArticleStore(database), client)
	if contentFetcher := buildContentFetcher(logger); contentFetcher != nil {
		articles = articles.WithContentFetcher(contentFetcher)
	}
	carParks := cache.NewCarParkCache(sqlite.NewCarParkStore(database), client)
	studyLocations := cache.NewStudyLocationCache(sqlite.NewStudyLocationStore(database), client)

	watcher := notify.NewOccupancyWatcher(notifyService)

	return worker.NewScheduler(cfg, logger, workerMetrics, articles, carParks, studyLocations, watcher)
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

// loadSlackConfig loads and validates the Slack webhook configuration.
//
// Environment variables:
//   - SLACK_ENABLED: "true" enables Slack notifications (default: false)
//   - SLACK_WEBHOOK_URL: webhook URL, must be https on hooks.slack.com
func loadSlackConfig(logger *slog.Logger) notifier.SlackConfig {
	if os.Getenv("SLACK_ENABLED") != "true" {
		return notifier.SlackConfig{Enabled: false}
	}

	webhookURL := os.Getenv("SLACK_WEBHOOK_URL")
	if webhookURL == "" {
		logger.Warn("Slack webhook URL is empty, disabling notifications")
		return notifier.SlackConfig{Enabled: false}
	}

	u, err := url.Parse(webhookURL)
	if err != nil {
		logger.Warn("invalid Slack webhook URL, disabling notifications", slog.Any("error", err))
		return notifier.SlackConfig{Enabled: false}
	}
	if u.Scheme != "https" {
		logger.Warn("Slack webhook URL must use HTTPS, disabling notifications")
		return notifier.SlackConfig{Enabled: false}
	}
	if u.Host != "hooks.slack.com" {
		logger.Warn("invalid Slack webhook host, disabling notifications", slog.String("host", u.Host))
		return notifier.SlackConfig{Enabled: false}
	}
	if !strings.HasPrefix(u.Path, "/services/") {
		logger.Warn("invalid Slack webhook path, disabling notifications", slog.String("path", u.Path))
		return notifier.SlackConfig{Enabled: false}
	}

	return notifier.SlackConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    30 * time.Second,
	}
}
