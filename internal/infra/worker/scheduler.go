package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"gentcache/internal/domain/entity"
	"gentcache/internal/observability/metrics"
)

// Refresher refreshes one cached collection from the remote API.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// CarParkSource is the car park cache surface the scheduler needs: a
// refresh plus a snapshot read so the occupancy watcher can diff
// consecutive refreshes.
type CarParkSource interface {
	Refresher
	List(ctx context.Context) ([]*entity.CarPark, error)
}

// OccupancyObserver ingests car park snapshots after each refresh.
type OccupancyObserver interface {
	Observe(ctx context.Context, parks []*entity.CarPark)
}

// Scheduler drives periodic cache refreshes with a cron schedule. A run
// refreshes all three collections concurrently; per-collection failures
// are logged and counted but never stop the scheduler.
type Scheduler struct {
	cfg     *WorkerConfig
	logger  *slog.Logger
	metrics *WorkerMetrics

	articles       Refresher
	carParks       CarParkSource
	studyLocations Refresher
	watcher        OccupancyObserver

	cron *cron.Cron
}

// NewScheduler creates a scheduler over the three caches. watcher may be
// nil when occupancy alerts are disabled.
func NewScheduler(
	cfg *WorkerConfig,
	logger *slog.Logger,
	workerMetrics *WorkerMetrics,
	articles Refresher,
	carParks CarParkSource,
	studyLocations Refresher,
	watcher OccupancyObserver,
) *Scheduler {
	return &Scheduler{
		cfg:            cfg,
		logger:         logger,
		metrics:        workerMetrics,
		articles:       articles,
		carParks:       carParks,
		studyLocations: studyLocations,
		watcher:        watcher,
	}
}

// Start schedules the refresh job and launches the cron loop. The first
// run fires immediately so a fresh deployment does not serve a cold cache
// until the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	location, err := time.LoadLocation(s.cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", s.cfg.Timezone, err)
	}

	// A slow run (RefreshTimeout may exceed the schedule interval) must not
	// stack a second run on top of it.
	s.cron = cron.New(
		cron.WithLocation(location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := s.cron.AddFunc(s.cfg.RefreshSchedule, func() {
		s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("schedule refresh job: %w", err)
	}

	s.logger.Info("refresh scheduler starting",
		slog.String("schedule", s.cfg.RefreshSchedule),
		slog.String("timezone", s.cfg.Timezone))

	go s.RunOnce(ctx)
	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for a running job to finish or for
// ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}

	s.logger.Info("refresh scheduler stopping")
	stopCtx := s.cron.Stop()

	select {
	case <-stopCtx.Done():
		s.logger.Info("refresh scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("refresh scheduler stop timeout")
		return ctx.Err()
	}
}

// RunOnce refreshes all collections within the configured deadline and
// feeds the resulting car park snapshot to the occupancy watcher. One
// collection failing does not abort the others.
func (s *Scheduler) RunOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.cfg.RefreshTimeout)
	defer cancel()

	start := time.Now()
	s.logger.Info("refresh run starting")

	var (
		mu          sync.Mutex
		errs        []error
		refreshed   int
		carParksErr error
	)
	record := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, err)
			return
		}
		refreshed++
	}

	var g errgroup.Group
	g.Go(func() error {
		metrics.RecordRefreshTrigger("articles", "scheduled")
		record(s.refreshCollection(runCtx, "articles", s.articles))
		return nil
	})
	g.Go(func() error {
		metrics.RecordRefreshTrigger("studylocations", "scheduled")
		record(s.refreshCollection(runCtx, "studylocations", s.studyLocations))
		return nil
	})
	g.Go(func() error {
		metrics.RecordRefreshTrigger("carparks", "scheduled")
		err := s.refreshCollection(runCtx, "carparks", s.carParks)
		mu.Lock()
		carParksErr = err
		mu.Unlock()
		record(err)
		return nil
	})
	_ = g.Wait()

	duration := time.Since(start)

	if carParksErr == nil && s.watcher != nil {
		s.observeOccupancy(runCtx)
	}

	s.metrics.RecordRunDuration(duration.Seconds())
	s.metrics.RecordCollectionsRefreshed(refreshed)

	if len(errs) > 0 {
		s.metrics.RecordRunResult("failure")
		s.logger.Error("refresh run finished with errors",
			slog.Duration("duration", duration),
			slog.Int("collections", refreshed),
			slog.Any("error", errors.Join(errs...)))
		return
	}

	s.metrics.RecordRunResult("success")
	s.metrics.RecordLastSuccess()
	s.logger.Info("refresh run complete",
		slog.Duration("duration", duration),
		slog.Int("collections", refreshed))
}

func (s *Scheduler) refreshCollection(ctx context.Context, name string, r Refresher) error {
	if err := r.Refresh(ctx); err != nil {
		s.logger.Warn("collection refresh failed",
			slog.String("collection", name),
			slog.Any("error", err))
		return fmt.Errorf("refresh %s: %w", name, err)
	}
	s.logger.Debug("collection refreshed", slog.String("collection", name))
	return nil
}

func (s *Scheduler) observeOccupancy(ctx context.Context) {
	parks, err := s.carParks.List(ctx)
	if err != nil {
		s.logger.Warn("occupancy snapshot read failed", slog.Any("error", err))
		return
	}
	s.watcher.Observe(ctx, parks)
}
