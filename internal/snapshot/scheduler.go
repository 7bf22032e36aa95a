package snapshot

import (
	"context"
	"errors"
	"socialstats/internal/models"
	"socialstats/internal/providers"
	"socialstats/internal/structures"
	"sync"
	"time"

	"github.com/roylee0704/gron"
)

// ErrRunInProgress is returned by a Runner that refuses to start while another
// run, scheduled or manual, is still going.
var ErrRunInProgress = errors.New("collection already in progress")

// Runner produces and persists one snapshot.
type Runner interface {
	Run(ctx context.Context) (*models.Snapshot, error)
}

type SchedulerInterface interface {
	Init(ctx context.Context)
	Stop()
}

// Scheduler triggers a collection run every schedule.interval in daemon mode.
// Overlapping ticks are skipped rather than queued.
type Scheduler struct {
	config *structures.Config
	logger providers.Logger
	runner Runner
	cron   *gron.Cron
	opsMu  sync.Mutex
}

func (s *Scheduler) Init(ctx context.Context) {
	s.cron = gron.New()
	interval := s.config.Schedule.Interval

	s.cron.AddFunc(gron.Every(interval), func() {
		s.tick(ctx)
	})

	s.cron.Start()
	s.logger.Infof(providers.TypeApp, "Collector scheduled every %s", interval)
}

func (s *Scheduler) tick(ctx context.Context) {
	if !s.opsMu.TryLock() {
		s.logger.Warnf(providers.TypeApp, "Previous collection still running, skipping tick")
		return
	}
	defer s.opsMu.Unlock()

	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	_, err := s.runner.Run(ctx)
	switch {
	case errors.Is(err, ErrRunInProgress):
		s.logger.Warnf(providers.TypeApp, "Manual collection still running, skipping tick")
		return
	case err != nil:
		s.logger.Errorf(providers.TypeApp, "Scheduled collection failed: %s", err)
		return
	}
	s.logger.Infof(providers.TypeApp, "Scheduled collection finished in %s", time.Since(start).Round(time.Millisecond))
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	// wait for a run in flight
	s.opsMu.Lock()
	s.opsMu.Unlock()
}

func NewScheduler(config *structures.Config, logger providers.Logger, runner Runner) SchedulerInterface {
	return &Scheduler{
		config: config,
		logger: logger,
		runner: runner,
	}
}
