package services

import (
	"context"
	"fmt"
	"sort"
	"socialstats/internal/adapters"
	"socialstats/internal/models"
	"socialstats/internal/providers"
	"socialstats/internal/snapshot"
	"socialstats/internal/structures"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

// SnapshotCacheKey holds the encoded bytes of the last saved snapshot.
const SnapshotCacheKey = "snapshot:latest"

var ErrRunInProgress = snapshot.ErrRunInProgress

type CollectorServiceInterface interface {
	Run(ctx context.Context) (*models.Snapshot, error)
	Status() RunStatus
}

type RunStatus struct {
	Running      bool
	Runs         int64
	LastRun      time.Time
	LastDuration time.Duration
	LastError    string
	Diagnostics  int
}

type CollectorService struct {
	conf        *structures.Config
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	cache       providers.CacheProviderInterface
	fileManager snapshot.FileManagerInterface
	adapters    []adapters.Adapter

	running      atomic.Bool
	runs         atomic.Int64
	lastRun      atomic.Time
	lastDuration atomic.Duration
	lastError    atomic.String
	diagnostics  atomic.Int64
}

func NewCollectorService(
	conf *structures.Config,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
	cache providers.CacheProviderInterface,
	fileManager snapshot.FileManagerInterface,
	list []adapters.Adapter,
) CollectorServiceInterface {
	return &CollectorService{
		conf:        conf,
		logger:      logger,
		metrics:     metrics,
		cache:       cache,
		fileManager: fileManager,
		adapters:    list,
	}
}

// Run loads the previous snapshot, collects from every adapter, merges and
// saves exactly once. Adapter failures only show up as diagnostics; the only
// error returned is a failed save (or a concurrent run).
func (cs *CollectorService) Run(ctx context.Context) (*models.Snapshot, error) {
	if !cs.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer cs.running.Store(false)

	start := time.Now()
	if timeout := cs.conf.Collector.RunTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	path := cs.conf.Persistence.FilePath
	prev := cs.fileManager.Load(path)

	results := cs.collect(ctx)
	snap := Merge(prev, results, time.Now())
	cs.report(results, snap)

	err := cs.fileManager.Save(path, snap)
	duration := time.Since(start)
	cs.metrics.ObserveRunDuration(duration)
	cs.runs.Inc()
	cs.lastRun.Store(start)
	cs.lastDuration.Store(duration)
	cs.diagnostics.Store(int64(len(snap.DebugInfo)))

	if err != nil {
		cs.lastError.Store(err.Error())
		cs.logger.Errorf(providers.TypeApp, "Error while persisting snapshot to %s: %s", path, err)
		return snap, fmt.Errorf("persist snapshot: %w", err)
	}
	cs.lastError.Store("")

	if data, encErr := snap.Encode(); encErr == nil {
		cs.cache.Set(SnapshotCacheKey, data)
	}
	cs.logger.Infof(providers.TypeApp, "Snapshot saved to %s in %s with %d diagnostics", path, duration.Round(time.Millisecond), len(snap.DebugInfo))
	return snap, nil
}

// collect runs the adapters with bounded parallelism. Each goroutine owns its
// slot in results, and adapters never return errors, so the group never
// cancels its siblings.
func (cs *CollectorService) collect(ctx context.Context) []adapters.Result {
	results := make([]adapters.Result, len(cs.adapters))

	g, gctx := errgroup.WithContext(ctx)
	limit := cs.conf.Collector.Parallelism
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, a := range cs.adapters {
		i, a := i, a
		g.Go(func() error {
			cs.logger.Debugf(providers.TypeAdapter, "Collecting %s", a.Name())
			results[i] = adapters.Run(gctx, a)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (cs *CollectorService) report(results []adapters.Result, snap *models.Snapshot) {
	for _, res := range results {
		if !res.Failed() {
			continue
		}
		cs.metrics.IncAdapterFailures(res.Adapter)
		keys := make([]string, 0, len(res.Diagnostics))
		for key := range res.Diagnostics {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			cs.logger.Warnf(providers.TypeAdapter, "%s: %s", key, res.Diagnostics[key])
		}
	}
	for platform, n := range snap.FollowerCounts {
		cs.metrics.SetFollowers(platform, n)
	}
}

func (cs *CollectorService) Status() RunStatus {
	return RunStatus{
		Running:      cs.running.Load(),
		Runs:         cs.runs.Load(),
		LastRun:      cs.lastRun.Load(),
		LastDuration: cs.lastDuration.Load(),
		LastError:    cs.lastError.Load(),
		Diagnostics:  int(cs.diagnostics.Load()),
	}
}
