package internal

import (
	"context"
	"fmt"
	"net/http"
	"socialstats/internal/controllers"
	"socialstats/internal/providers"
	"socialstats/internal/services"
	"socialstats/internal/snapshot"
	"socialstats/internal/structures"
	"strconv"
	"time"
)

type App struct {
	WebServer *http.Server

	conf       *structures.Config
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	collector  services.CollectorServiceInterface
	scheduler  snapshot.SchedulerInterface
	manualRuns *controllers.RunController
}

func NewApp(healthController *controllers.HealthController, runController *controllers.RunController, collector services.CollectorServiceInterface, scheduler snapshot.SchedulerInterface, conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface) *App {
	// Inner mux: API routes
	apiMux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		apiMux.Handle(route.Url, route.Handler)
	}

	// Wrap API routes with metrics middleware
	instrumentedAPI := providers.MetricsMiddleware(metrics, router.Paths(), apiMux)

	// Outer mux: infrastructure + instrumented API
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", metrics.Handler())
	}
	mux.Handle("/", instrumentedAPI)

	return &App{
		WebServer: &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		conf:       conf,
		logger:     logger,
		metrics:    metrics,
		collector:  collector,
		scheduler:  scheduler,
		manualRuns: runController,
	}
}

// Run performs a single collection, or in daemon mode serves HTTP and
// collects on schedule until ctx is cancelled. The returned error is the
// last failed save; callers decide whether that changes the exit status.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof(providers.TypeApp, "Starting %s", a.conf.AppName)
	if a.conf.Daemon {
		return a.serve(ctx)
	}
	return a.runOnce(ctx)
}

func (a *App) runOnce(ctx context.Context) error {
	_, err := a.collector.Run(ctx)

	if path := a.conf.Metrics.Textfile; a.conf.Metrics.Enabled && path != "" {
		if werr := a.metrics.WriteTextfile(path); werr != nil {
			a.logger.Errorf(providers.TypeApp, "Error writing metrics textfile %s: %s", path, werr)
		}
	}
	return err
}

func (a *App) serve(ctx context.Context) error {
	// first snapshot right away, the schedule takes over afterwards;
	// a failed save is logged and shows up on /health
	_ = a.runOnce(ctx)

	a.scheduler.Init(ctx)

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Infof(providers.TypeApp, "Listening HTTP clients on %s", a.WebServer.Addr)
		if err := a.WebServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		a.scheduler.Stop()
		a.stopManualRuns()
		return fmt.Errorf("server error: %w", err)
	}

	a.scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.WebServer.Shutdown(shutdownCtx); err != nil {
		a.stopManualRuns()
		return err
	}
	a.stopManualRuns()
	a.logger.Infof(providers.TypeApp, "gracefully stopped")

	if status := a.collector.Status(); status.LastError != "" {
		return fmt.Errorf("last collection failed: %s", status.LastError)
	}
	return nil
}

// stopManualRuns cancels a POST /run collection in flight and waits for it,
// so the process never exits halfway through one.
func (a *App) stopManualRuns() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.manualRuns.Shutdown(ctx); err != nil {
		a.logger.Warnf(providers.TypeApp, "Manual collection did not stop in time: %s", err)
	}
}
