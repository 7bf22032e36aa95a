package controllers

import (
	"context"
	"errors"
	"net/http"
	"socialstats/internal/providers"
	"socialstats/internal/services"
	"sync"
)

// RunController lets an operator trigger a collection outside the schedule.
// Manual runs outlive their request but not the daemon: Shutdown cancels them
// and waits for them to return.
type RunController struct {
	service services.CollectorServiceInterface
	logger  providers.Logger

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewRunController(service services.CollectorServiceInterface, logger providers.Logger) *RunController {
	ctx, cancel := context.WithCancel(context.Background())
	return &RunController{
		service: service,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// TriggerRun starts a run in the background and answers 202, or 409 when a
// run is already in flight, or 503 once the daemon is shutting down.
func (rc *RunController) TriggerRun(w http.ResponseWriter, _ *http.Request) {
	if rc.service.Status().Running {
		http.Error(w, "Collection already in progress", http.StatusConflict)
		return
	}

	rc.mu.Lock()
	if rc.closed {
		rc.mu.Unlock()
		http.Error(w, "Shutting down", http.StatusServiceUnavailable)
		return
	}
	rc.wg.Add(1)
	rc.mu.Unlock()

	go func() {
		defer rc.wg.Done()
		_, err := rc.service.Run(rc.ctx)
		switch {
		case errors.Is(err, services.ErrRunInProgress):
			rc.logger.Infof(providers.TypeHTTP, "Manual collection skipped, another run started first")
		case err != nil:
			rc.logger.Errorf(providers.TypeHTTP, "Manual collection failed: %s", err)
		}
	}()

	w.WriteHeader(http.StatusAccepted)
}

// Shutdown refuses new manual runs, cancels the one in flight and waits for
// it until ctx expires.
func (rc *RunController) Shutdown(ctx context.Context) error {
	rc.mu.Lock()
	rc.closed = true
	rc.mu.Unlock()
	rc.cancel()

	done := make(chan struct{})
	go func() {
		rc.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
