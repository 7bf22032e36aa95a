// Package adapters turns platform API responses into snapshot values.
//
// Every adapter reports failures as diagnostics on its Result and never
// returns an error: a missing credential or a failed call leaves the
// corresponding value absent so the previous snapshot value survives.
package adapters

import (
	"context"
	"fmt"
	"socialstats/internal/models"
)

type Adapter interface {
	Name() string
	Collect(ctx context.Context) Result
}

// Result is what a single adapter produced in one run. A nil Videos or Live
// means the value is absent (unconfigured or failed), not empty.
type Result struct {
	Adapter     string
	Followers   map[string]int
	Videos      *[]models.VideoSummary
	Live        *models.LiveStatus
	Diagnostics models.Diagnostics
}

func newResult(adapter string) Result {
	return Result{
		Adapter:     adapter,
		Followers:   map[string]int{},
		Diagnostics: models.Diagnostics{},
	}
}

func (r *Result) fail(key, format string, args ...interface{}) {
	r.Diagnostics[key] = fmt.Sprintf(format, args...)
}

func (r *Result) setFollowers(platform string, n int) {
	r.Followers[platform] = n
}

func (r *Result) setVideos(videos []models.VideoSummary) {
	r.Videos = &videos
}

func (r *Result) setLive(live models.LiveStatus) {
	r.Live = &live
}

func (r Result) Failed() bool {
	return len(r.Diagnostics) > 0
}

// generalDiagnostic is implemented by adapters whose unexpected failures are
// reported under their own key instead of <name>_error.
type generalDiagnostic interface {
	GeneralDiagnostic() string
}

// safeCollect converts a panic inside an adapter into a diagnostic so one
// broken adapter cannot take the run down.
func safeCollect(ctx context.Context, a Adapter) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			key := a.Name() + "_error"
			if g, ok := a.(generalDiagnostic); ok {
				key = g.GeneralDiagnostic()
			}
			res = newResult(a.Name())
			res.fail(key, "Unexpected error in %s adapter: %v", a.Name(), p)
		}
	}()
	return a.Collect(ctx)
}

// Run collects from a single adapter, guarding against panics.
func Run(ctx context.Context, a Adapter) Result {
	return safeCollect(ctx, a)
}
