package controllers

import (
	"fmt"
	"net/http"
	"socialstats/internal/services"
	"time"

	json "github.com/goccy/go-json"
)

type HealthController struct {
	service   services.CollectorServiceInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Running       bool    `json:"running"`
	Runs          int64   `json:"runs"`
	LastRun       *string `json:"last_run"`
	LastDuration  string  `json:"last_duration"`
	LastError     string  `json:"last_error,omitempty"`
	Diagnostics   int     `json:"diagnostics"`
}

// Health reports "ok" once a run has been saved, "degraded" when the last save
// failed and "starting" before the first run finishes.
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	status := hc.service.Status()
	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Running:       status.Running,
		Runs:          status.Runs,
		LastDuration:  status.LastDuration.Round(time.Millisecond).String(),
		LastError:     status.LastError,
		Diagnostics:   status.Diagnostics,
	}
	if !status.LastRun.IsZero() {
		ts := status.LastRun.UTC().Format(time.RFC3339)
		resp.LastRun = &ts
	}

	code := http.StatusOK
	switch {
	case status.LastError != "":
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	case status.Runs == 0:
		resp.Status = "starting"
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(service services.CollectorServiceInterface) *HealthController {
	return &HealthController{
		service:   service,
		startTime: time.Now(),
	}
}
