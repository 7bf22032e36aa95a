package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"socialstats/internal/models"
	"socialstats/internal/services"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCollector struct {
	status services.RunStatus
}

func (m *mockCollector) Run(_ context.Context) (*models.Snapshot, error) {
	return models.DefaultSnapshot(), nil
}

func (m *mockCollector) Status() services.RunStatus { return m.status }

func getHealth(t *testing.T, status services.RunStatus) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	hc := NewHealthController(&mockCollector{status: status})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	hc.Health(rr, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return rr, resp
}

func TestHealth_ReturnsOK(t *testing.T) {
	rr, resp := getHealth(t, services.RunStatus{
		Runs:         3,
		LastRun:      time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		LastDuration: 1500 * time.Millisecond,
		Diagnostics:  2,
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "ok", resp["status"])
	assert.Contains(t, resp, "uptime")
	assert.Contains(t, resp, "uptime_seconds")
	assert.Equal(t, float64(3), resp["runs"])
	assert.Equal(t, "2025-01-02T03:04:05Z", resp["last_run"])
	assert.Equal(t, "1.5s", resp["last_duration"])
	assert.Equal(t, float64(2), resp["diagnostics"])
	assert.NotContains(t, resp, "last_error")
}

func TestHealth_StartingBeforeFirstRun(t *testing.T) {
	rr, resp := getHealth(t, services.RunStatus{Running: true})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "starting", resp["status"])
	assert.Equal(t, true, resp["running"])
	assert.Nil(t, resp["last_run"])
}

func TestHealth_DegradedAfterSaveFailure(t *testing.T) {
	rr, resp := getHealth(t, services.RunStatus{Runs: 1, LastRun: time.Now(), LastError: "persist snapshot: disk full"})

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "degraded", resp["status"])
	assert.Equal(t, "persist snapshot: disk full", resp["last_error"])
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	hc := NewHealthController(&mockCollector{})

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rr := httptest.NewRecorder()
	hc.Health(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"zero", 0, "0h0m0s"},
		{"one minute", 60 * time.Second, "0h1m0s"},
		{"one hour", time.Hour, "1h0m0s"},
		{"mixed", time.Hour + time.Minute + time.Second, "1h1m1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatDuration(tt.duration))
		})
	}
}
