package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"socialstats/internal/testutil"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(maxRetries int) (*Client, *[]time.Duration) {
	c := NewClientWithOptions(Options{
		Timeout:     2 * time.Second,
		MaxRetries:  maxRetries,
		BackoffBase: 2,
	}, &testutil.MockLogger{}, &testutil.MockMetrics{})
	var sleeps []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return c, &sleeps
}

func TestFetchJSON_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		assert.Equal(t, "42", r.URL.Query().Get("id"))
		_, _ = w.Write([]byte(`{"data":{"count":7}}`))
	}))
	defer ts.Close()

	c, sleeps := newTestClient(3)
	body, err := c.FetchJSON(context.Background(), Request{
		URL:     ts.URL + "/users",
		Headers: map[string]string{"Authorization": "Bearer abc"},
		Query:   url.Values{"id": {"42"}},
	})
	require.NoError(t, err)
	n, ok := body.Int("data.count")
	assert.True(t, ok)
	assert.Equal(t, 7, n)
	assert.Empty(t, *sleeps)
}

func TestFetchJSON_503ThenSuccess(t *testing.T) {
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"ok":false}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	c, sleeps := newTestClient(3)
	body, err := c.FetchJSON(context.Background(), Request{URL: ts.URL})
	require.NoError(t, err)
	assert.True(t, body.Get("ok").Bool())
	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *sleeps)
}

func TestFetchJSON_429Exhausted(t *testing.T) {
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c, sleeps := newTestClient(3)
	_, err := c.FetchJSON(context.Background(), Request{URL: ts.URL, Name: "test endpoint"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRetriesExhausted))

	var ferr *Error
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, 3, ferr.Attempts)
	assert.Equal(t, http.StatusTooManyRequests, ferr.StatusCode)
	assert.Contains(t, err.Error(), "test endpoint")
	assert.Equal(t, int32(3), attempts.Load())
	assert.Len(t, *sleeps, 2)
}

func TestFetchJSON_RetryAfterOverridesBackoff(t *testing.T) {
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c, sleeps := newTestClient(3)
	_, err := c.FetchJSON(context.Background(), Request{URL: ts.URL})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Second}, *sleeps)
}

func TestFetchJSON_ClientErrorNotRetried(t *testing.T) {
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid OAuth token"}`))
	}))
	defer ts.Close()

	c, _ := newTestClient(3)
	_, err := c.FetchJSON(context.Background(), Request{URL: ts.URL})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRetriesExhausted))
	assert.Contains(t, err.Error(), "Invalid OAuth token")
	assert.Equal(t, int32(1), attempts.Load())
}

func TestFetchJSON_RateLimitBodyRetried(t *testing.T) {
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			_, _ = w.Write([]byte(`{"error":{"error_code":6,"error_msg":"Too many requests per second"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"response":{"count":10}}`))
	}))
	defer ts.Close()

	c, sleeps := newTestClient(3)
	body, err := c.FetchJSON(context.Background(), Request{URL: ts.URL, RateLimitCodes: []int{6, 29}})
	require.NoError(t, err)
	n, _ := body.Int("response.count")
	assert.Equal(t, 10, n)
	assert.Len(t, *sleeps, 1)
}

func TestFetchJSON_RateLimitBodyExhausted(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"error_code":29,"error_msg":"Rate limit reached"}}`))
	}))
	defer ts.Close()

	c, _ := newTestClient(2)
	_, err := c.FetchJSON(context.Background(), Request{URL: ts.URL, RateLimitCodes: []int{6, 29}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRetriesExhausted))
	assert.True(t, errors.Is(err, ErrRateLimited))
}

func TestFetchJSON_OtherErrorCodeNotRetried(t *testing.T) {
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		_, _ = w.Write([]byte(`{"error":{"error_code":5,"error_msg":"User authorization failed"}}`))
	}))
	defer ts.Close()

	c, _ := newTestClient(3)
	body, err := c.FetchJSON(context.Background(), Request{URL: ts.URL, RateLimitCodes: []int{6, 29}})
	require.NoError(t, err)
	assert.Equal(t, int64(5), body.Get("error.error_code").Int())
	assert.Equal(t, int32(1), attempts.Load())
}

func TestFetchJSON_InvalidJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer ts.Close()

	c, sleeps := newTestClient(3)
	_, err := c.FetchJSON(context.Background(), Request{URL: ts.URL})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidJSON))
	assert.Empty(t, *sleeps)
}

func TestFetchJSON_ErrorHidesQuery(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	c, _ := newTestClient(1)
	_, err := c.FetchJSON(context.Background(), Request{
		URL:   ts.URL + "/method/groups.getById",
		Query: url.Values{"access_token": {"secret-token"}},
	})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-token")
	assert.Contains(t, err.Error(), "/method/groups.getById")
}

func TestFetchJSON_PostMethod(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{"access_token":"tok"}`))
	}))
	defer ts.Close()

	c, _ := newTestClient(1)
	body, err := c.FetchJSON(context.Background(), Request{Method: http.MethodPost, URL: ts.URL})
	require.NoError(t, err)
	assert.Equal(t, "tok", body.Get("access_token").String())
}

func TestFetchJSON_CanceledContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c, _ := newTestClient(3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.FetchJSON(ctx, Request{URL: ts.URL})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBackoff_Exponential(t *testing.T) {
	c, _ := newTestClient(3)
	assert.Equal(t, 2*time.Second, c.backoff(1))
	assert.Equal(t, 4*time.Second, c.backoff(2))
	assert.Equal(t, 8*time.Second, c.backoff(3))
}

func TestBackoff_JitterBounds(t *testing.T) {
	c, _ := newTestClient(3)
	c.opts.Jitter = true
	for i := 0; i < 50; i++ {
		d := c.backoff(2)
		assert.GreaterOrEqual(t, d, 3200*time.Millisecond)
		assert.LessOrEqual(t, d, 4800*time.Millisecond)
	}
}

func TestAsCount(t *testing.T) {
	body := Body(`{"a":12,"b":"34","c":-1,"d":1.5,"e":"x","f":null}`)
	tests := []struct {
		path string
		want int
		ok   bool
	}{
		{"a", 12, true},
		{"b", 34, true},
		{"c", 0, false},
		{"d", 0, false},
		{"e", 0, false},
		{"f", 0, false},
		{"missing", 0, false},
	}
	for _, tt := range tests {
		n, ok := body.Int(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.want, n, tt.path)
	}
}
