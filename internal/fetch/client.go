package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"slices"
	"socialstats/internal/providers"
	"socialstats/internal/structures"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	maxBodySize      = 8 << 20 // 8 MB
	maxRetryAfter    = 30 * time.Second
	defaultUserAgent = "socialstats/1.0"
)

// Fetcher is the GET-with-retry primitive the adapters are built on.
type Fetcher interface {
	FetchJSON(ctx context.Context, req Request) (Body, error)
}

type Request struct {
	// Method defaults to GET.
	Method  string
	URL     string
	Headers map[string]string
	Query   url.Values
	// Name is used in errors and logs instead of the URL, which may embed tokens.
	Name string
	// RateLimitCodes are error.error_code values that mark an HTTP 200 body as a
	// rate-limit rejection.
	RateLimitCodes []int
}

func (r Request) endpoint(u *url.URL) string {
	if r.Name != "" {
		return r.Name
	}
	return u.Host + u.Path
}

type Options struct {
	Timeout           time.Duration
	MaxRetries        int
	BackoffBase       float64
	Jitter            bool
	RequestsPerSecond float64
}

type Client struct {
	httpClient *http.Client
	opts       Options
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	sleep      func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewClient(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) *Client {
	return NewClientWithOptions(Options{
		Timeout:           conf.Fetch.Timeout,
		MaxRetries:        conf.Fetch.MaxRetries,
		BackoffBase:       conf.Fetch.BackoffBase,
		Jitter:            conf.Fetch.Jitter,
		RequestsPerSecond: conf.Fetch.RequestsPerSecond,
	}, logger, metrics)
}

func NewClientWithOptions(opts Options, logger providers.Logger, metrics providers.MetricsProviderInterface) *Client {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.BackoffBase < 1 {
		opts.BackoffBase = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     60 * time.Second,
			},
		},
		opts:     opts,
		logger:   logger,
		metrics:  metrics,
		sleep:    sleepContext,
		limiters: make(map[string]*rate.Limiter),
	}
}

// FetchJSON issues the request, retrying transport errors, retryable statuses
// and rate-limit bodies with exponential backoff. It fails with *Error.
func (c *Client) FetchJSON(ctx context.Context, req Request) (Body, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, &Error{Endpoint: req.Name, Err: fmt.Errorf("invalid url: %w", err)}
	}
	if len(req.Query) > 0 {
		q := u.Query()
		for k, vs := range req.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	endpoint := req.endpoint(u)
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var (
		lastErr    error
		lastStatus int
	)
	for attempt := 1; attempt <= c.opts.MaxRetries; attempt++ {
		if err := c.wait(ctx, u.Host); err != nil {
			return nil, &Error{Endpoint: endpoint, Attempts: attempt - 1, Err: err}
		}
		c.metrics.IncFetchAttempts(u.Host)
		c.logger.Debugf(providers.TypeFetch, "%s %s attempt %d/%d", method, endpoint, attempt, c.opts.MaxRetries)

		body, status, retryAfter, err := c.do(ctx, method, u, req)
		lastStatus = status
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !retryable(err) {
			c.metrics.IncFetchFailures(u.Host)
			return nil, &Error{Endpoint: endpoint, Attempts: attempt, StatusCode: status, Err: err}
		}
		if attempt == c.opts.MaxRetries {
			break
		}

		delay := c.backoff(attempt)
		if retryAfter > 0 && retryAfter < maxRetryAfter {
			delay = retryAfter
		}
		c.metrics.IncFetchRetries(u.Host)
		c.logger.Warnf(providers.TypeFetch, "%s failed (%s), retrying in %s", endpoint, err, delay)
		if err := c.sleep(ctx, delay); err != nil {
			c.metrics.IncFetchFailures(u.Host)
			return nil, &Error{Endpoint: endpoint, Attempts: attempt, StatusCode: status, Err: err}
		}
	}

	c.metrics.IncFetchFailures(u.Host)
	return nil, &Error{
		Endpoint:   endpoint,
		Attempts:   c.opts.MaxRetries,
		StatusCode: lastStatus,
		Err:        &exhaustedError{last: lastErr},
	}
}

func (c *Client) do(ctx context.Context, method string, u *url.URL, req Request) (Body, int, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, 0, 0, err
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", defaultUserAgent)
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// url.Error repeats the full URL, tokens included.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, 0, 0, transientError{err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, resp.StatusCode, 0, transientError{err}
	}

	if retryableStatus(resp.StatusCode) {
		return nil, resp.StatusCode, parseRetryAfter(resp.Header.Get("Retry-After")), &statusError{code: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, 0, permanentError{fmt.Errorf("%w%s", &statusError{code: resp.StatusCode}, apiMessage(data))}
	}
	if !gjson.ValidBytes(data) {
		return nil, resp.StatusCode, 0, permanentError{ErrInvalidJSON}
	}

	body := Body(data)
	if code := body.Get("error.error_code"); code.Exists() && slices.Contains(req.RateLimitCodes, int(code.Int())) {
		return nil, resp.StatusCode, 0, &rateLimitError{code: int(code.Int()), msg: body.Get("error.error_msg").String()}
	}
	return body, resp.StatusCode, 0, nil
}

func (c *Client) wait(ctx context.Context, host string) error {
	if c.opts.RequestsPerSecond <= 0 {
		return ctx.Err()
	}
	c.mu.Lock()
	limiter, ok := c.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(c.opts.RequestsPerSecond), 1)
		c.limiters[host] = limiter
	}
	c.mu.Unlock()
	return limiter.Wait(ctx)
}

// backoff returns BackoffBase^attempt seconds, with +/-20% jitter when enabled.
func (c *Client) backoff(attempt int) time.Duration {
	wait := time.Duration(math.Pow(c.opts.BackoffBase, float64(attempt)) * float64(time.Second))
	if c.opts.Jitter {
		jitter := float64(wait) * 0.2
		wait = time.Duration(float64(wait) - jitter + rand.Float64()*2*jitter)
	}
	return wait
}

type transientError struct{ error }

func (e transientError) Unwrap() error { return e.error }

type permanentError struct{ error }

func (e permanentError) Unwrap() error { return e.error }

func retryable(err error) bool {
	var perm permanentError
	if errors.As(err, &perm) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// apiMessage extracts a short error description from common API error bodies.
func apiMessage(data []byte) string {
	if !gjson.ValidBytes(data) {
		return ""
	}
	for _, path := range []string{"message", "description", "error.message", "error.error_msg", "title", "detail"} {
		if r := gjson.GetBytes(data, path); r.Type == gjson.String && r.String() != "" {
			msg := strings.TrimSpace(r.String())
			if len(msg) > 200 {
				msg = msg[:200] + "..."
			}
			return ": " + msg
		}
	}
	return ""
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
