package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxResponseSize is the maximum allowed response size from a platform API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// HTTPConfig controls timeouts, retries and rate limiting of platform calls.
type HTTPConfig struct {
	// Timeout bounds a single attempt
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt
	MaxRetries int
	// RetryBackoff is the delay before the first retry, doubled each retry
	RetryBackoff time.Duration
	// RateLimit is the sustained requests per second; zero disables limiting
	RateLimit float64
	// Burst is the limiter bucket size
	Burst int
}

// DefaultHTTPConfig returns the HTTP settings used when none are configured.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:      30 * time.Second,
		MaxRetries:   2,
		RetryBackoff: 500 * time.Millisecond,
		RateLimit:    5,
		Burst:        5,
	}
}

func (c *HTTPConfig) applyDefaults() {
	d := DefaultHTTPConfig()
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = d.RetryBackoff
	}
	if c.RateLimit > 0 && c.Burst <= 0 {
		c.Burst = 1
	}
}

// apiRequest describes one platform call.
type apiRequest struct {
	method  string
	url     string
	body    []byte
	headers map[string]string
}

// apiResponse is a fully read platform response.
type apiResponse struct {
	status int
	header http.Header
	body   []byte
}

// transport sends platform requests with retry, backoff and rate limiting.
// 429 responses are retried for every method. Network errors and 5xx
// responses are retried only for idempotent methods: a POST may already
// have been committed by the server.
type transport struct {
	client  *http.Client
	limiter *rate.Limiter
	config  HTTPConfig
	logger  *zap.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

func newTransport(cfg HTTPConfig, logger *zap.Logger) *transport {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &transport{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		config: cfg,
		logger: logger,
		sleep:  sleepContext,
	}
	if cfg.RateLimit > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst)
	}
	return t
}

// do sends req. A non-nil response is returned for every status the server
// answered with; the caller maps statuses to errors.
func (t *transport) do(ctx context.Context, req apiRequest) (*apiResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= t.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := t.backoff(attempt)
			t.logger.Debug("retrying platform request",
				zap.String("method", req.method),
				zap.String("url", redactURL(req.url)),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			if err := t.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := t.once(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !idempotent(req.method) {
				return nil, err
			}
			lastErr = err
			continue
		}
		if !retryableStatus(req.method, resp.status) || attempt == t.config.MaxRetries {
			return resp, nil
		}
		lastErr = fmt.Errorf("HTTP %d", resp.status)
	}
	return nil, lastErr
}

func (t *transport) once(ctx context.Context, req apiRequest) (*apiResponse, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &apiResponse{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

func (t *transport) backoff(attempt int) time.Duration {
	return time.Duration(float64(t.config.RetryBackoff) * math.Pow(2, float64(attempt-1)))
}

func retryableStatus(method string, status int) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return status >= http.StatusInternalServerError && idempotent(method)
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// errorSnippet returns the start of an error body for messages.
func errorSnippet(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

var errEmptyBody = errors.New("empty response body")

// decodeBody unmarshals a JSON response body into out.
func decodeBody(body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return errEmptyBody
	}
	return json.Unmarshal(body, out)
}

// redactURL strips credentials from a URL before it is logged.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "invalid-url"
	}
	q := u.Query()
	for _, k := range []string{"consumer_key", "consumer_secret"} {
		if q.Has(k) {
			q.Set(k, "REDACTED")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
