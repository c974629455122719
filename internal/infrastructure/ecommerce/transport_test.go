package ecommerce

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHTTPConfig() HTTPConfig {
	return HTTPConfig{Timeout: 5 * time.Second, MaxRetries: 2, RetryBackoff: time.Millisecond}
}

func TestHTTPConfig_ApplyDefaults(t *testing.T) {
	cfg := HTTPConfig{MaxRetries: -1, RateLimit: 2}
	cfg.applyDefaults()

	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Zero(t, cfg.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)
	assert.Equal(t, 1, cfg.Burst)
}

func TestTransport_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	tr := newTransport(testHTTPConfig(), nil)
	resp, err := tr.do(context.Background(), apiRequest{method: http.MethodGet, url: server.URL})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestTransport_ReturnsLastServerErrorResponse(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	tr := newTransport(testHTTPConfig(), nil)
	resp, err := tr.do(context.Background(), apiRequest{method: http.MethodGet, url: server.URL})

	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.status)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestTransport_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	tr := newTransport(testHTTPConfig(), nil)
	resp, err := tr.do(context.Background(), apiRequest{method: http.MethodPost, url: server.URL, body: []byte(`{}`)})

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTransport_DoesNotRetryCreateOnServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer server.Close()

	tr := newTransport(testHTTPConfig(), nil)
	resp, err := tr.do(context.Background(), apiRequest{method: http.MethodPost, url: server.URL, body: []byte(`{}`)})

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTransport_RetriesCreateWhenThrottled(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	tr := newTransport(testHTTPConfig(), nil)
	resp, err := tr.do(context.Background(), apiRequest{method: http.MethodPost, url: server.URL, body: []byte(`{}`)})

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.status)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTransport_DoesNotRetryCreateOnNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	var sleeps int
	tr := newTransport(testHTTPConfig(), nil)
	tr.sleep = func(context.Context, time.Duration) error {
		sleeps++
		return nil
	}
	_, err := tr.do(context.Background(), apiRequest{method: http.MethodPost, url: url, body: []byte(`{}`)})

	assert.Error(t, err)
	assert.Zero(t, sleeps)
}

func TestTransport_NetworkErrorAfterRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	tr := newTransport(testHTTPConfig(), nil)
	_, err := tr.do(context.Background(), apiRequest{method: http.MethodGet, url: url})

	assert.Error(t, err)
}

func TestTransport_StopsOnCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	tr := newTransport(HTTPConfig{Timeout: time.Second, MaxRetries: 5, RetryBackoff: time.Hour}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	tr.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return sleepContext(ctx, d)
	}

	_, err := tr.do(ctx, apiRequest{method: http.MethodGet, url: server.URL})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestTransport_Backoff(t *testing.T) {
	tr := newTransport(HTTPConfig{RetryBackoff: 100 * time.Millisecond}, nil)
	assert.Equal(t, 100*time.Millisecond, tr.backoff(1))
	assert.Equal(t, 200*time.Millisecond, tr.backoff(2))
	assert.Equal(t, 400*time.Millisecond, tr.backoff(3))
}

func TestRedactURL(t *testing.T) {
	got := redactURL("https://shop.test/wp-json/wc/v3/products?consumer_key=ck_1&consumer_secret=cs_1&page=2")
	assert.NotContains(t, got, "ck_1")
	assert.NotContains(t, got, "cs_1")
	assert.Contains(t, got, "page=2")
}
