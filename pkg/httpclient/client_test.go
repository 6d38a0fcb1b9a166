package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/richxcame/fundraising/pkg/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:       attempts,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2,
		RetryableChecker:  isHTTPRetryable,
	}
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		timeout  []time.Duration
		expected time.Duration
	}{
		{"default timeout", nil, defaultTimeout},
		{"custom timeout", []time.Duration{5 * time.Second}, 5 * time.Second},
		{"zero timeout keeps default", []time.Duration{0}, defaultTimeout},
		{"first timeout wins", []time.Duration{2 * time.Second, 9 * time.Second}, 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient("https://rates.example.com/v6", tt.timeout...)
			require.NotNil(t, client)
			assert.Equal(t, "https://rates.example.com/v6", client.baseURL)
			assert.Equal(t, tt.expected, client.httpClient.Timeout)
		})
	}
}

func TestWithDefaultRetry(t *testing.T) {
	client := NewClient("https://rates.example.com").Apply(WithDefaultRetry())

	require.NotNil(t, client.retryConfig)
	assert.Equal(t, 3, client.retryConfig.MaxAttempts)
	assert.NotNil(t, client.retryConfig.RetryableChecker)
}

func TestRetryAttemptsConfig_TimeoutIsRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			time.Sleep(100 * time.Millisecond)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	retry := RetryAttemptsConfig(2, 10*time.Millisecond)
	client := NewClient(server.URL, 30*time.Millisecond).Apply(WithRetry(retry))

	ctx, cancel := context.WithTimeout(context.Background(), retry.Budget(30*time.Millisecond)+time.Second)
	defer cancel()
	_, err := client.Get(ctx, "/latest/EUR", nil)

	assert.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestWithRetryAttempts(t *testing.T) {
	client := NewClient("https://rates.example.com").Apply(WithRetryAttempts(5, 100*time.Millisecond))

	require.NotNil(t, client.retryConfig)
	assert.Equal(t, 5, client.retryConfig.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, client.retryConfig.InitialBackoff)
	assert.Equal(t, time.Second, client.retryConfig.MaxBackoff)
	assert.NotNil(t, client.retryConfig.RetryableChecker)
}

func TestClient_Get(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		headers    map[string]string
		wantErr    bool
		wantStatus int
	}{
		{name: "ok", status: http.StatusOK, body: `{"result":"success"}`},
		{name: "custom header", status: http.StatusOK, body: `{}`, headers: map[string]string{"X-Request-ID": "abc"}},
		{name: "not found", status: http.StatusNotFound, body: `{"error":"unknown-code"}`, wantErr: true, wantStatus: http.StatusNotFound},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, wantErr: true, wantStatus: http.StatusInternalServerError},
		{name: "no content", status: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/key/latest/EUR", r.URL.Path)
				for k, v := range tt.headers {
					assert.Equal(t, v, r.Header.Get(k))
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			body, err := NewClient(server.URL).Get(context.Background(), "/key/latest/EUR", tt.headers)
			if tt.wantErr {
				var httpErr *HTTPError
				require.True(t, errors.As(err, &httpErr))
				assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
				assert.Equal(t, tt.body, httpErr.Body)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.body, string(body))
		})
	}
}

func TestHTTPError_Error(t *testing.T) {
	err := &HTTPError{StatusCode: 503, Body: "maintenance"}
	assert.Equal(t, "HTTP 503: maintenance", err.Error())
}

func TestIsHTTPRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"500", &HTTPError{StatusCode: 500}, true},
		{"502", &HTTPError{StatusCode: 502}, true},
		{"503", &HTTPError{StatusCode: 503}, true},
		{"429", &HTTPError{StatusCode: 429}, true},
		{"400", &HTTPError{StatusCode: 400}, false},
		{"403", &HTTPError{StatusCode: 403}, false},
		{"404", &HTTPError{StatusCode: 404}, false},
		{"transport", context.DeadlineExceeded, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHTTPRetryable(tt.err))
		})
	}
}

func TestClient_Get_RespectsContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(server.URL, 10*time.Second).Get(ctx, "/slow", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Get_RetriesTransientStatus(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"result":"success"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL).Apply(WithRetry(fastRetry(5)))
	body, err := client.Get(context.Background(), "/retry", nil)

	require.NoError(t, err)
	assert.Contains(t, string(body), "success")
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestClient_Get_DoesNotRetryClientErrors(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL).Apply(WithRetry(fastRetry(5)))
	_, err := client.Get(context.Background(), "/forbidden", nil)

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestClient_Get_BreakerOpensAfterFailures(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	breaker := resilience.NewCircuitBreaker(resilience.Settings{
		Name:             "httpclient-test",
		Timeout:          time.Minute,
		FailureThreshold: 2,
	}, resilience.NoopFallback)
	client := NewClient(server.URL).Apply(WithRetry(fastRetry(4)), WithBreaker(breaker))

	_, err := client.Get(context.Background(), "/down", nil)

	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}
