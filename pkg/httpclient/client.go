package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/richxcame/fundraising/pkg/resilience"
)

const defaultTimeout = 30 * time.Second

// maxBodyBytes bounds how much of an upstream response is read.
const maxBodyBytes = 10 << 20

// HTTPError is returned for non-2xx upstream responses.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Client is a small JSON-over-HTTP client with optional retry and breaker.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	retryConfig *resilience.RetryConfig
	breaker     *resilience.CircuitBreaker
}

// Option configures a Client.
type Option func(*Client)

// NewClient creates a client rooted at baseURL. The first positive timeout
// overrides the default.
func NewClient(baseURL string, timeout ...time.Duration) *Client {
	t := defaultTimeout
	if len(timeout) > 0 && timeout[0] > 0 {
		t = timeout[0]
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: t},
	}
}

// WithRetry enables retries with the given config.
func WithRetry(config resilience.RetryConfig) Option {
	return func(c *Client) {
		c.retryConfig = &config
	}
}

// WithDefaultRetry enables retries on transport errors and retryable statuses.
func WithDefaultRetry() Option {
	config := resilience.DefaultRetryConfig()
	config.RetryableChecker = isHTTPRetryable
	return WithRetry(config)
}

// RetryAttemptsConfig retries transport errors and retryable statuses
// attempts times, with backoff growing from initial up to ten times initial.
func RetryAttemptsConfig(attempts int, initial time.Duration) resilience.RetryConfig {
	config := resilience.DefaultRetryConfig()
	config.MaxAttempts = attempts
	config.InitialBackoff = initial
	config.MaxBackoff = 10 * initial
	config.RetryableChecker = isHTTPRetryable
	return config
}

// WithRetryAttempts applies RetryAttemptsConfig.
func WithRetryAttempts(attempts int, initial time.Duration) Option {
	return WithRetry(RetryAttemptsConfig(attempts, initial))
}

// WithBreaker routes every attempt through breaker.
func WithBreaker(breaker *resilience.CircuitBreaker) Option {
	return func(c *Client) {
		c.breaker = breaker
	}
}

// Apply applies options to an existing client.
func (c *Client) Apply(opts ...Option) *Client {
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues a GET for baseURL+path and returns the response body.
func (c *Client) Get(ctx context.Context, path string, headers map[string]string) ([]byte, error) {
	op := func(ctx context.Context) (interface{}, error) {
		return c.do(ctx, http.MethodGet, path, headers)
	}

	var (
		result interface{}
		err    error
	)
	switch {
	case c.retryConfig != nil && c.breaker != nil:
		result, err = resilience.RetryWithBreaker(ctx, *c.retryConfig, c.breaker, op)
	case c.retryConfig != nil:
		result, err = resilience.Retry(ctx, *c.retryConfig, op)
	case c.breaker != nil:
		result, err = c.breaker.Execute(ctx, op)
	default:
		result, err = op(ctx)
	}
	if err != nil {
		return nil, err
	}
	body, _ := result.([]byte)
	return body, nil
}

func (c *Client) do(ctx context.Context, method, path string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// isHTTPRetryable retries transport failures and retryable statuses.
func isHTTPRetryable(err error) bool {
	if err == nil {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return resilience.IsRetryableHTTPStatus(httpErr.StatusCode)
	}
	return true
}
