package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/richxcame/fundraising/pkg/logger"
	"go.uber.org/zap"
)

// RetryConfig controls Retry.
type RetryConfig struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
	EnableJitter      bool
	// RetryableErrors, when set, limits retries to errors matching one of them.
	RetryableErrors []error
	// RetryableChecker overrides RetryableErrors.
	RetryableChecker func(error) bool
}

// DefaultRetryConfig returns three attempts with 1s..30s exponential backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
		EnableJitter:      true,
	}
}

// Retry executes op until it succeeds, returns a non-retryable error, the
// attempts run out, or ctx is done. The last operation error is returned as is.
func Retry(ctx context.Context, config RetryConfig, op Operation) (interface{}, error) {
	attempts := config.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == attempts || !shouldRetry(err, config) {
			break
		}

		backoff := calculateBackoff(attempt, config)
		logger.WithContext(ctx).Debug("retrying operation",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, lastErr
		case <-timer.C:
		}
	}

	return nil, lastErr
}

// Budget is the longest Retry can run when each attempt is bounded by
// perAttempt: every attempt plus the unjittered backoff between them.
func (c RetryConfig) Budget(perAttempt time.Duration) time.Duration {
	attempts := max(c.MaxAttempts, 1)
	budget := time.Duration(attempts) * perAttempt
	flat := c
	flat.EnableJitter = false
	for attempt := 1; attempt < attempts; attempt++ {
		budget += calculateBackoff(attempt, flat)
	}
	return budget
}

// RetryWithBreaker retries op with every attempt passing through breaker.
func RetryWithBreaker(ctx context.Context, config RetryConfig, breaker *CircuitBreaker, op Operation) (interface{}, error) {
	return Retry(ctx, config, func(ctx context.Context) (interface{}, error) {
		return breaker.Execute(ctx, op)
	})
}

func shouldRetry(err error, config RetryConfig) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCircuitOpen) || errors.Is(err, context.Canceled) {
		return false
	}
	if config.RetryableChecker != nil {
		return config.RetryableChecker(err)
	}
	if len(config.RetryableErrors) > 0 {
		for _, target := range config.RetryableErrors {
			if errors.Is(err, target) {
				return true
			}
		}
		return false
	}
	return true
}

func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	multiplier := config.BackoffMultiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}
	backoff := float64(config.InitialBackoff) * math.Pow(multiplier, float64(attempt-1))
	if config.MaxBackoff > 0 && backoff > float64(config.MaxBackoff) {
		backoff = float64(config.MaxBackoff)
	}
	d := time.Duration(backoff)
	if config.EnableJitter {
		d = addJitter(d)
	}
	return d
}

// addJitter returns a random duration in [0, d].
func addJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(d) + 1))
}

// IsRetryableHTTPStatus reports whether an upstream status is worth retrying.
func IsRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
