package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/richxcame/fundraising/pkg/logger"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned when the breaker rejects a call.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Settings tunes a CircuitBreaker.
type Settings struct {
	Name             string
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
	SuccessThreshold uint32
}

// Operation is a unit of work guarded by a breaker.
type Operation func(ctx context.Context) (interface{}, error)

// CircuitBreaker wraps gobreaker with metrics and a fallback.
type CircuitBreaker struct {
	name     string
	cb       *gobreaker.CircuitBreaker
	fallback FallbackFunc
}

// NewCircuitBreaker builds a breaker that trips after FailureThreshold
// consecutive failures.
func NewCircuitBreaker(settings Settings, fallback FallbackFunc) *CircuitBreaker {
	settings = settings.withDefaults()
	name := breakerName(settings.Name)
	if fallback == nil {
		fallback = NoopFallback
	}
	threshold := settings.FailureThreshold

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.SuccessThreshold,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			recordBreakerStateChange(name, from, to)
		},
	})
	recordBreakerState(name, gobreaker.StateClosed)

	return &CircuitBreaker{name: name, cb: cb, fallback: fallback}
}

// Name returns the breaker name used in metrics.
func (b *CircuitBreaker) Name() string {
	return b.name
}

// State reports the current breaker state.
func (b *CircuitBreaker) State() gobreaker.State {
	return b.cb.State()
}

// Execute runs op through the breaker. When the breaker is open or the
// half-open trial budget is spent, the fallback decides the outcome.
func (b *CircuitBreaker) Execute(ctx context.Context, op Operation) (interface{}, error) {
	recordBreakerRequest(b.name)

	result, err := b.cb.Execute(func() (interface{}, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return op(ctx)
	})
	if err == nil {
		return result, nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		recordBreakerFallback(b.name)
		return b.fallback(ctx, err)
	}

	recordBreakerFailure(b.name)
	return nil, err
}
