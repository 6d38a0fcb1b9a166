package resilience

import (
	"context"
	"fmt"

	"github.com/richxcame/fundraising/pkg/logger"
	"go.uber.org/zap"
)

// FallbackFunc runs instead of the guarded call while the breaker rejects
// calls. err is the gobreaker rejection.
type FallbackFunc func(ctx context.Context, err error) (interface{}, error)

// NoopFallback reports ErrCircuitOpen.
func NoopFallback(_ context.Context, err error) (interface{}, error) {
	return nil, openError(err)
}

// GracefulDegradation reports ErrCircuitOpen after a warning tagged with the
// upstream name, leaving recovery to the caller.
func GracefulDegradation(upstream string) FallbackFunc {
	return func(ctx context.Context, err error) (interface{}, error) {
		logger.WithContext(ctx).Warn("upstream unavailable, breaker rejecting calls",
			zap.String("upstream", upstream),
			zap.Error(err),
		)
		return nil, openError(err)
	}
}

func openError(cause error) error {
	if cause == nil {
		return ErrCircuitOpen
	}
	return fmt.Errorf("%w: %w", ErrCircuitOpen, cause)
}
