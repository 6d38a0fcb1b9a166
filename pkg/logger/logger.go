package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type correlationKey struct{}

var (
	mu  sync.RWMutex
	log *zap.Logger
)

// Init builds the process logger. Production emits JSON with ISO8601
// timestamps; any other environment gets the colored console encoder.
// Every entry carries the service name.
func Init(environment, service string) error {
	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	built, err := cfg.Build(zap.Fields(zap.String("service", service)))
	if err != nil {
		return err
	}

	mu.Lock()
	log = built
	mu.Unlock()
	return nil
}

// Get returns the process logger, or a no-op logger before Init.
func Get() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// ContextWithCorrelationID stores a correlation ID for later log lines.
func ContextWithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationKey{}, correlationID)
}

// CorrelationIDFromContext returns the correlation ID stored in ctx, if any.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// WithContext returns the logger annotated with request-scoped fields.
func WithContext(ctx context.Context) *zap.Logger {
	l := Get()
	if id := CorrelationIDFromContext(ctx); id != "" {
		l = l.With(zap.String("correlation_id", id))
	}
	return l
}

func Info(msg string, fields ...zap.Field)  { Get().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { Get().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { Get().Error(msg, fields...) }

// Fatal logs and exits the process.
func Fatal(msg string, fields ...zap.Field) { Get().Fatal(msg, fields...) }

// Sync flushes buffered entries.
func Sync() error {
	return Get().Sync()
}
