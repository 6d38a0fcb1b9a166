package health

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const defaultTimeout = 2 * time.Second

// Checker is a dependency check used by the health endpoint
type Checker func() error

// Pinger is anything that can be pinged with a context
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseChecker returns a health check function for PostgreSQL database
func DatabaseChecker(db *sql.DB) Checker {
	return func() error {
		if db == nil {
			return errors.New("database not configured")
		}
		ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
		return db.PingContext(ctx)
	}
}

// PingChecker wraps a Pinger such as the Redis client
func PingChecker(p Pinger) Checker {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
		return p.Ping(ctx)
	}
}

// ContextChecker adapts a context-aware check, such as the rate cache
// readiness check, to a Checker with the default timeout
func ContextChecker(check func(ctx context.Context) error) Checker {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
		return check(ctx)
	}
}
