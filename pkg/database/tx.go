package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/richxcame/fundraising/pkg/resilience"
)

// retryablePgCodes are SQLSTATE codes for which replaying the whole
// transaction may succeed.
var retryablePgCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
	"53000": true, // insufficient_resources
	"53300": true, // too_many_connections
	"53400": true, // configuration_limit_exceeded
	"08000": true, // connection_exception
	"08003": true, // connection_does_not_exist
	"08006": true, // connection_failure
	"57P01": true, // admin_shutdown
	"57P02": true, // crash_shutdown
	"57P03": true, // cannot_connect_now
}

var retryableMessages = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"network is unreachable",
	"temporary failure",
	"server closed",
	"unexpected eof",
}

func isPostgresRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return retryablePgCodes[pgErr.Code]
	}

	msg := strings.ToLower(err.Error())
	for _, m := range retryableMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// TxRetryConfig is used by WithTx for transient failures.
func TxRetryConfig() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    20 * time.Millisecond,
		MaxBackoff:        200 * time.Millisecond,
		BackoffMultiplier: 2.0,
		EnableJitter:      true,
		RetryableChecker:  isPostgresRetryable,
	}
}

// WithTx runs fn in a transaction, committing on success and rolling back
// on error. Transient failures replay the whole transaction.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	_, err := resilience.Retry(ctx, TxRetryConfig(), func(ctx context.Context) (interface{}, error) {
		return nil, runTx(ctx, db, fn)
	})
	return err
}

func runTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
