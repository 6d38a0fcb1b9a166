package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/richxcame/fundraising/pkg/config"
	"github.com/richxcame/fundraising/pkg/logger"
	"github.com/richxcame/fundraising/pkg/resilience"
	"go.uber.org/zap"
)

// DriverName is the database/sql driver registered by pgx.
const DriverName = "pgx"

// Open opens a PostgreSQL handle through the pgx stdlib driver and waits
// until the server answers a ping.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(DriverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MinConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = 5
	retry.RetryableChecker = isPostgresRetryable

	_, err = resilience.Retry(ctx, retry, func(ctx context.Context) (interface{}, error) {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return nil, db.PingContext(pingCtx)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	logger.Info("connected to database",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.DBName),
	)
	return db, nil
}

// Close closes the database handle
func Close(db *sql.DB) {
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}
}
