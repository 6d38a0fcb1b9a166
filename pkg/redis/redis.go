package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/richxcame/fundraising/pkg/config"
	"github.com/richxcame/fundraising/pkg/resilience"
)

// Client wraps the Redis client
type Client struct {
	*redis.Client
}

// NewRedisClient creates a new Redis client and verifies the connection
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	retry := resilience.DefaultRetryConfig()
	retry.InitialBackoff = 200 * time.Millisecond
	retry.RetryableChecker = isRedisRetryable

	_, err := resilience.Retry(ctx, retry, func(ctx context.Context) (interface{}, error) {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return nil, client.Ping(pingCtx).Err()
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to connect to redis: %w", err)
	}

	return &Client{Client: client}, nil
}

// Close closes the Redis client
func (c *Client) Close() error {
	return c.Client.Close()
}

// Ping reports whether the server answers, for health checks
func (c *Client) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

var retryableMessages = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"network is unreachable",
	"timeout",
	"server closed",
	"unexpected eof",
	"loading",
	"busy",
	"masterdown",
	"tryagain",
}

var permanentMessages = []string{
	"wrongtype",
	"err syntax",
	"err unknown",
	"noauth",
	"wrongpass",
	"noperm",
}

// isRedisRetryable treats unknown failures as transient.
func isRedisRetryable(err error) bool {
	if err == nil || errors.Is(err, redis.Nil) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, m := range permanentMessages {
		if strings.Contains(msg, m) {
			return false
		}
	}
	for _, m := range retryableMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return true
}
