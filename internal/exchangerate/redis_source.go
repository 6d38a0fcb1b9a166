package exchangerate

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/richxcame/fundraising/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MirrorStore is the subset of the Redis client used by RedisSource
type MirrorStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisSource shares fetched tables between instances. A hit skips the
// upstream source; a miss fetches upstream and stores the table for ttl.
// Redis failures degrade to a plain upstream fetch.
type RedisSource struct {
	next   RateSource
	store  MirrorStore
	prefix string
	ttl    time.Duration
}

// NewRedisSource mirrors next through store under prefix:BASE keys
func NewRedisSource(next RateSource, store MirrorStore, prefix string, ttl time.Duration) *RedisSource {
	return &RedisSource{next: next, store: store, prefix: prefix, ttl: ttl}
}

func (s *RedisSource) key(base string) string {
	return s.prefix + ":" + base
}

// FetchRates implements RateSource
func (s *RedisSource) FetchRates(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	log := logger.WithContext(ctx)
	key := s.key(base)

	raw, err := s.store.Get(ctx, key).Result()
	switch {
	case err == nil:
		rates, decodeErr := decodeRates(raw)
		if decodeErr == nil {
			mirrorLookupsTotal.WithLabelValues("hit").Inc()
			return rates, nil
		}
		mirrorLookupsTotal.WithLabelValues("corrupt").Inc()
		log.Warn("ignoring corrupt rate mirror entry", zap.String("key", key), zap.Error(decodeErr))
	case errors.Is(err, redis.Nil):
		mirrorLookupsTotal.WithLabelValues("miss").Inc()
	default:
		mirrorLookupsTotal.WithLabelValues("error").Inc()
		log.Warn("rate mirror unavailable", zap.String("key", key), zap.Error(err))
	}

	rates, err := s.next.FetchRates(ctx, base)
	if err != nil {
		return nil, err
	}

	payload, err := encodeRates(rates)
	if err != nil {
		log.Warn("failed to encode rates for mirror", zap.Error(err))
		return rates, nil
	}
	if err := s.store.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		log.Warn("failed to store rates in mirror", zap.String("key", key), zap.Error(err))
	}
	return rates, nil
}

func encodeRates(rates map[string]decimal.Decimal) (string, error) {
	out := make(map[string]string, len(rates))
	for code, rate := range rates {
		out[code] = rate.String()
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeRates(raw string) (map[string]decimal.Decimal, error) {
	var in map[string]string
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, err
	}
	if len(in) == 0 {
		return nil, errors.New("empty mirror entry")
	}
	rates := make(map[string]decimal.Decimal, len(in))
	for code, value := range in {
		rate, err := decimal.NewFromString(value)
		if err != nil {
			return nil, err
		}
		rates[code] = rate
	}
	return rates, nil
}
