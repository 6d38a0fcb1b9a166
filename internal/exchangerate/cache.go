package exchangerate

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/richxcame/fundraising/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "refresh"

// CacheConfig tunes a Cache
type CacheConfig struct {
	BaseCurrency    string
	RefreshInterval time.Duration
	FetchTimeout    time.Duration
}

// Cache is a lazily refreshed, process-wide rate table.
//
// Readers load an immutable snapshot through an atomic pointer. When the
// snapshot is older than RefreshInterval the next reader refreshes it; at
// most one fetch is in flight and concurrent readers share its outcome.
// A failed refresh leaves the previous snapshot in place.
type Cache struct {
	source   RateSource
	base     string
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time

	current atomic.Pointer[Snapshot]
	group   singleflight.Group
}

// NewCache creates a cache over source
func NewCache(source RateSource, cfg CacheConfig) *Cache {
	if cfg.BaseCurrency == "" {
		cfg.BaseCurrency = "EUR"
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = time.Hour
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Second
	}
	return &Cache{
		source:   source,
		base:     cfg.BaseCurrency,
		interval: cfg.RefreshInterval,
		timeout:  cfg.FetchTimeout,
		now:      time.Now,
	}
}

// BaseCurrency returns the currency all rates are relative to
func (c *Cache) BaseCurrency() string {
	return c.base
}

// Rate returns the rate of code relative to the base currency.
func (c *Cache) Rate(ctx context.Context, code string) (decimal.Decimal, error) {
	if !ValidCode(code) {
		return decimal.Decimal{}, unsupported(code)
	}
	snap, err := c.ensureFresh(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	rate, ok := snap.Rate(code)
	if !ok {
		return decimal.Decimal{}, unsupported(code)
	}
	return rate, nil
}

// IsSupported reports whether code is listed in the current rate table.
// Malformed codes are rejected without touching the source.
func (c *Cache) IsSupported(ctx context.Context, code string) (bool, error) {
	if !ValidCode(code) {
		return false, nil
	}
	snap, err := c.ensureFresh(ctx)
	if err != nil {
		return false, err
	}
	_, ok := snap.Rate(code)
	return ok, nil
}

// Snapshot returns the current rate table, refreshing it first when due.
func (c *Cache) Snapshot(ctx context.Context) (*Snapshot, error) {
	return c.ensureFresh(ctx)
}

// Refresh fetches a new table regardless of age.
func (c *Cache) Refresh(ctx context.Context) error {
	_, err := c.refresh(ctx, true)
	return err
}

// Ready reports whether a rate table can be served
func (c *Cache) Ready(ctx context.Context) error {
	_, err := c.ensureFresh(ctx)
	return err
}

func (c *Cache) due(snap *Snapshot) bool {
	return snap == nil || c.now().Sub(snap.FetchedAt) > c.interval
}

// ensureFresh returns a usable snapshot, refreshing first when one is due.
func (c *Cache) ensureFresh(ctx context.Context) (*Snapshot, error) {
	snap := c.current.Load()
	if !c.due(snap) {
		return snap, nil
	}

	fresh, err := c.refresh(ctx, false)
	if err == nil {
		return fresh, nil
	}

	// Another flight may have stored a table meanwhile.
	if latest := c.current.Load(); latest != nil {
		staleReadsTotal.Inc()
		logger.WithContext(ctx).Warn("serving stale exchange rates",
			zap.Time("fetched_at", latest.FetchedAt),
			zap.Error(err),
		)
		return latest, nil
	}
	return nil, err
}

// refresh runs at most one fetch at a time. Unless force is set a flight
// that finds a fresh snapshot returns it without fetching.
func (c *Cache) refresh(ctx context.Context, force bool) (*Snapshot, error) {
	ch := c.group.DoChan(refreshKey, func() (interface{}, error) {
		if !force {
			if snap := c.current.Load(); !c.due(snap) {
				return snap, nil
			}
		}
		// The flight outlives the caller that started it; others may be waiting.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.fetch(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrRateUnavailable, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

func (c *Cache) fetch(ctx context.Context) (*Snapshot, error) {
	start := c.now()
	raw, err := c.source.FetchRates(ctx, c.base)
	refreshDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		refreshTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}

	rates, err := c.sanitize(ctx, raw)
	if err != nil {
		refreshTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}

	snap := &Snapshot{Base: c.base, Rates: rates, FetchedAt: c.now()}
	c.current.Store(snap)
	refreshTotal.WithLabelValues("success").Inc()
	currenciesGauge.Set(float64(len(rates)))

	logger.WithContext(ctx).Info("exchange rates refreshed",
		zap.String("base", c.base),
		zap.Int("currencies", len(rates)),
	)
	return snap, nil
}

// sanitize copies raw, dropping malformed codes and non-positive rates. The
// base currency is always listed at 1.
func (c *Cache) sanitize(ctx context.Context, raw map[string]decimal.Decimal) (map[string]decimal.Decimal, error) {
	if len(raw) == 0 {
		return nil, errors.New("empty rate table")
	}
	rates := make(map[string]decimal.Decimal, len(raw)+1)
	for code, rate := range raw {
		if !ValidCode(code) || rate.Sign() <= 0 {
			logger.WithContext(ctx).Warn("dropping malformed rate",
				zap.String("code", code),
				zap.String("rate", rate.String()),
			)
			continue
		}
		rates[code] = rate
	}
	if len(rates) == 0 {
		return nil, errors.New("no valid rates")
	}
	rates[c.base] = decimal.NewFromInt(1)
	return rates, nil
}
