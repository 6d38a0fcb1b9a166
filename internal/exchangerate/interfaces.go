package exchangerate

import (
	"context"

	"github.com/shopspring/decimal"
)

// RateSource fetches a full rate table relative to base.
type RateSource interface {
	FetchRates(ctx context.Context, base string) (map[string]decimal.Decimal, error)
}

// RateProvider is the read side of the cache used by the converter and
// the currency policy.
type RateProvider interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
	IsSupported(ctx context.Context, code string) (bool, error)
}
