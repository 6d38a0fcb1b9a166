package exchangerate

import (
	"context"

	"github.com/shopspring/decimal"
)

const (
	// divisionPrecision is the number of fractional digits kept before the
	// final rounding.
	divisionPrecision = 16
	// settlementPlaces is the number of fractional digits in a converted amount.
	settlementPlaces = 2
)

// Converter converts amounts through the base currency of a rate table
type Converter struct {
	rates RateProvider
}

// NewConverter creates a converter reading from rates
func NewConverter(rates RateProvider) *Converter {
	return &Converter{rates: rates}
}

// Convert returns amount expressed in to. Identity conversions return amount
// untouched. Otherwise the result is amount * rate(to) / rate(from), rounded
// once, half-up, to two places.
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	if !ValidCode(from) {
		return decimal.Decimal{}, unsupported(from)
	}
	if !ValidCode(to) {
		return decimal.Decimal{}, unsupported(to)
	}

	// One snapshot for both legs so a concurrent refresh cannot mix tables.
	snap, err := c.rates.Snapshot(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}

	fromRate, ok := snap.Rate(from)
	if !ok {
		return decimal.Decimal{}, unsupported(from)
	}
	toRate, ok := snap.Rate(to)
	if !ok {
		return decimal.Decimal{}, unsupported(to)
	}
	if fromRate.IsZero() {
		return decimal.Decimal{}, unavailable(from)
	}
	if toRate.IsZero() {
		return decimal.Decimal{}, unavailable(to)
	}

	return ConvertWithRates(amount, fromRate, toRate), nil
}

// ConvertWithRates applies the conversion formula to known non-zero rates.
func ConvertWithRates(amount, fromRate, toRate decimal.Decimal) decimal.Decimal {
	return amount.Mul(toRate).DivRound(fromRate, divisionPrecision).Round(settlementPlaces)
}
