package exchangerate

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedCurrency is returned for malformed codes and codes the
	// rate table does not list.
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	// ErrRateUnavailable is returned when no usable rate table exists.
	ErrRateUnavailable = errors.New("exchange rate unavailable")
)

// CurrencyError names the currency code that caused a failure.
type CurrencyError struct {
	Code string
	Err  error
}

func (e *CurrencyError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Code)
}

func (e *CurrencyError) Unwrap() error {
	return e.Err
}

func unsupported(code string) error {
	return &CurrencyError{Code: code, Err: ErrUnsupportedCurrency}
}

func unavailable(code string) error {
	return &CurrencyError{Code: code, Err: ErrRateUnavailable}
}
