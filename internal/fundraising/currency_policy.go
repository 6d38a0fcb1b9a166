package fundraising

import (
	"context"
	"fmt"
	"strings"

	"github.com/richxcame/fundraising/internal/exchangerate"
)

const (
	PolicyLive   = "live"
	PolicyStatic = "static"
)

// LivePolicy accepts whatever the current rate table lists. With an empty
// cache and an unreachable source every check fails with
// exchangerate.ErrRateUnavailable.
type LivePolicy struct {
	rates exchangerate.RateProvider
}

// NewLivePolicy creates a policy backed by the rate cache
func NewLivePolicy(rates exchangerate.RateProvider) *LivePolicy {
	return &LivePolicy{rates: rates}
}

// Supports reports whether the rate table lists code
func (p *LivePolicy) Supports(ctx context.Context, code string) (bool, error) {
	return p.rates.IsSupported(ctx, code)
}

// StaticPolicy accepts a fixed list of currencies and never calls the rate source
type StaticPolicy struct {
	allowed map[string]struct{}
}

// NewStaticPolicy creates a policy accepting codes
func NewStaticPolicy(codes []string) *StaticPolicy {
	allowed := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		allowed[strings.ToUpper(strings.TrimSpace(code))] = struct{}{}
	}
	return &StaticPolicy{allowed: allowed}
}

// Supports reports whether code is on the allow-list
func (p *StaticPolicy) Supports(_ context.Context, code string) (bool, error) {
	_, ok := p.allowed[code]
	return ok, nil
}

// NewCurrencyPolicy builds the policy named by LEDGER_CURRENCY_POLICY
func NewCurrencyPolicy(name string, rates exchangerate.RateProvider, allowed []string) (CurrencyPolicy, error) {
	switch name {
	case PolicyLive:
		return NewLivePolicy(rates), nil
	case PolicyStatic:
		if len(allowed) == 0 {
			return nil, fmt.Errorf("static currency policy needs at least one allowed currency")
		}
		return NewStaticPolicy(allowed), nil
	default:
		return nil, fmt.Errorf("unknown currency policy %q", name)
	}
}

// checkCurrency validates the syntax of code, then asks policy about it
func checkCurrency(ctx context.Context, policy CurrencyPolicy, code string) error {
	if !exchangerate.ValidCode(code) {
		return unsupportedCurrency(code)
	}
	ok, err := policy.Supports(ctx, code)
	if err != nil {
		return err
	}
	if !ok {
		return unsupportedCurrency(code)
	}
	return nil
}
