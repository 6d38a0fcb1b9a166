package exchangerate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/richxcame/fundraising/pkg/httpclient"
	"github.com/shopspring/decimal"
)

// HTTPSource reads rate tables from an exchangerate-api style endpoint:
// GET {base_url}/{api_key}/latest/{BASE}.
type HTTPSource struct {
	client *httpclient.Client
	apiKey string
}

type latestResponse struct {
	Result          string                     `json:"result"`
	ErrorType       string                     `json:"error-type"`
	BaseCode        string                     `json:"base_code"`
	ConversionRates map[string]decimal.Decimal `json:"conversion_rates"`
}

// NewHTTPSource creates a source over client. An empty apiKey omits the
// key path segment.
func NewHTTPSource(client *httpclient.Client, apiKey string) *HTTPSource {
	return &HTTPSource{client: client, apiKey: apiKey}
}

// FetchRates implements RateSource
func (s *HTTPSource) FetchRates(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	path := "/latest/" + url.PathEscape(base)
	if s.apiKey != "" {
		path = "/" + url.PathEscape(s.apiKey) + path
	}

	body, err := s.client.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates: %w", err)
	}

	var payload latestResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode rates: %w", err)
	}
	if payload.Result != "" && payload.Result != "success" {
		return nil, fmt.Errorf("rate provider error: %s", payload.ErrorType)
	}
	if payload.BaseCode != "" && payload.BaseCode != base {
		return nil, fmt.Errorf("rate provider answered for base %s, want %s", payload.BaseCode, base)
	}
	if len(payload.ConversionRates) == 0 {
		return nil, errors.New("rate provider returned no conversion_rates")
	}
	return payload.ConversionRates, nil
}

// StaticSource serves a fixed table expressed relative to its own base.
type StaticSource struct {
	base  string
	rates map[string]decimal.Decimal
}

// NewStaticSource parses code to rate strings relative to base
func NewStaticSource(base string, raw map[string]string) (*StaticSource, error) {
	rates := make(map[string]decimal.Decimal, len(raw))
	for code, value := range raw {
		rate, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("invalid rate for %s: %w", code, err)
		}
		rates[code] = rate
	}
	return &StaticSource{base: base, rates: rates}, nil
}

// FetchRates implements RateSource. A different base is served by
// rebasing the table through that currency.
func (s *StaticSource) FetchRates(_ context.Context, base string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(s.rates))
	if base == s.base {
		for code, rate := range s.rates {
			out[code] = rate
		}
		return out, nil
	}

	pivot, ok := s.rates[base]
	if !ok || pivot.IsZero() {
		return nil, unsupported(base)
	}
	for code, rate := range s.rates {
		out[code] = rate.DivRound(pivot, divisionPrecision)
	}
	return out, nil
}
