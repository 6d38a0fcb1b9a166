package exchangerate

import (
	"sort"
	"time"

	"github.com/richxcame/fundraising/pkg/validation"
	"github.com/shopspring/decimal"
)

// Snapshot is an immutable rate table. Rates are units of each currency per
// one unit of Base. A refresh replaces the whole snapshot.
type Snapshot struct {
	Base      string
	Rates     map[string]decimal.Decimal
	FetchedAt time.Time
}

// Rate returns the rate of code relative to Base.
func (s *Snapshot) Rate(code string) (decimal.Decimal, bool) {
	if s == nil {
		return decimal.Decimal{}, false
	}
	r, ok := s.Rates[code]
	return r, ok
}

// Codes returns the listed currency codes in sorted order.
func (s *Snapshot) Codes() []string {
	codes := make([]string, 0, len(s.Rates))
	for code := range s.Rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// ValidCode reports whether code is syntactically a currency code.
func ValidCode(code string) bool {
	return validation.IsCurrencyCode(code)
}

// SnapshotResponse is the API view of the current rate table
type SnapshotResponse struct {
	Base      string                     `json:"base"`
	FetchedAt time.Time                  `json:"fetched_at"`
	Rates     map[string]decimal.Decimal `json:"rates"`
}

// ToSnapshotResponse converts a Snapshot to its API response
func ToSnapshotResponse(s *Snapshot) *SnapshotResponse {
	if s == nil {
		return nil
	}
	return &SnapshotResponse{
		Base:      s.Base,
		FetchedAt: s.FetchedAt,
		Rates:     s.Rates,
	}
}
