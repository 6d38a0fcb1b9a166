package fundraising

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CollectionBox is a physical donation box. Amounts are kept per currency
// until the box is emptied into its event.
type CollectionBox struct {
	ID        uuid.UUID
	EventID   *uuid.UUID
	Amounts   map[string]decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCollectionBox creates an empty, unassigned box
func NewCollectionBox(now time.Time) *CollectionBox {
	return &CollectionBox{
		ID:        uuid.New(),
		Amounts:   make(map[string]decimal.Decimal),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsEmpty reports whether every amount in the box is zero
func (b *CollectionBox) IsEmpty() bool {
	for _, amount := range b.Amounts {
		if !amount.IsZero() {
			return false
		}
	}
	return true
}

// IsAssigned reports whether the box belongs to a fundraising event
func (b *CollectionBox) IsAssigned() bool {
	return b.EventID != nil
}

// Currencies returns the box's currency codes in sorted order
func (b *CollectionBox) Currencies() []string {
	return slices.Sorted(maps.Keys(b.Amounts))
}

// Clone returns a deep copy of the box
func (b *CollectionBox) Clone() *CollectionBox {
	out := *b
	if b.EventID != nil {
		id := *b.EventID
		out.EventID = &id
	}
	out.Amounts = make(map[string]decimal.Decimal, len(b.Amounts))
	for code, amount := range b.Amounts {
		out.Amounts[code] = amount
	}
	return &out
}

// FundraisingEvent collects emptied boxes into a single-currency account
type FundraisingEvent struct {
	ID        uuid.UUID
	Name      string
	Currency  string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a copy of the event
func (e *FundraisingEvent) Clone() *FundraisingEvent {
	out := *e
	return &out
}

// CreateEventRequest is the body of POST /fundraising-events
type CreateEventRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=255"`
	Currency string `json:"currency" validate:"required,currency_code"`
}

// DepositRequest is the body of PUT /collection-boxes/:id/deposit.
// A missing amount is reported as an invalid amount.
type DepositRequest struct {
	Currency string           `json:"currency" validate:"required,currency_code"`
	Amount   *decimal.Decimal `json:"amount"`
}

// CollectionBoxResponse is the full view of a box
type CollectionBoxResponse struct {
	ID         uuid.UUID                  `json:"id"`
	EventID    *uuid.UUID                 `json:"event_id"`
	Amounts    map[string]decimal.Decimal `json:"amounts"`
	IsEmpty    bool                       `json:"is_empty"`
	IsAssigned bool                       `json:"is_assigned"`
}

// CollectionBoxSummary is the listing view of a box. It carries no amounts.
type CollectionBoxSummary struct {
	ID         uuid.UUID `json:"id"`
	IsEmpty    bool      `json:"is_empty"`
	IsAssigned bool      `json:"is_assigned"`
}

// FundraisingEventResponse is the API view of an event
type FundraisingEventResponse struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

// FinancialReportEntry is one line of the financial report
type FinancialReportEntry struct {
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func toBoxResponse(b *CollectionBox) *CollectionBoxResponse {
	amounts := make(map[string]decimal.Decimal, len(b.Amounts))
	for code, amount := range b.Amounts {
		amounts[code] = amount
	}
	return &CollectionBoxResponse{
		ID:         b.ID,
		EventID:    b.EventID,
		Amounts:    amounts,
		IsEmpty:    b.IsEmpty(),
		IsAssigned: b.IsAssigned(),
	}
}

func toBoxSummary(b *CollectionBox) CollectionBoxSummary {
	return CollectionBoxSummary{
		ID:         b.ID,
		IsEmpty:    b.IsEmpty(),
		IsAssigned: b.IsAssigned(),
	}
}

func toEventResponse(e *FundraisingEvent) *FundraisingEventResponse {
	return &FundraisingEventResponse{
		ID:       e.ID,
		Name:     e.Name,
		Currency: e.Currency,
		Balance:  e.Balance,
	}
}
