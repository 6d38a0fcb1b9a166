package fundraising

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BoxRepository stores collection boxes. GetBox and DeleteBox return an
// error wrapping ErrBoxNotFound for unknown ids.
type BoxRepository interface {
	GetBox(ctx context.Context, id uuid.UUID) (*CollectionBox, error)
	SaveBox(ctx context.Context, box *CollectionBox) error
	DeleteBox(ctx context.Context, id uuid.UUID) error
	ListBoxes(ctx context.Context) ([]*CollectionBox, error)
}

// EventRepository stores fundraising events. GetEvent returns an error
// wrapping ErrEventNotFound for unknown ids.
type EventRepository interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*FundraisingEvent, error)
	SaveEvent(ctx context.Context, event *FundraisingEvent) error
	ListEvents(ctx context.Context) ([]*FundraisingEvent, error)
}

// CurrencyPolicy decides which currencies boxes and events accept
type CurrencyPolicy interface {
	Supports(ctx context.Context, code string) (bool, error)
}

// Converter converts an amount between two currencies
type Converter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error)
}
