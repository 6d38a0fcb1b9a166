package fundraising

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/fundraising/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EventService manages fundraising events
type EventService struct {
	events EventRepository
	policy CurrencyPolicy
	now    func() time.Time
}

// NewEventService creates a new fundraising event service
func NewEventService(events EventRepository, policy CurrencyPolicy) *EventService {
	return &EventService{events: events, policy: policy, now: time.Now}
}

// Create creates an event with a zero balance in currency
func (s *EventService) Create(ctx context.Context, name, currency string) (*FundraisingEventResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, toAppError(ErrInvalidEventName)
	}
	if err := checkCurrency(ctx, s.policy, currency); err != nil {
		return nil, toAppError(err)
	}

	now := s.now()
	event := &FundraisingEvent{
		ID:        uuid.New(),
		Name:      name,
		Currency:  currency,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.events.SaveEvent(ctx, event); err != nil {
		return nil, toAppError(fmt.Errorf("failed to create fundraising event: %w", err))
	}

	logger.WithContext(ctx).Info("fundraising event created",
		zap.String("event_id", event.ID.String()),
		zap.String("currency", currency),
	)
	return toEventResponse(event), nil
}

// GetByID returns a single event
func (s *EventService) GetByID(ctx context.Context, id uuid.UUID) (*FundraisingEventResponse, error) {
	event, err := s.events.GetEvent(ctx, id)
	if err != nil {
		return nil, toAppError(err)
	}
	return toEventResponse(event), nil
}

// FinancialReport lists every event with its balance
func (s *EventService) FinancialReport(ctx context.Context) ([]FinancialReportEntry, error) {
	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, toAppError(fmt.Errorf("failed to build financial report: %w", err))
	}

	report := make([]FinancialReportEntry, 0, len(events))
	for _, e := range events {
		report = append(report, FinancialReportEntry{
			Name:     e.Name,
			Amount:   e.Balance,
			Currency: e.Currency,
		})
	}
	return report, nil
}
