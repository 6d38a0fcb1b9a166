package fundraising

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/richxcame/fundraising/internal/exchangerate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEventService_Create(t *testing.T) {
	f := newFixture(defaultRates(), BoxConfig{})

	event, err := f.events.Create(context.Background(), "  Charity run  ", "PLN")

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, "Charity run", event.Name)
	assert.Equal(t, "PLN", event.Currency)
	assert.True(t, event.Balance.IsZero())
}

func TestEventService_Create_Errors(t *testing.T) {
	tests := []struct {
		name     string
		rates    stubRates
		event    string
		currency string
		wantErr  error
		status   int
	}{
		{"blank name", defaultRates(), "   ", "EUR", ErrInvalidEventName, http.StatusBadRequest},
		{"empty name", defaultRates(), "", "EUR", ErrInvalidEventName, http.StatusBadRequest},
		{"unknown currency", defaultRates(), "Run", "XXX", exchangerate.ErrUnsupportedCurrency, http.StatusBadRequest},
		{"malformed currency", defaultRates(), "Run", "eur", exchangerate.ErrUnsupportedCurrency, http.StatusBadRequest},
		{"rates unavailable", stubRates{err: exchangerate.ErrRateUnavailable}, "Run", "EUR", exchangerate.ErrRateUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.rates, BoxConfig{})

			_, err := f.events.Create(context.Background(), tt.event, tt.currency)

			assert.ErrorIs(t, err, tt.wantErr)
			requireStatus(t, err, tt.status)

			events, listErr := f.repo.ListEvents(context.Background())
			require.NoError(t, listErr)
			assert.Empty(t, events)
		})
	}
}

func TestEventService_GetByID(t *testing.T) {
	f := newFixture(defaultRates(), BoxConfig{})
	eventID := f.event(t, "GBP")

	event, err := f.events.GetByID(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, eventID, event.ID)

	_, err = f.events.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrEventNotFound)
	requireStatus(t, err, http.StatusNotFound)
}

func TestEventService_FinancialReport(t *testing.T) {
	f := newFixture(defaultRates(), BoxConfig{})
	eurEvent := f.event(t, "EUR")
	f.event(t, "USD")
	boxID := f.register(t)
	f.assign(t, boxID, eurEvent)
	f.deposit(t, boxID, "EUR", "12.34")
	_, err := f.boxes.Empty(context.Background(), boxID)
	require.NoError(t, err)

	report, err := f.events.FinancialReport(context.Background())

	require.NoError(t, err)
	require.Len(t, report, 2)
	byCurrency := map[string]FinancialReportEntry{}
	for _, entry := range report {
		assert.Equal(t, "Charity run", entry.Name)
		byCurrency[entry.Currency] = entry
	}
	assertDecimal(t, "12.34", byCurrency["EUR"].Amount)
	assert.True(t, byCurrency["USD"].Amount.IsZero())
}

func TestEventService_FinancialReport_Empty(t *testing.T) {
	f := newFixture(defaultRates(), BoxConfig{})

	report, err := f.events.FinancialReport(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, report)
	assert.Empty(t, report)
}

func TestEventService_FinancialReport_RepositoryError(t *testing.T) {
	events := &MockEventRepository{}
	events.On("ListEvents", mock.Anything).Return(nil, errors.New("connection refused"))
	svc := NewEventService(events, NewStaticPolicy([]string{"EUR"}))

	_, err := svc.FinancialReport(context.Background())

	requireStatus(t, err, http.StatusInternalServerError)
	events.AssertExpectations(t)
}
