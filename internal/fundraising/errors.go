package fundraising

import (
	"errors"
	"fmt"

	"github.com/richxcame/fundraising/internal/exchangerate"
	"github.com/richxcame/fundraising/pkg/common"
)

// amountPlaces is the number of fractional digits a stored amount keeps
const amountPlaces = 2

var (
	// ErrNotFound is wrapped by every lookup miss
	ErrNotFound      = errors.New("not found")
	ErrBoxNotFound   = fmt.Errorf("collection box %w", ErrNotFound)
	ErrEventNotFound = fmt.Errorf("fundraising event %w", ErrNotFound)

	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrAmountPrecision is the storage precision rule: amounts are kept as
	// NUMERIC(19,2). It wraps ErrInvalidAmount.
	ErrAmountPrecision = fmt.Errorf("%w and have at most %d decimal places", ErrInvalidAmount, amountPlaces)

	ErrInvalidEventName = errors.New("fundraising event name cannot be blank")
	ErrBoxNotEmpty      = errors.New("collection box must be empty to be assigned to a fundraising event")
	ErrAlreadyAssigned  = errors.New("collection box is already assigned to a different fundraising event")
	ErrNotAssigned      = errors.New("collection box is not assigned to any fundraising event")
	// ErrUnregisterRefused is returned when force unregistering is disabled
	// and the box still holds money or belongs to an event.
	ErrUnregisterRefused = errors.New("collection box must be empty and unassigned to be unregistered")
	// ErrConsistencyViolation means an assigned box points at an event that
	// does not exist.
	ErrConsistencyViolation = errors.New("consistency violation")
)

func unsupportedCurrency(code string) error {
	return &exchangerate.CurrencyError{Code: code, Err: exchangerate.ErrUnsupportedCurrency}
}

// toAppError maps domain and rate errors to HTTP-aware errors
func toAppError(err error) error {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidEventName),
		errors.Is(err, exchangerate.ErrUnsupportedCurrency):
		return common.NewBadRequestError(err.Error(), err)
	case errors.Is(err, ErrNotFound):
		return common.NewNotFoundError(err.Error(), err)
	case errors.Is(err, ErrBoxNotEmpty),
		errors.Is(err, ErrAlreadyAssigned),
		errors.Is(err, ErrNotAssigned),
		errors.Is(err, ErrUnregisterRefused):
		return common.NewConflictError(err.Error(), err)
	case errors.Is(err, exchangerate.ErrRateUnavailable):
		return common.NewServiceUnavailableError("exchange rates are temporarily unavailable", err)
	default:
		return common.NewInternalServerError("internal error", err)
	}
}
