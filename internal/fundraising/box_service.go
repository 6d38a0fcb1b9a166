package fundraising

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/fundraising/internal/exchangerate"
	"github.com/richxcame/fundraising/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BoxConfig holds collection box policy switches
type BoxConfig struct {
	// AllowForceUnregister permits unregistering boxes that still hold
	// money or belong to an event.
	AllowForceUnregister bool
	// KeepUnconvertible leaves entries that cannot be converted in the box
	// on empty. By default every entry is cleared and the skipped ones are
	// logged.
	KeepUnconvertible bool
}

// BoxService implements the collection box lifecycle
type BoxService struct {
	boxes      BoxRepository
	events     EventRepository
	policy     CurrencyPolicy
	converter  Converter
	cfg        BoxConfig
	boxLocks   *KeyedMutex
	eventLocks *KeyedMutex
	now        func() time.Time
}

// NewBoxService creates a new collection box service
func NewBoxService(boxes BoxRepository, events EventRepository, policy CurrencyPolicy, converter Converter, cfg BoxConfig) *BoxService {
	return &BoxService{
		boxes:      boxes,
		events:     events,
		policy:     policy,
		converter:  converter,
		cfg:        cfg,
		boxLocks:   NewKeyedMutex(),
		eventLocks: NewKeyedMutex(),
		now:        time.Now,
	}
}

// Register creates an empty, unassigned box
func (s *BoxService) Register(ctx context.Context) (resp *CollectionBoxResponse, err error) {
	defer func() { observeBoxOperation("register", err) }()

	box := NewCollectionBox(s.now())
	if err := s.boxes.SaveBox(ctx, box); err != nil {
		return nil, toAppError(fmt.Errorf("failed to register collection box: %w", err))
	}

	logger.WithContext(ctx).Info("collection box registered", zap.String("box_id", box.ID.String()))
	return toBoxResponse(box), nil
}

// Deposit adds amount of currency to a box. Deposits are allowed in every
// box state and are never converted.
func (s *BoxService) Deposit(ctx context.Context, boxID uuid.UUID, currency string, amount decimal.Decimal) (resp *CollectionBoxResponse, err error) {
	defer func() { observeBoxOperation("deposit", err) }()

	if amount.Sign() <= 0 {
		return nil, toAppError(ErrInvalidAmount)
	}
	if !amount.Equal(amount.Round(amountPlaces)) {
		return nil, toAppError(ErrAmountPrecision)
	}
	if err := checkCurrency(ctx, s.policy, currency); err != nil {
		return nil, toAppError(err)
	}

	unlock := s.boxLocks.Lock(boxID)
	defer unlock()

	box, err := s.boxes.GetBox(ctx, boxID)
	if err != nil {
		return nil, toAppError(err)
	}

	box.Amounts[currency] = box.Amounts[currency].Add(amount)
	box.UpdatedAt = s.now()
	if err := s.boxes.SaveBox(ctx, box); err != nil {
		return nil, toAppError(fmt.Errorf("failed to save deposit: %w", err))
	}

	logger.WithContext(ctx).Debug("deposit accepted",
		zap.String("box_id", boxID.String()),
		zap.String("currency", currency),
		zap.String("amount", amount.String()),
	)
	return toBoxResponse(box), nil
}

// Assign attaches an empty box to an event. Assigning a box to the event it
// already belongs to returns the box unchanged.
func (s *BoxService) Assign(ctx context.Context, boxID, eventID uuid.UUID) (resp *CollectionBoxResponse, err error) {
	defer func() { observeBoxOperation("assign", err) }()

	unlock := s.boxLocks.Lock(boxID)
	defer unlock()

	box, err := s.boxes.GetBox(ctx, boxID)
	if err != nil {
		return nil, toAppError(err)
	}
	if !box.IsEmpty() {
		return nil, toAppError(ErrBoxNotEmpty)
	}
	if box.IsAssigned() {
		if *box.EventID != eventID {
			return nil, toAppError(ErrAlreadyAssigned)
		}
		return toBoxResponse(box), nil
	}

	if _, err := s.events.GetEvent(ctx, eventID); err != nil {
		return nil, toAppError(err)
	}

	box.EventID = &eventID
	box.UpdatedAt = s.now()
	if err := s.boxes.SaveBox(ctx, box); err != nil {
		return nil, toAppError(fmt.Errorf("failed to assign collection box: %w", err))
	}

	logger.WithContext(ctx).Info("collection box assigned",
		zap.String("box_id", boxID.String()),
		zap.String("event_id", eventID.String()),
	)
	return toBoxResponse(box), nil
}

// Empty converts the box's money into the event currency, credits the event
// and clears the box. Entries that cannot be converted are skipped with a
// warning; they are cleared too unless KeepUnconvertible is set.
func (s *BoxService) Empty(ctx context.Context, boxID uuid.UUID) (resp *CollectionBoxResponse, err error) {
	defer func() { observeBoxOperation("empty", err) }()

	unlockBox := s.boxLocks.Lock(boxID)
	defer unlockBox()

	box, err := s.boxes.GetBox(ctx, boxID)
	if err != nil {
		return nil, toAppError(err)
	}
	if !box.IsAssigned() {
		return nil, toAppError(ErrNotAssigned)
	}
	if box.IsEmpty() {
		return toBoxResponse(box), nil
	}

	eventID := *box.EventID
	unlockEvent := s.eventLocks.Lock(eventID)
	defer unlockEvent()

	event, err := s.events.GetEvent(ctx, eventID)
	if errors.Is(err, ErrNotFound) {
		return nil, toAppError(fmt.Errorf("%w: box %s references missing event %s", ErrConsistencyViolation, boxID, eventID))
	}
	if err != nil {
		return nil, toAppError(err)
	}

	log := logger.WithContext(ctx).With(
		zap.String("box_id", boxID.String()),
		zap.String("event_id", eventID.String()),
	)

	total := decimal.Zero
	var converted, skipped []string
	for _, code := range box.Currencies() {
		amount := box.Amounts[code]
		if amount.IsZero() {
			continue
		}
		value, err := s.converter.Convert(ctx, amount, code, event.Currency)
		if unconvertible(err, code) {
			log.Warn("skipping unconvertible box entry",
				zap.String("currency", code),
				zap.String("amount", amount.String()),
				zap.Bool("kept_in_box", s.cfg.KeepUnconvertible),
				zap.Error(err),
			)
			skippedEntriesTotal.WithLabelValues(code).Inc()
			skipped = append(skipped, code)
			continue
		}
		if err != nil {
			return nil, toAppError(err)
		}
		total = total.Add(value)
		converted = append(converted, code)
	}

	if len(converted) == 0 && s.cfg.KeepUnconvertible {
		return toBoxResponse(box), nil
	}

	cleared := box.Clone()
	for _, code := range converted {
		cleared.Amounts[code] = decimal.Zero
	}
	if !s.cfg.KeepUnconvertible {
		for _, code := range skipped {
			cleared.Amounts[code] = decimal.Zero
		}
	}
	cleared.UpdatedAt = s.now()

	previous := event.Balance
	if len(converted) > 0 {
		event.Balance = previous.Add(total)
		event.UpdatedAt = s.now()
		if err := s.events.SaveEvent(ctx, event); err != nil {
			return nil, toAppError(fmt.Errorf("failed to credit fundraising event: %w", err))
		}
	}

	if err := s.boxes.SaveBox(ctx, cleared); err != nil {
		if len(converted) == 0 {
			return nil, toAppError(fmt.Errorf("failed to clear collection box: %w", err))
		}
		event.Balance = previous
		if cerr := s.events.SaveEvent(context.WithoutCancel(ctx), event); cerr != nil {
			log.Error("failed to restore event balance after box save failure",
				zap.String("balance", previous.String()),
				zap.String("credited", total.String()),
				zap.Error(cerr),
			)
			return nil, toAppError(fmt.Errorf("failed to clear collection box: %w", errors.Join(err, cerr)))
		}
		return nil, toAppError(fmt.Errorf("failed to clear collection box: %w", err))
	}

	transferredTotal.WithLabelValues(event.Currency).Add(total.InexactFloat64())
	log.Info("collection box emptied",
		zap.String("credited", total.String()),
		zap.String("currency", event.Currency),
		zap.Strings("converted", converted),
		zap.Strings("skipped", skipped),
	)
	return toBoxResponse(cleared), nil
}

// unconvertible reports whether a conversion failure belongs to a single box
// entry: its currency is unknown, or the table carries no usable rate for it.
// Failures of the whole table or of the event currency abort the empty.
func unconvertible(err error, code string) bool {
	var cerr *exchangerate.CurrencyError
	return errors.As(err, &cerr) && cerr.Code == code
}

// Unregister removes a box. Unless force unregistering is allowed, the box
// must be empty and unassigned. Money left in a force-unregistered box is
// discarded.
func (s *BoxService) Unregister(ctx context.Context, boxID uuid.UUID) (err error) {
	defer func() { observeBoxOperation("unregister", err) }()

	unlock := s.boxLocks.Lock(boxID)
	defer unlock()

	box, err := s.boxes.GetBox(ctx, boxID)
	if err != nil {
		return toAppError(err)
	}
	if !box.IsEmpty() || box.IsAssigned() {
		if !s.cfg.AllowForceUnregister {
			return toAppError(ErrUnregisterRefused)
		}
		if !box.IsEmpty() {
			logger.WithContext(ctx).Warn("unregistering non-empty collection box",
				zap.String("box_id", boxID.String()),
				zap.Any("amounts", box.Amounts),
			)
		}
	}

	if err := s.boxes.DeleteBox(ctx, boxID); err != nil {
		return toAppError(err)
	}

	logger.WithContext(ctx).Info("collection box unregistered", zap.String("box_id", boxID.String()))
	return nil
}

// GetByID returns the full view of a box
func (s *BoxService) GetByID(ctx context.Context, boxID uuid.UUID) (*CollectionBoxResponse, error) {
	box, err := s.boxes.GetBox(ctx, boxID)
	if err != nil {
		return nil, toAppError(err)
	}
	return toBoxResponse(box), nil
}

// ListSummaries returns every box without amounts or event references
func (s *BoxService) ListSummaries(ctx context.Context) ([]CollectionBoxSummary, error) {
	boxes, err := s.boxes.ListBoxes(ctx)
	if err != nil {
		return nil, toAppError(fmt.Errorf("failed to list collection boxes: %w", err))
	}

	summaries := make([]CollectionBoxSummary, 0, len(boxes))
	for _, box := range boxes {
		summaries = append(summaries, toBoxSummary(box))
	}
	return summaries, nil
}
