package fundraising

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/richxcame/fundraising/pkg/database"
	"github.com/shopspring/decimal"
)

// Repository stores boxes and events in Postgres
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Postgres repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetBox retrieves a box and its amounts
func (r *Repository) GetBox(ctx context.Context, id uuid.UUID) (*CollectionBox, error) {
	query := `
		SELECT id, event_id, created_at, updated_at
		FROM collection_boxes
		WHERE id = $1
	`

	box, err := scanBox(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrBoxNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection box: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT currency, amount
		FROM collection_box_amounts
		WHERE box_id = $1
		ORDER BY currency
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection box amounts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var code string
		var amount decimal.Decimal
		if err := rows.Scan(&code, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan collection box amount: %w", err)
		}
		box.Amounts[code] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read collection box amounts: %w", err)
	}

	return box, nil
}

// SaveBox upserts a box and replaces its amounts in one transaction
func (r *Repository) SaveBox(ctx context.Context, box *CollectionBox) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO collection_boxes (id, event_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE
			SET event_id = EXCLUDED.event_id, updated_at = EXCLUDED.updated_at
		`, box.ID, nullableID(box.EventID), box.CreatedAt, box.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to save collection box: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM collection_box_amounts WHERE box_id = $1`, box.ID); err != nil {
			return fmt.Errorf("failed to clear collection box amounts: %w", err)
		}

		for _, code := range box.Currencies() {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO collection_box_amounts (box_id, currency, amount)
				VALUES ($1, $2, $3)
			`, box.ID, code, box.Amounts[code])
			if err != nil {
				return fmt.Errorf("failed to save collection box amount: %w", err)
			}
		}
		return nil
	})
}

// DeleteBox removes a box. Its amounts go with it through ON DELETE CASCADE.
func (r *Repository) DeleteBox(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM collection_boxes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete collection box: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete collection box: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrBoxNotFound, id)
	}
	return nil
}

// ListBoxes retrieves every box, oldest first
func (r *Repository) ListBoxes(ctx context.Context) ([]*CollectionBox, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_id, created_at, updated_at
		FROM collection_boxes
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list collection boxes: %w", err)
	}
	defer rows.Close()

	boxes := make([]*CollectionBox, 0)
	byID := make(map[uuid.UUID]*CollectionBox)
	for rows.Next() {
		box, err := scanBox(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection box: %w", err)
		}
		boxes = append(boxes, box)
		byID[box.ID] = box
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list collection boxes: %w", err)
	}

	amountRows, err := r.db.QueryContext(ctx, `
		SELECT box_id, currency, amount
		FROM collection_box_amounts
		ORDER BY box_id, currency
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list collection box amounts: %w", err)
	}
	defer amountRows.Close()

	for amountRows.Next() {
		var boxID uuid.UUID
		var code string
		var amount decimal.Decimal
		if err := amountRows.Scan(&boxID, &code, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan collection box amount: %w", err)
		}
		if box, ok := byID[boxID]; ok {
			box.Amounts[code] = amount
		}
	}
	if err := amountRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list collection box amounts: %w", err)
	}

	return boxes, nil
}

// GetEvent retrieves a fundraising event
func (r *Repository) GetEvent(ctx context.Context, id uuid.UUID) (*FundraisingEvent, error) {
	query := `
		SELECT id, name, currency, balance, created_at, updated_at
		FROM fundraising_events
		WHERE id = $1
	`

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fundraising event: %w", err)
	}
	return event, nil
}

// SaveEvent upserts an event. Name and currency never change after insert.
func (r *Repository) SaveEvent(ctx context.Context, event *FundraisingEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO fundraising_events (id, name, currency, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET balance = EXCLUDED.balance, updated_at = EXCLUDED.updated_at
	`, event.ID, event.Name, event.Currency, event.Balance, event.CreatedAt, event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save fundraising event: %w", err)
	}
	return nil
}

// ListEvents retrieves every event, oldest first
func (r *Repository) ListEvents(ctx context.Context) ([]*FundraisingEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, currency, balance, created_at, updated_at
		FROM fundraising_events
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list fundraising events: %w", err)
	}
	defer rows.Close()

	events := make([]*FundraisingEvent, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fundraising event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list fundraising events: %w", err)
	}
	return events, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBox(row scanner) (*CollectionBox, error) {
	box := &CollectionBox{Amounts: make(map[string]decimal.Decimal)}
	var eventID uuid.NullUUID
	if err := row.Scan(&box.ID, &eventID, &box.CreatedAt, &box.UpdatedAt); err != nil {
		return nil, err
	}
	if eventID.Valid {
		id := eventID.UUID
		box.EventID = &id
	}
	return box, nil
}

func scanEvent(row scanner) (*FundraisingEvent, error) {
	event := &FundraisingEvent{}
	err := row.Scan(&event.ID, &event.Name, &event.Currency, &event.Balance, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return event, nil
}

func nullableID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
