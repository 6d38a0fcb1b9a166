package fundraising

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository keeps boxes and events in process memory. Stored values
// are copied in both directions so callers never share state with the store.
type MemoryRepository struct {
	mu     sync.RWMutex
	boxes  map[uuid.UUID]*CollectionBox
	events map[uuid.UUID]*FundraisingEvent
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		boxes:  make(map[uuid.UUID]*CollectionBox),
		events: make(map[uuid.UUID]*FundraisingEvent),
	}
}

func (r *MemoryRepository) GetBox(_ context.Context, id uuid.UUID) (*CollectionBox, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	box, ok := r.boxes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBoxNotFound, id)
	}
	return box.Clone(), nil
}

func (r *MemoryRepository) SaveBox(_ context.Context, box *CollectionBox) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.boxes[box.ID] = box.Clone()
	return nil
}

func (r *MemoryRepository) DeleteBox(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.boxes[id]; !ok {
		return fmt.Errorf("%w: %s", ErrBoxNotFound, id)
	}
	delete(r.boxes, id)
	return nil
}

func (r *MemoryRepository) ListBoxes(_ context.Context) ([]*CollectionBox, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	boxes := make([]*CollectionBox, 0, len(r.boxes))
	for _, box := range r.boxes {
		boxes = append(boxes, box.Clone())
	}
	slices.SortFunc(boxes, func(a, b *CollectionBox) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return boxes, nil
}

func (r *MemoryRepository) GetEvent(_ context.Context, id uuid.UUID) (*FundraisingEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.events[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	return event.Clone(), nil
}

func (r *MemoryRepository) SaveEvent(_ context.Context, event *FundraisingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[event.ID] = event.Clone()
	return nil
}

func (r *MemoryRepository) ListEvents(_ context.Context) ([]*FundraisingEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]*FundraisingEvent, 0, len(r.events))
	for _, event := range r.events {
		events = append(events, event.Clone())
	}
	slices.SortFunc(events, func(a, b *FundraisingEvent) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return events, nil
}
