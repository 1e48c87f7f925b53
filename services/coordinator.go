package services

import (
	"context"

	"event-planner/internal/store"
	"event-planner/utils"
)

// Coordinator serializes all mutating operations against a single
// event. It holds the event's mutex for the whole operation, hands the
// operation an in-memory aggregate copy, and commits the copy with one
// atomic, version-checked store write. A failed operation therefore
// persists nothing, and no two operations on the same event observe a
// torn intermediate state.
type Coordinator struct {
	store store.Store
	locks utils.KeyedMutex
}

func NewCoordinator(st store.Store) *Coordinator {
	return &Coordinator{store: st}
}

// Store exposes the underlying store for non-event-scoped reads.
func (c *Coordinator) Store() store.Store {
	return c.store
}

// Update runs fn inside the event's critical section. fn mutates the
// loaded aggregate; the mutation is committed only when fn returns
// nil and the version check passes.
func (c *Coordinator) Update(ctx context.Context, eventID string, fn func(*store.EventState) error) (*store.EventState, error) {
	unlock := c.locks.Lock(eventID)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	state, err := c.store.GetEventState(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := fn(state); err != nil {
		return nil, err
	}

	if err := c.store.PutEventState(ctx, state); err != nil {
		return nil, err
	}

	return state, nil
}

// View runs fn against a consistent snapshot of the event without
// committing anything.
func (c *Coordinator) View(ctx context.Context, eventID string, fn func(*store.EventState) error) error {
	state, err := c.store.GetEventState(ctx, eventID)
	if err != nil {
		return err
	}
	return fn(state)
}
