// Package store provides persistence for planner state. Event state is
// read and written as one aggregate so a mutating operation either
// lands completely or not at all.
package store

import (
	"context"
	"time"

	"event-planner/models"
)

// EventState is the aggregate a mutating operation works on: the event
// row plus its owned guest, vendor and expense collections. Operations
// mutate an in-memory copy and commit it with PutEventState.
type EventState struct {
	Event    *models.Event
	Guests   []*models.Guest
	Vendors  []*models.Vendor
	Expenses []*models.Expense
}

// Guest returns the guest with the given id, or nil.
func (s *EventState) Guest(id string) *models.Guest {
	for _, g := range s.Guests {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// Vendor returns the vendor with the given id, or nil.
func (s *EventState) Vendor(id string) *models.Vendor {
	for _, v := range s.Vendors {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// Store is the persistence contract for planner state.
//
// PutEventState performs an optimistic version check: the write is
// rejected with status.ErrConflict when the stored event version no
// longer matches the one the state was loaded at. On success the
// aggregate is replaced atomically and the version advances by one.
//
// MarkParticipantPaid and MarkParticipantDeclined are conditional
// writes: the transition applies only while the participant is still
// pending, and the returned bool reports whether this call applied it.
type Store interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventState(ctx context.Context, eventID string) (*EventState, error)
	PutEventState(ctx context.Context, state *EventState) error
	DeleteEvent(ctx context.Context, eventID string) error

	CreateParticipants(ctx context.Context, participants []*models.SplitParticipant) error
	GetParticipant(ctx context.Context, participantID string) (*models.SplitParticipant, error)
	ListParticipants(ctx context.Context, eventID string) ([]*models.SplitParticipant, error)
	MarkParticipantPaid(ctx context.Context, participantID, paymentID string, paidAt time.Time) (bool, error)
	MarkParticipantDeclined(ctx context.Context, participantID string) (bool, error)

	Close() error
}
