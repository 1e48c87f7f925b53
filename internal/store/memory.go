package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"event-planner/internal/status"
	"event-planner/models"
)

var _ Store = (*Memory)(nil)

// Memory is an in-process Store used by tests and single-node dev
// runs. It honors the same version-check and conditional-write
// contract as the durable stores.
type Memory struct {
	mu           sync.RWMutex
	events       map[string]*EventState
	participants map[string]*models.SplitParticipant
}

func NewMemory() *Memory {
	return &Memory{
		events:       make(map[string]*EventState),
		participants: make(map[string]*models.SplitParticipant),
	}
}

func (m *Memory) CreateEvent(_ context.Context, event *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[event.ID]; ok {
		return fmt.Errorf("%w: event %s already exists", status.ErrConflict, event.ID)
	}

	ev := *event
	m.events[event.ID] = &EventState{Event: &ev}
	return nil
}

func (m *Memory) GetEventState(_ context.Context, eventID string) (*EventState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.events[eventID]
	if !ok {
		return nil, fmt.Errorf("%w: event %s", status.ErrNotFound, eventID)
	}
	return copyState(state), nil
}

func (m *Memory) PutEventState(_ context.Context, state *EventState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.events[state.Event.ID]
	if !ok {
		return fmt.Errorf("%w: event %s", status.ErrNotFound, state.Event.ID)
	}
	if stored.Event.Version != state.Event.Version {
		return fmt.Errorf("%w: event %s version %d is stale", status.ErrConflict, state.Event.ID, state.Event.Version)
	}

	state.Event.Version++
	m.events[state.Event.ID] = copyState(state)
	return nil
}

func (m *Memory) DeleteEvent(_ context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[eventID]; !ok {
		return fmt.Errorf("%w: event %s", status.ErrNotFound, eventID)
	}
	delete(m.events, eventID)

	// Cascade to the event's participants.
	for id, p := range m.participants {
		if p.EventID == eventID {
			delete(m.participants, id)
		}
	}
	return nil
}

func (m *Memory) CreateParticipants(_ context.Context, participants []*models.SplitParticipant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range participants {
		if _, ok := m.participants[p.ID]; ok {
			return fmt.Errorf("%w: participant %s already exists", status.ErrConflict, p.ID)
		}
	}
	for _, p := range participants {
		cp := *p
		m.participants[p.ID] = &cp
	}
	return nil
}

func (m *Memory) GetParticipant(_ context.Context, participantID string) (*models.SplitParticipant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.participants[participantID]
	if !ok {
		return nil, fmt.Errorf("%w: participant %s", status.ErrNotFound, participantID)
	}
	cp := *p
	return &cp, nil
}

func (m *Memory) ListParticipants(_ context.Context, eventID string) ([]*models.SplitParticipant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*models.SplitParticipant
	for _, p := range m.participants {
		if p.EventID == eventID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *Memory) MarkParticipantPaid(_ context.Context, participantID, paymentID string, paidAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.participants[participantID]
	if !ok {
		return false, fmt.Errorf("%w: participant %s", status.ErrNotFound, participantID)
	}
	if p.Status != models.ParticipantPending {
		return false, nil
	}

	p.Status = models.ParticipantPaid
	p.PaymentID = paymentID
	ts := paidAt
	p.PaymentTimestamp = &ts
	return true, nil
}

func (m *Memory) MarkParticipantDeclined(_ context.Context, participantID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.participants[participantID]
	if !ok {
		return false, fmt.Errorf("%w: participant %s", status.ErrNotFound, participantID)
	}
	if p.Status != models.ParticipantPending {
		return false, nil
	}

	p.Status = models.ParticipantDeclined
	return true, nil
}

func (m *Memory) Close() error { return nil }

// copyState deep-copies an aggregate so callers never alias stored
// state.
func copyState(s *EventState) *EventState {
	ev := *s.Event
	out := &EventState{Event: &ev}

	for _, g := range s.Guests {
		cp := *g
		out.Guests = append(out.Guests, &cp)
	}
	for _, v := range s.Vendors {
		cp := *v
		out.Vendors = append(out.Vendors, &cp)
	}
	for _, e := range s.Expenses {
		cp := *e
		out.Expenses = append(out.Expenses, &cp)
	}
	return out
}
