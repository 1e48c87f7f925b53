package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"event-planner/internal/store"
	"event-planner/models"
)

type testEnv struct {
	store  store.Store
	coord  *Coordinator
	budget *BudgetService
	events *EventService
	guests *GuestService
	vendor *VendorService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := store.NewMemory()
	coord := NewCoordinator(st)
	budget := NewBudgetService(true)
	notifier := NewNotifier(nil)

	return &testEnv{
		store:  st,
		coord:  coord,
		budget: budget,
		events: NewEventService(coord, budget, notifier),
		guests: NewGuestService(coord, budget, notifier),
		vendor: NewVendorService(coord, budget, notifier),
	}
}

func (e *testEnv) seedEvent(t *testing.T, allocated string, guestLimit int) *models.Event {
	t.Helper()

	event := &models.Event{
		ID:         uuid.New().String(),
		Name:       "Launch Party",
		Budget:     models.NewBudget(dec(allocated)),
		GuestLimit: guestLimit,
		Status:     models.EventUpcoming,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, e.store.CreateEvent(context.Background(), event))
	return event
}

func (e *testEnv) seedGuests(t *testing.T, eventID string, n int) {
	t.Helper()

	rows := make([]models.GuestRow, n)
	for i := range rows {
		rows[i] = models.GuestRow{
			Name:  "Guest",
			Email: uuid.New().String() + "@example.com",
		}
	}
	res, err := e.guests.ImportGuests(context.Background(), eventID, rows)
	require.NoError(t, err)
	require.Equal(t, n, res.NewGuestsAdded)
}

func (e *testEnv) state(t *testing.T, eventID string) *store.EventState {
	t.Helper()

	st, err := e.store.GetEventState(context.Background(), eventID)
	require.NoError(t, err)
	return st
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
