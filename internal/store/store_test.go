package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-planner/internal/status"
	"event-planner/models"
)

// Every Store implementation honors the same contract, so the suite
// runs against each of them.
func forEachStore(t *testing.T, run func(t *testing.T, st Store)) {
	t.Run("memory", func(t *testing.T) {
		run(t, NewMemory())
	})
	t.Run("sqlite", func(t *testing.T) {
		st, err := NewSQLite(filepath.Join(t.TempDir(), "planner.db"))
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
		run(t, st)
	})
}

func newEvent() *models.Event {
	return &models.Event{
		ID:         uuid.New().String(),
		Name:       "Launch Party",
		Budget:     models.NewBudget(decimal.NewFromInt(10000)),
		GuestLimit: 50,
		Status:     models.EventUpcoming,
		CreatedAt:  time.Now(),
	}
}

func TestStore_EventRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		event := newEvent()

		require.NoError(t, st.CreateEvent(ctx, event))
		assert.ErrorIs(t, st.CreateEvent(ctx, event), status.ErrConflict)

		state, err := st.GetEventState(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, event.ID, state.Event.ID)
		assert.Equal(t, "Launch Party", state.Event.Name)
		assert.True(t, decimal.NewFromInt(10000).Equal(state.Event.Budget.Allocated))
		assert.Empty(t, state.Guests)

		_, err = st.GetEventState(ctx, "missing")
		assert.ErrorIs(t, err, status.ErrNotFound)
	})
}

func TestStore_PutEventStateCommitsAggregate(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		event := newEvent()
		require.NoError(t, st.CreateEvent(ctx, event))

		state, err := st.GetEventState(ctx, event.ID)
		require.NoError(t, err)

		state.Guests = append(state.Guests, &models.Guest{
			ID:      uuid.New().String(),
			EventID: event.ID,
			Name:    "Ana",
			Email:   "ana@example.com",
			Status:  models.GuestConfirmed,
			AddedAt: time.Now(),
		})
		state.Vendors = append(state.Vendors, &models.Vendor{
			ID:          uuid.New().String(),
			EventID:     event.ID,
			Title:       "Caterer",
			Price:       decimal.NewFromInt(500),
			FinalCost:   decimal.NewFromInt(500),
			PricingMode: models.PricingPerPlate,
			Status:      models.VendorAccepted,
			AddedAt:     time.Now(),
		})
		state.Expenses = append(state.Expenses, &models.Expense{
			ID:      uuid.New().String(),
			EventID: event.ID,
			Title:   "Permits",
			Cost:    decimal.NewFromInt(300),
			AddedAt: time.Now(),
		})
		state.Event.GuestCount = 1
		state.Event.Budget.Spent = decimal.NewFromInt(800)

		require.NoError(t, st.PutEventState(ctx, state))

		got, err := st.GetEventState(ctx, event.ID)
		require.NoError(t, err)
		assert.Len(t, got.Guests, 1)
		assert.Len(t, got.Vendors, 1)
		assert.Len(t, got.Expenses, 1)
		assert.Equal(t, 1, got.Event.GuestCount)
		assert.True(t, decimal.NewFromInt(800).Equal(got.Event.Budget.Spent))
		assert.Equal(t, models.VendorAccepted, got.Vendors[0].Status)
	})
}

func TestStore_VersionConflict(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		event := newEvent()
		require.NoError(t, st.CreateEvent(ctx, event))

		first, err := st.GetEventState(ctx, event.ID)
		require.NoError(t, err)
		second, err := st.GetEventState(ctx, event.ID)
		require.NoError(t, err)

		first.Event.GuestCount = 1
		require.NoError(t, st.PutEventState(ctx, first))

		// The state loaded before the first commit is now stale.
		second.Event.GuestCount = 99
		err = st.PutEventState(ctx, second)
		assert.ErrorIs(t, err, status.ErrConflict)

		got, err := st.GetEventState(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Event.GuestCount, "stale write must not land")
	})
}

func TestStore_ParticipantLifecycle(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		event := newEvent()
		require.NoError(t, st.CreateEvent(ctx, event))

		a := &models.SplitParticipant{
			ID:        uuid.New().String(),
			EventID:   event.ID,
			Name:      "Ana",
			Email:     "ana@example.com",
			Amount:    decimal.NewFromInt(100),
			Status:    models.ParticipantPending,
			CreatedAt: time.Now(),
		}
		b := &models.SplitParticipant{
			ID:        uuid.New().String(),
			EventID:   event.ID,
			Name:      "Ben",
			Email:     "ben@example.com",
			Amount:    decimal.NewFromInt(100),
			Status:    models.ParticipantPending,
			CreatedAt: time.Now(),
		}
		require.NoError(t, st.CreateParticipants(ctx, []*models.SplitParticipant{a, b}))

		listed, err := st.ListParticipants(ctx, event.ID)
		require.NoError(t, err)
		assert.Len(t, listed, 2)

		applied, err := st.MarkParticipantPaid(ctx, a.ID, "pay-1", time.Now())
		require.NoError(t, err)
		assert.True(t, applied)

		// Terminal states reject further transitions without error.
		applied, err = st.MarkParticipantPaid(ctx, a.ID, "pay-2", time.Now())
		require.NoError(t, err)
		assert.False(t, applied)

		applied, err = st.MarkParticipantDeclined(ctx, a.ID)
		require.NoError(t, err)
		assert.False(t, applied)

		got, err := st.GetParticipant(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ParticipantPaid, got.Status)
		assert.Equal(t, "pay-1", got.PaymentID)
		require.NotNil(t, got.PaymentTimestamp)

		applied, err = st.MarkParticipantDeclined(ctx, b.ID)
		require.NoError(t, err)
		assert.True(t, applied)

		_, err = st.MarkParticipantPaid(ctx, "missing", "pay-3", time.Now())
		assert.ErrorIs(t, err, status.ErrNotFound)
	})
}

func TestStore_DeleteEventCascades(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		event := newEvent()
		require.NoError(t, st.CreateEvent(ctx, event))

		state, err := st.GetEventState(ctx, event.ID)
		require.NoError(t, err)
		state.Guests = append(state.Guests, &models.Guest{
			ID:      uuid.New().String(),
			EventID: event.ID,
			Email:   "ana@example.com",
			Status:  models.GuestPending,
			AddedAt: time.Now(),
		})
		require.NoError(t, st.PutEventState(ctx, state))

		p := &models.SplitParticipant{
			ID:        uuid.New().String(),
			EventID:   event.ID,
			Email:     "ana@example.com",
			Amount:    decimal.NewFromInt(50),
			Status:    models.ParticipantPending,
			CreatedAt: time.Now(),
		}
		require.NoError(t, st.CreateParticipants(ctx, []*models.SplitParticipant{p}))

		require.NoError(t, st.DeleteEvent(ctx, event.ID))

		_, err = st.GetEventState(ctx, event.ID)
		assert.ErrorIs(t, err, status.ErrNotFound)
		_, err = st.GetParticipant(ctx, p.ID)
		assert.ErrorIs(t, err, status.ErrNotFound)

		assert.ErrorIs(t, st.DeleteEvent(ctx, event.ID), status.ErrNotFound)
	})
}
