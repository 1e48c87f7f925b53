package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"event-planner/internal/status"
	"event-planner/internal/store"
	"event-planner/models"
	"event-planner/monitoring"
)

// EventService manages event lifecycle and the manual expense ledger,
// and exposes the budget reconciliation entry point.
type EventService struct {
	coord    *Coordinator
	pricing  PricingEngine
	budget   *BudgetService
	notifier *Notifier
}

func NewEventService(coord *Coordinator, budget *BudgetService, notifier *Notifier) *EventService {
	return &EventService{
		coord:    coord,
		budget:   budget,
		notifier: notifier,
	}
}

type CreateEventInput struct {
	Name       string          `json:"name"`
	Allocated  decimal.Decimal `json:"allocated"`
	GuestLimit int             `json:"guest_limit"`
}

// CreateEvent normalizes the bare allocated amount into a budget
// exactly once, at this boundary.
func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (event *models.Event, err error) {
	defer func() { monitoring.TrackOperation("create_event", err) }()

	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: event name is required", status.ErrValidation)
	}
	if in.Allocated.IsNegative() {
		return nil, fmt.Errorf("%w: allocated budget must be non-negative", status.ErrValidation)
	}
	if in.GuestLimit < 1 {
		return nil, fmt.Errorf("%w: guest limit must be at least 1", status.ErrValidation)
	}

	event = &models.Event{
		ID:         uuid.New().String(),
		Name:       strings.TrimSpace(in.Name),
		Budget:     models.NewBudget(in.Allocated),
		GuestLimit: in.GuestLimit,
		Status:     models.EventUpcoming,
		CreatedAt:  time.Now(),
	}
	if err := s.coord.Store().CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// EventSummary is the read-side projection of one event.
type EventSummary struct {
	Event            *models.Event     `json:"event"`
	Guests           []*models.Guest   `json:"guests"`
	Vendors          []*models.Vendor  `json:"vendors"`
	Expenses         []*models.Expense `json:"expenses"`
	ViolatingVendors []*models.Vendor  `json:"violating_vendors"`
	Remaining        decimal.Decimal   `json:"remaining"`
	OverBudget       bool              `json:"over_budget"`
}

func (s *EventService) GetSummary(ctx context.Context, eventID string) (*EventSummary, error) {
	var summary *EventSummary
	err := s.coord.View(ctx, eventID, func(st *store.EventState) error {
		summary = &EventSummary{
			Event:            st.Event,
			Guests:           st.Guests,
			Vendors:          st.Vendors,
			Expenses:         st.Expenses,
			ViolatingVendors: s.pricing.Violating(st.Vendors, st.Event.GuestCount),
			Remaining:        st.Event.Budget.Remaining(),
			OverBudget:       st.Event.Budget.Spent.GreaterThan(st.Event.Budget.Allocated),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// DeleteEvent removes the event and cascades to its guests, vendors,
// expenses and split participants.
func (s *EventService) DeleteEvent(ctx context.Context, eventID string) (err error) {
	defer func() { monitoring.TrackOperation("delete_event", err) }()
	return s.coord.Store().DeleteEvent(ctx, eventID)
}

// RecomputeBudget is the reconciliation entry point: it rebuilds spent
// from the current vendor and expense state. Running it twice yields
// the same figure.
func (s *EventService) RecomputeBudget(ctx context.Context, eventID string) (spent decimal.Decimal, err error) {
	defer func() { monitoring.TrackOperation("recompute_budget", err) }()

	state, err := s.coord.Update(ctx, eventID, func(st *store.EventState) error {
		spent = s.budget.Recompute(st)
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	f, _ := spent.Float64()
	monitoring.TrackEvent(eventID, state.Event.GuestCount, f)
	return spent, nil
}

type ExpenseInput struct {
	Title string          `json:"title"`
	Cost  decimal.Decimal `json:"cost"`
}

// AddExpense records a manual cost and applies it to spent in the same
// committed write.
func (s *EventService) AddExpense(ctx context.Context, eventID string, in ExpenseInput) (expense *models.Expense, err error) {
	defer func() { monitoring.TrackOperation("add_expense", err) }()

	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: expense title is required", status.ErrValidation)
	}
	if in.Cost.IsNegative() {
		return nil, fmt.Errorf("%w: expense cost must be non-negative", status.ErrValidation)
	}

	_, err = s.coord.Update(ctx, eventID, func(st *store.EventState) error {
		expense = &models.Expense{
			ID:      uuid.New().String(),
			EventID: eventID,
			Title:   strings.TrimSpace(in.Title),
			Cost:    in.Cost,
			AddedAt: time.Now(),
		}
		st.Expenses = append(st.Expenses, expense)
		_, err := s.budget.ApplyDelta(st, in.Cost)
		return err
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// RemoveExpense drops a manual cost and reverses its budget effect.
func (s *EventService) RemoveExpense(ctx context.Context, eventID, expenseID string) (err error) {
	defer func() { monitoring.TrackOperation("remove_expense", err) }()

	_, err = s.coord.Update(ctx, eventID, func(st *store.EventState) error {
		for i, e := range st.Expenses {
			if e.ID == expenseID {
				st.Expenses = append(st.Expenses[:i], st.Expenses[i+1:]...)
				_, err := s.budget.ApplyDelta(st, e.Cost.Neg())
				return err
			}
		}
		return fmt.Errorf("%w: expense %s", status.ErrNotFound, expenseID)
	})
	return err
}
