package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"event-planner/internal/status"
	"event-planner/internal/store"
	"event-planner/models"
)

// BudgetService owns the spent-budget figure of an event. All calls
// run inside the Coordinator's critical section, so no two deltas for
// the same event apply concurrently.
type BudgetService struct {
	// requireNonNegative rejects deltas that would take spent below
	// zero. Spending past the allocation is always allowed; over-budget
	// is a reportable state, not an error.
	requireNonNegative bool

	pricing PricingEngine
}

func NewBudgetService(requireNonNegative bool) *BudgetService {
	return &BudgetService{requireNonNegative: requireNonNegative}
}

// ApplyDelta adds a signed amount to the event's spent figure and
// returns the new value.
func (s *BudgetService) ApplyDelta(state *store.EventState, delta decimal.Decimal) (decimal.Decimal, error) {
	next := state.Event.Budget.Spent.Add(delta)
	if s.requireNonNegative && next.IsNegative() {
		return state.Event.Budget.Spent, fmt.Errorf("%w: delta %s would take spent to %s",
			status.ErrNegativeBudget, delta, next)
	}

	state.Event.Budget.Spent = next
	return next, nil
}

// Recompute rebuilds spent from scratch: accepted vendor final costs
// (refreshed against the current guest count) plus manual expenses.
// Applying it twice yields the same figure.
func (s *BudgetService) Recompute(state *store.EventState) decimal.Decimal {
	spent := decimal.Zero

	for _, v := range state.Vendors {
		if !v.Accepted() {
			continue
		}
		if v.GuestDependent() {
			v.FinalCost = s.pricing.FinalCost(v, state.Event.GuestCount)
		}
		spent = spent.Add(v.FinalCost)
	}
	for _, e := range state.Expenses {
		spent = spent.Add(e.Cost)
	}

	state.Event.Budget.Spent = spent
	return spent
}

// acceptedVendorTotal sums the current final cost of accepted vendors.
func acceptedVendorTotal(vendors []*models.Vendor) decimal.Decimal {
	total := decimal.Zero
	for _, v := range vendors {
		if v.Accepted() {
			total = total.Add(v.FinalCost)
		}
	}
	return total
}
