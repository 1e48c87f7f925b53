package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
)

// Budget holds the allocated and spent totals for one event. Spent is
// derived state: between operations it equals the sum of accepted
// vendor final costs plus manual expenses.
type Budget struct {
	Allocated decimal.Decimal `json:"allocated"`
	Spent     decimal.Decimal `json:"spent"`
}

// NewBudget normalizes a bare allocated amount into a budget. This is
// the single construction point: spent always starts at zero.
func NewBudget(allocated decimal.Decimal) Budget {
	return Budget{
		Allocated: allocated,
		Spent:     decimal.Zero,
	}
}

// Remaining can go negative; over-budget is a reportable state, not an
// error.
func (b Budget) Remaining() decimal.Decimal {
	return b.Allocated.Sub(b.Spent)
}

type Event struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Budget     Budget      `json:"budget"`
	GuestLimit int         `json:"guest_limit"`
	GuestCount int         `json:"guest_count"`
	Status     EventStatus `json:"status"`

	// Version is the optimistic concurrency token. The store rejects a
	// write whose version does not match the stored row.
	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
