package models

import (
	"time"
)

type GuestStatus string

const (
	GuestPending   GuestStatus = "pending"
	GuestConfirmed GuestStatus = "confirmed"
	GuestDeclined  GuestStatus = "declined"
)

// Guest belongs to exactly one event. Email is the dedup key, unique
// per event (compared case-insensitively).
type Guest struct {
	ID      string      `json:"id"`
	EventID string      `json:"event_id"`
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Status  GuestStatus `json:"status"`
	AddedAt time.Time   `json:"added_at"`
}

// CanTransition reports whether the RSVP state machine allows moving
// to next. Pending is the only non-terminal state.
func (g *Guest) CanTransition(next GuestStatus) bool {
	if g.Status != GuestPending {
		return false
	}
	return next == GuestConfirmed || next == GuestDeclined
}

// GuestRow is one already-parsed row of a bulk import file.
type GuestRow struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
