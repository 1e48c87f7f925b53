package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ParticipantStatus string

const (
	ParticipantPending  ParticipantStatus = "pending"
	ParticipantPaid     ParticipantStatus = "paid"
	ParticipantDeclined ParticipantStatus = "declined"
)

// SplitParticipant is one person owing a fixed share of the event's
// vendor cost. Amount is fixed at split-creation time and never
// silently recomputed. Paid and Declined are terminal.
type SplitParticipant struct {
	ID      string            `json:"id"`
	EventID string            `json:"event_id"`
	Name    string            `json:"name"`
	Email   string            `json:"email"`
	Amount  decimal.Decimal   `json:"amount"`
	Status  ParticipantStatus `json:"status"`

	PaymentID        string     `json:"payment_id,omitempty"`
	PaymentTimestamp *time.Time `json:"payment_timestamp,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Settled reports whether the participant is in a terminal state.
func (p *SplitParticipant) Settled() bool {
	return p.Status == ParticipantPaid || p.Status == ParticipantDeclined
}

// PaymentNotification is a gateway webhook message confirming one
// participant's payment.
type PaymentNotification struct {
	ParticipantID string `json:"participant_id"`
	OrderID       string `json:"order_id"`
	PaymentID     string `json:"payment_id"`
	Signature     string `json:"signature"`
	Status        string `json:"status"`
}
