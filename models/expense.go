package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a manual cost attached to an event outside the vendor
// workflow. It feeds the spent reconciliation sum alongside accepted
// vendors.
type Expense struct {
	ID      string          `json:"id"`
	EventID string          `json:"event_id"`
	Title   string          `json:"title"`
	Cost    decimal.Decimal `json:"cost"`
	AddedAt time.Time       `json:"added_at"`
}
