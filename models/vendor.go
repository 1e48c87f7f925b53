package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PricingMode string

const (
	PricingFlatRate PricingMode = "flat_rate"
	PricingPerPlate PricingMode = "per_plate"
	PricingPerHour  PricingMode = "per_hour"
	PricingPerDay   PricingMode = "per_day"
	PricingPerSetup PricingMode = "per_setup"
)

// ValidPricingMode reports whether m is one of the supported billing
// units.
func ValidPricingMode(m PricingMode) bool {
	switch m {
	case PricingFlatRate, PricingPerPlate, PricingPerHour, PricingPerDay, PricingPerSetup:
		return true
	}
	return false
}

type VendorStatus string

const (
	VendorPending VendorStatus = "pending"
	// VendorAccepted means the vendor accepted at a negotiated price.
	VendorAccepted VendorStatus = "accepted"
	// VendorAcceptedOriginal means the vendor accepted at the original
	// listed price.
	VendorAcceptedOriginal VendorStatus = "accepted_original"
	VendorDeclined         VendorStatus = "declined"
)

// Vendor is one supplier attached to an event. FinalCost is derived:
// it is recomputed whenever the guest count, the pricing inputs, or
// the negotiated price change.
type Vendor struct {
	ID       string      `json:"id"`
	EventID  string      `json:"event_id"`
	Title    string      `json:"title"`
	Category string      `json:"category"`
	Price    decimal.Decimal `json:"price"`
	FinalCost decimal.Decimal `json:"final_cost"`

	PricingMode PricingMode `json:"pricing_mode"`
	// Units is the contracted billing units per day (hours for
	// per-hour vendors, sessions for per-day vendors without a venue
	// duration).
	Units        int `json:"units"`
	DurationDays int `json:"duration_days"`
	// MinGuestLimit, when set (> 0), is the headcount floor below
	// which the vendor's contract is considered violated.
	MinGuestLimit int `json:"min_guest_limit"`

	Status  VendorStatus `json:"status"`
	AddedBy string       `json:"added_by"`

	IsNegotiating   bool            `json:"is_negotiating"`
	NegotiatedPrice decimal.Decimal `json:"negotiated_price"`
	Notes           string          `json:"notes"`

	AddedAt time.Time `json:"added_at"`
}

// Accepted reports whether the vendor currently contributes its final
// cost to the event's spent budget.
func (v *Vendor) Accepted() bool {
	return v.Status == VendorAccepted || v.Status == VendorAcceptedOriginal
}

// EffectivePrice is the price the final cost is computed from: the
// negotiated price once the vendor accepted a negotiation, the listed
// price otherwise.
func (v *Vendor) EffectivePrice() decimal.Decimal {
	if v.Status == VendorAccepted && v.NegotiatedPrice.IsPositive() {
		return v.NegotiatedPrice
	}
	return v.Price
}

// GuestDependent reports whether the vendor's cost changes with the
// guest count.
func (v *Vendor) GuestDependent() bool {
	return v.PricingMode == PricingPerPlate
}

// VendorResponse is the negotiation outcome submitted on behalf of a
// contacted vendor.
type VendorResponse string

const (
	ResponseAcceptOriginal   VendorResponse = "accept_original"
	ResponseAcceptNegotiated VendorResponse = "accept_negotiated"
	ResponseDecline          VendorResponse = "decline"
)
