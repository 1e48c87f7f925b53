package services

import (
	"github.com/shopspring/decimal"

	"event-planner/models"
)

// venueCategory gets duration-based per-day pricing.
const venueCategory = "venue"

// PricingEngine computes a vendor's cost contribution from its pricing
// mode, the event's guest count and the contracted duration. It is
// stateless; recomputation happens inside the caller's critical
// section.
type PricingEngine struct{}

// FinalCost computes the vendor's currently-applicable cost using its
// effective (possibly negotiated) price.
func (e PricingEngine) FinalCost(v *models.Vendor, guestCount int) decimal.Decimal {
	return e.CostAt(v, v.EffectivePrice(), guestCount)
}

// CostAt computes the vendor's cost as if its unit price were price.
// Outputs are never negative.
func (e PricingEngine) CostAt(v *models.Vendor, price decimal.Decimal, guestCount int) decimal.Decimal {
	var cost decimal.Decimal

	switch v.PricingMode {
	case models.PricingPerPlate:
		cost = price.Mul(decimal.NewFromInt(int64(guestCount)))

	case models.PricingPerHour:
		days := v.DurationDays
		if days < 1 {
			days = 1
		}
		cost = decimal.NewFromInt(int64(v.Units)).Mul(price).Mul(decimal.NewFromInt(int64(days)))

	case models.PricingPerDay:
		if v.Category == venueCategory && v.DurationDays > 0 {
			cost = price.Mul(decimal.NewFromInt(int64(v.DurationDays)))
		} else {
			cost = decimal.NewFromInt(int64(v.Units)).Mul(price)
		}

	default:
		// flat rate and one-time setup
		cost = price
	}

	if cost.IsNegative() {
		return decimal.Zero
	}
	return cost
}

// Violating returns the vendors whose contractual guest minimum is no
// longer met. They are reported, never auto-removed; resolving the
// violation is the event owner's decision.
func (e PricingEngine) Violating(vendors []*models.Vendor, guestCount int) []*models.Vendor {
	var out []*models.Vendor
	for _, v := range vendors {
		if v.MinGuestLimit > 0 && guestCount < v.MinGuestLimit {
			out = append(out, v)
		}
	}
	return out
}

// recomputeGuestDependent refreshes the final cost of every accepted
// vendor whose price scales with the guest count, returning the
// changed vendors and the aggregate cost delta.
func (e PricingEngine) recomputeGuestDependent(vendors []*models.Vendor, guestCount int) ([]*models.Vendor, decimal.Decimal) {
	var updated []*models.Vendor
	delta := decimal.Zero

	for _, v := range vendors {
		if !v.Accepted() || !v.GuestDependent() {
			continue
		}
		next := e.FinalCost(v, guestCount)
		if next.Equal(v.FinalCost) {
			continue
		}
		delta = delta.Add(next.Sub(v.FinalCost))
		v.FinalCost = next
		updated = append(updated, v)
	}

	return updated, delta
}
