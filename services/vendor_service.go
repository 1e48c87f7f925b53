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

// VendorService runs the vendor negotiation state machine. Every
// transition computes its cost delta and applies it to the budget in
// the same critical section as the status write: an event is never
// readable with an accepted vendor whose cost has not landed in spent.
type VendorService struct {
	coord    *Coordinator
	pricing  PricingEngine
	budget   *BudgetService
	notifier *Notifier
}

func NewVendorService(coord *Coordinator, budget *BudgetService, notifier *Notifier) *VendorService {
	return &VendorService{
		coord:    coord,
		budget:   budget,
		notifier: notifier,
	}
}

type AddVendorInput struct {
	Title         string             `json:"title"`
	Category      string             `json:"category"`
	Price         decimal.Decimal    `json:"price"`
	PricingMode   models.PricingMode `json:"pricing_mode"`
	Units         int                `json:"units"`
	DurationDays  int                `json:"duration_days"`
	MinGuestLimit int                `json:"min_guest_limit"`
	AddedBy       string             `json:"added_by"`
}

// AddVendor attaches a new vendor in the pending state. Nothing is
// committed to the budget until the vendor accepts.
func (s *VendorService) AddVendor(ctx context.Context, eventID string, in AddVendorInput) (vendor *models.Vendor, err error) {
	defer func() { monitoring.TrackOperation("add_vendor", err) }()

	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: vendor title is required", status.ErrValidation)
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: vendor price must be non-negative", status.ErrValidation)
	}
	if !models.ValidPricingMode(in.PricingMode) {
		return nil, fmt.Errorf("%w: unknown pricing mode %q", status.ErrValidation, in.PricingMode)
	}
	if in.Units < 0 || in.DurationDays < 0 || in.MinGuestLimit < 0 {
		return nil, fmt.Errorf("%w: units, duration and guest minimum must be non-negative", status.ErrValidation)
	}

	_, err = s.coord.Update(ctx, eventID, func(st *store.EventState) error {
		vendor = &models.Vendor{
			ID:            uuid.New().String(),
			EventID:       eventID,
			Title:         strings.TrimSpace(in.Title),
			Category:      strings.ToLower(strings.TrimSpace(in.Category)),
			Price:         in.Price,
			FinalCost:     decimal.Zero,
			PricingMode:   in.PricingMode,
			Units:         in.Units,
			DurationDays:  in.DurationDays,
			MinGuestLimit: in.MinGuestLimit,
			Status:        models.VendorPending,
			AddedBy:       in.AddedBy,
			AddedAt:       time.Now(),
		}
		st.Vendors = append(st.Vendors, vendor)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vendor, nil
}

type ContactInput struct {
	Notes           string          `json:"notes"`
	IsNegotiating   bool            `json:"is_negotiating"`
	NegotiatedPrice decimal.Decimal `json:"negotiated_price"`
}

// ContactVendor records outreach notes and the negotiation flag. No
// cost is committed; an accepted vendor must be re-negotiated through
// SubmitResponse, not reset here.
func (s *VendorService) ContactVendor(ctx context.Context, eventID, vendorID string, in ContactInput) (vendor *models.Vendor, err error) {
	defer func() { monitoring.TrackOperation("contact_vendor", err) }()

	if in.IsNegotiating && !in.NegotiatedPrice.IsPositive() {
		return nil, fmt.Errorf("%w: negotiated price must be positive", status.ErrValidation)
	}

	_, err = s.coord.Update(ctx, eventID, func(st *store.EventState) error {
		v := st.Vendor(vendorID)
		if v == nil {
			return fmt.Errorf("%w: vendor %s", status.ErrNotFound, vendorID)
		}
		if v.Accepted() {
			return fmt.Errorf("%w: vendor %s already accepted", status.ErrConflict, vendorID)
		}

		v.Status = models.VendorPending
		v.Notes = in.Notes
		v.IsNegotiating = in.IsNegotiating
		if in.IsNegotiating {
			v.NegotiatedPrice = in.NegotiatedPrice
		}
		vendor = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vendor, nil
}

type ResponseResult struct {
	Vendor    *models.Vendor  `json:"vendor"`
	CostDelta decimal.Decimal `json:"cost_delta"`
	NewSpent  decimal.Decimal `json:"new_spent"`
}

// SubmitResponse applies the vendor's negotiation outcome. The cost
// delta is newFinalCost minus oldFinalCost, where old is zero for a
// vendor that had not yet accepted.
func (s *VendorService) SubmitResponse(ctx context.Context, eventID, vendorID string, response models.VendorResponse, negotiatedPrice decimal.Decimal) (result *ResponseResult, err error) {
	defer func() { monitoring.TrackOperation("vendor_response", err) }()

	if response == models.ResponseAcceptNegotiated && !negotiatedPrice.IsPositive() {
		return nil, fmt.Errorf("%w: negotiated price must be positive", status.ErrValidation)
	}

	state, err := s.coord.Update(ctx, eventID, func(st *store.EventState) error {
		v := st.Vendor(vendorID)
		if v == nil {
			return fmt.Errorf("%w: vendor %s", status.ErrNotFound, vendorID)
		}

		old := decimal.Zero
		if v.Accepted() {
			old = v.FinalCost
		}

		var next decimal.Decimal
		switch response {
		case models.ResponseAcceptOriginal:
			next = s.pricing.CostAt(v, v.Price, st.Event.GuestCount)
			v.Status = models.VendorAcceptedOriginal
			v.IsNegotiating = false
			v.NegotiatedPrice = decimal.Zero

		case models.ResponseAcceptNegotiated:
			next = s.pricing.CostAt(v, negotiatedPrice, st.Event.GuestCount)
			v.Status = models.VendorAccepted
			v.IsNegotiating = false
			v.NegotiatedPrice = negotiatedPrice

		case models.ResponseDecline:
			next = decimal.Zero
			v.Status = models.VendorDeclined
			v.IsNegotiating = false

		default:
			return fmt.Errorf("%w: unknown vendor response %q", status.ErrValidation, response)
		}

		v.FinalCost = next
		delta := next.Sub(old)
		newSpent, err := s.budget.ApplyDelta(st, delta)
		if err != nil {
			return err
		}

		result = &ResponseResult{Vendor: v, CostDelta: delta, NewSpent: newSpent}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Vendor.Accepted() {
		s.notifier.Notify(eventID, "vendor_accepted", map[string]any{
			"vendor_id":  vendorID,
			"final_cost": result.Vendor.FinalCost.String(),
		})
	}
	spent, _ := state.Event.Budget.Spent.Float64()
	monitoring.TrackEvent(eventID, state.Event.GuestCount, spent)
	return result, nil
}

// RemoveVendor detaches a vendor, reversing its budget contribution if
// it had accepted.
func (s *VendorService) RemoveVendor(ctx context.Context, eventID, vendorID string) (result *ResponseResult, err error) {
	defer func() { monitoring.TrackOperation("remove_vendor", err) }()

	_, err = s.coord.Update(ctx, eventID, func(st *store.EventState) error {
		v := st.Vendor(vendorID)
		if v == nil {
			return fmt.Errorf("%w: vendor %s", status.ErrNotFound, vendorID)
		}

		delta := decimal.Zero
		if v.Accepted() {
			delta = v.FinalCost.Neg()
		}

		kept := st.Vendors[:0]
		for _, cur := range st.Vendors {
			if cur.ID != vendorID {
				kept = append(kept, cur)
			}
		}
		st.Vendors = kept

		newSpent, err := s.budget.ApplyDelta(st, delta)
		if err != nil {
			return err
		}
		result = &ResponseResult{Vendor: v, CostDelta: delta, NewSpent: newSpent}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Violating lists vendors whose contractual guest minimum the event no
// longer meets.
func (s *VendorService) Violating(ctx context.Context, eventID string) ([]*models.Vendor, error) {
	var out []*models.Vendor
	err := s.coord.View(ctx, eventID, func(st *store.EventState) error {
		out = s.pricing.Violating(st.Vendors, st.Event.GuestCount)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
