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

// GuestService owns the guest roster and the capacity invariant. Every
// membership change recomputes guest-dependent vendor costs and lands
// the resulting budget delta in the same committed write.
type GuestService struct {
	coord    *Coordinator
	pricing  PricingEngine
	budget   *BudgetService
	notifier *Notifier
}

func NewGuestService(coord *Coordinator, budget *BudgetService, notifier *Notifier) *GuestService {
	return &GuestService{
		coord:    coord,
		budget:   budget,
		notifier: notifier,
	}
}

// CapacityReport is the result of a pure capacity check.
type CapacityReport struct {
	ExceedsLimit      bool `json:"exceeds_limit"`
	CurrentCount      int  `json:"current_count"`
	Limit             int  `json:"limit"`
	PotentialTotal    int  `json:"potential_total"`
	AdditionalAllowed int  `json:"additional_allowed"`
}

// CheckCapacity reports whether adding additional guests would exceed
// the event's ceiling. Pure function, no side effects.
func CheckCapacity(event *models.Event, additional int) CapacityReport {
	allowed := event.GuestLimit - event.GuestCount
	if allowed < 0 {
		allowed = 0
	}
	return CapacityReport{
		ExceedsLimit:      event.GuestCount+additional > event.GuestLimit,
		CurrentCount:      event.GuestCount,
		Limit:             event.GuestLimit,
		PotentialTotal:    event.GuestCount + additional,
		AdditionalAllowed: allowed,
	}
}

type AddGuestInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	// Confirmed admits the guest directly as confirmed instead of the
	// default pending RSVP state.
	Confirmed bool `json:"confirmed"`
}

type AddGuestResult struct {
	Guest          *models.Guest    `json:"guest"`
	UpdatedVendors []*models.Vendor `json:"updated_vendors"`
	CostDelta      decimal.Decimal  `json:"cost_delta"`
	NewSpent       decimal.Decimal  `json:"new_spent"`
}

// AddGuest admits one guest. On capacity exhaustion it fails with a
// GuestLimitError and performs no mutation.
func (s *GuestService) AddGuest(ctx context.Context, eventID string, in AddGuestInput) (result *AddGuestResult, err error) {
	defer func() { monitoring.TrackOperation("add_guest", err) }()

	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: guest email is required", status.ErrValidation)
	}

	state, err := s.coord.Update(ctx, eventID, func(st *store.EventState) error {
		report := CheckCapacity(st.Event, 1)
		if report.ExceedsLimit {
			return &status.GuestLimitError{
				Current:           report.CurrentCount,
				Limit:             report.Limit,
				Requested:         1,
				AdditionalAllowed: report.AdditionalAllowed,
			}
		}

		for _, g := range st.Guests {
			if normalizeEmail(g.Email) == email {
				return fmt.Errorf("%w: guest %s already on roster", status.ErrConflict, email)
			}
		}

		guest := &models.Guest{
			ID:      uuid.New().String(),
			EventID: eventID,
			Name:    strings.TrimSpace(in.Name),
			Email:   email,
			Status:  models.GuestPending,
			AddedAt: time.Now(),
		}
		if in.Confirmed {
			guest.Status = models.GuestConfirmed
		}

		st.Guests = append(st.Guests, guest)
		st.Event.GuestCount++

		updated, delta := s.pricing.recomputeGuestDependent(st.Vendors, st.Event.GuestCount)
		newSpent, err := s.budget.ApplyDelta(st, delta)
		if err != nil {
			return err
		}

		result = &AddGuestResult{
			Guest:          guest,
			UpdatedVendors: updated,
			CostDelta:      delta,
			NewSpent:       newSpent,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.trackAndNotify(state, "guest_added", map[string]any{
		"guest_id": result.Guest.ID,
		"email":    result.Guest.Email,
	})
	return result, nil
}

type ImportResult struct {
	NewGuestsAdded    int `json:"new_guests_added"`
	DuplicatesSkipped int `json:"duplicates_skipped"`
	InvalidRows       int `json:"invalid_rows"`
	OverLimitSkipped  int `json:"over_limit_skipped"`
	TotalGuests       int `json:"total_guests"`

	UpdatedVendors []*models.Vendor `json:"updated_vendors"`
	CostDelta      decimal.Decimal  `json:"cost_delta"`
	NewSpent       decimal.Decimal  `json:"new_spent"`
}

// ImportGuests bulk-admits already-parsed rows. Emails are deduped
// case-insensitively against the roster and within the batch. When the
// batch would exceed the guest limit, rows are admitted in order up to
// the remaining capacity: imports are large and partial success beats
// total rejection.
func (s *GuestService) ImportGuests(ctx context.Context, eventID string, rows []models.GuestRow) (result *ImportResult, err error) {
	defer func() { monitoring.TrackOperation("import_guests", err) }()

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: import contains no rows", status.ErrValidation)
	}

	state, err := s.coord.Update(ctx, eventID, func(st *store.EventState) error {
		seen := make(map[string]bool, len(st.Guests))
		for _, g := range st.Guests {
			seen[normalizeEmail(g.Email)] = true
		}

		res := &ImportResult{}
		var unique []models.GuestRow
		for _, row := range rows {
			email := normalizeEmail(row.Email)
			if email == "" {
				res.InvalidRows++
				continue
			}
			if seen[email] {
				res.DuplicatesSkipped++
				continue
			}
			seen[email] = true
			unique = append(unique, models.GuestRow{Name: strings.TrimSpace(row.Name), Email: email})
		}

		report := CheckCapacity(st.Event, len(unique))
		admit := len(unique)
		if admit > report.AdditionalAllowed {
			admit = report.AdditionalAllowed
		}
		res.OverLimitSkipped = len(unique) - admit

		now := time.Now()
		for _, row := range unique[:admit] {
			st.Guests = append(st.Guests, &models.Guest{
				ID:      uuid.New().String(),
				EventID: eventID,
				Name:    row.Name,
				Email:   row.Email,
				Status:  models.GuestPending,
				AddedAt: now,
			})
		}
		st.Event.GuestCount += admit
		res.NewGuestsAdded = admit
		res.TotalGuests = st.Event.GuestCount

		updated, delta := s.pricing.recomputeGuestDependent(st.Vendors, st.Event.GuestCount)
		newSpent, err := s.budget.ApplyDelta(st, delta)
		if err != nil {
			return err
		}
		res.UpdatedVendors = updated
		res.CostDelta = delta
		res.NewSpent = newSpent

		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.trackAndNotify(state, "guests_imported", map[string]any{
		"added":   result.NewGuestsAdded,
		"skipped": result.DuplicatesSkipped,
	})
	return result, nil
}

type RemoveGuestResult struct {
	Removed          int              `json:"removed"`
	BudgetReduction  decimal.Decimal  `json:"budget_reduction"`
	ViolatingVendors []*models.Vendor `json:"violating_vendors"`
	UpdatedVendors   []*models.Vendor `json:"updated_vendors"`
	NewSpent         decimal.Decimal  `json:"new_spent"`
}

// RemoveGuest drops one guest, recomputes guest-dependent vendor
// costs, and reports vendors whose contractual minimum is no longer
// met. Violating vendors are surfaced, not auto-resolved.
func (s *GuestService) RemoveGuest(ctx context.Context, eventID, guestID string) (result *RemoveGuestResult, err error) {
	defer func() { monitoring.TrackOperation("remove_guest", err) }()

	state, err := s.coord.Update(ctx, eventID, func(st *store.EventState) error {
		res, err := s.removeMatching(st, func(g *models.Guest) bool { return g.ID == guestID })
		if err != nil {
			return err
		}
		if res.Removed == 0 {
			return fmt.Errorf("%w: guest %s", status.ErrNotFound, guestID)
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.trackAndNotify(state, "guest_removed", map[string]any{"guest_id": guestID})
	return result, nil
}

// RemoveGuestsByStatus bulk-clears the subset of guests in the given
// RSVP state, with the same recompute-and-report contract as a single
// removal.
func (s *GuestService) RemoveGuestsByStatus(ctx context.Context, eventID string, guestStatus models.GuestStatus) (result *RemoveGuestResult, err error) {
	defer func() { monitoring.TrackOperation("remove_guests_by_status", err) }()

	state, err := s.coord.Update(ctx, eventID, func(st *store.EventState) error {
		res, err := s.removeMatching(st, func(g *models.Guest) bool { return g.Status == guestStatus })
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.trackAndNotify(state, "guests_removed", map[string]any{
		"status":  string(guestStatus),
		"removed": result.Removed,
	})
	return result, nil
}

func (s *GuestService) removeMatching(st *store.EventState, match func(*models.Guest) bool) (*RemoveGuestResult, error) {
	kept := st.Guests[:0]
	removed := 0
	for _, g := range st.Guests {
		if match(g) {
			removed++
			continue
		}
		kept = append(kept, g)
	}
	st.Guests = kept
	st.Event.GuestCount -= removed

	updated, delta := s.pricing.recomputeGuestDependent(st.Vendors, st.Event.GuestCount)
	newSpent, err := s.budget.ApplyDelta(st, delta)
	if err != nil {
		return nil, err
	}

	return &RemoveGuestResult{
		Removed:          removed,
		BudgetReduction:  delta.Neg(),
		ViolatingVendors: s.pricing.Violating(st.Vendors, st.Event.GuestCount),
		UpdatedVendors:   updated,
		NewSpent:         newSpent,
	}, nil
}

// UpdateRSVP applies the guest state machine: pending guests may
// confirm or decline, settled RSVPs never change again.
func (s *GuestService) UpdateRSVP(ctx context.Context, eventID, guestID string, next models.GuestStatus) (guest *models.Guest, err error) {
	defer func() { monitoring.TrackOperation("update_rsvp", err) }()

	if next != models.GuestConfirmed && next != models.GuestDeclined {
		return nil, fmt.Errorf("%w: rsvp status must be confirmed or declined", status.ErrValidation)
	}

	_, err = s.coord.Update(ctx, eventID, func(st *store.EventState) error {
		g := st.Guest(guestID)
		if g == nil {
			return fmt.Errorf("%w: guest %s", status.ErrNotFound, guestID)
		}
		if !g.CanTransition(next) {
			return fmt.Errorf("%w: rsvp for guest %s already %s", status.ErrConflict, guestID, g.Status)
		}
		g.Status = next
		guest = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return guest, nil
}

func (s *GuestService) trackAndNotify(state *store.EventState, kind string, payload map[string]any) {
	spent, _ := state.Event.Budget.Spent.Float64()
	monitoring.TrackEvent(state.Event.ID, state.Event.GuestCount, spent)
	s.notifier.Notify(state.Event.ID, kind, payload)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
