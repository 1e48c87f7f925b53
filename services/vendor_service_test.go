package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-planner/internal/status"
	"event-planner/models"
)

func TestAddVendor_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.seedEvent(t, "50000", 50)

	_, err := env.vendor.AddVendor(ctx, event.ID, AddVendorInput{Title: " ", Price: dec("10"), PricingMode: models.PricingFlatRate})
	assert.ErrorIs(t, err, status.ErrValidation)

	_, err = env.vendor.AddVendor(ctx, event.ID, AddVendorInput{Title: "DJ", Price: dec("-10"), PricingMode: models.PricingFlatRate})
	assert.ErrorIs(t, err, status.ErrValidation)

	_, err = env.vendor.AddVendor(ctx, event.ID, AddVendorInput{Title: "DJ", Price: dec("10"), PricingMode: "per_song"})
	assert.ErrorIs(t, err, status.ErrValidation)

	vendor, err := env.vendor.AddVendor(ctx, event.ID, AddVendorInput{Title: "DJ", Price: dec("10"), PricingMode: models.PricingFlatRate})
	require.NoError(t, err)
	assert.Equal(t, models.VendorPending, vendor.Status)
	assert.True(t, vendor.FinalCost.IsZero())

	// A pending vendor contributes nothing.
	st := env.state(t, event.ID)
	assert.True(t, st.Event.Budget.Spent.IsZero())
}

func TestNegotiation_AcceptNegotiatedPrice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.seedEvent(t, "50000", 50)

	florist, err := env.vendor.AddVendor(ctx, event.ID, AddVendorInput{
		Title:       "Florist",
		Price:       dec("10000"),
		PricingMode: models.PricingFlatRate,
	})
	require.NoError(t, err)

	contacted, err := env.vendor.ContactVendor(ctx, event.ID, florist.ID, ContactInput{
		Notes:           "asked for a seasonal discount",
		IsNegotiating:   true,
		NegotiatedPrice: dec("8000"),
	})
	require.NoError(t, err)
	assert.True(t, contacted.IsNegotiating)

	result, err := env.vendor.SubmitResponse(ctx, event.ID, florist.ID, models.ResponseAcceptNegotiated, dec("8000"))
	require.NoError(t, err)

	assert.Equal(t, models.VendorAccepted, result.Vendor.Status)
	assert.True(t, dec("8000").Equal(result.Vendor.FinalCost))
	assert.True(t, dec("8000").Equal(result.CostDelta))
	assert.True(t, dec("8000").Equal(result.NewSpent))
	assert.False(t, result.Vendor.IsNegotiating)
}

func TestNegotiation_AcceptOriginalIgnoresNegotiatedPrice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.seedEvent(t, "50000", 50)

	florist, err := env.vendor.AddVendor(ctx, event.ID, AddVendorInput{
		Title:       "Florist",
		Price:       dec("10000"),
		PricingMode: models.PricingFlatRate,
	})
	require.NoError(t, err)

	_, err = env.vendor.ContactVendor(ctx, event.ID, florist.ID, ContactInput{
		IsNegotiating:   true,
		NegotiatedPrice: dec("8000"),
	})
	require.NoError(t, err)

	result, err := env.vendor.SubmitResponse(ctx, event.ID, florist.ID, models.ResponseAcceptOriginal, dec("0"))
	require.NoError(t, err)

	assert.Equal(t, models.VendorAcceptedOriginal, result.Vendor.Status)
	assert.True(t, dec("10000").Equal(result.Vendor.FinalCost))
	assert.True(t, dec("10000").Equal(result.NewSpent))
}

func TestNegotiation_RenegotiationAppliesOnlyTheDelta(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.seedEvent(t, "50000", 50)

	florist, err := env.vendor.AddVendor(ctx, event.ID, AddVendorInput{
		Title:       "Florist",
		Price:       dec("10000"),
		PricingMode: models.PricingFlatRate,
	})
	require.NoError(t, err)

	_, err = env.vendor.SubmitResponse(ctx, event.ID, florist.ID, models.ResponseAcceptOriginal, dec("0"))
	require.NoError(t, err)

	// A later negotiated acceptance replaces the committed cost.
	result, err := env.vendor.SubmitResponse(ctx, event.ID, florist.ID, models.ResponseAcceptNegotiated, dec("8000"))
	require.NoError(t, err)

	assert.True(t, dec("-2000").Equal(result.CostDelta), "delta %s", result.CostDelta)
	assert.True(t, dec("8000").Equal(result.NewSpent))
}

func TestNegotiation_DeclineReversesCommittedCost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.seedEvent(t, "50000", 50)

	florist, err := env.vendor.AddVendor(ctx, event.ID, AddVendorInput{
		Title:       "Florist",
		Price:       dec("10000"),
		PricingMode: models.PricingFlatRate,
	})
	require.NoError(t, err)

	_, err = env.vendor.SubmitResponse(ctx, event.ID, florist.ID, models.ResponseAcceptOriginal, dec("0"))
	require.NoError(t, err)

	result, err := env.vendor.SubmitResponse(ctx, event.ID, florist.ID, models.ResponseDecline, dec("0"))
	require.NoError(t, err)

	assert.Equal(t, models.VendorDeclined, result.Vendor.Status)
	assert.True(t, result.Vendor.FinalCost.IsZero())
	assert.True(t, dec("-10000").Equal(result.CostDelta))
	assert.True(t, result.NewSpent.IsZero())
}

func TestNegotiation_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.seedEvent(t, "50000", 50)

	florist, err := env.vendor.AddVendor(ctx, event.ID, AddVendorInput{
		Title:       "Florist",
		Price:       dec("10000"),
		PricingMode: models.PricingFlatRate,
	})
	require.NoError(t, err)

	_, err = env.vendor.ContactVendor(ctx, event.ID, florist.ID, ContactInput{IsNegotiating: true, NegotiatedPrice: dec("0")})
	assert.ErrorIs(t, err, status.ErrValidation)

	_, err = env.vendor.SubmitResponse(ctx, event.ID, florist.ID, models.ResponseAcceptNegotiated, dec("-5"))
	assert.ErrorIs(t, err, status.ErrValidation)

	_, err = env.vendor.SubmitResponse(ctx, event.ID, florist.ID, "ghosted", dec("0"))
	assert.ErrorIs(t, err, status.ErrValidation)

	_, err = env.vendor.SubmitResponse(ctx, event.ID, "missing", models.ResponseDecline, dec("0"))
	assert.ErrorIs(t, err, status.ErrNotFound)

	_, err = env.vendor.SubmitResponse(ctx, event.ID, florist.ID, models.ResponseAcceptOriginal, dec("0"))
	require.NoError(t, err)

	_, err = env.vendor.ContactVendor(ctx, event.ID, florist.ID, ContactInput{Notes: "hi"})
	assert.ErrorIs(t, err, status.ErrConflict)
}

func TestPerPlateAcceptanceUsesCurrentGuestCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.seedEvent(t, "50000", 50)
	env.seedGuests(t, event.ID, 30)

	caterer, err := env.vendor.AddVendor(ctx, event.ID, AddVendorInput{
		Title:       "Caterer",
		Price:       dec("400"),
		PricingMode: models.PricingPerPlate,
	})
	require.NoError(t, err)

	result, err := env.vendor.SubmitResponse(ctx, event.ID, caterer.ID, models.ResponseAcceptOriginal, dec("0"))
	require.NoError(t, err)

	assert.True(t, dec("12000").Equal(result.Vendor.FinalCost))
	assert.True(t, dec("12000").Equal(result.NewSpent))
}

func TestRemoveVendor_ReversesAcceptedContribution(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.seedEvent(t, "50000", 50)

	florist, err := env.vendor.AddVendor(ctx, event.ID, AddVendorInput{
		Title:       "Florist",
		Price:       dec("10000"),
		PricingMode: models.PricingFlatRate,
	})
	require.NoError(t, err)
	_, err = env.vendor.SubmitResponse(ctx, event.ID, florist.ID, models.ResponseAcceptOriginal, dec("0"))
	require.NoError(t, err)

	result, err := env.vendor.RemoveVendor(ctx, event.ID, florist.ID)
	require.NoError(t, err)
	assert.True(t, dec("-10000").Equal(result.CostDelta))
	assert.True(t, result.NewSpent.IsZero())

	st := env.state(t, event.ID)
	assert.Empty(t, st.Vendors)

	_, err = env.vendor.RemoveVendor(ctx, event.ID, florist.ID)
	assert.ErrorIs(t, err, status.ErrNotFound)
}
