package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-planner/internal/gateway"
	"event-planner/internal/status"
	"event-planner/models"
)

type fakeGateway struct {
	secret []byte

	mu      sync.Mutex
	orders  int
	failing bool
}

func (f *fakeGateway) CreateOrder(_ context.Context, amount decimal.Decimal, currency string) (*gateway.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failing {
		return nil, fmt.Errorf("%w: create order: provider down", status.ErrExternalService)
	}
	f.orders++
	return &gateway.Order{
		ID:        fmt.Sprintf("ord-%d", f.orders),
		Amount:    amount,
		Currency:  currency,
		CreatedAt: time.Now(),
	}, nil
}

func (f *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return gateway.VerifySign(orderID, paymentID, signature, f.secret)
}

func newSplitEnv(t *testing.T) (*testEnv, *SplitService, *fakeGateway) {
	t.Helper()

	env := newTestEnv(t)
	gw := &fakeGateway{secret: []byte("test-secret")}
	svc := NewSplitService(env.store, gw, NewMemoryLedger(), NewNotifier(nil), nil, SplitConfig{})
	return env, svc, gw
}

func seedAcceptedVendor(t *testing.T, env *testEnv, eventID, amount string) {
	t.Helper()

	ctx := context.Background()
	v, err := env.vendor.AddVendor(ctx, eventID, AddVendorInput{
		Title:       "Venue",
		Price:       dec(amount),
		PricingMode: models.PricingFlatRate,
	})
	require.NoError(t, err)
	_, err = env.vendor.SubmitResponse(ctx, eventID, v.ID, models.ResponseAcceptOriginal, dec("0"))
	require.NoError(t, err)
}

func TestCreateSplit_DividesWithRemainderOnFirst(t *testing.T) {
	env, svc, _ := newSplitEnv(t)
	ctx := context.Background()

	event := env.seedEvent(t, "50000", 50)
	seedAcceptedVendor(t, env, event.ID, "100")

	participants, err := svc.CreateSplit(ctx, event.ID, []PersonInput{
		{Name: "A", Email: "a@example.com"},
		{Name: "B", Email: "b@example.com"},
		{Name: "C", Email: "c@example.com"},
	})
	require.NoError(t, err)
	require.Len(t, participants, 3)

	assert.True(t, dec("33.34").Equal(participants[0].Amount), "first %s", participants[0].Amount)
	assert.True(t, dec("33.33").Equal(participants[1].Amount))
	assert.True(t, dec("33.33").Equal(participants[2].Amount))

	total := decimal.Zero
	for _, p := range participants {
		total = total.Add(p.Amount)
		assert.Equal(t, models.ParticipantPending, p.Status)
	}
	assert.True(t, dec("100").Equal(total), "shares must sum to the vendor total")

	listed, err := svc.Participants(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 3)
}

func TestCreateSplit_Validation(t *testing.T) {
	env, svc, _ := newSplitEnv(t)
	ctx := context.Background()

	event := env.seedEvent(t, "50000", 50)

	_, err := svc.CreateSplit(ctx, event.ID, nil)
	assert.ErrorIs(t, err, status.ErrValidation)

	// No accepted vendor cost yet.
	_, err = svc.CreateSplit(ctx, event.ID, []PersonInput{{Email: "a@example.com"}})
	assert.ErrorIs(t, err, status.ErrValidation)

	seedAcceptedVendor(t, env, event.ID, "100")

	_, err = svc.CreateSplit(ctx, event.ID, []PersonInput{{Email: "a@example.com"}, {Email: "A@example.com"}})
	assert.ErrorIs(t, err, status.ErrValidation)

	_, err = svc.CreateSplit(ctx, "missing", []PersonInput{{Email: "a@example.com"}})
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestCreateOrder(t *testing.T) {
	env, svc, gw := newSplitEnv(t)
	ctx := context.Background()

	event := env.seedEvent(t, "50000", 50)
	seedAcceptedVendor(t, env, event.ID, "300")

	participants, err := svc.CreateSplit(ctx, event.ID, []PersonInput{
		{Email: "a@example.com"}, {Email: "b@example.com"}, {Email: "c@example.com"},
	})
	require.NoError(t, err)

	order, err := svc.CreateOrder(ctx, participants[0].ID)
	require.NoError(t, err)
	assert.True(t, dec("100").Equal(order.Amount))
	assert.Equal(t, "USD", order.Currency)

	gw.failing = true
	_, err = svc.CreateOrder(ctx, participants[1].ID)
	assert.ErrorIs(t, err, status.ErrExternalService)

	_, err = svc.CreateOrder(ctx, "missing")
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func verifyInputFor(p *models.SplitParticipant, secret []byte) VerifyInput {
	orderID, paymentID := "ord-1", "pay-1"
	return VerifyInput{
		ParticipantID: p.ID,
		OrderID:       orderID,
		PaymentID:     paymentID,
		Signature:     gateway.Sign(orderID, paymentID, secret),
	}
}

func TestVerifyPayment_HappyPath(t *testing.T) {
	env, svc, gw := newSplitEnv(t)
	ctx := context.Background()

	event := env.seedEvent(t, "50000", 50)
	seedAcceptedVendor(t, env, event.ID, "200")

	participants, err := svc.CreateSplit(ctx, event.ID, []PersonInput{
		{Email: "a@example.com"}, {Email: "b@example.com"},
	})
	require.NoError(t, err)
	p := participants[0]

	result, err := svc.VerifyPayment(ctx, verifyInputFor(p, gw.secret))
	require.NoError(t, err)

	assert.False(t, result.AlreadyPaid)
	assert.Equal(t, models.ParticipantPaid, result.Participant.Status)
	assert.Equal(t, "pay-1", result.Participant.PaymentID)
	require.NotNil(t, result.Participant.PaymentTimestamp)
	assert.True(t, dec("100").Equal(result.Collected))

	// The collected ledger is separate from the event's spent budget.
	st := env.state(t, event.ID)
	assert.True(t, dec("200").Equal(st.Event.Budget.Spent))

	collected, err := svc.Collected(ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, dec("100").Equal(collected))
}

func TestVerifyPayment_InvalidSignature(t *testing.T) {
	env, svc, _ := newSplitEnv(t)
	ctx := context.Background()

	event := env.seedEvent(t, "50000", 50)
	seedAcceptedVendor(t, env, event.ID, "200")

	participants, err := svc.CreateSplit(ctx, event.ID, []PersonInput{{Email: "a@example.com"}})
	require.NoError(t, err)
	p := participants[0]

	_, err = svc.VerifyPayment(ctx, VerifyInput{
		ParticipantID: p.ID,
		OrderID:       "ord-1",
		PaymentID:     "pay-1",
		Signature:     "forged",
	})
	assert.ErrorIs(t, err, status.ErrSignatureInvalid)

	got, err := svc.CheckStatus(ctx, event.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ParticipantPending, got.Status)
}

func TestVerifyPayment_DuplicateIsIdempotent(t *testing.T) {
	env, svc, gw := newSplitEnv(t)
	ctx := context.Background()

	event := env.seedEvent(t, "50000", 50)
	seedAcceptedVendor(t, env, event.ID, "200")

	participants, err := svc.CreateSplit(ctx, event.ID, []PersonInput{
		{Email: "a@example.com"}, {Email: "b@example.com"},
	})
	require.NoError(t, err)
	in := verifyInputFor(participants[0], gw.secret)

	first, err := svc.VerifyPayment(ctx, in)
	require.NoError(t, err)
	require.False(t, first.AlreadyPaid)

	second, err := svc.VerifyPayment(ctx, in)
	require.NoError(t, err)
	assert.True(t, second.AlreadyPaid)
	assert.Equal(t, models.ParticipantPaid, second.Participant.Status)

	// The duplicate must not re-add to the collected ledger.
	collected, err := svc.Collected(ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, dec("100").Equal(collected), "collected %s", collected)
}

func TestVerifyPayment_ConcurrentConfirmationsApplyOnce(t *testing.T) {
	env, svc, gw := newSplitEnv(t)
	ctx := context.Background()

	event := env.seedEvent(t, "50000", 50)
	seedAcceptedVendor(t, env, event.ID, "200")

	participants, err := svc.CreateSplit(ctx, event.ID, []PersonInput{
		{Email: "a@example.com"}, {Email: "b@example.com"},
	})
	require.NoError(t, err)
	in := verifyInputFor(participants[0], gw.secret)

	const n = 16
	var wg sync.WaitGroup
	applied := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.VerifyPayment(ctx, in)
			if err == nil {
				applied <- !result.AlreadyPaid
			}
		}()
	}
	wg.Wait()
	close(applied)

	firstWins := 0
	total := 0
	for fresh := range applied {
		total++
		if fresh {
			firstWins++
		}
	}
	assert.Equal(t, n, total, "every confirmation succeeds")
	assert.Equal(t, 1, firstWins, "exactly one confirmation applies the transition")

	collected, err := svc.Collected(ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, dec("100").Equal(collected), "collected %s", collected)
}

func TestDeclineShare(t *testing.T) {
	env, svc, gw := newSplitEnv(t)
	ctx := context.Background()

	event := env.seedEvent(t, "50000", 50)
	seedAcceptedVendor(t, env, event.ID, "200")

	participants, err := svc.CreateSplit(ctx, event.ID, []PersonInput{
		{Email: "a@example.com"}, {Email: "b@example.com"},
	})
	require.NoError(t, err)
	p := participants[0]

	require.NoError(t, svc.DeclineShare(ctx, p.ID))

	// Decline is terminal: no later payment, no second decline.
	err = svc.DeclineShare(ctx, p.ID)
	assert.ErrorIs(t, err, status.ErrConflict)

	_, err = svc.VerifyPayment(ctx, verifyInputFor(p, gw.secret))
	assert.ErrorIs(t, err, status.ErrConflict)

	_, err = svc.CreateOrder(ctx, p.ID)
	assert.ErrorIs(t, err, status.ErrConflict)
}

func TestCheckStatus_ScopedToEvent(t *testing.T) {
	env, svc, _ := newSplitEnv(t)
	ctx := context.Background()

	event := env.seedEvent(t, "50000", 50)
	other := env.seedEvent(t, "50000", 50)
	seedAcceptedVendor(t, env, event.ID, "200")

	participants, err := svc.CreateSplit(ctx, event.ID, []PersonInput{{Email: "a@example.com"}})
	require.NoError(t, err)

	got, err := svc.CheckStatus(ctx, event.ID, participants[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.ParticipantPending, got.Status)

	_, err = svc.CheckStatus(ctx, other.ID, participants[0].ID)
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestProcessNotifications(t *testing.T) {
	env, svc, gw := newSplitEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	event := env.seedEvent(t, "50000", 50)
	seedAcceptedVendor(t, env, event.ID, "200")

	participants, err := svc.CreateSplit(ctx, event.ID, []PersonInput{
		{Email: "a@example.com"}, {Email: "b@example.com"},
	})
	require.NoError(t, err)
	p := participants[0]

	ch := make(chan *models.PaymentNotification, 2)
	ch <- &models.PaymentNotification{
		ParticipantID: p.ID,
		OrderID:       "ord-1",
		PaymentID:     "pay-1",
		Signature:     gateway.Sign("ord-1", "pay-1", gw.secret),
		Status:        "success",
	}
	// Non-success notifications are dropped.
	ch <- &models.PaymentNotification{ParticipantID: participants[1].ID, Status: "failed"}
	close(ch)

	svc.ProcessNotifications(ctx, ch)

	got, err := svc.CheckStatus(ctx, event.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ParticipantPaid, got.Status)

	untouched, err := svc.CheckStatus(ctx, event.ID, participants[1].ID)
	require.NoError(t, err)
	assert.Equal(t, models.ParticipantPending, untouched.Status)
}
