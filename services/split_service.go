package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"event-planner/internal/gateway"
	"event-planner/internal/status"
	"event-planner/internal/store"
	"event-planner/models"
	"event-planner/monitoring"
	"event-planner/utils"
)

// SplitService drives each split participant through the payment state
// machine. Verification is keyed per participant: it needs exclusivity
// only against itself, never against guest or vendor operations on the
// same event.
type SplitService struct {
	store    store.Store
	gateway  gateway.Gateway
	ledger   Ledger
	notifier *Notifier

	// Redis caches pending order sessions; optional.
	Redis    *redis.Client
	orderTTL time.Duration
	currency string

	locks utils.KeyedMutex
}

type SplitConfig struct {
	Currency string
	OrderTTL time.Duration
}

func NewSplitService(st store.Store, gw gateway.Gateway, ledger Ledger, notifier *Notifier, redisClient *redis.Client, cfg SplitConfig) *SplitService {
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	if cfg.OrderTTL <= 0 {
		cfg.OrderTTL = 10 * time.Minute
	}
	return &SplitService{
		store:    st,
		gateway:  gw,
		ledger:   ledger,
		notifier: notifier,
		Redis:    redisClient,
		orderTTL: cfg.OrderTTL,
		currency: cfg.Currency,
	}
}

type PersonInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateSplit divides the event's current accepted vendor cost across
// the named people. Amounts are fixed now; later cost changes require
// an explicit re-split, never a silent recomputation. Rounding
// remainders go to the first participant so the shares sum exactly.
func (s *SplitService) CreateSplit(ctx context.Context, eventID string, people []PersonInput) (participants []*models.SplitParticipant, err error) {
	defer func() { monitoring.TrackOperation("create_split", err) }()

	if len(people) == 0 {
		return nil, fmt.Errorf("%w: split needs at least one participant", status.ErrValidation)
	}
	seen := make(map[string]bool, len(people))
	for _, p := range people {
		email := normalizeEmail(p.Email)
		if email == "" {
			return nil, fmt.Errorf("%w: participant email is required", status.ErrValidation)
		}
		if seen[email] {
			return nil, fmt.Errorf("%w: duplicate participant %s", status.ErrValidation, email)
		}
		seen[email] = true
	}

	state, err := s.store.GetEventState(ctx, eventID)
	if err != nil {
		return nil, err
	}

	total := acceptedVendorTotal(state.Vendors)
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: nothing to split, no accepted vendor cost", status.ErrValidation)
	}

	n := int64(len(people))
	share := total.DivRound(decimal.NewFromInt(n), 2)
	first := total.Sub(share.Mul(decimal.NewFromInt(n - 1)))

	now := time.Now()
	for i, p := range people {
		amount := share
		if i == 0 {
			amount = first
		}
		participants = append(participants, &models.SplitParticipant{
			ID:        uuid.New().String(),
			EventID:   eventID,
			Name:      strings.TrimSpace(p.Name),
			Email:     normalizeEmail(p.Email),
			Amount:    amount,
			Status:    models.ParticipantPending,
			CreatedAt: now,
		})
	}

	if err := s.store.CreateParticipants(ctx, participants); err != nil {
		return nil, err
	}
	return participants, nil
}

// CreateOrder obtains a gateway order for the participant's share. It
// mutates no event state and so runs outside any event lock; gateway
// failures surface to the caller without retry.
func (s *SplitService) CreateOrder(ctx context.Context, participantID string) (order *gateway.Order, err error) {
	defer func() { monitoring.TrackOperation("create_order", err) }()
	defer monitoring.TrackDuration("create_order", time.Now())

	p, err := s.store.GetParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if p.Settled() {
		return nil, fmt.Errorf("%w: participant %s already %s", status.ErrConflict, participantID, p.Status)
	}

	order, err = s.gateway.CreateOrder(ctx, p.Amount, s.currency)
	if err != nil {
		return nil, err
	}

	s.cacheOrder(ctx, order, p)
	return order, nil
}

// cacheOrder stores the pending order session with a TTL so status
// polls can resolve it without a gateway round trip.
func (s *SplitService) cacheOrder(ctx context.Context, order *gateway.Order, p *models.SplitParticipant) {
	if s.Redis == nil {
		return
	}

	orderKey := fmt.Sprintf("order:%s", order.ID)
	s.Redis.HSet(ctx, orderKey, map[string]any{
		"order_id":       order.ID,
		"participant_id": p.ID,
		"event_id":       p.EventID,
		"amount":         p.Amount.String(),
		"status":         "pending",
		"created_at":     order.CreatedAt.Unix(),
	})
	s.Redis.Expire(ctx, orderKey, s.orderTTL)
}

type VerifyInput struct {
	ParticipantID string `json:"participant_id"`
	OrderID       string `json:"order_id"`
	PaymentID     string `json:"payment_id"`
	Signature     string `json:"signature"`
}

type VerifyResult struct {
	Participant *models.SplitParticipant `json:"participant"`
	// AlreadyPaid marks the idempotent path: a duplicate confirmation
	// that re-applied nothing.
	AlreadyPaid bool            `json:"already_paid"`
	Collected   decimal.Decimal `json:"collected"`
}

// VerifyPayment validates the gateway signature and applies the
// Pending→Paid transition exactly once. Racing duplicates (client
// retry plus webhook) both succeed, but only the first applies the
// transition and increments the collected ledger.
func (s *SplitService) VerifyPayment(ctx context.Context, in VerifyInput) (result *VerifyResult, err error) {
	defer func() { monitoring.TrackOperation("verify_payment", err) }()
	defer monitoring.TrackDuration("verify_payment", time.Now())

	if in.ParticipantID == "" || in.OrderID == "" || in.PaymentID == "" {
		return nil, fmt.Errorf("%w: participant, order and payment ids are required", status.ErrValidation)
	}

	if !s.gateway.VerifySignature(in.OrderID, in.PaymentID, in.Signature) {
		monitoring.TrackVerification("invalid")
		return nil, fmt.Errorf("%w: order %s payment %s", status.ErrSignatureInvalid, in.OrderID, in.PaymentID)
	}

	unlock := s.locks.Lock(in.ParticipantID)
	defer unlock()

	p, err := s.store.GetParticipant(ctx, in.ParticipantID)
	if err != nil {
		return nil, err
	}

	switch p.Status {
	case models.ParticipantPaid:
		monitoring.TrackVerification("duplicate")
		return s.verified(ctx, p, true), nil

	case models.ParticipantDeclined:
		return nil, fmt.Errorf("%w: participant %s declined the share", status.ErrConflict, p.ID)
	}

	applied, err := s.store.MarkParticipantPaid(ctx, p.ID, in.PaymentID, time.Now())
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost the conditional update to a concurrent confirmation.
		p, err = s.store.GetParticipant(ctx, in.ParticipantID)
		if err != nil {
			return nil, err
		}
		monitoring.TrackVerification("duplicate")
		return s.verified(ctx, p, true), nil
	}

	p, err = s.store.GetParticipant(ctx, in.ParticipantID)
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.Add(ctx, p.EventID, p.Amount); err != nil {
		// The payment state is authoritative; the collected total is
		// rebuilt from it on the next reconciliation.
		slog.Warn("collected ledger update failed", "participant_id", p.ID, "error", err)
	}
	s.markOrderPaid(ctx, in.OrderID)

	monitoring.TrackVerification("applied")
	s.notifier.Notify(p.EventID, "payment_received", map[string]any{
		"participant_id": p.ID,
		"payment_id":     in.PaymentID,
		"amount":         p.Amount.String(),
	})

	return s.verified(ctx, p, false), nil
}

func (s *SplitService) verified(ctx context.Context, p *models.SplitParticipant, duplicate bool) *VerifyResult {
	collected, err := s.ledger.Total(ctx, p.EventID)
	if err != nil {
		slog.Warn("collected ledger read failed", "event_id", p.EventID, "error", err)
	}
	return &VerifyResult{Participant: p, AlreadyPaid: duplicate, Collected: collected}
}

func (s *SplitService) markOrderPaid(ctx context.Context, orderID string) {
	if s.Redis == nil {
		return
	}
	s.Redis.HSet(ctx, fmt.Sprintf("order:%s", orderID), "status", "paid")
}

// DeclineShare applies the terminal Pending→Declined transition.
func (s *SplitService) DeclineShare(ctx context.Context, participantID string) (err error) {
	defer func() { monitoring.TrackOperation("decline_share", err) }()

	unlock := s.locks.Lock(participantID)
	defer unlock()

	applied, err := s.store.MarkParticipantDeclined(ctx, participantID)
	if err != nil {
		return err
	}
	if !applied {
		return fmt.Errorf("%w: participant %s already settled", status.ErrConflict, participantID)
	}
	return nil
}

// CheckStatus is a read-only projection of one participant's share.
func (s *SplitService) CheckStatus(ctx context.Context, eventID, participantID string) (*models.SplitParticipant, error) {
	p, err := s.store.GetParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if p.EventID != eventID {
		return nil, fmt.Errorf("%w: participant %s", status.ErrNotFound, participantID)
	}
	return p, nil
}

// Participants lists the split roster for an event.
func (s *SplitService) Participants(ctx context.Context, eventID string) ([]*models.SplitParticipant, error) {
	return s.store.ListParticipants(ctx, eventID)
}

// Collected returns the reimbursement progress for an event.
func (s *SplitService) Collected(ctx context.Context, eventID string) (decimal.Decimal, error) {
	return s.ledger.Total(ctx, eventID)
}

// ProcessNotifications drains gateway webhook confirmations through
// the same idempotent verification path as client calls. Failures are
// logged and never re-delivered by the core.
func (s *SplitService) ProcessNotifications(ctx context.Context, ch <-chan *models.PaymentNotification) {
	for {
		select {
		case n, ok := <-ch:
			if !ok {
				return
			}
			if n.Status != "success" {
				continue
			}
			if _, err := s.VerifyPayment(ctx, VerifyInput{
				ParticipantID: n.ParticipantID,
				OrderID:       n.OrderID,
				PaymentID:     n.PaymentID,
				Signature:     n.Signature,
			}); err != nil {
				slog.Warn("webhook verification failed",
					"participant_id", n.ParticipantID, "order_id", n.OrderID, "error", err)
			}

		case <-ctx.Done():
			return
		}
	}
}
