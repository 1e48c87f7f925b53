package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pocketbase/dbx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // pure Go sqlite driver

	"event-planner/internal/status"
	"event-planner/models"
)

var _ Store = (*SQLite)(nil)

// SQLite is the durable Store implementation. Aggregate writes run in
// one transaction guarded by the event's version column, so a failed
// or conflicted operation persists nothing.
type SQLite struct {
	db *dbx.DB
}

// NewSQLite opens (creating parent directories if needed) the database
// at path and applies the schema.
func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := dbx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.NewQuery("PRAGMA foreign_keys = ON").Execute(); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

type eventRow struct {
	ID         string `db:"id"`
	Name       string `db:"name"`
	Status     string `db:"status"`
	Allocated  string `db:"allocated"`
	Spent      string `db:"spent"`
	GuestLimit int    `db:"guest_limit"`
	GuestCount int    `db:"guest_count"`
	Version    int64  `db:"version"`
	CreatedAt  int64  `db:"created_at"`
}

type guestRow struct {
	ID      string `db:"id"`
	EventID string `db:"event_id"`
	Name    string `db:"name"`
	Email   string `db:"email"`
	Status  string `db:"status"`
	AddedAt int64  `db:"added_at"`
}

type vendorRow struct {
	ID              string `db:"id"`
	EventID         string `db:"event_id"`
	Title           string `db:"title"`
	Category        string `db:"category"`
	Price           string `db:"price"`
	FinalCost       string `db:"final_cost"`
	PricingMode     string `db:"pricing_mode"`
	Units           int    `db:"units"`
	DurationDays    int    `db:"duration_days"`
	MinGuestLimit   int    `db:"min_guest_limit"`
	Status          string `db:"status"`
	AddedBy         string `db:"added_by"`
	IsNegotiating   bool   `db:"is_negotiating"`
	NegotiatedPrice string `db:"negotiated_price"`
	Notes           string `db:"notes"`
	AddedAt         int64  `db:"added_at"`
}

type expenseRow struct {
	ID      string `db:"id"`
	EventID string `db:"event_id"`
	Title   string `db:"title"`
	Cost    string `db:"cost"`
	AddedAt int64  `db:"added_at"`
}

type participantRow struct {
	ID        string        `db:"id"`
	EventID   string        `db:"event_id"`
	Name      string        `db:"name"`
	Email     string        `db:"email"`
	Amount    string        `db:"amount"`
	Status    string        `db:"status"`
	PaymentID string        `db:"payment_id"`
	PaidAt    sql.NullInt64 `db:"paid_at"`
	CreatedAt int64         `db:"created_at"`
}

func parseDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (s *SQLite) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	if event.Status == "" {
		event.Status = models.EventUpcoming
	}

	_, err := s.db.Insert("events", dbx.Params{
		"id":          event.ID,
		"name":        event.Name,
		"status":      string(event.Status),
		"allocated":   event.Budget.Allocated.String(),
		"spent":       event.Budget.Spent.String(),
		"guest_limit": event.GuestLimit,
		"guest_count": event.GuestCount,
		"version":     event.Version,
		"created_at":  event.CreatedAt.Unix(),
	}).WithContext(ctx).Execute()
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("%w: event %s already exists", status.ErrConflict, event.ID)
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *SQLite) GetEventState(ctx context.Context, eventID string) (*EventState, error) {
	var ev eventRow
	err := s.db.NewQuery("SELECT * FROM events WHERE id = {:id}").
		Bind(dbx.Params{"id": eventID}).WithContext(ctx).One(&ev)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: event %s", status.ErrNotFound, eventID)
	}
	if err != nil {
		return nil, fmt.Errorf("select event: %w", err)
	}

	state := &EventState{
		Event: &models.Event{
			ID:   ev.ID,
			Name: ev.Name,
			Budget: models.Budget{
				Allocated: parseDec(ev.Allocated),
				Spent:     parseDec(ev.Spent),
			},
			GuestLimit: ev.GuestLimit,
			GuestCount: ev.GuestCount,
			Status:     models.EventStatus(ev.Status),
			Version:    ev.Version,
			CreatedAt:  time.Unix(ev.CreatedAt, 0),
		},
	}

	var guests []guestRow
	err = s.db.NewQuery("SELECT * FROM guests WHERE event_id = {:id} ORDER BY added_at, id").
		Bind(dbx.Params{"id": eventID}).WithContext(ctx).All(&guests)
	if err != nil {
		return nil, fmt.Errorf("select guests: %w", err)
	}
	for _, g := range guests {
		state.Guests = append(state.Guests, &models.Guest{
			ID:      g.ID,
			EventID: g.EventID,
			Name:    g.Name,
			Email:   g.Email,
			Status:  models.GuestStatus(g.Status),
			AddedAt: time.Unix(g.AddedAt, 0),
		})
	}

	var vendors []vendorRow
	err = s.db.NewQuery("SELECT * FROM vendors WHERE event_id = {:id} ORDER BY added_at, id").
		Bind(dbx.Params{"id": eventID}).WithContext(ctx).All(&vendors)
	if err != nil {
		return nil, fmt.Errorf("select vendors: %w", err)
	}
	for _, v := range vendors {
		state.Vendors = append(state.Vendors, &models.Vendor{
			ID:              v.ID,
			EventID:         v.EventID,
			Title:           v.Title,
			Category:        v.Category,
			Price:           parseDec(v.Price),
			FinalCost:       parseDec(v.FinalCost),
			PricingMode:     models.PricingMode(v.PricingMode),
			Units:           v.Units,
			DurationDays:    v.DurationDays,
			MinGuestLimit:   v.MinGuestLimit,
			Status:          models.VendorStatus(v.Status),
			AddedBy:         v.AddedBy,
			IsNegotiating:   v.IsNegotiating,
			NegotiatedPrice: parseDec(v.NegotiatedPrice),
			Notes:           v.Notes,
			AddedAt:         time.Unix(v.AddedAt, 0),
		})
	}

	var expenses []expenseRow
	err = s.db.NewQuery("SELECT * FROM expenses WHERE event_id = {:id} ORDER BY added_at, id").
		Bind(dbx.Params{"id": eventID}).WithContext(ctx).All(&expenses)
	if err != nil {
		return nil, fmt.Errorf("select expenses: %w", err)
	}
	for _, e := range expenses {
		state.Expenses = append(state.Expenses, &models.Expense{
			ID:      e.ID,
			EventID: e.EventID,
			Title:   e.Title,
			Cost:    parseDec(e.Cost),
			AddedAt: time.Unix(e.AddedAt, 0),
		})
	}

	return state, nil
}

func (s *SQLite) PutEventState(ctx context.Context, state *EventState) error {
	ev := state.Event
	err := s.db.TransactionalContext(ctx, nil, func(tx *dbx.Tx) error {
		res, err := tx.NewQuery(`UPDATE events
			SET name = {:name}, status = {:status}, allocated = {:allocated},
			    spent = {:spent}, guest_limit = {:guest_limit},
			    guest_count = {:guest_count}, version = version + 1
			WHERE id = {:id} AND version = {:version}`).
			Bind(dbx.Params{
				"name":        ev.Name,
				"status":      string(ev.Status),
				"allocated":   ev.Budget.Allocated.String(),
				"spent":       ev.Budget.Spent.String(),
				"guest_limit": ev.GuestLimit,
				"guest_count": ev.GuestCount,
				"id":          ev.ID,
				"version":     ev.Version,
			}).Execute()
		if err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: event %s version %d is stale", status.ErrConflict, ev.ID, ev.Version)
		}

		// Replace the owned collections wholesale.
		for _, table := range []string{"guests", "vendors", "expenses"} {
			if _, err := tx.Delete(table, dbx.HashExp{"event_id": ev.ID}).Execute(); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		for _, g := range state.Guests {
			if _, err := tx.Insert("guests", dbx.Params{
				"id":       g.ID,
				"event_id": g.EventID,
				"name":     g.Name,
				"email":    g.Email,
				"status":   string(g.Status),
				"added_at": g.AddedAt.Unix(),
			}).Execute(); err != nil {
				return fmt.Errorf("insert guest: %w", err)
			}
		}
		for _, v := range state.Vendors {
			if _, err := tx.Insert("vendors", dbx.Params{
				"id":               v.ID,
				"event_id":         v.EventID,
				"title":            v.Title,
				"category":         v.Category,
				"price":            v.Price.String(),
				"final_cost":       v.FinalCost.String(),
				"pricing_mode":     string(v.PricingMode),
				"units":            v.Units,
				"duration_days":    v.DurationDays,
				"min_guest_limit":  v.MinGuestLimit,
				"status":           string(v.Status),
				"added_by":         v.AddedBy,
				"is_negotiating":   v.IsNegotiating,
				"negotiated_price": v.NegotiatedPrice.String(),
				"notes":            v.Notes,
				"added_at":         v.AddedAt.Unix(),
			}).Execute(); err != nil {
				return fmt.Errorf("insert vendor: %w", err)
			}
		}
		for _, e := range state.Expenses {
			if _, err := tx.Insert("expenses", dbx.Params{
				"id":       e.ID,
				"event_id": e.EventID,
				"title":    e.Title,
				"cost":     e.Cost.String(),
				"added_at": e.AddedAt.Unix(),
			}).Execute(); err != nil {
				return fmt.Errorf("insert expense: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	ev.Version++
	return nil
}

func (s *SQLite) DeleteEvent(ctx context.Context, eventID string) error {
	res, err := s.db.Delete("events", dbx.HashExp{"id": eventID}).WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: event %s", status.ErrNotFound, eventID)
	}
	return nil
}

func (s *SQLite) CreateParticipants(ctx context.Context, participants []*models.SplitParticipant) error {
	return s.db.TransactionalContext(ctx, nil, func(tx *dbx.Tx) error {
		for _, p := range participants {
			if _, err := tx.Insert("participants", dbx.Params{
				"id":         p.ID,
				"event_id":   p.EventID,
				"name":       p.Name,
				"email":      p.Email,
				"amount":     p.Amount.String(),
				"status":     string(p.Status),
				"payment_id": p.PaymentID,
				"created_at": p.CreatedAt.Unix(),
			}).Execute(); err != nil {
				return fmt.Errorf("insert participant: %w", err)
			}
		}
		return nil
	})
}

func (s *SQLite) GetParticipant(ctx context.Context, participantID string) (*models.SplitParticipant, error) {
	var row participantRow
	err := s.db.NewQuery("SELECT * FROM participants WHERE id = {:id}").
		Bind(dbx.Params{"id": participantID}).WithContext(ctx).One(&row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: participant %s", status.ErrNotFound, participantID)
	}
	if err != nil {
		return nil, fmt.Errorf("select participant: %w", err)
	}
	return participantFromRow(&row), nil
}

func (s *SQLite) ListParticipants(ctx context.Context, eventID string) ([]*models.SplitParticipant, error) {
	var rows []participantRow
	err := s.db.NewQuery("SELECT * FROM participants WHERE event_id = {:id} ORDER BY created_at, id").
		Bind(dbx.Params{"id": eventID}).WithContext(ctx).All(&rows)
	if err != nil {
		return nil, fmt.Errorf("select participants: %w", err)
	}

	out := make([]*models.SplitParticipant, 0, len(rows))
	for i := range rows {
		out = append(out, participantFromRow(&rows[i]))
	}
	return out, nil
}

func (s *SQLite) MarkParticipantPaid(ctx context.Context, participantID, paymentID string, paidAt time.Time) (bool, error) {
	res, err := s.db.NewQuery(`UPDATE participants
		SET status = {:paid}, payment_id = {:payment_id}, paid_at = {:paid_at}
		WHERE id = {:id} AND status = {:pending}`).
		Bind(dbx.Params{
			"paid":       string(models.ParticipantPaid),
			"payment_id": paymentID,
			"paid_at":    paidAt.Unix(),
			"id":         participantID,
			"pending":    string(models.ParticipantPending),
		}).WithContext(ctx).Execute()
	if err != nil {
		return false, fmt.Errorf("mark participant paid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		if _, err := s.GetParticipant(ctx, participantID); err != nil {
			return false, err
		}
	}
	return n > 0, nil
}

func (s *SQLite) MarkParticipantDeclined(ctx context.Context, participantID string) (bool, error) {
	res, err := s.db.NewQuery(`UPDATE participants
		SET status = {:declined}
		WHERE id = {:id} AND status = {:pending}`).
		Bind(dbx.Params{
			"declined": string(models.ParticipantDeclined),
			"id":       participantID,
			"pending":  string(models.ParticipantPending),
		}).WithContext(ctx).Execute()
	if err != nil {
		return false, fmt.Errorf("mark participant declined: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		if _, err := s.GetParticipant(ctx, participantID); err != nil {
			return false, err
		}
	}
	return n > 0, nil
}

func participantFromRow(row *participantRow) *models.SplitParticipant {
	p := &models.SplitParticipant{
		ID:        row.ID,
		EventID:   row.EventID,
		Name:      row.Name,
		Email:     row.Email,
		Amount:    parseDec(row.Amount),
		Status:    models.ParticipantStatus(row.Status),
		PaymentID: row.PaymentID,
		CreatedAt: time.Unix(row.CreatedAt, 0),
	}
	if row.PaidAt.Valid {
		ts := time.Unix(row.PaidAt.Int64, 0)
		p.PaymentTimestamp = &ts
	}
	return p
}
