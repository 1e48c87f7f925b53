package store

import "github.com/pocketbase/dbx"

// schema is applied on startup; statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'upcoming',
		allocated    TEXT NOT NULL,
		spent        TEXT NOT NULL,
		guest_limit  INTEGER NOT NULL,
		guest_count  INTEGER NOT NULL DEFAULT 0,
		version      INTEGER NOT NULL DEFAULT 0,
		created_at   INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS guests (
		id        TEXT PRIMARY KEY,
		event_id  TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		name      TEXT NOT NULL,
		email     TEXT NOT NULL,
		status    TEXT NOT NULL,
		added_at  INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_guests_event ON guests(event_id)`,
	`CREATE TABLE IF NOT EXISTS vendors (
		id               TEXT PRIMARY KEY,
		event_id         TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		title            TEXT NOT NULL,
		category         TEXT NOT NULL,
		price            TEXT NOT NULL,
		final_cost       TEXT NOT NULL,
		pricing_mode     TEXT NOT NULL,
		units            INTEGER NOT NULL DEFAULT 0,
		duration_days    INTEGER NOT NULL DEFAULT 0,
		min_guest_limit  INTEGER NOT NULL DEFAULT 0,
		status           TEXT NOT NULL,
		added_by         TEXT NOT NULL DEFAULT '',
		is_negotiating   INTEGER NOT NULL DEFAULT 0,
		negotiated_price TEXT NOT NULL DEFAULT '0',
		notes            TEXT NOT NULL DEFAULT '',
		added_at         INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vendors_event ON vendors(event_id)`,
	`CREATE TABLE IF NOT EXISTS expenses (
		id        TEXT PRIMARY KEY,
		event_id  TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		title     TEXT NOT NULL,
		cost      TEXT NOT NULL,
		added_at  INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS participants (
		id          TEXT PRIMARY KEY,
		event_id    TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		email       TEXT NOT NULL,
		amount      TEXT NOT NULL,
		status      TEXT NOT NULL,
		payment_id  TEXT NOT NULL DEFAULT '',
		paid_at     INTEGER,
		created_at  INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_participants_event ON participants(event_id)`,
}

func runMigrations(db *dbx.DB) error {
	for _, stmt := range schema {
		if _, err := db.NewQuery(stmt).Execute(); err != nil {
			return err
		}
	}
	return nil
}
