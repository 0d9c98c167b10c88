package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/iliyamo/airline-reservation/internal/queue"
)

// AuditRepo appends domain events to the reservation_events table.  It
// is a write-only journal: nothing reads it back, and the in-memory
// state is not rebuilt from it on restart.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo returns a journal writing to db.
func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

const auditSchema = `CREATE TABLE IF NOT EXISTS reservation_events (
	id             CHAR(36)     NOT NULL PRIMARY KEY,
	type           VARCHAR(64)  NOT NULL,
	username       VARCHAR(128) NULL,
	flight_id      VARCHAR(64)  NULL,
	reservation_id VARCHAR(32)  NULL,
	payload        JSON         NOT NULL,
	occurred_at    DATETIME(3)  NOT NULL,
	KEY idx_reservation_events_flight (flight_id),
	KEY idx_reservation_events_reservation (reservation_id)
)`

// EnsureSchema creates the journal table if it does not exist.
func (r *AuditRepo) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return ErrAuditDisabled
	}
	if _, err := r.db.ExecContext(ctx, auditSchema); err != nil {
		return fmt.Errorf("audit: create schema: %w", err)
	}
	return nil
}

// Publish inserts one event.  Re-publishing the same event id is a
// no-op so that retries cannot duplicate journal rows.
func (r *AuditRepo) Publish(ctx context.Context, ev queue.Event) error {
	if r == nil || r.db == nil {
		return ErrAuditDisabled
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("audit: marshal: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT IGNORE INTO reservation_events (id, type, username, flight_id, reservation_id, payload, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, string(ev.Type), nullable(ev.Username), nullable(ev.FlightID), nullable(ev.ReservationID),
		payload, ev.OccurredAt.UTC())
	if err != nil {
		return fmt.Errorf("audit: insert %s: %w", ev.ID, err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
