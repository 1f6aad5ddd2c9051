// Package sqlite is an embedded single-file store for running the scheduler
// without a PostgreSQL server.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"emailscheduler/internal/clock"
	"emailscheduler/internal/model"
	"emailscheduler/internal/repository"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS events (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        uid TEXT NOT NULL UNIQUE,
        event_id INTEGER,
        subject TEXT NOT NULL,
        content TEXT NOT NULL,
        due_timestamp TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS recipients (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        email TEXT NOT NULL
    )`,
}

// naiveLayout is how rows written by older tooling stored timestamps, with no
// offset. Those are reference-zone wall clock.
const naiveLayout = "2006-01-02 15:04:05"

// Open opens (creating if needed) the database file at path and applies the
// schema. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the tables if absent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create sqlite schema: %w", err)
		}
	}
	return nil
}

var (
	_ repository.EventRepository     = (*EventRepository)(nil)
	_ repository.RecipientRepository = (*RecipientRepository)(nil)
)

// EventRepository provides SQLite backed event operations.
type EventRepository struct {
	db   *sql.DB
	zone clock.Zone
}

// NewEventRepository creates a new repository instance. Timestamps are
// returned in zone.
func NewEventRepository(db *sql.DB, zone clock.Zone) *EventRepository {
	return &EventRepository{db: db, zone: zone}
}

func (r *EventRepository) Create(ctx context.Context, ev model.NewEvent) (model.Event, error) {
	dueAt := r.zone.Normalize(ev.DueAt)
	uid := uuid.New()

	res, err := r.db.ExecContext(ctx, `
        INSERT INTO events (uid, event_id, subject, content, due_timestamp)
        VALUES (?, ?, ?, ?, ?)`, uid.String(), ev.EventID, ev.Subject, ev.Content, dueAt.Format(time.RFC3339Nano))
	if err != nil {
		return model.Event{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Event{}, err
	}

	return model.Event{ID: id, UID: uid, EventID: ev.EventID, Subject: ev.Subject, Content: ev.Content, DueAt: dueAt}, nil
}

func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, uid, event_id, subject, content, due_timestamp
        FROM events
        ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var ev model.Event
		var eventID sql.NullInt64
		var uid, raw string
		if err := rows.Scan(&ev.ID, &uid, &eventID, &ev.Subject, &ev.Content, &raw); err != nil {
			return nil, err
		}
		parsedUID, err := uuid.Parse(uid)
		if err != nil {
			return nil, fmt.Errorf("event %d: parse uid %q: %w", ev.ID, uid, err)
		}
		ev.UID = parsedUID
		dueAt, err := r.parseTimestamp(raw)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", ev.ID, err)
		}
		ev.EventID = eventID.Int64
		ev.DueAt = dueAt
		events = append(events, ev)
	}

	return events, rows.Err()
}

func (r *EventRepository) parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return r.zone.Normalize(t), nil
	}
	t, err := time.Parse(naiveLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse due_timestamp %q: %w", raw, err)
	}
	return r.zone.Reinterpret(t), nil
}

func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	return err
}

// RecipientRepository provides SQLite backed recipient operations.
type RecipientRepository struct {
	db *sql.DB
}

// NewRecipientRepository creates a new repository instance.
func NewRecipientRepository(db *sql.DB) *RecipientRepository {
	return &RecipientRepository{db: db}
}

func (r *RecipientRepository) Create(ctx context.Context, email string) (model.Recipient, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO recipients (email) VALUES (?)`, email)
	if err != nil {
		return model.Recipient{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Recipient{}, err
	}
	return model.Recipient{ID: id, Email: email}, nil
}

func (r *RecipientRepository) List(ctx context.Context) ([]model.Recipient, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, email FROM recipients ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipients []model.Recipient
	for rows.Next() {
		var rec model.Recipient
		if err := rows.Scan(&rec.ID, &rec.Email); err != nil {
			return nil, err
		}
		recipients = append(recipients, rec)
	}
	return recipients, rows.Err()
}

func (r *RecipientRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM recipients WHERE id = ?`, id)
	return err
}
