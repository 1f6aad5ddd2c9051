package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"emailscheduler/internal/clock"
	"emailscheduler/internal/model"
	"emailscheduler/internal/repository"
)

var _ repository.EventRepository = (*EventRepository)(nil)

// EventRepository provides PostgreSQL backed event operations.
type EventRepository struct {
	db   *sql.DB
	zone clock.Zone
}

// NewEventRepository creates a new repository instance. Timestamps are
// returned in zone.
func NewEventRepository(db *sql.DB, zone clock.Zone) *EventRepository {
	return &EventRepository{db: db, zone: zone}
}

// Create inserts an event and returns it with its assigned id.
func (r *EventRepository) Create(ctx context.Context, ev model.NewEvent) (model.Event, error) {
	dueAt := r.zone.Normalize(ev.DueAt)
	uid := uuid.New()

	var id int64
	err := r.db.QueryRowContext(ctx, `
        INSERT INTO events (uid, event_id, subject, content, due_timestamp)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id`, uid, ev.EventID, ev.Subject, ev.Content, dueAt).Scan(&id)
	if err != nil {
		return model.Event{}, err
	}

	return model.Event{
		ID:      id,
		UID:     uid,
		EventID: ev.EventID,
		Subject: ev.Subject,
		Content: ev.Content,
		DueAt:   dueAt,
	}, nil
}

// List returns every pending event, earliest first.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, uid, event_id, subject, content, due_timestamp
        FROM events
        ORDER BY due_timestamp ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var ev model.Event
		var eventID sql.NullInt64
		if err := rows.Scan(&ev.ID, &ev.UID, &eventID, &ev.Subject, &ev.Content, &ev.DueAt); err != nil {
			return nil, err
		}
		ev.EventID = eventID.Int64
		ev.DueAt = r.zone.Normalize(ev.DueAt)
		events = append(events, ev)
	}

	return events, rows.Err()
}

// Delete removes an event row. Missing rows are ignored.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	return err
}
