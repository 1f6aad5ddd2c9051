package model

import (
	"time"

	"github.com/google/uuid"
)

// Event is a scheduled email waiting in the events table.
//
// ID is assigned by the store and may be reused once a row is gone. UID is
// generated on insert and never repeats, so delivery receipts and downstream
// idempotency keys are tied to it.
type Event struct {
	ID      int64     `db:"id" json:"id"`
	UID     uuid.UUID `db:"uid" json:"uid"`
	EventID int64     `db:"event_id" json:"event_id"`
	Subject string    `db:"subject" json:"email_subject"`
	Content string    `db:"content" json:"email_content"`
	DueAt   time.Time `db:"due_timestamp" json:"due_at"`
}

// NewEvent carries the caller supplied fields of an event before the store
// assigns an id.
type NewEvent struct {
	EventID int64
	Subject string
	Content string
	DueAt   time.Time
}
