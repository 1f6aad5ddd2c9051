package model

import (
	"time"

	"github.com/google/uuid"
)

// Recipient is an address that receives every dispatched event.
type Recipient struct {
	ID    int64  `db:"id" json:"id"`
	Email string `db:"email" json:"email"`
}

// DeliveryReceipt marks an event whose mail was accepted by the transport.
// It outlives the event row so a send followed by a failed delete is not
// repeated. Receipts are looked up by EventUID; EventID is informational.
type DeliveryReceipt struct {
	EventUID   uuid.UUID `json:"event_uid"`
	EventID    int64     `json:"event_id"`
	Subject    string    `json:"subject"`
	Recipients int       `json:"recipients"`
	TickID     string    `json:"tick_id"`
	SentAt     time.Time `json:"sent_at"`
}
