package repository

import (
	"context"

	"github.com/google/uuid"

	"emailscheduler/internal/model"
)

// EventRepository defines the database operations required for events.
// Delete of an id that does not exist is not an error.
type EventRepository interface {
	Create(ctx context.Context, ev model.NewEvent) (model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	Delete(ctx context.Context, id int64) error
}

// RecipientRepository defines the database operations required for recipients.
type RecipientRepository interface {
	Create(ctx context.Context, email string) (model.Recipient, error)
	List(ctx context.Context) ([]model.Recipient, error)
	Delete(ctx context.Context, id int64) error
}

// ReceiptRepository keeps delivery receipts between ticks, keyed by the
// event's UID.
type ReceiptRepository interface {
	Record(ctx context.Context, r model.DeliveryReceipt) error
	Get(ctx context.Context, eventUID uuid.UUID) (model.DeliveryReceipt, bool, error)
}
