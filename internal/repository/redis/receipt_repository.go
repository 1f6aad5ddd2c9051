package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"emailscheduler/internal/model"
	"emailscheduler/internal/repository"
)

var _ repository.ReceiptRepository = (*ReceiptRepository)(nil)

// DefaultTTL is how long a receipt outlives its send.
const DefaultTTL = 7 * 24 * time.Hour

// ReceiptRepository stores delivery receipts as redis hashes.
type ReceiptRepository struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewReceiptRepository creates a new repository instance.
func NewReceiptRepository(client redis.Cmdable, ttl time.Duration) *ReceiptRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ReceiptRepository{client: client, ttl: ttl}
}

func receiptKey(eventUID uuid.UUID) string {
	return fmt.Sprintf("delivered_event:%s", eventUID)
}

// Record writes the receipt and its expiry in one round trip.
func (r *ReceiptRepository) Record(ctx context.Context, rec model.DeliveryReceipt) error {
	key := receiptKey(rec.EventUID)
	values := map[string]interface{}{
		"event_uid":  rec.EventUID.String(),
		"event_id":   rec.EventID,
		"subject":    rec.Subject,
		"recipients": rec.Recipients,
		"tick_id":    rec.TickID,
		"sent_at":    rec.SentAt.Format(time.RFC3339Nano),
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, values)
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	return err
}

// Get loads a receipt. The bool is false when none exists.
func (r *ReceiptRepository) Get(ctx context.Context, eventUID uuid.UUID) (model.DeliveryReceipt, bool, error) {
	values, err := r.client.HGetAll(ctx, receiptKey(eventUID)).Result()
	if err != nil {
		return model.DeliveryReceipt{}, false, err
	}
	if len(values) == 0 {
		return model.DeliveryReceipt{}, false, nil
	}

	rec := model.DeliveryReceipt{
		EventUID: eventUID,
		Subject:  values["subject"],
		TickID:   values["tick_id"],
	}
	if id, err := strconv.ParseInt(values["event_id"], 10, 64); err == nil {
		rec.EventID = id
	}
	if n, err := strconv.Atoi(values["recipients"]); err == nil {
		rec.Recipients = n
	}
	if ts, err := time.Parse(time.RFC3339Nano, values["sent_at"]); err == nil {
		rec.SentAt = ts
	}
	return rec, true, nil
}
