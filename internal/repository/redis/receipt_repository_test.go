package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emailscheduler/internal/model"
)

func newTestRepo(t *testing.T) (*ReceiptRepository, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewReceiptRepository(client, time.Hour), srv
}

func TestRecordAndGet(t *testing.T) {
	repo, srv := newTestRepo(t)
	ctx := context.Background()
	sentAt := time.Date(2024, 12, 25, 1, 0, 0, 0, time.UTC)

	uid := uuid.MustParse("0b6d6c1e-8f6a-4f5e-9a43-2f1d7c3b5e90")

	err := repo.Record(ctx, model.DeliveryReceipt{EventUID: uid, EventID: 12, Subject: "Hi", Recipients: 2, TickID: "tick-1", SentAt: sentAt})
	require.NoError(t, err)

	rec, ok, err := repo.Get(ctx, uid)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uid, rec.EventUID)
	assert.Equal(t, int64(12), rec.EventID)
	assert.Equal(t, "Hi", rec.Subject)
	assert.Equal(t, 2, rec.Recipients)
	assert.Equal(t, "tick-1", rec.TickID)
	assert.True(t, rec.SentAt.Equal(sentAt))

	assert.Equal(t, time.Hour, srv.TTL("delivered_event:0b6d6c1e-8f6a-4f5e-9a43-2f1d7c3b5e90"))
}

func TestGetMissing(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, ok, err := repo.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReceiptForReusedIDDoesNotMatchNewEvent(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, model.DeliveryReceipt{EventUID: uuid.New(), EventID: 1, SentAt: time.Now()}))

	_, ok, err := repo.Get(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReceiptExpires(t *testing.T) {
	repo, srv := newTestRepo(t)
	ctx := context.Background()

	uid := uuid.New()
	require.NoError(t, repo.Record(ctx, model.DeliveryReceipt{EventUID: uid, EventID: 1, SentAt: time.Now()}))
	srv.FastForward(2 * time.Hour)

	_, ok, err := repo.Get(ctx, uid)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnreachableRedis(t *testing.T) {
	repo, srv := newTestRepo(t)
	srv.Close()

	_, _, err := repo.Get(context.Background(), uuid.New())
	assert.Error(t, err)
}
