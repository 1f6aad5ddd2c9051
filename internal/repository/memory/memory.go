// Package memory implements the repositories in process. It backs tests and
// STORE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"emailscheduler/internal/clock"
	"emailscheduler/internal/model"
	"emailscheduler/internal/repository"
)

var (
	_ repository.EventRepository     = (*EventRepository)(nil)
	_ repository.RecipientRepository = (*RecipientRepository)(nil)
	_ repository.ReceiptRepository   = (*ReceiptRepository)(nil)
)

// EventRepository stores events in a map keyed by id.
type EventRepository struct {
	zone clock.Zone

	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Event
}

// NewEventRepository creates an empty store that normalizes timestamps into
// zone.
func NewEventRepository(zone clock.Zone) *EventRepository {
	return &EventRepository{zone: zone, rows: make(map[int64]model.Event)}
}

func (r *EventRepository) Create(_ context.Context, ev model.NewEvent) (model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	row := model.Event{
		ID:      r.nextID,
		UID:     uuid.New(),
		EventID: ev.EventID,
		Subject: ev.Subject,
		Content: ev.Content,
		DueAt:   r.zone.Normalize(ev.DueAt),
	}
	r.rows[row.ID] = row
	return row, nil
}

// List returns a snapshot ordered by id. Later writes do not affect it.
func (r *EventRepository) List(_ context.Context) ([]model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.rows) == 0 {
		return nil, nil
	}
	out := make([]model.Event, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *EventRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

// RecipientRepository stores recipients in a map keyed by id.
type RecipientRepository struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Recipient
}

// NewRecipientRepository creates an empty store.
func NewRecipientRepository() *RecipientRepository {
	return &RecipientRepository{rows: make(map[int64]model.Recipient)}
}

func (r *RecipientRepository) Create(_ context.Context, email string) (model.Recipient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	rec := model.Recipient{ID: r.nextID, Email: email}
	r.rows[rec.ID] = rec
	return rec, nil
}

func (r *RecipientRepository) List(_ context.Context) ([]model.Recipient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.rows) == 0 {
		return nil, nil
	}
	out := make([]model.Recipient, 0, len(r.rows))
	for _, rec := range r.rows {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *RecipientRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

// ReceiptRepository keeps receipts for the life of the process.
type ReceiptRepository struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.DeliveryReceipt
}

// NewReceiptRepository creates an empty store.
func NewReceiptRepository() *ReceiptRepository {
	return &ReceiptRepository{rows: make(map[uuid.UUID]model.DeliveryReceipt)}
}

func (r *ReceiptRepository) Record(_ context.Context, rec model.DeliveryReceipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[rec.EventUID] = rec
	return nil
}

func (r *ReceiptRepository) Get(_ context.Context, eventUID uuid.UUID) (model.DeliveryReceipt, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rows[eventUID]
	return rec, ok, nil
}
