package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"emailscheduler/internal/clock"
	"emailscheduler/internal/mailer"
	"emailscheduler/internal/model"
	"emailscheduler/internal/repository/memory"
)

// recordingSender captures messages and fails for subjects listed in failFor.
type recordingSender struct {
	mu      sync.Mutex
	sent    []mailer.Message
	failFor map[string]error
}

func (s *recordingSender) Send(_ context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failFor[msg.Subject]; ok {
		return err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) messages() []mailer.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mailer.Message(nil), s.sent...)
}

type failingEvents struct {
	*memory.EventRepository
	listErr   error
	deleteErr error
}

func (f *failingEvents) List(ctx context.Context) ([]model.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.EventRepository.List(ctx)
}

func (f *failingEvents) Delete(ctx context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.EventRepository.Delete(ctx, id)
}

var errTransport = errors.New("smtp: connection reset")

type fixture struct {
	events     *memory.EventRepository
	recipients *memory.RecipientRepository
	receipts   *memory.ReceiptRepository
	sender     *recordingSender
	svc        *EventService
	now        time.Time
}

func newFixture() *fixture {
	f := &fixture{
		events:     memory.NewEventRepository(testZone),
		recipients: memory.NewRecipientRepository(),
		receipts:   memory.NewReceiptRepository(),
		sender:     &recordingSender{failFor: map[string]error{}},
		now:        time.Date(2024, 12, 25, 9, 0, 0, 0, testZone.Location()),
	}
	f.svc = NewEventService(Dependencies{
		Events:     f.events,
		Recipients: f.recipients,
		Receipts:   f.receipts,
		Sender:     f.sender,
	}, EventServiceOptions{
		Zone:   testZone,
		Clock:  clock.Fixed(f.now),
		From:   "noreply@x.com",
		Logger: zerolog.Nop(),
	})
	return f
}

func (f *fixture) addEvent(subject string, offset time.Duration) model.Event {
	ev, err := f.events.Create(context.Background(), model.NewEvent{
		Subject: subject,
		Content: subject + " body",
		DueAt:   f.now.Add(offset),
	})
	if err != nil {
		panic(err)
	}
	return ev
}

func (f *fixture) addRecipients(emails ...string) {
	for _, e := range emails {
		if _, err := f.recipients.Create(context.Background(), e); err != nil {
			panic(err)
		}
	}
}

func (f *fixture) remaining() []string {
	list, _ := f.events.List(context.Background())
	var out []string
	for _, ev := range list {
		out = append(out, ev.Subject)
	}
	return out
}
