package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"emailscheduler/internal/clock"
	"emailscheduler/internal/mailer"
	"emailscheduler/internal/model"
	"emailscheduler/internal/repository"
)

// TimestampHint is returned to callers that send a missing or malformed
// timestamp.
const TimestampHint = "Use this format for timestamp: " + clock.LayoutHint + " (day-month-year hour:minute)"

// EventService owns event and recipient persistence and the dispatch pass.
type EventService struct {
	deps       dependencies
	zone       clock.Zone
	clock      clock.Clock
	dispatcher *Dispatcher
	logger     zerolog.Logger

	// tickMu serializes ticks so a due event is never dispatched twice
	// concurrently.
	tickMu sync.Mutex
}

type dependencies struct {
	events     repository.EventRepository
	recipients repository.RecipientRepository
}

// Dependencies groups constructor requirements for EventService.
type Dependencies struct {
	Events     repository.EventRepository
	Recipients repository.RecipientRepository
	// Receipts is optional.
	Receipts repository.ReceiptRepository
	Sender   mailer.Sender
}

// EventServiceOptions configures EventService.
type EventServiceOptions struct {
	Zone        clock.Zone
	Clock       clock.Clock
	From        string
	SendTimeout time.Duration
	Logger      zerolog.Logger
}

// NewEventService builds an EventService.
func NewEventService(deps Dependencies, opts EventServiceOptions) *EventService {
	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}

	return &EventService{
		deps: dependencies{
			events:     deps.Events,
			recipients: deps.Recipients,
		},
		zone:  opts.Zone,
		clock: clk,
		dispatcher: NewDispatcher(deps.Events, deps.Receipts, deps.Sender, DispatcherOptions{
			From:        opts.From,
			SendTimeout: opts.SendTimeout,
			Clock:       clk,
			Logger:      opts.Logger,
		}),
		logger: opts.Logger.With().Str("component", "event-service").Logger(),
	}
}

// Zone returns the reference zone timestamps are normalized into.
func (s *EventService) Zone() clock.Zone { return s.zone }

// CreateEventInput is the caller supplied shape of a new event.
type CreateEventInput struct {
	EventID   int64
	Subject   string
	Content   string
	Timestamp string
}

// CreateEvent validates input, parses the timestamp in the reference zone and
// stores the event.
func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (model.Event, error) {
	if strings.TrimSpace(in.Timestamp) == "" {
		return model.Event{}, &ValidationError{Field: "timestamp", Message: TimestampHint}
	}
	dueAt, err := s.zone.Parse(in.Timestamp)
	if err != nil {
		return model.Event{}, &ValidationError{Field: "timestamp", Message: TimestampHint}
	}
	if strings.TrimSpace(in.Subject) == "" {
		return model.Event{}, &ValidationError{Field: "email_subject", Message: "email_subject is required"}
	}
	if in.Content == "" {
		return model.Event{}, &ValidationError{Field: "email_content", Message: "email_content is required"}
	}

	ev, err := s.deps.events.Create(ctx, model.NewEvent{
		EventID: in.EventID,
		Subject: in.Subject,
		Content: in.Content,
		DueAt:   dueAt,
	})
	if err != nil {
		return model.Event{}, storeErr("create event", err)
	}
	return ev, nil
}

// ListEvents returns every pending event.
func (s *EventService) ListEvents(ctx context.Context) ([]model.Event, error) {
	events, err := s.deps.events.List(ctx)
	if err != nil {
		return nil, storeErr("list events", err)
	}
	return events, nil
}

// DeleteEvent removes a pending event before it is dispatched. Unknown ids
// are ignored.
func (s *EventService) DeleteEvent(ctx context.Context, id int64) error {
	return storeErr("delete event", s.deps.events.Delete(ctx, id))
}

// AddRecipient stores an address. The format is not checked.
func (s *EventService) AddRecipient(ctx context.Context, email string) (model.Recipient, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.Recipient{}, &ValidationError{Field: "email", Message: "email is required"}
	}
	rec, err := s.deps.recipients.Create(ctx, email)
	if err != nil {
		return model.Recipient{}, storeErr("create recipient", err)
	}
	return rec, nil
}

// ListRecipients returns every recipient.
func (s *EventService) ListRecipients(ctx context.Context) ([]model.Recipient, error) {
	recipients, err := s.deps.recipients.List(ctx)
	if err != nil {
		return nil, storeErr("list recipients", err)
	}
	return recipients, nil
}

// DeleteRecipient removes a recipient. Unknown ids are ignored.
func (s *EventService) DeleteRecipient(ctx context.Context, id int64) error {
	return storeErr("delete recipient", s.deps.recipients.Delete(ctx, id))
}
