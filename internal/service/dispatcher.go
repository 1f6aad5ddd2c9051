package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"emailscheduler/internal/clock"
	"emailscheduler/internal/mailer"
	"emailscheduler/internal/model"
	"emailscheduler/internal/repository"
)

// Dispatcher delivers one due event and then removes it.
//
// Delivery is at-least-once: the mail is sent first and the row deleted only
// after the transport confirmed the send. A crash between the two leaves the
// row due, and the next tick sends it again unless a receipt was recorded.
type Dispatcher struct {
	events   repository.EventRepository
	receipts repository.ReceiptRepository
	sender   mailer.Sender
	from     string
	timeout  time.Duration
	clock    clock.Clock
	logger   zerolog.Logger
}

// DispatcherOptions configures Dispatcher.
type DispatcherOptions struct {
	From        string
	SendTimeout time.Duration
	Clock       clock.Clock
	Logger      zerolog.Logger
}

// NewDispatcher builds a Dispatcher. receipts may be nil, in which case a
// crash between send and delete can produce a duplicate mail.
func NewDispatcher(events repository.EventRepository, receipts repository.ReceiptRepository, sender mailer.Sender, opts DispatcherOptions) *Dispatcher {
	timeout := opts.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}
	return &Dispatcher{
		events:   events,
		receipts: receipts,
		sender:   sender,
		from:     opts.From,
		timeout:  timeout,
		clock:    clk,
		logger:   opts.Logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Dispatch sends ev to every recipient and deletes it on confirmed send.
// A send failure returns *DispatchError and leaves the row in place.
func (d *Dispatcher) Dispatch(ctx context.Context, ev model.Event, recipients []model.Recipient) error {
	return d.dispatch(ctx, "", ev, recipients)
}

func (d *Dispatcher) dispatch(ctx context.Context, tickID string, ev model.Event, recipients []model.Recipient) error {
	logger := d.logger.With().Int64("event", ev.ID).Str("uid", ev.UID.String()).Int64("event_id", ev.EventID).Logger()

	delivered, err := d.alreadyDelivered(ctx, ev)
	if err != nil {
		logger.Warn().Err(err).Msg("receipt lookup failed, sending anyway")
	}

	switch {
	case delivered:
		logger.Info().Msg("receipt found, skipping send")
	case len(recipients) == 0:
		logger.Warn().Msg("no recipients, nothing to send")
	default:
		if err := d.send(ctx, ev, recipients); err != nil {
			return &DispatchError{EventID: ev.ID, Err: err}
		}
		d.recordReceipt(ctx, tickID, ev, len(recipients), logger)
		logger.Info().Int("recipients", len(recipients)).Msg("event sent")
	}

	if err := d.events.Delete(ctx, ev.ID); err != nil {
		return storeErr(fmt.Sprintf("delete event %d", ev.ID), err)
	}
	return nil
}

func (d *Dispatcher) send(ctx context.Context, ev model.Event, recipients []model.Recipient) error {
	to := make([]string, 0, len(recipients))
	for _, r := range recipients {
		to = append(to, r.Email)
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	return d.sender.Send(sendCtx, mailer.Message{
		From:    d.from,
		To:      to,
		Subject: ev.Subject,
		Body:    ev.Content,
		Key:     ev.UID.String(),
	})
}

func (d *Dispatcher) alreadyDelivered(ctx context.Context, ev model.Event) (bool, error) {
	if d.receipts == nil || ev.UID == uuid.Nil {
		return false, nil
	}
	_, ok, err := d.receipts.Get(ctx, ev.UID)
	return ok, err
}

func (d *Dispatcher) recordReceipt(ctx context.Context, tickID string, ev model.Event, n int, logger zerolog.Logger) {
	if d.receipts == nil || ev.UID == uuid.Nil {
		return
	}
	err := d.receipts.Record(ctx, model.DeliveryReceipt{
		EventUID:   ev.UID,
		EventID:    ev.ID,
		Subject:    ev.Subject,
		Recipients: n,
		TickID:     tickID,
		SentAt:     d.clock.Now().UTC(),
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to store delivery receipt")
	}
}
