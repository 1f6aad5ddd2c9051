package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TickReport summarizes one dispatch pass.
type TickReport struct {
	TickID    string    `json:"tick_id"`
	Now       time.Time `json:"now"`
	Pending   int       `json:"pending"`
	Due       int       `json:"due"`
	Delivered []int64   `json:"delivered"`
	Failed    []int64   `json:"failed"`
}

// ProcessDueEvents runs one tick at the current instant. It satisfies the
// scheduler's Processor.
func (s *EventService) ProcessDueEvents(ctx context.Context) error {
	_, err := s.RunTickNow(ctx)
	return err
}

// RunTickNow is RunTick at the service clock's current instant.
func (s *EventService) RunTickNow(ctx context.Context) (TickReport, error) {
	return s.RunTick(ctx, s.clock.Now())
}

// RunTick fetches all events and recipients, dispatches every event due at
// now and reports the outcome. Per-event failures are logged and reported,
// not returned. The returned error is a *StoreError from the fetch step, in
// which case nothing was dispatched.
func (s *EventService) RunTick(ctx context.Context, now time.Time) (TickReport, error) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	report := TickReport{
		TickID:    uuid.NewString(),
		Now:       s.zone.Normalize(now),
		Delivered: []int64{},
		Failed:    []int64{},
	}
	logger := s.logger.With().Str("tick", report.TickID).Logger()

	events, err := s.deps.events.List(ctx)
	if err != nil {
		return report, storeErr("list events", err)
	}
	report.Pending = len(events)

	recipients, err := s.deps.recipients.List(ctx)
	if err != nil {
		return report, storeErr("list recipients", err)
	}

	due := DueEvents(s.zone, report.Now, events)
	report.Due = len(due)
	if len(due) == 0 {
		logger.Debug().Int("pending", report.Pending).Msg("no due events")
		return report, nil
	}

	for _, ev := range due {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.dispatcher.dispatch(ctx, report.TickID, ev, recipients); err != nil {
			report.Failed = append(report.Failed, ev.ID)
			var dispatchErr *DispatchError
			if errors.As(err, &dispatchErr) {
				logger.Error().Err(err).Int64("event", ev.ID).Msg("send failed, event kept for next tick")
			} else {
				logger.Error().Err(err).Int64("event", ev.ID).Msg("sent but not removed")
			}
			continue
		}
		report.Delivered = append(report.Delivered, ev.ID)
	}

	logger.Info().
		Int("pending", report.Pending).
		Int("due", report.Due).
		Int("delivered", len(report.Delivered)).
		Int("failed", len(report.Failed)).
		Msg("tick complete")
	return report, nil
}
