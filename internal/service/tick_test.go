package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emailscheduler/internal/clock"
)

func TestTickDispatchesOnlyDueEvents(t *testing.T) {
	f := newFixture()
	a := f.addEvent("A", -2*time.Minute)
	f.addEvent("B", 10*time.Minute)
	f.addRecipients("a@x.com", "b@x.com")

	report, err := f.svc.RunTick(context.Background(), f.now)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Pending)
	assert.Equal(t, 1, report.Due)
	assert.Equal(t, []int64{a.ID}, report.Delivered)
	assert.Empty(t, report.Failed)

	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "A", msgs[0].Subject)
	assert.Equal(t, "A body", msgs[0].Body)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, msgs[0].To)
	assert.Equal(t, []string{"B"}, f.remaining())

	// Same instant again: B is still not due.
	report, err = f.svc.RunTick(context.Background(), f.now)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Due)
	assert.Len(t, f.sender.messages(), 1)
	assert.Equal(t, []string{"B"}, f.remaining())
}

func TestTickContinuesPastFailedSend(t *testing.T) {
	f := newFixture()
	a := f.addEvent("A", -time.Minute)
	b := f.addEvent("B", -time.Minute)
	f.addRecipients("a@x.com")
	f.sender.failFor["A"] = errTransport

	report, err := f.svc.RunTick(context.Background(), f.now)
	require.NoError(t, err)

	assert.Equal(t, []int64{a.ID}, report.Failed)
	assert.Equal(t, []int64{b.ID}, report.Delivered)
	assert.Equal(t, []string{"A"}, f.remaining())

	// A is retried once the transport recovers.
	delete(f.sender.failFor, "A")
	report, err = f.svc.RunTick(context.Background(), f.now)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID}, report.Delivered)
	assert.Empty(t, f.remaining())
}

func TestTickWithZeroRecipientsStillProcesses(t *testing.T) {
	f := newFixture()
	a := f.addEvent("A", -time.Minute)

	report, err := f.svc.RunTick(context.Background(), f.now)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Due)
	assert.Equal(t, []int64{a.ID}, report.Delivered)
	assert.Empty(t, f.sender.messages())
}

func TestTickConvertsNowIntoReferenceZone(t *testing.T) {
	f := newFixture()
	f.addEvent("A", 0)
	f.addRecipients("a@x.com")

	// One minute before the due instant, expressed in UTC.
	report, err := f.svc.RunTick(context.Background(), f.now.Add(-time.Minute).UTC())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Due)
	assert.Equal(t, testZone.Location(), report.Now.Location())

	report, err = f.svc.RunTick(context.Background(), f.now.UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Due)
}

func TestTickStoreErrorAbortsWithoutDispatch(t *testing.T) {
	f := newFixture()
	f.addEvent("A", -time.Minute)
	f.addRecipients("a@x.com")
	events := &failingEvents{EventRepository: f.events, listErr: errors.New("connection refused")}
	svc := NewEventService(Dependencies{
		Events:     events,
		Recipients: f.recipients,
		Sender:     f.sender,
	}, EventServiceOptions{Zone: testZone, Clock: clock.Fixed(f.now), Logger: zerolog.Nop()})

	err := svc.ProcessDueEvents(context.Background())

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Empty(t, f.sender.messages())

	// Recovery on the next tick, nothing cached from the failed one.
	events.listErr = nil
	require.NoError(t, svc.ProcessDueEvents(context.Background()))
	assert.Len(t, f.sender.messages(), 1)
}

func TestConcurrentTicksDoNotDoubleSend(t *testing.T) {
	f := newFixture()
	for i := 0; i < 20; i++ {
		f.addEvent("E", -time.Minute)
	}
	f.addRecipients("a@x.com")

	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, _ = f.svc.RunTick(context.Background(), f.now)
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}

	assert.Len(t, f.sender.messages(), 20)
	assert.Empty(t, f.remaining())
}
