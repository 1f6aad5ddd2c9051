package service

import (
	"time"

	"emailscheduler/internal/clock"
	"emailscheduler/internal/model"
)

// DueEvents returns the events whose due timestamp is at or before now, in
// input order. Both sides are converted into zone before comparing.
func DueEvents(zone clock.Zone, now time.Time, events []model.Event) []model.Event {
	now = zone.Normalize(now)

	var due []model.Event
	for _, ev := range events {
		if !zone.Normalize(ev.DueAt).After(now) {
			due = append(due, ev)
		}
	}
	return due
}
