// Package clock holds the reference timezone every stored and compared
// timestamp is normalized into.
package clock

import (
	"fmt"
	"strings"
	"time"

	// Embedded zoneinfo so TIMEZONE resolves on minimal images.
	_ "time/tzdata"
)

// Layout is the wall-clock format accepted and returned by the HTTP surface.
const Layout = "02-01-2006 15:04"

// LayoutHint is the human readable form of Layout.
const LayoutHint = "DD-MM-YYYY HH:MM"

// DefaultZone is a UTC+8 civil zone.
const DefaultZone = "Asia/Singapore"

// Zone is the process-wide reference timezone. It is loaded once at startup
// and passed by value.
type Zone struct {
	loc *time.Location
}

// Load resolves an IANA zone name. An empty name selects DefaultZone.
func Load(name string) (Zone, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Zone{}, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return Zone{loc: loc}, nil
}

// MustLoad is Load for tests and constants.
func MustLoad(name string) Zone {
	z, err := Load(name)
	if err != nil {
		panic(err)
	}
	return z
}

// Location returns the underlying location, UTC for the zero Zone.
func (z Zone) Location() *time.Location {
	if z.loc == nil {
		return time.UTC
	}
	return z.loc
}

func (z Zone) String() string { return z.Location().String() }

// Normalize converts t into the reference zone. The instant is unchanged.
func (z Zone) Normalize(t time.Time) time.Time {
	return t.In(z.Location())
}

// Reinterpret treats the wall clock of t as reference-zone wall clock,
// discarding whatever location t carried. Use it only for values that were
// stored without zone information.
func (z Zone) Reinterpret(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), z.Location())
}

// Parse reads a Layout string as reference-zone wall clock.
func (z Zone) Parse(value string) (time.Time, error) {
	return time.ParseInLocation(Layout, strings.TrimSpace(value), z.Location())
}

// Format renders t in the reference zone using Layout.
func (z Zone) Format(t time.Time) string {
	return z.Normalize(t).Format(Layout)
}

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// System is the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always reports the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }
