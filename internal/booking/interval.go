// Package booking holds the pure scheduling rules of the salon: turning a
// requested slot plus service durations into a half-open time interval,
// deciding whether that interval collides with existing appointments, and
// deriving an appointment's display status. Nothing in this package touches
// the database or the wall clock; callers inject every input so the rules
// stay deterministic and testable.
package booking

import (
	"errors"
	"time"
)

// Day is the length of a single calendar day. An appointment must begin and
// end within one day; the source system never defined what a booking that
// runs past midnight means, so we reject it outright instead of wrapping.
const Day = 24 * time.Hour

var (
	// ErrNoServices is returned when a slot is requested without any services.
	ErrNoServices = errors.New("at least one service is required")
	// ErrNegativeDuration is returned when a service carries a negative duration.
	ErrNegativeDuration = errors.New("service duration must not be negative")
	// ErrCrossesMidnight is returned when the computed end of the appointment
	// would fall on the next calendar date.
	ErrCrossesMidnight = errors.New("appointment would run past midnight")
)

// Interval is a half-open time range [Start, End). Two appointments may touch
// (one ends exactly when the other begins) without overlapping.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals share any instant:
// [s1,e1) and [s2,e2) overlap iff s1 < e2 && s2 < e1. This is the full
// symmetric rule, so containment in either direction counts as overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Duration returns the total length of the interval.
func (iv Interval) Duration() time.Duration { return iv.End.Sub(iv.Start) }

// ComputeInterval builds the appointment interval for a slot. The slot is a
// calendar date (midnight in the calendar's zone) plus a start offset since
// midnight; the interval runs for the sum of the selected service durations.
// The service set must be non-empty and every duration non-negative, and the
// computed end must stay on the same calendar date.
func ComputeInterval(date time.Time, startOfDay time.Duration, durations []time.Duration) (Interval, error) {
	if len(durations) == 0 {
		return Interval{}, ErrNoServices
	}
	var total time.Duration
	for _, d := range durations {
		if d < 0 {
			return Interval{}, ErrNegativeDuration
		}
		total += d
	}
	if startOfDay < 0 || startOfDay >= Day {
		return Interval{}, errors.New("start time must fall within the day")
	}
	if startOfDay+total > Day {
		return Interval{}, ErrCrossesMidnight
	}
	start := date.Add(startOfDay)
	return Interval{Start: start, End: start.Add(total)}, nil
}

// BusyInterval is an existing non-cancelled appointment's interval together
// with the user who owns it. The conflict checker needs the owner so a user
// can freely re-book over their own appointments.
type BusyInterval struct {
	OwnerID  uint64
	Interval Interval
}

// HasConflict reports whether the candidate interval overlaps any existing
// appointment belonging to a different owner. The existing set should already
// be limited to the candidate's calendar date with cancelled rows excluded;
// rows owned by ownerID are skipped here regardless.
func HasConflict(candidate Interval, ownerID uint64, existing []BusyInterval) (BusyInterval, bool) {
	for _, b := range existing {
		if b.OwnerID == ownerID {
			continue
		}
		if candidate.Overlaps(b.Interval) {
			return b, true
		}
	}
	return BusyInterval{}, false
}
