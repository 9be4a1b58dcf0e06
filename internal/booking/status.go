package booking

import "time"

// Status is the display state of an appointment. It is never stored; it is
// recomputed on every read from the two persisted flags plus the clock, so
// the same record can legitimately report different statuses at different
// instants (PENDING in particular is a transient window).
type Status string

const (
	StatusCancelled   Status = "CANCELLED"
	StatusRescheduled Status = "RESCHEDULED"
	StatusPending     Status = "PENDING"
	StatusConfirmed   Status = "CONFIRMED"
)

// PendingWindow is how close to the scheduled instant (either side) an
// appointment reports PENDING, meaning "happening now / imminent". The name
// is historical; it has nothing to do with payment state.
const PendingWindow = 5 * time.Minute

// DeriveStatus projects the stored flags and the scheduled start instant
// into a display status. Precedence is fixed and first-match-wins:
// cancelled beats rescheduled beats the time-proximity check. The caller
// supplies now so the projection stays deterministic under test.
func DeriveStatus(cancelled, rescheduled bool, startsAt, now time.Time) Status {
	switch {
	case cancelled:
		return StatusCancelled
	case rescheduled:
		return StatusRescheduled
	}
	diff := startsAt.Sub(now)
	if diff < 0 {
		diff = -diff
	}
	if diff < PendingWindow {
		return StatusPending
	}
	return StatusConfirmed
}
