package booking

import (
	"errors"
	"testing"
	"time"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestComputeInterval_SumsDurations(t *testing.T) {
	d := day(t, "2026-03-14")
	// 30min + 45min booked at 10:00 -> [10:00, 11:15)
	iv, err := ComputeInterval(d, 10*time.Hour, []time.Duration{30 * time.Minute, 45 * time.Minute})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !iv.Start.Equal(d.Add(10 * time.Hour)) {
		t.Fatalf("expected start 10:00, got %s", iv.Start)
	}
	if !iv.End.Equal(d.Add(11*time.Hour + 15*time.Minute)) {
		t.Fatalf("expected end 11:15, got %s", iv.End)
	}
	if iv.Duration() != 75*time.Minute {
		t.Fatalf("expected total duration 75m, got %s", iv.Duration())
	}
}

func TestComputeInterval_RequiresServices(t *testing.T) {
	if _, err := ComputeInterval(day(t, "2026-03-14"), 10*time.Hour, nil); !errors.Is(err, ErrNoServices) {
		t.Fatalf("expected ErrNoServices, got %v", err)
	}
}

func TestComputeInterval_RejectsNegativeDuration(t *testing.T) {
	_, err := ComputeInterval(day(t, "2026-03-14"), 10*time.Hour, []time.Duration{-time.Minute})
	if !errors.Is(err, ErrNegativeDuration) {
		t.Fatalf("expected ErrNegativeDuration, got %v", err)
	}
}

func TestComputeInterval_RejectsMidnightOverflow(t *testing.T) {
	// 23:30 + 45min crosses into the next calendar date.
	_, err := ComputeInterval(day(t, "2026-03-14"), 23*time.Hour+30*time.Minute, []time.Duration{45 * time.Minute})
	if !errors.Is(err, ErrCrossesMidnight) {
		t.Fatalf("expected ErrCrossesMidnight, got %v", err)
	}
	// Ending exactly at midnight is still within the day (half-open end).
	if _, err := ComputeInterval(day(t, "2026-03-14"), 23*time.Hour+30*time.Minute, []time.Duration{30 * time.Minute}); err != nil {
		t.Fatalf("end at midnight should be allowed, got %v", err)
	}
}

func TestOverlaps(t *testing.T) {
	d := day(t, "2026-03-14")
	at := func(h, m int) time.Time { return d.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }
	cases := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"partial overlap", Interval{at(10, 0), at(11, 15)}, Interval{at(10, 30), at(11, 0)}, true},
		{"b contains a", Interval{at(10, 30), at(10, 45)}, Interval{at(10, 0), at(11, 15)}, true},
		{"a contains b", Interval{at(10, 0), at(11, 15)}, Interval{at(10, 30), at(10, 45)}, true},
		{"identical", Interval{at(10, 0), at(11, 0)}, Interval{at(10, 0), at(11, 0)}, true},
		{"adjacent after", Interval{at(10, 0), at(11, 15)}, Interval{at(11, 15), at(12, 0)}, false},
		{"adjacent before", Interval{at(11, 15), at(12, 0)}, Interval{at(10, 0), at(11, 15)}, false},
		{"disjoint", Interval{at(9, 0), at(9, 30)}, Interval{at(14, 0), at(15, 0)}, false},
	}
	for _, tc := range cases {
		if got := tc.a.Overlaps(tc.b); got != tc.want {
			t.Fatalf("%s: Overlaps=%v, want %v", tc.name, got, tc.want)
		}
		// The rule is symmetric by definition.
		if got := tc.b.Overlaps(tc.a); got != tc.want {
			t.Fatalf("%s (reversed): Overlaps=%v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestHasConflict_DifferentOwnerOverlapRejected(t *testing.T) {
	d := day(t, "2026-03-14")
	existing := []BusyInterval{
		{OwnerID: 1, Interval: Interval{d.Add(10 * time.Hour), d.Add(11*time.Hour + 15*time.Minute)}},
	}
	cand := Interval{d.Add(10*time.Hour + 30*time.Minute), d.Add(10*time.Hour + 31*time.Minute)}
	hit, conflict := HasConflict(cand, 2, existing)
	if !conflict {
		t.Fatalf("expected conflict for overlapping interval of another owner")
	}
	if hit.OwnerID != 1 {
		t.Fatalf("expected conflicting owner 1, got %d", hit.OwnerID)
	}
}

func TestHasConflict_SelfOverlapAllowed(t *testing.T) {
	d := day(t, "2026-03-14")
	existing := []BusyInterval{
		{OwnerID: 2, Interval: Interval{d.Add(10 * time.Hour), d.Add(11 * time.Hour)}},
	}
	cand := Interval{d.Add(10 * time.Hour), d.Add(11 * time.Hour)}
	if _, conflict := HasConflict(cand, 2, existing); conflict {
		t.Fatalf("a user's own appointment must never conflict")
	}
}

func TestHasConflict_AdjacentSlotAllowed(t *testing.T) {
	d := day(t, "2026-03-14")
	existing := []BusyInterval{
		{OwnerID: 1, Interval: Interval{d.Add(10 * time.Hour), d.Add(11*time.Hour + 15*time.Minute)}},
	}
	cand := Interval{d.Add(11*time.Hour + 15*time.Minute), d.Add(12 * time.Hour)}
	if _, conflict := HasConflict(cand, 2, existing); conflict {
		t.Fatalf("half-open intervals that merely touch must not conflict")
	}
}

func TestHasConflict_EmptySet(t *testing.T) {
	d := day(t, "2026-03-14")
	cand := Interval{d.Add(10 * time.Hour), d.Add(11 * time.Hour)}
	if _, conflict := HasConflict(cand, 2, nil); conflict {
		t.Fatalf("no existing appointments must never conflict")
	}
}
