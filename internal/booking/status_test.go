package booking

import (
	"testing"
	"time"
)

func TestDeriveStatus_Precedence(t *testing.T) {
	start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	// now inside the pending window so the weaker states are all live at once
	now := start.Add(2 * time.Minute)

	if got := DeriveStatus(true, true, start, now); got != StatusCancelled {
		t.Fatalf("cancelled must win over everything, got %s", got)
	}
	if got := DeriveStatus(false, true, start, now); got != StatusRescheduled {
		t.Fatalf("rescheduled must win over pending, got %s", got)
	}
	if got := DeriveStatus(false, false, start, now); got != StatusPending {
		t.Fatalf("expected PENDING inside the window, got %s", got)
	}
}

func TestDeriveStatus_PendingWindowIsSymmetric(t *testing.T) {
	start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		now  time.Time
		want Status
	}{
		{"just before start", start.Add(-4 * time.Minute), StatusPending},
		{"just after start", start.Add(4 * time.Minute), StatusPending},
		{"exactly at window edge", start.Add(PendingWindow), StatusConfirmed},
		{"well before", start.Add(-2 * time.Hour), StatusConfirmed},
		{"well after", start.Add(3 * time.Hour), StatusConfirmed},
	}
	for _, tc := range cases {
		if got := DeriveStatus(false, false, start, tc.now); got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestDeriveStatus_TransientWindow(t *testing.T) {
	// Two reads of the same record at different instants may disagree.
	start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	early := DeriveStatus(false, false, start, start.Add(-time.Hour))
	atStart := DeriveStatus(false, false, start, start)
	if early != StatusConfirmed || atStart != StatusPending {
		t.Fatalf("expected CONFIRMED then PENDING, got %s then %s", early, atStart)
	}
}

func TestDepositCents(t *testing.T) {
	cases := []struct {
		total, want uint32
	}{
		{5500, 1100}, // 20% of 55.00 is 11.00
		{0, 0},
		{1, 0},    // 0.2 cents rounds down
		{3, 1},    // 0.6 cents rounds up
		{9999, 2000},
	}
	for _, tc := range cases {
		if got := DepositCents(tc.total); got != tc.want {
			t.Fatalf("DepositCents(%d)=%d, want %d", tc.total, got, tc.want)
		}
	}
}
