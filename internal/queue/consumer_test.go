package queue

import (
	"strings"
	"testing"
)

func TestFormatEventLine(t *testing.T) {
	ev := AppointmentEvent{
		Action:          "booked",
		AppointmentID:   42,
		UserID:          7,
		ClientName:      "Ada Lovelace",
		ClientPhone:     "+15550001111",
		Date:            "2025-03-14",
		StartTime:       "10:00:00",
		EndTime:         "11:15:00",
		Services:        []string{"Cut", "Color"},
		TotalPriceCents: 11000,
		DepositCents:    2200,
		OccurredAt:      "2025-03-01T09:00:00Z",
	}
	line := FormatEventLine(ev)
	for _, want := range []string{
		"Appointment booked",
		"appointment_id=42",
		"user_id=7",
		"date=2025-03-14",
		"time=10:00:00-11:15:00",
		"total=11000 cents",
		"deposit=2200 cents",
		"services=[Cut,Color]",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("line missing %q: %s", want, line)
		}
	}
	if !strings.HasSuffix(line, "\n") {
		t.Error("line must end with newline")
	}
}

func TestFormatEventLineNoServices(t *testing.T) {
	line := FormatEventLine(AppointmentEvent{Action: "cancelled"})
	if !strings.Contains(line, "services=[]") {
		t.Errorf("empty service list should render as []: %s", line)
	}
}
