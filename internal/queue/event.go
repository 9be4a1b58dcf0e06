// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into notification log lines.
package queue

// AppointmentEvent is published whenever an appointment is booked,
// rescheduled or cancelled. It carries enough detail for downstream
// consumers to notify the salon without querying the primary database.
type AppointmentEvent struct {
	Action           string   `json:"action"` // "booked", "rescheduled" or "cancelled"
	AppointmentID    uint64   `json:"appointment_id"`
	UserID           uint64   `json:"user_id"`
	ClientName       string   `json:"client_name"`
	ClientEmail      string   `json:"client_email"`
	ClientPhone      string   `json:"client_phone"`
	Date             string   `json:"appointment_date"`
	StartTime        string   `json:"appointment_time"`
	EndTime          string   `json:"end_time"`
	Services         []string `json:"services"`
	TotalPriceCents  uint32   `json:"total_price_cents"`
	TotalDurationMin uint32   `json:"total_duration_min"`
	DepositCents     uint32   `json:"deposit_cents"`
	OccurredAt       string   `json:"occurred_at"`
}
