package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"

	"github.com/thestylist/booking-api/internal/repository"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		err  bool
	}{
		{"10:00", 10 * time.Hour, false},
		{"10:30:15", 10*time.Hour + 30*time.Minute + 15*time.Second, false},
		{"00:00", 0, false},
		{"23:59:59", 23*time.Hour + 59*time.Minute + 59*time.Second, false},
		{"24:00", 0, true},
		{"noon", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := parseClock(tc.in)
		if tc.err {
			if err == nil {
				t.Errorf("parseClock(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseClock(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseClock(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestClockString(t *testing.T) {
	cases := map[time.Duration]string{
		0:                              "00:00:00",
		10 * time.Hour:                 "10:00:00",
		11*time.Hour + 15*time.Minute: "11:15:00",
		23*time.Hour + 59*time.Minute + 59*time.Second: "23:59:59",
	}
	for in, want := range cases {
		if got := clockString(in); got != want {
			t.Errorf("clockString(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateRequestRejectsDuplicateServices(t *testing.T) {
	// Duplicates are rejected before the catalog lookup, so no repo is
	// needed. Left through, they would collide on the join table's
	// primary key at insert time.
	h := &AppointmentHandler{}
	req := appointmentReq{
		Date:        "2025-03-14",
		StartTime:   "10:00",
		ClientPhone: "08030000000",
		ServiceIDs:  []uint64{2, 2},
	}
	_, _, errMsg := h.validateRequest(context.Background(), req)
	if errMsg != "duplicate service id" {
		t.Fatalf("errMsg = %q, want duplicate service id", errMsg)
	}
}

func TestTxErrorMapsSerializationAbortToConflict(t *testing.T) {
	e := echo.New()

	newCtx := func() (echo.Context, *httptest.ResponseRecorder) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/appointments", nil)
		return e.NewContext(req, rec), rec
	}

	c, rec := newCtx()
	deadlock := &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}
	if err := txError(c, deadlock, "create appointment failed"); err != nil {
		t.Fatalf("txError: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("deadlock status = %d, want %d", rec.Code, http.StatusConflict)
	}

	c, rec = newCtx()
	if err := txError(c, context.DeadlineExceeded, "create appointment failed"); err != nil {
		t.Fatalf("txError: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("non-serialization status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestFinishDetail(t *testing.T) {
	d := repository.AppointmentDetail{
		ID:               1,
		Date:             "2025-03-14",
		StartTime:        "10:00:00",
		TotalPriceCents:  11000,
		TotalDurationMin: 75,
	}
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	resp := finishDetail(d, now)

	if resp.Status != "CONFIRMED" {
		t.Errorf("Status = %q, want CONFIRMED", resp.Status)
	}
	if resp.EndTime != "11:15:00" {
		t.Errorf("EndTime = %q, want 11:15:00", resp.EndTime)
	}
	if resp.DepositCents != 2200 {
		t.Errorf("DepositCents = %d, want 2200", resp.DepositCents)
	}
}

func TestFinishDetailStatusNearStart(t *testing.T) {
	d := repository.AppointmentDetail{Date: "2025-03-14", StartTime: "10:00:00", TotalDurationMin: 30}
	now := time.Date(2025, 3, 14, 9, 58, 0, 0, time.UTC)
	if resp := finishDetail(d, now); resp.Status != "PENDING" {
		t.Errorf("Status = %q, want PENDING two minutes before start", resp.Status)
	}

	d.IsCancelled = true
	if resp := finishDetail(d, now); resp.Status != "CANCELLED" {
		t.Errorf("Status = %q, want CANCELLED to win over proximity", resp.Status)
	}
}
