package handler

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/thestylist/booking-api/internal/booking"
	"github.com/thestylist/booking-api/internal/queue"
	"github.com/thestylist/booking-api/internal/repository"
	queue_publisher "github.com/thestylist/booking-api/internal/service"
)

// AppointmentHandler owns the booking flow: creating, listing,
// rescheduling and cancelling appointments, plus the public booked-slots
// feed. Conflict checking runs inside a transaction that locks the
// requested date's rows, so two clients racing for the same slot cannot
// both succeed. The schedule decision itself lives in the booking package;
// this handler only assembles its inputs and maps its verdicts to HTTP.
type AppointmentHandler struct {
	Appointments *repository.AppointmentRepo
	Catalog      *repository.CatalogRepo
}

func NewAppointmentHandler(a *repository.AppointmentRepo, cat *repository.CatalogRepo) *AppointmentHandler {
	return &AppointmentHandler{Appointments: a, Catalog: cat}
}

// ----- DTOs -----

type appointmentReq struct {
	Date        string   `json:"appointment_date"` // "2006-01-02"
	StartTime   string   `json:"appointment_time"` // "15:04" or "15:04:05"
	ClientPhone string   `json:"client_phone"`
	ServiceIDs  []uint64 `json:"service_ids"`
}

// appointmentResp augments the stored detail with the derived status and
// the suggested deposit. DepositCents is advisory only; nothing blocks a
// booking on payment.
type appointmentResp struct {
	repository.AppointmentDetail
	EndTime      string `json:"end_time"`
	DepositCents uint32 `json:"deposit_cents"`
}

type conflictResp struct {
	Error string `json:"error"`
	Start string `json:"busy_from"`
	End   string `json:"busy_until"`
}

// ----- helpers -----

// parseDate parses a calendar date as UTC midnight. The salon calendar is
// kept in a single zone, so UTC stands in for "the salon's wall clock".
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// parseClock parses a time of day into an offset since midnight.
func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		t, err = time.Parse("15:04", s)
		if err != nil {
			return 0, err
		}
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}

func clockString(d time.Duration) string {
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	return pad2(h) + ":" + pad2(m) + ":" + pad2(s)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// startInstant recombines a detail's stored date and time-of-day strings
// into the scheduled instant.
func startInstant(date, clock string) time.Time {
	day, err := parseDate(date)
	if err != nil {
		return time.Time{}
	}
	off, err := parseClock(clock)
	if err != nil {
		return day
	}
	return day.Add(off)
}

// finishDetail derives the display status and deposit for one detail row.
func finishDetail(d repository.AppointmentDetail, now time.Time) appointmentResp {
	start := startInstant(d.Date, d.StartTime)
	d.Status = string(booking.DeriveStatus(d.IsCancelled, d.IsRescheduled, start, now))
	end := start.Add(time.Duration(d.TotalDurationMin) * time.Minute)
	return appointmentResp{
		AppointmentDetail: d,
		EndTime:           clockString(end.Sub(startInstant(d.Date, "00:00:00"))),
		DepositCents:      booking.DepositCents(d.TotalPriceCents),
	}
}

// busyIntervals converts locked rows into the conflict checker's input.
func busyIntervals(day time.Time, rows []repository.BusyRow) ([]booking.BusyInterval, error) {
	out := make([]booking.BusyInterval, 0, len(rows))
	for _, row := range rows {
		off, err := parseClock(row.StartTime)
		if err != nil {
			return nil, err
		}
		start := day.Add(off)
		out = append(out, booking.BusyInterval{
			OwnerID: row.UserID,
			Interval: booking.Interval{
				Start: start,
				End:   start.Add(time.Duration(row.DurationMin) * time.Minute),
			},
		})
	}
	return out, nil
}

// validateRequest parses and validates the shared create/reschedule body:
// the date, the clock time, and the selected services whose durations
// size the interval. A non-empty errMsg maps straight to a 400 response.
func (h *AppointmentHandler) validateRequest(ctx context.Context, req appointmentReq) (day time.Time, iv booking.Interval, errMsg string) {
	if req.ClientPhone == "" {
		return day, iv, "client_phone required"
	}
	day, err := parseDate(req.Date)
	if err != nil {
		return day, iv, "appointment_date must be YYYY-MM-DD"
	}
	off, err := parseClock(req.StartTime)
	if err != nil {
		return day, iv, "appointment_time must be HH:MM or HH:MM:SS"
	}
	if len(req.ServiceIDs) == 0 {
		return day, iv, "at least one service is required"
	}
	// The service selection is a set. Rejecting duplicates here also keeps
	// them away from the appointment_services primary key.
	if distinctCount(req.ServiceIDs) != len(req.ServiceIDs) {
		return day, iv, "duplicate service id"
	}
	services, err := h.Catalog.GetServicesByIDs(ctx, req.ServiceIDs)
	if err != nil {
		return day, iv, "load services failed"
	}
	if len(services) != len(req.ServiceIDs) {
		return day, iv, "unknown service id"
	}
	durations := make([]time.Duration, 0, len(services))
	for _, s := range services {
		durations = append(durations, time.Duration(s.DurationMin)*time.Minute)
	}
	iv, err = booking.ComputeInterval(day, off, durations)
	if err != nil {
		switch err {
		case booking.ErrCrossesMidnight:
			return day, iv, "appointment would run past midnight"
		case booking.ErrNoServices:
			return day, iv, "at least one service is required"
		default:
			return day, iv, "invalid appointment time"
		}
	}
	return day, iv, ""
}

// txError maps a failed booking transaction to a response. A
// serialization abort means another request won the slot race after our
// conflict check passed, so it surfaces as a conflict; anything else is
// a server fault.
func txError(c echo.Context, err error, fallback string) error {
	if repository.IsSerializationFailure(err) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "slot was booked by a concurrent request, please retry",
		})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": fallback})
}

func distinctCount(ids []uint64) int {
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return len(seen)
}

// publishEvent sends an appointment lifecycle event to the broker without
// blocking the response. A broker outage only loses the notification.
func publishEvent(action string, d appointmentResp) {
	ev := queue.AppointmentEvent{
		Action:           action,
		AppointmentID:    d.ID,
		UserID:           d.UserID,
		ClientName:       d.ClientName,
		ClientEmail:      d.ClientEmail,
		ClientPhone:      d.ClientPhone,
		Date:             d.Date,
		StartTime:        d.StartTime,
		EndTime:          d.EndTime,
		TotalPriceCents:  d.TotalPriceCents,
		TotalDurationMin: d.TotalDurationMin,
		DepositCents:     d.DepositCents,
		OccurredAt:       time.Now().UTC().Format(time.RFC3339),
	}
	for _, line := range d.Services {
		ev.Services = append(ev.Services, line.Name)
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := queue_publisher.PublishAppointmentEvent(ctx, ev); err != nil {
			log.Printf("appointment: publish %s event failed: %v", action, err)
		}
	}()
}

// ----- customer endpoints -----

// Create books a new appointment. The conflict check and the insert share
// one transaction; the locking read in BusyForDateTx serializes
// concurrent bookings per date.
func (h *AppointmentHandler) Create(c echo.Context) error {
	uid, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	var req appointmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	day, iv, errMsg := h.validateRequest(ctx, req)
	if errMsg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": errMsg})
	}

	tx, err := h.Appointments.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	defer func() { _ = tx.Rollback() }()

	busyRows, err := h.Appointments.BusyForDateTx(ctx, tx, req.Date, 0)
	if err != nil {
		return txError(c, err, "load schedule failed")
	}
	existing, err := busyIntervals(day, busyRows)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load schedule failed"})
	}
	if hit, conflict := booking.HasConflict(iv, uid, existing); conflict {
		return c.JSON(http.StatusConflict, conflictResp{
			Error: "slot unavailable",
			Start: hit.Interval.Start.Format("15:04:05"),
			End:   hit.Interval.End.Format("15:04:05"),
		})
	}

	rec := repository.AppointmentRecord{
		UserID:      uid,
		Date:        req.Date,
		StartTime:   clockString(iv.Start.Sub(day)),
		ClientPhone: req.ClientPhone,
	}
	if err := h.Appointments.CreateTx(ctx, tx, &rec, req.ServiceIDs); err != nil {
		return txError(c, err, "create appointment failed")
	}
	if err := tx.Commit(); err != nil {
		return txError(c, err, "commit failed")
	}

	detail, err := h.Appointments.GetByIDForUser(ctx, rec.ID, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load appointment failed"})
	}
	resp := finishDetail(*detail, time.Now().UTC())
	publishEvent("booked", resp)
	return c.JSON(http.StatusCreated, resp)
}

// List returns the caller's appointments, newest first.
func (h *AppointmentHandler) List(c echo.Context) error {
	uid, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	details, err := h.Appointments.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list appointments failed"})
	}
	now := time.Now().UTC()
	out := make([]appointmentResp, 0, len(details))
	for _, d := range details {
		out = append(out, finishDetail(d, now))
	}
	return c.JSON(http.StatusOK, echo.Map{"appointments": out})
}

// Get returns one of the caller's appointments. A foreign appointment
// yields the same 404 as a missing one.
func (h *AppointmentHandler) Get(c echo.Context) error {
	uid, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	detail, err := h.Appointments.GetByIDForUser(ctx, id, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load appointment failed"})
	}
	return c.JSON(http.StatusOK, finishDetail(*detail, time.Now().UTC()))
}

// Reschedule moves an appointment to a new slot and replaces its service
// set. The appointment's own interval is excluded from the conflict
// check, so shrinking or shifting within one's own slot always works.
func (h *AppointmentHandler) Reschedule(c echo.Context) error {
	uid, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req appointmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	day, iv, errMsg := h.validateRequest(ctx, req)
	if errMsg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": errMsg})
	}

	tx, err := h.Appointments.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	defer func() { _ = tx.Rollback() }()

	owner, cancelled, err := h.Appointments.OwnerStateTx(ctx, tx, id)
	if err != nil || owner != uid {
		// Missing and foreign appointments look the same to the caller.
		return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
	}
	if cancelled {
		return c.JSON(http.StatusConflict, echo.Map{"error": "appointment is cancelled"})
	}

	busyRows, err := h.Appointments.BusyForDateTx(ctx, tx, req.Date, id)
	if err != nil {
		return txError(c, err, "load schedule failed")
	}
	existing, err := busyIntervals(day, busyRows)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load schedule failed"})
	}
	if hit, conflict := booking.HasConflict(iv, uid, existing); conflict {
		return c.JSON(http.StatusConflict, conflictResp{
			Error: "slot unavailable",
			Start: hit.Interval.Start.Format("15:04:05"),
			End:   hit.Interval.End.Format("15:04:05"),
		})
	}

	start := clockString(iv.Start.Sub(day))
	if err := h.Appointments.RescheduleTx(ctx, tx, id, req.Date, start, req.ClientPhone, req.ServiceIDs); err != nil {
		return txError(c, err, "reschedule failed")
	}
	if err := tx.Commit(); err != nil {
		return txError(c, err, "commit failed")
	}

	detail, err := h.Appointments.GetByIDForUser(ctx, id, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load appointment failed"})
	}
	resp := finishDetail(*detail, time.Now().UTC())
	publishEvent("rescheduled", resp)
	return c.JSON(http.StatusOK, resp)
}

// Cancel soft-deletes the caller's appointment. The row survives with
// is_cancelled set, freeing its slot for everyone else. Cancelling an
// already cancelled appointment succeeds quietly.
func (h *AppointmentHandler) Cancel(c echo.Context) error {
	uid, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	detail, err := h.Appointments.GetByIDForUser(ctx, id, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load appointment failed"})
	}
	if err := h.Appointments.Cancel(ctx, id, uid); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}

	if !detail.IsCancelled {
		detail.IsCancelled = true
		publishEvent("cancelled", finishDetail(*detail, time.Now().UTC()))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "appointment cancelled"})
}

// BookedTimes lists the occupied start times on a date so slot pickers
// can grey them out. Public and cacheable; only times are exposed.
func (h *AppointmentHandler) BookedTimes(c echo.Context) error {
	date := c.QueryParam("date")
	if _, err := parseDate(date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	times, err := h.Appointments.BookedTimes(ctx, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load booked times failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"date": date, "booked": times})
}

// ----- admin endpoints -----

// ListAll returns every appointment in the system, newest first.
func (h *AppointmentHandler) ListAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	details, err := h.Appointments.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list appointments failed"})
	}
	now := time.Now().UTC()
	out := make([]appointmentResp, 0, len(details))
	for _, d := range details {
		out = append(out, finishDetail(d, now))
	}
	return c.JSON(http.StatusOK, echo.Map{"appointments": out})
}

// GetAny returns any appointment by ID, regardless of owner.
func (h *AppointmentHandler) GetAny(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	detail, err := h.Appointments.GetByIDAdmin(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load appointment failed"})
	}
	return c.JSON(http.StatusOK, finishDetail(*detail, time.Now().UTC()))
}
