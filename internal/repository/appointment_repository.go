package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// AppointmentRepo provides CRUD operations for appointments and their
// selected services. Appointments book a span of the salon's single
// shared calendar; the services chosen for an appointment live in the
// appointment_services join table. Dates and times of day travel as
// strings ("2006-01-02" / "15:04:05") so DATE and TIME columns round-trip
// without timezone surprises; timestamps are stored in UTC.
//
// The check-then-insert race is closed here: BusyForDateTx is a locking
// read (SELECT ... FOR UPDATE) over the date's non-cancelled rows. With
// the appointment_date index, InnoDB takes next-key locks on the scanned
// range, so a second transaction inserting into the same date blocks
// until the first commits. Callers run the conflict check and the insert
// inside one transaction.
type AppointmentRepo struct {
	db *sql.DB
}

// NewAppointmentRepo returns a new AppointmentRepo bound to the given database.
func NewAppointmentRepo(db *sql.DB) *AppointmentRepo { return &AppointmentRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *AppointmentRepo) DB() *sql.DB { return r.db }

// IsSerializationFailure reports whether err is an InnoDB deadlock
// (1213) or lock wait timeout (1205). When two transactions race to book
// a date that has no rows yet, their gap locks are compatible and the
// second insert deadlocks; InnoDB rolls one transaction back. The loser
// lost the slot race, so callers should report a conflict, not a server
// fault.
func IsSerializationFailure(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1213 || me.Number == 1205
	}
	return false
}

// AppointmentRecord mirrors the schema of the appointments table. It is
// used internally by the repository when constructing or scanning rows.
type AppointmentRecord struct {
	ID            uint64
	UserID        uint64
	Date          string // "2006-01-02"
	StartTime     string // "15:04:05"
	ClientPhone   string
	IsRescheduled bool
	IsCancelled   bool
	PaymentRef    *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BusyRow is one existing non-cancelled appointment on a date, with the
// total duration of its services, as needed by the conflict checker.
type BusyRow struct {
	ID          uint64
	UserID      uint64
	StartTime   string // "15:04:05"
	DurationMin uint32
}

// BusyForDateTx returns every non-cancelled appointment on the given date
// together with its owner and total service duration, locking the rows
// (and, through the date index, the date's key range) for the duration of
// the transaction. excludeID skips one appointment, used when that
// appointment is itself being rescheduled; pass 0 otherwise.
func (r *AppointmentRepo) BusyForDateTx(ctx context.Context, tx *sql.Tx, date string, excludeID uint64) ([]BusyRow, error) {
	// Locking read first: plain column list so FOR UPDATE semantics stay
	// simple. Durations come from a second, non-locking grouped query.
	q := `SELECT id, user_id, TIME_FORMAT(appointment_time, '%H:%i:%s')
	      FROM appointments
	      WHERE appointment_date = ? AND is_cancelled = 0`
	args := []interface{}{date}
	if excludeID != 0 {
		q += ` AND id <> ?`
		args = append(args, excludeID)
	}
	q += ` FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	busy := make([]BusyRow, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var b BusyRow
		if err := rows.Scan(&b.ID, &b.UserID, &b.StartTime); err != nil {
			return nil, err
		}
		index[b.ID] = len(busy)
		busy = append(busy, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(busy) == 0 {
		return busy, nil
	}

	ids := make([]interface{}, 0, len(busy))
	placeholders := make([]string, 0, len(busy))
	for _, b := range busy {
		ids = append(ids, b.ID)
		placeholders = append(placeholders, "?")
	}
	durQ := `SELECT aps.appointment_id, COALESCE(SUM(s.duration_min), 0)
	         FROM appointment_services aps
	         JOIN services s ON s.id = aps.service_id
	         WHERE aps.appointment_id IN (` + strings.Join(placeholders, ",") + `)
	         GROUP BY aps.appointment_id`
	drows, err := tx.QueryContext(ctx, durQ, ids...)
	if err != nil {
		return nil, err
	}
	defer drows.Close()
	for drows.Next() {
		var id uint64
		var mins uint32
		if err := drows.Scan(&id, &mins); err != nil {
			return nil, err
		}
		if i, ok := index[id]; ok {
			busy[i].DurationMin = mins
		}
	}
	return busy, drows.Err()
}

// CreateTx inserts a new appointment and its service associations within
// the scope of an existing transaction. It populates the generated ID and
// timestamps on the provided record. The caller must commit or rollback
// the transaction; on rollback no partial state survives, including the
// join rows.
func (r *AppointmentRepo) CreateTx(ctx context.Context, tx *sql.Tx, rec *AppointmentRecord, serviceIDs []uint64) error {
	const q = `INSERT INTO appointments (user_id, appointment_date, appointment_time, client_phone) VALUES (?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, rec.UserID, rec.Date, rec.StartTime, rec.ClientPhone)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	if err := insertServicesTx(ctx, tx, rec.ID, serviceIDs); err != nil {
		return err
	}
	// Query back the full row to populate timestamps and defaults.
	const sel = `SELECT id, user_id, DATE_FORMAT(appointment_date, '%Y-%m-%d'),
	                    TIME_FORMAT(appointment_time, '%H:%i:%s'),
	                    client_phone, is_rescheduled, is_cancelled, payment_reference,
	                    created_at, updated_at
	             FROM appointments WHERE id = ?`
	var payRef sql.NullString
	err = tx.QueryRowContext(ctx, sel, rec.ID).Scan(
		&rec.ID, &rec.UserID, &rec.Date, &rec.StartTime,
		&rec.ClientPhone, &rec.IsRescheduled, &rec.IsCancelled, &payRef,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if payRef.Valid {
		ref := payRef.String
		rec.PaymentRef = &ref
	}
	return nil
}

// insertServicesTx bulk-inserts the appointment_services rows in a single
// statement. Passing an empty slice has no effect and returns nil.
func insertServicesTx(ctx context.Context, tx *sql.Tx, appointmentID uint64, serviceIDs []uint64) error {
	if len(serviceIDs) == 0 {
		return nil
	}
	query := `INSERT INTO appointment_services (appointment_id, service_id) VALUES `
	args := make([]interface{}, 0, len(serviceIDs)*2)
	for i, sid := range serviceIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, appointmentID, sid)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// OwnerStateTx loads the owner and cancellation flag of an appointment,
// locking the row, so reschedule handlers can verify ownership inside the
// same transaction that re-runs the conflict check. sql.ErrNoRows is
// returned when the appointment does not exist.
func (r *AppointmentRepo) OwnerStateTx(ctx context.Context, tx *sql.Tx, id uint64) (owner uint64, cancelled bool, err error) {
	err = tx.QueryRowContext(ctx,
		`SELECT user_id, is_cancelled FROM appointments WHERE id = ? FOR UPDATE`,
		id).Scan(&owner, &cancelled)
	return owner, cancelled, err
}

// RescheduleTx moves an appointment to a new date/time and replaces its
// service set, marking it rescheduled. Runs within the caller's
// transaction, after the conflict check has passed.
func (r *AppointmentRepo) RescheduleTx(ctx context.Context, tx *sql.Tx, id uint64, date, startTime, clientPhone string, serviceIDs []uint64) error {
	const q = `UPDATE appointments
	           SET appointment_date = ?, appointment_time = ?, client_phone = ?, is_rescheduled = 1
	           WHERE id = ?`
	if _, err := tx.ExecContext(ctx, q, date, startTime, clientPhone, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM appointment_services WHERE appointment_id = ?`, id); err != nil {
		return err
	}
	return insertServicesTx(ctx, tx, id, serviceIDs)
}

// Cancel flips is_cancelled on the user's own appointment. The record is
// retained for history; cancelled rows simply drop out of every conflict
// set. Cancelling twice is harmless. sql.ErrNoRows is returned when the
// appointment does not exist for this user, which deliberately does not
// distinguish "missing" from "someone else's".
func (r *AppointmentRepo) Cancel(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE appointments SET is_cancelled = 1 WHERE id = ? AND user_id = ?`,
		id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish already-cancelled (idempotent success) from absent.
		var cancelled bool
		if scanErr := r.db.QueryRowContext(ctx,
			`SELECT is_cancelled FROM appointments WHERE id = ? AND user_id = ?`,
			id, userID).Scan(&cancelled); scanErr != nil {
			return scanErr
		}
	}
	return nil
}

// AttachPayment records a provider-verified payment reference on the
// user's appointment. The column is overwritten, never appended, so
// attaching the same reference twice leaves exactly one reference on the
// record. sql.ErrNoRows is returned when the appointment does not exist
// for this user.
func (r *AppointmentRepo) AttachPayment(ctx context.Context, id, userID uint64, reference string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE appointments SET payment_reference = ? WHERE id = ? AND user_id = ?`,
		reference, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports zero affected rows when the value is unchanged, so
		// re-check existence before declaring the appointment missing.
		var exists uint64
		if scanErr := r.db.QueryRowContext(ctx,
			`SELECT id FROM appointments WHERE id = ? AND user_id = ?`,
			id, userID).Scan(&exists); scanErr != nil {
			return scanErr
		}
	}
	return nil
}

// ServiceLine is one catalog service included in an appointment, priced
// as of the moment of the query.
type ServiceLine struct {
	ServiceID   uint64 `json:"service_id"`
	Name        string `json:"name"`
	PriceCents  uint32 `json:"price_cents"`
	DurationMin uint32 `json:"duration_min"`
}

// AppointmentDetail is a full appointment view for API responses. The
// totals are sums over the service lines as currently priced in the
// catalog; they are computed here on every read and never stored.
type AppointmentDetail struct {
	ID               uint64        `json:"id"`
	UserID           uint64        `json:"user_id"`
	ClientName       string        `json:"client_name"`
	ClientEmail      string        `json:"client_email"`
	ClientPhone      string        `json:"client_phone"`
	Date             string        `json:"appointment_date"`
	StartTime        string        `json:"appointment_time"`
	IsRescheduled    bool          `json:"is_rescheduled"`
	IsCancelled      bool          `json:"is_cancelled"`
	PaymentRef       *string       `json:"payment_reference,omitempty"`
	Services         []ServiceLine `json:"services"`
	TotalPriceCents  uint32        `json:"total_price_cents"`
	TotalDurationMin uint32        `json:"total_duration_min"`
	Status           string        `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
}

// GetByIDForUser returns a single appointment scoped to the given user.
// Scoping the query by owner means a non-owner gets sql.ErrNoRows, the
// same as a missing record, so nothing about foreign appointments leaks.
func (r *AppointmentRepo) GetByIDForUser(ctx context.Context, id, userID uint64) (*AppointmentDetail, error) {
	details, err := r.listDetails(ctx, `WHERE a.id = ? AND a.user_id = ?`, id, userID)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, sql.ErrNoRows
	}
	return &details[0], nil
}

// GetByIDAdmin returns a single appointment without ownership scoping.
// Reserved for privileged callers.
func (r *AppointmentRepo) GetByIDAdmin(ctx context.Context, id uint64) (*AppointmentDetail, error) {
	details, err := r.listDetails(ctx, `WHERE a.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, sql.ErrNoRows
	}
	return &details[0], nil
}

// ListByUser returns all of a user's appointments, newest first.
func (r *AppointmentRepo) ListByUser(ctx context.Context, userID uint64) ([]AppointmentDetail, error) {
	return r.listDetails(ctx, `WHERE a.user_id = ? ORDER BY a.created_at DESC`, userID)
}

// ListAll returns every appointment, newest first. Privileged callers only.
func (r *AppointmentRepo) ListAll(ctx context.Context) ([]AppointmentDetail, error) {
	return r.listDetails(ctx, `ORDER BY a.created_at DESC`)
}

// BookedTimes returns the start times ("15:04:05") of all non-cancelled
// appointments on a date, for slot-picker rendering. Only the times are
// exposed: clients need to grey out slots, not see who booked them.
func (r *AppointmentRepo) BookedTimes(ctx context.Context, date string) ([]string, error) {
	const q = `SELECT TIME_FORMAT(appointment_time, '%H:%i:%s')
	           FROM appointments
	           WHERE appointment_date = ? AND is_cancelled = 0
	           ORDER BY appointment_time`
	rows, err := r.db.QueryContext(ctx, q, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	times := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

// listDetails assembles AppointmentDetail rows for an arbitrary filter
// clause. It fetches the appointments (joined with their owner for name
// and email) first, then populates all service lines in a single second
// query, summing totals in the process. Status is left empty here: it is
// a projection over the clock and is filled in by the handler layer.
func (r *AppointmentRepo) listDetails(ctx context.Context, clause string, args ...interface{}) ([]AppointmentDetail, error) {
	q := `SELECT a.id, a.user_id, u.full_name, u.email, a.client_phone,
	             DATE_FORMAT(a.appointment_date, '%Y-%m-%d'),
	             TIME_FORMAT(a.appointment_time, '%H:%i:%s'),
	             a.is_rescheduled, a.is_cancelled, a.payment_reference, a.created_at
	      FROM appointments a
	      JOIN users u ON u.id = a.user_id ` + clause
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]AppointmentDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d AppointmentDetail
		var payRef sql.NullString
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.ClientName, &d.ClientEmail, &d.ClientPhone,
			&d.Date, &d.StartTime,
			&d.IsRescheduled, &d.IsCancelled, &payRef, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		if payRef.Valid {
			ref := payRef.String
			d.PaymentRef = &ref
		}
		d.Services = []ServiceLine{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}

	ids := make([]interface{}, 0, len(details))
	placeholders := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
		placeholders = append(placeholders, "?")
	}
	lineQ := `SELECT aps.appointment_id, s.id, s.name, s.price_cents, s.duration_min
	          FROM appointment_services aps
	          JOIN services s ON s.id = aps.service_id
	          WHERE aps.appointment_id IN (` + strings.Join(placeholders, ",") + `)
	          ORDER BY aps.appointment_id, s.name`
	srows, err := r.db.QueryContext(ctx, lineQ, ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var apptID uint64
		var line ServiceLine
		if err := srows.Scan(&apptID, &line.ServiceID, &line.Name, &line.PriceCents, &line.DurationMin); err != nil {
			return nil, err
		}
		i, ok := index[apptID]
		if !ok {
			continue
		}
		details[i].Services = append(details[i].Services, line)
		details[i].TotalPriceCents += line.PriceCents
		details[i].TotalDurationMin += line.DurationMin
	}
	return details, srows.Err()
}
