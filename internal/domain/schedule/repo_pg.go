package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dently/clinic/internal/platform/apperr"
	"github.com/dently/clinic/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== ClinicSchedule Repository ===========

type scheduleRepoPG struct{ pool *pgxpool.Pool }

func NewScheduleRepoPG(pool *pgxpool.Pool) ScheduleRepository { return &scheduleRepoPG{pool: pool} }

func (r *scheduleRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *scheduleRepoPG) Create(ctx context.Context, cs *ClinicSchedule) error {
	cs.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO clinic_schedule (id, name)
		VALUES ($1, $2)
		RETURNING created_at, updated_at`,
		cs.ID, cs.Name).Scan(&cs.CreatedAt, &cs.UpdatedAt)
}

func (r *scheduleRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ClinicSchedule, error) {
	var cs ClinicSchedule
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, name, created_at, updated_at FROM clinic_schedule WHERE id = $1`, id).
		Scan(&cs.ID, &cs.Name, &cs.CreatedAt, &cs.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("clinic schedule")
	}
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

func (r *scheduleRepoPG) List(ctx context.Context, limit, offset int) ([]*ClinicSchedule, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM clinic_schedule`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, name, created_at, updated_at
		FROM clinic_schedule ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*ClinicSchedule
	for rows.Next() {
		var cs ClinicSchedule
		if err := rows.Scan(&cs.ID, &cs.Name, &cs.CreatedAt, &cs.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &cs)
	}
	return out, total, rows.Err()
}

func (r *scheduleRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM clinic_schedule WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("clinic schedule")
	}
	return nil
}

// =========== Shift Repository ===========

type shiftRepoPG struct{ pool *pgxpool.Pool }

func NewShiftRepoPG(pool *pgxpool.Pool) ShiftRepository { return &shiftRepoPG{pool: pool} }

func (r *shiftRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const shiftCols = `id, schedule_id, room_number, practitioner_id, side_practitioner_id,
	start_time, end_time, specific_date, day_of_week, priority,
	is_override, is_unavailable, reason, created_at, updated_at`

// selectorColumns splits a DateSelector into the two nullable columns the
// shift_record table stores; the table CHECK keeps them mutually exclusive.
func selectorColumns(sel DateSelector) (specificDate *time.Time, dayOfWeek *int16) {
	if d, ok := sel.Specific(); ok {
		specificDate = &d
	}
	if w, ok := sel.Weekday(); ok {
		dow := int16(w)
		dayOfWeek = &dow
	}
	return specificDate, dayOfWeek
}

func scanShift(row pgx.Row) (*Shift, error) {
	var (
		s            Shift
		practitioner *uuid.UUID
		specificDate *time.Time
		dayOfWeek    *int16
	)
	err := row.Scan(&s.ID, &s.ScheduleID, &s.RoomNumber, &practitioner, &s.SidePractitionerID,
		&s.StartTime, &s.EndTime, &specificDate, &dayOfWeek, &s.Priority,
		&s.IsOverride, &s.IsUnavailable, &s.Reason, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if practitioner != nil {
		s.PractitionerID = *practitioner
	}
	switch {
	case specificDate != nil:
		s.Selector = OnDate(*specificDate)
	case dayOfWeek != nil:
		s.Selector = EveryWeek(time.Weekday(*dayOfWeek))
	}
	return &s, nil
}

func (r *shiftRepoPG) Create(ctx context.Context, s *Shift) error {
	s.ID = uuid.New()
	specificDate, dayOfWeek := selectorColumns(s.Selector)
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO shift_record (id, schedule_id, room_number, practitioner_id,
			side_practitioner_id, start_time, end_time, specific_date, day_of_week,
			priority, is_override, is_unavailable, reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at, updated_at`,
		s.ID, s.ScheduleID, s.RoomNumber, nullableUUID(s.PractitionerID),
		s.SidePractitionerID, s.StartTime, s.EndTime, specificDate, dayOfWeek,
		s.Priority, s.IsOverride, s.IsUnavailable, s.Reason).
		Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *shiftRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Shift, error) {
	s, err := scanShift(r.conn(ctx).QueryRow(ctx,
		`SELECT `+shiftCols+` FROM shift_record WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("shift")
	}
	return s, err
}

func (r *shiftRepoPG) Update(ctx context.Context, s *Shift) error {
	specificDate, dayOfWeek := selectorColumns(s.Selector)
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE shift_record SET room_number=$2, practitioner_id=$3, side_practitioner_id=$4,
			start_time=$5, end_time=$6, specific_date=$7, day_of_week=$8,
			priority=$9, is_override=$10, is_unavailable=$11, reason=$12, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.RoomNumber, nullableUUID(s.PractitionerID), s.SidePractitionerID,
		s.StartTime, s.EndTime, specificDate, dayOfWeek,
		s.Priority, s.IsOverride, s.IsUnavailable, s.Reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("shift")
	}
	return nil
}

func (r *shiftRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM shift_record WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("shift")
	}
	return nil
}

func (r *shiftRepoPG) ListByRoom(ctx context.Context, scheduleID uuid.UUID, roomNumber int) ([]*Shift, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+shiftCols+` FROM shift_record
		WHERE schedule_id = $1 AND room_number = $2
		ORDER BY start_time`, scheduleID, roomNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShifts(rows)
}

func (r *shiftRepoPG) ListBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]*Shift, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+shiftCols+` FROM shift_record
		WHERE schedule_id = $1
		ORDER BY room_number, start_time`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShifts(rows)
}

func collectShifts(rows pgx.Rows) ([]*Shift, error) {
	var out []*Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// nullableUUID maps the zero UUID to NULL for unavailability records that
// carry no practitioner.
func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
