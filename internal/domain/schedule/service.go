package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dently/clinic/internal/platform/apperr"
)

type Service struct {
	schedules ScheduleRepository
	shifts    ShiftRepository
}

func NewService(schedules ScheduleRepository, shifts ShiftRepository) *Service {
	return &Service{schedules: schedules, shifts: shifts}
}

// -- ClinicSchedule --

func (s *Service) CreateSchedule(ctx context.Context, cs *ClinicSchedule) error {
	if err := cs.Validate(); err != nil {
		return err
	}
	return s.schedules.Create(ctx, cs)
}

func (s *Service) GetSchedule(ctx context.Context, id uuid.UUID) (*ClinicSchedule, error) {
	return s.schedules.GetByID(ctx, id)
}

func (s *Service) ListSchedules(ctx context.Context, limit, offset int) ([]*ClinicSchedule, int, error) {
	return s.schedules.List(ctx, limit, offset)
}

func (s *Service) DeleteSchedule(ctx context.Context, id uuid.UUID) error {
	return s.schedules.Delete(ctx, id)
}

// -- Shift --

// CreateShift stores the shift and reports clock-interval conflicts with
// existing records of the same room and selector class. Conflicts never
// block creation; callers surface them as warnings.
func (s *Service) CreateShift(ctx context.Context, sh *Shift) ([]Conflict, error) {
	if err := sh.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.schedules.GetByID(ctx, sh.ScheduleID); err != nil {
		return nil, err
	}

	existing, err := s.shifts.ListByRoom(ctx, sh.ScheduleID, sh.RoomNumber)
	if err != nil {
		return nil, err
	}
	conflicts := DetectConflicts(sh, existing)

	if err := s.shifts.Create(ctx, sh); err != nil {
		return nil, err
	}
	return conflicts, nil
}

func (s *Service) GetShift(ctx context.Context, id uuid.UUID) (*Shift, error) {
	return s.shifts.GetByID(ctx, id)
}

// UpdateShift revalidates and stores the shift, reporting conflicts the
// same way CreateShift does. The record's own previous row is excluded
// from the conflict set by ID.
func (s *Service) UpdateShift(ctx context.Context, sh *Shift) ([]Conflict, error) {
	if sh.ID == uuid.Nil {
		return nil, apperr.Validation("id", "is required")
	}
	if err := sh.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.shifts.GetByID(ctx, sh.ID); err != nil {
		return nil, err
	}

	existing, err := s.shifts.ListByRoom(ctx, sh.ScheduleID, sh.RoomNumber)
	if err != nil {
		return nil, err
	}
	conflicts := DetectConflicts(sh, existing)

	if err := s.shifts.Update(ctx, sh); err != nil {
		return nil, err
	}
	return conflicts, nil
}

func (s *Service) DeleteShift(ctx context.Context, id uuid.UUID) error {
	return s.shifts.Delete(ctx, id)
}

func (s *Service) ListShiftsByRoom(ctx context.Context, scheduleID uuid.UUID, roomNumber int) ([]*Shift, error) {
	return s.shifts.ListByRoom(ctx, scheduleID, roomNumber)
}

// ListShifts returns every shift of a schedule across all rooms, ordered by
// room then start time.
func (s *Service) ListShifts(ctx context.Context, scheduleID uuid.UUID) ([]*Shift, error) {
	if _, err := s.schedules.GetByID(ctx, scheduleID); err != nil {
		return nil, err
	}
	return s.shifts.ListBySchedule(ctx, scheduleID)
}

// ResolveDay returns the effective shifts for a room on a date, with
// override and date precedence applied.
func (s *Service) ResolveDay(ctx context.Context, scheduleID uuid.UUID, roomNumber int, date time.Time) ([]*Shift, error) {
	records, err := s.shifts.ListByRoom(ctx, scheduleID, roomNumber)
	if err != nil {
		return nil, err
	}
	return ResolveRoomSchedule(records, date), nil
}

// WeekView returns the weekly-recurring plan of a room.
func (s *Service) WeekView(ctx context.Context, scheduleID uuid.UUID, roomNumber int) (*WeekView, error) {
	records, err := s.shifts.ListByRoom(ctx, scheduleID, roomNumber)
	if err != nil {
		return nil, err
	}
	return BuildWeekView(records), nil
}
