package schedule

import (
	"context"

	"github.com/google/uuid"
)

type ScheduleRepository interface {
	Create(ctx context.Context, cs *ClinicSchedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*ClinicSchedule, error)
	List(ctx context.Context, limit, offset int) ([]*ClinicSchedule, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ShiftRepository interface {
	Create(ctx context.Context, s *Shift) error
	GetByID(ctx context.Context, id uuid.UUID) (*Shift, error)
	Update(ctx context.Context, s *Shift) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByRoom returns every shift record of a room, dated and weekly.
	ListByRoom(ctx context.Context, scheduleID uuid.UUID, roomNumber int) ([]*Shift, error)
	ListBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]*Shift, error)
}
