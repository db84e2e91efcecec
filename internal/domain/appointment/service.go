package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dently/clinic/internal/domain/leave"
	"github.com/dently/clinic/internal/platform/apperr"
)

// BlockingLeaveSource supplies a practitioner's blocking records for the
// conflict check. The leave service satisfies it.
type BlockingLeaveSource interface {
	ListBlockingForUser(ctx context.Context, userID uuid.UUID) ([]*leave.Request, error)
}

type Service struct {
	repo  Repository
	leave BlockingLeaveSource
}

func NewService(repo Repository, leaveSource BlockingLeaveSource) *Service {
	return &Service{repo: repo, leave: leaveSource}
}

// Create books the appointment after checking it against the
// practitioner's approved leave and personal blocks. On conflict nothing
// is persisted and the error carries the blocking record.
//
// The check is advisory under concurrency: a leave approval landing
// between validation and commit can leave a stale appointment standing.
func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := s.checkLeave(ctx, a); err != nil {
		return err
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	return s.repo.Create(ctx, a)
}

// Reschedule moves an appointment to a new interval, re-running the leave
// check against the new dates.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, startTime, endTime time.Time) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusScheduled {
		return nil, apperr.Conflict("only scheduled appointments can be rescheduled")
	}
	// Work on a copy so a rejected reschedule never leaks the new interval
	// into a record the repository may share.
	updated := *a
	updated.StartTime = startTime
	updated.EndTime = endTime
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkLeave(ctx, &updated); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) checkLeave(ctx context.Context, a *Appointment) error {
	records, err := s.leave.ListBlockingForUser(ctx, a.PractitionerID)
	if err != nil {
		return err
	}
	res := leave.ValidateAppointment(a.Date(), a.StartTime, a.EndTime, a.PractitionerID, records)
	if !res.IsValid {
		return apperr.ConflictWith(res.Error, map[string]interface{}{
			"blocking_record": res.BlockingRecord,
		})
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus moves an appointment to a new lifecycle status; no leave
// check applies since the interval does not change.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	if !validStatuses[status] {
		return nil, apperr.Validation("status", "unknown appointment status")
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := *a
	updated.Status = status
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByPractitioner(ctx context.Context, practitionerID uuid.UUID, from, to time.Time, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPractitioner(ctx, practitionerID, from, to, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}
