package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dently/clinic/internal/domain/leave"
	"github.com/dently/clinic/internal/domain/schedule"
	"github.com/dently/clinic/internal/platform/apperr"
)

type mockRepo struct {
	appointments map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{appointments: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.appointments[a.ID] = a
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, apperr.NotFound("appointment")
	}
	return a, nil
}

func (m *mockRepo) Update(_ context.Context, a *Appointment) error {
	if _, ok := m.appointments[a.ID]; !ok {
		return apperr.NotFound("appointment")
	}
	m.appointments[a.ID] = a
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.appointments[id]; !ok {
		return apperr.NotFound("appointment")
	}
	delete(m.appointments, id)
	return nil
}

func (m *mockRepo) ListByPractitioner(_ context.Context, practitionerID uuid.UUID, from, to time.Time, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, a := range m.appointments {
		if a.PractitionerID == practitionerID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, a := range m.appointments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

type mockLeaveSource struct {
	records map[uuid.UUID][]*leave.Request
}

func (m *mockLeaveSource) ListBlockingForUser(_ context.Context, userID uuid.UUID) ([]*leave.Request, error) {
	return m.records[userID], nil
}

func day(y int, mo time.Month, d int) time.Time {
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func validAppointment(practitionerID uuid.UUID) *Appointment {
	start := time.Date(2024, 7, 3, 10, 0, 0, 0, time.UTC)
	return &Appointment{
		PatientID:      uuid.New(),
		PractitionerID: practitionerID,
		RoomNumber:     1,
		StartTime:      start,
		EndTime:        start.Add(30 * time.Minute),
	}
}

func newService(leaveSource *mockLeaveSource) (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, leaveSource), repo
}

func TestCreateSucceedsWithoutLeave(t *testing.T) {
	svc, _ := newService(&mockLeaveSource{})
	a := validAppointment(uuid.New())
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Errorf("status = %s, want SCHEDULED", a.Status)
	}
}

func TestCreateBlockedByApprovedLeave(t *testing.T) {
	practitioner := uuid.New()
	leaveSource := &mockLeaveSource{records: map[uuid.UUID][]*leave.Request{
		practitioner: {{
			ID:        uuid.New(),
			UserID:    practitioner,
			Type:      leave.TypeVacation,
			Status:    leave.StatusApproved,
			StartDate: day(2024, 7, 1),
			EndDate:   day(2024, 7, 5),
		}},
	}}
	svc, repo := newService(leaveSource)

	a := validAppointment(practitioner)
	err := svc.Create(context.Background(), a)
	if !apperr.Is(err, apperr.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(repo.appointments) != 0 {
		t.Error("conflicting appointment must not be persisted")
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatal("expected *apperr.Error")
	}
	details, ok := appErr.Details.(map[string]interface{})
	if !ok || details["blocking_record"] == nil {
		t.Error("conflict must carry the blocking record")
	}
}

func TestCreateAllowedAroundPartialBlock(t *testing.T) {
	practitioner := uuid.New()
	start, _ := schedule.ParseTimeOfDay("09:00")
	end, _ := schedule.ParseTimeOfDay("11:00")
	leaveSource := &mockLeaveSource{records: map[uuid.UUID][]*leave.Request{
		practitioner: {{
			ID:           uuid.New(),
			UserID:       practitioner,
			Type:         leave.TypePersonal,
			Status:       leave.StatusApproved,
			StartDate:    day(2024, 7, 3),
			EndDate:      day(2024, 7, 3),
			IsPartialDay: true,
			StartTime:    &start,
			EndTime:      &end,
		}},
	}}
	svc, _ := newService(leaveSource)

	// 11:00 onward is free (half-open block)
	a := validAppointment(practitioner)
	a.StartTime = time.Date(2024, 7, 3, 11, 0, 0, 0, time.UTC)
	a.EndTime = a.StartTime.Add(30 * time.Minute)
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatalf("appointment after block should succeed: %v", err)
	}

	// inside the block conflicts
	b := validAppointment(practitioner)
	b.StartTime = time.Date(2024, 7, 3, 10, 0, 0, 0, time.UTC)
	b.EndTime = b.StartTime.Add(30 * time.Minute)
	if err := svc.Create(context.Background(), b); !apperr.Is(err, apperr.CodeConflict) {
		t.Fatalf("expected conflict inside the block, got %v", err)
	}
}

func TestRescheduleRunsLeaveCheck(t *testing.T) {
	practitioner := uuid.New()
	leaveSource := &mockLeaveSource{records: map[uuid.UUID][]*leave.Request{
		practitioner: {{
			ID:        uuid.New(),
			UserID:    practitioner,
			Type:      leave.TypeSickLeave,
			Status:    leave.StatusAlternativeAccepted,
			StartDate: day(2024, 7, 10),
			EndDate:   day(2024, 7, 12),
		}},
	}}
	svc, _ := newService(leaveSource)
	ctx := context.Background()

	a := validAppointment(practitioner)
	if err := svc.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// moving into the accepted-alternative range conflicts
	newStart := time.Date(2024, 7, 11, 10, 0, 0, 0, time.UTC)
	_, err := svc.Reschedule(ctx, a.ID, newStart, newStart.Add(30*time.Minute))
	if !apperr.Is(err, apperr.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// the original interval is untouched
	stored, err := svc.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !stored.StartTime.Equal(time.Date(2024, 7, 3, 10, 0, 0, 0, time.UTC)) {
		t.Error("failed reschedule must not change the stored interval")
	}

	// a free date works
	freeStart := time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC)
	moved, err := svc.Reschedule(ctx, a.ID, freeStart, freeStart.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("Reschedule: %v", err)
	}
	if !moved.StartTime.Equal(freeStart) {
		t.Error("reschedule did not move the appointment")
	}
}

func TestRescheduleRejectsNonScheduled(t *testing.T) {
	svc, _ := newService(&mockLeaveSource{})
	ctx := context.Background()

	a := validAppointment(uuid.New())
	if err := svc.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, a.ID, StatusCancelled); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	newStart := time.Date(2024, 7, 20, 10, 0, 0, 0, time.UTC)
	if _, err := svc.Reschedule(ctx, a.ID, newStart, newStart.Add(time.Hour)); !apperr.Is(err, apperr.CodeConflict) {
		t.Fatalf("expected conflict rescheduling a cancelled appointment, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newService(&mockLeaveSource{})
	ctx := context.Background()

	a := validAppointment(uuid.New())
	a.EndTime = a.StartTime
	if err := svc.Create(ctx, a); !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("expected validation error for empty interval, got %v", err)
	}

	b := validAppointment(uuid.New())
	b.PatientID = uuid.Nil
	if err := svc.Create(ctx, b); !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("expected validation error for missing patient, got %v", err)
	}
}
