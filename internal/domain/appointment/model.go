package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/dently/clinic/internal/platform/apperr"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
	StatusNoShow    = "NO_SHOW"
)

var validStatuses = map[string]bool{
	StatusScheduled: true, StatusCompleted: true, StatusCancelled: true, StatusNoShow: true,
}

// Appointment is a booked treatment slot for a patient with a practitioner.
type Appointment struct {
	ID             uuid.UUID `json:"id"`
	PatientID      uuid.UUID `json:"patient_id"`
	PractitionerID uuid.UUID `json:"practitioner_id"`
	RoomNumber     int       `json:"room_number"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Status         string    `json:"status"`
	TreatmentNote  *string   `json:"treatment_note,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (a *Appointment) Validate() error {
	if a.PatientID == uuid.Nil {
		return apperr.Validation("patient_id", "is required")
	}
	if a.PractitionerID == uuid.Nil {
		return apperr.Validation("practitioner_id", "is required")
	}
	if a.RoomNumber < 1 {
		return apperr.Validation("room_number", "must be at least 1")
	}
	if a.StartTime.IsZero() || a.EndTime.IsZero() {
		return apperr.Validation("start_time", "start_time and end_time are required")
	}
	if !a.StartTime.Before(a.EndTime) {
		return apperr.Validation("start_time", "must precede end_time")
	}
	if a.Status != "" && !validStatuses[a.Status] {
		return apperr.Validation("status", "unknown appointment status")
	}
	return nil
}

// Date returns the appointment's calendar date.
func (a *Appointment) Date() time.Time {
	return time.Date(a.StartTime.Year(), a.StartTime.Month(), a.StartTime.Day(), 0, 0, 0, 0, time.UTC)
}
