package leave

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dently/clinic/internal/domain/schedule"
)

// ValidationResult is the outcome of checking an appointment against a
// practitioner's blocking leave.
type ValidationResult struct {
	IsValid        bool     `json:"is_valid"`
	BlockingRecord *Request `json:"blocking_record,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// ValidateAppointment checks a proposed appointment interval against the
// given leave records and returns the first conflict found.
//
// The function is pure: it performs no I/O and no status filtering. Callers
// pre-fetch the practitioner's records and pre-filter them to blocking
// statuses (APPROVED, ALTERNATIVE_ACCEPTED).
//
// A partial-day record blocks only its own calendar day, and only where
// the appointment interval overlaps the blocked clock interval (half-open).
// A full-day or multi-day record blocks every appointment on any date in
// its inclusive range, regardless of time of day.
func ValidateAppointment(appointmentDate, startDateTime, endDateTime time.Time, practitionerID uuid.UUID, records []*Request) ValidationResult {
	for _, rec := range records {
		if rec.UserID != practitionerID {
			continue
		}
		if rec.IsPartialDay && rec.StartTime != nil && rec.EndTime != nil {
			if !sameDate(appointmentDate, rec.StartDate) {
				continue
			}
			blockStart := combine(rec.StartDate, *rec.StartTime)
			blockEnd := combine(rec.StartDate, *rec.EndTime)
			if startDateTime.Before(blockEnd) && endDateTime.After(blockStart) {
				return conflict(rec)
			}
			continue
		}
		if rec.DatesIntersect(appointmentDate, appointmentDate) {
			return conflict(rec)
		}
	}
	return ValidationResult{IsValid: true}
}

func conflict(rec *Request) ValidationResult {
	return ValidationResult{
		IsValid:        false,
		BlockingRecord: rec,
		Error:          fmt.Sprintf("practitioner is unavailable: %s leave on the selected date", typeLabel(rec.Type)),
	}
}

func typeLabel(t Type) string {
	return strings.ToLower(strings.ReplaceAll(string(t), "_", " "))
}

func combine(date time.Time, tod schedule.TimeOfDay) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), tod.Hour, tod.Minute, 0, 0, date.Location())
}
