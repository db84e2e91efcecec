package leave

import (
	"time"

	"github.com/google/uuid"

	"github.com/dently/clinic/internal/domain/schedule"
	"github.com/dently/clinic/internal/platform/apperr"
)

// Type classifies a leave request.
type Type string

const (
	TypePersonal    Type = "PERSONAL"
	TypeVacation    Type = "VACATION"
	TypeSickLeave   Type = "SICK_LEAVE"
	TypeMaternity   Type = "MATERNITY"
	TypeBereavement Type = "BEREAVEMENT"
	TypeUnpaid      Type = "UNPAID"
	TypeOther       Type = "OTHER"
)

var validTypes = map[Type]bool{
	TypePersonal: true, TypeVacation: true, TypeSickLeave: true,
	TypeMaternity: true, TypeBereavement: true, TypeUnpaid: true, TypeOther: true,
}

// Status is a leave request's position in the review state machine.
type Status string

const (
	StatusPending             Status = "PENDING"
	StatusApproved            Status = "APPROVED"
	StatusDenied              Status = "DENIED"
	StatusCancelled           Status = "CANCELLED"
	StatusAlternativeProposed Status = "ALTERNATIVE_PROPOSED"
	StatusAlternativeAccepted Status = "ALTERNATIVE_ACCEPTED"
	StatusAlternativeRejected Status = "ALTERNATIVE_REJECTED"
)

// Terminal reports whether no further transition is allowed from the status.
func (s Status) Terminal() bool {
	switch s {
	case StatusApproved, StatusDenied, StatusCancelled,
		StatusAlternativeAccepted, StatusAlternativeRejected:
		return true
	}
	return false
}

// Blocking reports whether the status makes the request block appointments.
// ALTERNATIVE_ACCEPTED blocks exactly like APPROVED.
func (s Status) Blocking() bool {
	return s == StatusApproved || s == StatusAlternativeAccepted
}

// ActiveStatuses are the statuses counted by the submit-time overlap guard:
// a user cannot hold two of these over intersecting date ranges.
var ActiveStatuses = []Status{
	StatusPending, StatusApproved, StatusAlternativeProposed, StatusAlternativeAccepted,
}

// AutoApproveComment is the sentinel review comment that lets a user
// self-approve a PERSONAL request, bypassing the manager guard. Personal
// calendar blocking builds on it.
const AutoApproveComment = "Auto-approved personal blocked time"

// workdayMinutes is the nominal workday used for fractional day accounting.
const workdayMinutes = 8 * 60

// Request is a staff member's time-off request, covering whole calendar
// days or, when IsPartialDay is set, a clock interval within a single day.
type Request struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	Type      Type      `json:"leave_type"`
	Status    Status    `json:"status"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	IsPartialDay bool                `json:"is_partial_day"`
	StartTime    *schedule.TimeOfDay `json:"start_time,omitempty"`
	EndTime      *schedule.TimeOfDay `json:"end_time,omitempty"`

	// TotalDays is fixed at submission: inclusive day count, or a fraction
	// of an 8-hour workday for a partial-day request.
	TotalDays float64 `json:"total_days"`

	Reason string `json:"reason,omitempty"`

	ReviewedByID   *uuid.UUID `json:"reviewed_by_id,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	ReviewComments *string    `json:"review_comments,omitempty"`

	HasAlternative         bool       `json:"has_alternative"`
	AlternativeStartDate   *time.Time `json:"alternative_start_date,omitempty"`
	AlternativeEndDate     *time.Time `json:"alternative_end_date,omitempty"`
	AlternativeComments    *string    `json:"alternative_comments,omitempty"`
	AlternativeAccepted    *bool      `json:"alternative_accepted,omitempty"`
	AlternativeRespondedAt *time.Time `json:"alternative_responded_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Request) Validate() error {
	if r.UserID == uuid.Nil {
		return apperr.Validation("user_id", "is required")
	}
	if !validTypes[r.Type] {
		return apperr.Validation("leave_type", "unknown leave type")
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return apperr.Validation("start_date", "start_date and end_date are required")
	}
	if dateOnly(r.StartDate).After(dateOnly(r.EndDate)) {
		return apperr.Validation("start_date", "must not be after end_date")
	}
	if r.IsPartialDay {
		if r.StartTime == nil || r.EndTime == nil {
			return apperr.Validation("start_time", "partial-day leave requires start_time and end_time")
		}
		if !r.StartTime.Before(*r.EndTime) {
			return apperr.Validation("start_time", "must precede end_time")
		}
		if !sameDate(r.StartDate, r.EndDate) {
			return apperr.Validation("end_date", "partial-day leave must start and end on the same date")
		}
	}
	return nil
}

// ComputeTotalDays derives the day count per the accounting rule. Call
// after Validate.
func (r *Request) ComputeTotalDays() float64 {
	if r.IsPartialDay {
		return float64(r.EndTime.Minutes()-r.StartTime.Minutes()) / float64(workdayMinutes)
	}
	days := dateOnly(r.EndDate).Sub(dateOnly(r.StartDate)).Hours()/24 + 1
	return days
}

// DatesIntersect reports whether the request's inclusive date range
// intersects [start, end].
func (r *Request) DatesIntersect(start, end time.Time) bool {
	return !dateOnly(r.StartDate).After(dateOnly(end)) && !dateOnly(r.EndDate).Before(dateOnly(start))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
