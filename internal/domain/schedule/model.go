package schedule

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dently/clinic/internal/platform/apperr"
)

// ClinicSchedule groups the shift plan of one practice location.
type ClinicSchedule struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (cs *ClinicSchedule) Validate() error {
	if cs.Name == "" {
		return apperr.Validation("name", "is required")
	}
	return nil
}

// Shift is one staffed block in a treatment room. Weekly shifts recur on a
// weekday; dated shifts apply to a single calendar date and take precedence
// over the recurring pattern. A shift with IsUnavailable set marks the room
// closed for the matched day instead of staffing it.
type Shift struct {
	ID                 uuid.UUID    `json:"id"`
	ScheduleID         uuid.UUID    `json:"schedule_id"`
	RoomNumber         int          `json:"room_number"`
	PractitionerID     uuid.UUID    `json:"practitioner_id"`
	SidePractitionerID *uuid.UUID   `json:"side_practitioner_id,omitempty"`
	StartTime          TimeOfDay    `json:"start_time"`
	EndTime            TimeOfDay    `json:"end_time"`
	Selector           DateSelector `json:"selector"`
	Priority           int          `json:"priority"`
	IsOverride         bool         `json:"is_override"`
	IsUnavailable      bool         `json:"is_unavailable"`
	Reason             *string      `json:"reason,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

func (s *Shift) Validate() error {
	if s.ScheduleID == uuid.Nil {
		return apperr.Validation("schedule_id", "is required")
	}
	if s.RoomNumber < 1 {
		return apperr.Validation("room_number", "must be at least 1")
	}
	if !s.StartTime.Before(s.EndTime) {
		return apperr.Validation("start_time", "must precede end_time")
	}
	if err := s.Selector.Validate(); err != nil {
		return apperr.Validation("selector", err.Error())
	}
	if s.IsUnavailable {
		if s.Reason == nil || *s.Reason == "" {
			return apperr.Validation("reason", "is required for unavailability")
		}
	} else if s.PractitionerID == uuid.Nil {
		return apperr.Validation("practitioner_id", "is required")
	}
	return nil
}

// Conflict describes two shifts staffed over the same clock interval on the
// same days. Conflicts are advisory: creation proceeds and the conflict is
// returned to the caller and logged.
type Conflict struct {
	ShiftID      uuid.UUID `json:"shift_id"`
	OtherShiftID uuid.UUID `json:"other_shift_id"`
	Start        TimeOfDay `json:"start_time"`
	End          TimeOfDay `json:"end_time"`
}

// WeekView buckets a room's weekly-recurring shifts by weekday, each day
// sorted by start time. Days is indexed by time.Weekday (Sunday = 0).
type WeekView struct {
	Days [7][]*Shift `json:"days"`
}

// WeekSummary aggregates a WeekView for the week editor header.
type WeekSummary struct {
	TotalShifts           int `json:"total_shifts"`
	DaysCovered           int `json:"days_covered"`
	OverrideCount         int `json:"override_count"`
	DistinctPractitioners int `json:"distinct_practitioners"`
}

// BuildWeekView collects the weekly-recurring shifts into per-weekday
// buckets. Dated shifts are one-off deviations and stay out of the view.
func BuildWeekView(shifts []*Shift) *WeekView {
	var view WeekView
	for _, s := range shifts {
		w, ok := s.Selector.Weekday()
		if !ok {
			continue
		}
		view.Days[int(w)] = append(view.Days[int(w)], s)
	}
	for i := range view.Days {
		day := view.Days[i]
		sort.SliceStable(day, func(a, b int) bool {
			return day[a].StartTime.Before(day[b].StartTime)
		})
	}
	return &view
}

// Summary computes week-level statistics. Side practitioners count toward
// the distinct practitioner total.
func (v *WeekView) Summary() WeekSummary {
	var sum WeekSummary
	practitioners := make(map[uuid.UUID]bool)
	for _, day := range v.Days {
		if len(day) > 0 {
			sum.DaysCovered++
		}
		for _, s := range day {
			sum.TotalShifts++
			if s.IsOverride {
				sum.OverrideCount++
			}
			if s.PractitionerID != uuid.Nil {
				practitioners[s.PractitionerID] = true
			}
			if s.SidePractitionerID != nil && *s.SidePractitionerID != uuid.Nil {
				practitioners[*s.SidePractitionerID] = true
			}
		}
	}
	sum.DistinctPractitioners = len(practitioners)
	return sum
}
