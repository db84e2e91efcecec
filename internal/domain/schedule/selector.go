package schedule

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

var weekdayNames = map[string]time.Weekday{
	"SUNDAY":    time.Sunday,
	"MONDAY":    time.Monday,
	"TUESDAY":   time.Tuesday,
	"WEDNESDAY": time.Wednesday,
	"THURSDAY":  time.Thursday,
	"FRIDAY":    time.Friday,
	"SATURDAY":  time.Saturday,
}

// ParseWeekday parses a weekday name such as "MONDAY" (case-insensitive).
func ParseWeekday(s string) (time.Weekday, error) {
	w, ok := weekdayNames[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("invalid weekday: %q", s)
	}
	return w, nil
}

// WeekdayName returns the canonical upper-case name of a weekday.
func WeekdayName(w time.Weekday) string {
	return strings.ToUpper(w.String())
}

// DateSelector says which days a shift applies to: either a single
// specific date, or every week on a given weekday. Exactly one of the two
// holds, which the constructors enforce; the zero value is invalid.
type DateSelector struct {
	date    *time.Time
	weekday *time.Weekday
}

// OnDate returns a selector matching only the given calendar date.
func OnDate(d time.Time) DateSelector {
	day := normalizeDate(d)
	return DateSelector{date: &day}
}

// EveryWeek returns a selector matching every occurrence of the weekday.
func EveryWeek(w time.Weekday) DateSelector {
	return DateSelector{weekday: &w}
}

// IsDated reports whether the selector targets a specific date.
func (s DateSelector) IsDated() bool { return s.date != nil }

// Specific returns the specific date, if the selector is dated.
func (s DateSelector) Specific() (time.Time, bool) {
	if s.date == nil {
		return time.Time{}, false
	}
	return *s.date, true
}

// Weekday returns the recurring weekday, if the selector is weekly.
func (s DateSelector) Weekday() (time.Weekday, bool) {
	if s.weekday == nil {
		return 0, false
	}
	return *s.weekday, true
}

// Matches reports whether the selector applies to the target date.
// A dated selector matches only its exact date; it never falls back to
// matching by weekday.
func (s DateSelector) Matches(target time.Time) bool {
	if s.date != nil {
		return sameDate(*s.date, target)
	}
	if s.weekday != nil {
		return target.Weekday() == *s.weekday
	}
	return false
}

func (s DateSelector) Validate() error {
	if s.date == nil && s.weekday == nil {
		return fmt.Errorf("date selector requires a specific date or a weekday")
	}
	return nil
}

func (s DateSelector) String() string {
	if s.date != nil {
		return s.date.Format("2006-01-02")
	}
	if s.weekday != nil {
		return WeekdayName(*s.weekday)
	}
	return "<empty>"
}

type selectorJSON struct {
	SpecificDate *string `json:"specific_date,omitempty"`
	DayOfWeek    *string `json:"day_of_week,omitempty"`
}

func (s DateSelector) MarshalJSON() ([]byte, error) {
	var out selectorJSON
	if s.date != nil {
		d := s.date.Format("2006-01-02")
		out.SpecificDate = &d
	}
	if s.weekday != nil {
		w := WeekdayName(*s.weekday)
		out.DayOfWeek = &w
	}
	return json.Marshal(out)
}

func (s *DateSelector) UnmarshalJSON(data []byte) error {
	var in selectorJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.SpecificDate != nil && in.DayOfWeek != nil {
		return fmt.Errorf("date selector cannot have both specific_date and day_of_week")
	}
	switch {
	case in.SpecificDate != nil:
		d, err := time.Parse("2006-01-02", *in.SpecificDate)
		if err != nil {
			return fmt.Errorf("invalid specific_date: %w", err)
		}
		*s = OnDate(d)
	case in.DayOfWeek != nil:
		w, err := ParseWeekday(*in.DayOfWeek)
		if err != nil {
			return err
		}
		*s = EveryWeek(w)
	default:
		return fmt.Errorf("date selector requires specific_date or day_of_week")
	}
	return nil
}

func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
