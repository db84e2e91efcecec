package leave

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dently/clinic/internal/domain/schedule"
	"github.com/dently/clinic/internal/platform/apperr"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func tod(t *testing.T, s string) *schedule.TimeOfDay {
	t.Helper()
	parsed, err := schedule.ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("ParseTimeOfDay(%q): %v", s, err)
	}
	return &parsed
}

func validRequest() *Request {
	return &Request{
		UserID:    uuid.New(),
		Type:      TypeVacation,
		StartDate: date(2024, 7, 1),
		EndDate:   date(2024, 7, 5),
	}
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(t *testing.T, r *Request)
		wantErr bool
	}{
		{"valid multi-day", func(t *testing.T, r *Request) {}, false},
		{"missing user", func(t *testing.T, r *Request) { r.UserID = uuid.Nil }, true},
		{"unknown type", func(t *testing.T, r *Request) { r.Type = "SABBATICAL" }, true},
		{"start after end", func(t *testing.T, r *Request) {
			r.StartDate = date(2024, 7, 10)
		}, true},
		{"partial day valid", func(t *testing.T, r *Request) {
			r.EndDate = r.StartDate
			r.IsPartialDay = true
			r.StartTime = tod(t, "09:00")
			r.EndTime = tod(t, "13:00")
		}, false},
		{"partial day missing times", func(t *testing.T, r *Request) {
			r.EndDate = r.StartDate
			r.IsPartialDay = true
		}, true},
		{"partial day inverted times", func(t *testing.T, r *Request) {
			r.EndDate = r.StartDate
			r.IsPartialDay = true
			r.StartTime = tod(t, "13:00")
			r.EndTime = tod(t, "09:00")
		}, true},
		{"partial day spanning dates", func(t *testing.T, r *Request) {
			r.IsPartialDay = true
			r.StartTime = tod(t, "09:00")
			r.EndTime = tod(t, "13:00")
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(t, r)
			err := r.Validate()
			if tt.wantErr && !apperr.Is(err, apperr.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestComputeTotalDays(t *testing.T) {
	r := validRequest() // July 1 to July 5 inclusive
	if got := r.ComputeTotalDays(); got != 5 {
		t.Errorf("multi-day total = %v, want 5", got)
	}

	r.EndDate = r.StartDate
	if got := r.ComputeTotalDays(); got != 1 {
		t.Errorf("single-day total = %v, want 1", got)
	}

	r.IsPartialDay = true
	r.StartTime = tod(t, "09:00")
	r.EndTime = tod(t, "13:00") // 4h of an 8h workday
	if got := r.ComputeTotalDays(); got != 0.5 {
		t.Errorf("partial-day total = %v, want 0.5", got)
	}
}

func TestStatusTerminal(t *testing.T) {
	terminal := []Status{StatusApproved, StatusDenied, StatusCancelled,
		StatusAlternativeAccepted, StatusAlternativeRejected}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []Status{StatusPending, StatusAlternativeProposed} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestStatusBlocking(t *testing.T) {
	if !StatusApproved.Blocking() || !StatusAlternativeAccepted.Blocking() {
		t.Error("APPROVED and ALTERNATIVE_ACCEPTED must block")
	}
	for _, s := range []Status{StatusPending, StatusDenied, StatusCancelled,
		StatusAlternativeProposed, StatusAlternativeRejected} {
		if s.Blocking() {
			t.Errorf("%s must not block", s)
		}
	}
}

func TestDatesIntersectInclusive(t *testing.T) {
	r := validRequest() // July 1-5
	tests := []struct {
		start, end time.Time
		want       bool
	}{
		{date(2024, 7, 5), date(2024, 7, 10), true},  // touching end day
		{date(2024, 6, 25), date(2024, 7, 1), true},  // touching start day
		{date(2024, 7, 2), date(2024, 7, 3), true},   // contained
		{date(2024, 7, 6), date(2024, 7, 10), false}, // after
		{date(2024, 6, 25), date(2024, 6, 30), false}, // before
	}
	for _, tt := range tests {
		if got := r.DatesIntersect(tt.start, tt.end); got != tt.want {
			t.Errorf("DatesIntersect(%s, %s) = %v, want %v",
				tt.start.Format("2006-01-02"), tt.end.Format("2006-01-02"), got, tt.want)
		}
	}
}
