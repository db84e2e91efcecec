package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

var (
	testScheduleID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testMonday     = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
)

func newShift(t *testing.T, start, end string, sel DateSelector, opts ...func(*Shift)) *Shift {
	t.Helper()
	s := &Shift{
		ID:             uuid.New(),
		ScheduleID:     testScheduleID,
		RoomNumber:     1,
		PractitionerID: uuid.New(),
		StartTime:      mustTime(t, start),
		EndTime:        mustTime(t, end),
		Selector:       sel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func asOverride(s *Shift)          { s.IsOverride = true }
func withPriority(p int) func(*Shift) {
	return func(s *Shift) { s.Priority = p }
}

func ids(shifts []*Shift) []uuid.UUID {
	out := make([]uuid.UUID, len(shifts))
	for i, s := range shifts {
		out[i] = s.ID
	}
	return out
}

func TestResolveOverrideSuppressesWholeRecord(t *testing.T) {
	recurring := newShift(t, "09:00", "12:00", EveryWeek(time.Monday))
	override := newShift(t, "10:00", "11:00", EveryWeek(time.Monday), asOverride)

	got := ResolveRoomSchedule([]*Shift{recurring, override}, testMonday)
	if len(got) != 1 || got[0].ID != override.ID {
		t.Fatalf("expected only the override, got %v", ids(got))
	}
}

func TestResolveNonOverridesCoexist(t *testing.T) {
	a := newShift(t, "09:00", "12:00", EveryWeek(time.Monday))
	b := newShift(t, "11:00", "13:00", EveryWeek(time.Monday))

	got := ResolveRoomSchedule([]*Shift{a, b}, testMonday)
	if len(got) != 2 {
		t.Fatalf("expected both overlapping non-overrides, got %v", ids(got))
	}
}

func TestResolveDatePrecedenceIgnoresPriority(t *testing.T) {
	weekly := newShift(t, "09:00", "12:00", EveryWeek(time.Monday), withPriority(100))
	dated := newShift(t, "10:00", "11:00", OnDate(testMonday), withPriority(0))

	got := ResolveRoomSchedule([]*Shift{weekly, dated}, testMonday)
	if len(got) != 1 || got[0].ID != dated.ID {
		t.Fatalf("dated shift must outrank weekly regardless of priority, got %v", ids(got))
	}
}

func TestResolveWeeklySurvivesDisjointDated(t *testing.T) {
	weekly := newShift(t, "09:00", "10:00", EveryWeek(time.Monday))
	dated := newShift(t, "14:00", "16:00", OnDate(testMonday))

	got := ResolveRoomSchedule([]*Shift{weekly, dated}, testMonday)
	if len(got) != 2 {
		t.Fatalf("disjoint weekly and dated shifts should coexist, got %v", ids(got))
	}
	if got[0].ID != weekly.ID || got[1].ID != dated.ID {
		t.Errorf("expected start-time order [weekly, dated], got %v", ids(got))
	}
}

func TestResolveBothOverridesCoexist(t *testing.T) {
	a := newShift(t, "09:00", "12:00", EveryWeek(time.Monday), asOverride)
	b := newShift(t, "10:00", "13:00", EveryWeek(time.Monday), asOverride)

	got := ResolveRoomSchedule([]*Shift{a, b}, testMonday)
	if len(got) != 2 {
		t.Fatalf("overlapping overrides both survive, got %v", ids(got))
	}
}

func TestResolveSkipsNonMatchingSelectors(t *testing.T) {
	tuesday := newShift(t, "09:00", "12:00", EveryWeek(time.Tuesday))
	otherDate := newShift(t, "09:00", "12:00", OnDate(testMonday.AddDate(0, 0, 7)))

	if got := ResolveRoomSchedule([]*Shift{tuesday, otherDate}, testMonday); len(got) != 0 {
		t.Fatalf("expected empty resolution, got %v", ids(got))
	}
}

func TestResolveSortsByStartThenPriority(t *testing.T) {
	late := newShift(t, "13:00", "15:00", EveryWeek(time.Monday))
	earlyLow := newShift(t, "09:00", "10:00", EveryWeek(time.Monday), withPriority(1))
	earlyHigh := newShift(t, "09:00", "11:00", EveryWeek(time.Monday), withPriority(5))

	got := ResolveRoomSchedule([]*Shift{late, earlyLow, earlyHigh}, testMonday)
	want := []uuid.UUID{earlyHigh.ID, earlyLow.ID, late.ID}
	if len(got) != 3 {
		t.Fatalf("expected 3 shifts, got %d", len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: got %v, want %v", i, got[i].ID, id)
		}
	}
}

func TestDetectConflictsSameClassOnly(t *testing.T) {
	candidate := newShift(t, "09:00", "12:00", EveryWeek(time.Monday))
	weeklySame := newShift(t, "11:00", "13:00", EveryWeek(time.Monday))
	weeklyOther := newShift(t, "11:00", "13:00", EveryWeek(time.Tuesday))
	datedMonday := newShift(t, "09:00", "12:00", OnDate(testMonday))

	conflicts := DetectConflicts(candidate, []*Shift{weeklySame, weeklyOther, datedMonday})
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict (weekly vs weekly same weekday), got %d", len(conflicts))
	}
	c := conflicts[0]
	if c.OtherShiftID != weeklySame.ID {
		t.Errorf("conflict against %v, want %v", c.OtherShiftID, weeklySame.ID)
	}
	if c.Start.String() != "11:00" || c.End.String() != "12:00" {
		t.Errorf("conflict interval = %s-%s, want 11:00-12:00", c.Start, c.End)
	}
}

func TestDetectConflictsDatedAgainstSameDate(t *testing.T) {
	candidate := newShift(t, "09:00", "12:00", OnDate(testMonday))
	sameDay := newShift(t, "10:00", "11:00", OnDate(testMonday))
	otherDay := newShift(t, "10:00", "11:00", OnDate(testMonday.AddDate(0, 0, 1)))

	conflicts := DetectConflicts(candidate, []*Shift{sameDay, otherDay})
	if len(conflicts) != 1 || conflicts[0].OtherShiftID != sameDay.ID {
		t.Fatalf("expected single conflict with same-date record, got %+v", conflicts)
	}
}

func TestDetectConflictsExcludesSelfAndOtherRooms(t *testing.T) {
	candidate := newShift(t, "09:00", "12:00", EveryWeek(time.Monday))
	otherRoom := newShift(t, "09:00", "12:00", EveryWeek(time.Monday))
	otherRoom.RoomNumber = 2

	if got := DetectConflicts(candidate, []*Shift{candidate, otherRoom}); len(got) != 0 {
		t.Fatalf("expected no conflicts, got %+v", got)
	}
}

func TestBuildWeekViewAndSummary(t *testing.T) {
	side := uuid.New()
	shared := uuid.New()

	monEarly := newShift(t, "13:00", "17:00", EveryWeek(time.Monday))
	monLate := newShift(t, "08:00", "12:00", EveryWeek(time.Monday), asOverride)
	monLate.PractitionerID = shared
	fri := newShift(t, "09:00", "12:00", EveryWeek(time.Friday))
	fri.PractitionerID = shared
	fri.SidePractitionerID = &side
	dated := newShift(t, "09:00", "12:00", OnDate(testMonday))

	view := BuildWeekView([]*Shift{monEarly, monLate, fri, dated})

	mon := view.Days[int(time.Monday)]
	if len(mon) != 2 {
		t.Fatalf("expected 2 Monday shifts, got %d", len(mon))
	}
	if mon[0].ID != monLate.ID {
		t.Error("Monday shifts not sorted by start time")
	}
	if len(view.Days[int(time.Friday)]) != 1 {
		t.Error("expected 1 Friday shift")
	}

	sum := view.Summary()
	if sum.TotalShifts != 3 {
		t.Errorf("TotalShifts = %d, want 3 (dated shift excluded)", sum.TotalShifts)
	}
	if sum.DaysCovered != 2 {
		t.Errorf("DaysCovered = %d, want 2", sum.DaysCovered)
	}
	if sum.OverrideCount != 1 {
		t.Errorf("OverrideCount = %d, want 1", sum.OverrideCount)
	}
	// monEarly's practitioner + shared + side = 3 distinct
	if sum.DistinctPractitioners != 3 {
		t.Errorf("DistinctPractitioners = %d, want 3", sum.DistinctPractitioners)
	}
}
