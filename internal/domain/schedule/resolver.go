package schedule

import (
	"sort"
	"time"
)

// ResolveRoomSchedule computes the effective shifts for a room on a single
// date from the room's full record set.
//
// Resolution order:
//  1. Keep records whose selector matches the date.
//  2. Date-specific records outrank weekly-recurring ones: any weekly
//     record overlapping a dated record's interval is dropped, regardless
//     of priority.
//  3. An override record suppresses every overlapping non-override record
//     in full. Records are never split around an override.
//
// Overlapping non-override records coexist in the result; the conflict is
// surfaced at creation time instead.
func ResolveRoomSchedule(records []*Shift, targetDate time.Time) []*Shift {
	var dated, weekly []*Shift
	for _, r := range records {
		if !r.Selector.Matches(targetDate) {
			continue
		}
		if r.Selector.IsDated() {
			dated = append(dated, r)
		} else {
			weekly = append(weekly, r)
		}
	}

	kept := make([]*Shift, 0, len(dated)+len(weekly))
	kept = append(kept, dated...)
	for _, w := range weekly {
		if !overlapsAny(w, dated) {
			kept = append(kept, w)
		}
	}

	var overrides []*Shift
	for _, r := range kept {
		if r.IsOverride {
			overrides = append(overrides, r)
		}
	}

	resolved := make([]*Shift, 0, len(kept))
	for _, r := range kept {
		if !r.IsOverride && overlapsAny(r, overrides) {
			continue
		}
		resolved = append(resolved, r)
	}

	sort.SliceStable(resolved, func(i, j int) bool {
		if resolved[i].StartTime.Minutes() != resolved[j].StartTime.Minutes() {
			return resolved[i].StartTime.Before(resolved[j].StartTime)
		}
		return resolved[i].Priority > resolved[j].Priority
	})
	return resolved
}

func overlapsAny(s *Shift, others []*Shift) bool {
	for _, o := range others {
		if o.ID == s.ID {
			continue
		}
		if Overlaps(s.StartTime, s.EndTime, o.StartTime, o.EndTime) {
			return true
		}
	}
	return false
}

// DetectConflicts compares a candidate shift against existing records of
// the same room and reports clock-interval overlaps within the candidate's
// selector class. Dated candidates are compared only against records on
// the same date; weekly candidates only against weekly records on the same
// weekday. Dated records never count toward a recurring candidate's
// conflict set.
func DetectConflicts(candidate *Shift, existing []*Shift) []Conflict {
	var conflicts []Conflict
	for _, e := range existing {
		if e.ID == candidate.ID {
			continue
		}
		if e.ScheduleID != candidate.ScheduleID || e.RoomNumber != candidate.RoomNumber {
			continue
		}
		if !sameSelectorClass(candidate.Selector, e.Selector) {
			continue
		}
		if !Overlaps(candidate.StartTime, candidate.EndTime, e.StartTime, e.EndTime) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			ShiftID:      candidate.ID,
			OtherShiftID: e.ID,
			Start:        laterOf(candidate.StartTime, e.StartTime),
			End:          earlierOf(candidate.EndTime, e.EndTime),
		})
	}
	return conflicts
}

func sameSelectorClass(a, b DateSelector) bool {
	if da, ok := a.Specific(); ok {
		db, ok := b.Specific()
		return ok && sameDate(da, db)
	}
	if wa, ok := a.Weekday(); ok {
		wb, ok := b.Weekday()
		return ok && wa == wb
	}
	return false
}

func laterOf(a, b TimeOfDay) TimeOfDay {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b TimeOfDay) TimeOfDay {
	if a.Before(b) {
		return a
	}
	return b
}
