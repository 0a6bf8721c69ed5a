package race

import (
	"sort"
	"time"
)

const (
	SelectionLockMarginMinutes = 5
	CardLockMarginMinutes      = 5
)

// EffectiveQualifying returns sprint qualifying on sprint weekends that have
// one scheduled, regular qualifying otherwise.
func EffectiveQualifying(t Timing) time.Time {
	if t.IsSprintWeekend && t.SprintQualifyingStart != nil && !t.SprintQualifyingStart.IsZero() {
		return *t.SprintQualifyingStart
	}
	return t.QualifyingStart
}

// IsLocked reports whether now falls at or after the effective qualifying
// time minus the margin. Once true for a timing and margin it stays true for
// every later now.
func IsLocked(now time.Time, t Timing, marginMinutes int) bool {
	if marginMinutes < 0 {
		marginMinutes = 0
	}
	lockAt := EffectiveQualifying(t).Add(-time.Duration(marginMinutes) * time.Minute)
	return !now.Before(lockAt)
}

// LockTime is the instant IsLocked flips for the given margin.
func LockTime(t Timing, marginMinutes int) time.Time {
	if marginMinutes < 0 {
		marginMinutes = 0
	}
	return EffectiveQualifying(t).Add(-time.Duration(marginMinutes) * time.Minute)
}

// NextRace picks the race whose effective qualifying is the soonest one
// strictly after now. Ties go to the earlier qualifying start, then the
// earlier sprint qualifying start.
func NextRace(races []Race, now time.Time) (Race, bool) {
	candidates := make([]Race, 0, len(races))
	for _, r := range races {
		if r.EffectiveQualifying().After(now) {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return Race{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		ea, eb := a.EffectiveQualifying(), b.EffectiveQualifying()
		if !ea.Equal(eb) {
			return ea.Before(eb)
		}
		if !a.QualifyingStart.Equal(b.QualifyingStart) {
			return a.QualifyingStart.Before(b.QualifyingStart)
		}
		return sprintQualifyingOrMax(a).Before(sprintQualifyingOrMax(b))
	})

	return candidates[0], true
}

// FirstRace returns the lowest round of the calendar.
func FirstRace(races []Race) (Race, bool) {
	if len(races) == 0 {
		return Race{}, false
	}
	first := races[0]
	for _, r := range races[1:] {
		if r.Round < first.Round {
			first = r
		}
	}
	return first, true
}

// DeckLockTime is the season-long deck lock: the first race's effective
// qualifying. The deck never reopens after it.
func DeckLockTime(races []Race) (time.Time, bool) {
	first, ok := FirstRace(races)
	if !ok {
		return time.Time{}, false
	}
	return first.EffectiveQualifying(), true
}

func sprintQualifyingOrMax(r Race) time.Time {
	if r.SprintQualifyingStart == nil || r.SprintQualifyingStart.IsZero() {
		return time.Unix(1<<62, 0)
	}
	return *r.SprintQualifyingStart
}
