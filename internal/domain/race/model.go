package race

import (
	"fmt"
	"time"
)

// Race is one round of a season calendar. Its identity is (Season, Round);
// ID is a storage key that can change when a calendar is regenerated.
type Race struct {
	ID                    string
	Season                int
	Round                 int
	Name                  string
	QualifyingStart       time.Time
	SprintQualifyingStart *time.Time
	RaceStart             time.Time
	IsSprintWeekend       bool
}

// Timing is the subset of a race the lock clock needs.
type Timing struct {
	QualifyingStart       time.Time
	SprintQualifyingStart *time.Time
	RaceStart             time.Time
	IsSprintWeekend       bool
}

func (r Race) Timing() Timing {
	return Timing{
		QualifyingStart:       r.QualifyingStart,
		SprintQualifyingStart: r.SprintQualifyingStart,
		RaceStart:             r.RaceStart,
		IsSprintWeekend:       r.IsSprintWeekend,
	}
}

func (r Race) EffectiveQualifying() time.Time {
	return EffectiveQualifying(r.Timing())
}

func (r Race) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("race id is required")
	}
	if r.Season <= 0 {
		return fmt.Errorf("race season must be positive")
	}
	if r.Round <= 0 {
		return fmt.Errorf("race round must be positive")
	}
	if r.QualifyingStart.IsZero() {
		return fmt.Errorf("race qualifying start is required")
	}
	if r.RaceStart.IsZero() {
		return fmt.Errorf("race start is required")
	}
	if r.RaceStart.Before(r.QualifyingStart) {
		return fmt.Errorf("race start %s is before qualifying %s", r.RaceStart, r.QualifyingStart)
	}

	return nil
}
