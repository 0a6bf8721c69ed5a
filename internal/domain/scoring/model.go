package scoring

import "time"

// DriverResult is one classified finisher.
type DriverResult struct {
	Driver         string
	Team           string
	Position       int
	GridPosition   int
	Finished       bool
	FastestLap     bool
	PitStopSeconds float64
}

// RaceResult is the classified outcome of a race, written by the results importer.
type RaceResult struct {
	RaceID     string
	Season     int
	Round      int
	Results    []DriverResult
	ImportedAt time.Time
}
