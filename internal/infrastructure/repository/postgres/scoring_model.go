package postgres

import "time"

type raceResultTableModel struct {
	Season       int       `db:"season"`
	Round        int       `db:"round"`
	RacePublicID string    `db:"race_public_id"`
	Results      string    `db:"results"`
	ImportedAt   time.Time `db:"imported_at"`
}

type driverResultDocument struct {
	Driver         string  `json:"driver"`
	Team           string  `json:"team"`
	Position       int     `json:"position"`
	GridPosition   int     `json:"grid_position"`
	Finished       bool    `json:"finished"`
	FastestLap     bool    `json:"fastest_lap,omitempty"`
	PitStopSeconds float64 `json:"pit_stop_seconds,omitempty"`
}
