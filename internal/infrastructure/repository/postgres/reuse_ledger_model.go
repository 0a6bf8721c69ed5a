package postgres

import "time"

type reuseLedgerTableModel struct {
	UserID         string    `db:"user_id"`
	LeaguePublicID string    `db:"league_public_id"`
	DriverCycles   string    `db:"driver_cycles"`
	TeamCycles     string    `db:"team_cycles"`
	Version        int64     `db:"version"`
	UpdatedAt      time.Time `db:"updated_at"`
}
