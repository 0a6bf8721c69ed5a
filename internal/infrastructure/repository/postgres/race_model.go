package postgres

import (
	"database/sql"
	"time"
)

type raceTableModel struct {
	ID                    int64        `db:"id"`
	PublicID              string       `db:"public_id"`
	Season                int          `db:"season"`
	Round                 int          `db:"round"`
	Name                  string       `db:"name"`
	QualifyingStart       time.Time    `db:"qualifying_start"`
	SprintQualifyingStart sql.NullTime `db:"sprint_qualifying_start"`
	RaceStart             time.Time    `db:"race_start"`
	IsSprintWeekend       bool         `db:"is_sprint_weekend"`
	CreatedAt             time.Time    `db:"created_at"`
	UpdatedAt             time.Time    `db:"updated_at"`
}

type raceInsertModel struct {
	PublicID              string       `db:"public_id"`
	Season                int          `db:"season"`
	Round                 int          `db:"round"`
	Name                  string       `db:"name"`
	QualifyingStart       time.Time    `db:"qualifying_start"`
	SprintQualifyingStart sql.NullTime `db:"sprint_qualifying_start"`
	RaceStart             time.Time    `db:"race_start"`
	IsSprintWeekend       bool         `db:"is_sprint_weekend"`
}
