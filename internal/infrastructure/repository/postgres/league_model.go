package postgres

import "time"

type leagueTableModel struct {
	ID          int64      `db:"id"`
	PublicID    string     `db:"public_id"`
	Name        string     `db:"name"`
	Season      int        `db:"season"`
	OwnerUserID string     `db:"owner_user_id"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

type leagueMemberTableModel struct {
	ID             int64      `db:"id"`
	LeaguePublicID string     `db:"league_public_id"`
	UserID         string     `db:"user_id"`
	Role           string     `db:"role"`
	CreatedAt      time.Time  `db:"created_at"`
	DeletedAt      *time.Time `db:"deleted_at"`
}
