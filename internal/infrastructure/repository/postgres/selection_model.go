package postgres

import (
	"database/sql"
	"time"
)

type selectionTableModel struct {
	ID               int64          `db:"id"`
	PublicID         string         `db:"public_id"`
	UserID           string         `db:"user_id"`
	LeaguePublicID   string         `db:"league_public_id"`
	RacePublicID     string         `db:"race_public_id"`
	Season           int            `db:"season"`
	Round            int            `db:"round"`
	MainDriver       string         `db:"main_driver"`
	ReserveDriver    string         `db:"reserve_driver"`
	Team             string         `db:"team"`
	Status           string         `db:"status"`
	Points           int            `db:"points"`
	PointBreakdown   string         `db:"point_breakdown"`
	AssignedByUserID sql.NullString `db:"assigned_by_user_id"`
	AssignedAt       sql.NullTime   `db:"assigned_at"`
	Notes            string         `db:"notes"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

type selectionInsertModel struct {
	PublicID         string         `db:"public_id"`
	UserID           string         `db:"user_id"`
	LeaguePublicID   string         `db:"league_public_id"`
	RacePublicID     string         `db:"race_public_id"`
	Season           int            `db:"season"`
	Round            int            `db:"round"`
	MainDriver       string         `db:"main_driver"`
	ReserveDriver    string         `db:"reserve_driver"`
	Team             string         `db:"team"`
	Status           string         `db:"status"`
	Points           int            `db:"points"`
	PointBreakdown   string         `db:"point_breakdown"`
	AssignedByUserID sql.NullString `db:"assigned_by_user_id"`
	AssignedAt       sql.NullTime   `db:"assigned_at"`
	Notes            string         `db:"notes"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

type pointBreakdownDocument struct {
	MainDriver    int `json:"main_driver"`
	ReserveDriver int `json:"reserve_driver"`
	Team          int `json:"team"`
	CardBonus     int `json:"card_bonus"`
	Total         int `json:"total"`
}
