package postgres

import (
	"database/sql"
	"time"
)

type cardDefinitionTableModel struct {
	ID             string `db:"id"`
	Name           string `db:"name"`
	Description    string `db:"description"`
	CardType       string `db:"card_type"`
	Tier           string `db:"tier"`
	SlotCost       int    `db:"slot_cost"`
	EffectType     string `db:"effect_type"`
	RequiresTarget string `db:"requires_target"`
	IsActive       bool   `db:"is_active"`
}

type deckEntryTableModel struct {
	UserID         string    `db:"user_id"`
	LeaguePublicID string    `db:"league_public_id"`
	Season         int       `db:"season"`
	CardID         string    `db:"card_id"`
	CardType       string    `db:"card_type"`
	Selected       bool      `db:"selected"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type usageTableModel struct {
	ID             int64     `db:"id"`
	UserID         string    `db:"user_id"`
	LeaguePublicID string    `db:"league_public_id"`
	Season         int       `db:"season"`
	CardID         string    `db:"card_id"`
	CardType       string    `db:"card_type"`
	RacePublicID   string    `db:"race_public_id"`
	Round          int       `db:"round"`
	CreatedAt      time.Time `db:"created_at"`
}

type usageInsertModel struct {
	UserID         string    `db:"user_id"`
	LeaguePublicID string    `db:"league_public_id"`
	Season         int       `db:"season"`
	CardID         string    `db:"card_id"`
	CardType       string    `db:"card_type"`
	RacePublicID   string    `db:"race_public_id"`
	Round          int       `db:"round"`
	CreatedAt      time.Time `db:"created_at"`
}

type activationTableModel struct {
	ID                       int64          `db:"id"`
	PublicID                 string         `db:"public_id"`
	SelectionPublicID        string         `db:"selection_public_id"`
	UserID                   string         `db:"user_id"`
	LeaguePublicID           string         `db:"league_public_id"`
	RacePublicID             string         `db:"race_public_id"`
	Season                   int            `db:"season"`
	Round                    int            `db:"round"`
	DriverCardID             sql.NullString `db:"driver_card_id"`
	TeamCardID               sql.NullString `db:"team_card_id"`
	TargetPlayer             string         `db:"target_player"`
	TargetDriver             string         `db:"target_driver"`
	TargetTeam               string         `db:"target_team"`
	MysteryTransformedCardID string         `db:"mystery_transformed_card_id"`
	RandomTransformedCardID  string         `db:"random_transformed_card_id"`
	SelectedAt               time.Time      `db:"selected_at"`
	UpdatedAt                time.Time      `db:"updated_at"`
}

type activationInsertModel struct {
	PublicID                 string         `db:"public_id"`
	SelectionPublicID        string         `db:"selection_public_id"`
	UserID                   string         `db:"user_id"`
	LeaguePublicID           string         `db:"league_public_id"`
	RacePublicID             string         `db:"race_public_id"`
	Season                   int            `db:"season"`
	Round                    int            `db:"round"`
	DriverCardID             sql.NullString `db:"driver_card_id"`
	TeamCardID               sql.NullString `db:"team_card_id"`
	TargetPlayer             string         `db:"target_player"`
	TargetDriver             string         `db:"target_driver"`
	TargetTeam               string         `db:"target_team"`
	MysteryTransformedCardID string         `db:"mystery_transformed_card_id"`
	RandomTransformedCardID  string         `db:"random_transformed_card_id"`
	SelectedAt               time.Time      `db:"selected_at"`
	UpdatedAt                time.Time      `db:"updated_at"`
}
