package card

import (
	"fmt"
	"time"
)

// FirstCardSeason is the first season in which power cards can be played.
const FirstCardSeason = 2026

type Type string

const (
	TypeDriver Type = "driver"
	TypeTeam   Type = "team"
)

type Tier string

const (
	TierGold   Tier = "gold"
	TierSilver Tier = "silver"
	TierBronze Tier = "bronze"
)

// EffectType names what a card does when scored.
type EffectType string

const (
	EffectDoublePoints   EffectType = "double_points"
	EffectOvertakeBonus  EffectType = "overtake_bonus"
	EffectPoleBonus      EffectType = "pole_bonus"
	EffectShadowDriver   EffectType = "shadow_driver"
	EffectSabotage       EffectType = "sabotage"
	EffectFinishBonus    EffectType = "finish_bonus"
	EffectRookieBonus    EffectType = "rookie_bonus"
	EffectPitStopBonus   EffectType = "pit_stop_bonus"
	EffectConstructorX2  EffectType = "constructor_double"
	EffectRivalry        EffectType = "rivalry"
	EffectReliability    EffectType = "reliability"
	EffectUpgradePackage EffectType = "upgrade_package"
	EffectMystery        EffectType = "mystery"
	EffectRandom         EffectType = "random"
)

// TargetKind is what a card must be pointed at when activated.
type TargetKind string

const (
	TargetNone   TargetKind = "none"
	TargetPlayer TargetKind = "player"
	TargetDriver TargetKind = "driver"
	TargetTeam   TargetKind = "team"
)

// Definition is a static catalog entry.
type Definition struct {
	ID             string
	Name           string
	Description    string
	Type           Type
	Tier           Tier
	SlotCost       int
	EffectType     EffectType
	RequiresTarget TargetKind
	IsActive       bool
}

func (d Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("card id is required")
	}
	if d.Type != TypeDriver && d.Type != TypeTeam {
		return fmt.Errorf("card %s has unknown type %q", d.ID, d.Type)
	}
	switch d.Tier {
	case TierGold, TierSilver, TierBronze:
	default:
		return fmt.Errorf("card %s has unknown tier %q", d.ID, d.Tier)
	}
	if d.SlotCost <= 0 {
		return fmt.Errorf("card %s slot cost must be positive", d.ID)
	}
	return nil
}

// DeckEntry marks ownership of a card and whether it is in the season deck.
type DeckEntry struct {
	UserID    string
	LeagueID  string
	Season    int
	CardID    string
	CardType  Type
	Selected  bool
	UpdatedAt time.Time
}

// UsageRecord is the one allowed spend of a card in a season.
type UsageRecord struct {
	UserID    string
	LeagueID  string
	Season    int
	CardID    string
	CardType  Type
	RaceID    string
	Round     int
	CreatedAt time.Time
}

// Activation is the cards armed by one user for one race.
type Activation struct {
	ID                       string
	SelectionID              string
	UserID                   string
	LeagueID                 string
	RaceID                   string
	Season                   int
	Round                    int
	DriverCardID             string
	TeamCardID               string
	TargetPlayer             string
	TargetDriver             string
	TargetTeam               string
	MysteryTransformedCardID string
	RandomTransformedCardID  string
	SelectedAt               time.Time
	UpdatedAt                time.Time
}

// CardIDs returns the non-empty armed card ids.
func (a Activation) CardIDs() []string {
	out := make([]string, 0, 2)
	if a.DriverCardID != "" {
		out = append(out, a.DriverCardID)
	}
	if a.TeamCardID != "" {
		out = append(out, a.TeamCardID)
	}
	return out
}

// ActivationCommit is applied atomically by ActivationRepository.Commit.
type ActivationCommit struct {
	Activation      Activation
	ReleasedCardIDs []string
	Usages          []UsageRecord
}
