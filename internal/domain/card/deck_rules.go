package card

import (
	"fmt"
)

// DeckRules are the season deck composition quotas.
type DeckRules struct {
	DriverSlots   int
	TeamSlots     int
	MaxGoldDriver int
	MaxGoldTeam   int
}

func DefaultDeckRules() DeckRules {
	return DeckRules{
		DriverSlots:   12,
		TeamSlots:     10,
		MaxGoldDriver: 2,
		MaxGoldTeam:   1,
	}
}

// DeckUsage summarises a deck against the rules.
type DeckUsage struct {
	DriverSlotsUsed int
	TeamSlotsUsed   int
	GoldDriverCards int
	GoldTeamCards   int
}

func (r DeckRules) Usage(driverCards, teamCards []Definition) DeckUsage {
	var u DeckUsage
	for _, c := range driverCards {
		u.DriverSlotsUsed += c.SlotCost
		if c.Tier == TierGold {
			u.GoldDriverCards++
		}
	}
	for _, c := range teamCards {
		u.TeamSlotsUsed += c.SlotCost
		if c.Tier == TierGold {
			u.GoldTeamCards++
		}
	}
	return u
}

// ValidateDeck checks a proposed deck against the catalog and returns every
// violation at once as a *DeckViolationError.
func ValidateDeck(rules DeckRules, catalog map[string]Definition, driverIDs, teamIDs []string) ([]Definition, []Definition, error) {
	var violations []error

	driverCards, v := resolveList(catalog, TypeDriver, driverIDs)
	violations = append(violations, v...)
	teamCards, v := resolveList(catalog, TypeTeam, teamIDs)
	violations = append(violations, v...)

	usage := rules.Usage(driverCards, teamCards)
	if usage.DriverSlotsUsed != rules.DriverSlots {
		violations = append(violations, fmt.Errorf("%w: driver cards use %d slots, need exactly %d", ErrSlotMismatch, usage.DriverSlotsUsed, rules.DriverSlots))
	}
	if usage.TeamSlotsUsed != rules.TeamSlots {
		violations = append(violations, fmt.Errorf("%w: team cards use %d slots, need exactly %d", ErrSlotMismatch, usage.TeamSlotsUsed, rules.TeamSlots))
	}
	if usage.GoldDriverCards > rules.MaxGoldDriver {
		violations = append(violations, fmt.Errorf("%w: %d gold driver cards, max %d", ErrTierLimitExceeded, usage.GoldDriverCards, rules.MaxGoldDriver))
	}
	if usage.GoldTeamCards > rules.MaxGoldTeam {
		violations = append(violations, fmt.Errorf("%w: %d gold team cards, max %d", ErrTierLimitExceeded, usage.GoldTeamCards, rules.MaxGoldTeam))
	}

	if len(violations) > 0 {
		return nil, nil, &DeckViolationError{Violations: violations}
	}
	return driverCards, teamCards, nil
}

func resolveList(catalog map[string]Definition, want Type, ids []string) ([]Definition, []error) {
	var violations []error
	seen := make(map[string]struct{}, len(ids))
	out := make([]Definition, 0, len(ids))

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			violations = append(violations, fmt.Errorf("%w: %s listed more than once", ErrDuplicateCard, id))
			continue
		}
		seen[id] = struct{}{}

		def, ok := catalog[id]
		switch {
		case !ok:
			violations = append(violations, fmt.Errorf("%w: %s does not exist", ErrInvalidCard, id))
			continue
		case !def.IsActive:
			violations = append(violations, fmt.Errorf("%w: %s is not active", ErrInvalidCard, id))
			continue
		case def.Type != want:
			violations = append(violations, fmt.Errorf("%w: %s is a %s card, expected %s", ErrInvalidCard, id, def.Type, want))
			continue
		}
		out = append(out, def)
	}
	return out, violations
}
