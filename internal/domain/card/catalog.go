package card

// DefaultCatalog is the card set shipped with the game.
func DefaultCatalog() []Definition {
	return []Definition{
		{ID: "drv-double-points", Name: "Double Points", Description: "Main driver scores double.", Type: TypeDriver, Tier: TierGold, SlotCost: 4, EffectType: EffectDoublePoints, RequiresTarget: TargetNone, IsActive: true},
		{ID: "drv-overtake-king", Name: "Overtake King", Description: "Bonus per position gained.", Type: TypeDriver, Tier: TierGold, SlotCost: 4, EffectType: EffectOvertakeBonus, RequiresTarget: TargetNone, IsActive: true},
		{ID: "drv-pole-hunter", Name: "Pole Hunter", Description: "Bonus if the main driver takes pole.", Type: TypeDriver, Tier: TierGold, SlotCost: 4, EffectType: EffectPoleBonus, RequiresTarget: TargetNone, IsActive: true},
		{ID: "drv-mystery", Name: "Mystery Card", Description: "Turns into a random driver card when played.", Type: TypeDriver, Tier: TierSilver, SlotCost: 3, EffectType: EffectMystery, RequiresTarget: TargetNone, IsActive: true},
		{ID: "drv-shadow", Name: "Shadow Driver", Description: "Score a second driver of your choice.", Type: TypeDriver, Tier: TierSilver, SlotCost: 3, EffectType: EffectShadowDriver, RequiresTarget: TargetDriver, IsActive: true},
		{ID: "drv-saboteur", Name: "Saboteur", Description: "Halve another player's driver points.", Type: TypeDriver, Tier: TierSilver, SlotCost: 3, EffectType: EffectSabotage, RequiresTarget: TargetPlayer, IsActive: true},
		{ID: "drv-safe-hands", Name: "Safe Hands", Description: "Bonus when the main driver finishes.", Type: TypeDriver, Tier: TierBronze, SlotCost: 2, EffectType: EffectFinishBonus, RequiresTarget: TargetNone, IsActive: true},
		{ID: "drv-rookie-boost", Name: "Rookie Boost", Description: "Bonus for a rookie main driver.", Type: TypeDriver, Tier: TierBronze, SlotCost: 2, EffectType: EffectRookieBonus, RequiresTarget: TargetNone, IsActive: true},
		{ID: "drv-pit-whisper", Name: "Pit Whisper", Description: "Small bonus for the reserve driver.", Type: TypeDriver, Tier: TierBronze, SlotCost: 1, EffectType: EffectPitStopBonus, RequiresTarget: TargetNone, IsActive: true},

		{ID: "team-constructor-surge", Name: "Constructor Surge", Description: "Team scores double.", Type: TypeTeam, Tier: TierGold, SlotCost: 4, EffectType: EffectConstructorX2, RequiresTarget: TargetNone, IsActive: true},
		{ID: "team-random", Name: "Random Card", Description: "Turns into a random team card when played.", Type: TypeTeam, Tier: TierSilver, SlotCost: 3, EffectType: EffectRandom, RequiresTarget: TargetNone, IsActive: true},
		{ID: "team-pit-crew", Name: "Pit Crew", Description: "Bonus for the fastest pit stop.", Type: TypeTeam, Tier: TierSilver, SlotCost: 3, EffectType: EffectPitStopBonus, RequiresTarget: TargetNone, IsActive: true},
		{ID: "team-rivalry", Name: "Rivalry", Description: "Bonus if your team beats the chosen team.", Type: TypeTeam, Tier: TierSilver, SlotCost: 3, EffectType: EffectRivalry, RequiresTarget: TargetTeam, IsActive: true},
		{ID: "team-reliability", Name: "Reliability", Description: "Bonus when both cars finish.", Type: TypeTeam, Tier: TierBronze, SlotCost: 2, EffectType: EffectReliability, RequiresTarget: TargetNone, IsActive: true},
		{ID: "team-upgrade-package", Name: "Upgrade Package", Description: "Flat team bonus.", Type: TypeTeam, Tier: TierBronze, SlotCost: 2, EffectType: EffectUpgradePackage, RequiresTarget: TargetNone, IsActive: true},
		{ID: "team-ghost", Name: "Ghost Car", Description: "Retired card.", Type: TypeTeam, Tier: TierBronze, SlotCost: 1, EffectType: EffectUpgradePackage, RequiresTarget: TargetNone, IsActive: false},
	}
}

// Index keys definitions by id.
func Index(defs []Definition) map[string]Definition {
	out := make(map[string]Definition, len(defs))
	for _, d := range defs {
		out[d.ID] = d
	}
	return out
}
