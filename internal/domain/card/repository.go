package card

import "context"

// CatalogRepository reads card definitions.
type CatalogRepository interface {
	List(ctx context.Context) ([]Definition, error)
	GetByIDs(ctx context.Context, cardIDs []string) ([]Definition, error)
}

// DeckRepository stores owned cards and deck membership.
type DeckRepository interface {
	ListByUserLeagueSeason(ctx context.Context, userID, leagueID string, season int) ([]DeckEntry, error)
	// ReplaceSelection unselects every entry of the user's season deck and
	// upserts entries as selected, in one write.
	ReplaceSelection(ctx context.Context, userID, leagueID string, season int, entries []DeckEntry) error
}

// UsageRepository reads the card usage ledger.
type UsageRepository interface {
	ListByUserLeagueSeason(ctx context.Context, userID, leagueID string, season int) ([]UsageRecord, error)
}

// ActivationRepository stores per-race activations together with usage rows.
type ActivationRepository interface {
	GetByUserLeagueRace(ctx context.Context, userID, leagueID, raceID string) (Activation, bool, error)
	// Commit upserts the activation, deletes usage rows for released cards of
	// the same race and inserts the new usage rows atomically. A usage row that
	// already exists for another race fails with *UsageConflictError.
	Commit(ctx context.Context, commit ActivationCommit) error
}
