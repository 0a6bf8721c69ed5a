package selection

import "context"

// Repository persists selections keyed by (user, league, round).
type Repository interface {
	GetByID(ctx context.Context, selectionID string) (Selection, bool, error)
	GetByUserLeagueRound(ctx context.Context, userID, leagueID string, round int) (Selection, bool, error)
	GetByUserRace(ctx context.Context, userID, leagueID, raceID string) (Selection, bool, error)
	ListByUserLeagueSeason(ctx context.Context, userID, leagueID string, season int) ([]Selection, error)
	Upsert(ctx context.Context, item Selection) error
}
