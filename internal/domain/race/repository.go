package race

import "context"

// Repository is the calendar gateway. Lookups by (season, round) are the
// authoritative path; GetByID is only a shortcut for cached references.
type Repository interface {
	ListBySeason(ctx context.Context, season int) ([]Race, error)
	GetByID(ctx context.Context, raceID string) (Race, bool, error)
	GetBySeasonRound(ctx context.Context, season, round int) (Race, bool, error)
}
