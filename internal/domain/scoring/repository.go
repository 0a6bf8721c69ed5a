package scoring

import "context"

// ResultRepository reads imported race results.
type ResultRepository interface {
	GetRaceResult(ctx context.Context, season, round int) (RaceResult, bool, error)
}
