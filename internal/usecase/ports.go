package usecase

import (
	"context"

	"github.com/riskibarqy/fantasy-racing/internal/domain/card"
	"github.com/riskibarqy/fantasy-racing/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-racing/internal/domain/selection"
)

// ScoreRequest is the finalized triple handed to the scoring service.
type ScoreRequest struct {
	Selection  selection.Selection
	Result     scoring.RaceResult
	Activation *card.Activation
}

// ScoringGateway turns a finalized selection into points.
type ScoringGateway interface {
	ScoreSelection(ctx context.Context, req ScoreRequest) (selection.PointBreakdown, error)
}

// LeaderboardUpdater recomputes league standings.
type LeaderboardUpdater interface {
	RefreshLeague(ctx context.Context, leagueID string, season int) error
}
