package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantasy-racing/internal/domain/scoring"
	qb "github.com/riskibarqy/fantasy-racing/internal/platform/querybuilder"
)

// RaceResultRepository keeps one classified result set per (season, round).
type RaceResultRepository struct {
	db *sqlx.DB
}

func NewRaceResultRepository(db *sqlx.DB) *RaceResultRepository {
	return &RaceResultRepository{db: db}
}

func (r *RaceResultRepository) GetRaceResult(ctx context.Context, season, round int) (scoring.RaceResult, bool, error) {
	query, args, err := qb.Select("*").From("race_results").
		Where(
			qb.Eq("season", season),
			qb.Eq("round", round),
		).
		ToSQL()
	if err != nil {
		return scoring.RaceResult{}, false, fmt.Errorf("build get race result query: %w", err)
	}

	var row raceResultTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return scoring.RaceResult{}, false, nil
		}
		return scoring.RaceResult{}, false, fmt.Errorf("get race result: %w", err)
	}

	results, err := decodeDriverResults(row.Results)
	if err != nil {
		return scoring.RaceResult{}, false, fmt.Errorf("decode race result %d/%d: %w", season, round, err)
	}
	return scoring.RaceResult{
		RaceID:     row.RacePublicID,
		Season:     row.Season,
		Round:      row.Round,
		Results:    results,
		ImportedAt: row.ImportedAt.UTC(),
	}, true, nil
}

// Upsert replaces the stored classification for the result's round.
func (r *RaceResultRepository) Upsert(ctx context.Context, item scoring.RaceResult) error {
	raw, err := encodeDriverResults(item.Results)
	if err != nil {
		return fmt.Errorf("encode race result: %w", err)
	}

	model := raceResultTableModel{
		Season:       item.Season,
		Round:        item.Round,
		RacePublicID: item.RaceID,
		Results:      raw,
		ImportedAt:   item.ImportedAt.UTC(),
	}
	query, args, err := qb.InsertModel("race_results", model, `ON CONFLICT (season, round)
DO UPDATE SET
    race_public_id = EXCLUDED.race_public_id,
    results = EXCLUDED.results,
    imported_at = EXCLUDED.imported_at`)
	if err != nil {
		return fmt.Errorf("build upsert race result query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert race result: %w", err)
	}
	return nil
}

func encodeDriverResults(items []scoring.DriverResult) (string, error) {
	doc := make([]driverResultDocument, 0, len(items))
	for _, item := range items {
		doc = append(doc, driverResultDocument(item))
	}
	return sonic.MarshalString(doc)
}

func decodeDriverResults(raw string) ([]scoring.DriverResult, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var doc []driverResultDocument
	if err := sonic.UnmarshalString(raw, &doc); err != nil {
		return nil, err
	}
	out := make([]scoring.DriverResult, 0, len(doc))
	for _, item := range doc {
		out = append(out, scoring.DriverResult(item))
	}
	return out, nil
}
