package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantasy-racing/internal/domain/race"
	qb "github.com/riskibarqy/fantasy-racing/internal/platform/querybuilder"
)

type RaceRepository struct {
	db *sqlx.DB
}

func NewRaceRepository(db *sqlx.DB) *RaceRepository {
	return &RaceRepository{db: db}
}

func (r *RaceRepository) ListBySeason(ctx context.Context, season int) ([]race.Race, error) {
	query, args, err := qb.Select("*").From("races").
		Where(qb.Eq("season", season)).
		OrderBy("round").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list races by season query: %w", err)
	}

	var rows []raceTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list races by season: %w", err)
	}

	out := make([]race.Race, 0, len(rows))
	for _, row := range rows {
		out = append(out, raceFromRow(row))
	}
	return out, nil
}

func (r *RaceRepository) GetByID(ctx context.Context, raceID string) (race.Race, bool, error) {
	query, args, err := qb.Select("*").From("races").
		Where(qb.Eq("public_id", raceID)).
		ToSQL()
	if err != nil {
		return race.Race{}, false, fmt.Errorf("build get race by id query: %w", err)
	}
	return r.getOne(ctx, query, args)
}

func (r *RaceRepository) GetBySeasonRound(ctx context.Context, season, round int) (race.Race, bool, error) {
	query, args, err := qb.Select("*").From("races").
		Where(
			qb.Eq("season", season),
			qb.Eq("round", round),
		).
		ToSQL()
	if err != nil {
		return race.Race{}, false, fmt.Errorf("build get race by season round query: %w", err)
	}
	return r.getOne(ctx, query, args)
}

// UpsertCalendar writes a season calendar keyed by (season, round). A
// regenerated calendar may assign new public ids to existing rounds.
func (r *RaceRepository) UpsertCalendar(ctx context.Context, items []race.Race) error {
	if len(items) == 0 {
		return nil
	}

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, item := range items {
			if err := item.Validate(); err != nil {
				return fmt.Errorf("invalid race %s: %w", item.ID, err)
			}

			model := raceInsertModel{
				PublicID:              item.ID,
				Season:                item.Season,
				Round:                 item.Round,
				Name:                  item.Name,
				QualifyingStart:       item.QualifyingStart.UTC(),
				SprintQualifyingStart: nullableTime(item.SprintQualifyingStart),
				RaceStart:             item.RaceStart.UTC(),
				IsSprintWeekend:       item.IsSprintWeekend,
			}
			query, args, err := qb.InsertModel("races", model, `ON CONFLICT (season, round)
DO UPDATE SET
    public_id = EXCLUDED.public_id,
    name = EXCLUDED.name,
    qualifying_start = EXCLUDED.qualifying_start,
    sprint_qualifying_start = EXCLUDED.sprint_qualifying_start,
    race_start = EXCLUDED.race_start,
    is_sprint_weekend = EXCLUDED.is_sprint_weekend,
    updated_at = NOW()`)
			if err != nil {
				return fmt.Errorf("build upsert race query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("upsert race season=%d round=%d: %w", item.Season, item.Round, err)
			}
		}
		return nil
	})
}

func (r *RaceRepository) getOne(ctx context.Context, query string, args []any) (race.Race, bool, error) {
	var row raceTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return race.Race{}, false, nil
		}
		return race.Race{}, false, fmt.Errorf("get race: %w", err)
	}
	return raceFromRow(row), true, nil
}

func raceFromRow(row raceTableModel) race.Race {
	return race.Race{
		ID:                    row.PublicID,
		Season:                row.Season,
		Round:                 row.Round,
		Name:                  row.Name,
		QualifyingStart:       row.QualifyingStart.UTC(),
		SprintQualifyingStart: timePtr(row.SprintQualifyingStart),
		RaceStart:             row.RaceStart.UTC(),
		IsSprintWeekend:       row.IsSprintWeekend,
	}
}
