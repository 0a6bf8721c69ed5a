package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantasy-racing/internal/domain/selection"
	qb "github.com/riskibarqy/fantasy-racing/internal/platform/querybuilder"
)

type SelectionRepository struct {
	db *sqlx.DB
}

func NewSelectionRepository(db *sqlx.DB) *SelectionRepository {
	return &SelectionRepository{db: db}
}

func (r *SelectionRepository) GetByID(ctx context.Context, selectionID string) (selection.Selection, bool, error) {
	query, args, err := qb.Select("*").From("race_selections").
		Where(qb.Eq("public_id", selectionID)).
		ToSQL()
	if err != nil {
		return selection.Selection{}, false, fmt.Errorf("build get selection by id query: %w", err)
	}
	return r.getOne(ctx, query, args)
}

func (r *SelectionRepository) GetByUserLeagueRound(ctx context.Context, userID, leagueID string, round int) (selection.Selection, bool, error) {
	query, args, err := qb.Select("*").From("race_selections").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("league_public_id", leagueID),
			qb.Eq("round", round),
		).
		ToSQL()
	if err != nil {
		return selection.Selection{}, false, fmt.Errorf("build get selection by round query: %w", err)
	}
	return r.getOne(ctx, query, args)
}

func (r *SelectionRepository) GetByUserRace(ctx context.Context, userID, leagueID, raceID string) (selection.Selection, bool, error) {
	query, args, err := qb.Select("*").From("race_selections").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("league_public_id", leagueID),
			qb.Eq("race_public_id", raceID),
		).
		ToSQL()
	if err != nil {
		return selection.Selection{}, false, fmt.Errorf("build get selection by race query: %w", err)
	}
	return r.getOne(ctx, query, args)
}

func (r *SelectionRepository) ListByUserLeagueSeason(ctx context.Context, userID, leagueID string, season int) ([]selection.Selection, error) {
	query, args, err := qb.Select("*").From("race_selections").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("league_public_id", leagueID),
			qb.Eq("season", season),
		).
		OrderBy("round").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list selections query: %w", err)
	}

	var rows []selectionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}

	out := make([]selection.Selection, 0, len(rows))
	for _, row := range rows {
		item, err := selectionFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Upsert keeps one row per (user, league, round); the stored public id wins on conflict.
func (r *SelectionRepository) Upsert(ctx context.Context, item selection.Selection) error {
	breakdown, err := sonic.MarshalString(pointBreakdownDocument(item.Breakdown))
	if err != nil {
		return fmt.Errorf("encode point breakdown: %w", err)
	}

	model := selectionInsertModel{
		PublicID:         item.ID,
		UserID:           item.UserID,
		LeaguePublicID:   item.LeagueID,
		RacePublicID:     item.RaceID,
		Season:           item.Season,
		Round:            item.Round,
		MainDriver:       item.MainDriver,
		ReserveDriver:    item.ReserveDriver,
		Team:             item.Team,
		Status:           string(item.Status),
		Points:           item.Points,
		PointBreakdown:   breakdown,
		AssignedByUserID: nullableString(item.AssignedBy),
		AssignedAt:       nullableTime(item.AssignedAt),
		Notes:            item.Notes,
		CreatedAt:        item.CreatedAt.UTC(),
		UpdatedAt:        item.UpdatedAt.UTC(),
	}

	query, args, err := qb.InsertModel("race_selections", model, `ON CONFLICT (user_id, league_public_id, round)
DO UPDATE SET
    race_public_id = EXCLUDED.race_public_id,
    season = EXCLUDED.season,
    main_driver = EXCLUDED.main_driver,
    reserve_driver = EXCLUDED.reserve_driver,
    team = EXCLUDED.team,
    status = EXCLUDED.status,
    points = EXCLUDED.points,
    point_breakdown = EXCLUDED.point_breakdown,
    assigned_by_user_id = EXCLUDED.assigned_by_user_id,
    assigned_at = EXCLUDED.assigned_at,
    notes = EXCLUDED.notes,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert selection query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert selection: %w", err)
	}
	return nil
}

func (r *SelectionRepository) getOne(ctx context.Context, query string, args []any) (selection.Selection, bool, error) {
	var row selectionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return selection.Selection{}, false, nil
		}
		return selection.Selection{}, false, fmt.Errorf("get selection: %w", err)
	}

	item, err := selectionFromRow(row)
	if err != nil {
		return selection.Selection{}, false, err
	}
	return item, true, nil
}

func selectionFromRow(row selectionTableModel) (selection.Selection, error) {
	var breakdown pointBreakdownDocument
	if raw := strings.TrimSpace(row.PointBreakdown); raw != "" {
		if err := sonic.UnmarshalString(raw, &breakdown); err != nil {
			return selection.Selection{}, fmt.Errorf("decode point breakdown for selection %s: %w", row.PublicID, err)
		}
	}

	status := selection.Status(row.Status)
	return selection.Selection{
		ID:              row.PublicID,
		UserID:          row.UserID,
		LeagueID:        row.LeaguePublicID,
		RaceID:          row.RacePublicID,
		Season:          row.Season,
		Round:           row.Round,
		MainDriver:      row.MainDriver,
		ReserveDriver:   row.ReserveDriver,
		Team:            row.Team,
		Status:          status,
		Points:          row.Points,
		Breakdown:       selection.PointBreakdown(breakdown),
		IsAdminAssigned: status == selection.StatusAdminAssigned,
		IsAutoAssigned:  status == selection.StatusAutoAssigned,
		AssignedBy:      row.AssignedByUserID.String,
		AssignedAt:      timePtr(row.AssignedAt),
		Notes:           row.Notes,
		CreatedAt:       row.CreatedAt.UTC(),
		UpdatedAt:       row.UpdatedAt.UTC(),
	}, nil
}
