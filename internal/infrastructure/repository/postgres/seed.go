package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantasy-racing/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo leagues, the race calendar and the seeded
// results into an empty database. It is a no-op once any league exists.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM leagues WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count leagues for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		for _, l := range memory.SeedLeagues() {
			sqlQuery, args, err := sqlx.Named(`
INSERT INTO leagues (public_id, name, season, owner_user_id)
VALUES (:public_id, :name, :season, :owner_user_id)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
				"public_id":     l.ID,
				"name":          l.Name,
				"season":        l.Season,
				"owner_user_id": l.OwnerUserID,
			})
			if err != nil {
				return fmt.Errorf("bind seed league %s query: %w", l.ID, err)
			}
			if _, err := tx.ExecContext(ctx, tx.Rebind(sqlQuery), args...); err != nil {
				return fmt.Errorf("seed league %s: %w", l.ID, err)
			}
		}

		for _, m := range memory.SeedMembers() {
			sqlQuery, args, err := sqlx.Named(`
INSERT INTO league_members (league_public_id, user_id, role)
VALUES (:league_public_id, :user_id, :role)
ON CONFLICT (league_public_id, user_id) WHERE deleted_at IS NULL DO NOTHING`, map[string]any{
				"league_public_id": m.LeagueID,
				"user_id":          m.UserID,
				"role":             string(m.Role),
			})
			if err != nil {
				return fmt.Errorf("bind seed member %s/%s query: %w", m.LeagueID, m.UserID, err)
			}
			if _, err := tx.ExecContext(ctx, tx.Rebind(sqlQuery), args...); err != nil {
				return fmt.Errorf("seed member %s/%s: %w", m.LeagueID, m.UserID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := NewRaceRepository(db).UpsertCalendar(ctx, memory.SeedRaces()); err != nil {
		return fmt.Errorf("seed race calendar: %w", err)
	}

	results := NewRaceResultRepository(db)
	for _, item := range memory.SeedRaceResults() {
		if err := results.Upsert(ctx, item); err != nil {
			return fmt.Errorf("seed race result %s: %w", item.RaceID, err)
		}
	}
	return nil
}
