package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/riskibarqy/fantasy-racing/internal/domain/card"
	qb "github.com/riskibarqy/fantasy-racing/internal/platform/querybuilder"
)

// CardRepository serves the catalog, season decks, the usage ledger and
// per-race activations. It satisfies every card repository interface except
// UsageRepository, which is exposed through Usages.
type CardRepository struct {
	db *sqlx.DB
}

func NewCardRepository(db *sqlx.DB) *CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) List(ctx context.Context) ([]card.Definition, error) {
	query, args, err := qb.Select("*").From("power_cards").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list power cards query: %w", err)
	}
	return r.selectDefinitions(ctx, query, args)
}

func (r *CardRepository) GetByIDs(ctx context.Context, cardIDs []string) ([]card.Definition, error) {
	if len(cardIDs) == 0 {
		return []card.Definition{}, nil
	}

	query, args, err := qb.Select("*").From("power_cards").
		Where(qb.Expr("id = ANY(?)", pq.Array(cardIDs))).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get power cards query: %w", err)
	}
	return r.selectDefinitions(ctx, query, args)
}

func (r *CardRepository) selectDefinitions(ctx context.Context, query string, args []any) ([]card.Definition, error) {
	var rows []cardDefinitionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select power cards: %w", err)
	}

	out := make([]card.Definition, 0, len(rows))
	for _, row := range rows {
		out = append(out, card.Definition{
			ID:             row.ID,
			Name:           row.Name,
			Description:    row.Description,
			Type:           card.Type(row.CardType),
			Tier:           card.Tier(row.Tier),
			SlotCost:       row.SlotCost,
			EffectType:     card.EffectType(row.EffectType),
			RequiresTarget: card.TargetKind(row.RequiresTarget),
			IsActive:       row.IsActive,
		})
	}
	return out, nil
}

func (r *CardRepository) ListByUserLeagueSeason(ctx context.Context, userID, leagueID string, season int) ([]card.DeckEntry, error) {
	query, args, err := qb.Select("*").From("user_power_cards").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("league_public_id", leagueID),
			qb.Eq("season", season),
		).
		OrderBy("card_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list deck query: %w", err)
	}

	var rows []deckEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list deck: %w", err)
	}

	out := make([]card.DeckEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, card.DeckEntry{
			UserID:    row.UserID,
			LeagueID:  row.LeaguePublicID,
			Season:    row.Season,
			CardID:    row.CardID,
			CardType:  card.Type(row.CardType),
			Selected:  row.Selected,
			UpdatedAt: row.UpdatedAt.UTC(),
		})
	}
	return out, nil
}

func (r *CardRepository) ReplaceSelection(ctx context.Context, userID, leagueID string, season int, entries []card.DeckEntry) error {
	keep := make(pq.StringArray, 0, len(entries))
	for _, entry := range entries {
		keep = append(keep, entry.CardID)
	}

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, entry := range entries {
			model := deckEntryTableModel{
				UserID:         userID,
				LeaguePublicID: leagueID,
				Season:         season,
				CardID:         entry.CardID,
				CardType:       string(entry.CardType),
				Selected:       true,
				UpdatedAt:      entry.UpdatedAt.UTC(),
			}
			query, args, err := qb.InsertModel("user_power_cards", model, `ON CONFLICT (user_id, league_public_id, season, card_id)
DO UPDATE SET
    card_type = EXCLUDED.card_type,
    selected = TRUE,
    updated_at = EXCLUDED.updated_at`)
			if err != nil {
				return fmt.Errorf("build upsert deck entry query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("upsert deck entry %s: %w", entry.CardID, err)
			}
		}

		query, args, err := qb.Update("user_power_cards").
			Set("selected", false).
			Where(
				qb.Eq("user_id", userID),
				qb.Eq("league_public_id", leagueID),
				qb.Eq("season", season),
				qb.Eq("selected", true),
				qb.Expr("NOT (card_id = ANY(?))", keep),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build unselect deck query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("unselect deck entries: %w", err)
		}
		return nil
	})
}

// Usages exposes the usage ledger as a card.UsageRepository.
func (r *CardRepository) Usages() *CardUsageRepository {
	return &CardUsageRepository{db: r.db}
}

type CardUsageRepository struct {
	db *sqlx.DB
}

func (r *CardUsageRepository) ListByUserLeagueSeason(ctx context.Context, userID, leagueID string, season int) ([]card.UsageRecord, error) {
	query, args, err := qb.Select("*").From("power_card_usages").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("league_public_id", leagueID),
			qb.Eq("season", season),
		).
		OrderBy("round", "card_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list card usages query: %w", err)
	}

	var rows []usageTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list card usages: %w", err)
	}

	out := make([]card.UsageRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, card.UsageRecord{
			UserID:    row.UserID,
			LeagueID:  row.LeaguePublicID,
			Season:    row.Season,
			CardID:    row.CardID,
			CardType:  card.Type(row.CardType),
			RaceID:    row.RacePublicID,
			Round:     row.Round,
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return out, nil
}

func (r *CardRepository) GetByUserLeagueRace(ctx context.Context, userID, leagueID, raceID string) (card.Activation, bool, error) {
	query, args, err := qb.Select("*").From("power_card_activations").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("league_public_id", leagueID),
			qb.Eq("race_public_id", raceID),
		).
		ToSQL()
	if err != nil {
		return card.Activation{}, false, fmt.Errorf("build get activation query: %w", err)
	}

	var row activationTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return card.Activation{}, false, nil
		}
		return card.Activation{}, false, fmt.Errorf("get activation: %w", err)
	}

	return card.Activation{
		ID:                       row.PublicID,
		SelectionID:              row.SelectionPublicID,
		UserID:                   row.UserID,
		LeagueID:                 row.LeaguePublicID,
		RaceID:                   row.RacePublicID,
		Season:                   row.Season,
		Round:                    row.Round,
		DriverCardID:             row.DriverCardID.String,
		TeamCardID:               row.TeamCardID.String,
		TargetPlayer:             row.TargetPlayer,
		TargetDriver:             row.TargetDriver,
		TargetTeam:               row.TargetTeam,
		MysteryTransformedCardID: row.MysteryTransformedCardID,
		RandomTransformedCardID:  row.RandomTransformedCardID,
		SelectedAt:               row.SelectedAt.UTC(),
		UpdatedAt:                row.UpdatedAt.UTC(),
	}, true, nil
}

// Commit writes the activation, frees released usage rows of the same round
// and claims the new ones. A claim held by another round aborts the
// transaction with *card.UsageConflictError.
func (r *CardRepository) Commit(ctx context.Context, commit card.ActivationCommit) error {
	a := commit.Activation

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if len(commit.ReleasedCardIDs) > 0 {
			query, args, err := qb.DeleteFrom("power_card_usages").
				Where(
					qb.Eq("user_id", a.UserID),
					qb.Eq("league_public_id", a.LeagueID),
					qb.Eq("season", a.Season),
					qb.Eq("round", a.Round),
					qb.Expr("card_id = ANY(?)", pq.StringArray(commit.ReleasedCardIDs)),
				).
				ToSQL()
			if err != nil {
				return fmt.Errorf("build release card usages query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("release card usages: %w", err)
			}
		}

		for _, u := range commit.Usages {
			if err := claimUsage(ctx, tx, u); err != nil {
				return err
			}
		}

		model := activationInsertModel{
			PublicID:                 a.ID,
			SelectionPublicID:        a.SelectionID,
			UserID:                   a.UserID,
			LeaguePublicID:           a.LeagueID,
			RacePublicID:             a.RaceID,
			Season:                   a.Season,
			Round:                    a.Round,
			DriverCardID:             nullableString(a.DriverCardID),
			TeamCardID:               nullableString(a.TeamCardID),
			TargetPlayer:             a.TargetPlayer,
			TargetDriver:             a.TargetDriver,
			TargetTeam:               a.TargetTeam,
			MysteryTransformedCardID: a.MysteryTransformedCardID,
			RandomTransformedCardID:  a.RandomTransformedCardID,
			SelectedAt:               a.SelectedAt.UTC(),
			UpdatedAt:                a.UpdatedAt.UTC(),
		}
		query, args, err := qb.InsertModel("power_card_activations", model, `ON CONFLICT (user_id, league_public_id, race_public_id)
DO UPDATE SET
    selection_public_id = EXCLUDED.selection_public_id,
    driver_card_id = EXCLUDED.driver_card_id,
    team_card_id = EXCLUDED.team_card_id,
    target_player = EXCLUDED.target_player,
    target_driver = EXCLUDED.target_driver,
    target_team = EXCLUDED.target_team,
    mystery_transformed_card_id = EXCLUDED.mystery_transformed_card_id,
    random_transformed_card_id = EXCLUDED.random_transformed_card_id,
    updated_at = EXCLUDED.updated_at`)
		if err != nil {
			return fmt.Errorf("build upsert activation query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert activation: %w", err)
		}
		return nil
	})
}

// claimUsage inserts a usage row unless one already exists. An existing row
// for the same round is an idempotent re-save; any other round is a conflict.
func claimUsage(ctx context.Context, tx *sqlx.Tx, u card.UsageRecord) error {
	model := usageInsertModel{
		UserID:         u.UserID,
		LeaguePublicID: u.LeagueID,
		Season:         u.Season,
		CardID:         u.CardID,
		CardType:       string(u.CardType),
		RacePublicID:   u.RaceID,
		Round:          u.Round,
		CreatedAt:      u.CreatedAt.UTC(),
	}
	query, args, err := qb.InsertModel("power_card_usages", model, "ON CONFLICT (user_id, league_public_id, season, card_id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build insert card usage query: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err, "") {
			return &card.UsageConflictError{CardID: u.CardID}
		}
		return fmt.Errorf("insert card usage %s: %w", u.CardID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 1 {
		return nil
	}

	query, args, err = qb.Select("round").From("power_card_usages").
		Where(
			qb.Eq("user_id", u.UserID),
			qb.Eq("league_public_id", u.LeagueID),
			qb.Eq("season", u.Season),
			qb.Eq("card_id", u.CardID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build get card usage round query: %w", err)
	}

	var round int
	if err := tx.GetContext(ctx, &round, query, args...); err != nil {
		return fmt.Errorf("get card usage round %s: %w", u.CardID, err)
	}
	if round != u.Round {
		return &card.UsageConflictError{CardID: u.CardID, Round: round}
	}
	return nil
}
