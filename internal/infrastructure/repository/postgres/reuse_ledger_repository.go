package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantasy-racing/internal/domain/reusecycle"
	qb "github.com/riskibarqy/fantasy-racing/internal/platform/querybuilder"
)

// ReuseLedgerRepository stores cycle stacks as JSONB arrays of name arrays,
// oldest cycle first.
type ReuseLedgerRepository struct {
	db *sqlx.DB
}

func NewReuseLedgerRepository(db *sqlx.DB) *ReuseLedgerRepository {
	return &ReuseLedgerRepository{db: db}
}

func (r *ReuseLedgerRepository) Get(ctx context.Context, userID, leagueID string) (reusecycle.Ledger, bool, error) {
	query, args, err := qb.Select("*").From("reuse_ledgers").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("league_public_id", leagueID),
		).
		ToSQL()
	if err != nil {
		return reusecycle.Ledger{}, false, fmt.Errorf("build get reuse ledger query: %w", err)
	}

	var row reuseLedgerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return reusecycle.Ledger{}, false, nil
		}
		return reusecycle.Ledger{}, false, fmt.Errorf("get reuse ledger: %w", err)
	}

	drivers, err := decodeStack(row.DriverCycles)
	if err != nil {
		return reusecycle.Ledger{}, false, fmt.Errorf("decode driver cycles: %w", err)
	}
	teams, err := decodeStack(row.TeamCycles)
	if err != nil {
		return reusecycle.Ledger{}, false, fmt.Errorf("decode team cycles: %w", err)
	}

	return reusecycle.Ledger{
		UserID:    row.UserID,
		LeagueID:  row.LeaguePublicID,
		Drivers:   drivers,
		Teams:     teams,
		Version:   row.Version,
		UpdatedAt: row.UpdatedAt.UTC(),
	}, true, nil
}

// CompareAndSwap inserts when expectedVersion is 0 and otherwise updates only
// the row still at expectedVersion.
func (r *ReuseLedgerRepository) CompareAndSwap(ctx context.Context, ledger reusecycle.Ledger, expectedVersion int64) (reusecycle.Ledger, error) {
	drivers, err := encodeStack(ledger.Drivers)
	if err != nil {
		return reusecycle.Ledger{}, fmt.Errorf("encode driver cycles: %w", err)
	}
	teams, err := encodeStack(ledger.Teams)
	if err != nil {
		return reusecycle.Ledger{}, fmt.Errorf("encode team cycles: %w", err)
	}
	updatedAt := ledger.UpdatedAt.UTC()

	if expectedVersion == 0 {
		query, args, err := qb.InsertInto("reuse_ledgers").
			Columns("user_id", "league_public_id", "driver_cycles", "team_cycles", "version", "updated_at").
			Values(ledger.UserID, ledger.LeagueID, drivers, teams, int64(1), updatedAt).
			ToSQL()
		if err != nil {
			return reusecycle.Ledger{}, fmt.Errorf("build insert reuse ledger query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err, "") {
				return reusecycle.Ledger{}, reusecycle.ErrVersionConflict
			}
			return reusecycle.Ledger{}, fmt.Errorf("insert reuse ledger: %w", err)
		}
		ledger.Version = 1
		return ledger, nil
	}

	query, args, err := qb.Update("reuse_ledgers").
		Set("driver_cycles", drivers).
		Set("team_cycles", teams).
		SetExpr("version", "version + 1").
		Set("updated_at", updatedAt).
		Where(
			qb.Eq("user_id", ledger.UserID),
			qb.Eq("league_public_id", ledger.LeagueID),
			qb.Eq("version", expectedVersion),
		).
		Suffix("RETURNING version").
		ToSQL()
	if err != nil {
		return reusecycle.Ledger{}, fmt.Errorf("build update reuse ledger query: %w", err)
	}

	var version int64
	if err := r.db.GetContext(ctx, &version, query, args...); err != nil {
		if isNotFound(err) {
			return reusecycle.Ledger{}, reusecycle.ErrVersionConflict
		}
		return reusecycle.Ledger{}, fmt.Errorf("update reuse ledger: %w", err)
	}
	ledger.Version = version
	return ledger, nil
}

func encodeStack(stack reusecycle.Stack) (string, error) {
	doc := make([][]string, 0, len(stack))
	for _, cycle := range stack {
		doc = append(doc, append([]string{}, cycle...))
	}
	return sonic.MarshalString(doc)
}

func decodeStack(raw string) (reusecycle.Stack, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}

	var doc [][]string
	if err := sonic.UnmarshalString(raw, &doc); err != nil {
		return nil, err
	}
	if len(doc) == 0 {
		return nil, nil
	}

	out := make(reusecycle.Stack, 0, len(doc))
	for _, names := range doc {
		out = append(out, reusecycle.Cycle(names))
	}
	return out, nil
}
