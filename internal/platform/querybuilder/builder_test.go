package querybuilder

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type raceRow struct {
	PublicID string `db:"public_id"`
	Season   int    `db:"season,omitempty"`
	Round    int    `db:"round"`
	Notes    string `db:"-"`
	Untagged string
	internal string `db:"internal"`
}

func TestToSQL(t *testing.T) {
	tests := []struct {
		name      string
		build     func() (string, []any, error)
		wantQuery string
		wantArgs  []any
	}{
		{
			name: "select with conditions and order",
			build: Select("public_id", "round").
				From("races").
				Where(Eq("season", 2026), IsNull("deleted_at")).
				OrderBy("round ASC", "public_id").
				ToSQL,
			wantQuery: "SELECT public_id, round FROM races WHERE season = $1 AND deleted_at IS NULL ORDER BY round ASC, public_id",
			wantArgs:  []any{2026},
		},
		{
			name: "select expression binds after equality",
			build: Select("*").
				From("power_cards").
				Where(Eq("card_type", "driver"), Expr("id = ANY(?) AND cost <= ?", []string{"drs", "slipstream"}, 3)).
				ToSQL,
			wantQuery: "SELECT * FROM power_cards WHERE card_type = $1 AND id = ANY($2) AND cost <= $3",
			wantArgs:  []any{"driver", []string{"drs", "slipstream"}, 3},
		},
		{
			name: "expression without args is verbatim",
			build: Select("id").
				From("leagues").
				Where(Expr("name LIKE 'a?%'")).
				ToSQL,
			wantQuery: "SELECT id FROM leagues WHERE name LIKE 'a?%'",
			wantArgs:  []any{},
		},
		{
			name: "multi row insert with suffix",
			build: InsertInto("league_members").
				Columns("league_public_id", "user_id").
				Values("paddock", "u-1").
				Values("paddock", "u-2").
				Suffix("ON CONFLICT DO NOTHING").
				ToSQL,
			wantQuery: "INSERT INTO league_members (league_public_id, user_id) VALUES ($1, $2), ($3, $4) ON CONFLICT DO NOTHING",
			wantArgs:  []any{"paddock", "u-1", "paddock", "u-2"},
		},
		{
			name: "update with expression and returning",
			build: Update("reuse_ledgers").
				Set("driver_cycles", "{}").
				SetExpr("version", "version + ?", 1).
				Where(Eq("user_id", "u-1"), Eq("version", int64(4))).
				Suffix("RETURNING version").
				ToSQL,
			wantQuery: "UPDATE reuse_ledgers SET driver_cycles = $1, version = version + $2 WHERE user_id = $3 AND version = $4 RETURNING version",
			wantArgs:  []any{"{}", 1, "u-1", int64(4)},
		},
		{
			name: "delete",
			build: DeleteFrom("power_card_usages").
				Where(Eq("user_id", "u-1"), Expr("card_id = ANY(?)", []string{"drs"})).
				ToSQL,
			wantQuery: "DELETE FROM power_card_usages WHERE user_id = $1 AND card_id = ANY($2)",
			wantArgs:  []any{"u-1", []string{"drs"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			query, args, err := tc.build()
			if err != nil {
				t.Fatalf("build query: %v", err)
			}
			if query != tc.wantQuery {
				t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", tc.wantQuery, query)
			}
			if diff := cmp.Diff(tc.wantArgs, args); diff != "" {
				t.Fatalf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToSQL_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func() (string, []any, error)
	}{
		{name: "select without columns", build: Select().From("races").ToSQL},
		{name: "select without table", build: Select("*").ToSQL},
		{name: "insert without columns", build: InsertInto("races").Values(1).ToSQL},
		{name: "insert without rows", build: InsertInto("races").Columns("round").ToSQL},
		{name: "insert row width mismatch", build: InsertInto("races").Columns("round", "season").Values(1).ToSQL},
		{name: "update without sets", build: Update("races").Where(Eq("round", 1)).ToSQL},
		{name: "unconditional delete", build: DeleteFrom("races").ToSQL},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := tc.build(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestInsertModel(t *testing.T) {
	row := raceRow{PublicID: "bahrain-2026", Season: 2026, Round: 1, Notes: "skip", Untagged: "skip", internal: "skip"}

	query, args, err := InsertModel("races", &row, "ON CONFLICT (season, round) DO NOTHING")
	if err != nil {
		t.Fatalf("build insert model: %v", err)
	}

	wantQuery := "INSERT INTO races (public_id, season, round) VALUES ($1, $2, $3) ON CONFLICT (season, round) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if diff := cmp.Diff([]any{"bahrain-2026", 2026, 1}, args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertModel_RejectsNonStruct(t *testing.T) {
	var nilRow *raceRow
	for _, model := range []any{nilRow, 42, struct{ Name string }{Name: "x"}} {
		if _, _, err := InsertModel("races", model, ""); err == nil {
			t.Fatalf("expected error for %T", model)
		}
	}
}
