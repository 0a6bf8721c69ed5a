package memory

import (
	"context"
	"testing"

	"github.com/riskibarqy/fantasy-racing/internal/domain/reusecycle"
	"github.com/riskibarqy/fantasy-racing/internal/domain/selection"
)

func TestSelectionRepository_UpsertKeepsOneRowPerRound(t *testing.T) {
	ctx := context.Background()
	repo := NewSelectionRepository()

	base := selection.Selection{ID: "s1", UserID: "u1", LeagueID: "l1", RaceID: RaceID(2026, 19), Season: 2026, Round: 19, MainDriver: "Max Verstappen"}
	if err := repo.Upsert(ctx, base); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	dup := base
	dup.ID = "s2"
	dup.MainDriver = "Lando Norris"
	if err := repo.Upsert(ctx, dup); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	items, err := repo.ListByUserLeagueSeason(ctx, "u1", "l1", 2026)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].ID != "s1" || items[0].MainDriver != "Lando Norris" {
		t.Fatalf("expected a single updated row, got %+v", items)
	}

	got, found, err := repo.GetByUserRace(ctx, "u1", "l1", RaceID(2026, 19))
	if err != nil || !found || got.ID != "s1" {
		t.Fatalf("expected lookup by race, got %+v found=%v err=%v", got, found, err)
	}
}

func TestReuseLedgerRepository_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	repo := NewReuseLedgerRepository()

	ledger := reusecycle.NewLedger("u1", "l1")
	ledger.Drivers.AddUsed("Max Verstappen")

	stored, err := repo.CompareAndSwap(ctx, ledger, 0)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if stored.Version != 1 {
		t.Fatalf("expected version 1, got %d", stored.Version)
	}

	if _, err := repo.CompareAndSwap(ctx, ledger, 0); err == nil {
		t.Fatalf("expected stale insert to conflict")
	}

	stored.Teams.AddUsed("Ferrari")
	next, err := repo.CompareAndSwap(ctx, stored, stored.Version)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if next.Version != 2 {
		t.Fatalf("expected version 2, got %d", next.Version)
	}
}
