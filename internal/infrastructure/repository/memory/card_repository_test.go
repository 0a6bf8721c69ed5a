package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/fantasy-racing/internal/domain/card"
)

func usage(cardID string, round int) card.UsageRecord {
	return card.UsageRecord{UserID: "u1", LeagueID: "l1", Season: 2026, CardID: cardID, CardType: card.TypeDriver, RaceID: RaceID(2026, round), Round: round}
}

func activation(round int, driverCardID string) card.Activation {
	return card.Activation{ID: "a-" + RaceID(2026, round), UserID: "u1", LeagueID: "l1", RaceID: RaceID(2026, round), Season: 2026, Round: round, DriverCardID: driverCardID}
}

func TestCardRepository_CommitRejectsSecondUse(t *testing.T) {
	ctx := context.Background()
	repo := NewCardRepository(card.DefaultCatalog())

	if err := repo.Commit(ctx, card.ActivationCommit{Activation: activation(2, "drv-shadow"), Usages: []card.UsageRecord{usage("drv-shadow", 2)}}); err != nil {
		t.Fatalf("first commit: %v", err)
	}

	err := repo.Commit(ctx, card.ActivationCommit{Activation: activation(5, "drv-shadow"), Usages: []card.UsageRecord{usage("drv-shadow", 5)}})
	if !errors.Is(err, card.ErrAlreadyUsedThisSeason) {
		t.Fatalf("expected already used, got %v", err)
	}
	var conflict *card.UsageConflictError
	if !errors.As(err, &conflict) || conflict.Round != 2 {
		t.Fatalf("expected conflict at round 2, got %v", err)
	}

	if _, found, _ := repo.GetByUserLeagueRace(ctx, "u1", "l1", RaceID(2026, 5)); found {
		t.Fatalf("expected rejected commit to leave no activation behind")
	}
}

func TestCardRepository_CommitReleasesReplacedCard(t *testing.T) {
	ctx := context.Background()
	repo := NewCardRepository(card.DefaultCatalog())

	if err := repo.Commit(ctx, card.ActivationCommit{Activation: activation(3, "drv-shadow"), Usages: []card.UsageRecord{usage("drv-shadow", 3)}}); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if err := repo.Commit(ctx, card.ActivationCommit{
		Activation:      activation(3, "drv-safe-hands"),
		ReleasedCardIDs: []string{"drv-shadow"},
		Usages:          []card.UsageRecord{usage("drv-safe-hands", 3)},
	}); err != nil {
		t.Fatalf("replace commit: %v", err)
	}

	usages, err := repo.Usages().ListByUserLeagueSeason(ctx, "u1", "l1", 2026)
	if err != nil {
		t.Fatalf("list usages: %v", err)
	}
	if len(usages) != 1 || usages[0].CardID != "drv-safe-hands" {
		t.Fatalf("expected only the replacement card to be spent, got %+v", usages)
	}

	// the released card is free for a later round
	if err := repo.Commit(ctx, card.ActivationCommit{Activation: activation(4, "drv-shadow"), Usages: []card.UsageRecord{usage("drv-shadow", 4)}}); err != nil {
		t.Fatalf("reuse released card: %v", err)
	}
}

func TestCardRepository_ReplaceSelection(t *testing.T) {
	ctx := context.Background()
	repo := NewCardRepository(card.DefaultCatalog())

	first := []card.DeckEntry{
		{UserID: "u1", LeagueID: "l1", Season: 2026, CardID: "drv-shadow", CardType: card.TypeDriver},
		{UserID: "u1", LeagueID: "l1", Season: 2026, CardID: "drv-mystery", CardType: card.TypeDriver},
	}
	if err := repo.ReplaceSelection(ctx, "u1", "l1", 2026, first); err != nil {
		t.Fatalf("replace: %v", err)
	}
	second := []card.DeckEntry{
		{UserID: "u1", LeagueID: "l1", Season: 2026, CardID: "drv-mystery", CardType: card.TypeDriver},
	}
	if err := repo.ReplaceSelection(ctx, "u1", "l1", 2026, second); err != nil {
		t.Fatalf("replace: %v", err)
	}

	entries, err := repo.ListByUserLeagueSeason(ctx, "u1", "l1", 2026)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected owned cards to be kept, got %d", len(entries))
	}
	for _, e := range entries {
		if want := e.CardID == "drv-mystery"; e.Selected != want {
			t.Fatalf("card %s selected=%v, want %v", e.CardID, e.Selected, want)
		}
	}
}
