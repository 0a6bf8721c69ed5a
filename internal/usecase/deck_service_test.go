package usecase

import (
	"errors"
	"testing"

	"github.com/riskibarqy/fantasy-racing/internal/domain/card"
	"github.com/riskibarqy/fantasy-racing/internal/infrastructure/repository/memory"
)

func TestDeckService_SelectDeck(t *testing.T) {
	e := newEngine(t, utc("2026-03-01T09:00:00Z"))

	view, err := e.decks.SelectDeck(t.Context(), SelectDeckInput{
		UserID:        memory.UserIDChen,
		LeagueID:      memory.LeagueIDPaddock2026,
		DriverCardIDs: validDeckDrivers,
		TeamCardIDs:   validDeckTeams,
	})
	if err != nil {
		t.Fatalf("select deck: %v", err)
	}
	if !view.Complete || view.Locked {
		t.Fatalf("expected a complete unlocked deck, got complete=%v locked=%v", view.Complete, view.Locked)
	}
	if view.Usage.DriverSlotsUsed != 12 || view.Usage.TeamSlotsUsed != 10 {
		t.Fatalf("unexpected slot usage: %+v", view.Usage)
	}
	if view.LockAt == nil || !view.LockAt.Equal(utc("2026-03-07T14:00:00Z")) {
		t.Fatalf("expected lock at first qualifying, got %v", view.LockAt)
	}

	got, err := e.decks.GetDeck(t.Context(), memory.UserIDChen, memory.LeagueIDPaddock2026)
	if err != nil {
		t.Fatalf("get deck: %v", err)
	}
	if len(got.DriverCards) != len(validDeckDrivers) || len(got.TeamCards) != len(validDeckTeams) {
		t.Fatalf("unexpected stored deck: %d driver, %d team cards", len(got.DriverCards), len(got.TeamCards))
	}
}

func TestDeckService_SelectDeck_Violations(t *testing.T) {
	e := newEngine(t, utc("2026-03-01T09:00:00Z"))

	tests := []struct {
		name    string
		drivers []string
		teams   []string
		wantErr error
	}{
		{
			name:    "driver slots short",
			drivers: []string{"drv-shadow", "drv-mystery", "drv-saboteur", "drv-safe-hands"},
			teams:   validDeckTeams,
			wantErr: card.ErrSlotMismatch,
		},
		{
			name:    "three gold driver cards",
			drivers: []string{"drv-double-points", "drv-overtake-king", "drv-pole-hunter"},
			teams:   validDeckTeams,
			wantErr: card.ErrTierLimitExceeded,
		},
		{
			name:    "inactive card",
			drivers: validDeckDrivers,
			teams:   []string{"team-random", "team-rivalry", "team-reliability", "team-ghost", "team-ghost"},
			wantErr: card.ErrInvalidCard,
		},
		{
			name:    "team card in driver list",
			drivers: []string{"team-random", "drv-mystery", "drv-saboteur", "drv-safe-hands", "drv-pit-whisper"},
			teams:   validDeckTeams,
			wantErr: card.ErrInvalidCard,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.decks.SelectDeck(t.Context(), SelectDeckInput{
				UserID:        memory.UserIDChen,
				LeagueID:      memory.LeagueIDPaddock2026,
				DriverCardIDs: tc.drivers,
				TeamCardIDs:   tc.teams,
			})
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			var violation *card.DeckViolationError
			if !errors.As(err, &violation) {
				t.Fatalf("expected deck violation error, got %T", err)
			}
		})
	}
}

func TestDeckService_SelectDeck_LockAndEditMode(t *testing.T) {
	e := newEngine(t, utc("2026-10-17T08:00:00Z"))

	input := SelectDeckInput{
		UserID:        memory.UserIDChen,
		LeagueID:      memory.LeagueIDPaddock2026,
		DriverCardIDs: validDeckDrivers,
		TeamCardIDs:   validDeckTeams,
	}
	if _, err := e.decks.SelectDeck(t.Context(), input); !errors.Is(err, card.ErrDeckLocked) {
		t.Fatalf("expected deck locked, got %v", err)
	}

	input.EditMode = true
	if _, err := e.decks.SelectDeck(t.Context(), input); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected member edit mode to be forbidden, got %v", err)
	}

	input.UserID = memory.UserIDAlice
	view, err := e.decks.SelectDeck(t.Context(), input)
	if err != nil {
		t.Fatalf("owner edit mode: %v", err)
	}
	if !view.Locked {
		t.Fatalf("expected view to report the season lock")
	}
}

func TestDeckService_ListOwnedCards(t *testing.T) {
	e := newEngine(t, utc("2026-03-20T09:00:00Z"))
	e.selectDeckBeforeSeason(t, memory.UserIDAlice)

	sel := e.save(t, memory.UserIDAlice, memory.LeagueIDPaddock2026, "Max Verstappen", "Isack Hadjar", "Red Bull Racing")
	if _, err := e.activations.Activate(t.Context(), ActivateCardsInput{
		UserID:       memory.UserIDAlice,
		SelectionID:  sel.ID,
		DriverCardID: "drv-shadow",
		TargetDriver: "Leclerc",
	}); err != nil {
		t.Fatalf("activate: %v", err)
	}

	cards, err := e.decks.ListOwnedCards(t.Context(), memory.UserIDAlice, memory.LeagueIDPaddock2026)
	if err != nil {
		t.Fatalf("list owned cards: %v", err)
	}
	if len(cards) != 15 {
		t.Fatalf("expected every active card, got %d", len(cards))
	}

	byID := make(map[string]OwnedCard, len(cards))
	for _, c := range cards {
		byID[c.Definition.ID] = c
	}
	if _, ok := byID["team-ghost"]; ok {
		t.Fatalf("inactive card should not be listed")
	}
	shadow := byID["drv-shadow"]
	if !shadow.Selected || !shadow.Used || shadow.UsedRound != 3 {
		t.Fatalf("unexpected drv-shadow state: %+v", shadow)
	}
	if byID["drv-double-points"].Selected {
		t.Fatalf("drv-double-points is not in the deck")
	}
	if cards[0].Definition.Type != card.TypeDriver {
		t.Fatalf("expected driver cards listed first, got %s", cards[0].Definition.Type)
	}
}

func TestDeckService_RequiresMembership(t *testing.T) {
	e := newEngine(t, utc("2026-03-01T09:00:00Z"))

	if _, err := e.decks.GetDeck(t.Context(), "user-outsider", memory.LeagueIDPaddock2026); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := e.decks.ListOwnedCards(t.Context(), memory.UserIDAlice, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
