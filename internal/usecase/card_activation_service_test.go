package usecase

import (
	"errors"
	"testing"

	"github.com/riskibarqy/fantasy-racing/internal/domain/card"
	"github.com/riskibarqy/fantasy-racing/internal/infrastructure/repository/memory"
)

func TestCardActivationService_Activate(t *testing.T) {
	e := newEngine(t, utc("2026-03-20T09:00:00Z"))
	e.selectDeckBeforeSeason(t, memory.UserIDAlice)
	sel := e.save(t, memory.UserIDAlice, memory.LeagueIDPaddock2026, "Max Verstappen", "Isack Hadjar", "Red Bull Racing")

	view, err := e.activations.Activate(t.Context(), ActivateCardsInput{
		UserID:       memory.UserIDAlice,
		SelectionID:  sel.ID,
		DriverCardID: "drv-shadow",
		TargetDriver: "leclerc",
		TeamCardID:   "team-rivalry",
		TargetTeam:   "Scuderia Ferrari",
	})
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if view.Activation.TargetDriver != "Charles Leclerc" || view.Activation.TargetTeam != "Ferrari" {
		t.Fatalf("expected canonical targets, got driver=%q team=%q", view.Activation.TargetDriver, view.Activation.TargetTeam)
	}
	if view.Activation.Round != 3 || view.Race.ID != memory.RaceID(2026, 3) {
		t.Fatalf("unexpected race on activation: round=%d race=%s", view.Activation.Round, view.Race.ID)
	}
	if view.DriverCard == nil || view.DriverCard.ID != "drv-shadow" {
		t.Fatalf("expected resolved driver card, got %+v", view.DriverCard)
	}

	got, err := e.activations.GetActivation(t.Context(), memory.UserIDChen, sel.ID)
	if err != nil {
		t.Fatalf("get activation as league member: %v", err)
	}
	if !got.Exists || got.Activation.ID != view.Activation.ID {
		t.Fatalf("expected stored activation, got %+v", got.Activation)
	}
}

func TestCardActivationService_Activate_SecondUseConflicts(t *testing.T) {
	e := newEngine(t, utc("2026-03-20T09:00:00Z"))
	e.selectDeckBeforeSeason(t, memory.UserIDAlice)
	round3 := e.save(t, memory.UserIDAlice, memory.LeagueIDPaddock2026, "Max Verstappen", "Isack Hadjar", "Red Bull Racing")

	if _, err := e.activations.Activate(t.Context(), ActivateCardsInput{
		UserID:       memory.UserIDAlice,
		SelectionID:  round3.ID,
		DriverCardID: "drv-shadow",
		TargetDriver: "Leclerc",
	}); err != nil {
		t.Fatalf("activate round 3: %v", err)
	}

	e.clock.Set(utc("2026-04-05T09:00:00Z"))
	round4 := e.save(t, memory.UserIDAlice, memory.LeagueIDPaddock2026, "Lando Norris", "Oscar Piastri", "McLaren")
	_, err := e.activations.Activate(t.Context(), ActivateCardsInput{
		UserID:       memory.UserIDAlice,
		SelectionID:  round4.ID,
		DriverCardID: "drv-shadow",
		TargetDriver: "Leclerc",
	})
	if !errors.Is(err, card.ErrAlreadyUsedThisSeason) {
		t.Fatalf("expected already used this season, got %v", err)
	}
	var conflict *card.UsageConflictError
	if !errors.As(err, &conflict) || conflict.Round != 3 || conflict.CardID != "drv-shadow" {
		t.Fatalf("expected conflict pointing at round 3, got %v", err)
	}
}

func TestCardActivationService_Activate_EditReleasesCard(t *testing.T) {
	e := newEngine(t, utc("2026-03-20T09:00:00Z"))
	e.selectDeckBeforeSeason(t, memory.UserIDAlice)
	round3 := e.save(t, memory.UserIDAlice, memory.LeagueIDPaddock2026, "Max Verstappen", "Isack Hadjar", "Red Bull Racing")

	first, err := e.activations.Activate(t.Context(), ActivateCardsInput{
		UserID:       memory.UserIDAlice,
		SelectionID:  round3.ID,
		DriverCardID: "drv-shadow",
		TargetDriver: "Leclerc",
	})
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	edited, err := e.activations.Activate(t.Context(), ActivateCardsInput{
		UserID:       memory.UserIDAlice,
		SelectionID:  round3.ID,
		DriverCardID: "drv-saboteur",
		TargetPlayer: memory.UserIDChen,
	})
	if err != nil {
		t.Fatalf("edit activation: %v", err)
	}
	if edited.Activation.ID != first.Activation.ID {
		t.Fatalf("expected edit to keep activation id %s, got %s", first.Activation.ID, edited.Activation.ID)
	}
	if edited.Activation.TargetDriver != "" {
		t.Fatalf("expected stale driver target to be dropped, got %q", edited.Activation.TargetDriver)
	}

	e.clock.Set(utc("2026-04-05T09:00:00Z"))
	round4 := e.save(t, memory.UserIDAlice, memory.LeagueIDPaddock2026, "Lando Norris", "Oscar Piastri", "McLaren")
	if _, err := e.activations.Activate(t.Context(), ActivateCardsInput{
		UserID:       memory.UserIDAlice,
		SelectionID:  round4.ID,
		DriverCardID: "drv-shadow",
		TargetDriver: "Leclerc",
	}); err != nil {
		t.Fatalf("expected released card to be usable again, got %v", err)
	}
}

func TestCardActivationService_Activate_TransformationsAreStable(t *testing.T) {
	e := newEngine(t, utc("2026-03-20T09:00:00Z"))
	e.selectDeckBeforeSeason(t, memory.UserIDAlice)
	sel := e.save(t, memory.UserIDAlice, memory.LeagueIDPaddock2026, "Max Verstappen", "Isack Hadjar", "Red Bull Racing")

	input := ActivateCardsInput{
		UserID:       memory.UserIDAlice,
		SelectionID:  sel.ID,
		DriverCardID: "drv-mystery",
	}
	first, err := e.activations.Activate(t.Context(), input)
	if err != nil {
		t.Fatalf("activate mystery: %v", err)
	}
	if first.Activation.MysteryTransformedCardID != "drv-double-points" {
		t.Fatalf("expected first candidate, got %q", first.Activation.MysteryTransformedCardID)
	}
	if first.MysteryTransformed == nil || first.MysteryTransformed.ID != "drv-double-points" {
		t.Fatalf("expected resolved transformed card, got %+v", first.MysteryTransformed)
	}

	e.random.next = 3
	again, err := e.activations.Activate(t.Context(), input)
	if err != nil {
		t.Fatalf("repeat activation: %v", err)
	}
	if again.Activation.MysteryTransformedCardID != first.Activation.MysteryTransformedCardID {
		t.Fatalf("mystery card changed on repeat: %q", again.Activation.MysteryTransformedCardID)
	}

	input.TeamCardID = "team-random"
	withTeam, err := e.activations.Activate(t.Context(), input)
	if err != nil {
		t.Fatalf("add team card: %v", err)
	}
	if withTeam.Activation.MysteryTransformedCardID != "drv-double-points" {
		t.Fatalf("mystery card redrawn when only the team card changed: %q", withTeam.Activation.MysteryTransformedCardID)
	}
	if withTeam.Activation.RandomTransformedCardID == "" {
		t.Fatalf("expected random card transformation")
	}
	if e.random.draws != 2 {
		t.Fatalf("expected one draw per transforming card, got %d", e.random.draws)
	}

	stored, err := e.activations.GetActivation(t.Context(), memory.UserIDAlice, sel.ID)
	if err != nil {
		t.Fatalf("get activation: %v", err)
	}
	if stored.DriverCard == nil || stored.DriverCard.ID != "drv-mystery" || stored.TeamCard == nil || stored.TeamCard.ID != "team-random" {
		t.Fatalf("expected both activated cards resolved, got driver=%+v team=%+v", stored.DriverCard, stored.TeamCard)
	}
	if stored.MysteryTransformed == nil || stored.MysteryTransformed.ID != "drv-double-points" {
		t.Fatalf("expected stored mystery outcome resolved, got %+v", stored.MysteryTransformed)
	}
	if stored.RandomTransformed == nil || stored.RandomTransformed.ID != withTeam.Activation.RandomTransformedCardID {
		t.Fatalf("expected stored random outcome resolved, got %+v", stored.RandomTransformed)
	}
	if e.random.draws != 2 {
		t.Fatalf("expected reading the activation not to draw, got %d draws", e.random.draws)
	}
}

func TestCardActivationService_Activate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		now     string
		league  string
		userID  string
		picks   [3]string
		at      string
		input   func(selectionID string) ActivateCardsInput
		wantErr error
	}{
		{
			name:   "sprint weekend",
			now:    "2026-10-05T08:00:00Z",
			league: memory.LeagueIDPaddock2026,
			userID: memory.UserIDAlice,
			picks:  [3]string{"Max Verstappen", "Isack Hadjar", "Red Bull Racing"},
			input: func(id string) ActivateCardsInput {
				return ActivateCardsInput{UserID: memory.UserIDAlice, SelectionID: id, DriverCardID: "drv-pit-whisper"}
			},
			wantErr: card.ErrCardsUnavailable,
		},
		{
			name:   "season before cards",
			now:    "2025-03-30T10:00:00Z",
			league: memory.LeagueIDClassic2025,
			userID: memory.UserIDChen,
			picks:  [3]string{"Max Verstappen", "Yuki Tsunoda", "Red Bull Racing"},
			input: func(id string) ActivateCardsInput {
				return ActivateCardsInput{UserID: memory.UserIDChen, SelectionID: id, DriverCardID: "drv-pit-whisper"}
			},
			wantErr: card.ErrCardsUnavailable,
		},
		{
			name:   "inside card lock margin",
			now:    "2026-03-20T09:00:00Z",
			at:     "2026-03-28T13:58:00Z",
			league: memory.LeagueIDPaddock2026,
			userID: memory.UserIDAlice,
			picks:  [3]string{"Max Verstappen", "Isack Hadjar", "Red Bull Racing"},
			input: func(id string) ActivateCardsInput {
				return ActivateCardsInput{UserID: memory.UserIDAlice, SelectionID: id, DriverCardID: "drv-pit-whisper"}
			},
			wantErr: card.ErrDeadlinePassed,
		},
		{
			name:   "card not in deck",
			now:    "2026-03-20T09:00:00Z",
			league: memory.LeagueIDPaddock2026,
			userID: memory.UserIDAlice,
			picks:  [3]string{"Max Verstappen", "Isack Hadjar", "Red Bull Racing"},
			input: func(id string) ActivateCardsInput {
				return ActivateCardsInput{UserID: memory.UserIDAlice, SelectionID: id, DriverCardID: "drv-double-points"}
			},
			wantErr: card.ErrNotInDeck,
		},
		{
			name:   "missing target",
			now:    "2026-03-20T09:00:00Z",
			league: memory.LeagueIDPaddock2026,
			userID: memory.UserIDAlice,
			picks:  [3]string{"Max Verstappen", "Isack Hadjar", "Red Bull Racing"},
			input: func(id string) ActivateCardsInput {
				return ActivateCardsInput{UserID: memory.UserIDAlice, SelectionID: id, DriverCardID: "drv-shadow"}
			},
			wantErr: card.ErrTargetRequired,
		},
		{
			name:   "target player outside league",
			now:    "2026-03-20T09:00:00Z",
			league: memory.LeagueIDPaddock2026,
			userID: memory.UserIDAlice,
			picks:  [3]string{"Max Verstappen", "Isack Hadjar", "Red Bull Racing"},
			input: func(id string) ActivateCardsInput {
				return ActivateCardsInput{UserID: memory.UserIDAlice, SelectionID: id, DriverCardID: "drv-saboteur", TargetPlayer: "user-outsider"}
			},
			wantErr: ErrInvalidInput,
		},
		{
			name:   "team card in driver slot",
			now:    "2026-03-20T09:00:00Z",
			league: memory.LeagueIDPaddock2026,
			userID: memory.UserIDAlice,
			picks:  [3]string{"Max Verstappen", "Isack Hadjar", "Red Bull Racing"},
			input: func(id string) ActivateCardsInput {
				return ActivateCardsInput{UserID: memory.UserIDAlice, SelectionID: id, DriverCardID: "team-random"}
			},
			wantErr: card.ErrInvalidCard,
		},
		{
			name:   "selection of another user",
			now:    "2026-03-20T09:00:00Z",
			league: memory.LeagueIDPaddock2026,
			userID: memory.UserIDAlice,
			picks:  [3]string{"Max Verstappen", "Isack Hadjar", "Red Bull Racing"},
			input: func(id string) ActivateCardsInput {
				return ActivateCardsInput{UserID: memory.UserIDBruno, SelectionID: id, DriverCardID: "drv-pit-whisper"}
			},
			wantErr: ErrForbidden,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newEngine(t, utc(tc.now))
			if tc.league == memory.LeagueIDPaddock2026 {
				e.selectDeckBeforeSeason(t, tc.userID)
			}
			sel := e.save(t, tc.userID, tc.league, tc.picks[0], tc.picks[1], tc.picks[2])
			if tc.at != "" {
				e.clock.Set(utc(tc.at))
			}

			_, err := e.activations.Activate(t.Context(), tc.input(sel.ID))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCardActivationService_GetActivation(t *testing.T) {
	e := newEngine(t, utc("2026-03-20T09:00:00Z"))
	sel := e.save(t, memory.UserIDChen, memory.LeagueIDPaddock2026, "Max Verstappen", "Isack Hadjar", "Red Bull Racing")

	view, err := e.activations.GetActivation(t.Context(), memory.UserIDChen, sel.ID)
	if err != nil {
		t.Fatalf("get empty activation: %v", err)
	}
	if view.Exists || view.Activation.SelectionID != sel.ID || view.Activation.Round != 3 {
		t.Fatalf("unexpected empty view: %+v", view)
	}

	if _, err := e.activations.GetActivation(t.Context(), "user-outsider", sel.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for outsider, got %v", err)
	}
	if _, err := e.activations.GetActivation(t.Context(), memory.UserIDChen, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCardActivationService_Activate_ClearWithoutExisting(t *testing.T) {
	e := newEngine(t, utc("2026-03-20T09:00:00Z"))
	sel := e.save(t, memory.UserIDChen, memory.LeagueIDPaddock2026, "Max Verstappen", "Isack Hadjar", "Red Bull Racing")

	view, err := e.activations.Activate(t.Context(), ActivateCardsInput{UserID: memory.UserIDChen, SelectionID: sel.ID})
	if err != nil {
		t.Fatalf("clear activation: %v", err)
	}
	if view.Exists {
		t.Fatalf("expected no stored activation")
	}
	if _, exists, _ := e.cards.GetByUserLeagueRace(t.Context(), memory.UserIDChen, memory.LeagueIDPaddock2026, sel.RaceID); exists {
		t.Fatalf("clearing without an activation should not write one")
	}
}
