package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/riskibarqy/fantasy-racing/internal/domain/card"
)

// CardRepository holds the catalog, decks, usage and activations behind one
// lock so ActivationCommit applies as a unit.
type CardRepository struct {
	mu          sync.RWMutex
	catalog     map[string]card.Definition
	decks       map[string]card.DeckEntry
	usages      map[string]card.UsageRecord
	activations map[string]card.Activation
}

func NewCardRepository(catalog []card.Definition) *CardRepository {
	r := &CardRepository{
		catalog:     make(map[string]card.Definition, len(catalog)),
		decks:       make(map[string]card.DeckEntry),
		usages:      make(map[string]card.UsageRecord),
		activations: make(map[string]card.Activation),
	}
	for _, def := range catalog {
		r.catalog[def.ID] = def
	}
	return r
}

func (r *CardRepository) List(_ context.Context) ([]card.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]card.Definition, 0, len(r.catalog))
	for _, def := range r.catalog {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CardRepository) GetByIDs(_ context.Context, cardIDs []string) ([]card.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]card.Definition, 0, len(cardIDs))
	for _, id := range cardIDs {
		if def, ok := r.catalog[id]; ok {
			out = append(out, def)
		}
	}
	return out, nil
}

func (r *CardRepository) ListByUserLeagueSeason(_ context.Context, userID, leagueID string, season int) ([]card.DeckEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefix := seasonKey(userID, leagueID, season)
	out := make([]card.DeckEntry, 0)
	for key, entry := range r.decks {
		if strings.HasPrefix(key, prefix) {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CardID < out[j].CardID })
	return out, nil
}

func (r *CardRepository) ReplaceSelection(_ context.Context, userID, leagueID string, season int, entries []card.DeckEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := seasonKey(userID, leagueID, season)
	for key, entry := range r.decks {
		if strings.HasPrefix(key, prefix) && entry.Selected {
			entry.Selected = false
			r.decks[key] = entry
		}
	}
	for _, entry := range entries {
		entry.Selected = true
		r.decks[cardKey(entry.UserID, entry.LeagueID, entry.Season, entry.CardID)] = entry
	}
	return nil
}

// Usages exposes the usage ledger as a card.UsageRepository.
func (r *CardRepository) Usages() *CardUsageView {
	return &CardUsageView{repo: r}
}

type CardUsageView struct {
	repo *CardRepository
}

func (v *CardUsageView) ListByUserLeagueSeason(_ context.Context, userID, leagueID string, season int) ([]card.UsageRecord, error) {
	v.repo.mu.RLock()
	defer v.repo.mu.RUnlock()

	prefix := seasonKey(userID, leagueID, season)
	out := make([]card.UsageRecord, 0)
	for key, u := range v.repo.usages {
		if strings.HasPrefix(key, prefix) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].CardID < out[j].CardID
	})
	return out, nil
}

func (r *CardRepository) GetByUserLeagueRace(_ context.Context, userID, leagueID, raceID string) (card.Activation, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.activations[activationKey(userID, leagueID, raceID)]
	return item, ok, nil
}

func (r *CardRepository) Commit(_ context.Context, commit card.ActivationCommit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := commit.Activation
	for _, u := range commit.Usages {
		existing, ok := r.usages[cardKey(u.UserID, u.LeagueID, u.Season, u.CardID)]
		if ok && existing.Round != u.Round {
			return &card.UsageConflictError{CardID: u.CardID, Round: existing.Round}
		}
	}

	for _, cardID := range commit.ReleasedCardIDs {
		key := cardKey(a.UserID, a.LeagueID, a.Season, cardID)
		if existing, ok := r.usages[key]; ok && existing.Round == a.Round {
			delete(r.usages, key)
		}
	}
	for _, u := range commit.Usages {
		key := cardKey(u.UserID, u.LeagueID, u.Season, u.CardID)
		if _, ok := r.usages[key]; ok {
			continue
		}
		r.usages[key] = u
	}
	r.activations[activationKey(a.UserID, a.LeagueID, a.RaceID)] = a
	return nil
}

func seasonKey(userID, leagueID string, season int) string {
	return userID + "::" + leagueID + "::" + strconv.Itoa(season) + "::"
}

func cardKey(userID, leagueID string, season int, cardID string) string {
	return seasonKey(userID, leagueID, season) + cardID
}

func activationKey(userID, leagueID, raceID string) string {
	return userID + "::" + leagueID + "::" + raceID
}
