package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/riskibarqy/fantasy-racing/internal/domain/selection"
)

type SelectionRepository struct {
	mu    sync.RWMutex
	items map[string]selection.Selection
	byKey map[string]string
}

func NewSelectionRepository() *SelectionRepository {
	return &SelectionRepository{
		items: make(map[string]selection.Selection),
		byKey: make(map[string]string),
	}
}

func (r *SelectionRepository) GetByID(_ context.Context, selectionID string) (selection.Selection, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[selectionID]
	if !ok {
		return selection.Selection{}, false, nil
	}
	return cloneSelection(item), true, nil
}

func (r *SelectionRepository) GetByUserLeagueRound(_ context.Context, userID, leagueID string, round int) (selection.Selection, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[selectionKey(userID, leagueID, round)]
	if !ok {
		return selection.Selection{}, false, nil
	}
	return cloneSelection(r.items[id]), true, nil
}

func (r *SelectionRepository) GetByUserRace(_ context.Context, userID, leagueID, raceID string) (selection.Selection, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.UserID == userID && item.LeagueID == leagueID && item.RaceID == raceID {
			return cloneSelection(item), true, nil
		}
	}
	return selection.Selection{}, false, nil
}

func (r *SelectionRepository) ListByUserLeagueSeason(_ context.Context, userID, leagueID string, season int) ([]selection.Selection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]selection.Selection, 0)
	for _, item := range r.items {
		if item.UserID == userID && item.LeagueID == leagueID && item.Season == season {
			out = append(out, cloneSelection(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Round < out[j].Round })
	return out, nil
}

// Upsert keeps one row per (user, league, round); an existing row keeps its id.
func (r *SelectionRepository) Upsert(_ context.Context, item selection.Selection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := selectionKey(item.UserID, item.LeagueID, item.Round)
	if existingID, ok := r.byKey[key]; ok && existingID != item.ID {
		item.ID = existingID
		item.CreatedAt = r.items[existingID].CreatedAt
	}
	for k, id := range r.byKey {
		if id == item.ID && k != key {
			delete(r.byKey, k)
		}
	}

	r.items[item.ID] = cloneSelection(item)
	r.byKey[key] = item.ID
	return nil
}

func selectionKey(userID, leagueID string, round int) string {
	return userID + "::" + leagueID + "::" + strconv.Itoa(round)
}

func cloneSelection(item selection.Selection) selection.Selection {
	copied := item
	if item.AssignedAt != nil {
		v := *item.AssignedAt
		copied.AssignedAt = &v
	}
	return copied
}
