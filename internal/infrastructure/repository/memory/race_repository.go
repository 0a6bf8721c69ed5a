package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/fantasy-racing/internal/domain/race"
)

type RaceRepository struct {
	mu    sync.RWMutex
	items map[string]race.Race
}

func NewRaceRepository(items []race.Race) *RaceRepository {
	r := &RaceRepository{items: make(map[string]race.Race, len(items))}
	for _, item := range items {
		r.items[item.ID] = cloneRace(item)
	}
	return r
}

func (r *RaceRepository) ListBySeason(_ context.Context, season int) ([]race.Race, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]race.Race, 0, 24)
	for _, item := range r.items {
		if item.Season == season {
			out = append(out, cloneRace(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Round < out[j].Round })
	return out, nil
}

func (r *RaceRepository) GetByID(_ context.Context, raceID string) (race.Race, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[raceID]
	if !ok {
		return race.Race{}, false, nil
	}
	return cloneRace(item), true, nil
}

func (r *RaceRepository) GetBySeasonRound(_ context.Context, season, round int) (race.Race, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.Season == season && item.Round == round {
			return cloneRace(item), true, nil
		}
	}
	return race.Race{}, false, nil
}

// Replace swaps the calendar entry for (season, round), mirroring a calendar
// re-seed that issues new race ids.
func (r *RaceRepository) Replace(item race.Race) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.items {
		if existing.Season == item.Season && existing.Round == item.Round {
			delete(r.items, id)
		}
	}
	r.items[item.ID] = cloneRace(item)
}

func cloneRace(item race.Race) race.Race {
	copied := item
	if item.SprintQualifyingStart != nil {
		v := *item.SprintQualifyingStart
		copied.SprintQualifyingStart = &v
	}
	return copied
}
