package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/riskibarqy/fantasy-racing/internal/domain/scoring"
)

type RaceResultRepository struct {
	mu    sync.RWMutex
	items map[string]scoring.RaceResult
}

func NewRaceResultRepository(items []scoring.RaceResult) *RaceResultRepository {
	r := &RaceResultRepository{items: make(map[string]scoring.RaceResult, len(items))}
	for _, item := range items {
		r.items[resultKey(item.Season, item.Round)] = item
	}
	return r
}

func (r *RaceResultRepository) GetRaceResult(_ context.Context, season, round int) (scoring.RaceResult, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[resultKey(season, round)]
	if !ok {
		return scoring.RaceResult{}, false, nil
	}
	item.Results = append([]scoring.DriverResult(nil), item.Results...)
	return item, true, nil
}

func (r *RaceResultRepository) Put(item scoring.RaceResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[resultKey(item.Season, item.Round)] = item
}

func resultKey(season, round int) string {
	return strconv.Itoa(season) + "::" + strconv.Itoa(round)
}
