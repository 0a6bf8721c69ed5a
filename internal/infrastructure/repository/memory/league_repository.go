package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/fantasy-racing/internal/domain/league"
)

type LeagueRepository struct {
	mu      sync.RWMutex
	items   map[string]league.League
	members map[string]map[string]league.Member
}

func NewLeagueRepository(items []league.League, members []league.Member) *LeagueRepository {
	r := &LeagueRepository{
		items:   make(map[string]league.League, len(items)),
		members: make(map[string]map[string]league.Member),
	}
	for _, item := range items {
		r.items[item.ID] = item
	}
	for _, m := range members {
		r.addMember(m)
	}
	return r
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[leagueID]
	return item, ok, nil
}

func (r *LeagueRepository) GetMember(_ context.Context, leagueID, userID string) (league.Member, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.members[leagueID][userID]
	return m, ok, nil
}

func (r *LeagueRepository) ListMembers(_ context.Context, leagueID string) ([]league.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.Member, 0, len(r.members[leagueID]))
	for _, m := range r.members[leagueID] {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// AddMember registers a membership; used by seeds and tests.
func (r *LeagueRepository) AddMember(m league.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addMember(m)
}

func (r *LeagueRepository) addMember(m league.Member) {
	if r.members[m.LeagueID] == nil {
		r.members[m.LeagueID] = make(map[string]league.Member)
	}
	r.members[m.LeagueID][m.UserID] = m
}
