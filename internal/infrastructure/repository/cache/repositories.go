package cache

import (
	"context"
	"strconv"

	"github.com/riskibarqy/fantasy-racing/internal/domain/card"
	"github.com/riskibarqy/fantasy-racing/internal/domain/league"
	"github.com/riskibarqy/fantasy-racing/internal/domain/race"
	basecache "github.com/riskibarqy/fantasy-racing/internal/platform/cache"
)

type found[T any] struct {
	value  T
	exists bool
}

type LeagueRepository struct {
	next  league.Repository
	cache *basecache.Store
}

func NewLeagueRepository(next league.Repository, cache *basecache.Store) *LeagueRepository {
	return &LeagueRepository{next: next, cache: cache}
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	v, err := basecache.Load(ctx, r.cache, "league:id:"+leagueID, func(ctx context.Context) (found[league.League], error) {
		item, exists, err := r.next.GetByID(ctx, leagueID)
		return found[league.League]{value: item, exists: exists}, err
	})
	if err != nil {
		return league.League{}, false, err
	}
	return v.value, v.exists, nil
}

func (r *LeagueRepository) GetMember(ctx context.Context, leagueID, userID string) (league.Member, bool, error) {
	v, err := basecache.Load(ctx, r.cache, "league:member:"+leagueID+":"+userID, func(ctx context.Context) (found[league.Member], error) {
		item, exists, err := r.next.GetMember(ctx, leagueID, userID)
		return found[league.Member]{value: item, exists: exists}, err
	})
	if err != nil {
		return league.Member{}, false, err
	}
	return v.value, v.exists, nil
}

func (r *LeagueRepository) ListMembers(ctx context.Context, leagueID string) ([]league.Member, error) {
	items, err := basecache.Load(ctx, r.cache, "league:members:"+leagueID, func(ctx context.Context) ([]league.Member, error) {
		return r.next.ListMembers(ctx, leagueID)
	})
	if err != nil {
		return nil, err
	}
	return append([]league.Member(nil), items...), nil
}

// InvalidateLeague drops every cached entry of leagueID, memberships included.
func (r *LeagueRepository) InvalidateLeague(ctx context.Context, leagueID string) {
	r.cache.Delete(ctx, "league:id:"+leagueID)
	r.cache.Delete(ctx, "league:members:"+leagueID)
	r.cache.DeletePrefix(ctx, "league:member:"+leagueID+":")
}

// RaceRepository caches the calendar. Lock times derive from these rows, so
// callers that rewrite the calendar must call InvalidateSeason.
type RaceRepository struct {
	next  race.Repository
	cache *basecache.Store
}

func NewRaceRepository(next race.Repository, cache *basecache.Store) *RaceRepository {
	return &RaceRepository{next: next, cache: cache}
}

func (r *RaceRepository) ListBySeason(ctx context.Context, season int) ([]race.Race, error) {
	items, err := basecache.Load(ctx, r.cache, seasonKey(season)+"list", func(ctx context.Context) ([]race.Race, error) {
		return r.next.ListBySeason(ctx, season)
	})
	if err != nil {
		return nil, err
	}
	return append([]race.Race(nil), items...), nil
}

func (r *RaceRepository) GetByID(ctx context.Context, raceID string) (race.Race, bool, error) {
	v, err := basecache.Load(ctx, r.cache, "race:id:"+raceID, func(ctx context.Context) (found[race.Race], error) {
		item, exists, err := r.next.GetByID(ctx, raceID)
		return found[race.Race]{value: item, exists: exists}, err
	})
	if err != nil {
		return race.Race{}, false, err
	}
	return v.value, v.exists, nil
}

func (r *RaceRepository) GetBySeasonRound(ctx context.Context, season, round int) (race.Race, bool, error) {
	key := seasonKey(season) + "round:" + strconv.Itoa(round)
	v, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) (found[race.Race], error) {
		item, exists, err := r.next.GetBySeasonRound(ctx, season, round)
		return found[race.Race]{value: item, exists: exists}, err
	})
	if err != nil {
		return race.Race{}, false, err
	}
	return v.value, v.exists, nil
}

func (r *RaceRepository) InvalidateSeason(ctx context.Context, season int) {
	r.cache.DeletePrefix(ctx, seasonKey(season))
	r.cache.DeletePrefix(ctx, "race:id:")
}

func seasonKey(season int) string {
	return "race:season:" + strconv.Itoa(season) + ":"
}

// CardCatalogRepository serves the static card catalog from one cached list.
type CardCatalogRepository struct {
	next  card.CatalogRepository
	cache *basecache.Store
}

func NewCardCatalogRepository(next card.CatalogRepository, cache *basecache.Store) *CardCatalogRepository {
	return &CardCatalogRepository{next: next, cache: cache}
}

func (r *CardCatalogRepository) List(ctx context.Context) ([]card.Definition, error) {
	items, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]card.Definition(nil), items...), nil
}

func (r *CardCatalogRepository) GetByIDs(ctx context.Context, cardIDs []string) ([]card.Definition, error) {
	items, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]card.Definition, len(items))
	for _, def := range items {
		byID[def.ID] = def
	}
	out := make([]card.Definition, 0, len(cardIDs))
	for _, id := range cardIDs {
		if def, ok := byID[id]; ok {
			out = append(out, def)
		}
	}
	return out, nil
}

func (r *CardCatalogRepository) load(ctx context.Context) ([]card.Definition, error) {
	return basecache.Load(ctx, r.cache, "card:catalog", func(ctx context.Context) ([]card.Definition, error) {
		return r.next.List(ctx)
	})
}
