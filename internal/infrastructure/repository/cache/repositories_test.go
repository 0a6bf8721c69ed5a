package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-racing/internal/domain/card"
	"github.com/riskibarqy/fantasy-racing/internal/domain/league"
	"github.com/riskibarqy/fantasy-racing/internal/domain/race"
	"github.com/riskibarqy/fantasy-racing/internal/infrastructure/repository/memory"
	basecache "github.com/riskibarqy/fantasy-racing/internal/platform/cache"
)

type countingRaceRepo struct {
	race.Repository
	listCalls  int
	roundCalls int
	fail       error
}

func (r *countingRaceRepo) ListBySeason(ctx context.Context, season int) ([]race.Race, error) {
	r.listCalls++
	if r.fail != nil {
		return nil, r.fail
	}
	return r.Repository.ListBySeason(ctx, season)
}

func (r *countingRaceRepo) GetBySeasonRound(ctx context.Context, season, round int) (race.Race, bool, error) {
	r.roundCalls++
	return r.Repository.GetBySeasonRound(ctx, season, round)
}

func TestRaceRepository_CachesAndInvalidates(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewRaceRepository(memory.SeedRaces())
	counting := &countingRaceRepo{Repository: inner}
	repo := NewRaceRepository(counting, basecache.NewStore(time.Minute))

	for i := 0; i < 3; i++ {
		items, err := repo.ListBySeason(ctx, 2026)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(items) != 24 {
			t.Fatalf("expected 24 races, got %d", len(items))
		}
	}
	if counting.listCalls != 1 {
		t.Fatalf("expected one backend call, got %d", counting.listCalls)
	}

	for i := 0; i < 2; i++ {
		_, exists, err := repo.GetBySeasonRound(ctx, 2026, 40)
		if err != nil || exists {
			t.Fatalf("round 40: exists=%v err=%v", exists, err)
		}
	}
	if counting.roundCalls != 1 {
		t.Fatalf("expected missing rounds to be cached, got %d calls", counting.roundCalls)
	}

	repo.InvalidateSeason(ctx, 2026)
	if _, err := repo.ListBySeason(ctx, 2026); err != nil {
		t.Fatalf("list after invalidate: %v", err)
	}
	if counting.listCalls != 2 {
		t.Fatalf("expected reload after invalidation, got %d calls", counting.listCalls)
	}
}

func TestRaceRepository_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	counting := &countingRaceRepo{Repository: memory.NewRaceRepository(memory.SeedRaces()), fail: errors.New("db down")}
	repo := NewRaceRepository(counting, basecache.NewStore(time.Minute))

	if _, err := repo.ListBySeason(ctx, 2026); err == nil {
		t.Fatalf("expected error")
	}
	counting.fail = nil
	if _, err := repo.ListBySeason(ctx, 2026); err != nil {
		t.Fatalf("list after recovery: %v", err)
	}
	if counting.listCalls != 2 {
		t.Fatalf("expected failed load to be retried, got %d calls", counting.listCalls)
	}
}

func TestLeagueRepository_InvalidateLeague(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewLeagueRepository(memory.SeedLeagues(), memory.SeedMembers())
	repo := NewLeagueRepository(inner, basecache.NewStore(time.Minute))

	if _, exists, _ := repo.GetMember(ctx, memory.LeagueIDPaddock2026, "user-erin"); exists {
		t.Fatalf("unexpected member")
	}
	inner.AddMember(league.Member{LeagueID: memory.LeagueIDPaddock2026, UserID: "user-erin", Role: league.RoleMember})

	if _, exists, _ := repo.GetMember(ctx, memory.LeagueIDPaddock2026, "user-erin"); exists {
		t.Fatalf("expected cached miss before invalidation")
	}
	repo.InvalidateLeague(ctx, memory.LeagueIDPaddock2026)
	if _, exists, _ := repo.GetMember(ctx, memory.LeagueIDPaddock2026, "user-erin"); !exists {
		t.Fatalf("expected member after invalidation")
	}

	members, err := repo.ListMembers(ctx, memory.LeagueIDPaddock2026)
	if err != nil || len(members) != 5 {
		t.Fatalf("members=%d err=%v, want 5", len(members), err)
	}
}

func TestCardCatalogRepository_GetByIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewCardCatalogRepository(memory.NewCardRepository(card.DefaultCatalog()), basecache.NewStore(time.Minute))

	got, err := repo.GetByIDs(ctx, []string{"drv-double-points", "missing", "team-random"})
	if err != nil {
		t.Fatalf("get by ids: %v", err)
	}
	if len(got) != 2 || got[0].ID != "drv-double-points" || got[1].ID != "team-random" {
		t.Fatalf("unexpected cards %+v", got)
	}
}
