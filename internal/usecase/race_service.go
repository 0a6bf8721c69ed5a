package usecase

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/riskibarqy/fantasy-racing/internal/domain/league"
	"github.com/riskibarqy/fantasy-racing/internal/domain/race"
)

// RaceSchedule is a calendar entry with its selection lock state.
type RaceSchedule struct {
	Race   race.Race
	LockAt time.Time
	Locked bool
	IsNext bool
}

type RaceService struct {
	leagueRepo league.Repository
	raceRepo   race.Repository
	now        func() time.Time
}

func NewRaceService(leagueRepo league.Repository, raceRepo race.Repository) *RaceService {
	return &RaceService{
		leagueRepo: leagueRepo,
		raceRepo:   raceRepo,
		now:        time.Now,
	}
}

func (s *RaceService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *RaceService) ListByLeague(ctx context.Context, leagueID string) ([]RaceSchedule, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RaceService.ListByLeague", leagueAttr(leagueID))
	defer span.End()

	lg, err := loadLeague(ctx, s.leagueRepo, leagueID)
	if err != nil {
		return nil, err
	}

	races, err := s.raceRepo.ListBySeason(ctx, lg.Season)
	if err != nil {
		return nil, fmt.Errorf("list races by season: %w", err)
	}
	slices.SortFunc(races, func(a, b race.Race) int { return a.Round - b.Round })

	now := s.now().UTC()
	next, hasNext := race.NextRace(races, now)

	out := make([]RaceSchedule, 0, len(races))
	for _, item := range races {
		out = append(out, RaceSchedule{
			Race:   item,
			LockAt: race.LockTime(item.Timing(), race.SelectionLockMarginMinutes),
			Locked: race.IsLocked(now, item.Timing(), race.SelectionLockMarginMinutes),
			IsNext: hasNext && item.ID == next.ID,
		})
	}
	return out, nil
}
