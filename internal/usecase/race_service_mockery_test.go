package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/fantasy-racing/internal/domain/league"
	"github.com/riskibarqy/fantasy-racing/internal/domain/race"
	leaguemock "github.com/riskibarqy/fantasy-racing/internal/mocks/domain/league"
	racemock "github.com/riskibarqy/fantasy-racing/internal/mocks/domain/race"
)

func TestRaceService_ListByLeague_UsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), "trace_id", "trace-789")
	leagueRepo := leaguemock.NewRepository(t)
	raceRepo := racemock.NewRepository(t)

	service := NewRaceService(leagueRepo, raceRepo)
	service.now = func() time.Time { return time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC) }

	leagueRepo.
		On("GetByID", mock.MatchedBy(func(v context.Context) bool { return v != nil }), "league-1").
		Return(league.League{ID: "league-1", Season: 2026}, true, nil).
		Once()
	raceRepo.
		On("ListBySeason", mock.Anything, 2026).
		Return([]race.Race{
			{ID: "r2", Season: 2026, Round: 2, QualifyingStart: time.Date(2026, 3, 28, 14, 0, 0, 0, time.UTC)},
			{ID: "r1", Season: 2026, Round: 1, QualifyingStart: time.Date(2026, 3, 7, 14, 0, 0, 0, time.UTC)},
		}, nil).
		Once()

	got, err := service.ListByLeague(ctx, "league-1")
	if err != nil {
		t.Fatalf("list races: %v", err)
	}
	if len(got) != 2 || got[0].Race.ID != "r1" {
		t.Fatalf("expected rounds in order, got %+v", got)
	}
	if !got[0].Locked || got[1].Locked || !got[1].IsNext {
		t.Fatalf("unexpected lock state: %+v", got)
	}
}

func TestRaceService_ListByLeague_RepositoryErrorUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	leagueRepo := leaguemock.NewRepository(t)
	raceRepo := racemock.NewRepository(t)
	service := NewRaceService(leagueRepo, raceRepo)

	dbErr := errors.New("connection reset")
	leagueRepo.
		On("GetByID", mock.Anything, "league-1").
		Return(league.League{ID: "league-1", Season: 2026}, true, nil).
		Once()
	raceRepo.
		On("ListBySeason", mock.Anything, 2026).
		Return(nil, dbErr).
		Once()

	_, err := service.ListByLeague(ctx, "league-1")
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected repository error, got %v", err)
	}
}

func TestRequireAdmin_UsingMockery(t *testing.T) {
	t.Parallel()

	lg := league.League{ID: "league-1", Season: 2026, OwnerUserID: "owner"}
	tests := []struct {
		name    string
		member  league.Member
		found   bool
		wantErr error
	}{
		{name: "admin", member: league.Member{Role: league.RoleAdmin}, found: true},
		{name: "member", member: league.Member{Role: league.RoleMember}, found: true, wantErr: ErrForbidden},
		{name: "stranger", wantErr: ErrForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := leaguemock.NewRepository(t)
			repo.
				On("GetMember", mock.Anything, lg.ID, "user-x").
				Return(tc.member, tc.found, nil).
				Once()

			err := requireAdmin(context.Background(), repo, lg, "user-x")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}
