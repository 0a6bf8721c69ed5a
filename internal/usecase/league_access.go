package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/fantasy-racing/internal/domain/league"
)

func loadLeague(ctx context.Context, repo league.Repository, leagueID string) (league.League, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return league.League{}, fmt.Errorf("%w: league_id is required", ErrInvalidInput)
	}

	item, exists, err := repo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league by id: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	return item, nil
}

// requireMember fails with ErrForbidden unless userID belongs to the league.
func requireMember(ctx context.Context, repo league.Repository, lg league.League, userID string) (league.Member, error) {
	if lg.OwnerUserID == userID {
		return league.Member{LeagueID: lg.ID, UserID: userID, Role: league.RoleOwner}, nil
	}

	member, exists, err := repo.GetMember(ctx, lg.ID, userID)
	if err != nil {
		return league.Member{}, fmt.Errorf("get league member: %w", err)
	}
	if !exists {
		return league.Member{}, fmt.Errorf("%w: %w", ErrForbidden, league.ErrNotMember)
	}

	return member, nil
}

// requireAdmin fails with ErrForbidden unless userID owns or administers the league.
func requireAdmin(ctx context.Context, repo league.Repository, lg league.League, userID string) error {
	member, exists, err := repo.GetMember(ctx, lg.ID, userID)
	if err != nil {
		return fmt.Errorf("get league member: %w", err)
	}
	if !league.CanAdminister(lg, league.Member{LeagueID: lg.ID, UserID: userID, Role: member.Role}, exists) {
		return fmt.Errorf("%w: league owner or admin required", ErrForbidden)
	}

	return nil
}
