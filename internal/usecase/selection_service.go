package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-racing/internal/domain/card"
	"github.com/riskibarqy/fantasy-racing/internal/domain/league"
	"github.com/riskibarqy/fantasy-racing/internal/domain/race"
	"github.com/riskibarqy/fantasy-racing/internal/domain/roster"
	"github.com/riskibarqy/fantasy-racing/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-racing/internal/domain/selection"
	"github.com/riskibarqy/fantasy-racing/internal/platform/id"
	"github.com/riskibarqy/fantasy-racing/internal/platform/logging"
)

type GetCurrentSelectionInput struct {
	UserID   string
	LeagueID string
	// Round pins a specific round; zero resolves the next race.
	Round int
}

type CurrentSelection struct {
	Selection selection.Selection
	Race      race.Race
	Exists    bool
	Locked    bool
	LockAt    time.Time
}

type SaveSelectionInput struct {
	UserID        string
	LeagueID      string
	MainDriver    string
	ReserveDriver string
	Team          string
}

type AdminOverrideInput struct {
	ActorUserID   string
	TargetUserID  string
	LeagueID      string
	RaceID        string
	Round         int
	MainDriver    string
	ReserveDriver string
	Team          string
	AssignPoints  bool
	Notes         string
}

type GetUsedInput struct {
	ActorUserID  string
	TargetUserID string
	LeagueID     string
	Round        int
}

type SelectionService struct {
	leagueRepo     league.Repository
	raceRepo       race.Repository
	selectionRepo  selection.Repository
	activationRepo card.ActivationRepository
	resultRepo     scoring.ResultRepository
	reuse          *ReuseCycleService
	rosters        *roster.Catalog
	ids            id.Generator
	scorer         ScoringGateway
	leaderboard    LeaderboardUpdater
	logger         *logging.Logger
	now            func() time.Time
}

func NewSelectionService(
	leagueRepo league.Repository,
	raceRepo race.Repository,
	selectionRepo selection.Repository,
	activationRepo card.ActivationRepository,
	resultRepo scoring.ResultRepository,
	reuse *ReuseCycleService,
	rosters *roster.Catalog,
	ids id.Generator,
	logger *logging.Logger,
) *SelectionService {
	if logger == nil {
		logger = logging.Default()
	}
	if rosters == nil {
		rosters = roster.DefaultCatalog()
	}

	return &SelectionService{
		leagueRepo:     leagueRepo,
		raceRepo:       raceRepo,
		selectionRepo:  selectionRepo,
		activationRepo: activationRepo,
		resultRepo:     resultRepo,
		reuse:          reuse,
		rosters:        rosters,
		ids:            ids,
		logger:         logger,
		now:            time.Now,
	}
}

// SetClock replaces the time source used for lock checks. It also drives the
// reuse tracker so backfilled entries share the same clock.
func (s *SelectionService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
		if s.reuse != nil {
			s.reuse.SetClock(now)
		}
	}
}

func (s *SelectionService) SetScoringGateway(scorer ScoringGateway) {
	s.scorer = scorer
}

func (s *SelectionService) SetLeaderboardUpdater(updater LeaderboardUpdater) {
	s.leaderboard = updater
}

func (s *SelectionService) GetCurrent(ctx context.Context, input GetCurrentSelectionInput) (CurrentSelection, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SelectionService.GetCurrent", leagueAttr(input.LeagueID), roundAttr(input.Round))
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	if input.UserID == "" {
		return CurrentSelection{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if input.Round < 0 {
		return CurrentSelection{}, fmt.Errorf("%w: round must be positive", ErrInvalidInput)
	}

	lg, err := loadLeague(ctx, s.leagueRepo, input.LeagueID)
	if err != nil {
		return CurrentSelection{}, err
	}

	now := s.now().UTC()
	var target race.Race
	if input.Round > 0 {
		target, err = s.raceByRound(ctx, lg.Season, input.Round)
	} else {
		target, err = s.nextRace(ctx, lg.Season, now)
	}
	if err != nil {
		return CurrentSelection{}, err
	}

	out := CurrentSelection{
		Race:   target,
		Locked: race.IsLocked(now, target.Timing(), race.SelectionLockMarginMinutes),
		LockAt: race.LockTime(target.Timing(), race.SelectionLockMarginMinutes),
	}

	item, exists, err := s.selectionRepo.GetByUserLeagueRound(ctx, input.UserID, lg.ID, target.Round)
	if err != nil {
		return CurrentSelection{}, fmt.Errorf("get selection by round: %w", err)
	}
	if !exists {
		out.Selection = selection.Selection{
			UserID:   input.UserID,
			LeagueID: lg.ID,
			RaceID:   target.ID,
			Season:   lg.Season,
			Round:    target.Round,
		}
		return out, nil
	}

	if item.RaceID != target.ID || item.Season != lg.Season {
		item, err = s.healRaceReference(ctx, item, target)
		if err != nil {
			return CurrentSelection{}, err
		}
	}

	out.Selection = item
	out.Exists = true
	return out, nil
}

func (s *SelectionService) Save(ctx context.Context, input SaveSelectionInput) (selection.Selection, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SelectionService.Save", leagueAttr(input.LeagueID))
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	if input.UserID == "" {
		return selection.Selection{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	lg, err := loadLeague(ctx, s.leagueRepo, input.LeagueID)
	if err != nil {
		return selection.Selection{}, err
	}
	if _, err := requireMember(ctx, s.leagueRepo, lg, input.UserID); err != nil {
		return selection.Selection{}, err
	}

	now := s.now().UTC()
	target, err := s.nextRace(ctx, lg.Season, now)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return selection.Selection{}, fmt.Errorf("%w: no upcoming race in season %d", ErrInvalidInput, lg.Season)
		}
		return selection.Selection{}, err
	}

	picks, err := s.canonicalPicks(lg.Season, input.MainDriver, input.ReserveDriver, input.Team)
	if err != nil {
		return selection.Selection{}, err
	}
	if race.IsLocked(now, target.Timing(), race.SelectionLockMarginMinutes) {
		return selection.Selection{}, fmt.Errorf("%w: season=%d round=%d", selection.ErrSelectionLocked, target.Season, target.Round)
	}

	existing, exists, err := s.selectionRepo.GetByUserLeagueRound(ctx, input.UserID, lg.ID, target.Round)
	if err != nil {
		return selection.Selection{}, fmt.Errorf("get selection by round: %w", err)
	}
	if exists && existing.Picks() == picks && existing.Status == selection.StatusUserSubmitted && existing.RaceID == target.ID {
		return existing, nil
	}

	var previous *selection.Picks
	if exists {
		prev := existing.Picks()
		previous = &prev
	}
	if err := s.reuse.Check(ctx, input.UserID, lg.ID, lg.Season, target.Round, picks, previous); err != nil {
		return selection.Selection{}, err
	}

	item := existing
	if !exists {
		item, err = s.newSelection(input.UserID, lg.ID, now)
		if err != nil {
			return selection.Selection{}, err
		}
	}
	item.RaceID = target.ID
	item.Season = lg.Season
	item.Round = target.Round
	item.MainDriver = picks.MainDriver
	item.ReserveDriver = picks.ReserveDriver
	item.Team = picks.Team
	item.Status = selection.StatusUserSubmitted
	item.IsAutoAssigned = false
	item.IsAdminAssigned = false
	item.AssignedBy = ""
	item.AssignedAt = nil
	item.UpdatedAt = now

	if err := item.Validate(); err != nil {
		return selection.Selection{}, err
	}
	if err := s.selectionRepo.Upsert(ctx, item); err != nil {
		return selection.Selection{}, fmt.Errorf("upsert selection: %w", err)
	}

	if _, err := s.reuse.Apply(ctx, input.UserID, lg.ID, lg.Season, previous, picks); err != nil {
		s.logger.ErrorContext(ctx, "update reuse ledger after save failed",
			"user_id", input.UserID,
			"league_id", lg.ID,
			"round", item.Round,
			"error", err,
		)
	}

	return item, nil
}

func (s *SelectionService) AdminOverride(ctx context.Context, input AdminOverrideInput) (selection.Selection, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SelectionService.AdminOverride", leagueAttr(input.LeagueID), roundAttr(input.Round))
	defer span.End()

	input.ActorUserID = strings.TrimSpace(input.ActorUserID)
	input.TargetUserID = strings.TrimSpace(input.TargetUserID)
	input.RaceID = strings.TrimSpace(input.RaceID)
	input.Notes = strings.TrimSpace(input.Notes)
	if input.ActorUserID == "" {
		return selection.Selection{}, fmt.Errorf("%w: actor user id is required", ErrInvalidInput)
	}
	if input.TargetUserID == "" {
		return selection.Selection{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if input.RaceID == "" && input.Round <= 0 {
		return selection.Selection{}, fmt.Errorf("%w: race_id or round is required", ErrInvalidInput)
	}

	lg, err := loadLeague(ctx, s.leagueRepo, input.LeagueID)
	if err != nil {
		return selection.Selection{}, err
	}
	if err := requireAdmin(ctx, s.leagueRepo, lg, input.ActorUserID); err != nil {
		return selection.Selection{}, err
	}
	if _, err := requireMember(ctx, s.leagueRepo, lg, input.TargetUserID); err != nil {
		if errors.Is(err, ErrForbidden) {
			return selection.Selection{}, fmt.Errorf("%w: user %s is not in league %s", ErrNotFound, input.TargetUserID, lg.ID)
		}
		return selection.Selection{}, err
	}

	target, err := s.resolveOverrideRace(ctx, lg, input.RaceID, input.Round)
	if err != nil {
		return selection.Selection{}, err
	}

	picks, err := s.canonicalPicks(lg.Season, input.MainDriver, input.ReserveDriver, input.Team)
	if err != nil {
		return selection.Selection{}, err
	}

	existing, exists, err := s.selectionRepo.GetByUserRace(ctx, input.TargetUserID, lg.ID, target.ID)
	if err != nil {
		return selection.Selection{}, fmt.Errorf("get selection by race: %w", err)
	}
	if !exists {
		existing, exists, err = s.selectionRepo.GetByUserLeagueRound(ctx, input.TargetUserID, lg.ID, target.Round)
		if err != nil {
			return selection.Selection{}, fmt.Errorf("get selection by round: %w", err)
		}
		if exists && existing.RaceID != target.ID {
			s.logger.WarnContext(ctx, "healed stale race reference on override",
				"selection_id", existing.ID,
				"stale_race_id", existing.RaceID,
				"race_id", target.ID,
			)
		}
	}

	now := s.now().UTC()
	var previous *selection.Picks
	item := existing
	if exists {
		prev := existing.Picks()
		previous = &prev
	} else {
		item, err = s.newSelection(input.TargetUserID, lg.ID, now)
		if err != nil {
			return selection.Selection{}, err
		}
	}

	assignedAt := now
	item.RaceID = target.ID
	item.Season = lg.Season
	item.Round = target.Round
	item.MainDriver = picks.MainDriver
	item.ReserveDriver = picks.ReserveDriver
	item.Team = picks.Team
	item.Status = selection.StatusAdminAssigned
	item.IsAdminAssigned = true
	item.IsAutoAssigned = false
	item.AssignedBy = input.ActorUserID
	item.AssignedAt = &assignedAt
	item.Notes = input.Notes
	item.UpdatedAt = now
	if !input.AssignPoints {
		item.ZeroPoints()
	}

	if err := item.Validate(); err != nil {
		return selection.Selection{}, err
	}
	if err := s.selectionRepo.Upsert(ctx, item); err != nil {
		return selection.Selection{}, fmt.Errorf("upsert selection: %w", err)
	}

	if input.AssignPoints {
		if scored, ok := s.scoreSelection(ctx, item); ok {
			item = scored
		}
	}

	if _, err := s.reuse.Apply(ctx, input.TargetUserID, lg.ID, lg.Season, previous, picks); err != nil {
		s.logger.ErrorContext(ctx, "update reuse ledger after override failed",
			"user_id", input.TargetUserID,
			"league_id", lg.ID,
			"round", item.Round,
			"error", err,
		)
	}

	s.refreshLeaderboard(ctx, lg)

	s.logger.InfoContext(ctx, "selection assigned by admin",
		"actor_user_id", input.ActorUserID,
		"user_id", input.TargetUserID,
		"league_id", lg.ID,
		"round", item.Round,
		"assign_points", input.AssignPoints,
	)

	return item, nil
}

func (s *SelectionService) GetUsed(ctx context.Context, input GetUsedInput) (UsedView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SelectionService.GetUsed", leagueAttr(input.LeagueID), roundAttr(input.Round))
	defer span.End()

	input.ActorUserID = strings.TrimSpace(input.ActorUserID)
	input.TargetUserID = strings.TrimSpace(input.TargetUserID)
	if input.ActorUserID == "" {
		return UsedView{}, fmt.Errorf("%w: actor user id is required", ErrInvalidInput)
	}
	if input.TargetUserID == "" {
		input.TargetUserID = input.ActorUserID
	}
	if input.Round < 0 {
		return UsedView{}, fmt.Errorf("%w: round must be positive", ErrInvalidInput)
	}

	lg, err := loadLeague(ctx, s.leagueRepo, input.LeagueID)
	if err != nil {
		return UsedView{}, err
	}
	if input.TargetUserID != input.ActorUserID {
		if err := requireAdmin(ctx, s.leagueRepo, lg, input.ActorUserID); err != nil {
			return UsedView{}, err
		}
	}

	if input.Round > 0 {
		return s.reuse.ComputeUsedForRound(ctx, input.TargetUserID, lg.ID, lg.Season, input.Round)
	}
	return s.reuse.Used(ctx, input.TargetUserID, lg.ID)
}

func (s *SelectionService) canonicalPicks(season int, mainDriver, reserveDriver, team string) (selection.Picks, error) {
	mainName, err := s.rosters.Canonicalize(season, roster.KindDriver, mainDriver)
	if err != nil {
		return selection.Picks{}, fmt.Errorf("%w: main driver: %w", selection.ErrInvalidSelection, err)
	}
	reserveName, err := s.rosters.Canonicalize(season, roster.KindDriver, reserveDriver)
	if err != nil {
		return selection.Picks{}, fmt.Errorf("%w: reserve driver: %w", selection.ErrInvalidSelection, err)
	}
	teamName, err := s.rosters.Canonicalize(season, roster.KindTeam, team)
	if err != nil {
		return selection.Picks{}, fmt.Errorf("%w: team: %w", selection.ErrInvalidSelection, err)
	}

	picks := selection.Picks{MainDriver: mainName, ReserveDriver: reserveName, Team: teamName}
	if err := picks.Validate(); err != nil {
		return selection.Picks{}, err
	}
	return picks, nil
}

func (s *SelectionService) newSelection(userID, leagueID string, now time.Time) (selection.Selection, error) {
	selectionID, err := s.ids.NewID()
	if err != nil {
		return selection.Selection{}, fmt.Errorf("generate selection id: %w", err)
	}
	return selection.Selection{
		ID:        selectionID,
		UserID:    userID,
		LeagueID:  leagueID,
		CreatedAt: now,
	}, nil
}

func (s *SelectionService) nextRace(ctx context.Context, season int, now time.Time) (race.Race, error) {
	races, err := s.raceRepo.ListBySeason(ctx, season)
	if err != nil {
		return race.Race{}, fmt.Errorf("list races by season: %w", err)
	}
	next, ok := race.NextRace(races, now)
	if !ok {
		return race.Race{}, fmt.Errorf("%w: no upcoming race in season %d", ErrNotFound, season)
	}
	return next, nil
}

func (s *SelectionService) raceByRound(ctx context.Context, season, round int) (race.Race, error) {
	item, exists, err := s.raceRepo.GetBySeasonRound(ctx, season, round)
	if err != nil {
		return race.Race{}, fmt.Errorf("get race by season round: %w", err)
	}
	if !exists {
		return race.Race{}, fmt.Errorf("%w: race season=%d round=%d", ErrNotFound, season, round)
	}
	return item, nil
}

// resolveOverrideRace looks the race up by id and re-resolves it by
// (season, round) when the id is unknown or belongs to another season.
func (s *SelectionService) resolveOverrideRace(ctx context.Context, lg league.League, raceID string, round int) (race.Race, error) {
	if raceID != "" {
		item, exists, err := s.raceRepo.GetByID(ctx, raceID)
		if err != nil {
			return race.Race{}, fmt.Errorf("get race by id: %w", err)
		}
		if exists && item.Season == lg.Season {
			return item, nil
		}
		if exists && round <= 0 {
			round = item.Round
		}
	}
	if round <= 0 {
		return race.Race{}, fmt.Errorf("%w: race=%s", ErrNotFound, raceID)
	}
	return s.raceByRound(ctx, lg.Season, round)
}

func (s *SelectionService) healRaceReference(ctx context.Context, item selection.Selection, target race.Race) (selection.Selection, error) {
	s.logger.WarnContext(ctx, "healed stale race reference",
		"selection_id", item.ID,
		"stale_race_id", item.RaceID,
		"stale_season", item.Season,
		"race_id", target.ID,
		"season", target.Season,
	)

	item.RaceID = target.ID
	item.Season = target.Season
	item.UpdatedAt = s.now().UTC()
	if err := s.selectionRepo.Upsert(ctx, item); err != nil {
		return selection.Selection{}, fmt.Errorf("heal selection race reference: %w", err)
	}
	return item, nil
}

// scoreSelection is best effort. On failure the persisted selection keeps
// its previous points.
func (s *SelectionService) scoreSelection(ctx context.Context, item selection.Selection) (selection.Selection, bool) {
	if s.scorer == nil {
		s.logger.WarnContext(ctx, "skip scoring: scoring gateway is not configured", "selection_id", item.ID)
		return item, false
	}

	result, exists, err := s.resultRepo.GetRaceResult(ctx, item.Season, item.Round)
	if err != nil {
		s.logger.WarnContext(ctx, "load race result for scoring failed", "selection_id", item.ID, "error", err)
		return item, false
	}
	if !exists {
		s.logger.WarnContext(ctx, "skip scoring: race result not imported yet", "season", item.Season, "round", item.Round)
		return item, false
	}

	req := ScoreRequest{Selection: item, Result: result}
	activation, found, err := s.activationRepo.GetByUserLeagueRace(ctx, item.UserID, item.LeagueID, item.RaceID)
	if err != nil {
		s.logger.WarnContext(ctx, "load card activation for scoring failed", "selection_id", item.ID, "error", err)
		return item, false
	}
	if found {
		req.Activation = &activation
	}

	breakdown, err := s.scorer.ScoreSelection(ctx, req)
	if err != nil {
		s.logger.WarnContext(ctx, "score selection failed", "selection_id", item.ID, "error", err)
		return item, false
	}

	item.Breakdown = breakdown
	item.Points = breakdown.Total
	item.UpdatedAt = s.now().UTC()
	if err := s.selectionRepo.Upsert(ctx, item); err != nil {
		s.logger.WarnContext(ctx, "store scored selection failed", "selection_id", item.ID, "error", err)
		return item, false
	}
	return item, true
}

func (s *SelectionService) refreshLeaderboard(ctx context.Context, lg league.League) {
	if s.leaderboard == nil {
		return
	}
	if err := s.leaderboard.RefreshLeague(ctx, lg.ID, lg.Season); err != nil {
		s.logger.WarnContext(ctx, "refresh leaderboard failed", "league_id", lg.ID, "error", err)
	}
}
