package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/fantasy-racing/internal/domain/reusecycle"
	"github.com/riskibarqy/fantasy-racing/internal/domain/roster"
	"github.com/riskibarqy/fantasy-racing/internal/domain/selection"
	"github.com/riskibarqy/fantasy-racing/internal/platform/logging"
)

const (
	reuseLedgerMaxAttempts = 4

	UsedSourceLedger  = "ledger"
	UsedSourceHistory = "history"
)

// UsedView is the set of drivers and teams a user cannot pick again yet.
type UsedView struct {
	Drivers     []string
	Teams       []string
	Source      string
	DriverCycle int
	TeamCycle   int
	Backfilled  []string
}

type ReuseCycleService struct {
	ledgerRepo    reusecycle.Repository
	selectionRepo selection.Repository
	rosters       *roster.Catalog
	policy        reusecycle.ExhaustionPolicy
	logger        *logging.Logger
	now           func() time.Time
}

func NewReuseCycleService(
	ledgerRepo reusecycle.Repository,
	selectionRepo selection.Repository,
	rosters *roster.Catalog,
	logger *logging.Logger,
) *ReuseCycleService {
	if logger == nil {
		logger = logging.Default()
	}
	if rosters == nil {
		rosters = roster.DefaultCatalog()
	}

	return &ReuseCycleService{
		ledgerRepo:    ledgerRepo,
		selectionRepo: selectionRepo,
		rosters:       rosters,
		policy:        reusecycle.FullRosterPolicy{},
		logger:        logger,
		now:           time.Now,
	}
}

func (s *ReuseCycleService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *ReuseCycleService) SetPolicy(policy reusecycle.ExhaustionPolicy) {
	if policy != nil {
		s.policy = policy
	}
}

func (s *ReuseCycleService) load(ctx context.Context, userID, leagueID string) (reusecycle.Ledger, error) {
	ledger, exists, err := s.ledgerRepo.Get(ctx, userID, leagueID)
	if err != nil {
		return reusecycle.Ledger{}, fmt.Errorf("get reuse ledger: %w", err)
	}
	if !exists {
		return reusecycle.NewLedger(userID, leagueID), nil
	}
	return ledger, nil
}

// Used returns the ledger's current cycles.
func (s *ReuseCycleService) Used(ctx context.Context, userID, leagueID string) (UsedView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReuseCycleService.Used", leagueAttr(leagueID))
	defer span.End()

	ledger, err := s.load(ctx, userID, leagueID)
	if err != nil {
		return UsedView{}, err
	}

	return UsedView{
		Drivers:     ledger.Used(roster.KindDriver),
		Teams:       ledger.Used(roster.KindTeam),
		Source:      UsedSourceLedger,
		DriverCycle: ledger.Drivers.Number(),
		TeamCycle:   ledger.Teams.Number(),
	}, nil
}

// Check returns the picks that the current cycle blocks. previous is the
// caller's existing pick for round; when set, the stacks are rebuilt from
// the other rounds' selections so the old pick is fully released.
func (s *ReuseCycleService) Check(ctx context.Context, userID, leagueID string, season, round int, next selection.Picks, previous *selection.Picks) error {
	members, err := s.rosters.Season(season)
	if err != nil {
		return fmt.Errorf("%w: %w", selection.ErrInvalidSelection, err)
	}

	var drivers, teams reusecycle.Stack
	if previous != nil {
		drivers, teams, err = s.replayHistory(ctx, userID, leagueID, season, round, members)
		if err != nil {
			return err
		}
	} else {
		ledger, err := s.load(ctx, userID, leagueID)
		if err != nil {
			return err
		}
		drivers, teams = ledger.Drivers, ledger.Teams
	}

	if blocked := drivers.Blocked(next.Drivers(), members.Members(roster.KindDriver), s.policy); len(blocked) > 0 {
		return fmt.Errorf("%w: %s", selection.ErrDriverAlreadyUsed, strings.Join(blocked, ", "))
	}
	if blocked := teams.Blocked([]string{next.Team}, members.Members(roster.KindTeam), s.policy); len(blocked) > 0 {
		return fmt.Errorf("%w: %s", selection.ErrTeamAlreadyUsed, strings.Join(blocked, ", "))
	}

	return nil
}

// Apply records next in the ledger. An edit (previous set) replays the stored
// selections instead, so it must run after the edited row is persisted.
func (s *ReuseCycleService) Apply(ctx context.Context, userID, leagueID string, season int, previous *selection.Picks, next selection.Picks) (reusecycle.Ledger, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReuseCycleService.Apply", leagueAttr(leagueID),
		attribute.Int("fantasy.season", season),
		attribute.Bool("fantasy.edit", previous != nil))
	defer span.End()

	members, err := s.rosters.Season(season)
	if err != nil {
		return reusecycle.Ledger{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if previous != nil {
		drivers, teams, err := s.replayHistory(ctx, userID, leagueID, season, 0, members)
		if err != nil {
			return reusecycle.Ledger{}, err
		}
		return s.mutate(ctx, userID, leagueID, func(ledger *reusecycle.Ledger) bool {
			if ledger.Drivers.Equal(drivers) && ledger.Teams.Equal(teams) {
				return false
			}
			ledger.Drivers = drivers.Clone()
			ledger.Teams = teams.Clone()
			return true
		})
	}

	return s.mutate(ctx, userID, leagueID, func(ledger *reusecycle.Ledger) bool {
		changed := ledger.Drivers.Record(next.Drivers(), members.Members(roster.KindDriver), s.policy)
		if ledger.Teams.Record([]string{next.Team}, members.Members(roster.KindTeam), s.policy) {
			changed = true
		}
		return changed
	})
}

// replayHistory rebuilds both stacks from the user's selections in round
// order. A positive skipRound leaves that round out.
func (s *ReuseCycleService) replayHistory(ctx context.Context, userID, leagueID string, season, skipRound int, members *roster.Roster) (reusecycle.Stack, reusecycle.Stack, error) {
	history, err := s.selectionRepo.ListByUserLeagueSeason(ctx, userID, leagueID, season)
	if err != nil {
		return nil, nil, fmt.Errorf("list selections for reuse replay: %w", err)
	}
	slices.SortFunc(history, func(a, b selection.Selection) int { return a.Round - b.Round })

	driverPicks := make([][]string, 0, len(history))
	teamPicks := make([][]string, 0, len(history))
	for _, item := range history {
		if skipRound > 0 && item.Round == skipRound {
			continue
		}
		var names []string
		for _, raw := range item.Picks().Drivers() {
			if strings.TrimSpace(raw) != "" {
				names = append(names, s.canonicalOrRaw(ctx, season, roster.KindDriver, raw))
			}
		}
		driverPicks = append(driverPicks, names)
		if strings.TrimSpace(item.Team) != "" {
			teamPicks = append(teamPicks, []string{s.canonicalOrRaw(ctx, season, roster.KindTeam, item.Team)})
		}
	}

	drivers := reusecycle.Replay(driverPicks, members.Members(roster.KindDriver), s.policy)
	teams := reusecycle.Replay(teamPicks, members.Members(roster.KindTeam), s.policy)
	return drivers, teams, nil
}

// ComputeUsedForRound derives the used set from selections of earlier rounds
// and backfills the ledger with history entries it is missing.
func (s *ReuseCycleService) ComputeUsedForRound(ctx context.Context, userID, leagueID string, season, round int) (UsedView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReuseCycleService.ComputeUsedForRound", leagueAttr(leagueID), roundAttr(round))
	defer span.End()

	if round <= 0 {
		return UsedView{}, fmt.Errorf("%w: round must be positive", ErrInvalidInput)
	}

	history, err := s.selectionRepo.ListByUserLeagueSeason(ctx, userID, leagueID, season)
	if err != nil {
		return UsedView{}, fmt.Errorf("list selections for used view: %w", err)
	}
	slices.SortFunc(history, func(a, b selection.Selection) int { return a.Round - b.Round })

	driverSet := make(map[string]struct{})
	teamSet := make(map[string]struct{})
	var orderedDrivers, orderedTeams []string
	for _, item := range history {
		if item.Round >= round {
			continue
		}
		for _, raw := range item.Picks().Drivers() {
			name := s.canonicalOrRaw(ctx, season, roster.KindDriver, raw)
			if _, ok := driverSet[name]; !ok {
				driverSet[name] = struct{}{}
				orderedDrivers = append(orderedDrivers, name)
			}
		}
		if item.Team != "" {
			name := s.canonicalOrRaw(ctx, season, roster.KindTeam, item.Team)
			if _, ok := teamSet[name]; !ok {
				teamSet[name] = struct{}{}
				orderedTeams = append(orderedTeams, name)
			}
		}
	}

	view := UsedView{
		Drivers: sortedKeys(driverSet),
		Teams:   sortedKeys(teamSet),
		Source:  UsedSourceHistory,
	}

	members, err := s.rosters.Season(season)
	if err != nil {
		return UsedView{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	var backfilled []string
	ledger, err := s.mutate(ctx, userID, leagueID, func(ledger *reusecycle.Ledger) bool {
		backfilled = backfilled[:0]
		var missingDrivers, missingTeams []string
		for _, name := range orderedDrivers {
			if !ledger.Drivers.Ever(name) {
				missingDrivers = append(missingDrivers, name)
			}
		}
		for _, name := range orderedTeams {
			if !ledger.Teams.Ever(name) {
				missingTeams = append(missingTeams, name)
			}
		}
		for _, name := range missingDrivers {
			ledger.Drivers.Record([]string{name}, members.Members(roster.KindDriver), s.policy)
		}
		for _, name := range missingTeams {
			ledger.Teams.Record([]string{name}, members.Members(roster.KindTeam), s.policy)
		}
		backfilled = append(backfilled, missingDrivers...)
		backfilled = append(backfilled, missingTeams...)
		return len(backfilled) > 0
	})
	if err != nil {
		// history is still returned when the ledger cannot be repaired.
		s.logger.WarnContext(ctx, "backfill reuse ledger failed", "user_id", userID, "league_id", leagueID, "error", err)
		return view, nil
	}
	if len(backfilled) > 0 {
		s.logger.InfoContext(ctx, "backfilled reuse ledger from selection history",
			"user_id", userID,
			"league_id", leagueID,
			"round", round,
			"entries", backfilled,
		)
	}

	view.Backfilled = backfilled
	view.DriverCycle = ledger.Drivers.Number()
	view.TeamCycle = ledger.Teams.Number()
	return view, nil
}

func (s *ReuseCycleService) canonicalOrRaw(ctx context.Context, season int, kind roster.Kind, raw string) string {
	name, err := s.rosters.Canonicalize(season, kind, raw)
	if err != nil {
		s.logger.WarnContext(ctx, "history pick is not on the season grid", "season", season, "kind", kind, "name", raw)
		return strings.TrimSpace(raw)
	}
	return name
}

// mutate runs fn against the latest ledger and stores it with compare-and-swap,
// retrying on version conflicts. fn reports whether it changed anything.
func (s *ReuseCycleService) mutate(ctx context.Context, userID, leagueID string, fn func(*reusecycle.Ledger) bool) (reusecycle.Ledger, error) {
	var lastErr error
	for attempt := 0; attempt < reuseLedgerMaxAttempts; attempt++ {
		ledger, err := s.load(ctx, userID, leagueID)
		if err != nil {
			return reusecycle.Ledger{}, err
		}

		working := ledger.Clone()
		if !fn(&working) {
			return ledger, nil
		}
		working.UpdatedAt = s.now().UTC()

		stored, err := s.ledgerRepo.CompareAndSwap(ctx, working, ledger.Version)
		if err == nil {
			return stored, nil
		}
		if !errors.Is(err, reusecycle.ErrVersionConflict) {
			return reusecycle.Ledger{}, fmt.Errorf("store reuse ledger: %w", err)
		}
		lastErr = err
	}

	return reusecycle.Ledger{}, fmt.Errorf("%w: store reuse ledger after %d attempts: %w", ErrConflict, reuseLedgerMaxAttempts, lastErr)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
