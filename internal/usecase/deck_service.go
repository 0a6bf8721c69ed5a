package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/fantasy-racing/internal/domain/card"
	"github.com/riskibarqy/fantasy-racing/internal/domain/league"
	"github.com/riskibarqy/fantasy-racing/internal/domain/race"
	"github.com/riskibarqy/fantasy-racing/internal/platform/logging"
)

// OwnedCard is a catalog card annotated with the user's deck state.
type OwnedCard struct {
	Definition   card.Definition
	InCollection bool
	Selected     bool
	Used         bool
	UsedRound    int
}

type DeckView struct {
	LeagueID    string
	Season      int
	DriverCards []card.Definition
	TeamCards   []card.Definition
	Usage       card.DeckUsage
	Rules       card.DeckRules
	Complete    bool
	Locked      bool
	LockAt      *time.Time
}

type SelectDeckInput struct {
	UserID        string
	LeagueID      string
	DriverCardIDs []string
	TeamCardIDs   []string
	// EditMode lets league owners and admins change a deck after the season lock.
	EditMode bool
}

type DeckService struct {
	leagueRepo  league.Repository
	raceRepo    race.Repository
	catalogRepo card.CatalogRepository
	deckRepo    card.DeckRepository
	usageRepo   card.UsageRepository
	rules       card.DeckRules
	logger      *logging.Logger
	now         func() time.Time
}

func NewDeckService(
	leagueRepo league.Repository,
	raceRepo race.Repository,
	catalogRepo card.CatalogRepository,
	deckRepo card.DeckRepository,
	usageRepo card.UsageRepository,
	logger *logging.Logger,
) *DeckService {
	if logger == nil {
		logger = logging.Default()
	}

	return &DeckService{
		leagueRepo:  leagueRepo,
		raceRepo:    raceRepo,
		catalogRepo: catalogRepo,
		deckRepo:    deckRepo,
		usageRepo:   usageRepo,
		rules:       card.DefaultDeckRules(),
		logger:      logger,
		now:         time.Now,
	}
}

type deckSnapshot struct {
	catalog []card.Definition
	entries []card.DeckEntry
	usages  []card.UsageRecord
	races   []race.Race
}

func (s *DeckService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// loadSnapshot reads the catalog, the user's deck, usage and the season calendar in parallel.
func (s *DeckService) loadSnapshot(ctx context.Context, userID string, lg league.League) (deckSnapshot, error) {
	var snap deckSnapshot

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		items, err := s.catalogRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("list card catalog: %w", err)
		}
		snap.catalog = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.deckRepo.ListByUserLeagueSeason(ctx, userID, lg.ID, lg.Season)
		if err != nil {
			return fmt.Errorf("list deck entries: %w", err)
		}
		snap.entries = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.usageRepo.ListByUserLeagueSeason(ctx, userID, lg.ID, lg.Season)
		if err != nil {
			return fmt.Errorf("list card usage: %w", err)
		}
		snap.usages = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.raceRepo.ListBySeason(ctx, lg.Season)
		if err != nil {
			return fmt.Errorf("list races by season: %w", err)
		}
		snap.races = items
		return nil
	})
	if err := p.Wait(); err != nil {
		return deckSnapshot{}, err
	}

	return snap, nil
}

func (s *DeckService) ListOwnedCards(ctx context.Context, userID, leagueID string) ([]OwnedCard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DeckService.ListOwnedCards", leagueAttr(leagueID))
	defer span.End()

	userID = strings.TrimSpace(userID)
	lg, err := loadLeague(ctx, s.leagueRepo, leagueID)
	if err != nil {
		return nil, err
	}
	if _, err := requireMember(ctx, s.leagueRepo, lg, userID); err != nil {
		return nil, err
	}

	snap, err := s.loadSnapshot(ctx, userID, lg)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]card.DeckEntry, len(snap.entries))
	for _, e := range snap.entries {
		entries[e.CardID] = e
	}
	usedRound := make(map[string]int, len(snap.usages))
	for _, u := range snap.usages {
		usedRound[u.CardID] = u.Round
	}

	out := make([]OwnedCard, 0, len(snap.catalog))
	for _, def := range snap.catalog {
		entry, owned := entries[def.ID]
		if !def.IsActive && !owned {
			continue
		}
		round, used := usedRound[def.ID]
		out = append(out, OwnedCard{
			Definition:   def,
			InCollection: owned,
			Selected:     owned && entry.Selected,
			Used:         used,
			UsedRound:    round,
		})
	}
	slices.SortStableFunc(out, func(a, b OwnedCard) int {
		if a.Definition.Type != b.Definition.Type {
			return strings.Compare(string(a.Definition.Type), string(b.Definition.Type))
		}
		return strings.Compare(a.Definition.ID, b.Definition.ID)
	})

	return out, nil
}

func (s *DeckService) GetDeck(ctx context.Context, userID, leagueID string) (DeckView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DeckService.GetDeck", leagueAttr(leagueID))
	defer span.End()

	userID = strings.TrimSpace(userID)
	lg, err := loadLeague(ctx, s.leagueRepo, leagueID)
	if err != nil {
		return DeckView{}, err
	}
	if _, err := requireMember(ctx, s.leagueRepo, lg, userID); err != nil {
		return DeckView{}, err
	}

	snap, err := s.loadSnapshot(ctx, userID, lg)
	if err != nil {
		return DeckView{}, err
	}

	defs := card.Index(snap.catalog)
	var drivers, teams []card.Definition
	for _, e := range snap.entries {
		if !e.Selected {
			continue
		}
		def, ok := defs[e.CardID]
		if !ok {
			s.logger.WarnContext(ctx, "deck entry references unknown card", "card_id", e.CardID, "league_id", lg.ID)
			continue
		}
		if def.Type == card.TypeTeam {
			teams = append(teams, def)
		} else {
			drivers = append(drivers, def)
		}
	}

	return s.deckView(lg, drivers, teams, snap.races), nil
}

func (s *DeckService) SelectDeck(ctx context.Context, input SelectDeckInput) (DeckView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DeckService.SelectDeck", leagueAttr(input.LeagueID))
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	if input.UserID == "" {
		return DeckView{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	driverIDs := trimIDs(input.DriverCardIDs)
	teamIDs := trimIDs(input.TeamCardIDs)

	lg, err := loadLeague(ctx, s.leagueRepo, input.LeagueID)
	if err != nil {
		return DeckView{}, err
	}
	if _, err := requireMember(ctx, s.leagueRepo, lg, input.UserID); err != nil {
		return DeckView{}, err
	}

	snap, err := s.loadSnapshot(ctx, input.UserID, lg)
	if err != nil {
		return DeckView{}, err
	}

	if lockAt, ok := race.DeckLockTime(snap.races); ok && !s.now().UTC().Before(lockAt) {
		if !input.EditMode {
			return DeckView{}, fmt.Errorf("%w: locked at %s", card.ErrDeckLocked, lockAt.Format(time.RFC3339))
		}
		if err := requireAdmin(ctx, s.leagueRepo, lg, input.UserID); err != nil {
			return DeckView{}, err
		}
		s.logger.InfoContext(ctx, "deck edited after season lock", "user_id", input.UserID, "league_id", lg.ID)
	}

	drivers, teams, err := card.ValidateDeck(s.rules, card.Index(snap.catalog), driverIDs, teamIDs)
	if err != nil {
		return DeckView{}, err
	}

	now := s.now().UTC()
	entries := make([]card.DeckEntry, 0, len(drivers)+len(teams))
	for _, def := range append(slices.Clone(drivers), teams...) {
		entries = append(entries, card.DeckEntry{
			UserID:    input.UserID,
			LeagueID:  lg.ID,
			Season:    lg.Season,
			CardID:    def.ID,
			CardType:  def.Type,
			Selected:  true,
			UpdatedAt: now,
		})
	}
	if err := s.deckRepo.ReplaceSelection(ctx, input.UserID, lg.ID, lg.Season, entries); err != nil {
		return DeckView{}, fmt.Errorf("replace deck selection: %w", err)
	}

	return s.deckView(lg, drivers, teams, snap.races), nil
}

func (s *DeckService) deckView(lg league.League, drivers, teams []card.Definition, races []race.Race) DeckView {
	usage := s.rules.Usage(drivers, teams)
	view := DeckView{
		LeagueID:    lg.ID,
		Season:      lg.Season,
		DriverCards: drivers,
		TeamCards:   teams,
		Usage:       usage,
		Rules:       s.rules,
		Complete:    usage.DriverSlotsUsed == s.rules.DriverSlots && usage.TeamSlotsUsed == s.rules.TeamSlots,
	}
	if lockAt, ok := race.DeckLockTime(races); ok {
		view.LockAt = &lockAt
		view.Locked = !s.now().UTC().Before(lockAt)
	}
	return view
}

func trimIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
