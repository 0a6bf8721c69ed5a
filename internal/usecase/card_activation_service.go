package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/fantasy-racing/internal/domain/card"
	"github.com/riskibarqy/fantasy-racing/internal/domain/league"
	"github.com/riskibarqy/fantasy-racing/internal/domain/race"
	"github.com/riskibarqy/fantasy-racing/internal/domain/roster"
	"github.com/riskibarqy/fantasy-racing/internal/domain/selection"
	"github.com/riskibarqy/fantasy-racing/internal/platform/id"
	"github.com/riskibarqy/fantasy-racing/internal/platform/logging"
)

type ActivateCardsInput struct {
	UserID       string
	SelectionID  string
	DriverCardID string
	TeamCardID   string
	TargetPlayer string
	TargetDriver string
	TargetTeam   string
}

// ActivationView is a stored activation with its cards resolved.
type ActivationView struct {
	Activation         card.Activation
	Exists             bool
	Race               race.Race
	DriverCard         *card.Definition
	TeamCard           *card.Definition
	MysteryTransformed *card.Definition
	RandomTransformed  *card.Definition
}

type CardActivationService struct {
	leagueRepo     league.Repository
	raceRepo       race.Repository
	selectionRepo  selection.Repository
	catalogRepo    card.CatalogRepository
	deckRepo       card.DeckRepository
	usageRepo      card.UsageRepository
	activationRepo card.ActivationRepository
	rosters        *roster.Catalog
	random         card.RandomSource
	ids            id.Generator
	logger         *logging.Logger
	now            func() time.Time
}

func NewCardActivationService(
	leagueRepo league.Repository,
	raceRepo race.Repository,
	selectionRepo selection.Repository,
	catalogRepo card.CatalogRepository,
	deckRepo card.DeckRepository,
	usageRepo card.UsageRepository,
	activationRepo card.ActivationRepository,
	rosters *roster.Catalog,
	random card.RandomSource,
	ids id.Generator,
	logger *logging.Logger,
) *CardActivationService {
	if logger == nil {
		logger = logging.Default()
	}
	if rosters == nil {
		rosters = roster.DefaultCatalog()
	}

	return &CardActivationService{
		leagueRepo:     leagueRepo,
		raceRepo:       raceRepo,
		selectionRepo:  selectionRepo,
		catalogRepo:    catalogRepo,
		deckRepo:       deckRepo,
		usageRepo:      usageRepo,
		activationRepo: activationRepo,
		rosters:        rosters,
		random:         random,
		ids:            ids,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *CardActivationService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *CardActivationService) Activate(ctx context.Context, input ActivateCardsInput) (ActivationView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CardActivationService.Activate",
		attribute.String("fantasy.selection_id", input.SelectionID))
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.SelectionID = strings.TrimSpace(input.SelectionID)
	input.DriverCardID = strings.TrimSpace(input.DriverCardID)
	input.TeamCardID = strings.TrimSpace(input.TeamCardID)
	input.TargetPlayer = strings.TrimSpace(input.TargetPlayer)
	if input.UserID == "" || input.SelectionID == "" {
		return ActivationView{}, fmt.Errorf("%w: user_id and selection_id are required", ErrInvalidInput)
	}

	sel, err := s.loadSelection(ctx, input.SelectionID)
	if err != nil {
		return ActivationView{}, err
	}
	if sel.UserID != input.UserID {
		return ActivationView{}, fmt.Errorf("%w: selection belongs to another user", ErrForbidden)
	}

	lg, err := loadLeague(ctx, s.leagueRepo, sel.LeagueID)
	if err != nil {
		return ActivationView{}, err
	}
	target, sel, err := s.resolveRace(ctx, lg, sel)
	if err != nil {
		return ActivationView{}, err
	}

	if lg.Season < card.FirstCardSeason {
		return ActivationView{}, fmt.Errorf("%w: cards start in season %d", card.ErrCardsUnavailable, card.FirstCardSeason)
	}
	if target.IsSprintWeekend {
		return ActivationView{}, fmt.Errorf("%w: round %d is a sprint weekend", card.ErrCardsUnavailable, target.Round)
	}

	now := s.now().UTC()
	if race.IsLocked(now, target.Timing(), race.CardLockMarginMinutes) || !now.Before(target.RaceStart) {
		return ActivationView{}, fmt.Errorf("%w: round %d", card.ErrDeadlinePassed, target.Round)
	}

	existing, hasExisting, err := s.activationRepo.GetByUserLeagueRace(ctx, sel.UserID, lg.ID, target.ID)
	if err != nil {
		return ActivationView{}, fmt.Errorf("get card activation: %w", err)
	}

	catalog, err := s.catalogRepo.List(ctx)
	if err != nil {
		return ActivationView{}, fmt.Errorf("list card catalog: %w", err)
	}
	defs := card.Index(catalog)

	driverCard, err := lookupCard(defs, input.DriverCardID, card.TypeDriver)
	if err != nil {
		return ActivationView{}, err
	}
	teamCard, err := lookupCard(defs, input.TeamCardID, card.TypeTeam)
	if err != nil {
		return ActivationView{}, err
	}

	if err := s.checkDeckAndUsage(ctx, sel.UserID, lg, target, driverCard, teamCard); err != nil {
		return ActivationView{}, err
	}

	item := card.Activation{
		SelectionID:  sel.ID,
		UserID:       sel.UserID,
		LeagueID:     lg.ID,
		RaceID:       target.ID,
		Season:       lg.Season,
		Round:        target.Round,
		DriverCardID: input.DriverCardID,
		TeamCardID:   input.TeamCardID,
		SelectedAt:   now,
		UpdatedAt:    now,
	}
	if err := s.applyTargets(ctx, lg, &item, input, driverCard, teamCard); err != nil {
		return ActivationView{}, err
	}

	if hasExisting {
		if sameActivation(existing, item) {
			return s.view(existing, true, target, defs), nil
		}
		item.ID = existing.ID
		item.SelectedAt = existing.SelectedAt
	} else {
		if item.DriverCardID == "" && item.TeamCardID == "" {
			return ActivationView{}.withEmpty(sel, lg, target), nil
		}
		item.ID, err = s.ids.NewID()
		if err != nil {
			return ActivationView{}, fmt.Errorf("generate activation id: %w", err)
		}
	}

	if driverCard != nil {
		stored := ""
		if hasExisting && existing.DriverCardID == driverCard.ID {
			stored = existing.MysteryTransformedCardID
		}
		item.MysteryTransformedCardID, err = card.ResolveTransformation(*driverCard, catalog, stored, s.random)
		if err != nil {
			return ActivationView{}, err
		}
	}
	if teamCard != nil {
		stored := ""
		if hasExisting && existing.TeamCardID == teamCard.ID {
			stored = existing.RandomTransformedCardID
		}
		item.RandomTransformedCardID, err = card.ResolveTransformation(*teamCard, catalog, stored, s.random)
		if err != nil {
			return ActivationView{}, err
		}
	}

	commit := card.ActivationCommit{Activation: item}
	if hasExisting {
		for _, cardID := range existing.CardIDs() {
			if !slices.Contains(item.CardIDs(), cardID) {
				commit.ReleasedCardIDs = append(commit.ReleasedCardIDs, cardID)
			}
		}
	}
	for _, def := range []*card.Definition{driverCard, teamCard} {
		if def == nil {
			continue
		}
		commit.Usages = append(commit.Usages, card.UsageRecord{
			UserID:    sel.UserID,
			LeagueID:  lg.ID,
			Season:    lg.Season,
			CardID:    def.ID,
			CardType:  def.Type,
			RaceID:    target.ID,
			Round:     target.Round,
			CreatedAt: now,
		})
	}

	if err := s.activationRepo.Commit(ctx, commit); err != nil {
		return ActivationView{}, fmt.Errorf("commit card activation: %w", err)
	}

	s.logger.InfoContext(ctx, "cards activated",
		"user_id", sel.UserID,
		"league_id", lg.ID,
		"round", target.Round,
		"driver_card_id", item.DriverCardID,
		"team_card_id", item.TeamCardID,
		"released", commit.ReleasedCardIDs,
	)

	return s.view(item, true, target, defs), nil
}

func (s *CardActivationService) GetActivation(ctx context.Context, actorUserID, selectionID string) (ActivationView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CardActivationService.GetActivation",
		attribute.String("fantasy.selection_id", selectionID))
	defer span.End()

	actorUserID = strings.TrimSpace(actorUserID)
	if actorUserID == "" {
		return ActivationView{}, fmt.Errorf("%w: actor user id is required", ErrInvalidInput)
	}

	sel, err := s.loadSelection(ctx, selectionID)
	if err != nil {
		return ActivationView{}, err
	}
	lg, err := loadLeague(ctx, s.leagueRepo, sel.LeagueID)
	if err != nil {
		return ActivationView{}, err
	}
	if sel.UserID != actorUserID {
		if _, err := requireMember(ctx, s.leagueRepo, lg, actorUserID); err != nil {
			return ActivationView{}, err
		}
	}

	target, sel, err := s.resolveRace(ctx, lg, sel)
	if err != nil {
		return ActivationView{}, err
	}

	item, exists, err := s.activationRepo.GetByUserLeagueRace(ctx, sel.UserID, lg.ID, target.ID)
	if err != nil {
		return ActivationView{}, fmt.Errorf("get card activation: %w", err)
	}
	if !exists {
		return ActivationView{}.withEmpty(sel, lg, target), nil
	}

	ids := item.CardIDs()
	for _, id := range []string{item.MysteryTransformedCardID, item.RandomTransformedCardID} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	defs, err := s.catalogRepo.GetByIDs(ctx, ids)
	if err != nil {
		return ActivationView{}, fmt.Errorf("get activation cards: %w", err)
	}
	return s.view(item, true, target, card.Index(defs)), nil
}

func (s *CardActivationService) loadSelection(ctx context.Context, selectionID string) (selection.Selection, error) {
	selectionID = strings.TrimSpace(selectionID)
	if selectionID == "" {
		return selection.Selection{}, fmt.Errorf("%w: selection_id is required", ErrInvalidInput)
	}

	item, exists, err := s.selectionRepo.GetByID(ctx, selectionID)
	if err != nil {
		return selection.Selection{}, fmt.Errorf("get selection by id: %w", err)
	}
	if !exists {
		return selection.Selection{}, fmt.Errorf("%w: selection=%s", ErrNotFound, selectionID)
	}
	return item, nil
}

// resolveRace returns the selection's race, re-resolving it by the league's
// (season, round) and repairing the selection when the stored pointer is stale.
func (s *CardActivationService) resolveRace(ctx context.Context, lg league.League, sel selection.Selection) (race.Race, selection.Selection, error) {
	if sel.RaceID != "" {
		item, exists, err := s.raceRepo.GetByID(ctx, sel.RaceID)
		if err != nil {
			return race.Race{}, sel, fmt.Errorf("get race by id: %w", err)
		}
		if exists && item.Season == lg.Season && item.Round == sel.Round {
			return item, sel, nil
		}
	}

	item, exists, err := s.raceRepo.GetBySeasonRound(ctx, lg.Season, sel.Round)
	if err != nil {
		return race.Race{}, sel, fmt.Errorf("get race by season round: %w", err)
	}
	if !exists {
		return race.Race{}, sel, fmt.Errorf("%w: race season=%d round=%d", ErrNotFound, lg.Season, sel.Round)
	}

	s.logger.WarnContext(ctx, "healed stale race reference",
		"selection_id", sel.ID,
		"stale_race_id", sel.RaceID,
		"stale_season", sel.Season,
		"race_id", item.ID,
		"season", lg.Season,
	)
	sel.RaceID = item.ID
	sel.Season = lg.Season
	sel.UpdatedAt = s.now().UTC()
	if err := s.selectionRepo.Upsert(ctx, sel); err != nil {
		return race.Race{}, sel, fmt.Errorf("heal selection race reference: %w", err)
	}

	return item, sel, nil
}

func (s *CardActivationService) checkDeckAndUsage(ctx context.Context, userID string, lg league.League, target race.Race, cards ...*card.Definition) error {
	var wanted []*card.Definition
	for _, c := range cards {
		if c != nil {
			wanted = append(wanted, c)
		}
	}
	if len(wanted) == 0 {
		return nil
	}

	entries, err := s.deckRepo.ListByUserLeagueSeason(ctx, userID, lg.ID, lg.Season)
	if err != nil {
		return fmt.Errorf("list deck entries: %w", err)
	}
	usages, err := s.usageRepo.ListByUserLeagueSeason(ctx, userID, lg.ID, lg.Season)
	if err != nil {
		return fmt.Errorf("list card usage: %w", err)
	}

	selected := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Selected {
			selected[e.CardID] = struct{}{}
		}
	}
	usedIn := make(map[string]int, len(usages))
	for _, u := range usages {
		usedIn[u.CardID] = u.Round
	}

	for _, c := range wanted {
		if _, ok := selected[c.ID]; !ok {
			return fmt.Errorf("%w: %s", card.ErrNotInDeck, c.ID)
		}
		if round, used := usedIn[c.ID]; used && round != target.Round {
			return &card.UsageConflictError{CardID: c.ID, Round: round}
		}
	}
	return nil
}

func (s *CardActivationService) applyTargets(ctx context.Context, lg league.League, item *card.Activation, input ActivateCardsInput, cards ...*card.Definition) error {
	for _, c := range cards {
		if c == nil {
			continue
		}

		switch c.RequiresTarget {
		case card.TargetPlayer:
			if input.TargetPlayer == "" {
				return fmt.Errorf("%w: %s needs a target player", card.ErrTargetRequired, c.ID)
			}
			if _, err := requireMember(ctx, s.leagueRepo, lg, input.TargetPlayer); err != nil {
				return fmt.Errorf("%w: target player is not in this league", ErrInvalidInput)
			}
			item.TargetPlayer = input.TargetPlayer
		case card.TargetDriver:
			if strings.TrimSpace(input.TargetDriver) == "" {
				return fmt.Errorf("%w: %s needs a target driver", card.ErrTargetRequired, c.ID)
			}
			name, err := s.rosters.Canonicalize(lg.Season, roster.KindDriver, input.TargetDriver)
			if err != nil {
				return fmt.Errorf("%w: target driver: %w", ErrInvalidInput, err)
			}
			item.TargetDriver = name
		case card.TargetTeam:
			if strings.TrimSpace(input.TargetTeam) == "" {
				return fmt.Errorf("%w: %s needs a target team", card.ErrTargetRequired, c.ID)
			}
			name, err := s.rosters.Canonicalize(lg.Season, roster.KindTeam, input.TargetTeam)
			if err != nil {
				return fmt.Errorf("%w: target team: %w", ErrInvalidInput, err)
			}
			item.TargetTeam = name
		}
	}
	return nil
}

func (s *CardActivationService) view(item card.Activation, exists bool, target race.Race, defs map[string]card.Definition) ActivationView {
	return ActivationView{
		Activation:         item,
		Exists:             exists,
		Race:               target,
		DriverCard:         definitionPtr(defs, item.DriverCardID),
		TeamCard:           definitionPtr(defs, item.TeamCardID),
		MysteryTransformed: definitionPtr(defs, item.MysteryTransformedCardID),
		RandomTransformed:  definitionPtr(defs, item.RandomTransformedCardID),
	}
}

func (v ActivationView) withEmpty(sel selection.Selection, lg league.League, target race.Race) ActivationView {
	v.Race = target
	v.Activation = card.Activation{
		SelectionID: sel.ID,
		UserID:      sel.UserID,
		LeagueID:    lg.ID,
		RaceID:      target.ID,
		Season:      lg.Season,
		Round:       target.Round,
	}
	return v
}

func lookupCard(defs map[string]card.Definition, cardID string, want card.Type) (*card.Definition, error) {
	if cardID == "" {
		return nil, nil
	}
	def, ok := defs[cardID]
	if !ok || !def.IsActive {
		return nil, fmt.Errorf("%w: %s", card.ErrInvalidCard, cardID)
	}
	if def.Type != want {
		return nil, fmt.Errorf("%w: %s is a %s card", card.ErrInvalidCard, cardID, def.Type)
	}
	return &def, nil
}

func definitionPtr(defs map[string]card.Definition, cardID string) *card.Definition {
	if cardID == "" {
		return nil
	}
	def, ok := defs[cardID]
	if !ok {
		return nil
	}
	return &def
}

func sameActivation(a, b card.Activation) bool {
	return a.DriverCardID == b.DriverCardID &&
		a.TeamCardID == b.TeamCardID &&
		a.TargetPlayer == b.TargetPlayer &&
		a.TargetDriver == b.TargetDriver &&
		a.TargetTeam == b.TargetTeam
}
