package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-racing/internal/domain/card"
	"github.com/riskibarqy/fantasy-racing/internal/domain/roster"
	"github.com/riskibarqy/fantasy-racing/internal/domain/selection"
	"github.com/riskibarqy/fantasy-racing/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-racing/internal/platform/logging"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(v time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = v
}

type sequenceIDs struct {
	mu sync.Mutex
	n  int
}

func (g *sequenceIDs) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%03d", g.n), nil
}

type scriptedRandom struct {
	next  int
	draws int
}

func (r *scriptedRandom) IntN(n int) int {
	r.draws++
	return r.next % n
}

type stubScorer struct {
	breakdown selection.PointBreakdown
	err       error
	requests  []ScoreRequest
}

func (s *stubScorer) ScoreSelection(_ context.Context, req ScoreRequest) (selection.PointBreakdown, error) {
	s.requests = append(s.requests, req)
	return s.breakdown, s.err
}

type recordingLeaderboard struct {
	mu    sync.Mutex
	calls []string
}

func (l *recordingLeaderboard) RefreshLeague(_ context.Context, leagueID string, season int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf("%s/%d", leagueID, season))
	return nil
}

type engine struct {
	clock       *testClock
	leagues     *memory.LeagueRepository
	races       *memory.RaceRepository
	selections  *memory.SelectionRepository
	ledgers     *memory.ReuseLedgerRepository
	cards       *memory.CardRepository
	results     *memory.RaceResultRepository
	random      *scriptedRandom
	scorer      *stubScorer
	leaderboard *recordingLeaderboard

	reuse       *ReuseCycleService
	selection   *SelectionService
	decks       *DeckService
	activations *CardActivationService
	calendar    *RaceService
}

func newEngine(t *testing.T, now time.Time) *engine {
	t.Helper()

	e := &engine{
		clock:       &testClock{now: now},
		leagues:     memory.NewLeagueRepository(memory.SeedLeagues(), memory.SeedMembers()),
		races:       memory.NewRaceRepository(memory.SeedRaces()),
		selections:  memory.NewSelectionRepository(),
		ledgers:     memory.NewReuseLedgerRepository(),
		cards:       memory.NewCardRepository(card.DefaultCatalog()),
		results:     memory.NewRaceResultRepository(memory.SeedRaceResults()),
		random:      &scriptedRandom{},
		scorer:      &stubScorer{},
		leaderboard: &recordingLeaderboard{},
	}

	logger := logging.NewNop()
	rosters := roster.DefaultCatalog()
	ids := &sequenceIDs{}

	e.reuse = NewReuseCycleService(e.ledgers, e.selections, rosters, logger)
	e.reuse.now = e.clock.Now

	e.selection = NewSelectionService(e.leagues, e.races, e.selections, e.cards, e.results, e.reuse, rosters, ids, logger)
	e.selection.SetScoringGateway(e.scorer)
	e.selection.SetLeaderboardUpdater(e.leaderboard)
	e.selection.now = e.clock.Now

	e.decks = NewDeckService(e.leagues, e.races, e.cards, e.cards, e.cards.Usages(), logger)
	e.decks.now = e.clock.Now

	e.activations = NewCardActivationService(e.leagues, e.races, e.selections, e.cards, e.cards, e.cards.Usages(), e.cards, rosters, e.random, ids, logger)
	e.activations.now = e.clock.Now

	e.calendar = NewRaceService(e.leagues, e.races)
	e.calendar.now = e.clock.Now

	return e
}

func utc(value string) time.Time {
	v, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return v.UTC()
}

func (e *engine) save(t *testing.T, userID, leagueID, mainDriver, reserveDriver, team string) selection.Selection {
	t.Helper()

	item, err := e.selection.Save(t.Context(), SaveSelectionInput{
		UserID:        userID,
		LeagueID:      leagueID,
		MainDriver:    mainDriver,
		ReserveDriver: reserveDriver,
		Team:          team,
	})
	if err != nil {
		t.Fatalf("save selection %s/%s/%s: %v", mainDriver, reserveDriver, team, err)
	}
	return item
}

var validDeckDrivers = []string{"drv-shadow", "drv-mystery", "drv-saboteur", "drv-safe-hands", "drv-pit-whisper"}
var validDeckTeams = []string{"team-random", "team-rivalry", "team-reliability", "team-upgrade-package"}

// selectDeckBeforeSeason builds a valid deck while the 2026 deck is still open.
func (e *engine) selectDeckBeforeSeason(t *testing.T, userID string) {
	t.Helper()

	current := e.clock.Now()
	e.clock.Set(utc("2026-03-01T09:00:00Z"))
	defer e.clock.Set(current)

	if _, err := e.decks.SelectDeck(t.Context(), SelectDeckInput{
		UserID:        userID,
		LeagueID:      memory.LeagueIDPaddock2026,
		DriverCardIDs: validDeckDrivers,
		TeamCardIDs:   validDeckTeams,
	}); err != nil {
		t.Fatalf("select deck: %v", err)
	}
}
