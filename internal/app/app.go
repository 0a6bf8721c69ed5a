package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantasy-racing/external/leaderboard"
	"github.com/riskibarqy/fantasy-racing/external/scoring"
	"github.com/riskibarqy/fantasy-racing/internal/config"
	"github.com/riskibarqy/fantasy-racing/internal/domain/card"
	"github.com/riskibarqy/fantasy-racing/internal/domain/league"
	"github.com/riskibarqy/fantasy-racing/internal/domain/race"
	"github.com/riskibarqy/fantasy-racing/internal/domain/reusecycle"
	"github.com/riskibarqy/fantasy-racing/internal/domain/roster"
	domainscoring "github.com/riskibarqy/fantasy-racing/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-racing/internal/domain/selection"
	"github.com/riskibarqy/fantasy-racing/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/fantasy-racing/internal/infrastructure/account/jwtauth"
	cacherepo "github.com/riskibarqy/fantasy-racing/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/fantasy-racing/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-racing/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fantasy-racing/internal/interfaces/httpapi"
	"github.com/riskibarqy/fantasy-racing/internal/platform/cache"
	idgen "github.com/riskibarqy/fantasy-racing/internal/platform/id"
	"github.com/riskibarqy/fantasy-racing/internal/platform/logging"
	"github.com/riskibarqy/fantasy-racing/internal/platform/randsrc"
	"github.com/riskibarqy/fantasy-racing/internal/usecase"
)

// App owns the HTTP server and everything it has to release on shutdown.
type App struct {
	Server *http.Server

	db         *sqlx.DB
	dispatcher *usecase.LeaderboardDispatcher
	logger     *logging.Logger
}

type repositories struct {
	leagues     league.Repository
	races       race.Repository
	selections  selection.Repository
	catalog     card.CatalogRepository
	decks       card.DeckRepository
	usages      card.UsageRepository
	activations card.ActivationRepository
	results     domainscoring.ResultRepository
	ledger      reusecycle.Repository
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{logger: logger}

	repos, err := a.buildRepositories(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.CacheEnabled {
		store := cache.NewStore(cfg.CacheTTL)
		repos.leagues = cacherepo.NewLeagueRepository(repos.leagues, store)
		repos.races = cacherepo.NewRaceRepository(repos.races, store)
		repos.catalog = cacherepo.NewCardCatalogRepository(repos.catalog, store)
	}

	verifier, err := newTokenVerifier(cfg, logger)
	if err != nil {
		a.closeDB()
		return nil, err
	}

	rosters := roster.DefaultCatalog()
	ids := idgen.NewUUIDGenerator()

	reuse := usecase.NewReuseCycleService(repos.ledger, repos.selections, rosters, logger)
	selectionSvc := usecase.NewSelectionService(
		repos.leagues,
		repos.races,
		repos.selections,
		repos.activations,
		repos.results,
		reuse,
		rosters,
		ids,
		logger,
	)
	deckSvc := usecase.NewDeckService(repos.leagues, repos.races, repos.catalog, repos.decks, repos.usages, logger)
	activationSvc := usecase.NewCardActivationService(
		repos.leagues,
		repos.races,
		repos.selections,
		repos.catalog,
		repos.decks,
		repos.usages,
		repos.activations,
		rosters,
		randsrc.New(cfg.CardDrawSeed),
		ids,
		logger,
	)
	raceSvc := usecase.NewRaceService(repos.leagues, repos.races)

	if err := a.wireIntegrations(cfg, selectionSvc); err != nil {
		a.closeDB()
		return nil, err
	}

	var limiter *httpapi.IPRateLimiter
	if cfg.RateLimitEnabled {
		limiter = httpapi.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	handler := httpapi.NewHandler(selectionSvc, deckSvc, activationSvc, raceSvc, logger)
	router := httpapi.NewRouter(handler, verifier, logger, httpapi.RouterOptions{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
	})

	a.Server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	logger.Info("app wired",
		"storage", cfg.StorageDriver,
		"auth_mode", cfg.AuthMode,
		"cache_enabled", cfg.CacheEnabled,
		"scoring_enabled", cfg.ScoringEnabled,
		"leaderboard_enabled", cfg.LeaderboardEnabled,
		"rate_limit_enabled", cfg.RateLimitEnabled,
	)

	return a, nil
}

func (a *App) buildRepositories(ctx context.Context, cfg config.Config) (repositories, error) {
	if cfg.StorageDriver != config.StoragePostgres {
		cards := memory.NewCardRepository(card.DefaultCatalog())
		selections := memory.NewSelectionRepository()
		return repositories{
			leagues:     memory.NewLeagueRepository(memory.SeedLeagues(), memory.SeedMembers()),
			races:       memory.NewRaceRepository(memory.SeedRaces()),
			selections:  selections,
			catalog:     cards,
			decks:       cards,
			usages:      cards.Usages(),
			activations: cards,
			results:     memory.NewRaceResultRepository(memory.SeedRaceResults()),
			ledger:      memory.NewReuseLedgerRepository(),
		}, nil
	}

	db, err := OpenPostgres(ctx, cfg)
	if err != nil {
		return repositories{}, err
	}
	a.db = db

	if cfg.DBSeedOnStart {
		if err := postgres.BootstrapSeed(ctx, db); err != nil {
			a.closeDB()
			return repositories{}, fmt.Errorf("bootstrap seed: %w", err)
		}
	}

	cards := postgres.NewCardRepository(db)
	return repositories{
		leagues:     postgres.NewLeagueRepository(db),
		races:       postgres.NewRaceRepository(db),
		selections:  postgres.NewSelectionRepository(db),
		catalog:     cards,
		decks:       cards,
		usages:      cards.Usages(),
		activations: cards,
		results:     postgres.NewRaceResultRepository(db),
		ledger:      postgres.NewReuseLedgerRepository(db),
	}, nil
}

func newTokenVerifier(cfg config.Config, logger *logging.Logger) (httpapi.TokenVerifier, error) {
	if cfg.AuthMode == config.AuthModeJWT {
		verifier, err := jwtauth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTLeeway)
		if err != nil {
			return nil, fmt.Errorf("build jwt verifier: %w", err)
		}
		return verifier, nil
	}

	return anubis.NewClient(anubis.ClientConfig{
		HTTPClient:      &http.Client{Timeout: cfg.AnubisTimeout},
		BaseURL:         cfg.AnubisBaseURL,
		IntrospectPath:  cfg.AnubisIntrospectURL,
		AdminKey:        cfg.AnubisAdminKey,
		CacheTTL:        cfg.AnubisCacheTTL,
		CacheMaxEntries: 10000,
		CircuitBreaker:  cfg.AnubisCircuit,
		Logger:          logger,
	}), nil
}

func (a *App) wireIntegrations(cfg config.Config, selectionSvc *usecase.SelectionService) error {
	if cfg.ScoringEnabled {
		client, err := scoring.NewClient(scoring.ClientConfig{
			BaseURL:        cfg.ScoringBaseURL,
			ScorePath:      cfg.ScoringPath,
			Token:          cfg.ScoringToken,
			Timeout:        cfg.ScoringTimeout,
			MaxRetries:     cfg.ScoringMaxRetries,
			CircuitBreaker: cfg.ScoringCircuit,
			Logger:         a.logger,
		})
		if err != nil {
			return fmt.Errorf("build scoring client: %w", err)
		}
		selectionSvc.SetScoringGateway(client)
	}

	if cfg.LeaderboardEnabled {
		publisher, err := leaderboard.NewPublisher(leaderboard.PublisherConfig{
			HTTPClient:       &http.Client{Timeout: cfg.LeaderboardTimeout},
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.LeaderboardTargetBaseURL,
			RefreshPath:      cfg.LeaderboardRefreshPath,
			Retries:          cfg.LeaderboardRetries,
			InternalJobToken: cfg.InternalJobToken,
			Timeout:          cfg.LeaderboardTimeout,
			CircuitBreaker:   cfg.LeaderboardCircuit,
			Logger:           a.logger,
		})
		if err != nil {
			return fmt.Errorf("build leaderboard publisher: %w", err)
		}

		dispatcher, err := usecase.NewLeaderboardDispatcher(publisher, cfg.LeaderboardWorkers, a.logger)
		if err != nil {
			return fmt.Errorf("build leaderboard dispatcher: %w", err)
		}
		a.dispatcher = dispatcher
		selectionSvc.SetLeaderboardUpdater(dispatcher)
	}

	return nil
}

// Close drains background work and releases the database handle. The HTTP
// server is expected to be shut down by the caller first.
func (a *App) Close(timeout time.Duration) error {
	var errs []error
	if a.dispatcher != nil {
		if err := a.dispatcher.Close(timeout); err != nil {
			errs = append(errs, fmt.Errorf("close leaderboard dispatcher: %w", err))
		}
	}
	if err := a.closeDB(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}

func (a *App) closeDB() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}
