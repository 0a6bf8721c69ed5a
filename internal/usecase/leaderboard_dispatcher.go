package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/fantasy-racing/internal/platform/logging"
)

const defaultLeaderboardRefreshTimeout = 15 * time.Second

// LeaderboardDispatcher hands leaderboard refreshes to a worker pool so the
// request that triggered them does not wait on the leaderboard service.
type LeaderboardDispatcher struct {
	updater LeaderboardUpdater
	pool    *ants.Pool
	timeout time.Duration
	logger  *logging.Logger
	wg      sync.WaitGroup
}

func NewLeaderboardDispatcher(updater LeaderboardUpdater, workers int, logger *logging.Logger) (*LeaderboardDispatcher, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if workers <= 0 {
		workers = 4
	}

	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create leaderboard worker pool: %w", err)
	}

	return &LeaderboardDispatcher{
		updater: updater,
		pool:    pool,
		timeout: defaultLeaderboardRefreshTimeout,
		logger:  logger,
	}, nil
}

// RefreshLeague schedules a refresh. It only fails when the pool is saturated or closed.
func (d *LeaderboardDispatcher) RefreshLeague(ctx context.Context, leagueID string, season int) error {
	detached := context.WithoutCancel(ctx)

	d.wg.Add(1)
	err := d.pool.Submit(func() {
		defer d.wg.Done()

		runCtx, cancel := context.WithTimeout(detached, d.timeout)
		defer cancel()

		if err := d.updater.RefreshLeague(runCtx, leagueID, season); err != nil {
			d.logger.WarnContext(runCtx, "leaderboard refresh failed", "league_id", leagueID, "season", season, "error", err)
			return
		}
		d.logger.DebugContext(runCtx, "leaderboard refresh dispatched", "league_id", leagueID, "season", season)
	})
	if err != nil {
		d.wg.Done()
		return fmt.Errorf("%w: submit leaderboard refresh: %w", ErrDependencyUnavailable, err)
	}
	return nil
}

// Close waits for queued refreshes up to timeout and releases the pool.
func (d *LeaderboardDispatcher) Close(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		d.logger.Warn("leaderboard refreshes still running at shutdown")
	}
	return d.pool.ReleaseTimeout(timeout)
}
