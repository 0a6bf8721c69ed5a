package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/fantasy-racing/internal/domain/reusecycle"
)

type ReuseLedgerRepository struct {
	mu    sync.Mutex
	items map[string]reusecycle.Ledger
}

func NewReuseLedgerRepository() *ReuseLedgerRepository {
	return &ReuseLedgerRepository{items: make(map[string]reusecycle.Ledger)}
}

func (r *ReuseLedgerRepository) Get(_ context.Context, userID, leagueID string) (reusecycle.Ledger, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[ledgerKey(userID, leagueID)]
	if !ok {
		return reusecycle.Ledger{}, false, nil
	}
	return item.Clone(), true, nil
}

func (r *ReuseLedgerRepository) CompareAndSwap(_ context.Context, ledger reusecycle.Ledger, expectedVersion int64) (reusecycle.Ledger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := ledgerKey(ledger.UserID, ledger.LeagueID)
	current, ok := r.items[key]
	switch {
	case !ok && expectedVersion != 0:
		return reusecycle.Ledger{}, fmt.Errorf("%w: ledger missing, expected version %d", reusecycle.ErrVersionConflict, expectedVersion)
	case ok && current.Version != expectedVersion:
		return reusecycle.Ledger{}, fmt.Errorf("%w: have %d, expected %d", reusecycle.ErrVersionConflict, current.Version, expectedVersion)
	}

	stored := ledger.Clone()
	stored.Version = expectedVersion + 1
	r.items[key] = stored
	return stored.Clone(), nil
}

func ledgerKey(userID, leagueID string) string {
	return userID + "::" + leagueID
}
