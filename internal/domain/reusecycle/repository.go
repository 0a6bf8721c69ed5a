package reusecycle

import "context"

// Repository loads and stores ledgers with optimistic concurrency.
type Repository interface {
	Get(ctx context.Context, userID, leagueID string) (Ledger, bool, error)
	// CompareAndSwap stores ledger when the persisted version equals expectedVersion
	// and returns the stored copy with its new version. Version 0 means the row must not exist.
	CompareAndSwap(ctx context.Context, ledger Ledger, expectedVersion int64) (Ledger, error)
}
