package league

import "context"

// Repository describes league reads the engine needs. League CRUD lives elsewhere.
type Repository interface {
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
	GetMember(ctx context.Context, leagueID, userID string) (Member, bool, error)
	ListMembers(ctx context.Context, leagueID string) ([]Member, error)
}
