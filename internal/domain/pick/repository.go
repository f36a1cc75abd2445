package pick

import "context"

type Repository interface {
	// Upsert inserts the pick or replaces the team of the existing (user, match) row.
	Upsert(ctx context.Context, p Pick) (Pick, error)
	ListByUser(ctx context.Context, userID int64, matchIDs []int64) ([]Pick, error)
	ListByMatches(ctx context.Context, matchIDs []int64) ([]Pick, error)
}
