package match

import (
	"context"
	"time"
)

// Repository stores matches and their results.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Match, bool, error)
	// FindByKickoff matches the team pair and the kickoff to the minute.
	FindByKickoff(ctx context.Context, team1ID, team2ID int64, kickoff time.Time) (Match, bool, error)
	// FindOnDate matches the team pair on the kickoff's calendar day, ignoring the time.
	FindOnDate(ctx context.Context, team1ID, team2ID int64, day time.Time) (Match, bool, error)
	ListByWeek(ctx context.Context, season int, week string) ([]Match, error)
	Create(ctx context.Context, m Match) (Match, error)

	GetResult(ctx context.Context, matchID int64) (Result, bool, error)
	ListResults(ctx context.Context, matchIDs []int64) ([]Result, error)
	CreateResult(ctx context.Context, r Result) (Result, error)
}
