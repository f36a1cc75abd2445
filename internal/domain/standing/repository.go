package standing

import "context"

type Repository interface {
	Exists(ctx context.Context, teamID int64, year int, week string) (bool, error)
	Create(ctx context.Context, s WeeklyTeamStanding) error
	ListByWeek(ctx context.Context, year int, week string) ([]WeeklyTeamStanding, error)
}
