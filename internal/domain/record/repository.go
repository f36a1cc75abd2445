package record

import "context"

type Repository interface {
	// Latest returns the newest row of a user within a year.
	Latest(ctx context.Context, userID int64, year int) (WeeklyRecord, bool, error)
	Exists(ctx context.Context, userID int64, year int, week string) (bool, error)
	Append(ctx context.Context, r WeeklyRecord) error
	// ListLatest returns the newest row per user within a year.
	ListLatest(ctx context.Context, year int) ([]WeeklyRecord, error)
	ListByWeek(ctx context.Context, year int, week string) ([]WeeklyRecord, error)
	ListByUser(ctx context.Context, userID int64, year int) ([]WeeklyRecord, error)
}
