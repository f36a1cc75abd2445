package team

import "context"

// Repository exposes team reference data.
type Repository interface {
	List(ctx context.Context) ([]Team, error)
	GetByID(ctx context.Context, id int64) (Team, bool, error)
	FindByName(ctx context.Context, name string) (Team, bool, error)
	// Seed inserts the teams whose names are missing and reports how many were added.
	Seed(ctx context.Context, teams []Team) (int, error)
}
