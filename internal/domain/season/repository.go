package season

import "context"

// Repository persists the current pointer and the season catalog.
type Repository interface {
	// LockRun serializes reconcile transactions across processes.
	LockRun(ctx context.Context) error

	GetCurrent(ctx context.Context) (Pointer, bool, error)
	SetCurrent(ctx context.Context, p Pointer) error

	HasEntry(ctx context.Context, year int, week string) (bool, error)
	AddEntry(ctx context.Context, year int, week string) error
	ListYears(ctx context.Context) ([]int, error)
	// ListWeeks returns week labels of a year in the order they were first seen.
	ListWeeks(ctx context.Context, year int) ([]string, error)
}
