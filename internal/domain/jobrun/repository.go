package jobrun

import "context"

type Repository interface {
	Upsert(ctx context.Context, run Run) error
	ListRecent(ctx context.Context, limit int) ([]Run, error)
}
