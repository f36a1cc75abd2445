package nflschedule

import (
	"context"
	"fmt"

	"github.com/riskibarqy/nfl-pickem/internal/usecase"
)

const DefaultURL = "https://www.nfl.com/schedules/"

// PageSource returns the raw markup of a schedule page.
type PageSource interface {
	Name() string
	Fetch(ctx context.Context) ([]byte, error)
}

// fetchFailure tags err so errors.Is(err, usecase.ErrFetchFailure) holds.
func fetchFailure(err error) error {
	return fmt.Errorf("%w: %w", usecase.ErrFetchFailure, err)
}
