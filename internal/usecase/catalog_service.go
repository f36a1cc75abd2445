package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/season"
	"github.com/riskibarqy/nfl-pickem/internal/domain/store"
	"github.com/riskibarqy/nfl-pickem/internal/domain/team"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
)

// CatalogService serves reference data: teams, the season menus and the
// match list of any week.
type CatalogService struct {
	repos  store.Repositories
	state  *SeasonState
	zone   *time.Location
	logger *logging.Logger
	now    func() time.Time
}

func NewCatalogService(repos store.Repositories, state *SeasonState, zone *time.Location, logger *logging.Logger) *CatalogService {
	if logger == nil {
		logger = logging.Default()
	}
	return &CatalogService{repos: repos, state: state, zone: zone, logger: logger.Named("catalog"), now: time.Now}
}

func (s *CatalogService) Teams(ctx context.Context) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.Teams")
	defer span.End()

	items, err := s.repos.Teams.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return items, nil
}

// SeedTeams adds the default teams that are missing.
func (s *CatalogService) SeedTeams(ctx context.Context) (int, error) {
	added, err := s.repos.Teams.Seed(ctx, team.Defaults())
	if err != nil {
		return 0, fmt.Errorf("seed teams: %w", err)
	}
	if added > 0 {
		s.logger.InfoContext(ctx, "teams seeded", "added", added)
	}
	return added, nil
}

func (s *CatalogService) Current() (season.Pointer, error) {
	return s.state.Require()
}

func (s *CatalogService) Years(ctx context.Context) ([]int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.Years")
	defer span.End()

	years, err := s.repos.Seasons.ListYears(ctx)
	if err != nil {
		return nil, fmt.Errorf("list season years: %w", err)
	}
	return years, nil
}

func (s *CatalogService) Weeks(ctx context.Context, year int) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.Weeks")
	defer span.End()

	if year <= 0 {
		return nil, fmt.Errorf("%w: year must be positive", ErrInvalidInput)
	}
	weeks, err := s.repos.Seasons.ListWeeks(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("list season weeks year=%d: %w", year, err)
	}
	if len(weeks) == 0 {
		return nil, fmt.Errorf("%w: no weeks cataloged for %d", ErrNotFound, year)
	}
	return weeks, nil
}

// Matches lists a week's matches; zero values select the current week.
func (s *CatalogService) Matches(ctx context.Context, year int, week string) (season.Pointer, []MatchView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.Matches")
	defer span.End()

	p, err := resolvePointer(s.state, year, week)
	if err != nil {
		return season.Pointer{}, nil, err
	}
	views, err := loadMatchViews(ctx, s.repos, p, WallClock(s.now(), s.zone))
	if err != nil {
		return season.Pointer{}, nil, err
	}
	return p, views, nil
}
