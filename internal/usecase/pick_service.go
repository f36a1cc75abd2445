package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/match"
	"github.com/riskibarqy/nfl-pickem/internal/domain/pick"
	"github.com/riskibarqy/nfl-pickem/internal/domain/season"
	"github.com/riskibarqy/nfl-pickem/internal/domain/store"
	"github.com/riskibarqy/nfl-pickem/internal/domain/team"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
)

// MatchView is a match with its teams, result and, when asked for a user,
// that user's pick.
type MatchView struct {
	Match      match.Match
	Team1      team.Team
	Team2      team.Team
	Result     *match.Result
	PickTeamID *int64
	Locked     bool
}

type WeekPicks struct {
	Pointer season.Pointer
	Matches []MatchView
}

type SubmitPicksResult struct {
	Saved int
}

// PickService serves the picks page: the current week's matches and the
// per-user pick upsert.
type PickService struct {
	uow    store.UnitOfWork
	repos  store.Repositories
	state  *SeasonState
	zone   *time.Location
	logger *logging.Logger
	now    func() time.Time
}

// NewPickService takes the zone the schedule page is rendered in; kickoffs
// are stored as that zone's wall clock.
func NewPickService(uow store.UnitOfWork, repos store.Repositories, state *SeasonState, zone *time.Location, logger *logging.Logger) *PickService {
	if logger == nil {
		logger = logging.Default()
	}
	if zone == nil {
		zone = time.UTC
	}
	return &PickService{
		uow:    uow,
		repos:  repos,
		state:  state,
		zone:   zone,
		logger: logger.Named("picks"),
		now:    time.Now,
	}
}

func (s *PickService) CurrentWeek(ctx context.Context, userID int64) (WeekPicks, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.CurrentWeek")
	defer span.End()

	pointer, err := s.state.Require()
	if err != nil {
		return WeekPicks{}, err
	}
	views, err := loadMatchViews(ctx, s.repos, pointer, WallClock(s.now(), s.zone))
	if err != nil {
		return WeekPicks{}, err
	}

	ids := make([]int64, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.Match.ID)
	}
	picks, err := s.repos.Picks.ListByUser(ctx, userID, ids)
	if err != nil {
		return WeekPicks{}, fmt.Errorf("list picks user=%d: %w", userID, err)
	}
	byMatch := make(map[int64]int64, len(picks))
	for _, p := range picks {
		byMatch[p.MatchID] = p.TeamID
	}
	for i := range views {
		if teamID, ok := byMatch[views[i].Match.ID]; ok {
			teamID := teamID
			views[i].PickTeamID = &teamID
		}
	}

	return WeekPicks{Pointer: pointer, Matches: views}, nil
}

// Submit saves the choices (match id -> team id) in one transaction. Every
// choice must target a current-week match that has not kicked off or
// finished, and one of that match's two teams.
func (s *PickService) Submit(ctx context.Context, userID int64, choices map[int64]int64) (result SubmitPicksResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.Submit")
	defer func() { endSpan(span, err) }()

	if userID <= 0 {
		return SubmitPicksResult{}, fmt.Errorf("%w: user is required", ErrUnauthorized)
	}
	if len(choices) == 0 {
		return SubmitPicksResult{}, fmt.Errorf("%w: no picks submitted", ErrInvalidInput)
	}
	pointer, err := s.state.Require()
	if err != nil {
		return SubmitPicksResult{}, err
	}

	matchIDs := make([]int64, 0, len(choices))
	for matchID := range choices {
		matchIDs = append(matchIDs, matchID)
	}
	sort.Slice(matchIDs, func(i, j int) bool { return matchIDs[i] < matchIDs[j] })

	now := WallClock(s.now(), s.zone)
	err = s.uow.Do(ctx, func(ctx context.Context, repos store.Repositories) error {
		for _, matchID := range matchIDs {
			teamID := choices[matchID]
			m, ok, err := repos.Matches.GetByID(ctx, matchID)
			if err != nil {
				return fmt.Errorf("get match=%d: %w", matchID, err)
			}
			if !ok || m.Season != pointer.Year || m.Week != pointer.Week {
				return fmt.Errorf("%w: match %d is not part of %s", ErrInvalidInput, matchID, pointer.String())
			}
			if !m.HasTeam(teamID) {
				return fmt.Errorf("%w: team %d does not play in match %d", ErrInvalidInput, teamID, matchID)
			}
			_, decided, err := repos.Matches.GetResult(ctx, matchID)
			if err != nil {
				return fmt.Errorf("get result match=%d: %w", matchID, err)
			}
			if decided || !now.Before(m.KickoffAt) {
				return fmt.Errorf("%w: match %d is locked", ErrConflict, matchID)
			}

			if _, err := repos.Picks.Upsert(ctx, pick.Pick{
				UserID:    userID,
				TeamID:    teamID,
				MatchID:   matchID,
				UpdatedAt: s.now().UTC(),
			}); err != nil {
				return fmt.Errorf("save pick match=%d: %w", matchID, err)
			}
		}
		return nil
	})
	if err != nil {
		return SubmitPicksResult{}, err
	}

	s.logger.InfoContext(ctx, "picks saved", "user_id", userID, "week", pointer.String(), "count", len(matchIDs))
	return SubmitPicksResult{Saved: len(matchIDs)}, nil
}

// loadMatchViews joins a week's matches with teams and results.
func loadMatchViews(ctx context.Context, repos store.Repositories, p season.Pointer, now time.Time) ([]MatchView, error) {
	matches, err := repos.Matches.ListByWeek(ctx, p.Year, p.Week)
	if err != nil {
		return nil, fmt.Errorf("list matches %s: %w", p.String(), err)
	}
	teams, err := repos.Teams.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	teamByID := make(map[int64]team.Team, len(teams))
	for _, t := range teams {
		teamByID[t.ID] = t
	}

	ids := make([]int64, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	results, err := repos.Matches.ListResults(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list results %s: %w", p.String(), err)
	}
	resultByMatch := make(map[int64]match.Result, len(results))
	for _, r := range results {
		resultByMatch[r.MatchID] = r
	}

	views := make([]MatchView, 0, len(matches))
	for _, m := range matches {
		view := MatchView{
			Match: m,
			Team1: teamByID[m.Team1ID],
			Team2: teamByID[m.Team2ID],
		}
		if r, ok := resultByMatch[m.ID]; ok {
			r := r
			view.Result = &r
		}
		view.Locked = view.Result != nil || !now.Before(m.KickoffAt)
		views = append(views, view)
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Match.KickoffAt.Before(views[j].Match.KickoffAt)
	})
	return views, nil
}

// WallClock renders t as the wall clock of zone, carried in UTC, which is
// how kickoff times are stored.
func WallClock(t time.Time, zone *time.Location) time.Time {
	if zone == nil {
		zone = time.UTC
	}
	local := t.In(zone)
	return time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), time.UTC)
}
