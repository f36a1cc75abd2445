package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/riskibarqy/nfl-pickem/internal/domain/record"
	"github.com/riskibarqy/nfl-pickem/internal/domain/season"
	"github.com/riskibarqy/nfl-pickem/internal/domain/store"
	"github.com/riskibarqy/nfl-pickem/internal/domain/team"
)

// ReadCache is the read-through cache in front of standings.
type ReadCache interface {
	GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error)
	DeletePrefix(ctx context.Context, prefix string)
}

const standingsCachePrefix = "standings:"

type LeaderboardEntry struct {
	Rank     int
	UserID   int64
	Username string
	Week     string
	Tally    record.Tally
}

type Leaderboard struct {
	Year    int
	Week    string
	Entries []LeaderboardEntry
}

type TeamStandingView struct {
	Team   team.Team
	Record string
	Tally  record.Tally
}

type TeamStandings struct {
	Year  int
	Week  string
	Teams []TeamStandingView
}

// StandingsService reads the user ledger and the team snapshots.
type StandingsService struct {
	repos store.Repositories
	state *SeasonState
	cache ReadCache
}

func NewStandingsService(repos store.Repositories, state *SeasonState, cache ReadCache) *StandingsService {
	return &StandingsService{repos: repos, state: state, cache: cache}
}

// InvalidateCache drops every cached leaderboard. Wired as a reconcile hook.
func (s *StandingsService) InvalidateCache(ctx context.Context, _ ReconcileResult) {
	if s.cache != nil {
		s.cache.DeletePrefix(ctx, standingsCachePrefix)
	}
}

// Leaderboard returns each user's standing. Without a week it is the newest
// row per user in the year; with a week, the rows written for that week.
// Year zero means the current season.
func (s *StandingsService) Leaderboard(ctx context.Context, year int, week string) (Leaderboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Leaderboard")
	defer span.End()

	year, err := s.resolveYear(year)
	if err != nil {
		return Leaderboard{}, err
	}
	week = strings.TrimSpace(week)

	load := func(ctx context.Context) (any, error) {
		return s.loadLeaderboard(ctx, year, week)
	}
	if s.cache == nil {
		board, err := s.loadLeaderboard(ctx, year, week)
		return board, err
	}

	key := standingsCachePrefix + strconv.Itoa(year) + ":" + week
	value, err := s.cache.GetOrLoad(ctx, key, load)
	if err != nil {
		return Leaderboard{}, err
	}
	board, ok := value.(Leaderboard)
	if !ok {
		return s.loadLeaderboard(ctx, year, week)
	}
	return board, nil
}

func (s *StandingsService) loadLeaderboard(ctx context.Context, year int, week string) (Leaderboard, error) {
	var (
		rows []record.WeeklyRecord
		err  error
	)
	if week == "" {
		rows, err = s.repos.Records.ListLatest(ctx, year)
	} else {
		rows, err = s.repos.Records.ListByWeek(ctx, year, week)
	}
	if err != nil {
		return Leaderboard{}, fmt.Errorf("list user records year=%d: %w", year, err)
	}

	users, err := s.repos.Users.List(ctx)
	if err != nil {
		return Leaderboard{}, fmt.Errorf("list users: %w", err)
	}
	names := make(map[int64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}

	entries := make([]LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, LeaderboardEntry{
			UserID:   row.UserID,
			Username: names[row.UserID],
			Week:     row.Week,
			Tally:    row.Tally,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Tally, entries[j].Tally
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Losses != b.Losses {
			return a.Losses < b.Losses
		}
		return entries[i].Username < entries[j].Username
	})
	rankEntries(entries)

	return Leaderboard{Year: year, Week: week, Entries: entries}, nil
}

// rankEntries gives equal records the same rank ("1, 2, 2, 4").
func rankEntries(entries []LeaderboardEntry) {
	for i := range entries {
		if i > 0 && entries[i].Tally.Wins == entries[i-1].Tally.Wins && entries[i].Tally.Losses == entries[i-1].Tally.Losses {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
}

// UserHistory returns a user's ledger rows for a year, oldest first.
func (s *StandingsService) UserHistory(ctx context.Context, userID int64, year int) ([]record.WeeklyRecord, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.UserHistory")
	defer span.End()

	year, err := s.resolveYear(year)
	if err != nil {
		return nil, err
	}
	rows, err := s.repos.Records.ListByUser(ctx, userID, year)
	if err != nil {
		return nil, fmt.Errorf("list records user=%d: %w", userID, err)
	}
	return rows, nil
}

// TeamStandings lists the team snapshots of a week, best record first.
// Zero values select the current pointer.
func (s *StandingsService) TeamStandings(ctx context.Context, year int, week string) (TeamStandings, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.TeamStandings")
	defer span.End()

	p, err := s.resolvePointer(year, week)
	if err != nil {
		return TeamStandings{}, err
	}
	rows, err := s.repos.Standings.ListByWeek(ctx, p.Year, p.Week)
	if err != nil {
		return TeamStandings{}, fmt.Errorf("list team standings %s: %w", p.String(), err)
	}
	teams, err := s.repos.Teams.List(ctx)
	if err != nil {
		return TeamStandings{}, fmt.Errorf("list teams: %w", err)
	}
	byID := make(map[int64]team.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}

	out := make([]TeamStandingView, 0, len(rows))
	for _, row := range rows {
		tally, _ := record.ParseTally(row.Record)
		out = append(out, TeamStandingView{Team: byID[row.TeamID], Record: row.Record, Tally: tally})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Tally.Wins != out[j].Tally.Wins {
			return out[i].Tally.Wins > out[j].Tally.Wins
		}
		if out[i].Tally.Losses != out[j].Tally.Losses {
			return out[i].Tally.Losses < out[j].Tally.Losses
		}
		return out[i].Team.Name < out[j].Team.Name
	})

	return TeamStandings{Year: p.Year, Week: p.Week, Teams: out}, nil
}

func (s *StandingsService) resolveYear(year int) (int, error) {
	if year < 0 {
		return 0, fmt.Errorf("%w: year must be positive", ErrInvalidInput)
	}
	if year > 0 {
		return year, nil
	}
	p, err := s.state.Require()
	if err != nil {
		return 0, err
	}
	return p.Year, nil
}

func (s *StandingsService) resolvePointer(year int, week string) (season.Pointer, error) {
	return resolvePointer(s.state, year, week)
}

func resolvePointer(state *SeasonState, year int, week string) (season.Pointer, error) {
	week = strings.TrimSpace(week)
	if year < 0 {
		return season.Pointer{}, fmt.Errorf("%w: year must be positive", ErrInvalidInput)
	}
	if year > 0 && week != "" {
		return season.Pointer{Year: year, Week: week}, nil
	}
	if year > 0 || week != "" {
		return season.Pointer{}, fmt.Errorf("%w: year and week must be given together", ErrInvalidInput)
	}
	return state.Require()
}
