package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/match"
	"github.com/riskibarqy/nfl-pickem/internal/domain/schedule"
	"github.com/riskibarqy/nfl-pickem/internal/domain/standing"
	"github.com/riskibarqy/nfl-pickem/internal/domain/store"
	"github.com/riskibarqy/nfl-pickem/internal/domain/team"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// ScheduleSource fetches the current schedule page and parses it.
type ScheduleSource interface {
	FetchWeek(ctx context.Context) (schedule.Week, error)
}

type ReconcileConfig struct {
	TiePolicy match.TiePolicy
}

// ReconcileResult summarizes one run. Duplicates counts the idempotent
// no-ops where the row already existed.
type ReconcileResult struct {
	Year             int           `json:"year"`
	Week             string        `json:"week"`
	Games            int           `json:"games"`
	MatchesCreated   int           `json:"matches_created"`
	ResultsCreated   int           `json:"results_created"`
	StandingsCreated int           `json:"standings_created"`
	Duplicates       int           `json:"duplicates"`
	UnknownTeams     int           `json:"unknown_teams"`
	UnmatchedFinals  int           `json:"unmatched_finals"`
	PointerChanged   bool          `json:"pointer_changed"`
	WeekCataloged    bool          `json:"week_cataloged"`
	Roll             *RollResult   `json:"roll,omitempty"`
	Duration         time.Duration `json:"-"`
}

func (r ReconcileResult) Summary() map[string]any {
	out := map[string]any{
		"year":              r.Year,
		"week":              r.Week,
		"games":             r.Games,
		"matches_created":   r.MatchesCreated,
		"results_created":   r.ResultsCreated,
		"standings_created": r.StandingsCreated,
		"duplicates":        r.Duplicates,
		"unknown_teams":     r.UnknownTeams,
		"unmatched_finals":  r.UnmatchedFinals,
		"pointer_changed":   r.PointerChanged,
		"duration_ms":       r.Duration.Milliseconds(),
	}
	if r.Roll != nil {
		out["records_appended"] = r.Roll.Appended
		out["records_already_rolled"] = r.Roll.AlreadyRolled
	}
	return out
}

// ReconcileService merges a parsed schedule page into storage. Every write of
// a run goes through one unit of work, and runs are serialized.
type ReconcileService struct {
	source ScheduleSource
	uow    store.UnitOfWork
	roller *RecordRoller
	state  *SeasonState
	cfg    ReconcileConfig
	logger *logging.Logger
	now    func() time.Time

	running sync.Mutex
}

func NewReconcileService(
	source ScheduleSource,
	uow store.UnitOfWork,
	roller *RecordRoller,
	state *SeasonState,
	cfg ReconcileConfig,
	logger *logging.Logger,
) *ReconcileService {
	if logger == nil {
		logger = logging.Default()
	}
	if state == nil {
		state = NewSeasonState()
	}
	if roller == nil {
		roller = NewRecordRoller(logger)
	}
	if cfg.TiePolicy == "" {
		cfg.TiePolicy = match.TiePolicyNull
	}

	return &ReconcileService{
		source: source,
		uow:    uow,
		roller: roller,
		state:  state,
		cfg:    cfg,
		logger: logger.Named("reconcile"),
		now:    time.Now,
	}
}

// Run fetches the current page and reconciles it.
func (s *ReconcileService) Run(ctx context.Context) (result ReconcileResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcileService.Run")
	defer func() { endSpan(span, err) }()

	if !s.running.TryLock() {
		return ReconcileResult{}, ErrRunInProgress
	}
	defer s.running.Unlock()

	if s.source == nil {
		return ReconcileResult{}, fmt.Errorf("%w: schedule source is not configured", ErrDependencyUnavailable)
	}
	week, err := s.source.FetchWeek(ctx)
	if err != nil {
		if !errors.Is(err, ErrParseFailure) && !errors.Is(err, ErrFetchFailure) {
			err = fmt.Errorf("%w: %w", ErrFetchFailure, err)
		}
		s.logger.WarnContext(ctx, "schedule fetch failed, waiting for next run", "error", err)
		return ReconcileResult{}, err
	}

	return s.apply(ctx, week)
}

// ReconcileWeek reconciles an already parsed page.
func (s *ReconcileService) ReconcileWeek(ctx context.Context, week schedule.Week) (result ReconcileResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcileService.ReconcileWeek")
	defer func() { endSpan(span, err) }()

	if !s.running.TryLock() {
		return ReconcileResult{}, ErrRunInProgress
	}
	defer s.running.Unlock()

	return s.apply(ctx, week)
}

func (s *ReconcileService) apply(ctx context.Context, week schedule.Week) (ReconcileResult, error) {
	week.Label = strings.TrimSpace(week.Label)
	if week.Year <= 0 || week.Label == "" {
		return ReconcileResult{}, fmt.Errorf("%w: page has no year/week header", ErrParseFailure)
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcileService.apply", weekAttributes(week.Year, week.Label)...)
	defer span.End()

	start := s.now()
	var result ReconcileResult
	err := s.uow.Do(ctx, func(ctx context.Context, repos store.Repositories) error {
		result = ReconcileResult{Year: week.Year, Week: week.Label, Games: len(week.Games)}
		return s.reconcileInTx(ctx, repos, week, &result)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "reconcile run rolled back", "year", week.Year, "week", week.Label, "error", err)
		return ReconcileResult{}, err
	}
	result.Duration = s.now().Sub(start)

	// Another process may have moved the stored pointer already, so the
	// committed week is published even when this run left it unchanged.
	if cur, ok := s.state.Current(); !ok || cur != week.Pointer() {
		s.state.publish(week.Pointer())
	}

	logArgs := []any{
		"year", result.Year,
		"week", result.Week,
		"games", result.Games,
		"matches_created", result.MatchesCreated,
		"results_created", result.ResultsCreated,
		"standings_created", result.StandingsCreated,
		"duplicates", result.Duplicates,
		"unknown_teams", result.UnknownTeams,
		"unmatched_finals", result.UnmatchedFinals,
		"duration", result.Duration,
	}
	if result.Roll != nil {
		logArgs = append(logArgs, "records_appended", result.Roll.Appended)
	}
	s.logger.InfoContext(ctx, "reconcile run committed", logArgs...)
	return result, nil
}

func (s *ReconcileService) reconcileInTx(ctx context.Context, repos store.Repositories, week schedule.Week, result *ReconcileResult) error {
	if err := repos.Seasons.LockRun(ctx); err != nil {
		return fmt.Errorf("acquire reconcile lock: %w", err)
	}

	changed, err := s.advancePointer(ctx, repos, week)
	if err != nil {
		return err
	}
	result.PointerChanged = changed

	cataloged, err := repos.Seasons.HasEntry(ctx, week.Year, week.Label)
	if err != nil {
		return fmt.Errorf("check season index: %w", err)
	}
	if !cataloged {
		if err := repos.Seasons.AddEntry(ctx, week.Year, week.Label); err != nil {
			return fmt.Errorf("add season index entry: %w", err)
		}
		result.WeekCataloged = true
	}

	resolver := newTeamResolver(repos.Teams)
	finalized := make([]int64, 0, len(week.Games))
	for i, game := range week.Games {
		matchID, err := s.reconcileGame(ctx, repos, resolver, week, game, result)
		if err != nil {
			if errors.Is(err, ErrUnknownTeam) {
				result.UnknownTeams++
				s.logger.WarnContext(ctx, "skipping game with unknown team",
					"index", i, "home", game.Home, "away", game.Away, "error", err)
				continue
			}
			return err
		}
		if matchID != 0 {
			finalized = append(finalized, matchID)
		}
	}

	if !week.AllFinal() || len(finalized) == 0 {
		return nil
	}
	roll, err := s.roller.Roll(ctx, repos, week.Pointer(), finalized)
	if err != nil {
		return fmt.Errorf("roll user records: %w", err)
	}
	result.Roll = &roll
	return nil
}

// advancePointer moves the persisted pointer to the page's week. The first
// run on an empty store creates it.
func (s *ReconcileService) advancePointer(ctx context.Context, repos store.Repositories, week schedule.Week) (bool, error) {
	next := week.Pointer()
	current, ok, err := repos.Seasons.GetCurrent(ctx)
	if err != nil {
		return false, fmt.Errorf("get current season pointer: %w", err)
	}
	if ok && current == next {
		return false, nil
	}
	if err := repos.Seasons.SetCurrent(ctx, next); err != nil {
		return false, fmt.Errorf("set current season pointer: %w", err)
	}
	if ok {
		s.logger.InfoContext(ctx, "season pointer advanced", "from", current.String(), "to", next.String())
	} else {
		s.logger.InfoContext(ctx, "season pointer initialized", "to", next.String())
	}
	return true, nil
}

// reconcileGame returns the match id when the game is Final and matched to
// a stored match, and zero otherwise.
func (s *ReconcileService) reconcileGame(
	ctx context.Context,
	repos store.Repositories,
	resolver *teamResolver,
	week schedule.Week,
	game schedule.Game,
	result *ReconcileResult,
) (int64, error) {
	home, err := resolver.resolve(ctx, game.Home)
	if err != nil {
		return 0, err
	}
	away, err := resolver.resolve(ctx, game.Away)
	if err != nil {
		return 0, err
	}

	switch state := game.State.(type) {
	case schedule.Final:
		existing, found, err := repos.Matches.FindOnDate(ctx, home.ID, away.ID, game.Kickoff)
		if err != nil {
			return 0, fmt.Errorf("find match %s vs %s: %w", home.Name, away.Name, err)
		}
		if !found {
			result.UnmatchedFinals++
			s.logger.WarnContext(ctx, "final game has no scheduled match, skipping",
				"home", home.Name, "away", away.Name, "date", game.Kickoff.Format(time.DateOnly))
			return 0, nil
		}
		if err := s.recordResult(ctx, repos.Matches, existing, state, result); err != nil {
			return 0, err
		}
		return existing.ID, nil

	case schedule.Scheduled, schedule.Live:
		if err := s.snapshotStanding(ctx, repos.Standings, home.ID, week, game.HomeRecord, result); err != nil {
			return 0, err
		}
		if err := s.snapshotStanding(ctx, repos.Standings, away.ID, week, game.AwayRecord, result); err != nil {
			return 0, err
		}
		_, isLive := state.(schedule.Live)
		return 0, s.ensureMatch(ctx, repos.Matches, home, away, week, game.Kickoff, isLive, result)

	default:
		return 0, fmt.Errorf("%w: game %s vs %s has no state", ErrParseFailure, game.Home, game.Away)
	}
}

func (s *ReconcileService) recordResult(ctx context.Context, repo match.Repository, m match.Match, final schedule.Final, result *ReconcileResult) error {
	_, exists, err := repo.GetResult(ctx, m.ID)
	if err != nil {
		return fmt.Errorf("get result for match=%d: %w", m.ID, err)
	}
	if exists {
		result.Duplicates++
		return nil
	}

	decided := match.Decide(m, final.HomeScore, final.AwayScore, s.cfg.TiePolicy)
	if _, err := repo.CreateResult(ctx, decided); err != nil {
		return fmt.Errorf("create result for match=%d: %w", m.ID, err)
	}
	result.ResultsCreated++
	return nil
}

func (s *ReconcileService) snapshotStanding(ctx context.Context, repo standing.Repository, teamID int64, week schedule.Week, rec string, result *ReconcileResult) error {
	exists, err := repo.Exists(ctx, teamID, week.Year, week.Label)
	if err != nil {
		return fmt.Errorf("check team standing team=%d: %w", teamID, err)
	}
	if exists {
		result.Duplicates++
		return nil
	}
	if err := repo.Create(ctx, standing.WeeklyTeamStanding{
		TeamID: teamID,
		Year:   week.Year,
		Week:   week.Label,
		Record: strings.TrimSpace(rec),
	}); err != nil {
		return fmt.Errorf("create team standing team=%d: %w", teamID, err)
	}
	result.StandingsCreated++
	return nil
}

// ensureMatch inserts the match unless it already exists. A live game only
// carries a midnight placeholder kickoff, so any match of the pair on that
// day counts as the same game.
func (s *ReconcileService) ensureMatch(
	ctx context.Context,
	repo match.Repository,
	home, away team.Team,
	week schedule.Week,
	kickoff time.Time,
	live bool,
	result *ReconcileResult,
) error {
	var (
		found bool
		err   error
	)
	if live {
		_, found, err = repo.FindOnDate(ctx, home.ID, away.ID, kickoff)
	} else {
		_, found, err = repo.FindByKickoff(ctx, home.ID, away.ID, kickoff)
	}
	if err != nil {
		return fmt.Errorf("find match %s vs %s: %w", home.Name, away.Name, err)
	}
	if found {
		result.Duplicates++
		return nil
	}

	if _, err := repo.Create(ctx, match.Match{
		Team1ID:   home.ID,
		Team2ID:   away.ID,
		KickoffAt: kickoff.Truncate(time.Minute),
		Season:    week.Year,
		Week:      week.Label,
	}); err != nil {
		return fmt.Errorf("create match %s vs %s: %w", home.Name, away.Name, err)
	}
	result.MatchesCreated++
	return nil
}

// teamResolver caches name lookups for the length of one run.
type teamResolver struct {
	repo  team.Repository
	known map[string]team.Team
}

func newTeamResolver(repo team.Repository) *teamResolver {
	return &teamResolver{repo: repo, known: make(map[string]team.Team)}
}

func (r *teamResolver) resolve(ctx context.Context, name string) (team.Team, error) {
	name = strings.TrimSpace(name)
	if t, ok := r.known[name]; ok {
		return t, nil
	}
	t, ok, err := r.repo.FindByName(ctx, name)
	if err != nil {
		return team.Team{}, fmt.Errorf("find team %q: %w", name, err)
	}
	if !ok {
		return team.Team{}, fmt.Errorf("%w: %q", ErrUnknownTeam, name)
	}
	r.known[name] = t
	return t, nil
}

func weekAttributes(year int, week string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int("season.year", year),
		attribute.String("season.week", week),
	}
}
