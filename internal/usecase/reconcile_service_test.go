package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/match"
	"github.com/riskibarqy/nfl-pickem/internal/domain/pick"
	"github.com/riskibarqy/nfl-pickem/internal/domain/schedule"
	"github.com/riskibarqy/nfl-pickem/internal/domain/season"
	"github.com/riskibarqy/nfl-pickem/internal/domain/team"
	"github.com/riskibarqy/nfl-pickem/internal/domain/user"
	"github.com/riskibarqy/nfl-pickem/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
)

type stubSource struct {
	week schedule.Week
	err  error
}

func (s *stubSource) FetchWeek(context.Context) (schedule.Week, error) {
	return s.week, s.err
}

type reconcileEnv struct {
	svc    *ReconcileService
	store  *memory.Store
	state  *SeasonState
	source *stubSource
}

func newReconcileEnv(t *testing.T, policy match.TiePolicy) *reconcileEnv {
	t.Helper()

	st := memory.NewStore(team.Defaults())
	state := NewSeasonState()
	source := &stubSource{}
	svc := NewReconcileService(source, st, NewRecordRoller(logging.NewNop()), state, ReconcileConfig{TiePolicy: policy}, logging.NewNop())
	return &reconcileEnv{svc: svc, store: st, state: state, source: source}
}

func (e *reconcileEnv) run(t *testing.T, week schedule.Week) ReconcileResult {
	t.Helper()
	e.source.week, e.source.err = week, nil
	result, err := e.svc.Run(context.Background())
	if err != nil {
		t.Fatalf("reconcile %d %s: %v", week.Year, week.Label, err)
	}
	return result
}

func (e *reconcileEnv) teamID(t *testing.T, name string) int64 {
	t.Helper()
	tm, ok, err := e.store.Repositories().Teams.FindByName(context.Background(), name)
	if err != nil || !ok {
		t.Fatalf("team %q not found: %v", name, err)
	}
	return tm.ID
}

func (e *reconcileEnv) weekMatches(t *testing.T, year int, week string) []match.Match {
	t.Helper()
	items, err := e.store.Repositories().Matches.ListByWeek(context.Background(), year, week)
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	return items
}

func scheduledGame(home, away string, kickoff time.Time) schedule.Game {
	return schedule.Game{Home: home, Away: away, HomeRecord: "(0-0)", AwayRecord: "(0-0)", Kickoff: kickoff, State: schedule.Scheduled{}}
}

func finalGame(home, away string, day time.Time, homeScore, awayScore int) schedule.Game {
	return schedule.Game{
		Home:    home,
		Away:    away,
		Kickoff: match.StartOfDay(day),
		State:   schedule.Final{Period: "FINAL", HomeScore: homeScore, AwayScore: awayScore},
	}
}

func weekPage(year int, label string, games ...schedule.Game) schedule.Week {
	return schedule.Week{Year: year, Label: label, Games: games}
}

var sunday = time.Date(2024, time.September, 8, 13, 0, 0, 0, time.UTC)

func TestReconcile_ScheduledWeekIsIdempotent(t *testing.T) {
	t.Parallel()

	env := newReconcileEnv(t, match.TiePolicyNull)
	page := weekPage(2024, "WEEK 1",
		scheduledGame("Falcons", "Steelers", sunday),
		scheduledGame("Cardinals", "Bills", sunday.Add(3*time.Hour)),
	)

	first := env.run(t, page)
	if first.MatchesCreated != 2 || first.StandingsCreated != 4 || first.Duplicates != 0 {
		t.Fatalf("unexpected first run: %+v", first)
	}
	if !first.PointerChanged || !first.WeekCataloged {
		t.Fatalf("expected pointer and index to be created: %+v", first)
	}

	second := env.run(t, page)
	if second.MatchesCreated != 0 || second.StandingsCreated != 0 || second.Duplicates != 6 {
		t.Fatalf("unexpected second run: %+v", second)
	}
	if second.PointerChanged || second.WeekCataloged {
		t.Fatalf("second run must not touch pointer or index: %+v", second)
	}

	if got := len(env.weekMatches(t, 2024, "WEEK 1")); got != 2 {
		t.Fatalf("expected 2 matches, got %d", got)
	}
	weeks, err := env.store.Repositories().Seasons.ListWeeks(context.Background(), 2024)
	if err != nil || len(weeks) != 1 || weeks[0] != "WEEK 1" {
		t.Fatalf("unexpected season index: %v err=%v", weeks, err)
	}
	if p, ok := env.state.Current(); !ok || p != (season.Pointer{Year: 2024, Week: "WEEK 1"}) {
		t.Fatalf("unexpected published pointer: %v %v", p, ok)
	}
}

func TestReconcile_FinalMatchesSameDayKickoff(t *testing.T) {
	t.Parallel()

	env := newReconcileEnv(t, match.TiePolicyNull)
	env.run(t, weekPage(2024, "WEEK 1", scheduledGame("Falcons", "Steelers", sunday)))

	result := env.run(t, weekPage(2024, "WEEK 1", finalGame("Falcons", "Steelers", sunday, 24, 17)))
	if result.ResultsCreated != 1 || result.UnmatchedFinals != 0 {
		t.Fatalf("unexpected final run: %+v", result)
	}

	matches := env.weekMatches(t, 2024, "WEEK 1")
	if len(matches) != 1 {
		t.Fatalf("final must not create matches, got %d", len(matches))
	}
	if !matches[0].KickoffAt.Equal(sunday) {
		t.Fatalf("kickoff changed: got=%v want=%v", matches[0].KickoffAt, sunday)
	}
	res, ok, err := env.store.Repositories().Matches.GetResult(context.Background(), matches[0].ID)
	if err != nil || !ok {
		t.Fatalf("expected result: ok=%v err=%v", ok, err)
	}
	if res.Score != "24-17" || res.WinnerTeamID == nil || *res.WinnerTeamID != env.teamID(t, "Falcons") {
		t.Fatalf("unexpected result: %+v", res)
	}

	again := env.run(t, weekPage(2024, "WEEK 1", finalGame("Falcons", "Steelers", sunday, 24, 17)))
	if again.ResultsCreated != 0 || again.Duplicates != 1 {
		t.Fatalf("repeated final must be a duplicate: %+v", again)
	}
}

func TestReconcile_TiePolicies(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		policy     match.TiePolicy
		wantWinner string
	}{
		{name: "null", policy: match.TiePolicyNull},
		{name: "team1", policy: match.TiePolicyTeam1, wantWinner: "Chiefs"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			env := newReconcileEnv(t, tc.policy)
			env.run(t, weekPage(2024, "WEEK 3", scheduledGame("Chiefs", "Ravens", sunday)))
			env.run(t, weekPage(2024, "WEEK 3", finalGame("Chiefs", "Ravens", sunday, 14, 14)))

			matches := env.weekMatches(t, 2024, "WEEK 3")
			res, ok, err := env.store.Repositories().Matches.GetResult(context.Background(), matches[0].ID)
			if err != nil || !ok || res.Score != "14-14" {
				t.Fatalf("unexpected result: %+v ok=%v err=%v", res, ok, err)
			}
			if tc.wantWinner == "" {
				if !res.IsTie() {
					t.Fatalf("expected no winner, got %d", *res.WinnerTeamID)
				}
				return
			}
			if res.WinnerTeamID == nil || *res.WinnerTeamID != env.teamID(t, tc.wantWinner) {
				t.Fatalf("unexpected winner: %v", res.WinnerTeamID)
			}
		})
	}
}

func TestReconcile_LiveThenFinal(t *testing.T) {
	t.Parallel()

	env := newReconcileEnv(t, match.TiePolicyNull)
	env.run(t, weekPage(2024, "WEEK 2", scheduledGame("Cowboys", "Giants", sunday)))

	live := schedule.Game{
		Home:    "Cowboys",
		Away:    "Giants",
		Kickoff: match.StartOfDay(sunday),
		State:   schedule.Live{Period: "3rd 04:12"},
	}
	result := env.run(t, weekPage(2024, "WEEK 2", live))
	if result.MatchesCreated != 0 {
		t.Fatalf("live game must reuse the scheduled match: %+v", result)
	}

	result = env.run(t, weekPage(2024, "WEEK 2", finalGame("Cowboys", "Giants", sunday, 10, 21)))
	if result.ResultsCreated != 1 {
		t.Fatalf("expected result: %+v", result)
	}
	matches := env.weekMatches(t, 2024, "WEEK 2")
	res, _, _ := env.store.Repositories().Matches.GetResult(context.Background(), matches[0].ID)
	if res.WinnerTeamID == nil || *res.WinnerTeamID != env.teamID(t, "Giants") {
		t.Fatalf("expected Giants to win: %+v", res)
	}
}

func TestReconcile_FinalWithoutMatchIsSkipped(t *testing.T) {
	t.Parallel()

	env := newReconcileEnv(t, match.TiePolicyNull)
	result := env.run(t, weekPage(2024, "WEEK 1", finalGame("Falcons", "Steelers", sunday, 18, 10)))

	if result.UnmatchedFinals != 1 || result.ResultsCreated != 0 || result.Roll != nil {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestReconcile_UnknownTeamSkipsOnlyThatGame(t *testing.T) {
	t.Parallel()

	env := newReconcileEnv(t, match.TiePolicyNull)
	result := env.run(t, weekPage(2024, "WEEK 1",
		scheduledGame("Sharks", "Steelers", sunday),
		scheduledGame("Cardinals", "Bills", sunday),
	))

	if result.UnknownTeams != 1 || result.MatchesCreated != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestReconcile_PointerAdvancesWithPage(t *testing.T) {
	t.Parallel()

	env := newReconcileEnv(t, match.TiePolicyNull)
	env.run(t, weekPage(2024, "WEEK 1", scheduledGame("Falcons", "Steelers", sunday)))
	next := env.run(t, weekPage(2024, "WEEK 2", scheduledGame("Falcons", "Eagles", sunday.AddDate(0, 0, 8))))
	if !next.PointerChanged {
		t.Fatalf("expected pointer to advance: %+v", next)
	}

	stored, ok, err := env.store.Repositories().Seasons.GetCurrent(context.Background())
	if err != nil || !ok || stored != (season.Pointer{Year: 2024, Week: "WEEK 2"}) {
		t.Fatalf("unexpected stored pointer: %v ok=%v err=%v", stored, ok, err)
	}
	if p, _ := env.state.Current(); p != stored {
		t.Fatalf("published pointer %v differs from stored %v", p, stored)
	}
}

func TestReconcile_PublishesPointerMovedByAnotherProcess(t *testing.T) {
	t.Parallel()

	st := memory.NewStore(team.Defaults())
	apiState, jobState := NewSeasonState(), NewSeasonState()
	apiSource, jobSource := &stubSource{}, &stubSource{}
	api := NewReconcileService(apiSource, st, nil, apiState, ReconcileConfig{}, logging.NewNop())
	job := NewReconcileService(jobSource, st, nil, jobState, ReconcileConfig{}, logging.NewNop())

	week1 := weekPage(2024, "WEEK 1", scheduledGame("Falcons", "Steelers", sunday))
	week2 := weekPage(2024, "WEEK 2", scheduledGame("Falcons", "Eagles", sunday.AddDate(0, 0, 8)))

	if _, err := api.ReconcileWeek(context.Background(), week1); err != nil {
		t.Fatalf("api week 1: %v", err)
	}
	if _, err := job.ReconcileWeek(context.Background(), week2); err != nil {
		t.Fatalf("job week 2: %v", err)
	}
	if p, _ := apiState.Current(); p != (season.Pointer{Year: 2024, Week: "WEEK 1"}) {
		t.Fatalf("api state moved before its own run: %v", p)
	}

	result, err := api.ReconcileWeek(context.Background(), week2)
	if err != nil {
		t.Fatalf("api week 2: %v", err)
	}
	if result.PointerChanged {
		t.Fatalf("stored pointer was already at week 2: %+v", result)
	}
	if p, ok := apiState.Current(); !ok || p != (season.Pointer{Year: 2024, Week: "WEEK 2"}) {
		t.Fatalf("api state = %v ok=%v, want 2024 WEEK 2", p, ok)
	}
}

func TestReconcile_AllFinalWeekRollsRecordsOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newReconcileEnv(t, match.TiePolicyNull)
	env.run(t, weekPage(2024, "WEEK 1",
		scheduledGame("Falcons", "Steelers", sunday),
		scheduledGame("Cardinals", "Bills", sunday),
	))

	repos := env.store.Repositories()
	alice, err := repos.Users.Create(ctx, user.User{Username: "alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	for _, m := range env.weekMatches(t, 2024, "WEEK 1") {
		// alice always picks the home side
		if _, err := repos.Picks.Upsert(ctx, pick.Pick{UserID: alice.ID, MatchID: m.ID, TeamID: m.Team1ID}); err != nil {
			t.Fatalf("pick: %v", err)
		}
	}

	final := weekPage(2024, "WEEK 1",
		finalGame("Falcons", "Steelers", sunday, 10, 18),
		finalGame("Cardinals", "Bills", sunday, 34, 28),
	)
	result := env.run(t, final)
	if result.Roll == nil || result.Roll.Appended != 1 {
		t.Fatalf("expected one record appended: %+v", result.Roll)
	}

	again := env.run(t, final)
	if again.Roll == nil || again.Roll.Appended != 0 || again.Roll.AlreadyRolled != 1 {
		t.Fatalf("second roll must be a no-op: %+v", again.Roll)
	}

	records, err := repos.Records.ListByUser(ctx, alice.ID, 2024)
	if err != nil || len(records) != 1 {
		t.Fatalf("unexpected records: %v err=%v", records, err)
	}
	if got := records[0].Record(); got != "(1-1)" {
		t.Fatalf("unexpected record: got=%s want=(1-1)", got)
	}
}

func TestReconcile_MixedWeekDoesNotRoll(t *testing.T) {
	t.Parallel()

	env := newReconcileEnv(t, match.TiePolicyNull)
	env.run(t, weekPage(2024, "WEEK 1",
		scheduledGame("Falcons", "Steelers", sunday),
		scheduledGame("Cardinals", "Bills", sunday.Add(3*time.Hour)),
	))

	result := env.run(t, weekPage(2024, "WEEK 1",
		finalGame("Falcons", "Steelers", sunday, 10, 18),
		scheduledGame("Cardinals", "Bills", sunday.Add(3*time.Hour)),
	))
	if result.ResultsCreated != 1 || result.Roll != nil {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestReconcile_FailuresWriteNothing(t *testing.T) {
	t.Parallel()

	env := newReconcileEnv(t, match.TiePolicyNull)

	env.source.week, env.source.err = schedule.Week{}, errors.New("connection reset")
	if _, err := env.svc.Run(context.Background()); !errors.Is(err, ErrFetchFailure) {
		t.Fatalf("expected fetch failure, got %v", err)
	}

	env.source.week, env.source.err = schedule.Week{Games: []schedule.Game{scheduledGame("Falcons", "Steelers", sunday)}}, nil
	if _, err := env.svc.Run(context.Background()); !errors.Is(err, ErrParseFailure) {
		t.Fatalf("expected parse failure, got %v", err)
	}

	broken := weekPage(2024, "WEEK 1",
		scheduledGame("Falcons", "Steelers", sunday),
		schedule.Game{Home: "Cardinals", Away: "Bills", Kickoff: sunday},
	)
	env.source.week = broken
	if _, err := env.svc.Run(context.Background()); !errors.Is(err, ErrParseFailure) {
		t.Fatalf("expected parse failure for stateless game, got %v", err)
	}

	if got := len(env.weekMatches(t, 2024, "WEEK 1")); got != 0 {
		t.Fatalf("failed runs must roll back, found %d matches", got)
	}
	if _, ok, _ := env.store.Repositories().Seasons.GetCurrent(context.Background()); ok {
		t.Fatalf("failed runs must not set the pointer")
	}
	if _, ok := env.state.Current(); ok {
		t.Fatalf("failed runs must not publish a pointer")
	}
}

type blockingSource struct {
	entered chan struct{}
	release chan struct{}
	week    schedule.Week
}

func (s *blockingSource) FetchWeek(context.Context) (schedule.Week, error) {
	close(s.entered)
	<-s.release
	return s.week, nil
}

func TestReconcile_RunLockRejectsOverlap(t *testing.T) {
	t.Parallel()

	source := &blockingSource{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		week:    weekPage(2024, "WEEK 1", scheduledGame("Falcons", "Steelers", sunday)),
	}
	svc := NewReconcileService(source, memory.NewStore(team.Defaults()), nil, nil, ReconcileConfig{}, logging.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Run(context.Background())
		done <- err
	}()
	<-source.entered

	if _, err := svc.Run(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected run in progress, got %v", err)
	}
	if _, err := svc.ReconcileWeek(context.Background(), source.week); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected run in progress for direct week, got %v", err)
	}

	close(source.release)
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}
}
