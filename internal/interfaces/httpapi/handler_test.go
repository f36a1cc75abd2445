package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/nfl-pickem/internal/domain/schedule"
	"github.com/riskibarqy/nfl-pickem/internal/domain/team"
	"github.com/riskibarqy/nfl-pickem/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/nfl-pickem/internal/platform/cache"
	"github.com/riskibarqy/nfl-pickem/internal/platform/id"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/riskibarqy/nfl-pickem/internal/platform/password"
	"github.com/riskibarqy/nfl-pickem/internal/usecase"
)

const testJobToken = "job-secret"

type testEnv struct {
	router     http.Handler
	handler    *Handler
	reconciler *usecase.ReconcileService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logging.NewNop()
	mem := memory.NewStore(team.Defaults())
	repos := mem.Repositories()
	state := usecase.NewSeasonState()
	sessions := cache.NewStore(0)
	ids := id.NewRandomGenerator()

	reconciler := usecase.NewReconcileService(nil, mem, nil, state, usecase.ReconcileConfig{}, logger)
	auth := usecase.NewAuthService(repos.Users, password.NewHasher(4), ids, sessions, usecase.AuthConfig{}, logger)
	handler := NewHandler(
		auth,
		usecase.NewPickService(mem, repos, state, time.UTC, logger),
		usecase.NewStandingsService(repos, state, cache.NewStore(time.Minute)),
		usecase.NewCatalogService(repos, state, time.UTC, logger),
		usecase.NewJobOrchestratorService(reconciler, memory.NewJobRunRepository(), ids, logger),
		logger,
	)

	return &testEnv{
		router:     NewRouter(handler, auth, logger, []string{"*"}, testJobToken, true),
		handler:    handler,
		reconciler: reconciler,
	}
}

func (e *testEnv) seedFutureWeek(t *testing.T) {
	t.Helper()

	week := schedule.Week{
		Year:  2099,
		Label: "WEEK 1",
		Games: []schedule.Game{
			{
				Home:       "Chiefs",
				Away:       "Ravens",
				HomeRecord: "(0-0)",
				AwayRecord: "(0-0)",
				Kickoff:    time.Date(2099, time.September, 10, 20, 20, 0, 0, time.UTC),
				State:      schedule.Scheduled{},
			},
		},
	}
	if _, err := e.reconciler.ReconcileWeek(context.Background(), week); err != nil {
		t.Fatalf("seed week: %v", err)
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = sonic.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"username": "gridiron",
		"email":    "gridiron@example.com",
		"password": "touchdown42",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    "gridiron@example.com",
		"password": "touchdown42",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status=%d body=%s", rec.Code, rec.Body.String())
	}
	session := decodeData[sessionDTO](t, rec)
	if session.Token == "" {
		t.Fatalf("expected session token")
	}
	return session.Token
}

type testEnvelope[T any] struct {
	APIVersion string           `json:"apiVersion"`
	Data       T                `json:"data"`
	Error      *googleErrorBody `json:"error"`
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var body testEnvelope[T]
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	return body.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) googleErrorBody {
	t.Helper()

	var body testEnvelope[any]
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if body.Error == nil {
		t.Fatalf("expected error body, got %s", rec.Body.String())
	}
	return *body.Error
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestListTeams_ReturnsSeededTeams(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/teams", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	teams := decodeData[[]teamDTO](t, rec)
	if len(teams) != len(team.DefaultNames()) {
		t.Fatalf("expected %d teams, got %d", len(team.DefaultNames()), len(teams))
	}
}

func TestCurrentSeason_NotFoundBeforeFirstIngest(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/season/current", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if got := decodeError(t, rec).Status; got != "NOT_FOUND" {
		t.Fatalf("unexpected error status: %s", got)
	}
}

func TestCurrentSeasonAndCatalog_AfterReconcile(t *testing.T) {
	env := newTestEnv(t)
	env.seedFutureWeek(t)

	rec := env.do(t, http.MethodGet, "/v1/season/current", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decodeData[seasonPointerDTO](t, rec); got.Year != 2099 || got.Week != "WEEK 1" {
		t.Fatalf("unexpected pointer: %+v", got)
	}

	rec = env.do(t, http.MethodGet, "/v1/seasons", "", nil)
	if got := decodeData[[]int](t, rec); len(got) != 1 || got[0] != 2099 {
		t.Fatalf("unexpected years: %v", got)
	}

	rec = env.do(t, http.MethodGet, "/v1/seasons/2099/weeks", "", nil)
	if got := decodeData[[]string](t, rec); len(got) != 1 || got[0] != "WEEK 1" {
		t.Fatalf("unexpected weeks: %v", got)
	}

	rec = env.do(t, http.MethodGet, "/v1/seasons/abc/weeks", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad year, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/v1/matches?year=2099&week=WEEK%201", "", nil)
	week := decodeData[weekDTO](t, rec)
	if len(week.Matches) != 1 {
		t.Fatalf("expected one match, got %d", len(week.Matches))
	}
	m := week.Matches[0]
	if m.Team1.Name != "Chiefs" || m.Team2.Name != "Ravens" || m.KickoffAt != "2099-09-10T20:20:00" || m.Locked {
		t.Fatalf("unexpected match: %+v", m)
	}
}

func TestPicks_RequireAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/picks", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/v1/picks", "not-a-session", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown token, got %d", rec.Code)
	}
}

func TestPicks_SubmitAndRead(t *testing.T) {
	env := newTestEnv(t)
	env.seedFutureWeek(t)
	token := env.login(t)

	rec := env.do(t, http.MethodGet, "/v1/picks", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	week := decodeData[weekDTO](t, rec)
	if len(week.Matches) != 1 || week.Matches[0].PickTeamID != nil {
		t.Fatalf("unexpected week before picking: %+v", week)
	}
	m := week.Matches[0]

	rec = env.do(t, http.MethodPut, "/v1/picks", token, submitPicksRequest{
		Picks: []pickItemRequest{{MatchID: m.ID, TeamID: m.Team2.ID}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if got := decodeData[map[string]int](t, rec); got["saved"] != 1 {
		t.Fatalf("unexpected submit result: %v", got)
	}

	rec = env.do(t, http.MethodGet, "/v1/picks", token, nil)
	week = decodeData[weekDTO](t, rec)
	if week.Matches[0].PickTeamID == nil || *week.Matches[0].PickTeamID != m.Team2.ID {
		t.Fatalf("expected pick for team %d, got %+v", m.Team2.ID, week.Matches[0].PickTeamID)
	}
}

func TestPicks_RejectsInvalidPayloads(t *testing.T) {
	env := newTestEnv(t)
	env.seedFutureWeek(t)
	token := env.login(t)

	week := decodeData[weekDTO](t, env.do(t, http.MethodGet, "/v1/picks", token, nil))
	m := week.Matches[0]

	cases := []struct {
		name string
		body any
	}{
		{name: "empty", body: submitPicksRequest{}},
		{name: "team not in match", body: submitPicksRequest{Picks: []pickItemRequest{{MatchID: m.ID, TeamID: 999}}}},
		{name: "duplicate match", body: submitPicksRequest{Picks: []pickItemRequest{
			{MatchID: m.ID, TeamID: m.Team1.ID},
			{MatchID: m.ID, TeamID: m.Team2.ID},
		}}},
		{name: "unknown field", body: map[string]any{"picks": []any{}, "extra": true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPut, "/v1/picks", token, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAccount_GetUpdateAndConflict(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodGet, "/v1/account", token, nil)
	if got := decodeData[accountDTO](t, rec); got.Username != "gridiron" || got.ImageFile == "" {
		t.Fatalf("unexpected account: %+v", got)
	}

	rec = env.do(t, http.MethodPut, "/v1/account", token, updateAccountRequest{Username: "blitz"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if got := decodeData[accountDTO](t, rec); got.Username != "blitz" {
		t.Fatalf("expected renamed account, got %+v", got)
	}

	rec = env.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"username": "other",
		"email":    "GRIDIRON@example.com",
		"password": "touchdown42",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for taken email, got %d", rec.Code)
	}
}

func TestLogout_EndsSession(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/v1/auth/logout", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/v1/account", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestLeaderboard_EmptyYear(t *testing.T) {
	env := newTestEnv(t)
	env.seedFutureWeek(t)

	rec := env.do(t, http.MethodGet, "/v1/standings", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	board := decodeData[leaderboardDTO](t, rec)
	if board.Year != 2099 || len(board.Entries) != 0 {
		t.Fatalf("unexpected leaderboard: %+v", board)
	}

	rec = env.do(t, http.MethodGet, "/v1/team-standings", "", nil)
	standings := decodeData[teamStandingsDTO](t, rec)
	if len(standings.Teams) != 2 || standings.Teams[0].Tally.Record != "(0-0)" {
		t.Fatalf("unexpected team standings: %+v", standings)
	}
}

func TestInternalJobs_RequireToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/internal/jobs/reconcile", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without job token, got %d", rec.Code)
	}
}

func TestInternalJobs_ReconcileWithoutSourceIsRecorded(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/reconcile", nil)
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a schedule source, got %d body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/internal/jobs/runs?limit=5", nil)
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	runs := decodeData[[]jobRunDTO](t, rec)
	if len(runs) != 1 || runs[0].Status != "failed" || runs[0].Trigger != "manual" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}
