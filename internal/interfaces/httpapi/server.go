package httpapi

import (
	"net/http"

	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/sourcegraph/conc/panics"
)

type access int

const (
	public access = iota
	member
	internalJob
)

type route struct {
	pattern string
	access  access
	handle  http.HandlerFunc
	docs    bool
}

func (h *Handler) routes() []route {
	return []route{
		{"GET /healthz", public, h.Healthz, false},
		{"GET /openapi.yaml", public, h.OpenAPI, true},
		{"GET /docs", public, h.SwaggerUI, true},
		{"GET /docs/", public, h.SwaggerUI, true},

		{"POST /v1/auth/register", public, h.Register, false},
		{"POST /v1/auth/login", public, h.Login, false},
		{"POST /v1/auth/logout", public, h.Logout, false},

		{"GET /v1/teams", public, h.ListTeams, false},
		{"GET /v1/season/current", public, h.GetCurrentSeason, false},
		{"GET /v1/seasons", public, h.ListSeasonYears, false},
		{"GET /v1/seasons/{year}/weeks", public, h.ListSeasonWeeks, false},
		{"GET /v1/matches", public, h.ListMatches, false},
		{"GET /v1/standings", public, h.GetLeaderboard, false},
		{"GET /v1/team-standings", public, h.GetTeamStandings, false},

		{"GET /v1/account", member, h.GetAccount, false},
		{"PUT /v1/account", member, h.UpdateAccount, false},
		{"GET /v1/account/history", member, h.GetMyHistory, false},
		{"GET /v1/picks", member, h.GetMyPicks, false},
		{"PUT /v1/picks", member, h.SubmitPicks, false},

		{"POST /v1/internal/jobs/reconcile", internalJob, h.RunReconcileJob, false},
		{"GET /v1/internal/jobs/runs", internalJob, h.ListJobRuns, false},
	}
}

func NewRouter(
	handler *Handler,
	verifier TokenVerifier,
	logger *logging.Logger,
	corsAllowedOrigins []string,
	internalJobToken string,
	swaggerEnabled bool,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("http")

	mux := http.NewServeMux()
	for _, rt := range handler.routes() {
		if rt.docs && !swaggerEnabled {
			continue
		}
		var h http.Handler = rt.handle
		switch rt.access {
		case member:
			h = RequireAuth(verifier, h)
		case internalJob:
			h = RequireInternalJobToken(internalJobToken, h)
		}
		mux.Handle(rt.pattern, h)
	}

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}

// recoverPanic turns a handler panic into a 500. http.ErrAbortHandler is
// re-raised so net/http can abort the connection as intended.
func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var catcher panics.Catcher
		catcher.Try(func() { next.ServeHTTP(w, r) })

		rec := catcher.Recovered()
		if rec == nil {
			return
		}
		if rec.Value == http.ErrAbortHandler {
			panic(rec.Value)
		}
		logger.ErrorContext(r.Context(), "handler panicked",
			"method", r.Method,
			"path", r.URL.Path,
			"panic", rec.String(),
		)
		writeInternalError(r.Context(), w)
	})
}
