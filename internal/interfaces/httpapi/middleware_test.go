package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/riskibarqy/nfl-pickem/internal/usecase"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORS(t *testing.T) {
	cases := []struct {
		name       string
		allowed    []string
		method     string
		origin     string
		wantHeader string
		wantStatus int
	}{
		{"configured origin", []string{"https://pickem.example.com"}, http.MethodGet, "https://pickem.example.com", "https://pickem.example.com", http.StatusOK},
		{"wildcard preflight", []string{"*"}, http.MethodOptions, "https://pickem.example.com", "*", http.StatusNoContent},
		{"unconfigured origin", []string{"https://allowed.example.com"}, http.MethodGet, "https://other.example.com", "", http.StatusOK},
		{"no origin", []string{"*"}, http.MethodGet, "", "", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/v1/picks", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rec := httptest.NewRecorder()
			CORS(tc.allowed, okHandler).ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.wantHeader {
				t.Fatalf("Access-Control-Allow-Origin=%q want=%q", got, tc.wantHeader)
			}
			if rec.Code != tc.wantStatus {
				t.Fatalf("status=%d want=%d", rec.Code, tc.wantStatus)
			}
		})
	}
}

func TestShouldTraceRequest(t *testing.T) {
	cases := []struct {
		method string
		path   string
		want   bool
	}{
		{http.MethodGet, "/healthz", false},
		{http.MethodGet, "/READYZ", false},
		{http.MethodOptions, "/v1/picks", false},
		{http.MethodGet, "/v1/standings", true},
		{http.MethodPost, "/v1/internal/jobs/reconcile", true},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if got := shouldTraceRequest(req); got != tc.want {
			t.Fatalf("%s %s: got=%v want=%v", tc.method, tc.path, got, tc.want)
		}
	}
}

type stubVerifier struct{}

func (stubVerifier) VerifyToken(_ context.Context, token string) (usecase.Principal, error) {
	if token != "good" {
		return usecase.Principal{}, usecase.ErrUnauthorized
	}
	return usecase.Principal{UserID: 3, Username: "carol"}, nil
}

func TestRequireAuth(t *testing.T) {
	var seen usecase.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = principalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAuth(stubVerifier{}, next)

	for header, want := range map[string]int{
		"":             http.StatusUnauthorized,
		"Basic good":   http.StatusUnauthorized,
		"Bearer bad":   http.StatusUnauthorized,
		"bearer  good": http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/v1/account", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("header %q: status=%d want=%d", header, rec.Code, want)
		}
	}
	if seen.UserID != 3 {
		t.Fatalf("expected principal in context, got %+v", seen)
	}
}

func TestRequireInternalJobToken(t *testing.T) {
	cases := []struct {
		configured string
		provided   string
		want       int
	}{
		{"", "anything", http.StatusServiceUnavailable},
		{"secret", "", http.StatusUnauthorized},
		{"secret", "wrong", http.StatusUnauthorized},
		{"secret", "secret", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/reconcile", nil)
		req.Header.Set("X-Internal-Job-Token", tc.provided)
		rec := httptest.NewRecorder()
		RequireInternalJobToken(tc.configured, okHandler).ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("configured=%q provided=%q: status=%d want=%d", tc.configured, tc.provided, rec.Code, tc.want)
		}
	}
}

func TestRecoverPanic(t *testing.T) {
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("nil pointer in handler") })
	rec := httptest.NewRecorder()

	recoverPanic(logging.NewNop(), boom).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/picks", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "nil pointer") {
		t.Fatalf("panic value leaked into response: %s", rec.Body.String())
	}
}

func TestRequestLogging_RecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, logging.LevelInfo, true)
	teapot := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	RequestLogging(logger, teapot).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/teams", nil))

	out := buf.String()
	for _, want := range []string{`"level":"WARN"`, `"status":418`, `"bytes":15`, `"path":"/v1/teams"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
}
