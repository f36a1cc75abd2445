package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/config"
	"github.com/riskibarqy/nfl-pickem/internal/domain/jobrun"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
)

func testConfig() config.Config {
	return config.Config{
		AppEnv:              "dev",
		ServiceName:         "nfl-pickem-test",
		HTTPAddr:            "127.0.0.1:0",
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        5 * time.Second,
		ScheduleSource:      config.ScheduleSourceFile,
		ScheduleLocation:    time.UTC,
		ReconcileSchedule:   "@every 6h",
		ReconcileRunTimeout: time.Minute,
		AuthSessionTTL:      time.Hour,
		AuthBcryptCost:      4,
		CacheEnabled:        true,
		CacheTTL:            time.Minute,
		TeamSeedEnabled:     true,
	}
}

func copyPage(t *testing.T, src, dst string) {
	t.Helper()
	page, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("read %s: %v", src, err)
	}
	if err := os.WriteFile(dst, page, 0o644); err != nil {
		t.Fatalf("write %s: %v", dst, err)
	}
}

func TestNew_ReconcilesFromFileSource(t *testing.T) {
	ctx := context.Background()
	page := filepath.Join(t.TempDir(), "week.html")
	copyPage(t, "testdata/week_scheduled.html", page)

	cfg := testConfig()
	cfg.ScheduleFile = page
	a, err := New(ctx, cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	for i, src := range []string{"", "testdata/week_final.html", ""} {
		if src != "" {
			copyPage(t, src, page)
		}
		run, err := a.RunReconcile(ctx)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if run.Status != jobrun.StatusSucceeded || run.Trigger != jobrun.TriggerCLI {
			t.Fatalf("run %d: unexpected run %+v", i, run)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/matches?year=2024&week=WEEK+1", nil)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data struct {
			Year    int    `json:"year"`
			Week    string `json:"week"`
			Matches []struct {
				Result *struct {
					WinnerTeamID *int64 `json:"winner_team_id"`
				} `json:"result"`
			} `json:"matches"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Year != 2024 || body.Data.Week != "WEEK 1" {
		t.Fatalf("unexpected week: %+v", body.Data)
	}
	if len(body.Data.Matches) != 2 {
		t.Fatalf("expected 2 matches after repeated runs, got %d", len(body.Data.Matches))
	}
	for _, m := range body.Data.Matches {
		if m.Result == nil {
			t.Fatalf("expected final result on every match")
		}
	}
}

func TestNew_RejectsUnknownScheduleSource(t *testing.T) {
	cfg := testConfig()
	cfg.ScheduleSource = "carrier-pigeon"

	if _, err := New(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for unknown schedule source")
	}
}

func TestNew_RequiresHTTPAddr(t *testing.T) {
	cfg := testConfig()
	cfg.HTTPAddr = ""

	if _, err := New(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}
