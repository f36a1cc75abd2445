package observability

import (
	"context"
	"net/http"
	"testing"

	"github.com/riskibarqy/nfl-pickem/internal/config"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
)

func TestSetup_AllDisabled(t *testing.T) {
	stack, err := Setup(config.Config{UptraceEnabled: true}, logging.NewNop())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if stack.PprofAddr() != "" {
		t.Fatalf("expected pprof off, got %q", stack.PprofAddr())
	}
	if err := stack.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestSetup_PprofServesIndex(t *testing.T) {
	stack, err := Setup(config.Config{PprofEnabled: true, PprofAddr: "127.0.0.1:0"}, logging.NewNop())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	t.Cleanup(func() { _ = stack.Shutdown(context.Background()) })

	resp, err := http.Get("http://" + stack.PprofAddr() + "/debug/pprof/")
	if err != nil {
		t.Fatalf("get pprof index: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestSetup_PprofBindFailure(t *testing.T) {
	if _, err := Setup(config.Config{PprofEnabled: true, PprofAddr: "256.0.0.1:bad"}, logging.NewNop()); err == nil {
		t.Fatalf("expected listen error")
	}
}
