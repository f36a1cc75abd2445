package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(2, 5*time.Second, 1)
	now := time.Date(2021, 12, 16, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	fetchErr := errors.New("browser crashed")
	failing := func() error { return fetchErr }

	if err := b.Execute(failing); !errors.Is(err, fetchErr) {
		t.Fatalf("unexpected error: got=%v want=%v", err, fetchErr)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("unexpected state after one failure: got=%s want=%s", state, CircuitStateClosed)
	}
	_ = b.Execute(failing)
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("unexpected state after threshold: got=%s want=%s", state, CircuitStateOpen)
	}

	called := false
	err := b.Execute(func() error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) || called {
		t.Fatalf("expected open breaker to reject without calling, err=%v called=%v", err, called)
	}

	now = now.Add(6 * time.Second)
	if state := b.State(); state != CircuitStateHalfOpen {
		t.Fatalf("unexpected state after timeout: got=%s want=%s", state, CircuitStateHalfOpen)
	}
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("expected probe to pass: %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("unexpected state after probe: got=%s want=%s", state, CircuitStateClosed)
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(1, time.Second, 1)
	now := time.Date(2021, 12, 16, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	b.RecordFailure()
	now = now.Add(2 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe: %v", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected second probe to be rejected, got=%v", err)
	}
	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("unexpected state: got=%s want=%s", state, CircuitStateOpen)
	}
}

func TestNewFromConfig_DisabledBreakerPassesThrough(t *testing.T) {
	t.Parallel()

	b := NewFromConfig(CircuitBreakerConfig{Enabled: false})
	if b != nil {
		t.Fatalf("expected nil breaker when disabled")
	}
	calls := 0
	for i := 0; i < 5; i++ {
		_ = b.Execute(func() error {
			calls++
			return errors.New("fail")
		})
	}
	if calls != 5 {
		t.Fatalf("unexpected calls: got=%d want=5", calls)
	}
}

func TestNewCircuitBreaker_Defaults(t *testing.T) {
	cb := NewCircuitBreaker(0, 0, 0)
	if cb.failureThreshold != 3 || cb.openTimeout != 30*time.Minute || cb.halfOpenMaxReq != 1 {
		t.Fatalf("unexpected defaults: threshold=%d timeout=%s half_open=%d", cb.failureThreshold, cb.openTimeout, cb.halfOpenMaxReq)
	}
	if NewFromConfig(CircuitBreakerConfig{}) != nil {
		t.Fatalf("expected nil breaker when disabled")
	}
}
