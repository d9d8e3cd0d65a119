package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

func TestGuard_Timeout(t *testing.T) {
	g := NewGuard(GuardConfig{Name: "test-timeout", CallTimeout: 20 * time.Millisecond})

	err := g.Do(context.Background(), "slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestGuard_TripsAfterFailures(t *testing.T) {
	g := NewGuard(GuardConfig{Name: "test-trip", MaxFailures: 2, OpenTimeout: time.Minute})
	boom := errors.New("connection refused")

	for i := 0; i < 2; i++ {
		err := g.Do(context.Background(), "write", func(ctx context.Context) error { return boom })
		if !errors.Is(err, boom) {
			t.Fatalf("call %d: expected underlying error, got %v", i, err)
		}
	}
	if g.State() != gobreaker.StateOpen {
		t.Fatalf("state = %s, want open", g.State())
	}

	called := false
	err := g.Do(context.Background(), "write", func(ctx context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if called {
		t.Error("fn must not run while the breaker is open")
	}
}

func TestGuard_Success(t *testing.T) {
	g := NewGuard(GuardConfig{Name: "test-ok"})
	if err := g.Do(context.Background(), "read", func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.State() != gobreaker.StateClosed {
		t.Errorf("state = %s, want closed", g.State())
	}
}
