package ingest

import (
	"context"
	"testing"
	"time"

	qerrors "quotelake/internal/errors"
)

func TestLimiter_Unpaced(t *testing.T) {
	lim := NewLimiter(RateLimit{})

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := lim.Wait(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("unpaced limiter should not block, took %v", elapsed)
	}
}

func TestLimiter_DailyCap(t *testing.T) {
	lim := NewLimiter(RateLimit{CallsPerDay: 2})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := lim.Wait(ctx); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
	}

	err := lim.Wait(ctx)
	if err == nil {
		t.Fatal("expected daily cap error")
	}
	if !qerrors.Is(err, qerrors.ErrRateLimitExceeded) {
		t.Errorf("expected ErrRateLimitExceeded, got %v", err)
	}

	lim.ResetDaily()
	if err := lim.Wait(ctx); err != nil {
		t.Errorf("expected reset to allow calls again, got %v", err)
	}
}

func TestLimiter_CancelledContext(t *testing.T) {
	// 1 call/min: the second Wait must block and observe cancellation
	lim := NewLimiter(RateLimit{CallsPerMinute: 1})

	ctx, cancel := context.WithCancel(context.Background())
	if err := lim.Wait(ctx); err != nil {
		t.Fatalf("first call should pass: %v", err)
	}
	cancel()

	if err := lim.Wait(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
