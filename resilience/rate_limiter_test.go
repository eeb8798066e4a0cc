package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRateLimiter_AllowsBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Name: "test", Rate: 1, Burst: 3})

	for i := 0; i < 3; i++ {
		if !rl.Allow() {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if rl.Allow() {
		t.Error("request beyond burst should be limited")
	}
}

func TestRateLimiter_OnLimit(t *testing.T) {
	limited := 0
	rl := NewRateLimiter(RateLimiterConfig{
		Name:    "test",
		Rate:    1,
		Burst:   1,
		OnLimit: func(string) { limited++ },
	})

	rl.Allow()
	rl.Allow()

	if limited != 1 {
		t.Errorf("expected 1 limit callback, got %d", limited)
	}
}

func TestRateLimiter_WaitRespectsContext(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Name: "test", Rate: 0.1, Burst: 1})
	rl.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx)
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestRateLimiter_WaitSucceeds(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Name: "test", Rate: 1000, Burst: 1})

	for i := 0; i < 3; i++ {
		if err := rl.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

func TestRateLimiter_TakeFailFast(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Name: "test", Rate: 0.1, Burst: 1, FailFast: true})

	if err := rl.Take(context.Background()); err != nil {
		t.Fatalf("first take should pass, got %v", err)
	}
	if err := rl.Take(context.Background()); !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestRateLimiter_TakeWaitsByDefault(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Name: "test", Rate: 50, Burst: 1})

	start := time.Now()
	for i := 0; i < 2; i++ {
		if err := rl.Take(context.Background()); err != nil {
			t.Fatalf("take %d: unexpected error: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("expected second take to wait for a token, took %v", elapsed)
	}
}

func TestRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Name: "test"})
	if rl.config.Rate != 10 || rl.config.Burst != 10 {
		t.Errorf("unexpected defaults: rate=%v burst=%d", rl.config.Rate, rl.config.Burst)
	}
	if rl.Tokens() != 10 {
		t.Errorf("expected a full bucket, got %v", rl.Tokens())
	}
}
