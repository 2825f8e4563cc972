package notifier

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_AllowWithinBurst(t *testing.T) {
	limiter := NewRateLimiter(1.0, 3)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	for i := 0; i < 3; i++ {
		if err := limiter.Allow(ctx); err != nil {
			t.Fatalf("Allow() within burst returned %v", err)
		}
	}
}

func TestRateLimiter_CanceledContext(t *testing.T) {
	limiter := NewRateLimiter(0.001, 1)

	// Drain the burst token.
	if err := limiter.Allow(context.Background()); err != nil {
		t.Fatalf("Allow() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Allow(ctx); err == nil {
		t.Error("Allow() with canceled context = nil, want error")
	}
}
