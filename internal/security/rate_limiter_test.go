package security

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestLimiter(requests int, window time.Duration) (*RateLimiter, *time.Time) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(RateLimitConfig{
		Enabled:  true,
		Requests: requests,
		Window:   window,
	}, zap.NewNop())
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiter(t *testing.T) {
	t.Run("BurstThenReject", func(t *testing.T) {
		rl, _ := newTestLimiter(10, time.Minute)

		for i := 0; i < 10; i++ {
			allowed, remaining := rl.Allow("10.0.0.1")
			if !allowed {
				t.Fatalf("Request %d should be allowed", i+1)
			}
			if remaining != 9-i {
				t.Errorf("Request %d: expected %d remaining, got %d", i+1, 9-i, remaining)
			}
		}

		if allowed, remaining := rl.Allow("10.0.0.1"); allowed || remaining != 0 {
			t.Errorf("11th request should be rejected, got allowed=%v remaining=%d", allowed, remaining)
		}
	})

	t.Run("PerClient", func(t *testing.T) {
		rl, _ := newTestLimiter(1, time.Minute)

		if ok, _ := rl.Allow("a"); !ok {
			t.Fatal("First client should be allowed")
		}
		if ok, _ := rl.Allow("b"); !ok {
			t.Error("Second client has its own budget")
		}
		if ok, _ := rl.Allow("a"); ok {
			t.Error("First client should be exhausted")
		}
	})

	t.Run("Refill", func(t *testing.T) {
		rl, now := newTestLimiter(2, time.Minute)

		rl.Allow("a")
		rl.Allow("a")
		if ok, _ := rl.Allow("a"); ok {
			t.Fatal("Budget should be exhausted")
		}

		*now = now.Add(30 * time.Second)
		if ok, _ := rl.Allow("a"); !ok {
			t.Error("One token should have refilled after half the window")
		}
	})

	t.Run("Disabled", func(t *testing.T) {
		rl := NewRateLimiter(RateLimitConfig{Enabled: false, Requests: 1}, nil)
		for i := 0; i < 5; i++ {
			if ok, _ := rl.Allow("a"); !ok {
				t.Fatal("Disabled limiter must allow everything")
			}
		}
		if rl.Clients() != 0 {
			t.Error("Disabled limiter should not track clients")
		}
	})
}

func TestCleanupIdle(t *testing.T) {
	rl, now := newTestLimiter(5, time.Minute)

	rl.Allow("old")
	*now = now.Add(2 * time.Hour)
	rl.Allow("new")

	if removed := rl.CleanupIdle(time.Hour); removed != 1 {
		t.Errorf("Expected 1 eviction, got %d", removed)
	}
	if rl.Clients() != 1 {
		t.Errorf("Expected 1 remaining client, got %d", rl.Clients())
	}
}
