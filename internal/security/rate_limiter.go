package security

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig controls per-client throttling
type RateLimitConfig struct {
	Enabled  bool
	Requests int           // requests allowed per window
	Window   time.Duration // window length; tokens refill evenly across it
	IdleTTL  time.Duration // limiters unused this long are evicted
}

// RateLimiter applies a token bucket per client IP
type RateLimiter struct {
	config  RateLimitConfig
	clients map[string]*client
	mu      sync.Mutex
	logger  *zap.Logger
	now     func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg RateLimitConfig, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = time.Hour
	}
	return &RateLimiter{
		config:  cfg,
		clients: make(map[string]*client),
		logger:  logger,
		now:     time.Now,
	}
}

// Allow consumes one request for clientIP. It reports whether the request
// may proceed and how many requests remain in the current budget.
func (r *RateLimiter) Allow(clientIP string) (bool, int) {
	if !r.config.Enabled {
		return true, r.config.Requests
	}

	now := r.now()

	r.mu.Lock()
	c, exists := r.clients[clientIP]
	if !exists {
		c = &client{limiter: rate.NewLimiter(r.limit(), r.config.Requests)}
		r.clients[clientIP] = c
	}
	c.lastSeen = now
	r.mu.Unlock()

	allowed := c.limiter.AllowN(now, 1)
	remaining := int(c.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}

	if !allowed {
		r.logger.Debug("Rate limit exceeded", zap.String("client_ip", clientIP))
	}

	return allowed, remaining
}

func (r *RateLimiter) limit() rate.Limit {
	if r.config.Requests <= 0 || r.config.Window <= 0 {
		return rate.Inf
	}
	return rate.Every(r.config.Window / time.Duration(r.config.Requests))
}

// Clients returns the number of tracked client IPs
func (r *RateLimiter) Clients() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// CleanupIdle removes limiters not used within maxIdle and returns how many
// were removed
func (r *RateLimiter) CleanupIdle(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	removed := 0
	for ip, c := range r.clients {
		if c.lastSeen.Before(cutoff) {
			delete(r.clients, ip)
			removed++
		}
	}
	return removed
}

// StartCleanupRoutine evicts idle limiters until ctx is cancelled
func (r *RateLimiter) StartCleanupRoutine(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.CleanupIdle(r.config.IdleTTL); n > 0 {
					r.logger.Debug("Evicted idle rate limiters", zap.Int("count", n))
				}
			}
		}
	}()
}
