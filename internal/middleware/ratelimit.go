// Package middleware holds cross-cutting fiber middleware.
package middleware

import (
	"sync"
	"time"

	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/httpx"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	idleExpiry      = 3 * time.Minute
	cleanupInterval = time.Minute
)

// RateLimiter keeps one token bucket per client key. Buckets idle for longer than
// idleExpiry are evicted.
type RateLimiter struct {
	mu      sync.Mutex
	clients *cache.Cache
	r       rate.Limit
	burst   int
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients: cache.New(idleExpiry, cleanupInterval),
		r:       rate.Limit(rps),
		burst:   burst,
	}
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if v, ok := rl.clients.Get(key); ok {
		l := v.(*rate.Limiter)
		// refresh idle expiry
		rl.clients.SetDefault(key, l)
		return l
	}
	l := rate.NewLimiter(rl.r, rl.burst)
	rl.clients.SetDefault(key, l)
	return l
}

// Allow reports whether key may make another request now.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.get(key).Allow()
}

// RateLimit rejects requests over the per-IP budget with 429.
func RateLimit(rl *RateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if !rl.Allow(ip) {
			logger.Warningf("rate limit exceeded for %s on %s", ip, c.Path())
			return c.Status(fiber.StatusTooManyRequests).JSON(httpx.Envelope{
				Success: false,
				Message: "Too many requests, please try again later",
			})
		}
		return c.Next()
	}
}
