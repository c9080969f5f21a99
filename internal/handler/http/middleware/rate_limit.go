package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/requestctx"
	"golang.org/x/time/rate"
)

const limiterEntryTTL = 10 * time.Minute

// RateLimiter keeps one token bucket per caller. Authenticated callers are
// keyed by user id, everyone else by remote address.
type RateLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*rateLimiterEntry
	rate        rate.Limit
	burst       int
	lastCleanup time.Time
	now         func() time.Time
}

type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limiters:    make(map[string]*rateLimiterEntry),
		rate:        rate.Limit(cfg.RequestsPerSecond),
		burst:       cfg.Burst,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastCleanup) > limiterEntryTTL {
		rl.cleanup(now)
	}

	entry, exists := rl.limiters[key]
	if !exists {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// cleanup drops entries unused for limiterEntryTTL. Caller holds mu.
func (rl *RateLimiter) cleanup(now time.Time) {
	cutoff := now.Add(-limiterEntryTTL)
	for key, entry := range rl.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
	rl.lastCleanup = now
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := rl.getLimiter(limiterKey(r))

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))
		if !limiter.Allow() {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", "1")
			response.TooManyRequests(w, "Rate limit exceeded. Please try again later.")
			return
		}
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))

		next.ServeHTTP(w, r)
	})
}

func limiterKey(r *http.Request) string {
	if actor, ok := requestctx.Actor(r.Context()); ok {
		return "user:" + actor.UserID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
