package middleware

import (
	"net/http"
	"sync"
	"time"
)

// RateLimiter applies per-IP token-bucket limiting to the public booking
// endpoints. Stale buckets are evicted inline on each refill pass, so no
// background goroutine is needed.
type RateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*tokenBucket
	ratePerSec float64
	burst      float64
	lastSweep  time.Time
}

type tokenBucket struct {
	tokens   float64
	refilled time.Time
}

const bucketIdleEviction = 10 * time.Minute

// NewRateLimiter allows ratePerSec sustained requests with the given
// burst per client IP.
func NewRateLimiter(ratePerSec float64, burst int) *RateLimiter {
	return &RateLimiter{
		buckets:    make(map[string]*tokenBucket),
		ratePerSec: ratePerSec,
		burst:      float64(burst),
		lastSweep:  time.Now(),
	}
}

// Allow reports whether a request from ip fits the budget.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.sweep(now)

	b, ok := rl.buckets[ip]
	if !ok {
		b = &tokenBucket{tokens: rl.burst, refilled: now}
		rl.buckets[ip] = b
	}

	b.tokens += now.Sub(b.refilled).Seconds() * rl.ratePerSec
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.refilled = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < bucketIdleEviction {
		return
	}
	for ip, b := range rl.buckets {
		if now.Sub(b.refilled) > bucketIdleEviction {
			delete(rl.buckets, ip)
		}
	}
	rl.lastSweep = now
}

// RateLimit rejects requests over the configured budget with 429.
func RateLimit(ratePerSec float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(ratePerSec, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			// Prefer X-Real-Ip populated by chi's RealIP middleware.
			if xri := r.Header.Get("X-Real-Ip"); xri != "" {
				ip = xri
			}
			if !limiter.Allow(ip) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
