package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"
)

// RateLimiter is a per-client sliding window. Idle clients are pruned lazily,
// at most once per window, while serving Allow.
type RateLimiter struct {
	mu        sync.Mutex
	hits      map[string][]time.Time
	limit     int
	window    time.Duration
	lastPrune time.Time
	now       func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow records a hit for client. When the window is full it records nothing
// and reports how long until the oldest hit leaves the window.
func (rl *RateLimiter) Allow(client string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)
	rl.prune(now, cutoff)

	hits := slices.DeleteFunc(rl.hits[client], func(t time.Time) bool {
		return !t.After(cutoff)
	})
	if len(hits) >= rl.limit {
		rl.hits[client] = hits
		return false, hits[0].Sub(cutoff)
	}

	rl.hits[client] = append(hits, now)
	return true, 0
}

func (rl *RateLimiter) prune(now, cutoff time.Time) {
	if now.Sub(rl.lastPrune) < rl.window {
		return
	}
	rl.lastPrune = now

	for client, hits := range rl.hits {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(rl.hits, client)
		}
	}
}

// RateLimit allows limit requests per window per client IP and answers the
// rest with 429 and a Retry-After header.
func RateLimit(limit int, window time.Duration) func(http.HandlerFunc) http.HandlerFunc {
	limiter := NewRateLimiter(limit, window)

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)

			ok, retryAfter := limiter.Allow(ip)
			if !ok {
				slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path, "retry_after", retryAfter)
				seconds := max(1, int(math.Ceil(retryAfter.Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"too many requests, please try again later"}`))
				return
			}

			next(w, r)
		}
	}
}

// RateLimitAuth limits admin login attempts: 5 per 15 minutes per IP.
func RateLimitAuth() func(http.HandlerFunc) http.HandlerFunc {
	return RateLimit(5, 15*time.Minute)
}

// RateLimitForms limits public quote and newsletter submissions: 10 per hour per IP.
func RateLimitForms() func(http.HandlerFunc) http.HandlerFunc {
	return RateLimit(10, time.Hour)
}
