package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/homestead/internal/auth"
)

// RealIP extracts the client's address, preferring X-Forwarded-For and
// falling back to RemoteAddr.
func RealIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i > 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Limit allows Requests per Window for one key.
type Limit struct {
	Requests int
	Window   time.Duration
}

type window struct {
	count   int
	resetAt time.Time
}

// RateLimiter is a fixed-window counter per key, held in memory.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow counts one request against key. When the limit is exceeded it
// returns false and how long until the window resets.
func (rl *RateLimiter) Allow(key string, limit Limit) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	if !ok || !now.Before(w.resetAt) {
		rl.windows[key] = &window{count: 1, resetAt: now.Add(limit.Window)}
		return true, 0
	}
	w.count++
	if w.count > limit.Requests {
		return false, w.resetAt.Sub(now)
	}
	return true, 0
}

// Cleanup drops windows that have already reset and reports how many.
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, w := range rl.windows {
		if !now.Before(w.resetAt) {
			delete(rl.windows, key)
			removed++
		}
	}
	return removed
}

// ByIP keys requests on the client address, scoped by name so separate
// limits do not share counters.
func ByIP(name string) func(*http.Request) string {
	return func(r *http.Request) string {
		return name + ":ip:" + RealIP(r)
	}
}

// ByPerson keys requests on the authenticated person, falling back to the
// client address.
func ByPerson(name string) func(*http.Request) string {
	return func(r *http.Request) string {
		if id := auth.PersonID(r.Context()); id != 0 {
			return name + ":person:" + strconv.FormatInt(id, 10)
		}
		return name + ":ip:" + RealIP(r)
	}
}

// RateLimit returns middleware that rejects requests over limit with 429.
func RateLimit(limiter *RateLimiter, keyFunc func(*http.Request) string, limit Limit) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retryAfter := limiter.Allow(keyFunc(r), limit)
			if !ok {
				secs := int(retryAfter.Round(time.Second) / time.Second)
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				writeError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
