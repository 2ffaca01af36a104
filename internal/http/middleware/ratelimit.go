package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per key. The middleware keys on client IP.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perSecond requests per key with the given burst.
// Close stops the background eviction of idle keys.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	rl := newRateLimiter(perSecond, burst, time.Now)
	go rl.evictLoop(5*time.Minute, 10*time.Minute)
	return rl
}

func newRateLimiter(perSecond float64, burst int, now func() time.Time) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		now:     now,
		stop:    make(chan struct{}),
	}
}

// Allow spends one token from key's bucket.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entry, ok := rl.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.entries[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) evictIdle(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-maxIdle)
	for key, entry := range rl.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.entries, key)
		}
	}
}

func (rl *RateLimiter) evictLoop(every, maxIdle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.evictIdle(maxIdle)
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

// RateLimit rejects requests over the limit with 429 Too Many Requests.
func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(limitKey(r)) {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// limitKey ignores X-Session-ID; clients pick that value freely.
func limitKey(r *http.Request) string {
	// chi's RealIP has already rewritten RemoteAddr when a proxy header was present.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
