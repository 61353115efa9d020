package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/N1K0232/GlowingStoreApi/pkg/problem"
	"golang.org/x/time/rate"
)

const visitorTTL = 10 * time.Minute

// IPRateLimiter provides per-IP rate limiting middleware.
type IPRateLimiter struct {
	visitors map[string]*visitorEntry
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	stop     chan struct{}
	stopOnce sync.Once
}

// visitorEntry holds the rate limiter and last seen time for a visitor.
type visitorEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter creates a new IP-based rate limiter. Stop releases its
// cleanup goroutine.
func NewIPRateLimiter(requestsPerMinute int) *IPRateLimiter {
	rl := &IPRateLimiter{
		visitors: make(map[string]*visitorEntry, 256),
		rate:     rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:    requestsPerMinute,
		stop:     make(chan struct{}),
	}

	// Start cleanup goroutine to remove stale entries.
	go rl.cleanupLoop()

	return rl
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (l *IPRateLimiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
}

// getLimiter returns the rate limiter for the given IP, creating one if necessary.
func (l *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(l.rate, l.burst)
		l.visitors[ip] = &visitorEntry{
			limiter:  limiter,
			lastSeen: time.Now(),
		}

		return limiter
	}

	entry.lastSeen = time.Now()

	return entry.limiter
}

// Middleware returns an HTTP middleware that enforces rate limiting per IP.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr // chi's RealIP middleware sets this
		limiter := l.getLimiter(ip)

		if !limiter.Allow() {
			w.Header().Set("Retry-After", strconv.Itoa(int(time.Minute.Seconds())))
			problem.Write(w, r, http.StatusTooManyRequests, "Rate limit exceeded.")

			return
		}

		next.ServeHTTP(w, r)
	})
}

// cleanupLoop periodically removes stale IP entries.
func (l *IPRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(visitorTTL)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.cleanup(visitorTTL)
		}
	}
}

// cleanup removes entries that haven't been seen for longer than maxAge.
func (l *IPRateLimiter) cleanup(maxAge time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)

	for ip, entry := range l.visitors {
		if entry.lastSeen.Before(cutoff) {
			delete(l.visitors, ip)
		}
	}
}
