package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/N1K0232/GlowingStoreApi/pkg/problem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPRateLimiter(t *testing.T) {
	rl := NewIPRateLimiter(2)
	defer rl.Stop()

	h := rl.Middleware(http.HandlerFunc(ok))

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = ip
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		return rec
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)

	rec := do("10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, problem.ContentType, rec.Header().Get("Content-Type"))

	// Other clients have their own bucket.
	assert.Equal(t, http.StatusOK, do("10.0.0.2").Code)
}

func TestIPRateLimiterCleanup(t *testing.T) {
	rl := NewIPRateLimiter(10)
	rl.Stop()
	rl.Stop()

	rl.getLimiter("10.0.0.1")
	rl.getLimiter("10.0.0.2")

	rl.mu.Lock()
	rl.visitors["10.0.0.1"].lastSeen = time.Now().Add(-2 * visitorTTL)
	rl.mu.Unlock()

	rl.cleanup(visitorTTL)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	assert.NotContains(t, rl.visitors, "10.0.0.1")
	assert.Contains(t, rl.visitors, "10.0.0.2")
}
