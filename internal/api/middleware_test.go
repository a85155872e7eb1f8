package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectares/aresdata/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(t *testing.T, h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/games", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTimingMiddlewareSetsHeader(t *testing.T) {
	rec := doRequest(t, TimingMiddleware(okHandler()), "10.0.0.1:4000")
	assert.NotEmpty(t, rec.Header().Get("X-Process-Time"))
}

func TestRateLimitMiddlewareBlocksAfterBurst(t *testing.T) {
	cfg := &config.Config{RateLimitRequests: 2, RateLimitWindow: time.Minute}
	h := RateLimitMiddleware(cfg)(okHandler())

	rec := doRequest(t, h, "10.0.0.1:4000")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, "10.0.0.1:4000")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
}

func TestRateLimitMiddlewareIsolatesClients(t *testing.T) {
	cfg := &config.Config{RateLimitRequests: 2, RateLimitWindow: time.Minute}
	h := RateLimitMiddleware(cfg)(okHandler())

	require.Equal(t, http.StatusOK, doRequest(t, h, "10.0.0.1:4000").Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest(t, h, "10.0.0.1:4000").Code)

	// An exhausted bucket for one IP must not touch another's.
	assert.Equal(t, http.StatusOK, doRequest(t, h, "10.0.0.2:4000").Code)
}

func TestIPLimiterZeroConfigStillServes(t *testing.T) {
	l := newIPLimiter(&config.Config{})
	assert.Greater(t, float64(l.rate), 0.0)
	assert.GreaterOrEqual(t, l.burst, 1)
	assert.True(t, l.allow("10.0.0.1"))
}

func TestIPLimiterEvictsIdleEntries(t *testing.T) {
	l := newIPLimiter(&config.Config{RateLimitRequests: 10, RateLimitWindow: time.Minute})
	l.allow("10.0.0.1")
	l.allow("10.0.0.2")

	l.mu.Lock()
	l.visitors["10.0.0.1"].lastSeen = time.Now().Add(-2 * l.idleTTL)
	l.mu.Unlock()

	l.evictIdle()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.visitors, "10.0.0.1")
	assert.Contains(t, l.visitors, "10.0.0.2")
}
