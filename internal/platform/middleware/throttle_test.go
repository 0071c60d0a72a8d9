package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottleLimitsPerClient(t *testing.T) {
	handler := Throttle(3, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/register/init", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do("10.0.0.1:4411").Code)
	}

	rec := do("10.0.0.1:4411")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	// A different client is unaffected.
	assert.Equal(t, http.StatusOK, do("10.0.0.2:4411").Code)
}

func TestThrottleSlidesWindow(t *testing.T) {
	th := &throttler{limit: 2, window: time.Minute, clients: map[string]*slidingWindow{}}
	now := time.Now()

	_, _, ok := th.allow("c", now)
	require.True(t, ok)
	_, _, ok = th.allow("c", now.Add(30*time.Second))
	require.True(t, ok)
	_, _, ok = th.allow("c", now.Add(45*time.Second))
	require.False(t, ok)

	// The first request ages out, freeing one slot.
	_, _, ok = th.allow("c", now.Add(61*time.Second))
	assert.True(t, ok)
}
