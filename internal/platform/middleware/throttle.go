package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	dErrors "beam/pkg/domain-errors"
	"beam/pkg/platform/httputil"
)

// Throttle caps how often a single client may hit a route. It uses a
// sliding window over request timestamps rather than fixed buckets, so a
// burst straddling a window boundary cannot double the effective limit.
// State is in-process only; behind multiple replicas each instance
// enforces its own window.
func Throttle(limit int, window time.Duration) func(http.Handler) http.Handler {
	t := &throttler{
		limit:   limit,
		window:  window,
		clients: make(map[string]*slidingWindow),
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remaining, resetAt, ok := t.allow(clientKey(r), time.Now())
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				retryIn := time.Until(resetAt)
				if retryIn < time.Second {
					retryIn = time.Second
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(retryIn.Seconds())))
				httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]string{
					"error":             string(dErrors.CodeUnavailable),
					"error_description": "too many requests, slow down",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type throttler struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clients map[string]*slidingWindow
}

type slidingWindow struct {
	timestamps []time.Time
}

func (t *throttler) allow(key string, now time.Time) (remaining int, resetAt time.Time, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sw := t.clients[key]
	if sw == nil {
		sw = &slidingWindow{}
		t.clients[key] = sw
	}
	sw.trim(now.Add(-t.window))

	if len(sw.timestamps) >= t.limit {
		return 0, sw.timestamps[0].Add(t.window), false
	}
	sw.timestamps = append(sw.timestamps, now)

	remaining = t.limit - len(sw.timestamps)
	return remaining, sw.timestamps[0].Add(t.window), true
}

// trim drops timestamps that have fallen out of the window.
func (sw *slidingWindow) trim(cutoff time.Time) {
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
