package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	limiterSweepEvery = 10 * time.Minute
	limiterIdleTTL    = 30 * time.Minute
)

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// keyedLimiters holds one token bucket per key. Buckets idle for longer
// than limiterIdleTTL are swept until ctx is done.
type keyedLimiters[K comparable] struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	entries map[K]*limiterEntry
}

func newKeyedLimiters[K comparable](ctx context.Context, requestsPerSecond float64, burst int) *keyedLimiters[K] {
	l := &keyedLimiters[K]{
		limit:   rate.Limit(requestsPerSecond),
		burst:   burst,
		entries: make(map[K]*limiterEntry),
	}

	go func() {
		ticker := time.NewTicker(limiterSweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.sweep(time.Now().Add(-limiterIdleTTL))
			case <-ctx.Done():
				return
			}
		}
	}()

	return l
}

func (l *keyedLimiters[K]) allow(key K) bool {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastAccess = time.Now()
	l.mu.Unlock()

	return e.limiter.Allow()
}

func (l *keyedLimiters[K]) sweep(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, e := range l.entries {
		if e.lastAccess.Before(cutoff) {
			delete(l.entries, k)
		}
	}
}

// RateLimit throttles API requests per tenant. Requests that carry no
// tenant pass through; RequireTenant rejects them.
func RateLimit(ctx context.Context, requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	limiters := newKeyedLimiters[uuid.UUID](ctx, requestsPerSecond, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID, ok := TenantIDFromContext(r.Context())
			if ok && !limiters.allow(tenantID) {
				writeProblem(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LimitUpgrades throttles websocket upgrade attempts per client address.
// It runs before the token is checked, so reconnect storms and token
// guessing are both bounded. Mount it after chi's RealIP.
func LimitUpgrades(ctx context.Context, requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	limiters := newKeyedLimiters[string](ctx, requestsPerSecond, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.allow(clientHost(r)) {
				writeProblem(w, http.StatusTooManyRequests, "too many connection attempts")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientHost drops the port: every connection from one client has a new
// source port.
func clientHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// MaxWatchers caps the board watches a tenant holds open at once. A watch
// handler blocks for the life of its websocket, so requests in flight on
// the route are exactly the open watches, each pinning a hub listener and
// its queue.
func MaxWatchers(perTenant int) func(http.Handler) http.Handler {
	var (
		mu   sync.Mutex
		open = make(map[uuid.UUID]int)
	)

	acquire := func(tenantID uuid.UUID) bool {
		mu.Lock()
		defer mu.Unlock()
		if open[tenantID] >= perTenant {
			return false
		}
		open[tenantID]++
		return true
	}

	release := func(tenantID uuid.UUID) {
		mu.Lock()
		defer mu.Unlock()
		if open[tenantID] <= 1 {
			delete(open, tenantID)
			return
		}
		open[tenantID]--
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID, ok := TenantIDFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			if !acquire(tenantID) {
				writeProblem(w, http.StatusTooManyRequests, "too many open board watches")
				return
			}
			defer release(tenantID)
			next.ServeHTTP(w, r)
		})
	}
}
