package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/phrazzld/obsolescence-tutor/internal/api/shared"
	"golang.org/x/time/rate"
)

// defaultLimiterIdle is how long an unused bucket is kept.
const defaultLimiterIdle = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a token bucket per session. Requests without an
// authenticated session are keyed by remote address.
type RateLimiter struct {
	limit      rate.Limit
	burst      int
	retryAfter string
	idle       time.Duration
	now        func() time.Time

	mu          sync.Mutex
	buckets     map[string]*bucket
	lastCleanup time.Time
}

// NewRateLimiter allows perMinute requests per key with the given burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:      rate.Limit(float64(perMinute) / 60),
		burst:      burst,
		retryAfter: strconv.Itoa(int(math.Ceil(60 / float64(perMinute)))),
		idle:       defaultLimiterIdle,
		now:        time.Now,
		buckets:    make(map[string]*bucket),
	}
}

// Allow reports whether one more request for key fits in its bucket.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastCleanup) > l.idle {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > l.idle {
				delete(l.buckets, k)
			}
		}
		l.lastCleanup = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Len returns the number of tracked buckets.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Limit rejects requests over the caller's budget with 429.
func (l *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if id, ok := shared.SessionIDFromContext(r.Context()); ok {
			key = id.String()
		}

		if !l.Allow(key) {
			w.Header().Set("Retry-After", l.retryAfter)
			shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests,
				"Too many requests", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
