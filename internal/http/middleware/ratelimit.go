package middleware

// This file implements an in-memory token-bucket rate limiter with
// per-identity buckets and opportunistic garbage collection of idle buckets.
//
// The limiter is process-local. It protects the storefront backends from a
// single noisy client at the edge; it is not an authorization mechanism.

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	visitorTTL      = 10 * time.Minute
	cleanupInterval = 5000
)

// keyFunc selects the identity used to key a rate-limit bucket.
type keyFunc func(*gin.Context) string

// KeyByUserOrIP prefers the authenticated user (the "userID" set by
// BearerAuth) and falls back to the client IP. Keys are prefixed so the two
// namespaces never collide ("user:abc123" vs "ip:203.0.113.7").
func KeyByUserOrIP() keyFunc {
	return func(c *gin.Context) string {
		if v, ok := c.Get(userIDKey); ok {
			if s, ok := v.(string); ok && s != "" {
				return "user:" + s
			}
		}
		return "ip:" + c.ClientIP()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter implements a per-key token-bucket rate limiter. It is safe for
// concurrent use.
type RateLimiter struct {
	rps      rate.Limit
	burst    int
	keyFn    keyFunc
	exempt   map[string]struct{}
	now      func() time.Time
	mu       sync.Mutex
	visitors map[string]*visitor

	ttl      time.Duration
	cleanupN uint64
}

// LimiterOption customizes a RateLimiter.
type LimiterOption func(*RateLimiter)

// WithExemptPaths skips limiting for the given gin route paths, e.g. probes.
func WithExemptPaths(paths ...string) LimiterOption {
	return func(rl *RateLimiter) {
		for _, p := range paths {
			rl.exempt[p] = struct{}{}
		}
	}
}

// NewRateLimiter constructs a RateLimiter with the given tokens-per-second
// and burst size, keyed by keyFn. rps <= 0 disables limiting and a burst <= 0
// is coerced to 1.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc, opts ...LimiterOption) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if keyFn == nil {
		keyFn = KeyByUserOrIP()
	}
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	rl := &RateLimiter{
		rps:      limit,
		burst:    burst,
		keyFn:    keyFn,
		exempt:   map[string]struct{}{},
		now:      time.Now,
		visitors: make(map[string]*visitor),
		ttl:      visitorTTL,
	}
	for _, o := range opts {
		o(rl)
	}
	return rl
}

// getVisitor returns the limiter for key, creating it if absent.
//
// Idle entries are swept every cleanupInterval lookups. The sweep runs before
// the requested visitor is touched so a stale bucket can be evicted even when
// it is the one being fetched.
func (rl *RateLimiter) getVisitor(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cleanupN++
	if rl.cleanupN >= cleanupInterval {
		for k, vv := range rl.visitors {
			if now.Sub(vv.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.cleanupN = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

// take consumes one token for key. When none is available it returns how
// long until one is and leaves the bucket untouched.
func (rl *RateLimiter) take(key string) (time.Duration, bool) {
	now := rl.now()
	res := rl.getVisitor(key, now).ReserveN(now, 1)
	if !res.OK() {
		return time.Second, false
	}
	if d := res.DelayFrom(now); d > 0 {
		res.CancelAt(now)
		return d, false
	}
	return 0, true
}

// Handler returns a Gin middleware that enforces per-key limits. Rejected
// requests get 429 with Retry-After set to the whole seconds until the
// bucket refills, and
//
//	{"request_id": "<id>", "code": "rate_limited", "message": "rate limit exceeded"}
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, skip := rl.exempt[c.FullPath()]; skip || rl.rps == rate.Inf {
			c.Next()
			return
		}

		key := rl.keyFn(c)
		wait, allowed := rl.take(key)
		if allowed {
			c.Next()
			return
		}

		retry := retryAfterSeconds(wait)
		rateLimited.Inc()
		LoggerFrom(c).Warn().Str("key", key).Int("retry_after", retry).Msg("rate limited")
		c.Header("Retry-After", strconv.Itoa(retry))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       "rate_limited",
			"message":    "rate limit exceeded",
		})
	}
}

// retryAfterSeconds rounds d up to whole seconds, at least 1.
func retryAfterSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
