package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/mo-amir99/coursemarket-server-go/pkg/response"
)

// RateLimiter enforces a per-client budget through Redis, falling back to an
// in-process token bucket when Redis is absent or failing.
type RateLimiter struct {
	name     string
	limiter  *redis_rate.Limiter
	fallback *localLimiter
	limit    redis_rate.Limit
	logger   *slog.Logger
}

// NewRateLimiter builds a limiter. rdb may be nil, in which case only the local bucket is used.
func NewRateLimiter(name string, rdb *redis.Client, limit redis_rate.Limit, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		name:     name,
		fallback: newLocalLimiter(),
		limit:    limit,
		logger:   logger,
	}
	if rdb != nil {
		rl.limiter = redis_rate.NewLimiter(rdb)
	}
	return rl
}

// PerMinute builds a limit of n requests per minute with a burst of n.
func PerMinute(n int) redis_rate.Limit {
	if n <= 0 {
		n = 1
	}
	return redis_rate.PerMinute(n)
}

// Middleware keys requests by client IP.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", rl.name, c.ClientIP())
		res := rl.allow(c.Request.Context(), key)

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(rl.limit.Rate))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if res.Allowed == 0 {
			retryAfter := int(res.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			h.Set("Retry-After", strconv.Itoa(retryAfter))
			response.Error(c, http.StatusTooManyRequests, "Too many requests. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) allow(ctx context.Context, key string) *redis_rate.Result {
	if rl.limiter != nil {
		res, err := rl.limiter.Allow(ctx, key, rl.limit)
		if err == nil {
			return res
		}
		rl.logger.Warn("rate limiter backend error, using local bucket",
			slog.String("limiter", rl.name),
			slog.String("error", err.Error()),
		)
	}
	return rl.fallback.allow(key, rl.limit)
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

type localLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	swept   time.Time
}

const localEntryTTL = 10 * time.Minute

func newLocalLimiter() *localLimiter {
	return &localLimiter{entries: make(map[string]*limiterEntry), swept: time.Now()}
}

func (l *localLimiter) allow(key string, limit redis_rate.Limit) *redis_rate.Result {
	perSecond := float64(limit.Rate) / limit.Period.Seconds()
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.swept) > localEntryTTL {
		for k, e := range l.entries {
			if now.Sub(e.lastAccess) > localEntryTTL {
				delete(l.entries, k)
			}
		}
		l.swept = now
	}

	entry, ok := l.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(perSecond), limit.Burst)}
		l.entries[key] = entry
	}
	entry.lastAccess = now

	res := &redis_rate.Result{Limit: limit, RetryAfter: -1}
	if entry.limiter.AllowN(now, 1) {
		res.Allowed = 1
	} else {
		res.RetryAfter = time.Duration(float64(time.Second) / perSecond)
	}
	if remaining := int(entry.limiter.TokensAt(now)); remaining > 0 {
		res.Remaining = remaining
	}
	return res
}
