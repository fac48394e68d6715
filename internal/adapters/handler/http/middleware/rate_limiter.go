package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/onepunch-tracker/internal/metrics"
)

const rateLimitKeyPrefix = "punch:writes:"

// WriteLimiter caps how many workout writes (form submissions, deletes,
// clears) one client can make per window. Reads are never limited.
type WriteLimiter struct {
	rdb     *redis.Client
	limit   int
	window  time.Duration
	metrics *metrics.Manager
}

func NewWriteLimiter(rdb *redis.Client, limit int, window time.Duration, m *metrics.Manager) *WriteLimiter {
	return &WriteLimiter{
		rdb:     rdb,
		limit:   limit,
		window:  window,
		metrics: m,
	}
}

// Middleware is meant for the workouts route group. It fails open when redis
// is unreachable.
func (l *WriteLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodDelete:
		default:
			c.Next()
			return
		}

		used, ttl, err := l.hit(c.Request.Context(), rateLimitKeyPrefix+c.ClientIP())
		if err != nil {
			logrus.WithField("request_id", c.GetString(ContextRequestIDKey)).
				Warnf("[RATE] Write limiter skipped: %v", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(l.limit)-used), 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))

		if used > int64(l.limit) {
			if l.metrics != nil {
				l.metrics.CounterRateLimited.WithLabelValues(c.Request.Method).Inc()
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "too many workout changes, slow down",
				"retry_in_s": int(ttl.Seconds()),
			})
			return
		}

		c.Next()
	}
}

// hit counts one write and returns the writes used in the current window and
// the time until it resets.
func (l *WriteLimiter) hit(ctx context.Context, key string) (int64, time.Duration, error) {
	used, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}

	if used == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			// A counter without expiry would block the client forever.
			l.rdb.Del(ctx, key)
			return 0, 0, fmt.Errorf("expire %s: %w", key, err)
		}
	}

	ttl, err := l.rdb.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = l.window
	}
	return used, ttl, nil
}
