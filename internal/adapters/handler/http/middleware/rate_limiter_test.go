package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/onepunch-tracker/internal/metrics"
)

const testClientIP = "192.0.2.10"

func setupTestRedis(t *testing.T) *redis.Client {
	_ = godotenv.Load("../../../../../.env")

	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       1,
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("Skipping integration test (Redis down): %v", err)
	}

	rdb.FlushDB(ctx)
	return rdb
}

func setupWorkoutRoutes(limiter *WriteLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	workouts := router.Group("/api/v1/workouts", limiter.Middleware())
	workouts.GET("", ok)
	workouts.POST("", ok)
	workouts.DELETE("", ok)
	workouts.DELETE("/:date", ok)
	return router
}

func send(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	req.RemoteAddr = testClientIP + ":40000"
	router.ServeHTTP(w, req)
	return w
}

func TestWriteLimiter_Mock(t *testing.T) {
	key := rateLimitKeyPrefix + testClientIP
	window := time.Minute

	t.Run("Reads skip redis", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		router := setupWorkoutRoutes(NewWriteLimiter(rdb, 1, window, nil))

		for i := 0; i < 3; i++ {
			w := send(router, http.MethodGet, "/api/v1/workouts")
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("First write opens the window", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		router := setupWorkoutRoutes(NewWriteLimiter(rdb, 5, window, nil))

		mock.ExpectIncr(key).SetVal(1)
		mock.ExpectExpire(key, window).SetVal(true)
		mock.ExpectTTL(key).SetVal(window)

		w := send(router, http.MethodPost, "/api/v1/workouts")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Writes over the limit are rejected and counted", func(t *testing.T) {
		m, _ := metrics.NewTestManagerAndRegistry()
		rdb, mock := redismock.NewClientMock()
		router := setupWorkoutRoutes(NewWriteLimiter(rdb, 2, window, m))

		mock.ExpectIncr(key).SetVal(3)
		mock.ExpectTTL(key).SetVal(40 * time.Second)
		mock.ExpectIncr(key).SetVal(4)
		mock.ExpectTTL(key).SetVal(39 * time.Second)

		w := send(router, http.MethodDelete, "/api/v1/workouts/2024-03-01")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), `"retry_in_s":40`)
		assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

		w = send(router, http.MethodPost, "/api/v1/workouts")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)

		assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterRateLimited.WithLabelValues(http.MethodDelete)))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterRateLimited.WithLabelValues(http.MethodPost)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failed expire drops the counter and lets the write through", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		router := setupWorkoutRoutes(NewWriteLimiter(rdb, 5, window, nil))

		mock.ExpectIncr(key).SetVal(1)
		mock.ExpectExpire(key, window).SetErr(errors.New("READONLY"))
		mock.ExpectDel(key).SetVal(1)

		w := send(router, http.MethodPost, "/api/v1/workouts")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Redis down lets writes through", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		router := setupWorkoutRoutes(NewWriteLimiter(rdb, 1, window, nil))

		mock.ExpectIncr(key).SetErr(errors.New("dial tcp: connection refused"))

		w := send(router, http.MethodDelete, "/api/v1/workouts")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWriteLimiter_Integration(t *testing.T) {
	rdb := setupTestRedis(t)
	defer rdb.Close()

	ctx := context.Background()

	t.Run("Reads never use the write budget", func(t *testing.T) {
		rdb.FlushDB(ctx)
		router := setupWorkoutRoutes(NewWriteLimiter(rdb, 2, time.Minute, nil))

		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, send(router, http.MethodGet, "/api/v1/workouts").Code)
		}

		exists, err := rdb.Exists(ctx, rateLimitKeyPrefix+testClientIP).Result()
		require.NoError(t, err)
		assert.Zero(t, exists)

		assert.Equal(t, http.StatusOK, send(router, http.MethodPost, "/api/v1/workouts").Code)
		assert.Equal(t, http.StatusOK, send(router, http.MethodPost, "/api/v1/workouts").Code)
	})

	t.Run("Submissions and deletes share one budget", func(t *testing.T) {
		rdb.FlushDB(ctx)
		m, _ := metrics.NewTestManagerAndRegistry()
		router := setupWorkoutRoutes(NewWriteLimiter(rdb, 3, time.Minute, m))

		assert.Equal(t, http.StatusOK, send(router, http.MethodPost, "/api/v1/workouts").Code)
		assert.Equal(t, http.StatusOK, send(router, http.MethodDelete, "/api/v1/workouts/2024-03-01").Code)
		assert.Equal(t, http.StatusOK, send(router, http.MethodDelete, "/api/v1/workouts").Code)

		w := send(router, http.MethodPost, "/api/v1/workouts")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "too many workout changes")
		assert.Equal(t, http.StatusOK, send(router, http.MethodGet, "/api/v1/workouts").Code)

		ttl, err := rdb.TTL(ctx, rateLimitKeyPrefix+testClientIP).Result()
		require.NoError(t, err)
		assert.True(t, ttl > 0 && ttl <= time.Minute)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterRateLimited.WithLabelValues(http.MethodPost)))
	})
}
