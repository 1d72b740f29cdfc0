package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	pkgredis "github.com/prohmpiriya/event-storefront/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRateLimiter_Allow(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewLocalRateLimiter(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2})
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := rl.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok, "request %d within burst", i)
	}

	ok, _ := rl.Allow(ctx, "1.2.3.4")
	assert.False(t, ok, "burst exhausted")

	ok, _ = rl.Allow(ctx, "5.6.7.8")
	assert.True(t, ok, "other keys have their own bucket")

	now = now.Add(time.Second)
	ok, _ = rl.Allow(ctx, "1.2.3.4")
	assert.True(t, ok, "bucket refills over time")
}

func TestLocalRateLimiter_Unlimited(t *testing.T) {
	rl := NewLocalRateLimiter(RateLimitConfig{})
	defer rl.Stop()

	for i := 0; i < 100; i++ {
		ok, err := rl.Allow(context.Background(), "k")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestRedisRateLimiter_Allow(t *testing.T) {
	db, mock := redismock.NewClientMock()
	now := time.Unix(1700000000, 0)
	rl := NewRedisRateLimiter(pkgredis.NewFromClient(db), RateLimitConfig{
		RequestsPerSecond: 1,
		BurstSize:         1,
		KeyPrefix:         "rl:",
	})
	rl.now = func() time.Time { return now }
	key := "rl:1.2.3.4:1700000000"

	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, 2*time.Second).SetVal(true)
	mock.ExpectIncr(key).SetVal(2)
	mock.ExpectIncr(key).SetVal(3)

	ctx := context.Background()
	ok, err := rl.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rl.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rl.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string) (bool, error) { return false, nil }

func TestRateLimiterMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		limiter    Limiter
		wantStatus int
	}{
		{"denied", denyLimiter{}, http.StatusTooManyRequests},
		{"limiter error fails open", failingLimiter{}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/promo", RateLimiter(tt.limiter, DefaultRateLimitConfig()), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/promo", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusTooManyRequests {
				assert.Equal(t, "1", w.Header().Get("Retry-After"))
				assert.Contains(t, w.Body.String(), "TOO_MANY_REQUESTS")
			}
		})
	}
}
