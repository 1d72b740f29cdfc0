package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	pkgredis "github.com/prohmpiriya/event-storefront/pkg/redis"
	"github.com/prohmpiriya/event-storefront/pkg/response"
)

// Limiter decides whether a request identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Requests per second per key (0 = unlimited)
	RequestsPerSecond int
	// Token bucket capacity
	BurstSize int
	// Key prefix for Redis
	KeyPrefix string
	// Cleanup interval for the local limiter
	CleanupInterval time.Duration
	// Idle time after which a local entry is dropped
	EntryTTL time.Duration
}

// DefaultRateLimitConfig returns defaults for the promo endpoint
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 2,
		BurstSize:         10,
		KeyPrefix:         "ratelimit:promo:",
		CleanupInterval:   time.Minute,
		EntryTTL:          time.Minute,
	}
}

type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastUpdate time.Time
}

// LocalRateLimiter is an in-memory token bucket per key
type LocalRateLimiter struct {
	config  RateLimitConfig
	now     func() time.Time
	entries sync.Map
	stop    chan struct{}
	once    sync.Once
}

// NewLocalRateLimiter creates a local limiter and starts its cleanup loop
func NewLocalRateLimiter(config RateLimitConfig) *LocalRateLimiter {
	rl := &LocalRateLimiter{
		config: config,
		now:    time.Now,
		stop:   make(chan struct{}),
	}
	if config.CleanupInterval > 0 {
		go rl.cleanup()
	}
	return rl
}

// Allow takes one token from the key's bucket
func (rl *LocalRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	if rl.config.RequestsPerSecond <= 0 {
		return true, nil
	}

	now := rl.now()
	v, _ := rl.entries.LoadOrStore(key, &bucket{
		tokens:     float64(rl.config.BurstSize),
		lastUpdate: now,
	})
	b := v.(*bucket)

	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := now.Sub(b.lastUpdate).Seconds()
	b.tokens = min(float64(rl.config.BurstSize), b.tokens+elapsed*float64(rl.config.RequestsPerSecond))
	b.lastUpdate = now

	if b.tokens >= 1 {
		b.tokens--
		return true, nil
	}
	return false, nil
}

func (rl *LocalRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := rl.now().Add(-rl.config.EntryTTL)
			rl.entries.Range(func(key, value any) bool {
				b := value.(*bucket)
				b.mu.Lock()
				if b.lastUpdate.Before(cutoff) {
					rl.entries.Delete(key)
				}
				b.mu.Unlock()
				return true
			})
		case <-rl.stop:
			return
		}
	}
}

// Stop stops the cleanup goroutine
func (rl *LocalRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// RedisRateLimiter is a fixed one-second window counter shared by all
// instances. The window admits RequestsPerSecond + BurstSize requests.
type RedisRateLimiter struct {
	config RateLimitConfig
	client *pkgredis.Client
	now    func() time.Time
}

// NewRedisRateLimiter creates a Redis-backed limiter
func NewRedisRateLimiter(client *pkgredis.Client, config RateLimitConfig) *RedisRateLimiter {
	return &RedisRateLimiter{config: config, client: client, now: time.Now}
}

func (rl *RedisRateLimiter) windowKey(key string) string {
	return rl.config.KeyPrefix + key + ":" + strconv.FormatInt(rl.now().Unix(), 10)
}

// Allow increments the counter for the current window
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if rl.config.RequestsPerSecond <= 0 {
		return true, nil
	}

	k := rl.windowKey(key)
	count, err := rl.client.Incr(ctx, k).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := rl.client.Expire(ctx, k, 2*time.Second).Err(); err != nil {
			return false, err
		}
	}

	return count <= int64(rl.config.RequestsPerSecond+rl.config.BurstSize), nil
}

// RateLimiter limits requests per client IP. Limiter errors fail open.
func RateLimiter(limiter Limiter, config RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			allowed = true
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerSecond))
		if !allowed {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				response.TooManyRequests("Rate limit exceeded. Please retry after 1 second(s)."))
			return
		}

		c.Next()
	}
}
