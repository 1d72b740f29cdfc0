package di

import (
	"context"
	"errors"
	"fmt"

	"github.com/prohmpiriya/event-storefront/internal/client"
	"github.com/prohmpiriya/event-storefront/internal/handler"
	"github.com/prohmpiriya/event-storefront/internal/service"
	"github.com/prohmpiriya/event-storefront/internal/session"
	"github.com/prohmpiriya/event-storefront/internal/tracking"
	"github.com/prohmpiriya/event-storefront/pkg/config"
	"github.com/prohmpiriya/event-storefront/pkg/logger"
	"github.com/prohmpiriya/event-storefront/pkg/middleware"
	pkgredis "github.com/prohmpiriya/event-storefront/pkg/redis"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

// Container holds all dependencies of the storefront service
type Container struct {
	Config *config.Config
	Logger *logger.Logger

	// Infrastructure
	Redis    *pkgredis.Client
	Kafka    *kgo.Client
	EventAPI client.EventAPI

	// Collaborators
	PendingStore session.PendingStore
	Tracker      tracking.ClickTracker
	PromoLimiter middleware.Limiter

	// Services
	CheckoutService *service.CheckoutServiceImpl
	ScheduleService *service.ScheduleServiceImpl

	// Handlers
	HealthHandler     *handler.HealthHandler
	StorefrontHandler *handler.StorefrontHandler
	ScheduleHandler   *handler.ScheduleHandler

	localLimiter *middleware.LocalRateLimiter
}

// ContainerConfig contains configuration for building the container.
// EventAPI overrides the HTTP client, for tests.
type ContainerConfig struct {
	Config   *config.Config
	Logger   *logger.Logger
	EventAPI client.EventAPI
}

// NewContainer creates a new dependency injection container. Redis and
// Kafka are connected only when enabled in config.
func NewContainer(ctx context.Context, cfg *ContainerConfig) (*Container, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	c := &Container{
		Config:   cfg.Config,
		Logger:   log,
		EventAPI: cfg.EventAPI,
	}

	if err := c.initInfrastructure(ctx); err != nil {
		c.Close()
		return nil, err
	}
	c.initCollaborators()

	// Initialize services
	c.CheckoutService = service.NewCheckoutService(&service.CheckoutServiceConfig{
		API:     c.EventAPI,
		Tracker: c.Tracker,
		Pending: c.PendingStore,
		Logger:  c.Logger,
		IdleTTL: c.Config.Session.IdleTTL,
	})
	c.ScheduleService = service.NewScheduleService(&service.ScheduleServiceConfig{
		API:     c.EventAPI,
		Logger:  c.Logger,
		IdleTTL: c.Config.Session.IdleTTL,
	})

	// Initialize handlers
	var pinger handler.Pinger
	if c.Redis != nil {
		pinger = c.Redis
	}
	c.HealthHandler = handler.NewHealthHandler(c.Config.App.Name, pinger)
	c.StorefrontHandler = handler.NewStorefrontHandler(c.CheckoutService, c.Config.API.SignInURL)
	c.ScheduleHandler = handler.NewScheduleHandler(c.ScheduleService)

	return c, nil
}

func (c *Container) initInfrastructure(ctx context.Context) error {
	if c.EventAPI == nil {
		c.EventAPI = client.NewHTTPEventAPI(c.Config.API.BaseURL, c.Config.API.Timeout)
	}

	if c.Config.Redis.Enabled {
		rdb, err := pkgredis.NewClient(ctx, &c.Config.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		c.Redis = rdb
		c.Logger.Info("connected to redis", zap.String("addr", c.Config.Redis.Addr()))
	}

	if c.Config.Kafka.Enabled {
		kc, err := tracking.NewKafkaClient(&c.Config.Kafka)
		if err != nil {
			return fmt.Errorf("failed to create kafka client: %w", err)
		}
		c.Kafka = kc
		c.Logger.Info("kafka click tracking enabled",
			zap.Strings("brokers", c.Config.Kafka.Brokers),
			zap.String("topic", c.Config.Kafka.PromoClickTopic))
	}
	return nil
}

func (c *Container) initCollaborators() {
	if c.Redis != nil {
		c.PendingStore = session.NewRedisPendingStore(c.Redis, c.Config.Session.PendingTTL)
	} else {
		c.PendingStore = session.NewMemoryPendingStore(c.Config.Session.PendingTTL)
	}

	var trackers []tracking.ClickTracker
	if c.Config.API.TrackClicksAPI {
		trackers = append(trackers, tracking.NewAPITracker(c.EventAPI))
	}
	if c.Kafka != nil {
		trackers = append(trackers, tracking.NewKafkaTracker(c.Kafka, c.Config.Kafka.PromoClickTopic))
	}
	if len(trackers) == 0 {
		c.Tracker = tracking.NoOpTracker{}
	} else {
		c.Tracker = tracking.NewMultiTracker(trackers...)
	}

	limitCfg := c.PromoRateLimitConfig()
	if c.Redis != nil {
		c.PromoLimiter = middleware.NewRedisRateLimiter(c.Redis, limitCfg)
	} else {
		c.localLimiter = middleware.NewLocalRateLimiter(limitCfg)
		c.PromoLimiter = c.localLimiter
	}
}

// PromoRateLimitConfig returns the limiter settings used for the promo route
func (c *Container) PromoRateLimitConfig() middleware.RateLimitConfig {
	cfg := middleware.DefaultRateLimitConfig()
	if rps := c.Config.RateLimit.PromoRequestsPerSecond; rps > 0 {
		cfg.RequestsPerSecond = rps
	}
	if burst := c.Config.RateLimit.PromoBurst; burst > 0 {
		cfg.BurstSize = burst
	}
	return cfg
}

// Close releases connections held by the container
func (c *Container) Close() error {
	var errs []error
	if c.localLimiter != nil {
		c.localLimiter.Stop()
	}
	if c.Kafka != nil {
		c.Kafka.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}
