package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-storefront/internal/di"
	"github.com/prohmpiriya/event-storefront/pkg/config"
	"github.com/prohmpiriya/event-storefront/pkg/logger"
	"github.com/prohmpiriya/event-storefront/pkg/middleware"
	"github.com/prohmpiriya/event-storefront/pkg/response"
	"github.com/prohmpiriya/event-storefront/pkg/telemetry"
	"go.uber.org/zap"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(&logger.Config{
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Development: cfg.Log.Development,
		OutputPath:  "stdout",
	}); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	}); err != nil {
		log.Warn("telemetry disabled", zap.Error(err))
	}

	container, err := di.NewContainer(ctx, &di.ContainerConfig{Config: cfg, Logger: log})
	if err != nil {
		log.Fatal("failed to build container", zap.Error(err))
	}

	go container.CheckoutService.Sessions().Run(ctx, cfg.Session.CleanupInterval)
	go container.ScheduleService.Editors().Run(ctx, cfg.Session.CleanupInterval)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      newRouter(cfg, container),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("storefront listening",
			zap.String("addr", srv.Addr), zap.String("environment", cfg.App.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	if err := container.Close(); err != nil {
		log.Error("failed to release resources", zap.Error(err))
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		log.Error("telemetry shutdown failed", zap.Error(err))
	}
	os.Exit(0)
}

// loadConfig reads STOREFRONT_CONFIG_FILE when set, otherwise .env and the
// environment
func loadConfig() (*config.Config, error) {
	if path := os.Getenv("STOREFRONT_CONFIG_FILE"); path != "" {
		return config.LoadWithPath(path)
	}
	return config.Load()
}

func newRouter(cfg *config.Config, c *di.Container) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(c.Logger),
		middleware.CORS(),
	)

	r.GET("/health", c.HealthHandler.Health)
	r.GET("/ready", c.HealthHandler.Ready)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.NotFound("Route not found"))
	})

	v1 := r.Group("/api/v1")

	storefront := v1.Group("")
	storefront.Use(
		middleware.BrowserSession(middleware.SessionConfig{
			CookieName: cfg.Session.CookieName,
			MaxAge:     int(cfg.Session.IdleTTL.Seconds()),
			Secure:     cfg.IsProduction(),
		}),
		middleware.JWTMiddleware(&middleware.JWTConfig{
			Secret:   cfg.JWT.Secret,
			Issuer:   cfg.JWT.Issuer,
			Optional: true,
		}),
	)
	promoLimit := middleware.RateLimiter(c.PromoLimiter, c.PromoRateLimitConfig())
	c.StorefrontHandler.RegisterRoutes(storefront, promoLimit)

	admin := v1.Group("/admin")
	admin.Use(
		middleware.JWTMiddleware(&middleware.JWTConfig{
			Secret: cfg.JWT.Secret,
			Issuer: cfg.JWT.Issuer,
		}),
		middleware.RequireRole(middleware.RoleOrganizer, middleware.RoleAdmin),
	)
	c.ScheduleHandler.RegisterRoutes(admin)

	return r
}
