package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-storefront/pkg/logger"
	"github.com/prohmpiriya/event-storefront/pkg/response"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves liveness and readiness checks
type HealthHandler struct {
	service string
	redis   Pinger
}

// NewHealthHandler creates a new HealthHandler. redis may be nil when the
// pending store is in memory.
func NewHealthHandler(service string, redis Pinger) *HealthHandler {
	return &HealthHandler{service: service, redis: redis}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.service,
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.redis == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.redis.HealthCheck(ctx); err != nil {
		logger.Get().WarnContext(ctx, "readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, response.ServiceUnavailable("Redis is unreachable"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "redis": "ok"})
}
