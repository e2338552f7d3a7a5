package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/jrjohn/outreach-api/pkg/errors"
)

// Pinger checks connectivity with a backing store
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController serves liveness and readiness probes
type HealthController struct {
	store   Pinger
	timeout time.Duration
	logger  *zap.Logger
}

// NewHealthController creates a new HealthController instance
func NewHealthController(store Pinger, logger *zap.Logger) *HealthController {
	return &HealthController{
		store:   store,
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// RegisterRoutes registers the probe routes
func (c *HealthController) RegisterRoutes(router gin.IRouter) {
	router.GET("/health", c.Health)
	router.GET("/ready", c.Ready)
}

// Health reports that the process is serving
func (c *HealthController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Ready reports whether the user store is reachable
func (c *HealthController) Ready(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), c.timeout)
	defer cancel()

	if err := c.store.Ping(pingCtx); err != nil {
		c.logger.Warn("Readiness check failed", zap.Error(err))
		writeError(ctx, apperrors.Unavailable("user store unreachable").Wrap(err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}
