package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shegerlabs/accreditation-service/pkg/database"
	"github.com/shegerlabs/accreditation-service/pkg/redis"
	"github.com/shegerlabs/accreditation-service/pkg/response"
)

// HealthHandler handles liveness and readiness probes
type HealthHandler struct {
	db    *database.PostgresDB
	cache *redis.Client
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *database.PostgresDB, cache *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Health handles the liveness probe
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(gin.H{"status": "ok"}))
}

// Ready handles the readiness probe: the service is ready only when both
// Postgres and Redis answer
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()

	checks := gin.H{}
	healthy := true

	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		checks["postgres"] = gin.H{"status": "down", "error": err.Error()}
		healthy = false
	} else {
		checks["postgres"] = gin.H{"status": "up", "latency_ms": time.Since(start).Milliseconds()}
	}

	start = time.Now()
	if err := h.cache.Ping(ctx).Err(); err != nil {
		checks["redis"] = gin.H{"status": "down", "error": err.Error()}
		healthy = false
	} else {
		checks["redis"] = gin.H{"status": "up", "latency_ms": time.Since(start).Milliseconds()}
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, response.Error(response.ErrCodeServiceUnavailable, "Dependencies unavailable"))
		return
	}
	c.JSON(http.StatusOK, response.Success(checks))
}
