package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/logging"
)

// HealthHandler reports whether the database (and Redis, when configured)
// answer.
type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{"database": "ok"}
	if err := database.HealthCheck(ctx, h.db); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("database health check failed")
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if h.redis != nil {
		checks["redis"] = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			// Redis is optional; report it without failing the check.
			logging.Ctx(ctx).Warn().Err(err).Msg("redis health check failed")
			checks["redis"] = "unavailable"
		}
	}

	result := "healthy"
	if status != http.StatusOK {
		result = "unhealthy"
	}
	c.JSON(status, gin.H{
		"status": result,
		"checks": checks,
	})
}
