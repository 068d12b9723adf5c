package handlers

import (
	"context"
	"net/http"
	"time"

	"gamecatalog/cache"
	"gamecatalog/db"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler reports whether the store and the cache are reachable.
type HealthHandler struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewHealthHandler(gdb *gorm.DB, c *cache.Cache) *HealthHandler {
	return &HealthHandler{db: gdb, cache: c}
}

// Health - GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok"}
	healthy := true
	if err := db.Ping(ctx, h.db); err != nil {
		_ = c.Error(err)
		checks["database"] = "unavailable"
		healthy = false
	}
	if h.cache != nil {
		checks["cache"] = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			_ = c.Error(err)
			checks["cache"] = "unavailable"
			healthy = false
		}
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "checks": checks})
}
