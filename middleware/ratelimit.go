package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"gamecatalog/cache"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RateLimit allows maxRequests per client IP per window for the routes it
// wraps. Counters live in redis under scope; with no redis every request
// passes. A redis failure lets the request through.
func RateLimit(c *cache.Cache, scope string, maxRequests int, window time.Duration, log logrus.FieldLogger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if c == nil || maxRequests <= 0 {
			ctx.Next()
			return
		}

		key := scope + ":" + ctx.ClientIP()
		allowed, remaining, retryAfter, err := c.CheckRateLimit(ctx.Request.Context(), key, maxRequests, window)
		if err != nil {
			log.WithError(err).WithField("scope", scope).Warn("Rate limit check failed")
			ctx.Next()
			return
		}

		ctx.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		ctx.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		ctx.Header("X-RateLimit-Window", window.String())

		if !allowed {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			ctx.Header("Retry-After", strconv.Itoa(seconds))
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": fmt.Sprintf("Too many requests. Retry after %ds", seconds),
			})
			return
		}
		ctx.Next()
	}
}
