package middleware

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Baragji/Blueprint-creator/internal/domain"
	"github.com/Baragji/Blueprint-creator/internal/store"
)

// RateLimit enforces a fixed-window per-IP limit on the wrapped routes.
// Counters live in the shared session store; when the store is unreachable
// the limiter fails open so an outage never locks users out.
func RateLimit(s store.Store, logger *zap.Logger, window time.Duration, max int) gin.HandlerFunc {
	retryAfter := int(math.Ceil(window.Seconds()))

	return func(c *gin.Context) {
		bucket := time.Now().UnixMilli() / window.Milliseconds()
		key := fmt.Sprintf("ratelimit:%s:%s:%d", c.FullPath(), c.ClientIP(), bucket)

		count, err := s.Incr(c.Request.Context(), key)
		if err != nil {
			logger.Warn("rate limit store unavailable, allowing request", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			if err := s.Expire(c.Request.Context(), key, window); err != nil {
				logger.Warn("rate limit expire failed", zap.String("key", key), zap.Error(err))
			}
		}

		if count > int64(max) {
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"code":    domain.CodeRateLimitExceeded,
				"message": "Too many requests, please try again later.",
			})
			return
		}
		c.Next()
	}
}
