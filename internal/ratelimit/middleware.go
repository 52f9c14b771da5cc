package ratelimit

import (
	"fmt"
	"math"

	"matchbet-server/internal/apierrors"
	"matchbet-server/internal/observability"

	"github.com/gin-gonic/gin"
)

// Middleware limits requests per authenticated user, falling back to the
// client IP when no user is set.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		key := "ip:" + observability.GetRealClientIP(c)
		if userID, ok := c.Get("User-ID"); ok {
			if id, ok := userID.(string); ok && id != "" {
				key = "user:" + id
			}
		}

		result := s.Allow(ctx, key)

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))

		if !result.Allowed {
			retryAfter := int(math.Ceil(result.RetryAfter.Seconds()))
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))

			ctx = observability.WithFields(ctx,
				observability.Field{Key: "rate_limit_key", Value: key},
				observability.Field{Key: "retry_after_s", Value: retryAfter},
			)
			s.logger.Warn(ctx, "rate limit exceeded")

			apierrors.RespondWithError(c, apierrors.TooManyRequests("Rate limit exceeded, please slow down"))
			c.Abort()
			return
		}

		c.Next()
	}
}
