package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/damneddesigns/storefront/internal/infrastructure/ratelimit"
	"github.com/damneddesigns/storefront/internal/interfaces/http/dto"
)

// RateLimit throttles requests per client IP using the given limiter.
// The limiter fails open when Redis is unreachable, so a cache outage
// degrades to unthrottled traffic rather than a hard outage.
func RateLimit(limiter *ratelimit.SlidingWindowLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := limiter.Allow(c.Request.Context(), c.ClientIP())

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeRateLimited,
					"Too many requests, slow down", GetRequestID(c)))
			return
		}
		c.Next()
	}
}
