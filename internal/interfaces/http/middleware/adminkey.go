package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/damneddesigns/storefront/internal/interfaces/http/dto"
)

// AdminKeyHeader carries the shared secret for admin endpoints.
const AdminKeyHeader = "X-Admin-Key"

// RequireAdminKey guards admin routes with a shared API key. An empty
// configured key disables the routes entirely rather than leaving them
// open.
func RequireAdminKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden,
					"Admin API is disabled", GetRequestID(c)))
			return
		}
		supplied := c.GetHeader(AdminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized,
					"Invalid admin key", GetRequestID(c)))
			return
		}
		c.Next()
	}
}
