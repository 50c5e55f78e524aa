package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/damneddesigns/storefront/internal/infrastructure/auth"
	"github.com/damneddesigns/storefront/internal/interfaces/http/dto"
)

const (
	authHeaderKey = "Authorization"
	bearerPrefix  = "Bearer "

	// Context keys set by the auth middleware
	CustomerIDKey    = "customer_id"
	CustomerEmailKey = "customer_email"
	CustomerGroupKey = "customer_group"
)

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(tokens *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, errCode := authenticate(c, tokens)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(errCode, "Authentication required", GetRequestID(c)))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches customer identity when a valid token is present
// but lets anonymous requests through. Guest checkout depends on this.
func OptionalAuth(tokens *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, _ := authenticate(c, tokens); claims != nil {
			setClaims(c, claims)
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, tokens *auth.JWTService) (*auth.Claims, string) {
	header := c.GetHeader(authHeaderKey)
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, dto.ErrCodeUnauthorized
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if tokenString == "" {
		return nil, dto.ErrCodeUnauthorized
	}

	claims, err := tokens.Validate(tokenString)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, dto.ErrCodeTokenExpired
		}
		return nil, dto.ErrCodeTokenInvalid
	}
	return claims, ""
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(CustomerIDKey, claims.CustomerID)
	c.Set(CustomerEmailKey, claims.Email)
	c.Set(CustomerGroupKey, claims.Group)
}

// GetCustomerID returns the authenticated customer's ID, or uuid.Nil
// for anonymous requests.
func GetCustomerID(c *gin.Context) uuid.UUID {
	raw, ok := c.Get(CustomerIDKey)
	if !ok {
		return uuid.Nil
	}
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// GetCustomerGroup returns the authenticated customer's pricing group,
// or an empty string for anonymous requests.
func GetCustomerGroup(c *gin.Context) string {
	return c.GetString(CustomerGroupKey)
}
