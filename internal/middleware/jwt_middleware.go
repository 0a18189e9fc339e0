package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/shopizi/internal/utils"
)

// JWTMiddleware authenticates admin requests with an HS256 bearer token.
type JWTMiddleware struct {
	secret      string
	rateLimiter Limiter
}

// NewJWTMiddleware constructs a JWTMiddleware. Failed attempts are counted
// per client IP by rateLimiter.
func NewJWTMiddleware(secret string, rateLimiter Limiter) *JWTMiddleware {
	return &JWTMiddleware{secret: secret, rateLimiter: rateLimiter}
}

func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			m.handleAuthError(c, "Authentication credentials were not provided.")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.handleAuthError(c, "Invalid authorization header.")
			return
		}

		claims, err := utils.ValidateJWT(parts[1], m.secret)
		if err != nil {
			m.handleAuthError(c, "Invalid or expired token.")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

func (m *JWTMiddleware) handleAuthError(c *gin.Context, message string) {
	// Apply rate limit for invalid auth attempts
	if m.rateLimiter != nil {
		if allowed, _ := m.rateLimiter.Allow(c.Request.Context(), c.ClientIP()); !allowed {
			utils.Error(c, http.StatusTooManyRequests, "Too many invalid authentication attempts.")
			c.Abort()
			return
		}
	}

	utils.Error(c, http.StatusUnauthorized, message)
	c.Abort()
}

// GetUserID returns the authenticated admin user, or 0.
func GetUserID(c *gin.Context) int {
	return c.GetInt("user_id")
}
