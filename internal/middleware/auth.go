package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/utils"
)

const sessionKey = "session"

// AccessVerifier checks an access token and returns its claims.
type AccessVerifier interface {
	VerifyAccess(raw string) (*utils.Claims, error)
}

// AuthMiddleware creates a middleware for JWT authentication.
// It only checks the token signature and expiry; accounts are not re-read per request.
func AuthMiddleware(tokens AccessVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Abort(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		tokenString, ok := bearerToken(authHeader)
		if !ok {
			utils.Abort(c, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := tokens.VerifyAccess(tokenString)
		if err != nil {
			utils.Abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(sessionKey, claims.Session())
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// RequireRoles creates a middleware for role-based authorization.
// It should be used *after* AuthMiddleware.
func RequireRoles(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFromContext(c)
		if !ok {
			utils.Abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !session.HasRole(allowedRoles...) {
			utils.Abort(c, http.StatusForbidden, "You do not have permission to access this resource")
			return
		}
		c.Next()
	}
}

// SessionFromContext returns the identity attached by AuthMiddleware.
func SessionFromContext(c *gin.Context) (models.Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return models.Session{}, false
	}
	session, ok := v.(models.Session)
	return session, ok
}
