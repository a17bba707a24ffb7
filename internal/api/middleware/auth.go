package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/leadrelay/leadrelay/internal/auth"
	"github.com/leadrelay/leadrelay/internal/domain"
	"github.com/leadrelay/leadrelay/internal/logger"
)

// UserLoader resolves an authenticated username to a user record.
type UserLoader interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

const userContextKey = "current_user"

// RequireAuth validates the Bearer token on incoming requests and loads the
// corresponding user into the Gin context. Requests without a valid token
// are rejected with 401.
func RequireAuth(issuer *auth.TokenIssuer, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or malformed Authorization header"})
			return
		}

		username, err := issuer.Verify(token)
		if err != nil {
			logger.CtxWarn(c.Request.Context(), "Token verification failed: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		user, err := users.GetByUsername(c.Request.Context(), username)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user is deactivated"})
			return
		}

		// Propagate user ID to downstream logs
		ctx := logger.SetUserID(c.Request.Context(), user.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(userContextKey, user)

		c.Next()
	}
}

// CurrentUser returns the authenticated user stored by RequireAuth.
// It must only be called on routes behind the auth middleware.
func CurrentUser(c *gin.Context) *domain.User {
	v, _ := c.Get(userContextKey)
	user, _ := v.(*domain.User)
	return user
}
