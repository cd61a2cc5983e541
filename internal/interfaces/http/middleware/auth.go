package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/maia/backend/internal/application/identity"
	"github.com/maia/backend/internal/infrastructure/logger"
	"github.com/maia/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Authentication context keys
const (
	SessionKey    = "auth_session"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// SessionResolver verifies bearer tokens
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*identity.Session, error)
}

// bearerToken extracts the token from the Authorization header
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

// Authenticate requires a valid bearer token and stores the session in the
// gin context. The request logger is enriched with the user id.
func Authenticate(resolver SessionResolver, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortWithError(c, dto.ErrCodeUnauthorized, "Missing or malformed authorization header")
			return
		}

		session, err := resolver.ResolveSession(c.Request.Context(), token)
		if err != nil {
			log.Debug("Bearer token rejected",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			abortWithError(c, dto.ErrCodeTokenInvalid, "Invalid or expired token")
			return
		}

		c.Set(SessionKey, session)
		ctx, _ := logger.WithUserID(c.Request.Context(), logger.FromContext(c.Request.Context()), session.UserID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetSession returns the session stored by Authenticate, or nil
func GetSession(c *gin.Context) *identity.Session {
	if v, ok := c.Get(SessionKey); ok {
		if session, ok := v.(*identity.Session); ok {
			return session
		}
	}
	return nil
}
