package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/maia/backend/internal/domain/ownership"
	"github.com/maia/backend/internal/domain/shared"
	"github.com/maia/backend/internal/infrastructure/logger"
	"github.com/maia/backend/internal/interfaces/http/dto"
)

// Owner key context key and the namespace query parameters
const (
	OwnerKeyKey    = "owner_key"
	NamespaceParam = "user_ns"
	TokenParam     = "token_talkbi"
)

// OwnerKey resolves the effective owner of the request and stores it in the
// gin context. In identity mode it must run after Authenticate.
func OwnerKey(resolver *ownership.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		creds := ownership.Credentials{
			Namespace: c.Query(NamespaceParam),
			Token:     c.Query(TokenParam),
		}
		if session := GetSession(c); session != nil {
			creds.Session = &session.Owner
		}

		key, err := resolver.Resolve(creds)
		if err != nil {
			code := dto.ErrCodeInternal
			message := "An unexpected error occurred"
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) {
				code = dto.NormalizeErrorCode(domainErr.Code)
				message = domainErr.Message
			}
			abortWithError(c, code, message)
			return
		}

		c.Set(OwnerKeyKey, key)
		ctx, _ := logger.WithOwner(c.Request.Context(), logger.FromContext(c.Request.Context()), key.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetOwnerKey returns the key stored by OwnerKey
func GetOwnerKey(c *gin.Context) (ownership.Key, bool) {
	if v, ok := c.Get(OwnerKeyKey); ok {
		if key, ok := v.(ownership.Key); ok {
			return key, true
		}
	}
	return ownership.Key{}, false
}
