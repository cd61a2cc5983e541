package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/maia/backend/internal/application/identity"
	"github.com/maia/backend/internal/domain/ownership"
	"github.com/maia/backend/internal/domain/shared"
	"github.com/maia/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockSessionResolver struct {
	mock.Mock
}

func (m *mockSessionResolver) ResolveSession(ctx context.Context, token string) (*identity.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Session), args.Error(1)
}

func TestAuthenticate(t *testing.T) {
	userID := uuid.New()
	session := &identity.Session{Owner: ownership.Identity(userID), UserID: userID, TokenID: "jti-1"}

	resolver := &mockSessionResolver{}
	resolver.On("ResolveSession", mock.Anything, "good-token").Return(session, nil)
	resolver.On("ResolveSession", mock.Anything, "bad-token").
		Return(nil, shared.NewDomainError(shared.CodeUnauthorized, "Invalid or expired token"))

	router := gin.New()
	router.Use(Authenticate(resolver, zap.NewNop()))
	router.GET("/me", func(c *gin.Context) {
		s := GetSession(c)
		c.JSON(http.StatusOK, gin.H{
			"user_id": s.UserID.String(),
			"logged":  logger.GetUserID(c.Request.Context()),
		})
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "Bearer good-token", http.StatusOK, userID.String()},
		{"missing header", "", http.StatusUnauthorized, "ERR_UNAUTHORIZED"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "ERR_UNAUTHORIZED"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "ERR_UNAUTHORIZED"},
		{"rejected token", "Bearer bad-token", http.StatusUnauthorized, "ERR_TOKEN_INVALID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestGetSession_Absent(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetSession(c))

	c.Set(SessionKey, "not a session")
	assert.Nil(t, GetSession(c))
}
