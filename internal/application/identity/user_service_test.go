package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maia/backend/internal/domain/ownership"
	"github.com/maia/backend/internal/domain/shared"
	"github.com/maia/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUserService(repo *MockUserRepository, mode ownership.Mode) (*UserService, *auth.InMemoryTokenBlacklist) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	return NewUserService(repo, blacklist, time.Hour, mode, zap.NewNop()), blacklist
}

func strPtr(s string) *string { return &s }

func TestUserService_Get(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t, "owner@example.com")

	t.Run("own profile is allowed", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newUserService(repo, ownership.ModeIdentity)
		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		dto, err := svc.Get(ctx, user.OwnerKey(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, dto.Email)
	})

	t.Run("another user's profile is forbidden", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newUserService(repo, ownership.ModeIdentity)
		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		_, err := svc.Get(ctx, ownership.Identity(uuid.New()), user.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("missing profile is not found", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newUserService(repo, ownership.ModeIdentity)
		missing := uuid.New()
		repo.On("FindByID", mock.Anything, missing).Return(nil, notFound("User"))

		_, err := svc.Get(ctx, user.OwnerKey(), missing)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("applies partial update", func(t *testing.T) {
		user := newTestUser(t, "update@example.com")
		user.MarkEmailVerified()
		repo := new(MockUserRepository)
		svc, _ := newUserService(repo, ownership.ModeIdentity)

		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		repo.On("ExistsByEmail", mock.Anything, "new@example.com").Return(false, nil)
		repo.On("Update", mock.Anything, user).Return(nil)

		dto, err := svc.Update(ctx, user.OwnerKey(), user.ID, UpdateUserInput{
			Name:   strPtr("joão   PEREIRA"),
			Email:  strPtr("New@Example.com"),
			Status: strPtr("late"),
		})
		require.NoError(t, err)

		assert.Equal(t, "João Pereira", dto.Name)
		assert.Equal(t, "new@example.com", dto.Email)
		assert.False(t, dto.EmailVerified, "changing the email clears verification")
		assert.Equal(t, "late", dto.Status)
		repo.AssertExpectations(t)
	})

	t.Run("email taken by someone else", func(t *testing.T) {
		user := newTestUser(t, "update@example.com")
		repo := new(MockUserRepository)
		svc, _ := newUserService(repo, ownership.ModeIdentity)

		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		repo.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)

		_, err := svc.Update(ctx, user.OwnerKey(), user.ID, UpdateUserInput{Email: strPtr("taken@example.com")})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("unchanged email skips the uniqueness check", func(t *testing.T) {
		user := newTestUser(t, "same@example.com")
		repo := new(MockUserRepository)
		svc, _ := newUserService(repo, ownership.ModeIdentity)

		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		repo.On("Update", mock.Anything, user).Return(nil)

		_, err := svc.Update(ctx, user.OwnerKey(), user.ID, UpdateUserInput{Email: strPtr("SAME@example.com")})
		require.NoError(t, err)
		repo.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
	})

	t.Run("invalid gender", func(t *testing.T) {
		user := newTestUser(t, "gender@example.com")
		repo := new(MockUserRepository)
		svc, _ := newUserService(repo, ownership.ModeIdentity)
		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		_, err := svc.Update(ctx, user.OwnerKey(), user.ID, UpdateUserInput{Gender: strPtr("robot")})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("another user cannot update", func(t *testing.T) {
		user := newTestUser(t, "victim@example.com")
		repo := new(MockUserRepository)
		svc, _ := newUserService(repo, ownership.ModeIdentity)
		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		_, err := svc.Update(ctx, ownership.Identity(uuid.New()), user.ID, UpdateUserInput{Name: strPtr("Mallory")})
		assert.ErrorIs(t, err, shared.ErrForbidden)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("identity mode cascades under the identity key", func(t *testing.T) {
		user := newTestUser(t, "delete@example.com")
		repo := new(MockUserRepository)
		svc, blacklist := newUserService(repo, ownership.ModeIdentity)

		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		repo.On("DeleteWithLedger", mock.Anything, user, ownership.Identity(user.ID)).Return(nil)

		require.NoError(t, svc.Delete(ctx, user.OwnerKey(), user.ID))
		repo.AssertExpectations(t)

		revoked, err := blacklist.IsUserRevoked(ctx, user.ID.String(), time.Now().Add(-time.Minute))
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("namespace mode cascades under the namespace key", func(t *testing.T) {
		user := newTestUser(t, "ns@example.com")
		require.NoError(t, user.SetTenancyMarkers("acme", "tok"))
		repo := new(MockUserRepository)
		svc, _ := newUserService(repo, ownership.ModeNamespaceToken)

		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		repo.On("DeleteWithLedger", mock.Anything, user, ownership.NamespaceToken("acme", "tok")).Return(nil)

		require.NoError(t, svc.Delete(ctx, user.OwnerKey(), user.ID))
		repo.AssertExpectations(t)
	})

	t.Run("another user cannot delete", func(t *testing.T) {
		user := newTestUser(t, "keep@example.com")
		repo := new(MockUserRepository)
		svc, blacklist := newUserService(repo, ownership.ModeIdentity)
		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		err := svc.Delete(ctx, ownership.Identity(uuid.New()), user.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
		repo.AssertNotCalled(t, "DeleteWithLedger", mock.Anything, mock.Anything, mock.Anything)

		revoked, _ := blacklist.IsUserRevoked(ctx, user.ID.String(), time.Now())
		assert.False(t, revoked)
	})

	t.Run("second delete is not found", func(t *testing.T) {
		user := newTestUser(t, "twice@example.com")
		repo := new(MockUserRepository)
		svc, _ := newUserService(repo, ownership.ModeIdentity)
		repo.On("FindByID", mock.Anything, user.ID).Return(nil, notFound("User"))

		assert.ErrorIs(t, svc.Delete(ctx, user.OwnerKey(), user.ID), shared.ErrNotFound)
	})
}

func TestUserService_SearchByNamespace(t *testing.T) {
	ctx := context.Background()

	t.Run("identity mode rejects the lookup", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newUserService(repo, ownership.ModeIdentity)

		_, err := svc.SearchByNamespace(ctx, "acme", "tok")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		repo.AssertNotCalled(t, "FindByNamespaceToken", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("namespace mode finds the holder", func(t *testing.T) {
		user := newTestUser(t, "holder@example.com")
		require.NoError(t, user.SetTenancyMarkers("acme", "tok"))
		repo := new(MockUserRepository)
		svc, _ := newUserService(repo, ownership.ModeNamespaceToken)
		repo.On("FindByNamespaceToken", mock.Anything, "acme", "tok").Return(user, nil)

		dto, err := svc.SearchByNamespace(ctx, "acme", "tok")
		require.NoError(t, err)
		assert.Equal(t, user.ID, dto.ID)
		assert.Equal(t, "acme", dto.Namespace)
	})

	t.Run("both markers required", func(t *testing.T) {
		svc, _ := newUserService(new(MockUserRepository), ownership.ModeNamespaceToken)

		_, err := svc.SearchByNamespace(ctx, "acme", "")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"maria da silva":     "Maria Da Silva",
		"  JOÃO   pereira  ": "João Pereira",
		"":                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeName(in), "input %q", in)
	}
}
