package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maia/backend/internal/domain/identity"
	"github.com/maia/backend/internal/domain/ownership"
	"github.com/maia/backend/internal/domain/shared"
	"github.com/maia/backend/internal/infrastructure/auth"
	"github.com/maia/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByNamespaceToken(ctx context.Context, namespace, token string) (*identity.User, error) {
	args := m.Called(ctx, namespace, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	args := m.Called(ctx, cpf)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteWithLedger(ctx context.Context, user *identity.User, owner ownership.Key) error {
	args := m.Called(ctx, user, owner)
	return args.Error(0)
}

var _ identity.UserRepository = (*MockUserRepository)(nil)

const testPassword = "s3cret-pass"

func newJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-for-testing-only-32-chars",
		Expiration: time.Hour,
		Issuer:     "maia-test",
	})
}

func newTestUser(t *testing.T, email string) *identity.User {
	t.Helper()
	user, err := identity.NewUser("Test User", email, testPassword, "+55 11 99999-0000", uuid.NewString()[:11], identity.GenderOther)
	require.NoError(t, err)
	return user
}

func notFound(resource string) error {
	return shared.NewDomainError(shared.CodeNotFound, resource+" not found")
}
