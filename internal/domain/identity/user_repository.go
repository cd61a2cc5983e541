package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/maia/backend/internal/domain/ownership"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByNamespaceToken finds the user holding a namespace/token pair
	FindByNamespaceToken(ctx context.Context, namespace, token string) (*User, error)

	// ExistsByEmail checks if an email already exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByCPF checks if an id document already exists
	ExistsByCPF(ctx context.Context, cpf string) (bool, error)

	// Create inserts a new user
	Create(ctx context.Context, user *User) error

	// Update persists changes to an existing user
	Update(ctx context.Context, user *User) error

	// DeleteWithLedger removes the user and every ledger record stored
	// under owner in a single transaction.
	DeleteWithLedger(ctx context.Context, user *User, owner ownership.Key) error
}
