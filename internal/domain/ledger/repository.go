package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/maia/backend/internal/domain/ownership"
	"github.com/shopspring/decimal"
)

// Filter narrows an owner-scoped listing. Set fields are ANDed together.
type Filter struct {
	Category   *string
	PaidStatus *string
	// DueFrom and DueTo are inclusive YYYY-MM-DD bounds
	DueFrom *string
	DueTo   *string
	Year    *string
	Month   *string
}

// Repository stores records of a single kind.
//
// Every method except FindByID is scoped to an owner key. FindByID exists
// for the ownership guard and must not be used to serve data without it.
type Repository interface {
	// Kind returns the record kind this repository stores
	Kind() Kind

	// Create persists a new record
	Create(ctx context.Context, record *Record) error

	// FindByID loads a record regardless of owner
	FindByID(ctx context.Context, id uuid.UUID) (*Record, error)

	// List returns owner records matching filter, ordered by due date
	List(ctx context.Context, owner ownership.Key, filter Filter) ([]*Record, error)

	// Update persists every field of an existing record
	Update(ctx context.Context, record *Record) error

	// Delete removes a record owned by owner
	Delete(ctx context.Context, owner ownership.Key, id uuid.UUID) error

	// SumAmount totals owner amounts, optionally for one paid status.
	// It returns zero when nothing matches.
	SumAmount(ctx context.Context, owner ownership.Key, paidStatus *string) (decimal.Decimal, error)
}
