package ownership

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/maia/backend/internal/domain/shared"
)

// Decision is the outcome of an ownership check
type Decision int

const (
	Allowed Decision = iota
	Forbidden
	NotFound
)

// String returns the decision name
func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Err converts the decision into a domain error naming the resource.
// Allowed yields nil.
func (d Decision) Err(resource string) error {
	switch d {
	case Allowed:
		return nil
	case NotFound:
		return shared.NewDomainError(shared.CodeNotFound, resource+" not found")
	default:
		return shared.NewDomainError(shared.CodeForbidden, "You do not have access to this "+resource)
	}
}

// Authorize decides whether caller may act on a record owned by owner.
// exists is false when no record with the requested id was found.
func Authorize(caller Key, owner Key, exists bool) Decision {
	if !exists {
		return NotFound
	}
	if caller.IsZero() || !owner.Equal(caller) {
		return Forbidden
	}
	return Allowed
}

// Finder loads a record by id regardless of owner
type Finder[T Owned] func(ctx context.Context, id uuid.UUID) (T, error)

// Load fetches the record with find and runs Authorize against it. The record
// is only returned when the decision is Allowed. find must report a missing
// record with shared.ErrNotFound.
func Load[T Owned](ctx context.Context, caller Key, id uuid.UUID, resource string, find Finder[T]) (T, error) {
	var zero T
	record, err := find(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return zero, Authorize(caller, Key{}, false).Err(resource)
		}
		return zero, err
	}
	if err := Authorize(caller, record.OwnerKey(), true).Err(resource); err != nil {
		return zero, err
	}
	return record, nil
}
