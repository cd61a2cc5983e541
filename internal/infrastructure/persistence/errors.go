package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/maia/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps GORM errors to domain errors for resource.
// Anything unrecognised is wrapped and surfaces as an internal error.
func translateError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NewDomainError(shared.CodeNotFound, resource+" not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.WrapDomainError(shared.CodeAlreadyExists, resource+" already exists", err)
	default:
		return fmt.Errorf("%s store: %w", strings.ToLower(resource), err)
	}
}
