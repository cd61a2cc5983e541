package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/maia/backend/internal/domain/identity"
	"github.com/maia/backend/internal/domain/ownership"
	"github.com/maia/backend/internal/domain/shared"
	"github.com/maia/backend/internal/infrastructure/persistence/models"
	"github.com/maia/backend/internal/infrastructure/persistence/owner"
	"gorm.io/gorm"
)

const userResource = "User"

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, userResource)
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a user by email, ignoring case
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, shared.ErrNotFound
	}
	var model models.UserModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&model).Error; err != nil {
		return nil, translateError(err, userResource)
	}
	return model.ToDomain(), nil
}

// FindByNamespaceToken finds the user holding a namespace/token pair
func (r *GormUserRepository) FindByNamespaceToken(ctx context.Context, namespace, token string) (*identity.User, error) {
	if namespace == "" || token == "" {
		return nil, shared.ErrNotFound
	}
	var model models.UserModel
	if err := r.db.WithContext(ctx).
		Where("user_ns = ? AND token_talkbi = ?", namespace, token).
		First(&model).Error; err != nil {
		return nil, translateError(err, userResource)
	}
	return model.ToDomain(), nil
}

// ExistsByEmail checks if an email already exists
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error; err != nil {
		return false, translateError(err, userResource)
	}
	return count > 0, nil
}

// ExistsByCPF checks if an id document already exists
func (r *GormUserRepository) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("cpf = ?", strings.TrimSpace(cpf)).
		Count(&count).Error; err != nil {
		return false, translateError(err, userResource)
	}
	return count > 0, nil
}

// Create inserts a new user
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err, userResource)
	}
	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt
	return nil
}

// Update persists every field of an existing user
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	result := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("id = ?", user.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return translateError(result.Error, userResource)
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeNotFound, "User not found")
	}
	return nil
}

// DeleteWithLedger removes the user and every payable and receivable stored
// under ledgerOwner in one transaction.
func (r *GormUserRepository) DeleteWithLedger(ctx context.Context, user *identity.User, ledgerOwner ownership.Key) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{models.PayablesTable, models.ReceivablesTable} {
			if err := tx.Table(table).
				Scopes(owner.Scope(ledgerOwner)).
				Delete(&models.LedgerRecordModel{}).Error; err != nil {
				return translateError(err, table)
			}
		}

		result := tx.Delete(&models.UserModel{}, "id = ?", user.ID)
		if result.Error != nil {
			return translateError(result.Error, userResource)
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError(shared.CodeNotFound, "User not found")
		}
		return nil
	})
}
