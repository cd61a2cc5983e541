package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/maia/backend/internal/domain/identity"
	"github.com/maia/backend/internal/domain/ownership"
	"github.com/maia/backend/internal/domain/shared"
	"github.com/maia/backend/internal/infrastructure/auth"
	"github.com/maia/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const userResource = "User"

// UserService manages a caller's own profile. Every operation runs the
// ownership guard against the user's identity key.
type UserService struct {
	userRepo   identity.UserRepository
	blacklist  auth.TokenBlacklist
	sessionTTL time.Duration
	mode       ownership.Mode
	metrics    *telemetry.DomainMetrics
	logger     *zap.Logger
}

// NewUserService creates a new user service. sessionTTL bounds how long a
// removed user's tokens stay on the blacklist.
func NewUserService(
	userRepo identity.UserRepository,
	blacklist auth.TokenBlacklist,
	sessionTTL time.Duration,
	mode ownership.Mode,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		blacklist:  blacklist,
		sessionTTL: sessionTTL,
		mode:       mode,
		logger:     logger,
	}
}

// WithMetrics attaches domain metrics to the service
func (s *UserService) WithMetrics(metrics *telemetry.DomainMetrics) *UserService {
	s.metrics = metrics
	return s
}

func (s *UserService) load(ctx context.Context, caller ownership.Key, id uuid.UUID) (*identity.User, error) {
	user, err := ownership.Load(ctx, caller, id, userResource, s.userRepo.FindByID)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && (domainErr.Code == shared.CodeForbidden || domainErr.Code == shared.CodeNotFound) {
			s.metrics.RecordAccessDenied(ctx, userResource, domainErr.Code)
		}
		return nil, err
	}
	return user, nil
}

// Get returns the caller's own profile
func (s *UserService) Get(ctx context.Context, caller ownership.Key, id uuid.UUID) (*UserDTO, error) {
	user, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	dto := ToUserDTO(user)
	return &dto, nil
}

// Update applies a partial profile update
func (s *UserService) Update(ctx context.Context, caller ownership.Key, id uuid.UUID, input UpdateUserInput) (*UserDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "user", "update")
	defer span.End()

	user, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := user.Rename(normalizeName(*input.Name)); err != nil {
			return nil, err
		}
	}
	if input.Email != nil {
		previous := user.Email
		if err := user.SetEmail(*input.Email); err != nil {
			return nil, err
		}
		if user.Email != previous {
			exists, err := s.userRepo.ExistsByEmail(ctx, user.Email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Email already registered")
			}
		}
	}
	if input.CPF != nil {
		previous := user.CPF
		if err := user.SetCPF(*input.CPF); err != nil {
			return nil, err
		}
		if user.CPF != previous {
			exists, err := s.userRepo.ExistsByCPF(ctx, user.CPF)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, shared.NewDomainError(shared.CodeAlreadyExists, "CPF already registered")
			}
		}
	}
	if input.Phone != nil {
		if err := user.SetPhone(*input.Phone); err != nil {
			return nil, err
		}
	}
	if input.Gender != nil {
		if err := user.SetGender(identity.Gender(*input.Gender)); err != nil {
			return nil, err
		}
	}
	if input.Status != nil {
		if err := user.SetStatus(identity.UserStatus(*input.Status)); err != nil {
			return nil, err
		}
	}
	if input.EmailVerified != nil && *input.EmailVerified {
		user.MarkEmailVerified()
	}
	if input.Password != nil {
		if err := user.SetPassword(*input.Password); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("User updated", zap.String("user_id", user.ID.String()))

	dto := ToUserDTO(user)
	return &dto, nil
}

// Delete removes the caller's account together with every ledger record
// stored under it, then revokes all of the user's sessions.
func (s *UserService) Delete(ctx context.Context, caller ownership.Key, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "user", "delete")
	defer span.End()

	user, err := s.load(ctx, caller, id)
	if err != nil {
		return err
	}

	ledgerOwner, ok := user.LedgerOwnerKey(s.mode)
	if !ok {
		ledgerOwner = user.OwnerKey()
	}

	if err := s.userRepo.DeleteWithLedger(ctx, user, ledgerOwner); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if s.blacklist != nil {
		if err := s.blacklist.RevokeUser(ctx, user.ID.String(), s.sessionTTL); err != nil {
			// The account is gone; a surviving token can no longer reach any data.
			s.logger.Error("Failed to revoke sessions of deleted user",
				zap.String("user_id", user.ID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("User deleted with ledger",
		zap.String("user_id", user.ID.String()),
		zap.String("ledger_owner", ledgerOwner.String()))
	return nil
}

// SearchByNamespace finds the user holding a namespace/token pair. The pair
// itself is the credential, so it is only available in namespace_token mode.
func (s *UserService) SearchByNamespace(ctx context.Context, namespace, token string) (*UserDTO, error) {
	if s.mode != ownership.ModeNamespaceToken {
		return nil, shared.NewDomainError(shared.CodeInvalidInput,
			"user_ns and token_talkbi are not accepted by this deployment")
	}
	if namespace == "" || token == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "user_ns and token_talkbi are required")
	}

	user, err := s.userRepo.FindByNamespaceToken(ctx, namespace, token)
	if err != nil {
		return nil, err
	}
	dto := ToUserDTO(user)
	return &dto, nil
}
