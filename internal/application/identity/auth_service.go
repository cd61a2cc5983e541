package identity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/maia/backend/internal/domain/identity"
	"github.com/maia/backend/internal/domain/ownership"
	"github.com/maia/backend/internal/domain/shared"
	"github.com/maia/backend/internal/infrastructure/auth"
	"github.com/maia/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// errInvalidCredentials is returned for both unknown emails and wrong
// passwords so that callers cannot tell them apart.
var errInvalidCredentials = shared.NewDomainError(shared.CodeUnauthorized, "Invalid email or password")

// errInvalidSession is returned for every token that does not resolve
var errInvalidSession = shared.NewDomainError(shared.CodeUnauthorized, "Invalid or expired token")

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// equalizeTiming burns one bcrypt comparison so that unknown emails cost as
// much as wrong passwords.
func equalizeTiming(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("maia-timing-equalizer"), bcrypt.DefaultCost+2)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// AuthService handles registration and sessions
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	mode       ownership.Mode
	metrics    *telemetry.DomainMetrics
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	mode ownership.Mode,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		mode:       mode,
		logger:     logger,
	}
}

// WithMetrics attaches domain metrics to the service
func (s *AuthService) WithMetrics(metrics *telemetry.DomainMetrics) *AuthService {
	s.metrics = metrics
	return s
}

// Register creates a new account
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (_ *UserDTO, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "auth", "register")
	defer span.End()
	defer s.observe(ctx, "register", time.Now(), &err)

	user, err := identity.NewUser(normalizeName(input.Name), input.Email, input.Password, input.Phone, input.CPF, identity.Gender(input.Gender))
	if err != nil {
		return nil, err
	}
	if err := s.applyTenancyMarkers(ctx, user, input.Namespace, input.Token); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Email already registered")
	}

	exists, err = s.userRepo.ExistsByCPF(ctx, user.CPF)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "CPF already registered")
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("mode", string(s.mode)))

	dto := ToUserDTO(user)
	return &dto, nil
}

// applyTenancyMarkers enforces the marker rules of the deployment mode
func (s *AuthService) applyTenancyMarkers(ctx context.Context, user *identity.User, namespace, token string) error {
	switch s.mode {
	case ownership.ModeNamespaceToken:
		if err := user.SetTenancyMarkers(namespace, token); err != nil {
			return err
		}
		_, err := s.userRepo.FindByNamespaceToken(ctx, user.Namespace, user.Token)
		switch {
		case err == nil:
			return shared.NewDomainError(shared.CodeAlreadyExists, "user_ns and token_talkbi are already in use")
		case errors.Is(err, shared.ErrNotFound):
			return nil
		default:
			return err
		}
	default:
		if namespace != "" || token != "" {
			return shared.NewDomainError(shared.CodeInvalidInput,
				"user_ns and token_talkbi are not accepted by this deployment")
		}
		return nil
	}
}

// Login verifies credentials and issues a session token
func (s *AuthService) Login(ctx context.Context, input LoginInput) (_ *LoginResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "auth", "login")
	defer span.End()
	defer s.observe(ctx, "login", time.Now(), &err)

	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			equalizeTiming(input.Password)
			s.logger.Warn("Login attempt for unknown email")
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, errInvalidCredentials
	}

	token, err := s.jwtService.Generate(user.ID, user.Email)
	if err != nil {
		s.logger.Error("Failed to generate session token", zap.Error(err))
		return nil, err
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))

	return &LoginResult{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
		ExpiresAt:   token.ExpiresAt,
		User:        ToUserDTO(user),
	}, nil
}

// ResolveSession verifies a bearer token and returns the identity it
// carries. Every failure, including revocation, is Unauthorized.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (_ *Session, err error) {
	defer s.observe(ctx, "resolve_session", time.Now(), &err)

	claims, err := s.jwtService.Validate(token)
	if err != nil {
		s.logger.Debug("Session token rejected", zap.Error(err))
		return nil, errInvalidSession
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, errInvalidSession
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.logger.Error("Token blacklist lookup failed", zap.Error(err))
			return nil, errInvalidSession
		}
		if revoked {
			return nil, errInvalidSession
		}

		revoked, err = s.blacklist.IsUserRevoked(ctx, userID.String(), claims.IssuedAt.Time)
		if err != nil {
			s.logger.Error("User revocation lookup failed", zap.Error(err))
			return nil, errInvalidSession
		}
		if revoked {
			return nil, errInvalidSession
		}
	}

	return &Session{
		Owner:     ownership.Identity(userID),
		UserID:    userID,
		Email:     claims.Email,
		TokenID:   claims.ID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Logout revokes the session's token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, session *Session) error {
	if session == nil || session.TokenID == "" {
		return errInvalidSession
	}
	if s.blacklist == nil {
		return nil
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, session.TokenID, ttl); err != nil {
		s.logger.Error("Failed to revoke token", zap.Error(err))
		return err
	}

	s.logger.Info("User logged out", zap.String("user_id", session.UserID.String()))
	return nil
}

func (s *AuthService) observe(ctx context.Context, operation string, start time.Time, err *error) {
	outcome := telemetry.OutcomeSuccess
	if *err != nil {
		outcome = telemetry.OutcomeError
		var domainErr *shared.DomainError
		if errors.As(*err, &domainErr) {
			outcome = telemetry.OutcomeRejected
		}
	}
	s.metrics.RecordAuth(ctx, operation, outcome, time.Since(start))
}
