package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/config"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/observability"
	"github.com/spec-kit/commerce-service/internal/repository"
)

// Sentinel errors let callers and logs distinguish failure modes. The HTTP
// layer intentionally collapses ErrAccountNotFound and ErrInvalidCredentials
// into one response so login cannot be used to enumerate accounts.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRoleNotAllowed     = errors.New("role not allowed")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// LoginLimiter guards the login path against repeated failures.
// *auth.LoginThrottle is the production implementation.
type LoginLimiter interface {
	Blocked(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// AuthService coordinates registration, login and password changes.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	throttle   LoginLimiter
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// AuthDependencies encapsulates collaborator requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Throttle   LoginLimiter
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	throttle := deps.Throttle
	if throttle == nil {
		throttle = auth.NewLoginThrottle(nil, 0, 0)
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		throttle:   throttle,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new account. The role defaults to customer and may not
// be elevated to admin through this path; admin accounts are created via the
// admin-only user management endpoint.
func (s *AuthService) Register(ctx context.Context, email, displayName, password string, role domain.Role) (*domain.User, error) {
	if role == "" {
		role = domain.RoleCustomer
	}
	if role == domain.RoleAdmin {
		return nil, ErrRoleNotAllowed
	}

	email = domain.NormalizeEmail(email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		observability.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		return nil, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			observability.RegistrationsTotal.WithLabelValues("duplicate").Inc()
			return nil, ErrEmailTaken
		}
		observability.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	observability.RegistrationsTotal.WithLabelValues("ok").Inc()
	s.publish(ctx, events.EventUserRegistered, events.Actor{}, events.UserRegisteredPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	return user, nil
}

// Login authenticates an account and issues a fresh token scoped to the
// stored identity. Two concurrent logins for the same account each get a
// valid, distinct token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	email = domain.NormalizeEmail(email)

	blocked, err := s.throttle.Blocked(ctx, email)
	if err != nil {
		s.logger.Warn("login throttle unavailable", zap.Error(err))
	} else if blocked {
		observability.LoginsTotal.WithLabelValues("throttled").Inc()
		return nil, "", time.Time{}, ErrTooManyAttempts
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			observability.LoginsTotal.WithLabelValues("not_found").Inc()
			_ = s.throttle.RecordFailure(ctx, email)
			return nil, "", time.Time{}, ErrAccountNotFound
		}
		observability.LoginsTotal.WithLabelValues("error").Inc()
		return nil, "", time.Time{}, err
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrCorruptDigest) {
			observability.LoginsTotal.WithLabelValues("error").Inc()
			return nil, "", time.Time{}, err
		}
		observability.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		_ = s.throttle.RecordFailure(ctx, email)
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.DisplayName, user.Role)
	if err != nil {
		observability.LoginsTotal.WithLabelValues("error").Inc()
		return nil, "", time.Time{}, err
	}

	observability.LoginsTotal.WithLabelValues("ok").Inc()
	_ = s.throttle.Reset(ctx, email)
	return user, token, exp, nil
}

// ChangePassword verifies the current password before storing a new digest.
// Previously issued tokens stay valid until expiry; the service keeps no
// token table to revoke from.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		return err
	}

	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		if errors.Is(err, auth.ErrCorruptDigest) {
			return err
		}
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.publish(ctx, events.EventUserPasswordChanged,
		events.Actor{UserID: user.ID, Role: user.Role},
		events.UserPasswordChangedPayload{UserID: user.ID})
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, actor events.Actor, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
