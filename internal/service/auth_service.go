package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bookstore-service/internal/auth"
	"github.com/spec-kit/bookstore-service/internal/config"
	"github.com/spec-kit/bookstore-service/internal/domain"
	"github.com/spec-kit/bookstore-service/internal/events"
	"github.com/spec-kit/bookstore-service/internal/repository"
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

// AuthResult bundles the public user view with a freshly minted token.
type AuthResult struct {
	User      domain.UserView
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates signup, signin, and verification. It is the only
// component that touches plaintext passwords and the sole issuer of tokens.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, dispatcher events.Dispatcher) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL()),
		dispatcher: dispatcher,
		bcryptCost: cfg.BcryptCost,
	}
}

// SignUp registers a new account. The user, profile, and default reader role
// are written in one transaction; a failure leaves nothing behind. A
// concurrent signup losing the insert race surfaces as DUPLICATE_EMAIL even
// though it passed the pre-check.
func (s *AuthService) SignUp(ctx context.Context, email, password, fullName string) (*AuthResult, error) {
	if email == "" || password == "" || fullName == "" {
		return nil, apperrors.NewValidationError("email, password, and full name are required", nil)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperrors.NewDuplicateEmail()
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
	}
	if err := s.users.CreateAccount(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewDuplicateEmail()
		}
		return nil, apperrors.MapError(err)
	}

	token, exp, err := s.tokenMgr.Mint(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.EventUserRegistered, events.UserRegisteredPayload{
		UserID: user.ID,
		Email:  user.Email,
	})

	return &AuthResult{User: user.View(), Token: token, ExpiresAt: exp}, nil
}

// SignIn authenticates an account. An unknown email and a wrong password
// produce the same INVALID_CREDENTIALS error.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, apperrors.MapError(err)
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewInvalidCredentials()
	}

	token, exp, err := s.tokenMgr.Mint(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: user.View(), Token: token, ExpiresAt: exp}, nil
}

// Verify validates a token and returns the current user view. The role is
// re-read from the store on every call rather than trusted from the token,
// defaulting to reader when no role row exists.
func (s *AuthService) Verify(ctx context.Context, token string) (*domain.UserView, error) {
	session, err := s.tokenMgr.Verify(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}

	user, role, err := s.users.FindWithRole(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, apperrors.MapError(err)
	}
	if !role.Valid() {
		role = domain.DefaultRole
	}

	view := user.View()
	view.Role = role
	return &view, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
