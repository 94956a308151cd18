package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/outagetrack/outage-service/internal/auth"
	"github.com/outagetrack/outage-service/internal/domain"
	"github.com/outagetrack/outage-service/internal/repository"
	apperrors "github.com/outagetrack/outage-service/pkg/util/errorutil"
)

const minPasswordLength = 8

// AuthService coordinates registration, login and logout flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	sessions   auth.SessionStore
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenManager
	Sessions   auth.SessionStore
	BcryptCost int
	Logger     *zap.Logger
}

// RegisterInput is the public sign-up payload.
type RegisterInput struct {
	Email           string
	FirstName       string
	LastName        string
	PhoneNumber     string
	Password        string
	PasswordConfirm string
	Role            domain.Role
}

// AuthResult is returned by successful register and login calls.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   deps.Tokens,
		sessions:   deps.Sessions,
		bcryptCost: deps.BcryptCost,
		logger:     logger,
	}
}

// Register creates a reporter account. Staff accounts are created by admins.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	errs := fieldErrors{}
	email := domain.NormalizeEmail(input.Email)
	if !validEmail(email) {
		errs.add("email", "enter a valid email address")
	}
	if input.Role != "" && input.Role != domain.RoleReporter {
		errs.add("role", "only reporter accounts can be registered")
	}
	checkPassword(errs, input.Password, input.PasswordConfirm)
	if err := errs.err(); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": "a user with this email already exists"})
	} else if !errors.Is(err, apperrors.ErrNoRecord) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PhoneNumber:  strings.TrimSpace(input.PhoneNumber),
		Role:         domain.RoleReporter,
		IsActive:     true,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": "a user with this email already exists"})
		}
		return nil, err
	}
	return s.issue(ctx, user)
}

// Login authenticates by email and password and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoRecord) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !user.IsActive {
		return nil, apperrors.NewValidationError("account is disabled", nil)
	}
	return s.issue(ctx, user)
}

// Logout revokes the session. Store failures are logged and ignored.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("session cleanup failed", zap.String("session_id", sessionID), zap.Error(err))
	}
	return nil
}

// ChangePassword replaces the caller's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, actor *domain.User, current, password, confirm string) error {
	if !active(actor) {
		return apperrors.NewForbidden(forbiddenMessage)
	}
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return notFoundAs(err, "user")
	}
	errs := fieldErrors{}
	if auth.ComparePassword(user.PasswordHash, current) != nil {
		errs.add("old_password", "current password is incorrect")
	}
	checkPassword(errs, password, confirm)
	if err := errs.err(); err != nil {
		return err
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}

func (s *AuthService) issue(ctx context.Context, user *domain.User) (*AuthResult, error) {
	token, session, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: session.ExpiresAt}, nil
}

func checkPassword(errs fieldErrors, password, confirm string) {
	if len(password) < minPasswordLength {
		errs.add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if password != confirm {
		errs.add("password_confirm", "passwords don't match")
	}
}
