package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/outagetrack/outage-service/internal/auth"
	"github.com/outagetrack/outage-service/internal/domain"
	"github.com/outagetrack/outage-service/internal/repository/memory"
	apperrors "github.com/outagetrack/outage-service/pkg/util/errorutil"
)

func newAuthService(t *testing.T) (*AuthService, *memory.Store, *auth.MemorySessionStore, *auth.TokenManager) {
	t.Helper()
	store := memory.NewStore()
	sessions := auth.NewMemorySessionStore()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	svc := NewAuthService(AuthDependencies{
		UserRepo:   store.Repos().Users,
		Tokens:     tokens,
		Sessions:   sessions,
		BcryptCost: bcrypt.MinCost,
	})
	return svc, store, sessions, tokens
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Email:           "New.User@Example.com",
		FirstName:       "New",
		LastName:        "User",
		Password:        "longenough",
		PasswordConfirm: "longenough",
	}
}

func TestRegisterCreatesReporterSession(t *testing.T) {
	svc, _, sessions, tokens := newAuthService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, domain.RoleReporter, result.User.Role)
	assert.Equal(t, "new.user@example.com", result.User.Email)
	assert.True(t, result.User.IsActive)
	assert.NotEqual(t, "longenough", result.User.PasswordHash)

	claims, err := tokens.ParseToken(result.Token)
	require.NoError(t, err)
	session, err := sessions.Lookup(ctx, claims.ID)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, session.UserID)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _, _ := newAuthService(t)
	ctx := context.Background()

	input := validRegistration()
	input.PasswordConfirm = "different1"
	_, err := svc.Register(ctx, input)
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, apperrors.CodeValidation, domainErr.Code)
	assert.Equal(t, "passwords don't match", domainErr.Details["password_confirm"])

	input = validRegistration()
	input.Password, input.PasswordConfirm = "short", "short"
	_, err = svc.Register(ctx, input)
	assert.Contains(t, apperrors.ToDomainError(err).Details, "password")

	input = validRegistration()
	input.Role = domain.RoleAdmin
	_, err = svc.Register(ctx, input)
	assert.Contains(t, apperrors.ToDomainError(err).Details, "role")

	_, err = svc.Register(ctx, validRegistration())
	require.NoError(t, err)
	_, err = svc.Register(ctx, validRegistration())
	assert.Equal(t, apperrors.CodeConflict, codeOf(err))
}

func TestLoginAndLogout(t *testing.T) {
	svc, store, sessions, tokens := newAuthService(t)
	ctx := context.Background()
	registered, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, err = svc.Login(ctx, "new.user@example.com", "wrong-password")
	assert.Equal(t, apperrors.CodeUnauthorized, codeOf(err))
	_, err = svc.Login(ctx, "nobody@example.com", "longenough")
	assert.Equal(t, apperrors.CodeUnauthorized, codeOf(err))

	result, err := svc.Login(ctx, "NEW.USER@example.com", "longenough")
	require.NoError(t, err)
	claims, err := tokens.ParseToken(result.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims.ID))
	_, err = sessions.Lookup(ctx, claims.ID)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
	assert.NoError(t, svc.Logout(ctx, claims.ID))

	user := registered.User
	user.IsActive = false
	require.NoError(t, store.Repos().Users.Update(ctx, user))
	_, err = svc.Login(ctx, "new.user@example.com", "longenough")
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidation, domainErr.Code)
	assert.Equal(t, "account is disabled", domainErr.Message)
}

func TestChangePassword(t *testing.T) {
	svc, _, _, _ := newAuthService(t)
	ctx := context.Background()
	registered, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, registered.User, "not-current", "brand-new-pass", "brand-new-pass")
	assert.Contains(t, apperrors.ToDomainError(err).Details, "old_password")

	require.NoError(t, svc.ChangePassword(ctx, registered.User, "longenough", "brand-new-pass", "brand-new-pass"))
	_, err = svc.Login(ctx, "new.user@example.com", "longenough")
	assert.Equal(t, apperrors.CodeUnauthorized, codeOf(err))
	_, err = svc.Login(ctx, "new.user@example.com", "brand-new-pass")
	assert.NoError(t, err)
}
