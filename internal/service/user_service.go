package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/outagetrack/outage-service/internal/auth"
	"github.com/outagetrack/outage-service/internal/domain"
	"github.com/outagetrack/outage-service/internal/policy"
	"github.com/outagetrack/outage-service/internal/repository"
	apperrors "github.com/outagetrack/outage-service/pkg/util/errorutil"
)

// UserService manages profiles and the account directory.
type UserService struct {
	store      repository.Store
	bcryptCost int
	logger     *zap.Logger
}

// ProfileInput holds the self-service profile fields.
type ProfileInput struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
}

// UserCreateInput is the admin account creation payload.
type UserCreateInput struct {
	Email       string
	FirstName   string
	LastName    string
	PhoneNumber string
	Role        domain.Role
	Password    string
	IsActive    *bool
}

// UserUpdateInput is the admin account update payload.
type UserUpdateInput struct {
	Email       *string
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	Role        *domain.Role
	IsActive    *bool
	Password    *string
}

// UserListFilter narrows directory listings.
type UserListFilter struct {
	Roles  []domain.Role
	Search string
	Limit  int
	Offset int
}

// NewUserService builds the service.
func NewUserService(store repository.Store, bcryptCost int, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{store: store, bcryptCost: bcryptCost, logger: logger}
}

// Me returns the caller's own record.
func (s *UserService) Me(ctx context.Context, actor *domain.User) (*domain.User, error) {
	if !active(actor) {
		return nil, apperrors.NewForbidden(forbiddenMessage)
	}
	user, err := s.store.Repos().Users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, notFoundAs(err, "user")
	}
	return user, nil
}

// UpdateProfile changes the caller's name and phone only.
func (s *UserService) UpdateProfile(ctx context.Context, actor *domain.User, input ProfileInput) (*domain.User, error) {
	if !active(actor) {
		return nil, apperrors.NewForbidden(forbiddenMessage)
	}
	var user *domain.User
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		user, err = repos.Users.GetByID(ctx, actor.ID)
		if err != nil {
			return notFoundAs(err, "user")
		}
		setString(&user.FirstName, input.FirstName)
		setString(&user.LastName, input.LastName)
		setString(&user.PhoneNumber, input.PhoneNumber)
		return repos.Users.Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// List returns the users inside the caller's directory scope.
func (s *UserService) List(ctx context.Context, actor *domain.User, filter UserListFilter) ([]domain.User, int, error) {
	if !active(actor) {
		return nil, 0, apperrors.NewForbidden(forbiddenMessage)
	}
	for _, r := range filter.Roles {
		if !r.Valid() {
			return nil, 0, apperrors.NewFieldError("role", "invalid role")
		}
	}
	return s.store.Repos().Users.List(ctx, repository.UserFilter{
		Scope:  policy.DirectoryScope(actor),
		Roles:  filter.Roles,
		Search: filter.Search,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// Get returns a single user; records outside the caller's scope are NotFound.
func (s *UserService) Get(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	if !active(actor) {
		return nil, apperrors.NewForbidden(forbiddenMessage)
	}
	user, err := s.store.Repos().Users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "user")
	}
	if !policy.DirectoryScope(actor).Matches(user) {
		return nil, apperrors.NewNotFound("user", nil)
	}
	return user, nil
}

// Create adds an account with any role. Admin only.
func (s *UserService) Create(ctx context.Context, actor *domain.User, input UserCreateInput) (*domain.User, error) {
	if !policy.CanManageUsers(actor) {
		return nil, apperrors.NewForbidden(forbiddenMessage)
	}
	errs := fieldErrors{}
	email := domain.NormalizeEmail(input.Email)
	if !validEmail(email) {
		errs.add("email", "enter a valid email address")
	}
	role := input.Role
	if role == "" {
		role = domain.RoleReporter
	} else if !role.Valid() {
		errs.add("role", "invalid role")
	}
	if len(input.Password) < minPasswordLength {
		errs.add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if err := errs.err(); err != nil {
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
		Role:         role,
		IsActive:     input.IsActive == nil || *input.IsActive,
		PasswordHash: hash,
	}
	if err := s.store.Repos().Users.Create(ctx, user); err != nil {
		return nil, conflictOnDuplicate(err)
	}
	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)), zap.String("actor_id", actor.ID))
	return user, nil
}

// Update changes any account attribute, including role. Admin only.
func (s *UserService) Update(ctx context.Context, actor *domain.User, id string, input UserUpdateInput) (*domain.User, error) {
	if !policy.CanManageUsers(actor) {
		return nil, apperrors.NewForbidden(forbiddenMessage)
	}
	var user *domain.User
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		user, err = repos.Users.GetByID(ctx, id)
		if err != nil {
			return notFoundAs(err, "user")
		}

		errs := fieldErrors{}
		if input.Email != nil {
			email := domain.NormalizeEmail(*input.Email)
			if !validEmail(email) {
				errs.add("email", "enter a valid email address")
			}
			user.Email = email
		}
		if input.Role != nil {
			if !input.Role.Valid() {
				errs.add("role", "invalid role")
			} else if user.Role.Staff() && !input.Role.Staff() {
				_, assigned, err := repos.Locations.List(ctx, repository.LocationFilter{
					Scope:        policy.Scope{All: true},
					AssignedToID: &user.ID,
					Limit:        1,
				})
				if err != nil {
					return fmt.Errorf("count assigned locations: %w", err)
				}
				if assigned > 0 {
					errs.add("role", fmt.Sprintf("user is assigned to %d location(s); reassign them first", assigned))
				}
			}
			user.Role = *input.Role
		}
		if input.Password != nil {
			if len(*input.Password) < minPasswordLength {
				errs.add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
			} else {
				hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
				if err != nil {
					return fmt.Errorf("hash password: %w", err)
				}
				user.PasswordHash = hash
			}
		}
		if err := errs.err(); err != nil {
			return err
		}
		setString(&user.FirstName, input.FirstName)
		setString(&user.LastName, input.LastName)
		setString(&user.PhoneNumber, input.PhoneNumber)
		if input.IsActive != nil {
			user.IsActive = *input.IsActive
		}
		return conflictOnDuplicate(repos.Users.Update(ctx, user))
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user updated", zap.String("user_id", user.ID), zap.String("actor_id", actor.ID))
	return user, nil
}

// Delete removes an account. Locations and audit entries keep their rows with
// the reference cleared.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if !policy.CanManageUsers(actor) {
		return apperrors.NewForbidden(forbiddenMessage)
	}
	if actor.ID == id {
		return apperrors.NewValidationError("you cannot delete your own account", nil)
	}
	if err := s.store.Repos().Users.Delete(ctx, id); err != nil {
		return notFoundAs(err, "user")
	}
	s.logger.Info("user deleted", zap.String("user_id", id), zap.String("actor_id", actor.ID))
	return nil
}

// EnsureAdmin seeds an administrator when no account uses the email yet.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}
	repos := s.store.Repos()
	if _, err := repos.Users.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, apperrors.ErrNoRecord) {
		return false, err
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	admin := &domain.User{Email: email, Role: domain.RoleAdmin, IsActive: true, PasswordHash: hash}
	if err := repos.Users.Create(ctx, admin); err != nil {
		return false, err
	}
	s.logger.Info("bootstrap admin created", zap.String("user_id", admin.ID))
	return true, nil
}

func conflictOnDuplicate(err error) error {
	if errors.Is(err, apperrors.ErrDuplicate) {
		return apperrors.NewConflict("email already registered", map[string]any{"email": "a user with this email already exists"})
	}
	return err
}
