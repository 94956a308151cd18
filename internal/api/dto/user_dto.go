package dto

import (
	"time"

	"github.com/outagetrack/outage-service/internal/domain"
)

// UserResponse is the public view of an account. Password hashes never leave the service.
type UserResponse struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	FullName    string      `json:"full_name"`
	Role        domain.Role `json:"role"`
	RoleDisplay string      `json:"role_display"`
	PhoneNumber string      `json:"phone_number"`
	IsActive    bool        `json:"is_active"`
	DateJoined  time.Time   `json:"date_joined"`
}

// NewUserResponse maps a user; nil stays nil.
func NewUserResponse(u *domain.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName(),
		Role:        u.Role,
		RoleDisplay: u.Role.Display(),
		PhoneNumber: u.PhoneNumber,
		IsActive:    u.IsActive,
		DateJoined:  u.DateJoined,
	}
}

// NewUserResponses maps a page of users.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *NewUserResponse(&users[i]))
	}
	return out
}

// ProfileUpdateRequest lets a caller edit their own name and phone.
type ProfileUpdateRequest struct {
	FirstName   *string `json:"first_name" validate:"omitempty,max=150"`
	LastName    *string `json:"last_name" validate:"omitempty,max=150"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=20"`
}

// UserCreateRequest is the admin account creation payload.
type UserCreateRequest struct {
	Email       string `json:"email" validate:"required,email"`
	FirstName   string `json:"first_name" validate:"max=150"`
	LastName    string `json:"last_name" validate:"max=150"`
	PhoneNumber string `json:"phone_number" validate:"max=20"`
	Role        string `json:"role" validate:"omitempty,oneof=admin team_lead team_member reporter"`
	Password    string `json:"password" validate:"required"`
	IsActive    *bool  `json:"is_active"`
}

// UserUpdateRequest is the admin account update payload.
type UserUpdateRequest struct {
	Email       *string `json:"email" validate:"omitempty,email"`
	FirstName   *string `json:"first_name" validate:"omitempty,max=150"`
	LastName    *string `json:"last_name" validate:"omitempty,max=150"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=20"`
	Role        *string `json:"role" validate:"omitempty,oneof=admin team_lead team_member reporter"`
	IsActive    *bool   `json:"is_active"`
	Password    *string `json:"password"`
}
