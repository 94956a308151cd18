package domain

import (
	"strings"
	"time"
)

// Role enumerates the permission tiers of the service.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTeamLead   Role = "team_lead"
	RoleTeamMember Role = "team_member"
	RoleReporter   Role = "reporter"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeamLead, RoleTeamMember, RoleReporter:
		return true
	}
	return false
}

// Staff reports whether the role may hold location assignments.
func (r Role) Staff() bool {
	return r == RoleAdmin || r == RoleTeamLead || r == RoleTeamMember
}

// Display returns the human readable role label.
func (r Role) Display() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleTeamLead:
		return "Team Lead"
	case RoleTeamMember:
		return "Team Member"
	case RoleReporter:
		return "Reporter"
	}
	return string(r)
}

// User is an authenticated identity with exactly one role.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Role         Role
	PhoneNumber  string
	IsActive     bool
	PasswordHash string
	DateJoined   time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName falls back to the email when no name is set.
func (u *User) DisplayName() string {
	if name := u.FullName(); name != "" {
		return name
	}
	return u.Email
}

// Is reports whether u and other refer to the same user. Nil never matches.
func (u *User) Is(other *User) bool {
	if u == nil || other == nil {
		return false
	}
	return u.ID == other.ID
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
