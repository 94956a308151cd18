package policy

import "github.com/outagetrack/outage-service/internal/domain"

// Scope describes the set of locations an actor may see. A location matches
// when any populated criterion matches; the zero Scope matches nothing.
type Scope struct {
	All           bool
	AssignedTo    string
	ReportedBy    string
	Unassigned    bool
	AssigneeRoles []domain.Role
}

// ViewScope expresses CanView as a filter so list queries agree with detail checks.
func ViewScope(actor *domain.User) Scope {
	if !authenticated(actor) {
		return Scope{}
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return Scope{All: true}
	case domain.RoleTeamLead:
		return Scope{
			AssignedTo:    actor.ID,
			ReportedBy:    actor.ID,
			Unassigned:    true,
			AssigneeRoles: []domain.Role{domain.RoleTeamMember},
		}
	case domain.RoleTeamMember:
		return Scope{AssignedTo: actor.ID}
	case domain.RoleReporter:
		return Scope{ReportedBy: actor.ID}
	}
	return Scope{}
}

// Matches evaluates the scope against a loaded location. AssigneeRoles needs
// loc.AssignedTo to be populated.
func (s Scope) Matches(loc *domain.Location) bool {
	if loc == nil {
		return false
	}
	if s.All {
		return true
	}
	if s.AssignedTo != "" && loc.AssignedToID != nil && *loc.AssignedToID == s.AssignedTo {
		return true
	}
	if s.ReportedBy != "" && loc.ReportedByID != nil && *loc.ReportedByID == s.ReportedBy {
		return true
	}
	if s.Unassigned && loc.AssignedToID == nil {
		return true
	}
	if len(s.AssigneeRoles) > 0 && loc.AssignedTo != nil {
		for _, r := range s.AssigneeRoles {
			if loc.AssignedTo.Role == r {
				return true
			}
		}
	}
	return false
}

// UserScope describes which user records an actor may list.
type UserScope struct {
	All    bool
	Roles  []domain.Role
	SelfID string
}

// DirectoryScope mirrors the account directory rules: admins see everyone,
// team leads see team members and reporters, everyone else only themselves.
func DirectoryScope(actor *domain.User) UserScope {
	if !authenticated(actor) {
		return UserScope{}
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return UserScope{All: true}
	case domain.RoleTeamLead:
		return UserScope{Roles: []domain.Role{domain.RoleTeamMember, domain.RoleReporter}}
	}
	return UserScope{SelfID: actor.ID}
}

// Matches reports whether u is inside the scope.
func (s UserScope) Matches(u *domain.User) bool {
	if u == nil {
		return false
	}
	if s.All {
		return true
	}
	if s.SelfID != "" && u.ID == s.SelfID {
		return true
	}
	for _, r := range s.Roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// CanManageUsers reports whether actor may create, update or delete accounts.
func CanManageUsers(actor *domain.User) bool {
	return hasRole(actor, domain.RoleAdmin)
}
