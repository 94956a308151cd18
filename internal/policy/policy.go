// Package policy holds every authorization decision of the service. The
// functions are pure: they look only at the actor and the resource passed in.
// A nil or inactive actor is treated as unauthenticated and denied.
package policy

import (
	"github.com/outagetrack/outage-service/internal/domain"
	apperrors "github.com/outagetrack/outage-service/pkg/util/errorutil"
)

func authenticated(actor *domain.User) bool {
	return actor != nil && actor.IsActive
}

func hasRole(actor *domain.User, roles ...domain.Role) bool {
	if !authenticated(actor) {
		return false
	}
	for _, r := range roles {
		if actor.Role == r {
			return true
		}
	}
	return false
}

// CanAssign reports whether actor may use the dedicated assign action.
func CanAssign(actor *domain.User) bool {
	return hasRole(actor, domain.RoleAdmin, domain.RoleTeamLead)
}

// CanEditAll reports whether actor may edit any location.
func CanEditAll(actor *domain.User) bool {
	return hasRole(actor, domain.RoleAdmin, domain.RoleTeamLead)
}

// CanViewAll reports whether actor sees every location unfiltered.
func CanViewAll(actor *domain.User) bool {
	return hasRole(actor, domain.RoleAdmin)
}

// CanDelete reports whether actor may hard-delete a location.
func CanDelete(actor *domain.User) bool {
	return hasRole(actor, domain.RoleAdmin)
}

// CanEdit reports whether actor has full edit rights on loc.
func CanEdit(actor *domain.User, loc *domain.Location) bool {
	if !authenticated(actor) || loc == nil {
		return false
	}
	return CanEditAll(actor) || loc.AssignedToUser(actor)
}

// CanEditAsReporter reports whether actor may make the limited reporter edit on loc.
func CanEditAsReporter(actor *domain.User, loc *domain.Location) bool {
	return hasRole(actor, domain.RoleReporter) && loc != nil && loc.ReportedByUser(actor)
}

// CanView reports whether actor may see loc.
func CanView(actor *domain.User, loc *domain.Location) bool {
	if !authenticated(actor) || loc == nil {
		return false
	}
	return ViewScope(actor).Matches(loc)
}

// ValidAssignee rejects targets that may not hold a location.
func ValidAssignee(target *domain.User) error {
	if target == nil || !target.Role.Staff() {
		return apperrors.NewFieldError("assigned_to", "user must be admin, team_lead, or team_member")
	}
	return nil
}

// CheckStatusChange applies the reporter restriction: reporters may only
// cancel, whatever the current status is.
func CheckStatusChange(actor *domain.User, status domain.LocationStatus) error {
	if !status.Valid() {
		return apperrors.NewFieldError("status", "invalid status")
	}
	if hasRole(actor, domain.RoleReporter) && status != domain.StatusCancelled {
		return apperrors.NewFieldError("status", "reporters can only cancel a location")
	}
	return nil
}

// CheckPriorityChange restricts priority changes to team leads and admins.
func CheckPriorityChange(actor *domain.User, priority domain.LocationPriority) error {
	if !priority.Valid() {
		return apperrors.NewFieldError("priority", "invalid priority")
	}
	if !hasRole(actor, domain.RoleAdmin, domain.RoleTeamLead) {
		return apperrors.NewFieldError("priority", "only team leads and admins can change priority")
	}
	return nil
}

// CheckEditAssignment validates an assignee chosen through the general edit
// path. The dedicated assign action only calls ValidAssignee.
func CheckEditAssignment(actor, target *domain.User) error {
	if err := ValidAssignee(target); err != nil {
		return err
	}
	if !authenticated(actor) {
		return apperrors.NewFieldError("assigned_to", "not allowed to assign locations")
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleTeamLead:
		if target.Role != domain.RoleTeamMember {
			return apperrors.NewFieldError("assigned_to", "team leads can only assign to team members")
		}
		return nil
	case domain.RoleTeamMember:
		if !actor.Is(target) {
			return apperrors.NewFieldError("assigned_to", "team members can only assign to themselves")
		}
		return nil
	default:
		return apperrors.NewFieldError("assigned_to", "not allowed to assign locations")
	}
}

// CheckEditUnassign validates clearing the assignee through the edit path.
func CheckEditUnassign(actor *domain.User) error {
	if !CanEditAll(actor) {
		return apperrors.NewFieldError("assigned_to", "not allowed to unassign locations")
	}
	return nil
}
