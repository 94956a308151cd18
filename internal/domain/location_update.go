package domain

import "time"

// UpdateType classifies an audit entry.
type UpdateType string

const (
	UpdateTypeStatusChange   UpdateType = "status_change"
	UpdateTypeAssignment     UpdateType = "assignment"
	UpdateTypePriorityChange UpdateType = "priority_change"
	UpdateTypeGeneral        UpdateType = "general_update"
)

// Display returns the human readable update type label.
func (t UpdateType) Display() string {
	switch t {
	case UpdateTypeStatusChange:
		return "Status Change"
	case UpdateTypeAssignment:
		return "Assignment"
	case UpdateTypePriorityChange:
		return "Priority Change"
	case UpdateTypeGeneral:
		return "General Update"
	}
	return string(t)
}

// LocationUpdate is an immutable audit trail entry owned by a location.
type LocationUpdate struct {
	ID             string
	LocationID     string
	UpdatedByID    *string
	UpdatedBy      *User
	UpdateType     UpdateType
	PreviousStatus LocationStatus
	NewStatus      LocationStatus
	Notes          string
	CreatedAt      time.Time
}
