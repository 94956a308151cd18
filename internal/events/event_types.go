package events

import (
	"time"

	"github.com/outagetrack/outage-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLocationReported        EventType = "location_reported"
	EventLocationAssigned        EventType = "location_assigned"
	EventLocationStatusChanged   EventType = "location_status_changed"
	EventLocationPriorityChanged EventType = "location_priority_changed"
	EventLocationEdited          EventType = "location_edited"
	EventLocationNoteAdded       EventType = "location_note_added"
	EventLocationDeleted         EventType = "location_deleted"
)

// AllLocationEvents lists every event the lifecycle publishes.
var AllLocationEvents = []EventType{
	EventLocationReported,
	EventLocationAssigned,
	EventLocationStatusChanged,
	EventLocationPriorityChanged,
	EventLocationEdited,
	EventLocationNoteAdded,
	EventLocationDeleted,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	LocationID string      `json:"location_id"`
	Actor      Actor       `json:"actor"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// LocationReportedPayload payload.
type LocationReportedPayload struct {
	Name          string                  `json:"name"`
	Priority      domain.LocationPriority `json:"priority"`
	ReporterEmail string                  `json:"reporter_email,omitempty"`
}

// LocationAssignedPayload payload.
type LocationAssignedPayload struct {
	PreviousAssigneeID *string `json:"previous_assignee_id,omitempty"`
	AssigneeID         string  `json:"assignee_id"`
	AssigneeEmail      string  `json:"assignee_email"`
}

// LocationStatusChangedPayload payload.
type LocationStatusChangedPayload struct {
	OldStatus domain.LocationStatus `json:"old_status"`
	NewStatus domain.LocationStatus `json:"new_status"`
	Notes     string                `json:"notes,omitempty"`
}

// LocationPriorityChangedPayload payload.
type LocationPriorityChangedPayload struct {
	OldPriority domain.LocationPriority `json:"old_priority"`
	NewPriority domain.LocationPriority `json:"new_priority"`
}

// LocationEditedPayload payload.
type LocationEditedPayload struct {
	Fields []string `json:"fields"`
}

// LocationNoteAddedPayload payload.
type LocationNoteAddedPayload struct {
	UpdateID string `json:"update_id"`
	Preview  string `json:"preview"`
}
