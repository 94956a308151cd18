package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/outagetrack/outage-service/internal/domain"
)

// LocationCreateRequest payload for POST /api/locations.
type LocationCreateRequest struct {
	Name                       string           `json:"name" validate:"required,max=200"`
	Address                    string           `json:"address"`
	City                       string           `json:"city" validate:"max=100"`
	State                      string           `json:"state" validate:"max=50"`
	ZipCode                    string           `json:"zip_code" validate:"max=10"`
	Latitude                   *decimal.Decimal `json:"latitude"`
	Longitude                  *decimal.Decimal `json:"longitude"`
	Priority                   string           `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Description                string           `json:"description"`
	EstimatedCustomersAffected *int             `json:"estimated_customers_affected" validate:"omitempty,min=0"`
	ReportedByID               *string          `json:"reported_by_id"`
	ReporterEmail              string           `json:"reporter_email" validate:"omitempty,email"`
	ReporterPhone              string           `json:"reporter_phone"`
	EstimatedRestoration       *time.Time       `json:"estimated_restoration"`
}

// OptionalID distinguishes an absent JSON key from an explicit null.
type OptionalID struct {
	Set   bool
	Value *string
}

// UnmarshalJSON records that the key was present.
func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// LocationUpdateRequest payload for PATCH /api/locations/:id. Absent keys are
// left untouched; "assigned_to": null clears the assignee.
type LocationUpdateRequest struct {
	Name                       *string          `json:"name" validate:"omitempty,max=200"`
	Address                    *string          `json:"address"`
	City                       *string          `json:"city" validate:"omitempty,max=100"`
	State                      *string          `json:"state" validate:"omitempty,max=50"`
	ZipCode                    *string          `json:"zip_code" validate:"omitempty,max=10"`
	Latitude                   *decimal.Decimal `json:"latitude"`
	Longitude                  *decimal.Decimal `json:"longitude"`
	Status                     *string          `json:"status"`
	Priority                   *string          `json:"priority"`
	Description                *string          `json:"description"`
	EstimatedCustomersAffected *int             `json:"estimated_customers_affected"`
	AssignedTo                 OptionalID       `json:"assigned_to"`
	ReporterEmail              *string          `json:"reporter_email"`
	ReporterPhone              *string          `json:"reporter_phone"`
	EstimatedRestoration       *time.Time       `json:"estimated_restoration"`
	ActualRestoration          *time.Time       `json:"actual_restoration"`
}

// AssignRequest payload for the assign action.
type AssignRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// StatusUpdateRequest payload for the update_status action.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

// PriorityUpdateRequest payload for the priority action.
type PriorityUpdateRequest struct {
	Priority string `json:"priority" validate:"required"`
}

// NoteRequest payload for POST /api/locations/:id/updates.
type NoteRequest struct {
	Notes string `json:"notes" validate:"required"`
}

// LocationResponse is the serialized location.
type LocationResponse struct {
	ID                         string                  `json:"id"`
	Name                       string                  `json:"name"`
	Address                    string                  `json:"address"`
	City                       string                  `json:"city"`
	State                      string                  `json:"state"`
	ZipCode                    string                  `json:"zip_code"`
	Latitude                   *string                 `json:"latitude"`
	Longitude                  *string                 `json:"longitude"`
	Status                     domain.LocationStatus   `json:"status"`
	StatusDisplay              string                  `json:"status_display"`
	Priority                   domain.LocationPriority `json:"priority"`
	PriorityDisplay            string                  `json:"priority_display"`
	Description                string                  `json:"description"`
	EstimatedCustomersAffected *int                    `json:"estimated_customers_affected"`
	AssignedTo                 *UserResponse           `json:"assigned_to"`
	ReportedBy                 *UserResponse           `json:"reported_by"`
	ReporterEmail              string                  `json:"reporter_email"`
	ReporterPhone              string                  `json:"reporter_phone"`
	CreatedAt                  time.Time               `json:"created_at"`
	UpdatedAt                  time.Time               `json:"updated_at"`
	ReportedAt                 time.Time               `json:"reported_at"`
	EstimatedRestoration       *time.Time              `json:"estimated_restoration"`
	ActualRestoration          *time.Time              `json:"actual_restoration"`
	IsAssigned                 bool                    `json:"is_assigned"`
	IsResolved                 bool                    `json:"is_resolved"`
	IsCritical                 bool                    `json:"is_critical"`
}

// LocationUpdateResponse is a serialized audit entry.
type LocationUpdateResponse struct {
	ID                string                `json:"id"`
	LocationID        string                `json:"location_id"`
	UpdatedBy         *UserResponse         `json:"updated_by"`
	UpdateType        domain.UpdateType     `json:"update_type"`
	UpdateTypeDisplay string                `json:"update_type_display"`
	PreviousStatus    domain.LocationStatus `json:"previous_status,omitempty"`
	NewStatus         domain.LocationStatus `json:"new_status,omitempty"`
	Notes             string                `json:"notes"`
	CreatedAt         time.Time             `json:"created_at"`
}

// LocationDetailResponse is a location with its newest audit entries.
type LocationDetailResponse struct {
	LocationResponse
	Updates []LocationUpdateResponse `json:"updates"`
}

// NewLocationResponse maps a location.
func NewLocationResponse(loc *domain.Location) LocationResponse {
	return LocationResponse{
		ID:                         loc.ID,
		Name:                       loc.Name,
		Address:                    loc.Address,
		City:                       loc.City,
		State:                      loc.State,
		ZipCode:                    loc.ZipCode,
		Latitude:                   coordinate(loc.Latitude),
		Longitude:                  coordinate(loc.Longitude),
		Status:                     loc.Status,
		StatusDisplay:              loc.Status.Display(),
		Priority:                   loc.Priority,
		PriorityDisplay:            loc.Priority.Display(),
		Description:                loc.Description,
		EstimatedCustomersAffected: loc.EstimatedCustomersAffected,
		AssignedTo:                 NewUserResponse(loc.AssignedTo),
		ReportedBy:                 NewUserResponse(loc.ReportedBy),
		ReporterEmail:              loc.ReporterEmail,
		ReporterPhone:              loc.ReporterPhone,
		CreatedAt:                  loc.CreatedAt,
		UpdatedAt:                  loc.UpdatedAt,
		ReportedAt:                 loc.ReportedAt,
		EstimatedRestoration:       loc.EstimatedRestoration,
		ActualRestoration:          loc.ActualRestoration,
		IsAssigned:                 loc.IsAssigned(),
		IsResolved:                 loc.IsResolved(),
		IsCritical:                 loc.IsCritical(),
	}
}

// NewLocationResponses maps a page of locations.
func NewLocationResponses(locs []domain.Location) []LocationResponse {
	out := make([]LocationResponse, 0, len(locs))
	for i := range locs {
		out = append(out, NewLocationResponse(&locs[i]))
	}
	return out
}

// NewLocationUpdateResponses maps audit entries, newest first.
func NewLocationUpdateResponses(updates []domain.LocationUpdate) []LocationUpdateResponse {
	out := make([]LocationUpdateResponse, 0, len(updates))
	for i := range updates {
		u := &updates[i]
		out = append(out, LocationUpdateResponse{
			ID:                u.ID,
			LocationID:        u.LocationID,
			UpdatedBy:         NewUserResponse(u.UpdatedBy),
			UpdateType:        u.UpdateType,
			UpdateTypeDisplay: u.UpdateType.Display(),
			PreviousStatus:    u.PreviousStatus,
			NewStatus:         u.NewStatus,
			Notes:             u.Notes,
			CreatedAt:         u.CreatedAt,
		})
	}
	return out
}

// NewLocationDetailResponse maps a location and its trail.
func NewLocationDetailResponse(loc *domain.Location, updates []domain.LocationUpdate) LocationDetailResponse {
	return LocationDetailResponse{
		LocationResponse: NewLocationResponse(loc),
		Updates:          NewLocationUpdateResponses(updates),
	}
}

func coordinate(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.StringFixed(6)
	return &s
}

// Page wraps list metadata.
type Page struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
