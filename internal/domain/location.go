package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LocationStatus enumerates outage lifecycle states. There is no enforced
// transition graph; any authorized actor may move between them.
type LocationStatus string

const (
	StatusReported      LocationStatus = "reported"
	StatusInvestigating LocationStatus = "investigating"
	StatusInProgress    LocationStatus = "in_progress"
	StatusResolved      LocationStatus = "resolved"
	StatusCancelled     LocationStatus = "cancelled"
)

// Valid reports whether s is one of the five known states.
func (s LocationStatus) Valid() bool {
	switch s {
	case StatusReported, StatusInvestigating, StatusInProgress, StatusResolved, StatusCancelled:
		return true
	}
	return false
}

// Display returns the human readable status label.
func (s LocationStatus) Display() string {
	switch s {
	case StatusReported:
		return "Reported"
	case StatusInvestigating:
		return "Investigating"
	case StatusInProgress:
		return "In Progress"
	case StatusResolved:
		return "Resolved"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// LocationPriority enumerates outage urgency.
type LocationPriority string

const (
	PriorityLow      LocationPriority = "low"
	PriorityMedium   LocationPriority = "medium"
	PriorityHigh     LocationPriority = "high"
	PriorityCritical LocationPriority = "critical"
)

// Valid reports whether p is a known priority.
func (p LocationPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Display returns the human readable priority label.
func (p LocationPriority) Display() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityCritical:
		return "Critical"
	}
	return string(p)
}

// MaxPhoneDigits bounds the stored reporter phone.
const MaxPhoneDigits = 20

// Location is an outage record tied to a physical site.
type Location struct {
	ID        string
	Name      string
	Address   string
	City      string
	State     string
	ZipCode   string
	Latitude  decimal.NullDecimal
	Longitude decimal.NullDecimal

	Status                     LocationStatus
	Priority                   LocationPriority
	Description                string
	EstimatedCustomersAffected *int

	AssignedToID *string
	ReportedByID *string
	// AssignedTo and ReportedBy are loaded alongside the row; they are read
	// only and never written back.
	AssignedTo *User
	ReportedBy *User

	ReporterEmail string
	ReporterPhone string

	CreatedAt            time.Time
	UpdatedAt            time.Time
	ReportedAt           time.Time
	EstimatedRestoration *time.Time
	ActualRestoration    *time.Time
}

// IsAssigned reports whether someone holds the location.
func (l *Location) IsAssigned() bool { return l.AssignedToID != nil }

// IsResolved reports whether the outage is resolved.
func (l *Location) IsResolved() bool { return l.Status == StatusResolved }

// IsCritical reports whether the outage is critical.
func (l *Location) IsCritical() bool { return l.Priority == PriorityCritical }

// AssignedToUser reports whether the location is assigned to u.
func (l *Location) AssignedToUser(u *User) bool {
	return u != nil && l.AssignedToID != nil && *l.AssignedToID == u.ID
}

// ReportedByUser reports whether u reported the location.
func (l *Location) ReportedByUser(u *User) bool {
	return u != nil && l.ReportedByID != nil && *l.ReportedByID == u.ID
}

// Clone returns a copy that shares no pointers with l.
func (l *Location) Clone() *Location {
	cp := *l
	cp.AssignedToID = cloneString(l.AssignedToID)
	cp.ReportedByID = cloneString(l.ReportedByID)
	if l.EstimatedCustomersAffected != nil {
		v := *l.EstimatedCustomersAffected
		cp.EstimatedCustomersAffected = &v
	}
	cp.EstimatedRestoration = cloneTime(l.EstimatedRestoration)
	cp.ActualRestoration = cloneTime(l.ActualRestoration)
	if l.AssignedTo != nil {
		u := *l.AssignedTo
		cp.AssignedTo = &u
	}
	if l.ReportedBy != nil {
		u := *l.ReportedBy
		cp.ReportedBy = &u
	}
	return &cp
}

// NormalizePhone strips every non-digit character.
func NormalizePhone(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
