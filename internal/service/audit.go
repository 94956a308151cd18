package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/outagetrack/outage-service/internal/domain"
	"github.com/outagetrack/outage-service/internal/repository"
)

// fieldChange is one entry of a location diff.
type fieldChange struct {
	Field  string
	Before string
	After  string
}

// record appends an audit entry through the transaction-bound repositories.
// A failure here must abort the surrounding transaction.
func record(ctx context.Context, repos repository.Repositories, loc *domain.Location, actor *domain.User, updateType domain.UpdateType, notes string, previous, next domain.LocationStatus) (*domain.LocationUpdate, error) {
	entry := &domain.LocationUpdate{
		LocationID:     loc.ID,
		UpdateType:     updateType,
		PreviousStatus: previous,
		NewStatus:      next,
		Notes:          notes,
	}
	if actor != nil {
		id := actor.ID
		entry.UpdatedByID = &id
	}
	if err := repos.Updates.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("record %s: %w", updateType, err)
	}
	return entry, nil
}

// diffLocations lists changed fields in a stable order.
func diffLocations(before, after *domain.Location) []fieldChange {
	var changes []fieldChange
	add := func(field, b, a string) {
		if b != a {
			changes = append(changes, fieldChange{Field: field, Before: b, After: a})
		}
	}
	add("name", before.Name, after.Name)
	add("address", before.Address, after.Address)
	add("city", before.City, after.City)
	add("state", before.State, after.State)
	add("zip_code", before.ZipCode, after.ZipCode)
	add("latitude", decimalString(before.Latitude), decimalString(after.Latitude))
	add("longitude", decimalString(before.Longitude), decimalString(after.Longitude))
	add("status", string(before.Status), string(after.Status))
	add("priority", string(before.Priority), string(after.Priority))
	add("description", before.Description, after.Description)
	add("estimated_customers_affected", intString(before.EstimatedCustomersAffected), intString(after.EstimatedCustomersAffected))
	if stringValue(before.AssignedToID) != stringValue(after.AssignedToID) {
		changes = append(changes, fieldChange{Field: "assigned_to", Before: assigneeName(before), After: assigneeName(after)})
	}
	add("reporter_email", before.ReporterEmail, after.ReporterEmail)
	add("reporter_phone", before.ReporterPhone, after.ReporterPhone)
	add("estimated_restoration", timeString(before.EstimatedRestoration), timeString(after.EstimatedRestoration))
	add("actual_restoration", timeString(before.ActualRestoration), timeString(after.ActualRestoration))
	return changes
}

// summarizeChanges renders a diff on a single line.
func summarizeChanges(changes []fieldChange) string {
	parts := make([]string, 0, len(changes))
	for _, c := range changes {
		parts = append(parts, fmt.Sprintf("%s: %s -> %s", c.Field, displayValue(c.Before), displayValue(c.After)))
	}
	return "Updated " + strings.Join(parts, "; ")
}

func changedFields(changes []fieldChange) []string {
	fields := make([]string, len(changes))
	for i, c := range changes {
		fields[i] = c.Field
	}
	return fields
}

func displayValue(v string) string {
	if v == "" {
		return "(empty)"
	}
	return stringPreview(strings.ReplaceAll(v, "\n", " "), 60)
}

func stringPreview(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func assigneeName(loc *domain.Location) string {
	if loc.AssignedToID == nil {
		return "unassigned"
	}
	if loc.AssignedTo != nil && loc.AssignedTo.ID == *loc.AssignedToID {
		return loc.AssignedTo.DisplayName()
	}
	return *loc.AssignedToID
}

func decimalString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(6)
}

func intString(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func timeString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
