package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/outagetrack/outage-service/internal/domain"
	"github.com/outagetrack/outage-service/internal/events"
	"github.com/outagetrack/outage-service/internal/observability"
	"github.com/outagetrack/outage-service/internal/policy"
	"github.com/outagetrack/outage-service/internal/repository"
	apperrors "github.com/outagetrack/outage-service/pkg/util/errorutil"
)

const (
	forbiddenMessage = "you do not have permission to perform this action"
	trailLimit       = 100
)

var fieldValidator = validator.New()

// LocationService coordinates the outage lifecycle. Every mutation runs in a
// single transaction together with its audit entry.
type LocationService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// LocationDependencies bundles collaborators for the location service.
type LocationDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// LocationDetail is a location together with its newest audit entries.
type LocationDetail struct {
	Location *domain.Location
	Updates  []domain.LocationUpdate
}

// ReportInput describes a new outage report.
type ReportInput struct {
	Name                       string
	Address                    string
	City                       string
	State                      string
	ZipCode                    string
	Latitude                   decimal.NullDecimal
	Longitude                  decimal.NullDecimal
	Priority                   domain.LocationPriority
	Description                string
	EstimatedCustomersAffected *int
	ReportedByID               *string
	ReporterEmail              string
	ReporterPhone              string
	EstimatedRestoration       *time.Time
}

// LocationPatch carries the fields of a partial edit; nil means untouched.
// An empty AssignedToID clears the assignee.
type LocationPatch struct {
	Name                       *string
	Address                    *string
	City                       *string
	State                      *string
	ZipCode                    *string
	Latitude                   *decimal.Decimal
	Longitude                  *decimal.Decimal
	Status                     *domain.LocationStatus
	Priority                   *domain.LocationPriority
	Description                *string
	EstimatedCustomersAffected *int
	AssignedToID               *string
	ReporterEmail              *string
	ReporterPhone              *string
	EstimatedRestoration       *time.Time
	ActualRestoration          *time.Time
}

// LocationListFilter describes list parameters supplied by callers.
type LocationListFilter struct {
	Statuses     []domain.LocationStatus
	Priorities   []domain.LocationPriority
	AssignedToID *string
	SearchTerm   *string
	Limit        int
	Offset       int
}

// NewLocationService constructs the service.
func NewLocationService(deps LocationDependencies) *LocationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocationService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Report creates a location in the reported state.
func (s *LocationService) Report(ctx context.Context, creator *domain.User, input ReportInput) (*LocationDetail, error) {
	if !active(creator) {
		return nil, apperrors.NewForbidden(forbiddenMessage)
	}

	errs := fieldErrors{}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		errs.add("name", "this field is required")
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	} else if !priority.Valid() {
		errs.add("priority", "invalid priority")
	}
	if input.EstimatedCustomersAffected != nil && *input.EstimatedCustomersAffected < 0 {
		errs.add("estimated_customers_affected", "must be zero or greater")
	}
	email := strings.TrimSpace(input.ReporterEmail)
	if email == "" {
		email = creator.Email
	} else if !validEmail(email) {
		errs.add("reporter_email", "enter a valid email address")
	}
	phone, ok := normalizePhone(input.ReporterPhone)
	if !ok {
		errs.add("reporter_phone", fmt.Sprintf("must contain at most %d digits", domain.MaxPhoneDigits))
	}

	loc := &domain.Location{
		Name:                       name,
		Address:                    strings.TrimSpace(input.Address),
		City:                       strings.TrimSpace(input.City),
		State:                      strings.TrimSpace(input.State),
		ZipCode:                    strings.TrimSpace(input.ZipCode),
		Latitude:                   roundCoordinate(input.Latitude),
		Longitude:                  roundCoordinate(input.Longitude),
		Status:                     domain.StatusReported,
		Priority:                   priority,
		Description:                strings.TrimSpace(input.Description),
		EstimatedCustomersAffected: input.EstimatedCustomersAffected,
		ReporterEmail:              domain.NormalizeEmail(email),
		ReporterPhone:              phone,
		ReportedAt:                 s.now(),
		EstimatedRestoration:       input.EstimatedRestoration,
	}

	var detail *LocationDetail
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if creator.Role == domain.RoleReporter {
			loc.ReportedByID = &creator.ID
		} else if input.ReportedByID != nil && *input.ReportedByID != "" {
			reporter, err := repos.Users.GetByID(ctx, *input.ReportedByID)
			switch {
			case errors.Is(err, apperrors.ErrNoRecord):
				errs.add("reported_by_id", "user not found")
			case err != nil:
				return err
			case reporter.Role != domain.RoleReporter:
				errs.add("reported_by_id", "user must be a reporter")
			default:
				loc.ReportedByID = &reporter.ID
			}
		}
		if err := errs.err(); err != nil {
			return err
		}

		if err := repos.Locations.Create(ctx, loc); err != nil {
			return err
		}
		if _, err := record(ctx, repos, loc, creator, domain.UpdateTypeGeneral, "Location reported", "", ""); err != nil {
			return err
		}
		var err error
		detail, err = loadDetail(ctx, repos, loc.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.committed(ctx, "report", creator, detail.Location, domain.UpdateTypeGeneral)
	s.publishEvent(ctx, events.Event{
		Type:       events.EventLocationReported,
		LocationID: detail.Location.ID,
		Actor:      actorOf(creator),
		Payload: events.LocationReportedPayload{
			Name:          detail.Location.Name,
			Priority:      detail.Location.Priority,
			ReporterEmail: detail.Location.ReporterEmail,
		},
	})
	return detail, nil
}

// Assign is the dedicated assignment action. Only the assignee's role is
// checked; the edit path's per-role restrictions do not apply here.
func (s *LocationService) Assign(ctx context.Context, actor *domain.User, locationID, targetUserID string) (*LocationDetail, error) {
	if !policy.CanAssign(actor) {
		return nil, apperrors.NewForbidden(forbiddenMessage)
	}
	if strings.TrimSpace(targetUserID) == "" {
		return nil, apperrors.NewFieldError("user_id", "this field is required")
	}

	var (
		detail   *LocationDetail
		previous *string
		target   *domain.User
	)
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		loc, err := visibleLocation(ctx, repos, actor, locationID)
		if err != nil {
			return err
		}
		target, err = repos.Users.GetByID(ctx, targetUserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNoRecord) {
				return apperrors.NewNotFound("user", nil)
			}
			return err
		}
		if err := policy.ValidAssignee(target); err != nil {
			return err
		}

		before := assigneeName(loc)
		previous = loc.AssignedToID
		loc.AssignedToID = &target.ID
		loc.AssignedTo = target
		if err := repos.Locations.Update(ctx, loc); err != nil {
			return err
		}
		notes := fmt.Sprintf("Location assigned to %s (previously %s)", target.DisplayName(), before)
		if _, err := record(ctx, repos, loc, actor, domain.UpdateTypeAssignment, notes, "", ""); err != nil {
			return err
		}
		detail, err = loadDetail(ctx, repos, loc.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.committed(ctx, "assign", actor, detail.Location, domain.UpdateTypeAssignment)
	s.publishEvent(ctx, events.Event{
		Type:       events.EventLocationAssigned,
		LocationID: detail.Location.ID,
		Actor:      actorOf(actor),
		Payload: events.LocationAssignedPayload{
			PreviousAssigneeID: previous,
			AssigneeID:         target.ID,
			AssigneeEmail:      target.Email,
		},
	})
	return detail, nil
}

// UpdateStatus moves a location to any of the five states. Reporters may
// only cancel locations they reported.
func (s *LocationService) UpdateStatus(ctx context.Context, actor *domain.User, locationID string, status domain.LocationStatus, notes string) (*LocationDetail, error) {
	if !active(actor) {
		return nil, apperrors.NewForbidden(forbiddenMessage)
	}
	if err := policy.CheckStatusChange(actor, status); err != nil {
		return nil, err
	}

	var (
		detail   *LocationDetail
		previous domain.LocationStatus
	)
	notes = strings.TrimSpace(notes)
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		loc, err := visibleLocation(ctx, repos, actor, locationID)
		if err != nil {
			return err
		}
		if !policy.CanEdit(actor, loc) && !policy.CanEditAsReporter(actor, loc) {
			return apperrors.NewForbidden(forbiddenMessage)
		}

		previous = loc.Status
		loc.Status = status
		if err := repos.Locations.Update(ctx, loc); err != nil {
			return err
		}
		entryNotes := notes
		if entryNotes == "" {
			entryNotes = fmt.Sprintf("Status changed from %s to %s", previous.Display(), status.Display())
		}
		if _, err := record(ctx, repos, loc, actor, domain.UpdateTypeStatusChange, entryNotes, previous, status); err != nil {
			return err
		}
		detail, err = loadDetail(ctx, repos, loc.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.committed(ctx, "update_status", actor, detail.Location, domain.UpdateTypeStatusChange)
	s.publishEvent(ctx, events.Event{
		Type:       events.EventLocationStatusChanged,
		LocationID: detail.Location.ID,
		Actor:      actorOf(actor),
		Payload: events.LocationStatusChangedPayload{
			OldStatus: previous,
			NewStatus: status,
			Notes:     notes,
		},
	})
	return detail, nil
}

// UpdatePriority changes the priority; unchanged values write nothing.
func (s *LocationService) UpdatePriority(ctx context.Context, actor *domain.User, locationID string, priority domain.LocationPriority) (*LocationDetail, error) {
	if !active(actor) {
		return nil, apperrors.NewForbidden(forbiddenMessage)
	}
	if err := policy.CheckPriorityChange(actor, priority); err != nil {
		return nil, err
	}

	var (
		detail   *LocationDetail
		previous domain.LocationPriority
		changed  bool
	)
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		loc, err := visibleLocation(ctx, repos, actor, locationID)
		if err != nil {
			return err
		}
		previous = loc.Priority
		if previous != priority {
			changed = true
			loc.Priority = priority
			if err := repos.Locations.Update(ctx, loc); err != nil {
				return err
			}
			notes := fmt.Sprintf("Priority changed from %s to %s", previous.Display(), priority.Display())
			if _, err := record(ctx, repos, loc, actor, domain.UpdateTypePriorityChange, notes, "", ""); err != nil {
				return err
			}
		}
		detail, err = loadDetail(ctx, repos, loc.ID)
		return err
	})
	if err != nil || !changed {
		return detail, err
	}

	s.committed(ctx, "update_priority", actor, detail.Location, domain.UpdateTypePriorityChange)
	s.publishEvent(ctx, events.Event{
		Type:       events.EventLocationPriorityChanged,
		LocationID: detail.Location.ID,
		Actor:      actorOf(actor),
		Payload: events.LocationPriorityChangedPayload{
			OldPriority: previous,
			NewPriority: priority,
		},
	})
	return detail, nil
}

// Edit applies a partial update. Full editors may touch every field;
// reporters editing their own report are limited to descriptive, contact
// and geo fields plus cancelling.
func (s *LocationService) Edit(ctx context.Context, actor *domain.User, locationID string, patch LocationPatch) (*LocationDetail, error) {
	if !active(actor) {
		return nil, apperrors.NewForbidden(forbiddenMessage)
	}

	var (
		detail  *LocationDetail
		changes []fieldChange
	)
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		before, err := visibleLocation(ctx, repos, actor, locationID)
		if err != nil {
			return err
		}
		full := policy.CanEdit(actor, before)
		if !full && !policy.CanEditAsReporter(actor, before) {
			return apperrors.NewForbidden(forbiddenMessage)
		}

		after, err := applyPatch(ctx, repos, actor, before, patch, full)
		if err != nil {
			return err
		}

		changes = diffLocations(before, after)
		if len(changes) == 0 {
			detail, err = loadDetail(ctx, repos, before.ID)
			return err
		}
		if err := repos.Locations.Update(ctx, after); err != nil {
			return err
		}
		var previous, next domain.LocationStatus
		if before.Status != after.Status {
			previous, next = before.Status, after.Status
		}
		if _, err := record(ctx, repos, after, actor, domain.UpdateTypeGeneral, summarizeChanges(changes), previous, next); err != nil {
			return err
		}
		detail, err = loadDetail(ctx, repos, after.ID)
		return err
	})
	if err != nil || len(changes) == 0 {
		return detail, err
	}

	s.committed(ctx, "edit", actor, detail.Location, domain.UpdateTypeGeneral)
	s.publishEvent(ctx, events.Event{
		Type:       events.EventLocationEdited,
		LocationID: detail.Location.ID,
		Actor:      actorOf(actor),
		Payload:    events.LocationEditedPayload{Fields: changedFields(changes)},
	})
	return detail, nil
}

// applyPatch validates patch against the actor's rights and returns the
// resulting location. before is left untouched.
func applyPatch(ctx context.Context, repos repository.Repositories, actor *domain.User, before *domain.Location, patch LocationPatch, full bool) (*domain.Location, error) {
	errs := fieldErrors{}
	after := before.Clone()

	if !full {
		if patch.Priority != nil && *patch.Priority != before.Priority {
			errs.add("priority", "reporters cannot change priority")
		}
		if patch.AssignedToID != nil && *patch.AssignedToID != stringValue(before.AssignedToID) {
			errs.add("assigned_to", "reporters cannot assign locations")
		}
		if patch.EstimatedRestoration != nil {
			errs.add("estimated_restoration", "reporters cannot set restoration times")
		}
		if patch.ActualRestoration != nil {
			errs.add("actual_restoration", "reporters cannot set restoration times")
		}
	}

	if patch.Name != nil {
		if name := strings.TrimSpace(*patch.Name); name == "" {
			errs.add("name", "this field may not be blank")
		} else {
			after.Name = name
		}
	}
	setString(&after.Address, patch.Address)
	setString(&after.City, patch.City)
	setString(&after.State, patch.State)
	setString(&after.ZipCode, patch.ZipCode)
	setString(&after.Description, patch.Description)
	if patch.Latitude != nil {
		after.Latitude = decimal.NewNullDecimal(patch.Latitude.Round(6))
	}
	if patch.Longitude != nil {
		after.Longitude = decimal.NewNullDecimal(patch.Longitude.Round(6))
	}

	if patch.Status != nil && *patch.Status != before.Status {
		if err := policy.CheckStatusChange(actor, *patch.Status); err != nil {
			errs.merge(err)
		} else {
			after.Status = *patch.Status
		}
	}
	if full && patch.Priority != nil && *patch.Priority != before.Priority {
		if err := policy.CheckPriorityChange(actor, *patch.Priority); err != nil {
			errs.merge(err)
		} else {
			after.Priority = *patch.Priority
		}
	}
	if full && patch.AssignedToID != nil && *patch.AssignedToID != stringValue(before.AssignedToID) {
		if *patch.AssignedToID == "" {
			if err := policy.CheckEditUnassign(actor); err != nil {
				errs.merge(err)
			} else {
				after.AssignedToID, after.AssignedTo = nil, nil
			}
		} else {
			target, err := repos.Users.GetByID(ctx, *patch.AssignedToID)
			switch {
			case errors.Is(err, apperrors.ErrNoRecord):
				errs.add("assigned_to", "user not found")
			case err != nil:
				return nil, err
			default:
				if err := policy.CheckEditAssignment(actor, target); err != nil {
					errs.merge(err)
				} else {
					after.AssignedToID, after.AssignedTo = &target.ID, target
				}
			}
		}
	}

	if patch.EstimatedCustomersAffected != nil {
		if *patch.EstimatedCustomersAffected < 0 {
			errs.add("estimated_customers_affected", "must be zero or greater")
		} else {
			v := *patch.EstimatedCustomersAffected
			after.EstimatedCustomersAffected = &v
		}
	}
	if patch.ReporterEmail != nil {
		email := strings.TrimSpace(*patch.ReporterEmail)
		if email != "" && !validEmail(email) {
			errs.add("reporter_email", "enter a valid email address")
		} else {
			after.ReporterEmail = domain.NormalizeEmail(email)
		}
	}
	if patch.ReporterPhone != nil {
		if phone, ok := normalizePhone(*patch.ReporterPhone); ok {
			after.ReporterPhone = phone
		} else {
			errs.add("reporter_phone", fmt.Sprintf("must contain at most %d digits", domain.MaxPhoneDigits))
		}
	}
	if full && patch.EstimatedRestoration != nil {
		t := patch.EstimatedRestoration.UTC()
		after.EstimatedRestoration = &t
	}
	if full && patch.ActualRestoration != nil {
		t := patch.ActualRestoration.UTC()
		after.ActualRestoration = &t
	}

	if err := errs.err(); err != nil {
		return nil, err
	}
	return after, nil
}

// AddNote appends a free-form general update without touching the location.
func (s *LocationService) AddNote(ctx context.Context, actor *domain.User, locationID, notes string) (*LocationDetail, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, apperrors.NewFieldError("notes", "this field is required")
	}

	var (
		detail *LocationDetail
		entry  *domain.LocationUpdate
	)
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		loc, err := visibleLocation(ctx, repos, actor, locationID)
		if err != nil {
			return err
		}
		entry, err = record(ctx, repos, loc, actor, domain.UpdateTypeGeneral, notes, "", "")
		if err != nil {
			return err
		}
		detail, err = loadDetail(ctx, repos, loc.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.committed(ctx, "add_note", actor, detail.Location, domain.UpdateTypeGeneral)
	s.publishEvent(ctx, events.Event{
		Type:       events.EventLocationNoteAdded,
		LocationID: detail.Location.ID,
		Actor:      actorOf(actor),
		Payload:    events.LocationNoteAddedPayload{UpdateID: entry.ID, Preview: stringPreview(notes, 120)},
	})
	return detail, nil
}

// Get returns a visible location with its audit trail.
func (s *LocationService) Get(ctx context.Context, actor *domain.User, locationID string) (*LocationDetail, error) {
	repos := s.store.Repos()
	loc, err := visibleLocation(ctx, repos, actor, locationID)
	if err != nil {
		return nil, err
	}
	updates, _, err := repos.Updates.ListByLocation(ctx, loc.ID, trailLimit, 0)
	if err != nil {
		return nil, err
	}
	return &LocationDetail{Location: loc, Updates: updates}, nil
}

// List returns the locations the actor may see, newest first.
func (s *LocationService) List(ctx context.Context, actor *domain.User, filter LocationListFilter) ([]domain.Location, int, error) {
	if !active(actor) {
		return nil, 0, apperrors.NewForbidden(forbiddenMessage)
	}
	for _, st := range filter.Statuses {
		if !st.Valid() {
			return nil, 0, apperrors.NewFieldError("status", "invalid status")
		}
	}
	for _, p := range filter.Priorities {
		if !p.Valid() {
			return nil, 0, apperrors.NewFieldError("priority", "invalid priority")
		}
	}
	return s.store.Repos().Locations.List(ctx, repository.LocationFilter{
		Scope:        policy.ViewScope(actor),
		Statuses:     filter.Statuses,
		Priorities:   filter.Priorities,
		AssignedToID: filter.AssignedToID,
		SearchTerm:   filter.SearchTerm,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	})
}

// ListUpdates pages through a visible location's audit trail.
func (s *LocationService) ListUpdates(ctx context.Context, actor *domain.User, locationID string, limit, offset int) ([]domain.LocationUpdate, int, error) {
	repos := s.store.Repos()
	loc, err := visibleLocation(ctx, repos, actor, locationID)
	if err != nil {
		return nil, 0, err
	}
	return repos.Updates.ListByLocation(ctx, loc.ID, limit, offset)
}

// Delete hard-deletes a location and its updates. Admin only.
func (s *LocationService) Delete(ctx context.Context, actor *domain.User, locationID string) error {
	if !policy.CanDelete(actor) {
		return apperrors.NewForbidden(forbiddenMessage)
	}
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Locations.Delete(ctx, locationID); err != nil {
			return notFoundAs(err, "location")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.RecordMutation("delete")
	s.logger.Info("location deleted", zap.String("location_id", locationID), zap.String("actor_id", actor.ID))
	s.publishEvent(ctx, events.Event{
		Type:       events.EventLocationDeleted,
		LocationID: locationID,
		Actor:      actorOf(actor),
	})
	return nil
}

// visibleLocation loads a location and enforces CanView. Missing rows are
// NotFound; hidden rows are Forbidden with no details.
func visibleLocation(ctx context.Context, repos repository.Repositories, actor *domain.User, id string) (*domain.Location, error) {
	if !active(actor) {
		return nil, apperrors.NewForbidden(forbiddenMessage)
	}
	loc, err := repos.Locations.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "location")
	}
	if !policy.CanView(actor, loc) {
		return nil, apperrors.NewForbidden(forbiddenMessage)
	}
	return loc, nil
}

func loadDetail(ctx context.Context, repos repository.Repositories, id string) (*LocationDetail, error) {
	loc, err := repos.Locations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updates, _, err := repos.Updates.ListByLocation(ctx, id, trailLimit, 0)
	if err != nil {
		return nil, err
	}
	return &LocationDetail{Location: loc, Updates: updates}, nil
}

func (s *LocationService) committed(ctx context.Context, op string, actor *domain.User, loc *domain.Location, updateType domain.UpdateType) {
	s.metrics.RecordMutation(op, string(updateType))
	s.logger.Info("location mutation committed",
		zap.String("operation", op),
		zap.String("location_id", loc.ID),
		zap.String("actor_id", actor.ID),
		zap.String("update_type", string(updateType)))
}

func (s *LocationService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.now()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func actorOf(u *domain.User) events.Actor {
	return events.Actor{UserID: u.ID, Role: u.Role}
}

func active(u *domain.User) bool {
	return u != nil && u.IsActive
}

func notFoundAs(err error, resource string) error {
	if errors.Is(err, apperrors.ErrNoRecord) {
		return apperrors.NewNotFound(resource, nil)
	}
	return err
}

func validEmail(email string) bool {
	return fieldValidator.Var(email, "required,email") == nil
}

func normalizePhone(phone string) (string, bool) {
	digits := domain.NormalizePhone(phone)
	return digits, len(digits) <= domain.MaxPhoneDigits
}

func roundCoordinate(d decimal.NullDecimal) decimal.NullDecimal {
	if !d.Valid {
		return d
	}
	return decimal.NewNullDecimal(d.Decimal.Round(6))
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// fieldErrors accumulates field-level validation messages.
type fieldErrors map[string]any

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f fieldErrors) merge(err error) {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		for k, v := range domainErr.Details {
			if _, exists := f[k]; !exists {
				f[k] = v
			}
		}
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.NewValidationError("validation failed", map[string]any(f))
}
