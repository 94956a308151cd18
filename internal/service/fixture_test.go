package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/outagetrack/outage-service/internal/domain"
	"github.com/outagetrack/outage-service/internal/events"
	"github.com/outagetrack/outage-service/internal/repository"
	"github.com/outagetrack/outage-service/internal/repository/memory"
	apperrors "github.com/outagetrack/outage-service/pkg/util/errorutil"
)

type fixture struct {
	store     *memory.Store
	svc       *LocationService
	published []events.Event

	admin     *domain.User
	lead      *domain.User
	otherLead *domain.User
	member    *domain.User
	member2   *domain.User
	reporter  *domain.User
	reporter2 *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memory.NewStore()}
	dispatcher := events.NewInMemoryDispatcher()
	for _, et := range events.AllLocationEvents {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			f.published = append(f.published, e)
			return nil
		})
	}
	f.svc = NewLocationService(LocationDependencies{Store: f.store, Dispatcher: dispatcher, Logger: zap.NewNop()})

	f.admin = f.user(t, "admin@example.com", "Ada", "Admin", domain.RoleAdmin)
	f.lead = f.user(t, "lead@example.com", "Lee", "Lead", domain.RoleTeamLead)
	f.otherLead = f.user(t, "lead2@example.com", "Lou", "Lead", domain.RoleTeamLead)
	f.member = f.user(t, "member@example.com", "Max", "Member", domain.RoleTeamMember)
	f.member2 = f.user(t, "member2@example.com", "Mia", "Member", domain.RoleTeamMember)
	f.reporter = f.user(t, "reporter@example.com", "Rita", "Reporter", domain.RoleReporter)
	f.reporter2 = f.user(t, "reporter2@example.com", "Rob", "Reporter", domain.RoleReporter)
	return f
}

func (f *fixture) user(t *testing.T, email, first, last string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, FirstName: first, LastName: last, Role: role, IsActive: true}
	require.NoError(t, f.store.Repos().Users.Create(context.Background(), u))
	return u
}

// report files a location as creator, optionally assigning it directly in the store.
func (f *fixture) report(t *testing.T, creator *domain.User, name string, assignee *domain.User) *domain.Location {
	t.Helper()
	ctx := context.Background()
	detail, err := f.svc.Report(ctx, creator, ReportInput{Name: name, City: "Springfield"})
	require.NoError(t, err)
	loc := detail.Location
	if assignee != nil {
		loc.AssignedToID = &assignee.ID
		require.NoError(t, f.store.Repos().Locations.Update(ctx, loc))
	}
	got, err := f.store.Repos().Locations.GetByID(ctx, loc.ID)
	require.NoError(t, err)
	return got
}

func (f *fixture) updates(t *testing.T, locationID string) []domain.LocationUpdate {
	t.Helper()
	updates, _, err := f.store.Repos().Updates.ListByLocation(context.Background(), locationID, 100, 0)
	require.NoError(t, err)
	return updates
}

func codeOf(err error) string {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// failingAuditStore wraps the memory store so every audit append fails.
type failingAuditStore struct {
	*memory.Store
}

var errAuditDown = errors.New("audit storage unavailable")

func (s failingAuditStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return s.Store.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		repos.Updates = failingUpdates{repos.Updates}
		return fn(ctx, repos)
	})
}

type failingUpdates struct {
	repository.LocationUpdateRepository
}

func (failingUpdates) Create(context.Context, *domain.LocationUpdate) error {
	return errAuditDown
}
