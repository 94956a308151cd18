package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outagetrack/outage-service/internal/domain"
	"github.com/outagetrack/outage-service/internal/policy"
	"github.com/outagetrack/outage-service/internal/repository"
	apperrors "github.com/outagetrack/outage-service/pkg/util/errorutil"
)

func seedUser(t *testing.T, repos repository.Repositories, email string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, Role: role, IsActive: true}
	require.NoError(t, repos.Users.Create(context.Background(), u))
	return u
}

func TestUserEmailIsUnique(t *testing.T) {
	store := NewStore()
	repos := store.Repos()
	seedUser(t, repos, "a@example.com", domain.RoleReporter)

	err := repos.Users.Create(context.Background(), &domain.User{Email: "A@example.com", Role: domain.RoleReporter})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	_, err = repos.Users.GetByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNoRecord)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	boom := errors.New("boom")

	err := store.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		loc := &domain.Location{Name: "Substation", Status: domain.StatusReported, Priority: domain.PriorityLow}
		require.NoError(t, repos.Locations.Create(ctx, loc))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, total, err := store.Repos().Locations.List(ctx, repository.LocationFilter{Scope: policy.Scope{All: true}})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestTransactionCommits(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	var id string

	err := store.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		loc := &domain.Location{Name: "Substation", Status: domain.StatusReported, Priority: domain.PriorityLow}
		if err := repos.Locations.Create(ctx, loc); err != nil {
			return err
		}
		id = loc.ID
		return repos.Updates.Create(ctx, &domain.LocationUpdate{LocationID: loc.ID, UpdateType: domain.UpdateTypeGeneral, Notes: "created"})
	})
	require.NoError(t, err)

	updates, total, err := store.Repos().Updates.ListByLocation(ctx, id, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "created", updates[0].Notes)
}

func TestDeleteUserClearsReferences(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repos := store.Repos()
	member := seedUser(t, repos, "m@example.com", domain.RoleTeamMember)

	loc := &domain.Location{Name: "Feeder 9", Status: domain.StatusReported, Priority: domain.PriorityHigh, AssignedToID: &member.ID, ReportedByID: &member.ID}
	require.NoError(t, repos.Locations.Create(ctx, loc))
	require.NoError(t, repos.Updates.Create(ctx, &domain.LocationUpdate{LocationID: loc.ID, UpdatedByID: &member.ID, UpdateType: domain.UpdateTypeAssignment}))

	require.NoError(t, repos.Users.Delete(ctx, member.ID))

	got, err := repos.Locations.GetByID(ctx, loc.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AssignedToID)
	assert.Nil(t, got.ReportedByID)

	updates, _, err := repos.Updates.ListByLocation(ctx, loc.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Nil(t, updates[0].UpdatedByID)
}

func TestDeleteLocationCascadesUpdates(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repos := store.Repos()

	loc := &domain.Location{Name: "Pump", Status: domain.StatusReported, Priority: domain.PriorityMedium}
	require.NoError(t, repos.Locations.Create(ctx, loc))
	require.NoError(t, repos.Updates.Create(ctx, &domain.LocationUpdate{LocationID: loc.ID, UpdateType: domain.UpdateTypeGeneral}))
	require.NoError(t, repos.Locations.Delete(ctx, loc.ID))

	_, total, err := repos.Updates.ListByLocation(ctx, loc.ID, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.ErrorIs(t, repos.Locations.Delete(ctx, loc.ID), apperrors.ErrNoRecord)
}

func TestListAppliesScopeAndHydratesAssignee(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repos := store.Repos()
	lead := seedUser(t, repos, "lead@example.com", domain.RoleTeamLead)
	otherLead := seedUser(t, repos, "lead2@example.com", domain.RoleTeamLead)
	member := seedUser(t, repos, "member@example.com", domain.RoleTeamMember)

	mk := func(name string, assignee *domain.User) {
		loc := &domain.Location{Name: name, Status: domain.StatusReported, Priority: domain.PriorityMedium}
		if assignee != nil {
			loc.AssignedToID = &assignee.ID
		}
		require.NoError(t, repos.Locations.Create(ctx, loc))
	}
	mk("unassigned", nil)
	mk("member", member)
	mk("other lead", otherLead)

	items, total, err := repos.Locations.List(ctx, repository.LocationFilter{Scope: policy.ViewScope(lead)})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	names := []string{items[0].Name, items[1].Name}
	assert.ElementsMatch(t, []string{"unassigned", "member"}, names)
	assert.Equal(t, "member", items[0].Name)
	require.NotNil(t, items[0].AssignedTo)
	assert.Equal(t, member.Email, items[0].AssignedTo.Email)
}
