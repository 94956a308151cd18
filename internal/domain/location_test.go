package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "formatted us number", input: "(555) 123-4567", want: "5551234567"},
		{name: "international prefix", input: "+1 555.123.4567", want: "15551234567"},
		{name: "already digits", input: "5551234567", want: "5551234567"},
		{name: "no digits", input: "call me", want: ""},
		{name: "empty", input: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizePhone(got), "normalization must be idempotent")
		})
	}
}

func TestLocationStatusValid(t *testing.T) {
	for _, s := range []LocationStatus{StatusReported, StatusInvestigating, StatusInProgress, StatusResolved, StatusCancelled} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, LocationStatus("closed").Valid())
	assert.False(t, LocationStatus("").Valid())
}

func TestRoleStaff(t *testing.T) {
	assert.True(t, RoleAdmin.Staff())
	assert.True(t, RoleTeamLead.Staff())
	assert.True(t, RoleTeamMember.Staff())
	assert.False(t, RoleReporter.Staff())
	assert.False(t, Role("guest").Valid())
}

func TestLocationCloneIsDeep(t *testing.T) {
	assignee := "u1"
	customers := 10
	loc := &Location{ID: "l1", AssignedToID: &assignee, EstimatedCustomersAffected: &customers, AssignedTo: &User{ID: "u1"}}

	cp := loc.Clone()
	*cp.AssignedToID = "u2"
	*cp.EstimatedCustomersAffected = 20
	cp.AssignedTo.ID = "u2"

	assert.Equal(t, "u1", *loc.AssignedToID)
	assert.Equal(t, 10, *loc.EstimatedCustomersAffected)
	assert.Equal(t, "u1", loc.AssignedTo.ID)
}

func TestUserDisplayName(t *testing.T) {
	u := &User{Email: "a@example.com"}
	assert.Equal(t, "a@example.com", u.DisplayName())
	u.FirstName = "Ada"
	u.LastName = "Lovelace"
	assert.Equal(t, "Ada Lovelace", u.DisplayName())
	assert.False(t, (*User)(nil).Is(u))
}
