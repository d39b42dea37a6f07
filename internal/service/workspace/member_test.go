package workspace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
	"thecrew/internal/domain/services"
)

func TestAddMember(t *testing.T) {
	f := newFixture(t, "alice", "bob", "eve")
	ctx := context.Background()
	ws := f.create(t, "alice")

	m := f.add(t, ws, "alice", "bob", models.RoleMember)
	assert.Equal(t, "bob@example.com", m.Email)
	assert.Equal(t, models.RoleMember, m.Role)

	// duplicate
	_, err := f.members.AddMember(ctx, f.users["alice"].ID, ws.ID, &services.AddMemberRequest{Email: "BOB@example.com", Role: "viewer"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// unknown account
	_, err = f.members.AddMember(ctx, f.users["alice"].ID, ws.ID, &services.AddMemberRequest{Email: "ghost@example.com", Role: "viewer"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// bad role
	_, err = f.members.AddMember(ctx, f.users["alice"].ID, ws.ID, &services.AddMemberRequest{Email: "eve@example.com", Role: "owner"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// members cannot manage members
	_, err = f.members.AddMember(ctx, f.users["bob"].ID, ws.ID, &services.AddMemberRequest{Email: "eve@example.com", Role: "viewer"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLastAdminCannotBeRemovedOrDemoted(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()
	ws := f.create(t, "alice")
	f.add(t, ws, "alice", "bob", models.RoleMember)

	members, err := f.members.ListMembers(ctx, f.users["alice"].ID, ws.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, members[0].Role)
	aliceMember := members[0]

	err = f.members.RemoveMember(ctx, f.users["alice"].ID, ws.ID, aliceMember.ID)
	var cerr *domain.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, domain.KindLastAdmin, cerr.Kind())

	_, err = f.members.UpdateMemberRole(ctx, f.users["alice"].ID, ws.ID, aliceMember.ID, &services.UpdateMemberRequest{Role: "member"})
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, domain.KindLastAdmin, cerr.Kind())
}

func TestAdminMayLeaveWhenAnotherAdminRemains(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()
	ws := f.create(t, "alice")
	bob := f.add(t, ws, "alice", "bob", models.RoleMember)

	promoted, err := f.members.UpdateMemberRole(ctx, f.users["alice"].ID, ws.ID, bob.ID, &services.UpdateMemberRequest{Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	members, err := f.members.ListMembers(ctx, f.users["alice"].ID, ws.ID)
	require.NoError(t, err)
	var aliceMemberID string
	for _, m := range members {
		if m.UserID == f.users["alice"].ID {
			aliceMemberID = m.ID
		}
	}

	require.NoError(t, f.members.RemoveMember(ctx, f.users["alice"].ID, ws.ID, aliceMemberID))

	_, err = f.workspaces.GetWorkspace(ctx, f.users["alice"].ID, ws.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestOnlyAdminsRemoveMembers(t *testing.T) {
	f := newFixture(t, "alice", "bob", "carol")
	ctx := context.Background()
	ws := f.create(t, "alice")
	bob := f.add(t, ws, "alice", "bob", models.RoleMember)
	carol := f.add(t, ws, "alice", "carol", models.RoleViewer)

	tests := []struct {
		name     string
		caller   string
		memberID string
	}{
		{"member removes viewer", "bob", carol.ID},
		{"member removes self", "bob", bob.ID},
		{"viewer removes self", "carol", carol.ID},
		{"viewer removes member", "carol", bob.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.members.RemoveMember(ctx, f.users[tt.caller].ID, ws.ID, tt.memberID)
			assert.ErrorIs(t, err, domain.ErrForbidden)
		})
	}

	members, err := f.members.ListMembers(ctx, f.users["alice"].ID, ws.ID)
	require.NoError(t, err)
	assert.Len(t, members, 3)

	require.NoError(t, f.members.RemoveMember(ctx, f.users["alice"].ID, ws.ID, carol.ID))
}

func TestRoleChangeTakesEffect(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()
	ws := f.create(t, "alice")
	bob := f.add(t, ws, "alice", "bob", models.RoleAdmin)

	_, err := f.members.UpdateMemberRole(ctx, f.users["alice"].ID, ws.ID, bob.ID, &services.UpdateMemberRequest{Role: "viewer"})
	require.NoError(t, err)

	_, err = f.members.AddMember(ctx, f.users["bob"].ID, ws.ID, &services.AddMemberRequest{Email: "alice@example.com", Role: "viewer"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
