package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"tickbug-backend/internal/authz"
)

func TestEveryActionHasARule(t *testing.T) {
	for _, action := range authz.Actions() {
		allowed := false
		for _, role := range authz.Roles {
			if authz.Allowed(action, role, authz.Subject{ActorID: 1, OwnerID: 1}) {
				allowed = true
				break
			}
		}
		assert.True(t, allowed, "action %s has no permitted role", action)
		assert.NotEqual(t, "unknown", action.String())
	}
}

func TestOnlyOwnerArchivesAndDeletes(t *testing.T) {
	for _, role := range authz.Roles {
		want := role == authz.RoleOwner
		assert.Equal(t, want, authz.CanPerform(authz.ArchiveProject, role), role)
		assert.Equal(t, want, authz.CanPerform(authz.DeleteProject, role), role)
	}
}

func TestViewerIsReadOnly(t *testing.T) {
	assert.True(t, authz.CanPerform(authz.ViewProject, authz.RoleViewer))
	for _, action := range authz.Actions() {
		if action == authz.ViewProject {
			continue
		}
		assert.False(t, authz.Allowed(action, authz.RoleViewer, authz.Subject{ActorID: 7, OwnerID: 7}), action.String())
	}
}

func TestTesterEditsOnlyOwnTickets(t *testing.T) {
	assert.False(t, authz.CanPerform(authz.EditTicket, authz.RoleTester))

	own := authz.Subject{ActorID: 5, OwnerID: 5}
	other := authz.Subject{ActorID: 5, OwnerID: 9}

	assert.NoError(t, authz.Check(authz.EditTicket, authz.RoleTester, own))
	assert.NoError(t, authz.Check(authz.DeleteTicket, authz.RoleTester, own))
	assert.ErrorIs(t, authz.Check(authz.EditTicket, authz.RoleTester, other), authz.ErrPermissionDenied)
	assert.ErrorIs(t, authz.Check(authz.DeleteTicket, authz.RoleTester, other), authz.ErrPermissionDenied)

	// Developers are not restricted to their own tickets.
	assert.NoError(t, authz.Check(authz.EditTicket, authz.RoleDeveloper, other))
}

func TestZeroOwnerNeverOwns(t *testing.T) {
	assert.False(t, authz.Subject{}.Owns())
	assert.False(t, authz.Allowed(authz.EditComment, authz.RoleDeveloper, authz.Subject{}))
}

func TestCheckRoleChange(t *testing.T) {
	tests := []struct {
		name   string
		actor  authz.Role
		from   authz.Role
		to     authz.Role
		owners int
		want   error
	}{
		{"pm promotes developer", authz.RoleProjectManager, authz.RoleDeveloper, authz.RoleReviewer, 1, nil},
		{"pm cannot grant owner", authz.RoleProjectManager, authz.RoleDeveloper, authz.RoleOwner, 1, authz.ErrPermissionDenied},
		{"pm cannot demote owner", authz.RoleProjectManager, authz.RoleOwner, authz.RoleViewer, 2, authz.ErrPermissionDenied},
		{"owner grants owner", authz.RoleOwner, authz.RoleDeveloper, authz.RoleOwner, 1, nil},
		{"owner demotes one of two owners", authz.RoleOwner, authz.RoleOwner, authz.RoleDeveloper, 2, nil},
		{"owner cannot demote last owner", authz.RoleOwner, authz.RoleOwner, authz.RoleDeveloper, 1, authz.ErrLastOwner},
		{"developer cannot change roles", authz.RoleDeveloper, authz.RoleTester, authz.RoleViewer, 1, authz.ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authz.CheckRoleChange(tt.actor, tt.from, tt.to, tt.owners)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestCheckRemoval(t *testing.T) {
	// Two owners: one may leave.
	assert.NoError(t, authz.CheckRemoval(1, authz.RoleOwner, 1, authz.RoleOwner, 2))
	// Sole owner may not leave.
	assert.ErrorIs(t, authz.CheckRemoval(2, authz.RoleOwner, 2, authz.RoleOwner, 1), authz.ErrLastOwner)
	// A PM may not remove an owner.
	assert.ErrorIs(t, authz.CheckRemoval(3, authz.RoleProjectManager, 1, authz.RoleOwner, 2), authz.ErrPermissionDenied)
	// Any member may leave.
	assert.NoError(t, authz.CheckRemoval(4, authz.RoleViewer, 4, authz.RoleViewer, 1))
	// A developer may not remove others.
	assert.ErrorIs(t, authz.CheckRemoval(4, authz.RoleDeveloper, 5, authz.RoleTester, 1), authz.ErrPermissionDenied)
}

func TestCheckGrant(t *testing.T) {
	assert.NoError(t, authz.CheckGrant(authz.RoleOwner, authz.RoleOwner))
	assert.NoError(t, authz.CheckGrant(authz.RoleProjectManager, authz.RoleDeveloper))
	assert.ErrorIs(t, authz.CheckGrant(authz.RoleProjectManager, authz.RoleOwner), authz.ErrPermissionDenied)
	assert.ErrorIs(t, authz.CheckGrant(authz.RoleTester, authz.RoleViewer), authz.ErrPermissionDenied)
}

func TestParseRole(t *testing.T) {
	r, ok := authz.ParseRole("project manager")
	assert.True(t, ok)
	assert.Equal(t, authz.RoleProjectManager, r)

	_, ok = authz.ParseRole("Admin")
	assert.False(t, ok)
}
