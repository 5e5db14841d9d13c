package guard

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-admin/meridian/internal/directory"
	"github.com/meridian-admin/meridian/internal/policy"
)

func TestCanDeleteGroup(t *testing.T) {
	blocked := CanDeleteGroup(directory.Group{ID: 1, Name: "Ops", Roles: []directory.Ref{{ID: 1}}})
	require.False(t, blocked.Allowed)
	require.NotEmpty(t, blocked.Reason)

	allowed := CanDeleteGroup(directory.Group{ID: 2, Name: "Empty"})
	require.True(t, allowed.Allowed)
	require.Empty(t, allowed.Reason)
}

func TestCanDeleteUserMembership(t *testing.T) {
	allowed := CanDeleteUser(directory.User{ID: 1, Name: "free"}, nil)
	require.True(t, allowed.Allowed)

	// Membership count comes from the user's own field; group 7 not
	// existing in the snapshot changes nothing.
	blocked := CanDeleteUser(directory.User{ID: 2, Name: "member", Groups: []directory.Ref{{ID: 7}}}, nil)
	require.False(t, blocked.Allowed)

	groups := []directory.Group{{ID: 7, Roles: []directory.Ref{{ID: 3}}}}
	stillBlocked := CanDeleteUser(directory.User{ID: 2, Name: "member", Groups: []directory.Ref{{ID: 7}}}, groups)
	require.False(t, stillBlocked.Allowed)
}

func TestCanDeleteRole(t *testing.T) {
	role := directory.Role{ID: 1, Name: "admin", Policies: []policy.Tuple{{Subject: "g::1", Object: "r::*", Action: policy.Encode(5)}}}
	require.False(t, CanDeleteRole(role).Allowed)

	role.Policies = nil
	require.True(t, CanDeleteRole(role).Allowed)
}

func TestCanDeleteResource(t *testing.T) {
	res := directory.Resource{ID: 4, Name: "reports"}
	roles := []directory.Role{{ID: 1, Name: "viewer", Resources: []directory.Ref{{ID: 4}}}}
	require.False(t, CanDeleteResource(res, roles).Allowed)

	roles[0].Resources = []directory.Ref{{ID: 9}}
	require.True(t, CanDeleteResource(res, roles).Allowed)
	require.True(t, CanDeleteResource(res, nil).Allowed)
}

func TestCanDeletePermission(t *testing.T) {
	perm := directory.Permission{ID: 5, Name: "users.edit"}
	roles := []directory.Role{{ID: 1, Name: "admin", Policies: []policy.Tuple{{Action: policy.Encode(5)}}}}
	require.False(t, CanDeletePermission(perm, roles).Allowed)

	// Opaque tuples and other permission refs do not count.
	roles[0].Policies = []policy.Tuple{{Action: "legacy-flag"}, {Action: policy.Encode(6)}}
	require.True(t, CanDeletePermission(perm, roles).Allowed)
}
