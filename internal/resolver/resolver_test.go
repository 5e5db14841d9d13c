package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-admin/meridian/internal/directory"
	"github.com/meridian-admin/meridian/internal/policy"
)

func TestEffectiveRolesUnionsAndDeduplicates(t *testing.T) {
	user := directory.User{ID: 1, Groups: []directory.Ref{{ID: 1}, {ID: 2}}}
	groups := []directory.Group{
		{ID: 1, Roles: []directory.Ref{{ID: 10}, {ID: 11}}},
		{ID: 2, Roles: []directory.Ref{{ID: 11}, {ID: 12}}},
	}

	roles := EffectiveRoles(user, groups)
	require.Len(t, roles, 3)
	for _, id := range []int64{10, 11, 12} {
		require.True(t, roles.Contains(id))
	}

	// Invariant to snapshot order.
	reversed := []directory.Group{groups[1], groups[0]}
	require.Equal(t, roles, EffectiveRoles(user, reversed))
}

func TestEffectiveRolesSkipsStaleGroupRefs(t *testing.T) {
	user := directory.User{ID: 1, Groups: []directory.Ref{{ID: 1}, {ID: 99}}}
	groups := []directory.Group{{ID: 1, Roles: []directory.Ref{{ID: 10}}}}

	roles := EffectiveRoles(user, groups)
	require.Len(t, roles, 1)
	require.True(t, roles.Contains(10))
}

func TestEffectiveRolesEmptyMembership(t *testing.T) {
	roles := EffectiveRoles(directory.User{ID: 1}, []directory.Group{{ID: 1, Roles: []directory.Ref{{ID: 10}}}})
	require.Empty(t, roles)
	require.Empty(t, EffectivePermissions(roles, []directory.Role{{ID: 10, Policies: []policy.Tuple{{Action: policy.Encode(5)}}}}))
}

func TestEffectivePermissionsDecodesTuples(t *testing.T) {
	roleIDs := IDSet{10: {}}
	roles := []directory.Role{
		{ID: 10, Policies: []policy.Tuple{
			{Subject: "g::1", Object: "r::*", Action: policy.Encode(5)},
			{Subject: "g::1", Object: "r::*", Action: "legacy-opaque"},
			{Subject: "g::1", Object: "r::2", Action: policy.Encode(5)},
		}},
		{ID: 20, Policies: []policy.Tuple{{Action: policy.Encode(9)}}},
	}

	perms := EffectivePermissions(roleIDs, roles)
	require.Len(t, perms, 1)
	require.True(t, perms.Contains(5), "opaque tuples ignored, unlisted roles ignored, duplicates collapsed")
}

func TestEndToEndResolution(t *testing.T) {
	user := directory.User{ID: 1, Groups: []directory.Ref{{ID: 1}}}
	groups := []directory.Group{{ID: 1, Roles: []directory.Ref{{ID: 10}}}}
	roles := []directory.Role{{ID: 10, Policies: []policy.Tuple{{Subject: "g::1", Object: "r::*", Action: "permission::5"}}}}

	perms := EffectivePermissions(EffectiveRoles(user, groups), roles)
	require.Len(t, perms, 1)
	require.True(t, perms.Contains(5))
}

func TestCapabilitiesCan(t *testing.T) {
	access := AccessMap{
		{Resource: "users", Action: "view"}: {1, 5},
		{Resource: "users", Action: "edit"}: {2},
	}
	caps := NewCapabilities(IDSet{5: {}}, access)

	require.True(t, caps.Can("users", "view"), "any-of over required permissions")
	require.False(t, caps.Can("users", "edit"))
	require.False(t, caps.Can("reports", "view"), "unmapped pairs denied")

	empty := NewCapabilities(IDSet{}, access)
	require.False(t, empty.Can("users", "view"))
}
