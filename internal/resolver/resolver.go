package resolver

import (
	"github.com/meridian-admin/meridian/internal/directory"
	"github.com/meridian-admin/meridian/internal/policy"
)

// IDSet is a deduplicated identifier set.
type IDSet map[int64]struct{}

// Contains reports membership.
func (s IDSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// EffectiveRoles derives the user's role set through group membership:
// the union of role refs across all groups the user belongs to. A group
// ref that no longer exists in the snapshot contributes nothing; stale
// membership is tolerated, not an error. The result is independent of
// the order groups are listed.
func EffectiveRoles(user directory.User, groups []directory.Group) IDSet {
	byID := make(map[int64]directory.Group, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}
	roles := make(IDSet)
	for _, ref := range user.Groups {
		g, ok := byID[ref.ID]
		if !ok {
			continue
		}
		for _, roleRef := range g.Roles {
			roles[roleRef.ID] = struct{}{}
		}
	}
	return roles
}

// EffectivePermissions extracts the deduplicated permission identifiers
// from the policy tuples of every role in roleIDs. Tuples whose action
// field decodes to an opaque payload are skipped; they belong to other
// subsystems.
func EffectivePermissions(roleIDs IDSet, roles []directory.Role) IDSet {
	perms := make(IDSet)
	for _, role := range roles {
		if !roleIDs.Contains(role.ID) {
			continue
		}
		for _, tuple := range role.Policies {
			if id, ok := policy.DecodeAction(tuple).PermissionID(); ok {
				perms[id] = struct{}{}
			}
		}
	}
	return perms
}

// ActionKey names an operation on a resource as the presentation layer
// labels it.
type ActionKey struct {
	Resource string
	Action   string
}

// AccessMap is externally supplied configuration mapping a resource and
// action to the permission identifiers that grant it. An operation is
// allowed when the actor holds at least one of them.
type AccessMap map[ActionKey][]int64

// Capabilities is the capability context for one actor, computed once
// per resolution and passed to whatever needs a can-this-actor-do-X
// answer.
type Capabilities struct {
	perms  IDSet
	access AccessMap
}

// NewCapabilities combines a resolved permission set with the access
// configuration.
func NewCapabilities(perms IDSet, access AccessMap) Capabilities {
	return Capabilities{perms: perms, access: access}
}

// Permissions returns the resolved permission set.
func (c Capabilities) Permissions() IDSet { return c.perms }

// Can reports whether the actor may perform action on the named
// resource. Pairs absent from the access map are denied.
func (c Capabilities) Can(resource, action string) bool {
	required, ok := c.access[ActionKey{Resource: resource, Action: action}]
	if !ok {
		return false
	}
	for _, id := range required {
		if c.perms.Contains(id) {
			return true
		}
	}
	return false
}
