package guard

import (
	"fmt"

	"github.com/meridian-admin/meridian/internal/directory"
	"github.com/meridian-admin/meridian/internal/policy"
	"github.com/meridian-admin/meridian/internal/resolver"
)

// Decision is the outcome of a pre-delete check. A block is an expected
// outcome with an explanation for the operator, never a transport error.
// The guard has no side effects; the check-then-delete race is accepted
// and a server-side rejection surfaces as an ordinary mutation error.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func block(format string, args ...any) Decision {
	return Decision{Reason: fmt.Sprintf(format, args...)}
}

// CanDeleteGroup blocks while the group still grants any role.
func CanDeleteGroup(g directory.Group) Decision {
	if n := len(g.Roles); n > 0 {
		return block("group %q still grants %d role(s); remove them first", g.Name, n)
	}
	return allow()
}

// CanDeleteUser blocks while the user belongs to any group or derives
// any role through one. The membership count is taken from the user's
// own field and is not re-validated against the group snapshot.
func CanDeleteUser(u directory.User, groups []directory.Group) Decision {
	if n := len(u.Groups); n > 0 {
		return block("user %q still belongs to %d group(s); remove the memberships first", u.Name, n)
	}
	if roles := resolver.EffectiveRoles(u, groups); len(roles) > 0 {
		return block("user %q still derives %d role(s) through group membership", u.Name, len(roles))
	}
	return allow()
}

// CanDeleteResource blocks while any role grants the resource.
func CanDeleteResource(res directory.Resource, roles []directory.Role) Decision {
	for _, role := range roles {
		for _, ref := range role.Resources {
			if ref.ID == res.ID {
				return block("resource %q is still granted by role %q", res.Name, role.Name)
			}
		}
	}
	return allow()
}

// CanDeleteRole blocks while the role carries any policy tuple. Clearing
// the policies and retrying is the unblock path; nothing cascades.
func CanDeleteRole(r directory.Role) Decision {
	if n := len(r.Policies); n > 0 {
		return block("role %q still carries %d policy assignment(s); clear them first", r.Name, n)
	}
	return allow()
}

// CanDeletePermission blocks while any role's policy tuples reference
// the permission.
func CanDeletePermission(p directory.Permission, roles []directory.Role) Decision {
	for _, role := range roles {
		for _, tuple := range role.Policies {
			if id, ok := policy.DecodeAction(tuple).PermissionID(); ok && id == p.ID {
				return block("permission %q is still assigned to role %q", p.Name, role.Name)
			}
		}
	}
	return allow()
}
