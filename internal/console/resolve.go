package console

import (
	"context"
	"fmt"
	"sort"

	"github.com/meridian-admin/meridian/internal/resolver"
	"github.com/meridian-admin/meridian/internal/shared"
)

// Resolution is recomputed from the current snapshots on every call and
// cached nowhere. List failures fall back to the stale snapshot, which
// the stores already log; a missing user is the only hard error.

// ResolveUserCapabilities derives the user's effective permission set
// through the group and role snapshots and combines it with the access
// map into a capability context.
func (s *Service) ResolveUserCapabilities(ctx context.Context, userID int64) (resolver.Capabilities, error) {
	users, _ := s.users.List(ctx)
	user, ok := findByID(users, userID)
	if !ok {
		return resolver.Capabilities{}, fmt.Errorf("console: user %d: %w", userID, shared.ErrNotFound)
	}
	groups, _ := s.groups.List(ctx)
	roles, _ := s.roles.List(ctx)
	roleIDs := resolver.EffectiveRoles(user, groups)
	perms := resolver.EffectivePermissions(roleIDs, roles)
	return resolver.NewCapabilities(perms, s.access), nil
}

// EffectivePermissionIDs returns the user's resolved permission
// identifiers in ascending order.
func (s *Service) EffectivePermissionIDs(ctx context.Context, userID int64) ([]int64, error) {
	caps, err := s.ResolveUserCapabilities(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(caps.Permissions()))
	for id := range caps.Permissions() {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Can reports whether the user may perform action on the named resource.
func (s *Service) Can(ctx context.Context, userID int64, resource, action string) (bool, error) {
	caps, err := s.ResolveUserCapabilities(ctx, userID)
	if err != nil {
		return false, err
	}
	return caps.Can(resource, action), nil
}
