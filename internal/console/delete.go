package console

import (
	"context"
	"fmt"

	"github.com/meridian-admin/meridian/internal/directory"
	"github.com/meridian-admin/meridian/internal/guard"
	"github.com/meridian-admin/meridian/internal/shared"
)

// BlockedError reports a delete refused by the referential guard. It is
// a deliberate outcome with an operator-facing explanation, distinct
// from any transport failure. There is no override path.
type BlockedError struct {
	Kind     directory.Kind
	Decision guard.Decision
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("delete %s blocked: %s", e.Kind, e.Decision.Reason)
}

// CanDeleteUser runs the pre-delete check for a user against the current
// snapshots.
func (s *Service) CanDeleteUser(ctx context.Context, id int64) (guard.Decision, error) {
	users, _ := s.users.List(ctx)
	user, ok := findByID(users, id)
	if !ok {
		return guard.Decision{}, fmt.Errorf("console: user %d: %w", id, shared.ErrNotFound)
	}
	groups, _ := s.groups.List(ctx)
	return guard.CanDeleteUser(user, groups), nil
}

// CanDeleteGroup runs the pre-delete check for a group.
func (s *Service) CanDeleteGroup(ctx context.Context, id int64) (guard.Decision, error) {
	groups, _ := s.groups.List(ctx)
	group, ok := findByID(groups, id)
	if !ok {
		return guard.Decision{}, fmt.Errorf("console: group %d: %w", id, shared.ErrNotFound)
	}
	return guard.CanDeleteGroup(group), nil
}

// CanDeleteRole runs the pre-delete check for a role.
func (s *Service) CanDeleteRole(ctx context.Context, id int64) (guard.Decision, error) {
	roles, _ := s.roles.List(ctx)
	role, ok := findByID(roles, id)
	if !ok {
		return guard.Decision{}, fmt.Errorf("console: role %d: %w", id, shared.ErrNotFound)
	}
	return guard.CanDeleteRole(role), nil
}

// CanDeleteResource runs the pre-delete check for a resource.
func (s *Service) CanDeleteResource(ctx context.Context, id int64) (guard.Decision, error) {
	resources, _ := s.resources.List(ctx)
	resource, ok := findByID(resources, id)
	if !ok {
		return guard.Decision{}, fmt.Errorf("console: resource %d: %w", id, shared.ErrNotFound)
	}
	roles, _ := s.roles.List(ctx)
	return guard.CanDeleteResource(resource, roles), nil
}

// CanDeletePermission runs the pre-delete check for a permission.
func (s *Service) CanDeletePermission(ctx context.Context, id int64) (guard.Decision, error) {
	permissions, _ := s.permissions.List(ctx)
	permission, ok := findByID(permissions, id)
	if !ok {
		return guard.Decision{}, fmt.Errorf("console: permission %d: %w", id, shared.ErrNotFound)
	}
	roles, _ := s.roles.List(ctx)
	return guard.CanDeletePermission(permission, roles), nil
}

// DeleteUser removes a user after the guard allows it.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	decision, err := s.CanDeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return &BlockedError{Kind: directory.KindUser, Decision: decision}
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "delete", directory.KindUser, id)
	s.publishInvalidation(ctx, directory.KindUser)
	return nil
}

// DeleteGroup removes a group after the guard allows it.
func (s *Service) DeleteGroup(ctx context.Context, id int64) error {
	decision, err := s.CanDeleteGroup(ctx, id)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return &BlockedError{Kind: directory.KindGroup, Decision: decision}
	}
	if err := s.groups.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "delete", directory.KindGroup, id)
	s.publishInvalidation(ctx, directory.KindGroup)
	return nil
}

// DeleteRole removes a role after the guard allows it.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	decision, err := s.CanDeleteRole(ctx, id)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return &BlockedError{Kind: directory.KindRole, Decision: decision}
	}
	if err := s.roles.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "delete", directory.KindRole, id)
	s.publishInvalidation(ctx, directory.KindRole)
	return nil
}

// DeleteResource removes a resource after the guard allows it.
func (s *Service) DeleteResource(ctx context.Context, id int64) error {
	decision, err := s.CanDeleteResource(ctx, id)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return &BlockedError{Kind: directory.KindResource, Decision: decision}
	}
	if err := s.resources.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "delete", directory.KindResource, id)
	s.publishInvalidation(ctx, directory.KindResource)
	return nil
}

// DeletePermission removes a permission after the guard allows it.
func (s *Service) DeletePermission(ctx context.Context, id int64) error {
	decision, err := s.CanDeletePermission(ctx, id)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return &BlockedError{Kind: directory.KindPermission, Decision: decision}
	}
	if err := s.permissions.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "delete", directory.KindPermission, id)
	s.publishInvalidation(ctx, directory.KindPermission)
	return nil
}

func findByID[E interface{ EntityID() int64 }](entities []E, id int64) (E, bool) {
	for _, entity := range entities {
		if entity.EntityID() == id {
			return entity, true
		}
	}
	var zero E
	return zero, false
}
