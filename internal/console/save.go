package console

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/meridian-admin/meridian/internal/directory"
	"github.com/meridian-admin/meridian/internal/store"
)

// Composite saves write the entity first, then replace its association
// set. The two steps are strictly ordered and deliberately not atomic:
// when the replace fails after a successful entity write, the saved
// entity is returned together with an *assoc.ReplaceError so the caller
// can tell "saved but associations stale" apart from a failed save.
// Nothing is retried or rolled back here.

// SaveUser creates or updates a user, then sets its group membership to
// exactly draft.GroupIDs.
func (s *Service) SaveUser(ctx context.Context, draft UserDraft) (directory.User, error) {
	if err := s.validate.Struct(draft); err != nil {
		return directory.User{}, fmt.Errorf("console: user draft: %w", err)
	}
	saved, err := saveEntity(ctx, s.users, draft.ID, draft.entity())
	if err != nil {
		return directory.User{}, err
	}
	s.recordAudit(ctx, saveAction(draft.ID), directory.KindUser, saved.ID)
	if err := s.userGroups.Replace(ctx, saved.ID, draft.GroupIDs); err != nil {
		return saved, err
	}
	s.recordAudit(ctx, "replace:user_groups", directory.KindUser, saved.ID)
	saved.Groups = directory.RefsFromIDs(draft.GroupIDs)
	s.refreshAfterSave(ctx, s.users.Refresh, directory.KindUser)
	return saved, nil
}

// SaveGroup creates or updates a group, then sets its role grants to
// exactly draft.RoleIDs.
func (s *Service) SaveGroup(ctx context.Context, draft GroupDraft) (directory.Group, error) {
	if err := s.validate.Struct(draft); err != nil {
		return directory.Group{}, fmt.Errorf("console: group draft: %w", err)
	}
	saved, err := saveEntity(ctx, s.groups, draft.ID, draft.entity())
	if err != nil {
		return directory.Group{}, err
	}
	s.recordAudit(ctx, saveAction(draft.ID), directory.KindGroup, saved.ID)
	if err := s.groupRoles.Replace(ctx, saved.ID, draft.RoleIDs); err != nil {
		return saved, err
	}
	s.recordAudit(ctx, "replace:group_roles", directory.KindGroup, saved.ID)
	saved.Roles = directory.RefsFromIDs(draft.RoleIDs)
	s.refreshAfterSave(ctx, s.groups.Refresh, directory.KindGroup)
	return saved, nil
}

// SaveRole creates or updates a role, policies included, then sets its
// direct resource grants to exactly draft.ResourceIDs.
func (s *Service) SaveRole(ctx context.Context, draft RoleDraft) (directory.Role, error) {
	if err := s.validate.Struct(draft); err != nil {
		return directory.Role{}, fmt.Errorf("console: role draft: %w", err)
	}
	saved, err := saveEntity(ctx, s.roles, draft.ID, draft.entity())
	if err != nil {
		return directory.Role{}, err
	}
	s.recordAudit(ctx, saveAction(draft.ID), directory.KindRole, saved.ID)
	if err := s.roleResources.Replace(ctx, saved.ID, draft.ResourceIDs); err != nil {
		return saved, err
	}
	s.recordAudit(ctx, "replace:role_resources", directory.KindRole, saved.ID)
	saved.Resources = directory.RefsFromIDs(draft.ResourceIDs)
	s.refreshAfterSave(ctx, s.roles.Refresh, directory.KindRole)
	return saved, nil
}

// SaveResource creates or updates a resource. Resources carry no
// association set of their own.
func (s *Service) SaveResource(ctx context.Context, draft ResourceDraft) (directory.Resource, error) {
	if err := s.validate.Struct(draft); err != nil {
		return directory.Resource{}, fmt.Errorf("console: resource draft: %w", err)
	}
	saved, err := saveEntity(ctx, s.resources, draft.ID, draft.entity())
	if err != nil {
		return directory.Resource{}, err
	}
	s.recordAudit(ctx, saveAction(draft.ID), directory.KindResource, saved.ID)
	s.publishInvalidation(ctx, directory.KindResource)
	return saved, nil
}

// SavePermission creates or updates a permission.
func (s *Service) SavePermission(ctx context.Context, draft PermissionDraft) (directory.Permission, error) {
	if err := s.validate.Struct(draft); err != nil {
		return directory.Permission{}, fmt.Errorf("console: permission draft: %w", err)
	}
	saved, err := saveEntity(ctx, s.permissions, draft.ID, draft.entity())
	if err != nil {
		return directory.Permission{}, err
	}
	s.recordAudit(ctx, saveAction(draft.ID), directory.KindPermission, saved.ID)
	s.publishInvalidation(ctx, directory.KindPermission)
	return saved, nil
}

// refreshAfterSave re-fetches the owning collection, since the
// association endpoint changed state the entity endpoint owns a view of,
// and announces staleness to dependent views. Both are best-effort; a
// stale snapshot self-heals on the next list.
func (s *Service) refreshAfterSave(ctx context.Context, refresh func(context.Context) error, kind directory.Kind) {
	if err := refresh(ctx); err != nil {
		s.logger.Warn("refresh after save", slog.String("kind", string(kind)), slog.Any("error", err))
	}
	s.publishInvalidation(ctx, kind)
}

func saveEntity[E store.Entity](ctx context.Context, st *store.Store[E], id int64, draft E) (E, error) {
	if id == 0 {
		return st.Create(ctx, draft)
	}
	return st.Update(ctx, id, draft)
}

func saveAction(id int64) string {
	if id == 0 {
		return "create"
	}
	return "update"
}
