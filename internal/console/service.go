package console

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-admin/meridian/internal/assoc"
	"github.com/meridian-admin/meridian/internal/directory"
	"github.com/meridian-admin/meridian/internal/invalidate"
	"github.com/meridian-admin/meridian/internal/resolver"
	"github.com/meridian-admin/meridian/internal/shared"
	"github.com/meridian-admin/meridian/internal/store"
)

// Gateways bundles the data-access collaborator endpoints the console
// consumes: one per entity collection and one per association kind.
type Gateways struct {
	Users       store.Gateway[directory.User]
	Groups      store.Gateway[directory.Group]
	Roles       store.Gateway[directory.Role]
	Resources   store.Gateway[directory.Resource]
	Permissions store.Gateway[directory.Permission]

	UserGroups    assoc.Gateway
	GroupRoles    assoc.Gateway
	RoleResources assoc.Gateway
}

// Service is the mutation and resolution core behind the admin console
// screens. One store per entity kind, replace-semantics association
// managers, pre-delete guard checks, and on-demand permission
// resolution.
type Service struct {
	logger   *slog.Logger
	validate *validator.Validate

	users       *store.Store[directory.User]
	groups      *store.Store[directory.Group]
	roles       *store.Store[directory.Role]
	resources   *store.Store[directory.Resource]
	permissions *store.Store[directory.Permission]

	userGroups    *assoc.Manager
	groupRoles    *assoc.Manager
	roleResources *assoc.Manager

	access        resolver.AccessMap
	audit         shared.AuditSink
	invalidations *invalidate.Broadcaster
}

// Option tweaks optional service collaborators.
type Option func(*Service)

// WithAudit attaches a mutation audit sink.
func WithAudit(sink shared.AuditSink) Option {
	return func(s *Service) { s.audit = sink }
}

// WithInvalidations attaches an invalidation broadcaster.
func WithInvalidations(b *invalidate.Broadcaster) Option {
	return func(s *Service) { s.invalidations = b }
}

// NewService wires the console core over the given gateways. The access
// map is the presentation layer's (resource, action) to permission
// mapping; the core treats it as configuration.
func NewService(logger *slog.Logger, gw Gateways, access resolver.AccessMap, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		logger:        logger,
		validate:      validator.New(),
		users:         store.New(directory.KindUser, gw.Users, logger),
		groups:        store.New(directory.KindGroup, gw.Groups, logger),
		roles:         store.New(directory.KindRole, gw.Roles, logger),
		resources:     store.New(directory.KindResource, gw.Resources, logger),
		permissions:   store.New(directory.KindPermission, gw.Permissions, logger),
		userGroups:    assoc.NewManager("user_groups", gw.UserGroups),
		groupRoles:    assoc.NewManager("group_roles", gw.GroupRoles),
		roleResources: assoc.NewManager("role_resources", gw.RoleResources),
		access:        access,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListUsers fetches the user collection. A fetch failure returns the
// previous snapshot together with the error.
func (s *Service) ListUsers(ctx context.Context) ([]directory.User, error) {
	return s.users.List(ctx)
}

// ListGroups fetches the group collection.
func (s *Service) ListGroups(ctx context.Context) ([]directory.Group, error) {
	return s.groups.List(ctx)
}

// ListRoles fetches the role collection.
func (s *Service) ListRoles(ctx context.Context) ([]directory.Role, error) {
	return s.roles.List(ctx)
}

// ListResources fetches the resource collection.
func (s *Service) ListResources(ctx context.Context) ([]directory.Resource, error) {
	return s.resources.List(ctx)
}

// ListPermissions fetches the permission collection.
func (s *Service) ListPermissions(ctx context.Context) ([]directory.Permission, error) {
	return s.permissions.List(ctx)
}

// RefreshAll re-fetches every entity kind. Kinds are independent, so the
// fetches run concurrently; the first failure is reported.
func (s *Service) RefreshAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.users.Refresh(ctx) })
	g.Go(func() error { return s.groups.Refresh(ctx) })
	g.Go(func() error { return s.roles.Refresh(ctx) })
	g.Go(func() error { return s.resources.Refresh(ctx) })
	g.Go(func() error { return s.permissions.Refresh(ctx) })
	return g.Wait()
}

func (s *Service) recordAudit(ctx context.Context, action string, kind directory.Kind, entityID int64) {
	if s.audit == nil {
		return
	}
	entry := shared.AuditEntry{
		ID:       uuid.New(),
		Actor:    shared.ActorFromContext(ctx),
		Action:   action,
		Kind:     kind,
		EntityID: entityID,
		At:       time.Now().UTC(),
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("audit record", slog.Any("error", err))
	}
}

func (s *Service) publishInvalidation(ctx context.Context, kind directory.Kind) {
	if s.invalidations == nil {
		return
	}
	s.invalidations.Publish(ctx, invalidate.Scope(kind)...)
}
