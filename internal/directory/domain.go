package directory

import (
	"time"

	"github.com/meridian-admin/meridian/internal/policy"
)

// Kind identifies an entity collection.
type Kind string

const (
	KindUser       Kind = "users"
	KindGroup      Kind = "groups"
	KindRole       Kind = "roles"
	KindResource   Kind = "resources"
	KindPermission Kind = "permissions"
)

// Ref points at an entity in another collection by identifier. Refs are
// not re-validated on read; a stale ref is tolerated and simply skipped
// during resolution.
type Ref struct {
	ID int64
}

// User represents a managed account.
type User struct {
	ID         int64
	NationalID string
	Name       string
	Groups     []Ref
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// EntityID implements store.Entity.
func (u User) EntityID() int64 { return u.ID }

// Group bundles users and grants them roles.
type Group struct {
	ID          int64
	Name        string
	Description string
	Roles       []Ref
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EntityID implements store.Entity.
func (g Group) EntityID() int64 { return g.ID }

// Role carries an ordered collection of policy tuples plus direct
// resource grants.
type Role struct {
	ID          int64
	Name        string
	Description string
	Policies    []policy.Tuple
	Resources   []Ref
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EntityID implements store.Entity.
func (r Role) EntityID() int64 { return r.ID }

// Resource is something roles grant actions on.
type Resource struct {
	ID          int64
	Name        string
	Category    string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EntityID implements store.Entity.
func (r Resource) EntityID() int64 { return r.ID }

// Permission is a named capability referenced from policy tuples.
type Permission struct {
	ID   int64
	Name string
}

// EntityID implements store.Entity.
func (p Permission) EntityID() int64 { return p.ID }

// RefIDs flattens a ref slice into identifiers.
func RefIDs(refs []Ref) []int64 {
	ids := make([]int64, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID)
	}
	return ids
}

// RefsFromIDs builds refs from identifiers.
func RefsFromIDs(ids []int64) []Ref {
	refs := make([]Ref, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, Ref{ID: id})
	}
	return refs
}
