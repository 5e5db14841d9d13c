package console

import (
	"github.com/meridian-admin/meridian/internal/directory"
	"github.com/meridian-admin/meridian/internal/policy"
)

// Drafts carry the complete desired state as submitted by the
// presentation layer. ID zero means create, anything else means update.
// The *IDs fields are the complete desired association set, never a
// delta.

// UserDraft is the submitted state of a user.
type UserDraft struct {
	ID         int64
	NationalID string `validate:"required"`
	Name       string `validate:"required"`
	GroupIDs   []int64
}

// GroupDraft is the submitted state of a group.
type GroupDraft struct {
	ID          int64
	Name        string `validate:"required"`
	Description string
	RoleIDs     []int64
}

// RoleDraft is the submitted state of a role.
type RoleDraft struct {
	ID          int64
	Name        string `validate:"required"`
	Description string
	Policies    []policy.Tuple
	ResourceIDs []int64
}

// ResourceDraft is the submitted state of a resource.
type ResourceDraft struct {
	ID          int64
	Name        string `validate:"required"`
	Category    string
	Description string
}

// PermissionDraft is the submitted state of a permission.
type PermissionDraft struct {
	ID   int64
	Name string `validate:"required"`
}

func (d UserDraft) entity() directory.User {
	return directory.User{ID: d.ID, NationalID: d.NationalID, Name: d.Name}
}

func (d GroupDraft) entity() directory.Group {
	return directory.Group{ID: d.ID, Name: d.Name, Description: d.Description}
}

func (d RoleDraft) entity() directory.Role {
	return directory.Role{ID: d.ID, Name: d.Name, Description: d.Description, Policies: d.Policies}
}

func (d ResourceDraft) entity() directory.Resource {
	return directory.Resource{ID: d.ID, Name: d.Name, Category: d.Category, Description: d.Description}
}

func (d PermissionDraft) entity() directory.Permission {
	return directory.Permission{ID: d.ID, Name: d.Name}
}
