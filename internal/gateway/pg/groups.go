package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-admin/meridian/internal/directory"
	"github.com/meridian-admin/meridian/internal/shared"
)

// Groups provides PostgreSQL backed persistence for the group
// collection.
type Groups struct {
	pool *pgxpool.Pool
}

// NewGroups constructs the groups gateway.
func NewGroups(pool *pgxpool.Pool) *Groups {
	return &Groups{pool: pool}
}

// List returns all groups with their role refs attached.
func (g *Groups) List(ctx context.Context) ([]directory.Group, error) {
	rows, err := g.pool.Query(ctx, `SELECT id, name, description, created_at, updated_at FROM groups ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var groups []directory.Group
	index := make(map[int64]int)
	for rows.Next() {
		var group directory.Group
		if err := rows.Scan(&group.ID, &group.Name, &group.Description, &group.CreatedAt, &group.UpdatedAt); err != nil {
			return nil, err
		}
		index[group.ID] = len(groups)
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refRows, err := g.pool.Query(ctx, `SELECT group_id, role_id FROM group_roles ORDER BY group_id, role_id`)
	if err != nil {
		return nil, err
	}
	defer refRows.Close()
	for refRows.Next() {
		var groupID, roleID int64
		if err := refRows.Scan(&groupID, &roleID); err != nil {
			return nil, err
		}
		if i, ok := index[groupID]; ok {
			groups[i].Roles = append(groups[i].Roles, directory.Ref{ID: roleID})
		}
	}
	return groups, refRows.Err()
}

// Create inserts a new group.
func (g *Groups) Create(ctx context.Context, draft directory.Group) (directory.Group, error) {
	var group directory.Group
	err := g.pool.QueryRow(ctx,
		`INSERT INTO groups (name, description) VALUES ($1, $2) RETURNING id, name, description, created_at, updated_at`,
		draft.Name, draft.Description,
	).Scan(&group.ID, &group.Name, &group.Description, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		return directory.Group{}, mutationError(err)
	}
	return group, nil
}

// Update rewrites a group's own fields. Role grants are owned by the
// association endpoint.
func (g *Groups) Update(ctx context.Context, id int64, draft directory.Group) (directory.Group, error) {
	var group directory.Group
	err := g.pool.QueryRow(ctx,
		`UPDATE groups SET name = $2, description = $3, updated_at = NOW() WHERE id = $1 RETURNING id, name, description, created_at, updated_at`,
		id, draft.Name, draft.Description,
	).Scan(&group.ID, &group.Name, &group.Description, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return directory.Group{}, shared.ErrNotFound
		}
		return directory.Group{}, mutationError(err)
	}
	return group, nil
}

// Delete removes a group.
func (g *Groups) Delete(ctx context.Context, id int64) error {
	tag, err := g.pool.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return mutationError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
