package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-admin/meridian/internal/directory"
	"github.com/meridian-admin/meridian/internal/shared"
)

// Permissions provides PostgreSQL backed persistence for the permission
// collection.
type Permissions struct {
	pool *pgxpool.Pool
}

// NewPermissions constructs the permissions gateway.
func NewPermissions(pool *pgxpool.Pool) *Permissions {
	return &Permissions{pool: pool}
}

// List returns all permissions.
func (g *Permissions) List(ctx context.Context) ([]directory.Permission, error) {
	rows, err := g.pool.Query(ctx, `SELECT id, name FROM permissions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var permissions []directory.Permission
	for rows.Next() {
		var permission directory.Permission
		if err := rows.Scan(&permission.ID, &permission.Name); err != nil {
			return nil, err
		}
		permissions = append(permissions, permission)
	}
	return permissions, rows.Err()
}

// Create inserts a new permission.
func (g *Permissions) Create(ctx context.Context, draft directory.Permission) (directory.Permission, error) {
	var permission directory.Permission
	err := g.pool.QueryRow(ctx,
		`INSERT INTO permissions (name) VALUES ($1) RETURNING id, name`,
		draft.Name,
	).Scan(&permission.ID, &permission.Name)
	if err != nil {
		return directory.Permission{}, mutationError(err)
	}
	return permission, nil
}

// Update rewrites a permission.
func (g *Permissions) Update(ctx context.Context, id int64, draft directory.Permission) (directory.Permission, error) {
	var permission directory.Permission
	err := g.pool.QueryRow(ctx,
		`UPDATE permissions SET name = $2 WHERE id = $1 RETURNING id, name`,
		id, draft.Name,
	).Scan(&permission.ID, &permission.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return directory.Permission{}, shared.ErrNotFound
		}
		return directory.Permission{}, mutationError(err)
	}
	return permission, nil
}

// Delete removes a permission.
func (g *Permissions) Delete(ctx context.Context, id int64) error {
	tag, err := g.pool.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		return mutationError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
