package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-admin/meridian/internal/directory"
	"github.com/meridian-admin/meridian/internal/policy"
	"github.com/meridian-admin/meridian/internal/shared"
)

// Roles provides PostgreSQL backed persistence for the role collection.
// Policy tuples live in role_policies and are written together with the
// role row; the resource grants are owned by the association endpoint.
type Roles struct {
	pool *pgxpool.Pool
}

// NewRoles constructs the roles gateway.
func NewRoles(pool *pgxpool.Pool) *Roles {
	return &Roles{pool: pool}
}

// List returns all roles with their ordered policy tuples and resource
// refs attached.
func (g *Roles) List(ctx context.Context) ([]directory.Role, error) {
	rows, err := g.pool.Query(ctx, `SELECT id, name, description, created_at, updated_at FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []directory.Role
	index := make(map[int64]int)
	for rows.Next() {
		var role directory.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		index[role.ID] = len(roles)
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	policyRows, err := g.pool.Query(ctx, `SELECT role_id, subject, object, action FROM role_policies ORDER BY role_id, ordinal`)
	if err != nil {
		return nil, err
	}
	defer policyRows.Close()
	for policyRows.Next() {
		var roleID int64
		var tuple policy.Tuple
		if err := policyRows.Scan(&roleID, &tuple.Subject, &tuple.Object, &tuple.Action); err != nil {
			return nil, err
		}
		if i, ok := index[roleID]; ok {
			roles[i].Policies = append(roles[i].Policies, tuple)
		}
	}
	if err := policyRows.Err(); err != nil {
		return nil, err
	}

	refRows, err := g.pool.Query(ctx, `SELECT role_id, resource_id FROM role_resources ORDER BY role_id, resource_id`)
	if err != nil {
		return nil, err
	}
	defer refRows.Close()
	for refRows.Next() {
		var roleID, resourceID int64
		if err := refRows.Scan(&roleID, &resourceID); err != nil {
			return nil, err
		}
		if i, ok := index[roleID]; ok {
			roles[i].Resources = append(roles[i].Resources, directory.Ref{ID: resourceID})
		}
	}
	return roles, refRows.Err()
}

// Create inserts a new role together with its policy tuples.
func (g *Roles) Create(ctx context.Context, draft directory.Role) (directory.Role, error) {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return directory.Role{}, err
	}
	defer tx.Rollback(ctx)

	var role directory.Role
	err = tx.QueryRow(ctx,
		`INSERT INTO roles (name, description) VALUES ($1, $2) RETURNING id, name, description, created_at, updated_at`,
		draft.Name, draft.Description,
	).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return directory.Role{}, mutationError(err)
	}
	if err := writePolicies(ctx, tx, role.ID, draft.Policies); err != nil {
		return directory.Role{}, mutationError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return directory.Role{}, err
	}
	role.Policies = draft.Policies
	return role, nil
}

// Update rewrites a role's own fields and replaces its policy tuples.
func (g *Roles) Update(ctx context.Context, id int64, draft directory.Role) (directory.Role, error) {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return directory.Role{}, err
	}
	defer tx.Rollback(ctx)

	var role directory.Role
	err = tx.QueryRow(ctx,
		`UPDATE roles SET name = $2, description = $3, updated_at = NOW() WHERE id = $1 RETURNING id, name, description, created_at, updated_at`,
		id, draft.Name, draft.Description,
	).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return directory.Role{}, shared.ErrNotFound
		}
		return directory.Role{}, mutationError(err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM role_policies WHERE role_id = $1`, id); err != nil {
		return directory.Role{}, err
	}
	if err := writePolicies(ctx, tx, id, draft.Policies); err != nil {
		return directory.Role{}, mutationError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return directory.Role{}, err
	}
	role.Policies = draft.Policies
	return role, nil
}

// Delete removes a role. Policy rows cascade in the schema.
func (g *Roles) Delete(ctx context.Context, id int64) error {
	tag, err := g.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return mutationError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func writePolicies(ctx context.Context, tx pgx.Tx, roleID int64, policies []policy.Tuple) error {
	for i, tuple := range policies {
		if _, err := tx.Exec(ctx,
			`INSERT INTO role_policies (role_id, ordinal, subject, object, action) VALUES ($1, $2, $3, $4, $5)`,
			roleID, i, tuple.Subject, tuple.Object, tuple.Action,
		); err != nil {
			return err
		}
	}
	return nil
}
