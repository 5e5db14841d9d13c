package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-admin/meridian/internal/directory"
	"github.com/meridian-admin/meridian/internal/shared"
)

// Resources provides PostgreSQL backed persistence for the resource
// collection.
type Resources struct {
	pool *pgxpool.Pool
}

// NewResources constructs the resources gateway.
func NewResources(pool *pgxpool.Pool) *Resources {
	return &Resources{pool: pool}
}

// List returns all resources.
func (g *Resources) List(ctx context.Context) ([]directory.Resource, error) {
	rows, err := g.pool.Query(ctx, `SELECT id, name, category, description, created_at, updated_at FROM resources ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var resources []directory.Resource
	for rows.Next() {
		var resource directory.Resource
		if err := rows.Scan(&resource.ID, &resource.Name, &resource.Category, &resource.Description, &resource.CreatedAt, &resource.UpdatedAt); err != nil {
			return nil, err
		}
		resources = append(resources, resource)
	}
	return resources, rows.Err()
}

// Create inserts a new resource.
func (g *Resources) Create(ctx context.Context, draft directory.Resource) (directory.Resource, error) {
	var resource directory.Resource
	err := g.pool.QueryRow(ctx,
		`INSERT INTO resources (name, category, description) VALUES ($1, $2, $3) RETURNING id, name, category, description, created_at, updated_at`,
		draft.Name, draft.Category, draft.Description,
	).Scan(&resource.ID, &resource.Name, &resource.Category, &resource.Description, &resource.CreatedAt, &resource.UpdatedAt)
	if err != nil {
		return directory.Resource{}, mutationError(err)
	}
	return resource, nil
}

// Update rewrites a resource.
func (g *Resources) Update(ctx context.Context, id int64, draft directory.Resource) (directory.Resource, error) {
	var resource directory.Resource
	err := g.pool.QueryRow(ctx,
		`UPDATE resources SET name = $2, category = $3, description = $4, updated_at = NOW() WHERE id = $1 RETURNING id, name, category, description, created_at, updated_at`,
		id, draft.Name, draft.Category, draft.Description,
	).Scan(&resource.ID, &resource.Name, &resource.Category, &resource.Description, &resource.CreatedAt, &resource.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return directory.Resource{}, shared.ErrNotFound
		}
		return directory.Resource{}, mutationError(err)
	}
	return resource, nil
}

// Delete removes a resource.
func (g *Resources) Delete(ctx context.Context, id int64) error {
	tag, err := g.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return mutationError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
