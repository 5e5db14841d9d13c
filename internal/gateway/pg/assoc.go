package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Association replaces the full related set of one join table inside a
// transaction: delete everything for the owner, reinsert the target set.
// Replaying the same set is a no-op by construction.
type Association struct {
	pool       *pgxpool.Pool
	table      string
	ownerCol   string
	relatedCol string
}

// NewUserGroups builds the user → group membership replacer.
func NewUserGroups(pool *pgxpool.Pool) *Association {
	return &Association{pool: pool, table: "user_groups", ownerCol: "user_id", relatedCol: "group_id"}
}

// NewGroupRoles builds the group → role grant replacer.
func NewGroupRoles(pool *pgxpool.Pool) *Association {
	return &Association{pool: pool, table: "group_roles", ownerCol: "group_id", relatedCol: "role_id"}
}

// NewRoleResources builds the role → resource grant replacer.
func NewRoleResources(pool *pgxpool.Pool) *Association {
	return &Association{pool: pool, table: "role_resources", ownerCol: "role_id", relatedCol: "resource_id"}
}

// Replace sets the owner's related set to exactly relatedIDs.
func (a *Association) Replace(ctx context.Context, ownerID int64, relatedIDs []int64) error {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, a.table, a.ownerCol), ownerID,
	); err != nil {
		return mutationError(err)
	}
	for _, relatedID := range relatedIDs {
		if _, err := tx.Exec(ctx,
			fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2)`, a.table, a.ownerCol, a.relatedCol),
			ownerID, relatedID,
		); err != nil {
			return mutationError(err)
		}
	}
	return tx.Commit(ctx)
}
