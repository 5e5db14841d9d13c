package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-admin/meridian/internal/directory"
	"github.com/meridian-admin/meridian/internal/shared"
)

// Users provides PostgreSQL backed persistence for the user collection.
type Users struct {
	pool *pgxpool.Pool
}

// NewUsers constructs the users gateway.
func NewUsers(pool *pgxpool.Pool) *Users {
	return &Users{pool: pool}
}

// List returns all users with their group refs attached.
func (g *Users) List(ctx context.Context) ([]directory.User, error) {
	rows, err := g.pool.Query(ctx, `SELECT id, national_id, name, created_at, updated_at FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []directory.User
	index := make(map[int64]int)
	for rows.Next() {
		var user directory.User
		if err := rows.Scan(&user.ID, &user.NationalID, &user.Name, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		index[user.ID] = len(users)
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refRows, err := g.pool.Query(ctx, `SELECT user_id, group_id FROM user_groups ORDER BY user_id, group_id`)
	if err != nil {
		return nil, err
	}
	defer refRows.Close()
	for refRows.Next() {
		var userID, groupID int64
		if err := refRows.Scan(&userID, &groupID); err != nil {
			return nil, err
		}
		if i, ok := index[userID]; ok {
			users[i].Groups = append(users[i].Groups, directory.Ref{ID: groupID})
		}
	}
	return users, refRows.Err()
}

// Create inserts a new user.
func (g *Users) Create(ctx context.Context, draft directory.User) (directory.User, error) {
	var user directory.User
	err := g.pool.QueryRow(ctx,
		`INSERT INTO users (national_id, name) VALUES ($1, $2) RETURNING id, national_id, name, created_at, updated_at`,
		draft.NationalID, draft.Name,
	).Scan(&user.ID, &user.NationalID, &user.Name, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return directory.User{}, mutationError(err)
	}
	return user, nil
}

// Update rewrites a user's own fields. Group membership is owned by the
// association endpoint.
func (g *Users) Update(ctx context.Context, id int64, draft directory.User) (directory.User, error) {
	var user directory.User
	err := g.pool.QueryRow(ctx,
		`UPDATE users SET national_id = $2, name = $3, updated_at = NOW() WHERE id = $1 RETURNING id, national_id, name, created_at, updated_at`,
		id, draft.NationalID, draft.Name,
	).Scan(&user.ID, &user.NationalID, &user.Name, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return directory.User{}, shared.ErrNotFound
		}
		return directory.User{}, mutationError(err)
	}
	return user, nil
}

// Delete removes a user.
func (g *Users) Delete(ctx context.Context, id int64) error {
	tag, err := g.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mutationError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
