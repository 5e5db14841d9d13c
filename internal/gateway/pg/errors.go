package pg

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/meridian-admin/meridian/internal/shared"
)

// mutationError maps backend constraint violations onto the shared
// sentinels. A foreign-key rejection here is the server-side outcome of
// the guard-check race and must read like an ordinary mutation error.
func mutationError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return fmt.Errorf("%w: %s", shared.ErrReferenced, pgErr.ConstraintName)
		case "23505":
			return fmt.Errorf("duplicate value violates %s", pgErr.ConstraintName)
		}
	}
	return err
}
