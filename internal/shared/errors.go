package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrReferenced indicates the backend refused a delete because the
	// record is still referenced elsewhere.
	ErrReferenced = errors.New("still referenced by another record")
)

// UserSafeMessage maps an error to text safe to show an operator.
func UserSafeMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "The record no longer exists. Refresh and try again."
	case errors.Is(err, ErrReferenced):
		return "The record is still referenced by other records and cannot be removed."
	default:
		return "Something went wrong. Please try again."
	}
}
