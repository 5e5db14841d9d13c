package assoc

import (
	"context"
	"fmt"
	"sort"
)

// Gateway applies a full-replacement association write: after the call
// the owner's related set is exactly the given set.
type Gateway interface {
	Replace(ctx context.Context, ownerID int64, relatedIDs []int64) error
}

// ReplaceError marks a failed association replace. Composite saves
// return it so callers can tell "entity saved, association not" apart
// from an entity-level failure.
type ReplaceError struct {
	Assoc   string
	OwnerID int64
	Err     error
}

func (e *ReplaceError) Error() string {
	return fmt.Sprintf("assoc %s: replace for owner %d: %v", e.Assoc, e.OwnerID, e.Err)
}

func (e *ReplaceError) Unwrap() error { return e.Err }

// Manager performs replace-semantics bulk association writes between two
// entity collections. The UI always submits the complete desired
// membership set, so replacement is used instead of diffing.
type Manager struct {
	name    string
	gateway Gateway
}

// NewManager builds a manager for one association kind, e.g. group
// roles.
func NewManager(name string, gateway Gateway) *Manager {
	return &Manager{name: name, gateway: gateway}
}

// Name reports the association kind.
func (m *Manager) Name() string { return m.name }

// Replace sets the owner's related set to exactly relatedIDs. Duplicate
// identifiers are collapsed before the write; replacing with the same
// set twice leaves the same final state. Failures come back as
// *ReplaceError.
func (m *Manager) Replace(ctx context.Context, ownerID int64, relatedIDs []int64) error {
	if err := m.gateway.Replace(ctx, ownerID, dedupe(relatedIDs)); err != nil {
		return &ReplaceError{Assoc: m.name, OwnerID: ownerID, Err: err}
	}
	return nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
