package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/meridian-admin/meridian/internal/directory"
)

// Entity is anything the store can hold. Identifiers are unique within a
// collection.
type Entity interface {
	EntityID() int64
}

// Gateway is the data-access collaborator for one entity collection.
type Gateway[E Entity] interface {
	List(ctx context.Context) ([]E, error)
	Create(ctx context.Context, draft E) (E, error)
	Update(ctx context.Context, id int64, draft E) (E, error)
	Delete(ctx context.Context, id int64) error
}

// Store orchestrates CRUD for one entity kind and keeps a local snapshot
// of the collection. The snapshot is only touched after the gateway
// confirms a mutation; a failed list keeps the previous snapshot so the
// caller always has something to show.
type Store[E Entity] struct {
	kind    directory.Kind
	gateway Gateway[E]
	logger  *slog.Logger

	mu       sync.Mutex
	snapshot []E
}

// New builds a store bound to one entity kind and backing collection.
func New[E Entity](kind directory.Kind, gateway Gateway[E], logger *slog.Logger) *Store[E] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store[E]{kind: kind, gateway: gateway, logger: logger}
}

// Kind reports the entity kind this store is bound to.
func (s *Store[E]) Kind() directory.Kind { return s.kind }

// List fetches the current snapshot from the gateway. On failure the
// previous snapshot is returned untouched together with the error; stale
// data with a logged warning beats an empty screen.
func (s *Store[E]) List(ctx context.Context) ([]E, error) {
	entities, err := s.gateway.List(ctx)
	if err != nil {
		s.logger.Warn("list failed, serving stale snapshot",
			slog.String("kind", string(s.kind)), slog.Any("error", err))
		return s.Snapshot(), fmt.Errorf("store %s: list: %w", s.kind, err)
	}
	s.mu.Lock()
	s.snapshot = entities
	s.mu.Unlock()
	return s.Snapshot(), nil
}

// Snapshot returns a copy of the local snapshot without contacting the
// gateway.
func (s *Store[E]) Snapshot() []E {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]E(nil), s.snapshot...)
}

// Get looks an entity up in the local snapshot by identifier.
func (s *Store[E]) Get(id int64) (E, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entity := range s.snapshot {
		if entity.EntityID() == id {
			return entity, true
		}
	}
	var zero E
	return zero, false
}

// Create sends the draft to the gateway and appends the returned entity
// to the snapshot. There is no optimistic insert.
func (s *Store[E]) Create(ctx context.Context, draft E) (E, error) {
	created, err := s.gateway.Create(ctx, draft)
	if err != nil {
		var zero E
		return zero, fmt.Errorf("store %s: create: %w", s.kind, err)
	}
	s.mu.Lock()
	s.snapshot = append(s.snapshot, created)
	s.mu.Unlock()
	return created, nil
}

// Update sends the draft to the gateway and replaces the matching
// snapshot entry by identifier.
func (s *Store[E]) Update(ctx context.Context, id int64, draft E) (E, error) {
	updated, err := s.gateway.Update(ctx, id, draft)
	if err != nil {
		var zero E
		return zero, fmt.Errorf("store %s: update %d: %w", s.kind, id, err)
	}
	s.mu.Lock()
	for i, entity := range s.snapshot {
		if entity.EntityID() == id {
			s.snapshot[i] = updated
			break
		}
	}
	s.mu.Unlock()
	return updated, nil
}

// Delete removes the entity from the backing collection, then from the
// snapshot. The snapshot keeps the entity until the gateway confirms, so
// an unconfirmed delete is never presented as gone.
func (s *Store[E]) Delete(ctx context.Context, id int64) error {
	if err := s.gateway.Delete(ctx, id); err != nil {
		return fmt.Errorf("store %s: delete %d: %w", s.kind, id, err)
	}
	s.mu.Lock()
	for i, entity := range s.snapshot {
		if entity.EntityID() == id {
			s.snapshot = append(s.snapshot[:i], s.snapshot[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// Refresh re-fetches the collection, discarding the local snapshot. Used
// after mutations whose side effects are not fully known locally. A
// failed refresh keeps the previous snapshot and returns the error.
func (s *Store[E]) Refresh(ctx context.Context) error {
	entities, err := s.gateway.List(ctx)
	if err != nil {
		return fmt.Errorf("store %s: refresh: %w", s.kind, err)
	}
	s.mu.Lock()
	s.snapshot = entities
	s.mu.Unlock()
	return nil
}
