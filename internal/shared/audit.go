package shared

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-admin/meridian/internal/directory"
)

// AuditEntry records one confirmed mutation.
type AuditEntry struct {
	ID       uuid.UUID
	Actor    string
	Action   string
	Kind     directory.Kind
	EntityID int64
	Meta     map[string]any
	At       time.Time
}

// AuditSink receives audit entries.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// SlogAudit writes audit entries to the structured log. Deployments that
// need a queryable trail swap in the Postgres sink.
type SlogAudit struct {
	Logger *slog.Logger
}

// Record implements AuditSink.
func (s SlogAudit) Record(_ context.Context, entry AuditEntry) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("audit",
		slog.String("id", entry.ID.String()),
		slog.String("actor", entry.Actor),
		slog.String("action", entry.Action),
		slog.String("kind", string(entry.Kind)),
		slog.Int64("entity_id", entry.EntityID),
	)
	return nil
}
