package pg

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-admin/meridian/internal/shared"
)

// Audit writes mutation audit entries into audit_logs.
type Audit struct {
	pool *pgxpool.Pool
}

// NewAudit constructs the audit sink.
func NewAudit(pool *pgxpool.Pool) *Audit {
	return &Audit{pool: pool}
}

// Record implements shared.AuditSink.
func (a *Audit) Record(ctx context.Context, entry shared.AuditEntry) error {
	metaJSON, err := json.Marshal(entry.Meta)
	if err != nil {
		return err
	}
	_, err = a.pool.Exec(ctx,
		`INSERT INTO audit_logs (id, actor, action, entity, entity_id, meta, occurred_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.Actor, entry.Action, string(entry.Kind), entry.EntityID, metaJSON, entry.At,
	)
	return err
}
