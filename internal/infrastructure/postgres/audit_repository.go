package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/tribunsys/internal/domain/repository"
)

var _ repository.AuditSink = (*AuditRepo)(nil)

// AuditRepo bitácora de acciones. Los detalles van como JSONB libre.
type AuditRepo struct {
	q Querier
}

func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Record inserta una entrada de auditoría.
func (r *AuditRepo) Record(ctx context.Context, action, actorID string, details map[string]any) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("serializar detalles de auditoria: %w", err)
	}
	query := `
		INSERT INTO auditoria (id, accion, actor_id, detalles, fecha_creacion)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, uuid.NewString(), action, actorID, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("insert auditoria: %w", err)
	}
	return nil
}
