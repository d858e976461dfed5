package repository

import "context"

// AuditSink destino fire-and-forget de eventos de auditoría.
// El llamador registra la falla en el log y continúa: auditar nunca hace
// fallar la operación de negocio.
type AuditSink interface {
	Record(ctx context.Context, action, actorID string, details map[string]any) error
}
