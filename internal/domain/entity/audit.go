package entity

import "time"

// Acciones auditadas por el motor.
const (
	AuditQualificationCreated = "CALIFICACION_CREADA"
	AuditQualificationUpdated = "CALIFICACION_ACTUALIZADA"
	AuditQualificationDeleted = "CALIFICACION_ELIMINADA"
	AuditBulkImport           = "CARGA_MASIVA"
	AuditSubsidySaved         = "SUBSIDIO_GUARDADO"
	AuditSubsidyDeleted       = "SUBSIDIO_ELIMINADO"
	AuditSubsidyDeleteAll     = "SUBSIDIO_ELIMINAR_TODOS"
	AuditSubsidyImport        = "SUBSIDIO_IMPORT_CSV"
)

// AuditEntry evento de auditoría. La escritura es fire-and-forget: una falla
// al auditar nunca hace fallar la operación de negocio.
type AuditEntry struct {
	ID        string
	Action    string
	ActorID   string
	Details   map[string]any
	CreatedAt time.Time
}
