package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/tribunsys/internal/domain/entity"
)

// QualificationFilters filtros opcionales de listado, combinados con AND.
// Las fechas son YYYY-MM-DD e inclusivas.
type QualificationFilters struct {
	DateFrom string
	DateTo   string
	TaxType  string
	Country  string
}

// QualificationVisibility acota lo que ve el actor al listar.
// Admin=true devuelve todo; si no, registros de bolsa más los locales
// cuyo OwnerID coincida.
type QualificationVisibility struct {
	Admin   bool
	OwnerID string
}

// QualificationRepository puerto de persistencia del almacén compartido de
// calificaciones. Operaciones de documento individual: el almacén no ofrece
// transacciones entre documentos.
type QualificationRepository interface {
	Create(ctx context.Context, q *entity.Qualification) error
	GetByID(ctx context.Context, id string) (*entity.Qualification, error)
	Update(ctx context.Context, q *entity.Qualification) error
	// SoftDelete marca activo=false y fecha de eliminación; nunca borra físicamente.
	SoftDelete(ctx context.Context, id string, deletedAt time.Time) error
	// FindAuthoritative busca la calificación de bolsa activa para la clave
	// (cliente, fecha, tipo). nil si no existe.
	FindAuthoritative(ctx context.Context, clientID, declarationDate, taxType string) (*entity.Qualification, error)
	// List devuelve solo registros activos según visibilidad y filtros.
	List(ctx context.Context, vis QualificationVisibility, f QualificationFilters) ([]*entity.Qualification, error)
}
