package repository

import (
	"context"

	"github.com/tu-usuario/tribunsys/internal/domain/entity"
)

// SubsidyStore puerto del almacén local (embebido, por corredor) de subsidios.
// A diferencia del almacén compartido, este sí ofrece lotes transaccionales:
// la importación y el borrado masivo son todo-o-nada.
type SubsidyStore interface {
	List(ctx context.Context) ([]entity.Subsidy, error)
	GetByID(ctx context.Context, id string) (*entity.Subsidy, error)
	Upsert(ctx context.Context, s entity.Subsidy) error
	Delete(ctx context.Context, id string) error
	// ImportBatch ejecuta fn dentro de una transacción local; cualquier error
	// de fn revierte el lote completo.
	ImportBatch(ctx context.Context, fn func(tx SubsidyBatch) error) error
	// DeleteAll vacía subsidios y aplicaciones; devuelve cuántos había.
	DeleteAll(ctx context.Context) (int, error)
	// RecordApplication deja traza local de un subsidio aplicado a una calificación.
	RecordApplication(ctx context.Context, app entity.SubsidyApplication) error
}

// SubsidyBatch operaciones disponibles dentro de un lote de importación.
type SubsidyBatch interface {
	FindIDByRegulationRef(ref string) (string, error)
	FindIDByName(name string) (string, error)
	Insert(s entity.Subsidy) error
	Update(s entity.Subsidy) error
}

// SubsidyMirror espejo remoto best-effort del almacén local. Las fallas se
// registran y se ignoran: el espejo nunca bloquea una escritura local.
type SubsidyMirror interface {
	Upsert(ctx context.Context, brokerID string, s entity.Subsidy) error
	Delete(ctx context.Context, brokerID, subsidyID string) error
	Clear(ctx context.Context, brokerID string) (int, error)
}
