package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/tribunsys/internal/domain/entity"
	"github.com/tu-usuario/tribunsys/internal/domain/repository"
)

var _ repository.SubsidyMirror = (*SubsidyMirrorRepo)(nil)

// SubsidyMirrorRepo réplica en el almacén compartido del catálogo de
// subsidios de cada corredor. El catálogo local manda; esta copia existe
// solo para consulta cruzada y es mejor-esfuerzo.
type SubsidyMirrorRepo struct {
	q Querier
}

func NewSubsidyMirror(q Querier) *SubsidyMirrorRepo {
	return &SubsidyMirrorRepo{q: q}
}

// Upsert replica un subsidio bajo la clave (corredor, subsidio).
func (r *SubsidyMirrorRepo) Upsert(ctx context.Context, brokerID string, s entity.Subsidy) error {
	query := `
		INSERT INTO subsidios_espejo (corredor_id, subsidio_id, nombre_subsidio, valor_porcentual, id_normativa, fecha_actualizacion)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (corredor_id, subsidio_id) DO UPDATE SET
			nombre_subsidio = EXCLUDED.nombre_subsidio,
			valor_porcentual = EXCLUDED.valor_porcentual,
			id_normativa = EXCLUDED.id_normativa,
			fecha_actualizacion = EXCLUDED.fecha_actualizacion`
	_, err := r.q.Exec(ctx, query, brokerID, s.ID, s.Name, s.Percentage, s.RegulationRef, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("replicar subsidio: %w", err)
	}
	return nil
}

// Delete retira un subsidio replicado.
func (r *SubsidyMirrorRepo) Delete(ctx context.Context, brokerID, subsidyID string) error {
	query := `DELETE FROM subsidios_espejo WHERE corredor_id = $1 AND subsidio_id = $2`
	if _, err := r.q.Exec(ctx, query, brokerID, subsidyID); err != nil {
		return fmt.Errorf("retirar subsidio replicado: %w", err)
	}
	return nil
}

// Clear retira todos los subsidios replicados del corredor y devuelve cuántos.
func (r *SubsidyMirrorRepo) Clear(ctx context.Context, brokerID string) (int, error) {
	query := `DELETE FROM subsidios_espejo WHERE corredor_id = $1`
	tag, err := r.q.Exec(ctx, query, brokerID)
	if err != nil {
		return 0, fmt.Errorf("vaciar replica de subsidios: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
