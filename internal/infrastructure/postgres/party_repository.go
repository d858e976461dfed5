package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/tribunsys/internal/domain/entity"
	"github.com/tu-usuario/tribunsys/internal/domain/repository"
)

var _ repository.PartyDirectory = (*PartyRepo)(nil)

// PartyRepo directorio de terceros. Solo lectura: las altas de clientes
// las hace otro sistema y aquí nunca se crean de forma implícita.
type PartyRepo struct {
	q Querier
}

func NewPartyRepository(q Querier) *PartyRepo {
	return &PartyRepo{q: q}
}

// GetClientByRUT busca un tercero con rol cliente por su RUT normalizado.
// nil si no existe.
func (r *PartyRepo) GetClientByRUT(ctx context.Context, rut string) (*entity.Party, error) {
	query := `
		SELECT id, rut, nombre, razon_social, rol, pais, fecha_creacion
		FROM terceros
		WHERE rut = $1 AND rol = 'cliente'
		LIMIT 1`
	var p entity.Party
	err := r.q.QueryRow(ctx, query, rut).Scan(
		&p.ID, &p.RUT, &p.Name, &p.LegalName, &p.Role, &p.Country, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("buscar cliente por RUT: %w", err)
	}
	return &p, nil
}
