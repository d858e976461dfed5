package repository

import (
	"context"

	"github.com/tu-usuario/tribunsys/internal/domain/entity"
)

// PartyDirectory puerto de solo lectura sobre el directorio compartido.
// Este motor no registra clientes: si el RUT no existe, la operación se
// rechaza y el alta ocurre por el canal correspondiente.
type PartyDirectory interface {
	// GetClientByRUT devuelve la parte con ese RUT y rol cliente, o nil.
	GetClientByRUT(ctx context.Context, rut string) (*entity.Party, error)
}
