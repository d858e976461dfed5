package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/tribunsys/internal/domain"
)

// Guard política explícita de "requiere conexión": antes de una operación o
// lote, un ping corto decide si el almacén está alcanzable y, si no, la capa
// de negocio recibe domain.ErrOffline en vez de un timeout genérico a mitad
// de camino. Reemplaza al decorado implícito de métodos del sistema anterior.
type Guard struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewGuard construye el guard con timeout de verificación.
func NewGuard(pool *pgxpool.Pool) *Guard {
	return &Guard{pool: pool, timeout: 2 * time.Second}
}

// Check devuelve domain.ErrOffline si el almacén no responde.
func (g *Guard) Check(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	if err := g.pool.Ping(pingCtx); err != nil {
		return domain.ErrOffline
	}
	return nil
}
