package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Código SQLSTATE de unique_violation.
const codeUniqueViolation = "23505"

// isUniqueViolation detecta el choque contra un índice único (por ejemplo el
// email de usuarios) para traducirlo a un error de dominio en vez de un 500.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	// algunos drivers intermedios aplanan el error a texto
	return strings.Contains(err.Error(), codeUniqueViolation)
}
