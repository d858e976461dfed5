package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/tribunsys/internal/application/dto"
	"github.com/tu-usuario/tribunsys/internal/domain/entity"
)

// RequirePermission verifica que el rol del token tenga acceso al módulo
// funcional. Debe usarse DESPUÉS de AuthMiddleware (necesita LocalRole).
// La matriz de permisos es fija por rol; no consulta la DB.
func RequirePermission(module string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "rol no encontrado en el token",
			})
		}
		if !entity.HasPermission(role, module) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "MODULE_FORBIDDEN",
				Message: "el rol '" + role + "' no tiene acceso al módulo '" + module + "'",
			})
		}
		return c.Next()
	}
}
