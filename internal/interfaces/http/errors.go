package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/tribunsys/internal/application/bulkimport"
	"github.com/tu-usuario/tribunsys/internal/application/dto"
	"github.com/tu-usuario/tribunsys/internal/domain"
	"github.com/tu-usuario/tribunsys/pkg/rut"
)

// respondDomainError traduce un error de dominio a la respuesta HTTP.
// Los conflictos llevan código propio para que el cliente ofrezca el remedio
// (cliente no registrado vs choque con un registro de bolsa).
func respondDomainError(c *fiber.Ctx, err error) error {
	var (
		ve  *domain.ValidationError
		fce *domain.FactorCountError
		fre *domain.FactorRangeError
		fte *domain.FactorTypeError
		se  *domain.SumExceededError
		uce *domain.UnknownClientError
		ace *domain.AuthoritativeConflictError
		ae  *domain.AuthorizationError
		pe  *domain.PersistenceError
		sce *bulkimport.SchemaError
		eie *bulkimport.EmptyInputError
		bse *bulkimport.BatchSizeError
	)

	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: err.Error(), Details: fiber.Map{"campo": ve.Field},
		})
	case errors.As(err, &fce), errors.As(err, &fre), errors.As(err, &fte), errors.As(err, &se),
		errors.Is(err, rut.ErrFormato), errors.Is(err, rut.ErrDigitoVerificador):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: err.Error(),
		})
	case errors.As(err, &sce):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "SCHEMA", Message: err.Error(), Details: fiber.Map{"columnas_faltantes": sce.Missing},
		})
	case errors.As(err, &eie), errors.As(err, &bse):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: err.Error(),
		})
	case errors.As(err, &uce):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "UNKNOWN_CLIENT", Message: err.Error(), Details: fiber.Map{"rut": uce.RUT},
		})
	case errors.As(err, &ace):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "AUTHORITATIVE_CONFLICT", Message: err.Error(),
			Details: fiber.Map{
				"registro_id":       ace.Existing.RecordID,
				"cliente_id":        ace.Existing.ClientID,
				"fecha_declaracion": ace.Existing.DeclarationDate,
				"tipo_impuesto":     ace.Existing.TaxType,
			},
		})
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "EMAIL_EXISTS", Message: "el email ya está registrado",
		})
	case errors.As(err, &ae), errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code: "FORBIDDEN", Message: "no tiene permisos sobre este recurso",
		})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Code: "UNAUTHORIZED", Message: "credenciales inválidas",
		})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Code: "NOT_FOUND", Message: "recurso no encontrado",
		})
	case errors.Is(err, domain.ErrOffline):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code: "OFFLINE", Message: "sin conexión con el almacén de datos, intente más tarde",
		})
	case errors.As(err, &pe):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "INTERNAL", Message: "error de persistencia",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "INTERNAL", Message: err.Error(),
		})
	}
}
