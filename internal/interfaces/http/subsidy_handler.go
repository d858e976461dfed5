package http

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/tribunsys/internal/application/dto"
	"github.com/tu-usuario/tribunsys/internal/application/subsidy"
	"github.com/tu-usuario/tribunsys/internal/domain/entity"
	"github.com/tu-usuario/tribunsys/pkg/tabular"
)

// SubsidyHandler maneja el catálogo de subsidios del corredor.
type SubsidyHandler struct {
	ledger *subsidy.Ledger
}

// NewSubsidyHandler construye el handler de subsidios.
func NewSubsidyHandler(ledger *subsidy.Ledger) *SubsidyHandler {
	return &SubsidyHandler{ledger: ledger}
}

// List godoc
// @Summary      Listar subsidios
// @Tags         subsidios
// @Produce      json
// @Success      200  {array}  dto.SubsidyResponse
// @Router       /api/subsidios [get]
// @Security     BearerAuth
func (h *SubsidyHandler) List(c *fiber.Ctx) error {
	subs, err := h.ledger.List(c.Context())
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.ToSubsidyResponses(subs))
}

// GetByID godoc
// @Summary      Obtener subsidio
// @Tags         subsidios
// @Produce      json
// @Param        id  path  string  true  "ID del subsidio"
// @Success      200  {object}  dto.SubsidyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/subsidios/{id} [get]
// @Security     BearerAuth
func (h *SubsidyHandler) GetByID(c *fiber.Ctx) error {
	s, err := h.ledger.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.ToSubsidyResponse(*s))
}

// Create godoc
// @Summary      Crear subsidio
// @Tags         subsidios
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubsidyRequest  true  "nombre y porcentaje (0-1 o 0-100)"
// @Success      201   {object}  dto.SubsidyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/subsidios [post]
// @Security     BearerAuth
func (h *SubsidyHandler) Create(c *fiber.Ctx) error {
	var in dto.SubsidyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	saved, err := h.ledger.Upsert(c.Context(), GetUserID(c), entity.Subsidy{
		Name:          in.Nombre,
		Percentage:    in.Porcentaje,
		RegulationRef: in.IDNormativa,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToSubsidyResponse(saved))
}

// Update godoc
// @Summary      Actualizar subsidio
// @Tags         subsidios
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del subsidio"
// @Param        body  body  dto.SubsidyRequest  true  "nombre y porcentaje"
// @Success      200   {object}  dto.SubsidyResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/subsidios/{id} [put]
// @Security     BearerAuth
func (h *SubsidyHandler) Update(c *fiber.Ctx) error {
	var in dto.SubsidyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	id := c.Params("id")
	if _, err := h.ledger.Get(c.Context(), id); err != nil {
		return respondDomainError(c, err)
	}
	saved, err := h.ledger.Upsert(c.Context(), GetUserID(c), entity.Subsidy{
		ID:            id,
		Name:          in.Nombre,
		Percentage:    in.Porcentaje,
		RegulationRef: in.IDNormativa,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.ToSubsidyResponse(saved))
}

// Delete godoc
// @Summary      Eliminar subsidio, o todos con ?all=true&confirm=true
// @Tags         subsidios
// @Produce      json
// @Param        id       path   string  false  "ID del subsidio (ignorado con all=true)"
// @Param        all      query  bool    false  "vaciar el catálogo completo"
// @Param        confirm  query  bool    false  "confirmación requerida junto a all=true"
// @Success      200  {object}  dto.DeleteAllResponse
// @Success      204  "sin contenido"
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/subsidios/{id} [delete]
// @Security     BearerAuth
func (h *SubsidyHandler) Delete(c *fiber.Ctx) error {
	if c.Query("all") == "true" {
		// el vaciado total es irreversible; exige confirmación explícita
		if c.Query("confirm") != "true" {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code:    "CONFIRM_REQUIRED",
				Message: "vaciar el catálogo requiere confirm=true",
			})
		}
		n, err := h.ledger.DeleteAll(c.Context(), GetUserID(c))
		if err != nil {
			return respondDomainError(c, err)
		}
		return c.JSON(dto.DeleteAllResponse{Eliminados: n})
	}

	if err := h.ledger.Delete(c.Context(), GetUserID(c), c.Params("id")); err != nil {
		return respondDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Import godoc
// @Summary      Importar catálogo desde CSV
// @Tags         subsidios
// @Accept       multipart/form-data
// @Produce      json
// @Param        archivo  formData  file  true  "planilla con nombre_subsidio, valor_porcentual, id_normativa"
// @Success      200  {object}  subsidy.ImportStats
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/subsidios/import [post]
// @Security     BearerAuth
func (h *SubsidyHandler) Import(c *fiber.Ctx) error {
	table, err := readUploadedTable(c)
	if table == nil {
		return err
	}
	stats, err := h.ledger.ImportFromTable(c.Context(), GetUserID(c), table)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(stats)
}

// Export godoc
// @Summary      Exportar catálogo como CSV
// @Tags         subsidios
// @Produce      text/csv
// @Success      200  {string}  string  "CSV"
// @Router       /api/subsidios/export [get]
// @Security     BearerAuth
func (h *SubsidyHandler) Export(c *fiber.Ctx) error {
	table, err := h.ledger.ExportTable(c.Context())
	if err != nil {
		return respondDomainError(c, err)
	}
	var buf bytes.Buffer
	if err := tabular.WriteCSV(&buf, table); err != nil {
		return respondDomainError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="subsidios.csv"`)
	return c.Send(buf.Bytes())
}

// readUploadedTable lee la planilla CSV del multipart (campo "archivo").
// Si la tabla viene nil la respuesta de error ya quedó escrita; el handler
// solo debe propagar el error devuelto.
func readUploadedTable(c *fiber.Ctx) (*tabular.Table, error) {
	fh, err := c.FormFile("archivo")
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "MISSING_FILE", Message: "se requiere el archivo CSV en el campo 'archivo'",
		})
	}
	f, err := fh.Open()
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_FILE", Message: "no se pudo abrir el archivo",
		})
	}
	defer f.Close()

	table, err := tabular.ReadCSV(f)
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_FILE", Message: err.Error(),
		})
	}
	return table, nil
}
