package http

import (
	"bytes"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/tribunsys/internal/application/bulkimport"
	"github.com/tu-usuario/tribunsys/internal/application/dto"
	"github.com/tu-usuario/tribunsys/pkg/tabular"
)

// BulkImportHandler maneja la carga masiva de calificaciones de bolsa.
type BulkImportHandler struct {
	pipeline *bulkimport.Pipeline
}

// NewBulkImportHandler construye el handler de carga masiva.
func NewBulkImportHandler(pipeline *bulkimport.Pipeline) *BulkImportHandler {
	return &BulkImportHandler{pipeline: pipeline}
}

// Validate godoc
// @Summary      Validar planilla sin importar
// @Tags         carga-masiva
// @Accept       multipart/form-data
// @Produce      json
// @Param        archivo  formData  file  true  "planilla CSV"
// @Success      200  {object}  dto.ValidationReport
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/carga-masiva/validar [post]
// @Security     BearerAuth
func (h *BulkImportHandler) Validate(c *fiber.Ctx) error {
	table, err := readUploadedTable(c)
	if table == nil {
		return err
	}

	report := dto.ValidationReport{}
	if err := h.pipeline.ValidateSchema(table); err != nil {
		var sce *bulkimport.SchemaError
		if errors.As(err, &sce) {
			report.ColumnasFaltantes = sce.Missing
			return c.JSON(report)
		}
		var eie *bulkimport.EmptyInputError
		if errors.As(err, &eie) {
			report.PlanillaVacia = true
			return c.JSON(report)
		}
		return respondDomainError(c, err)
	}

	report.ProblemasDeTipo = h.pipeline.ValidateTypes(table)
	for _, msg := range h.pipeline.ValidateContent(table) {
		if msg != "" {
			report.ErroresDeFila = append(report.ErroresDeFila, msg)
		}
	}
	missing, err := h.pipeline.PreflightClients(c.Context(), table)
	if err != nil {
		return respondDomainError(c, err)
	}
	report.ClientesFaltantes = missing
	report.Valida = len(report.ProblemasDeTipo) == 0 &&
		len(report.ErroresDeFila) == 0 &&
		len(report.ClientesFaltantes) == 0
	return c.JSON(report)
}

// Import godoc
// @Summary      Importar planilla de calificaciones de bolsa
// @Tags         carga-masiva
// @Accept       multipart/form-data
// @Produce      json
// @Param        archivo  formData  file  true  "planilla CSV"
// @Success      200  {object}  bulkimport.Result
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/carga-masiva [post]
// @Security     BearerAuth
func (h *BulkImportHandler) Import(c *fiber.Ctx) error {
	table, err := readUploadedTable(c)
	if table == nil {
		return err
	}
	res, err := h.pipeline.ImportRows(c.Context(), table, GetUserID(c), nil)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(res)
}

// Template godoc
// @Summary      Descargar plantilla de carga
// @Tags         carga-masiva
// @Produce      text/csv
// @Success      200  {string}  string  "CSV"
// @Router       /api/carga-masiva/plantilla [get]
// @Security     BearerAuth
func (h *BulkImportHandler) Template(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := tabular.WriteCSV(&buf, bulkimport.Template()); err != nil {
		return respondDomainError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="plantilla_carga_masiva.csv"`)
	return c.Send(buf.Bytes())
}
