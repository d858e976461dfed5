package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/tribunsys/internal/application/dto"
	"github.com/tu-usuario/tribunsys/internal/application/reconciliation"
	"github.com/tu-usuario/tribunsys/internal/domain/repository"
)

// QualificationHandler maneja el CRUD de calificaciones.
type QualificationHandler struct {
	engine *reconciliation.Engine
}

// NewQualificationHandler construye el handler de calificaciones.
func NewQualificationHandler(engine *reconciliation.Engine) *QualificationHandler {
	return &QualificationHandler{engine: engine}
}

func toEngineInput(in dto.QualificationRequest) reconciliation.Input {
	return reconciliation.Input{
		ClientRUT:       in.ClienteRUT,
		DeclarationDate: in.FechaDeclaracion,
		TaxType:         in.TipoImpuesto,
		Country:         in.Pais,
		DeclaredAmount:  in.MontoDeclarado,
		Factors:         in.Factores,
		SubsidyIDs:      in.Subsidios,
	}
}

// Create godoc
// @Summary      Crear calificación local
// @Tags         calificaciones
// @Accept       json
// @Produce      json
// @Param        body  body  dto.QualificationRequest  true  "datos de la declaración"
// @Success      201   {object}  dto.QualificationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/calificaciones [post]
// @Security     BearerAuth
func (h *QualificationHandler) Create(c *fiber.Ctx) error {
	var in dto.QualificationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	q, err := h.engine.Create(c.Context(), GetActor(c), toEngineInput(in))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToQualificationResponse(q))
}

// GetByID godoc
// @Summary      Obtener calificación
// @Tags         calificaciones
// @Produce      json
// @Param        id  path  string  true  "ID de la calificación"
// @Success      200  {object}  dto.QualificationResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/calificaciones/{id} [get]
// @Security     BearerAuth
func (h *QualificationHandler) GetByID(c *fiber.Ctx) error {
	q, err := h.engine.Get(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.ToQualificationResponse(q))
}

// Update godoc
// @Summary      Actualizar calificación
// @Tags         calificaciones
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de la calificación"
// @Param        body  body  dto.QualificationRequest  true  "datos de la declaración"
// @Success      200   {object}  dto.QualificationResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/calificaciones/{id} [put]
// @Security     BearerAuth
func (h *QualificationHandler) Update(c *fiber.Ctx) error {
	var in dto.QualificationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	q, err := h.engine.Update(c.Context(), GetActor(c), c.Params("id"), toEngineInput(in))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.ToQualificationResponse(q))
}

// Delete godoc
// @Summary      Eliminar calificación (borrado lógico)
// @Tags         calificaciones
// @Produce      json
// @Param        id  path  string  true  "ID de la calificación"
// @Success      204  "sin contenido"
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/calificaciones/{id} [delete]
// @Security     BearerAuth
func (h *QualificationHandler) Delete(c *fiber.Ctx) error {
	if err := h.engine.Delete(c.Context(), GetActor(c), c.Params("id")); err != nil {
		return respondDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List godoc
// @Summary      Listar calificaciones visibles
// @Tags         calificaciones
// @Produce      json
// @Param        fecha_desde    query  string  false  "YYYY-MM-DD inclusive"
// @Param        fecha_hasta    query  string  false  "YYYY-MM-DD inclusive"
// @Param        tipo_impuesto  query  string  false  "Renta, IVA, Retenciones, Patente, Timbre"
// @Param        pais           query  string  false  "Chile, Peru, Colombia"
// @Success      200  {array}  dto.QualificationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/calificaciones [get]
// @Security     BearerAuth
func (h *QualificationHandler) List(c *fiber.Ctx) error {
	filters := repository.QualificationFilters{
		DateFrom: c.Query("fecha_desde"),
		DateTo:   c.Query("fecha_hasta"),
		TaxType:  c.Query("tipo_impuesto"),
		Country:  c.Query("pais"),
	}
	qs, err := h.engine.List(c.Context(), GetActor(c), filters)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.ToQualificationResponses(qs))
}
