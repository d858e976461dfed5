package http

import (
	"bytes"
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/tribunsys/internal/application/reconciliation"
	"github.com/tu-usuario/tribunsys/internal/application/report"
	"github.com/tu-usuario/tribunsys/internal/domain/entity"
	"github.com/tu-usuario/tribunsys/internal/domain/repository"
	"github.com/tu-usuario/tribunsys/pkg/tabular"
)

// PDFGenerator genera el reporte imprimible.
type PDFGenerator interface {
	Generate(ctx context.Context, brokerID string, records []*entity.Qualification, label report.Labeler) ([]byte, error)
}

// XMLExporter serializa los registros a XML.
type XMLExporter interface {
	Export(brokerID string, records []*entity.Qualification, label report.Labeler) ([]byte, error)
}

// ReportHandler exporta calificaciones en CSV, XML y PDF.
type ReportHandler struct {
	engine *reconciliation.Engine
	pdf    PDFGenerator
	xml    XMLExporter
}

// NewReportHandler construye el handler de reportes.
func NewReportHandler(engine *reconciliation.Engine, pdf PDFGenerator, xml XMLExporter) *ReportHandler {
	return &ReportHandler{engine: engine, pdf: pdf, xml: xml}
}

func (h *ReportHandler) fetch(c *fiber.Ctx) ([]*entity.Qualification, error) {
	filters := repository.QualificationFilters{
		DateFrom: c.Query("fecha_desde"),
		DateTo:   c.Query("fecha_hasta"),
		TaxType:  c.Query("tipo_impuesto"),
		Country:  c.Query("pais"),
	}
	return h.engine.List(c.Context(), GetActor(c), filters)
}

// ExportCSV godoc
// @Summary      Reporte de calificaciones en CSV
// @Tags         reportes
// @Produce      text/csv
// @Param        fecha_desde    query  string  false  "YYYY-MM-DD inclusive"
// @Param        fecha_hasta    query  string  false  "YYYY-MM-DD inclusive"
// @Param        tipo_impuesto  query  string  false  "filtro por tipo"
// @Success      200  {string}  string  "CSV"
// @Router       /api/reportes/calificaciones.csv [get]
// @Security     BearerAuth
func (h *ReportHandler) ExportCSV(c *fiber.Ctx) error {
	records, err := h.fetch(c)
	if err != nil {
		return respondDomainError(c, err)
	}
	table := report.BuildExportTable(records, nil)
	var buf bytes.Buffer
	if err := tabular.WriteCSV(&buf, table); err != nil {
		return respondDomainError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="calificaciones.csv"`)
	return c.Send(buf.Bytes())
}

// ExportXML godoc
// @Summary      Reporte de calificaciones en XML
// @Tags         reportes
// @Produce      application/xml
// @Success      200  {string}  string  "XML"
// @Router       /api/reportes/calificaciones.xml [get]
// @Security     BearerAuth
func (h *ReportHandler) ExportXML(c *fiber.Ctx) error {
	records, err := h.fetch(c)
	if err != nil {
		return respondDomainError(c, err)
	}
	out, err := h.xml.Export(GetBrokerID(c), records, nil)
	if err != nil {
		return respondDomainError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/xml; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="calificaciones.xml"`)
	return c.Send(out)
}

// ExportPDF godoc
// @Summary      Reporte de calificaciones en PDF
// @Tags         reportes
// @Produce      application/pdf
// @Success      200  {string}  string  "PDF"
// @Router       /api/reportes/calificaciones.pdf [get]
// @Security     BearerAuth
func (h *ReportHandler) ExportPDF(c *fiber.Ctx) error {
	records, err := h.fetch(c)
	if err != nil {
		return respondDomainError(c, err)
	}
	out, err := h.pdf.Generate(c.Context(), GetBrokerID(c), records, nil)
	if err != nil {
		return respondDomainError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="calificaciones.pdf"`)
	return c.Send(out)
}
