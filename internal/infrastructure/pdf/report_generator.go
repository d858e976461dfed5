// Package pdf genera el reporte imprimible de calificaciones tributarias.
//
// Layout de la página A4 (horizontal):
//
//	┌──────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + corredor  │  Fecha de emisión              │
//	│  ──────────────────────────────────────────────────────────  │
//	│  RESUMEN: total / locales / bolsa / montos agregados          │
//	│  ──────────────────────────────────────────────────────────  │
//	│  TABLA: Cliente | Fecha | Impuesto | Montos | Suma | Estado   │
//	└──────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/tu-usuario/tribunsys/internal/application/report"
	"github.com/tu-usuario/tribunsys/internal/domain/entity"
	"github.com/tu-usuario/tribunsys/internal/domain/factors"
)

var (
	colorPrimary = &props.Color{Red: 15, Green: 76, Blue: 129}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWarn    = &props.Color{Red: 180, Green: 40, Blue: 40}
)

// ReportGenerator genera el PDF de calificaciones usando Maroto v2.
type ReportGenerator struct{}

// NewReportGenerator construye el generador.
func NewReportGenerator() *ReportGenerator { return &ReportGenerator{} }

// Generate arma el documento y devuelve sus bytes.
func (g *ReportGenerator) Generate(
	_ context.Context,
	brokerID string,
	records []*entity.Qualification,
	label report.Labeler,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Reporte de Calificaciones Tributarias", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(brokerID))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(report.BuildSummary(records)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, q := range records {
		m.AddRows(recordRow(q, label))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: título (izq) y fecha de emisión (der).
func headerRow(brokerID string) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New("REPORTE DE CALIFICACIONES TRIBUTARIAS", props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
			text.New("Corredor: "+brokerID, props.Text{
				Size: 8, Top: 8, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Emitido: "+time.Now().Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}

// summaryRow: agregados del conjunto exportado.
func summaryRow(s report.Summary) core.Row {
	item := func(label, value string) core.Col {
		return col.New(2).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Top: 1}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 10, Top: 5}),
		)
	}
	return row.New(12).Add(
		item("Registros", fmt.Sprintf("%d", s.Total)),
		item("Locales", fmt.Sprintf("%d", s.Local)),
		item("De bolsa", fmt.Sprintf("%d", s.Authoritative)),
		item("Monto declarado", s.TotalDeclared.StringFixed(2)),
		item("Monto ajustado", s.TotalAdjusted.StringFixed(2)),
		col.New(2),
	)
}

// tableHeaderRow: cabecera de la tabla de registros.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cliente", 2, align.Left),
		h("Fecha", 1, align.Center),
		h("Impuesto", 1, align.Center),
		h("País", 1, align.Center),
		h("Declarado", 2, align.Right),
		h("Ajustado", 2, align.Right),
		h("Suma 8-19", 1, align.Right),
		h("Estado", 1, align.Center),
		h("Válido", 1, align.Center),
	)
}

// recordRow: una fila por calificación.
func recordRow(q *entity.Qualification, label report.Labeler) core.Row {
	client := q.ClientID
	if label != nil {
		client = label(q.ClientID)
	}
	sum, err := factors.WindowSum(q.Factors)
	valido, validColor := "Sí", colorGray
	if err != nil {
		valido, validColor = "No", colorWarn
	}
	estado := "Local"
	if q.IsAuthoritative {
		estado = "Bolsa"
	}

	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{
			Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		}))
	}
	return row.New(6).Add(
		cell(client, 2, align.Left),
		cell(q.DeclarationDate, 1, align.Center),
		cell(q.TaxType, 1, align.Center),
		cell(q.Country, 1, align.Center),
		cell(q.DeclaredAmount.StringFixed(2), 2, align.Right),
		cell(q.AdjustedAmount.StringFixed(2), 2, align.Right),
		cell(sum.StringFixed(2), 1, align.Right),
		cell(estado, 1, align.Center),
		col.New(1).Add(text.New(valido, props.Text{
			Size: 8, Align: align.Center, Top: 1, Color: validColor, Style: fontstyle.Bold,
		})),
	)
}
