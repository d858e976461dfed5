// Package report arma las filas de exportación de calificaciones para los
// distintos formatos de salida. Solo formatea: ninguna regla de negocio
// nueva se calcula aquí salvo la suma de la ventana de factores, que los
// reportes muestran junto al veredicto.
package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/tribunsys/internal/domain/entity"
	"github.com/tu-usuario/tribunsys/internal/domain/factors"
	"github.com/tu-usuario/tribunsys/pkg/tabular"
)

// Labeler traduce un ID de cliente a la etiqueta del reporte (RUT o nombre).
// nil deja el ID tal cual.
type Labeler func(clientID string) string

// ExportHeaders encabezados del reporte plano, en orden de salida.
var ExportHeaders = buildExportHeaders()

func buildExportHeaders() []string {
	h := []string{"Cliente", "Fecha Declaracion", "Tipo Impuesto", "Pais", "Monto Declarado", "Monto Ajustado"}
	for i := 1; i <= factors.Count; i++ {
		h = append(h, fmt.Sprintf("Factor %d", i))
	}
	return append(h, "Suma Factores 8-19", "Estado", "Valido", "Subsidios")
}

// BuildExportTable vuelca las calificaciones al formato plano de reporte.
func BuildExportTable(records []*entity.Qualification, label Labeler) *tabular.Table {
	t := &tabular.Table{Headers: append([]string{}, ExportHeaders...)}
	for _, q := range records {
		t.Rows = append(t.Rows, buildRow(q, label))
	}
	return t
}

func buildRow(q *entity.Qualification, label Labeler) []string {
	client := q.ClientID
	if label != nil {
		client = label(q.ClientID)
	}

	row := []string{
		client,
		q.DeclarationDate,
		q.TaxType,
		q.Country,
		q.DeclaredAmount.StringFixed(2),
		q.AdjustedAmount.StringFixed(2),
	}
	for i := 0; i < factors.Count; i++ {
		cell := "0"
		if i < len(q.Factors) {
			cell = q.Factors[i].String()
		}
		row = append(row, cell)
	}

	sum, err := factors.WindowSum(q.Factors)
	valido := "Sí"
	if err != nil {
		valido = "No"
	}
	estado := "Local"
	if q.IsAuthoritative {
		estado = "Bolsa"
	}

	names := make([]string, 0, len(q.AppliedSubsidies))
	for _, s := range q.AppliedSubsidies {
		names = append(names, s.Name)
	}
	return append(row, sum.StringFixed(2), estado, valido, strings.Join(names, "; "))
}

// Summary agregados para el encabezado del reporte PDF.
type Summary struct {
	Total         int
	Local         int
	Authoritative int
	TotalDeclared decimal.Decimal
	TotalAdjusted decimal.Decimal
}

// BuildSummary acumula los totales del conjunto exportado.
func BuildSummary(records []*entity.Qualification) Summary {
	s := Summary{Total: len(records)}
	for _, q := range records {
		if q.IsAuthoritative {
			s.Authoritative++
		} else {
			s.Local++
		}
		s.TotalDeclared = s.TotalDeclared.Add(q.DeclaredAmount)
		s.TotalAdjusted = s.TotalAdjusted.Add(q.AdjustedAmount)
	}
	return s
}
