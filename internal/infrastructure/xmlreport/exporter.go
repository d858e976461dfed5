// Package xmlreport exporta calificaciones como documento XML para los
// sistemas de intercambio del regulador.
package xmlreport

import (
	"fmt"
	"time"

	"github.com/beevik/etree"

	"github.com/tu-usuario/tribunsys/internal/application/report"
	"github.com/tu-usuario/tribunsys/internal/domain/entity"
	"github.com/tu-usuario/tribunsys/internal/domain/factors"
)

// Exporter arma el XML de calificaciones con etree.
type Exporter struct{}

// NewExporter construye el exportador.
func NewExporter() *Exporter { return &Exporter{} }

// Export serializa los registros. El documento lleva un encabezado con el
// corredor y la fecha de emisión, y un nodo por calificación con sus
// factores y subsidios aplicados.
func (e *Exporter) Export(brokerID string, records []*entity.Qualification, label report.Labeler) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("CalificacionesTributarias")
	root.CreateAttr("version", "1.0")

	header := root.CreateElement("Encabezado")
	header.CreateElement("Corredor").SetText(brokerID)
	header.CreateElement("FechaEmision").SetText(time.Now().UTC().Format(time.RFC3339))
	header.CreateElement("TotalRegistros").SetText(fmt.Sprintf("%d", len(records)))

	body := root.CreateElement("Registros")
	for _, q := range records {
		body.AddChild(recordElement(q, label))
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

func recordElement(q *entity.Qualification, label report.Labeler) *etree.Element {
	client := q.ClientID
	if label != nil {
		client = label(q.ClientID)
	}

	el := etree.NewElement("Calificacion")
	el.CreateAttr("id", q.ID)

	el.CreateElement("Cliente").SetText(client)
	el.CreateElement("FechaDeclaracion").SetText(q.DeclarationDate)
	el.CreateElement("TipoImpuesto").SetText(q.TaxType)
	el.CreateElement("Pais").SetText(q.Country)
	el.CreateElement("MontoDeclarado").SetText(q.DeclaredAmount.StringFixed(2))
	el.CreateElement("MontoAjustado").SetText(q.AdjustedAmount.StringFixed(2))

	origen := "local"
	if q.IsAuthoritative {
		origen = "bolsa"
	}
	el.CreateElement("Origen").SetText(origen)

	fs := el.CreateElement("Factores")
	sum, err := factors.WindowSum(q.Factors)
	fs.CreateAttr("suma_ventana", sum.StringFixed(2))
	fs.CreateAttr("valido", boolText(err == nil))
	for i, f := range q.Factors {
		fe := fs.CreateElement("Factor")
		fe.CreateAttr("posicion", fmt.Sprintf("%d", i+1))
		fe.SetText(f.String())
	}

	if len(q.AppliedSubsidies) > 0 {
		subs := el.CreateElement("SubsidiosAplicados")
		for _, s := range q.AppliedSubsidies {
			se := subs.CreateElement("Subsidio")
			se.CreateAttr("id", s.SubsidyID)
			se.CreateElement("Nombre").SetText(s.Name)
			se.CreateElement("Porcentaje").SetText(s.Percentage.String())
		}
	}
	return el
}

func boolText(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
