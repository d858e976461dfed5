package xmlreport

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/tribunsys/internal/domain/entity"
)

func TestExport(t *testing.T) {
	fs := make([]decimal.Decimal, 19)
	fs[7] = decimal.RequireFromString("0.4")

	records := []*entity.Qualification{{
		ID:              "cal-1",
		ClientID:        "cliente-1",
		DeclarationDate: "2026-04-30",
		TaxType:         entity.TaxTypeRenta,
		Country:         "Chile",
		DeclaredAmount:  decimal.NewFromInt(1000),
		AdjustedAmount:  decimal.RequireFromString("850"),
		Factors:         fs,
		AppliedSubsidies: []entity.AppliedSubsidy{
			{SubsidyID: "sub-1", Name: "Beneficio PyME", Percentage: decimal.RequireFromString("0.15")},
		},
		IsAuthoritative: true,
		Active:          true,
	}}

	out, err := NewExporter().Export("corredor-1", records, func(string) string { return "12.345.678-5" })
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out), "La salida debe ser XML bien formado")

	root := doc.SelectElement("CalificacionesTributarias")
	require.NotNil(t, root)
	assert.Equal(t, "corredor-1", root.FindElement("Encabezado/Corredor").Text())
	assert.Equal(t, "1", root.FindElement("Encabezado/TotalRegistros").Text())

	reg := root.FindElement("Registros/Calificacion")
	require.NotNil(t, reg)
	assert.Equal(t, "cal-1", reg.SelectAttrValue("id", ""))
	assert.Equal(t, "12.345.678-5", reg.FindElement("Cliente").Text())
	assert.Equal(t, "850.00", reg.FindElement("MontoAjustado").Text())
	assert.Equal(t, "bolsa", reg.FindElement("Origen").Text())

	factores := reg.FindElement("Factores")
	require.NotNil(t, factores)
	assert.Equal(t, "0.40", factores.SelectAttrValue("suma_ventana", ""))
	assert.Equal(t, "true", factores.SelectAttrValue("valido", ""))
	assert.Len(t, factores.SelectElements("Factor"), 19)

	sub := reg.FindElement("SubsidiosAplicados/Subsidio")
	require.NotNil(t, sub)
	assert.Equal(t, "sub-1", sub.SelectAttrValue("id", ""))
	assert.Equal(t, "Beneficio PyME", sub.FindElement("Nombre").Text())
}

func TestExport_SinRegistros(t *testing.T) {
	out, err := NewExporter().Export("corredor-1", nil, nil)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	assert.Equal(t, "0", doc.FindElement("//Encabezado/TotalRegistros").Text())
	assert.Empty(t, doc.FindElements("//Registros/Calificacion"))
}
