package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/tribunsys/internal/domain/entity"
)

func sampleRecord() *entity.Qualification {
	fs := make([]decimal.Decimal, 19)
	fs[0] = decimal.RequireFromString("0.5")
	fs[7] = decimal.RequireFromString("0.25") // factor 8, dentro de la ventana
	return &entity.Qualification{
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
		Active: true,
	}
}

func TestBuildExportTable(t *testing.T) {
	table := BuildExportTable([]*entity.Qualification{sampleRecord()}, func(id string) string {
		return "12.345.678-5"
	})

	assert.Equal(t, ExportHeaders, table.Headers)
	require.Len(t, table.Rows, 1)
	row := table.Rows[0]
	require.Len(t, row, len(ExportHeaders))

	assert.Equal(t, "12.345.678-5", row[0], "El labeler traduce el ID de cliente")
	assert.Equal(t, "2026-04-30", row[1])
	assert.Equal(t, "1000.00", row[4])
	assert.Equal(t, "850.00", row[5])
	assert.Equal(t, "0.5", row[6], "Factor 1")
	assert.Equal(t, "0.25", row[13], "Factor 8")

	n := len(row)
	assert.Equal(t, "0.25", row[n-4], "Suma de la ventana 8-19")
	assert.Equal(t, "Local", row[n-3])
	assert.Equal(t, "Sí", row[n-2])
	assert.Equal(t, "Beneficio PyME", row[n-1])
}

func TestBuildExportTable_SinLabeler(t *testing.T) {
	table := BuildExportTable([]*entity.Qualification{sampleRecord()}, nil)
	assert.Equal(t, "cliente-1", table.Rows[0][0])
}

func TestBuildExportTable_VentanaExcedida(t *testing.T) {
	q := sampleRecord()
	for i := 7; i < 19; i++ {
		q.Factors[i] = decimal.RequireFromString("0.1")
	}
	q.IsAuthoritative = true

	table := BuildExportTable([]*entity.Qualification{q}, nil)
	row := table.Rows[0]
	n := len(row)
	assert.Equal(t, "1.20", row[n-4], "La suma se muestra aunque exceda el límite")
	assert.Equal(t, "Bolsa", row[n-3])
	assert.Equal(t, "No", row[n-2])
}

func TestBuildSummary(t *testing.T) {
	local := sampleRecord()
	bolsa := sampleRecord()
	bolsa.IsAuthoritative = true
	bolsa.DeclaredAmount = decimal.NewFromInt(500)
	bolsa.AdjustedAmount = decimal.NewFromInt(500)

	s := BuildSummary([]*entity.Qualification{local, bolsa})
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Local)
	assert.Equal(t, 1, s.Authoritative)
	assert.True(t, s.TotalDeclared.Equal(decimal.NewFromInt(1500)))
	assert.True(t, s.TotalAdjusted.Equal(decimal.RequireFromString("1350")))
}
