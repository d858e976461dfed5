package dto

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/tribunsys/internal/domain/entity"
)

// QualificationRequest alta o edición de una calificación.
type QualificationRequest struct {
	ClienteRUT       string            `json:"cliente_rut"`
	FechaDeclaracion string            `json:"fecha_declaracion"`
	TipoImpuesto     string            `json:"tipo_impuesto"`
	Pais             string            `json:"pais"`
	MontoDeclarado   decimal.Decimal   `json:"monto_declarado"`
	Factores         []decimal.Decimal `json:"factores"`
	Subsidios        []string          `json:"subsidios,omitempty"` // IDs, en orden de aplicación
}

// QualificationResponse vista de una calificación.
type QualificationResponse struct {
	ID                string                  `json:"id"`
	ClienteID         string                  `json:"cliente_id"`
	PropietarioID     string                  `json:"propietario_id"`
	FechaDeclaracion  string                  `json:"fecha_declaracion"`
	TipoImpuesto      string                  `json:"tipo_impuesto"`
	Pais              string                  `json:"pais"`
	MontoDeclarado    decimal.Decimal         `json:"monto_declarado"`
	MontoAjustado     decimal.Decimal         `json:"monto_ajustado"`
	Factores          []decimal.Decimal       `json:"factores"`
	Subsidios         []entity.AppliedSubsidy `json:"subsidios_aplicados,omitempty"`
	EsBolsa           bool                    `json:"es_bolsa"`
	FechaCreacion     string                  `json:"fecha_creacion"`
	FechaModificacion string                  `json:"fecha_modificacion"`
}

// ToQualificationResponse mapea la entidad a su vista JSON.
func ToQualificationResponse(q *entity.Qualification) QualificationResponse {
	return QualificationResponse{
		ID:                q.ID,
		ClienteID:         q.ClientID,
		PropietarioID:     q.OwnerID,
		FechaDeclaracion:  q.DeclarationDate,
		TipoImpuesto:      q.TaxType,
		Pais:              q.Country,
		MontoDeclarado:    q.DeclaredAmount,
		MontoAjustado:     q.AdjustedAmount,
		Factores:          q.Factors,
		Subsidios:         q.AppliedSubsidies,
		EsBolsa:           q.IsAuthoritative,
		FechaCreacion:     q.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		FechaModificacion: q.ModifiedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ToQualificationResponses mapea una lista completa.
func ToQualificationResponses(qs []*entity.Qualification) []QualificationResponse {
	out := make([]QualificationResponse, 0, len(qs))
	for _, q := range qs {
		out = append(out, ToQualificationResponse(q))
	}
	return out
}
