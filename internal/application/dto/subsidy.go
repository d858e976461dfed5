package dto

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/tribunsys/internal/domain/entity"
)

// SubsidyRequest alta o edición de un subsidio.
// Porcentaje acepta fracción (0.15) o porcentaje (15); se normaliza al guardar.
type SubsidyRequest struct {
	Nombre      string          `json:"nombre_subsidio"`
	Porcentaje  decimal.Decimal `json:"valor_porcentual"`
	IDNormativa string          `json:"id_normativa,omitempty"`
}

// SubsidyResponse vista de un subsidio.
type SubsidyResponse struct {
	ID          string          `json:"id"`
	Nombre      string          `json:"nombre_subsidio"`
	Porcentaje  decimal.Decimal `json:"valor_porcentual"`
	IDNormativa string          `json:"id_normativa,omitempty"`
}

// ToSubsidyResponse mapea la entidad a su vista JSON.
func ToSubsidyResponse(s entity.Subsidy) SubsidyResponse {
	return SubsidyResponse{
		ID:          s.ID,
		Nombre:      s.Name,
		Porcentaje:  s.Percentage,
		IDNormativa: s.RegulationRef,
	}
}

// ToSubsidyResponses mapea el catálogo completo.
func ToSubsidyResponses(subs []entity.Subsidy) []SubsidyResponse {
	out := make([]SubsidyResponse, 0, len(subs))
	for _, s := range subs {
		out = append(out, ToSubsidyResponse(s))
	}
	return out
}

// DeleteAllResponse resultado del vaciado del catálogo.
type DeleteAllResponse struct {
	Eliminados int `json:"eliminados"`
}
