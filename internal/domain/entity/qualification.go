package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de impuesto admitidos en una declaración.
const (
	TaxTypeRenta       = "Renta"
	TaxTypeIVA         = "IVA"
	TaxTypeRetenciones = "Retenciones"
	TaxTypePatente     = "Patente"
	TaxTypeTimbre      = "Timbre"
)

// TaxTypes catálogo cerrado de tipos de impuesto.
var TaxTypes = []string{TaxTypeRenta, TaxTypeIVA, TaxTypeRetenciones, TaxTypePatente, TaxTypeTimbre}

// Countries catálogo cerrado de países operados.
var Countries = []string{"Chile", "Peru", "Colombia"}

// IsValidTaxType indica si el tipo pertenece al catálogo.
func IsValidTaxType(t string) bool {
	for _, v := range TaxTypes {
		if v == t {
			return true
		}
	}
	return false
}

// IsValidCountry indica si el país pertenece al catálogo.
func IsValidCountry(c string) bool {
	for _, v := range Countries {
		if v == c {
			return true
		}
	}
	return false
}

// AppliedSubsidy instantánea de un subsidio al momento de aplicarlo.
// No es una referencia viva: si el subsidio cambia después, la calificación
// conserva los valores con los que se calculó.
type AppliedSubsidy struct {
	SubsidyID  string          `json:"subsidio_id"`
	Name       string          `json:"nombre"`
	Percentage decimal.Decimal `json:"porcentaje"`
}

// Qualification es una calificación tributaria: la declaración de un cliente
// para un período, con su vector de 19 factores y los subsidios aplicados.
//
// IsAuthoritative distingue el origen: true = canal oficial/bolsa (solo
// editable por administradores), false = ingreso local del corredor.
// A lo más una calificación de bolsa activa puede existir por
// (ClientID, DeclarationDate, TaxType).
//
// El registro no lleva token de concurrencia optimista: dos actualizaciones
// simultáneas al mismo ID resuelven last-write-wins. Brecha conocida,
// heredada del sistema de origen.
type Qualification struct {
	ID              string
	ClientID        string
	OwnerID         string // principal que creó el registro; acota la edición local
	DeclarationDate string // YYYY-MM-DD; comparable por igualdad y rango como string
	TaxType         string
	Country         string
	DeclaredAmount  decimal.Decimal
	AdjustedAmount  decimal.Decimal // DeclaredAmount tras la cascada de subsidios
	Factors         []decimal.Decimal
	AppliedSubsidies []AppliedSubsidy
	IsAuthoritative bool
	Active          bool
	CreatedAt       time.Time
	ModifiedAt      time.Time
	DeletedAt       *time.Time
}
