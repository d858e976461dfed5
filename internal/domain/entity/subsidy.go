package entity

import "github.com/shopspring/decimal"

// Subsidy es un beneficio porcentual administrado por corredor.
// Percentage se almacena como fracción en [0,1]; las entradas 0-100 se
// normalizan dividiendo por 100 al guardar.
type Subsidy struct {
	ID            string          `db:"id"`
	Name          string          `db:"nombre_subsidio"`
	Percentage    decimal.Decimal `db:"valor_porcentual"`
	RegulationRef string          `db:"id_normativa"` // identificador normativo externo, opcional
}

// SubsidyApplication registro local de la aplicación de un subsidio a una
// calificación (trazabilidad por corredor).
type SubsidyApplication struct {
	ID              string `db:"id"`
	SubsidyID       string `db:"subsidio_id"`
	QualificationID string `db:"calificacion_id"`
	AppliedAt       string `db:"fecha_aplicacion"` // ISO-8601 UTC
	Details         string `db:"detalles"`
}
