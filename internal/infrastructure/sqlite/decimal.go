package sqlite

import "github.com/shopspring/decimal"

// decimalFromText parsea un decimal guardado como texto.
func decimalFromText(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
