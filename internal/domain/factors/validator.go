// Package factors valida el vector de 19 factores de una calificación
// tributaria: rango individual [0,1] y suma acotada de la ventana 8..19.
package factors

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/tribunsys/internal/domain"
)

// Parámetros del requerimiento A-01.
const (
	Count       = 19 // entradas exactas del vector
	WindowStart = 8  // posición inicial de la ventana, 1-based
	WindowEnd   = 19 // posición final de la ventana, inclusive
)

var (
	zero         = decimal.Zero
	one          = decimal.NewFromInt(1)
	maxWindowSum = decimal.NewFromInt(1)
)

// ValidateVector exige exactamente 19 factores, todos en [0,1].
// Reporta el primer índice fuera de rango (1-based), en orden.
func ValidateVector(fs []decimal.Decimal) error {
	if len(fs) != Count {
		return &domain.FactorCountError{Count: len(fs)}
	}
	for i, f := range fs {
		if f.LessThan(zero) || f.GreaterThan(one) {
			return &domain.FactorRangeError{Index: i + 1, Value: f}
		}
	}
	return nil
}

// WindowSum valida y suma los factores de las posiciones WindowStart..WindowEnd.
// Devuelve la suma exacta también en el caso válido: la interfaz y el
// exportador la muestran ("Suma Factores 8-19") y derivan de ella el flag
// "Válido", así que el número importa tanto como el veredicto.
// El límite es inclusivo: suma == 1.0 es válida.
func WindowSum(fs []decimal.Decimal) (decimal.Decimal, error) {
	return WindowSumRange(fs, WindowStart, WindowEnd)
}

// WindowSumRange como WindowSum con ventana explícita (1-based, inclusiva).
// Índices fuera del largo del vector se ignoran, igual que al validar un
// subconjunto de columnas de planilla.
func WindowSumRange(fs []decimal.Decimal, start, end int) (decimal.Decimal, error) {
	total := decimal.Zero
	for i := start; i <= end; i++ {
		if i-1 < 0 || i-1 >= len(fs) {
			continue
		}
		f := fs[i-1]
		if f.LessThan(zero) || f.GreaterThan(one) {
			return total, &domain.FactorRangeError{Index: i, Value: f}
		}
		total = total.Add(f)
	}
	if total.GreaterThan(maxWindowSum) {
		return total, &domain.SumExceededError{Start: start, End: end, Total: total}
	}
	return total, nil
}

// ParseFactor coerciona una celda a decimal aceptando coma o punto como
// separador decimal (las planillas chilenas traen coma).
func ParseFactor(cell string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(cell, ",", "."))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
