package factors_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/tribunsys/internal/domain"
	"github.com/tu-usuario/tribunsys/internal/domain/factors"
)

func vector(vals ...float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vals))
	for i, v := range vals {
		out[i] = decimal.NewFromFloat(v)
	}
	return out
}

// vector base: 7 ceros + 12 entradas para la ventana 8..19.
func baseVector(window float64) []decimal.Decimal {
	vals := make([]float64, 19)
	for i := 7; i < 19; i++ {
		vals[i] = window
	}
	return vector(vals...)
}

func TestValidateVector_LargoIncorrecto(t *testing.T) {
	for _, n := range []int{0, 1, 18, 20} {
		fs := make([]decimal.Decimal, n)
		err := factors.ValidateVector(fs)
		require.Error(t, err, "largo %d debe fallar", n)
		var countErr *domain.FactorCountError
		require.True(t, errors.As(err, &countErr))
		assert.Equal(t, n, countErr.Count)
	}
}

func TestValidateVector_PrimerIndiceFueraDeRango(t *testing.T) {
	fs := baseVector(0)
	fs[0] = decimal.NewFromFloat(1.5)  // índice 1
	fs[5] = decimal.NewFromFloat(-0.1) // índice 6, también inválido

	err := factors.ValidateVector(fs)
	require.Error(t, err)
	var rangeErr *domain.FactorRangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, 1, rangeErr.Index, "debe reportarse el primer índice ofensor, no el último")
}

func TestValidateVector_Valido(t *testing.T) {
	assert.NoError(t, factors.ValidateVector(baseVector(0.05)))
}

// Vector del requerimiento: doce entradas de 0.1 en la ventana suman 1.2 y
// deben rechazarse con la suma exacta; bajar tres a 0.0 deja 0.9, válido.
func TestWindowSum_VectorRequerimiento(t *testing.T) {
	fs := baseVector(0.1)

	sum, err := factors.WindowSum(fs)
	require.Error(t, err)
	var sumErr *domain.SumExceededError
	require.True(t, errors.As(err, &sumErr))
	assert.Equal(t, "1.2", sumErr.Total.String())
	assert.Equal(t, "1.2", sum.String(), "la suma se devuelve también al fallar")

	fs[7] = decimal.Zero
	fs[8] = decimal.Zero
	fs[9] = decimal.Zero
	sum, err = factors.WindowSum(fs)
	require.NoError(t, err)
	assert.Equal(t, "0.9", sum.String())
}

func TestWindowSum_LimiteInclusivo(t *testing.T) {
	// diez entradas de 0.1: suma exactamente 1.0 -> válida
	vals := make([]float64, 19)
	for i := 7; i < 17; i++ {
		vals[i] = 0.1
	}
	sum, err := factors.WindowSum(vector(vals...))
	require.NoError(t, err, "suma == 1.0 debe ser válida (límite inclusivo)")
	assert.True(t, sum.Equal(decimal.NewFromInt(1)))
}

func TestWindowSum_SumaExactaDecimal(t *testing.T) {
	// 0.1 doce veces en float64 no suma 1.2 exacto; con decimal sí.
	sum, err := factors.WindowSum(baseVector(0.05))
	require.NoError(t, err)
	assert.Equal(t, "0.6", sum.String())
}

func TestWindowSum_RangoDentroDeVentana(t *testing.T) {
	fs := baseVector(0.05)
	fs[9] = decimal.NewFromFloat(1.3) // índice 10, dentro de la ventana

	_, err := factors.WindowSum(fs)
	var rangeErr *domain.FactorRangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, 10, rangeErr.Index)
}

func TestParseFactor_ComaYPunto(t *testing.T) {
	d, ok := factors.ParseFactor("0,25")
	require.True(t, ok)
	assert.Equal(t, "0.25", d.String())

	d, ok = factors.ParseFactor(" 0.75 ")
	require.True(t, ok)
	assert.Equal(t, "0.75", d.String())

	_, ok = factors.ParseFactor("abc")
	assert.False(t, ok)
	_, ok = factors.ParseFactor("")
	assert.False(t, ok)
}
