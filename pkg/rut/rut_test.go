package rut_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/tribunsys/pkg/rut"
)

// Vector de referencia: el cuerpo 12345678 produce DV '5' con módulo 11
// (pesos 2..7 cíclicos sobre los dígitos invertidos).
func TestComputeDV_VectorReferencia(t *testing.T) {
	dv, err := rut.ComputeDV("12345678")
	require.NoError(t, err)
	assert.Equal(t, byte('5'), dv, "el DV de 12345678 debe ser '5'")
}

func TestComputeDV_CasosConocidos(t *testing.T) {
	cases := []struct {
		body string
		dv   byte
	}{
		{"12345678", '5'},
		{"21232535", 'K'},
		{"7654321", '6'},
	}
	for _, c := range cases {
		dv, err := rut.ComputeDV(c.body)
		require.NoError(t, err, "cuerpo %s", c.body)
		assert.Equal(t, c.dv, dv, "DV incorrecto para %s", c.body)
	}
}

func TestValidate_RUTValido(t *testing.T) {
	assert.NoError(t, rut.Validate("12345678-5"))
	assert.NoError(t, rut.Validate("12.345.678-5"))
	assert.NoError(t, rut.Validate("123456785"))
	assert.NoError(t, rut.Validate("21232535-k"), "el DV K en minúscula debe normalizarse")
}

func TestValidate_DigitoIncorrecto(t *testing.T) {
	err := rut.Validate("12345678-4")
	require.Error(t, err)
	assert.ErrorIs(t, err, rut.ErrDigitoVerificador,
		"un DV que no coincide debe distinguirse de un problema de formato")
}

func TestValidate_Formato(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"vacío", ""},
		{"muy corto", "5"},
		{"cuerpo no numérico", "12A45678-5"},
		{"cuerpo muy corto", "123456-4"},
		{"cuerpo muy largo", "123456789-5"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := rut.Validate(c.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, rut.ErrFormato)
		})
	}
}

// Todo RUT que valida debe seguir validando después de formatearlo:
// Validate(Format(x)) == Validate(x) para entradas válidas.
func TestFormat_RoundTrip(t *testing.T) {
	for _, id := range []string{"12345678-5", "123456785", "21232535-K", "7654321-6"} {
		require.NoError(t, rut.Validate(id))
		formatted := rut.Format(id)
		assert.NoError(t, rut.Validate(formatted), "el formateo no debe invalidar %s (-> %s)", id, formatted)
	}
}

func TestFormat_PuntosYGuion(t *testing.T) {
	assert.Equal(t, "12.345.678-5", rut.Format("123456785"))
	assert.Equal(t, "7.654.321-6", rut.Format("76543216"))
}

func TestNormalize_MinimoDosCaracteres(t *testing.T) {
	_, err := rut.Normalize("1")
	assert.ErrorIs(t, err, rut.ErrFormato)

	clean, err := rut.Normalize("12.345.678-5")
	require.NoError(t, err)
	assert.Equal(t, "123456785", clean)
}
