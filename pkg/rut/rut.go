package rut

import (
	"errors"
	"fmt"
	"strings"
)

// Errores base: permiten distinguir un problema de formato (el usuario debe
// reingresar el dato) de un dígito verificador incorrecto.
var (
	ErrFormato           = errors.New("rut: formato inválido")
	ErrDigitoVerificador = errors.New("rut: dígito verificador inválido")
)

// pesos para el cálculo del dígito verificador del RUT chileno (módulo 11).
// Se aplican cíclicamente sobre los dígitos del cuerpo en orden inverso.
var weights = [6]int{2, 3, 4, 5, 6, 7}

// Clean normaliza un RUT: elimina puntos y guiones y pasa a mayúsculas.
// "12.345.678-5" -> "123456785".
func Clean(id string) string {
	s := strings.NewReplacer(".", "", "-", "", " ", "").Replace(id)
	return strings.ToUpper(s)
}

// Normalize limpia el RUT y verifica el mínimo estructural (cuerpo + DV).
func Normalize(id string) (string, error) {
	clean := Clean(id)
	if len(clean) < 2 {
		return "", fmt.Errorf("%w: debe tener al menos 2 caracteres", ErrFormato)
	}
	return clean, nil
}

// Format presenta un RUT como XX.XXX.XXX-X (puntos de miles y guion antes del DV).
func Format(id string) string {
	clean := Clean(id)
	if len(clean) < 2 {
		return clean
	}
	body := clean[:len(clean)-1]
	dv := clean[len(clean)-1]

	var b strings.Builder
	for i, c := range body {
		if i > 0 && (len(body)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	return b.String() + "-" + string(dv)
}

// ComputeDV calcula el dígito verificador para el cuerpo numérico del RUT.
// Módulo 11 con pesos 2..7 cíclicos sobre los dígitos invertidos;
// resto 11 -> '0', resto 10 -> 'K', en otro caso el dígito.
func ComputeDV(body string) (byte, error) {
	if body == "" {
		return 0, fmt.Errorf("%w: cuerpo vacío", ErrFormato)
	}
	sum := 0
	for i := 0; i < len(body); i++ {
		c := body[len(body)-1-i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: el cuerpo debe ser numérico", ErrFormato)
		}
		sum += int(c-'0') * weights[i%len(weights)]
	}
	dv := 11 - sum%11
	switch dv {
	case 11:
		return '0', nil
	case 10:
		return 'K', nil
	default:
		return byte('0' + dv), nil
	}
}

// Validate valida un RUT chileno completo (cuerpo de 7 a 8 dígitos + DV).
// Retorna un error envuelto en ErrFormato o ErrDigitoVerificador según el caso.
func Validate(id string) error {
	clean, err := Normalize(id)
	if err != nil {
		return err
	}
	body := clean[:len(clean)-1]
	dv := clean[len(clean)-1]

	for i := 0; i < len(body); i++ {
		if body[i] < '0' || body[i] > '9' {
			return fmt.Errorf("%w: solo se permiten números antes del dígito verificador", ErrFormato)
		}
	}
	if len(body) < 7 || len(body) > 8 {
		return fmt.Errorf("%w: el cuerpo debe tener entre 7 y 8 dígitos, tiene %d", ErrFormato, len(body))
	}

	expected, err := ComputeDV(body)
	if err != nil {
		return err
	}
	if dv != expected {
		return fmt.Errorf("%w: esperado %c, recibido %c", ErrDigitoVerificador, expected, dv)
	}
	return nil
}
