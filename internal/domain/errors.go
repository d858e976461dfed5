package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrOffline            = errors.New("sin conexión con el almacén de datos")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
)

// ValidationError campo requerido ausente o con valor inválido.
// El campo viaja en el error para que el llamador pueda marcarlo sin
// re-derivar qué falló.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("el campo '%s' es requerido", e.Field)
	}
	return fmt.Sprintf("campo '%s': %s", e.Field, e.Reason)
}

// FactorCountError el vector de factores no tiene exactamente 19 entradas.
type FactorCountError struct {
	Count int
}

func (e *FactorCountError) Error() string {
	return fmt.Sprintf("se requieren exactamente 19 factores, se recibieron %d", e.Count)
}

// FactorRangeError un factor está fuera de [0,1]. Index es 1-based, como lo
// muestran los formularios y las planillas de carga.
type FactorRangeError struct {
	Index int
	Value decimal.Decimal
}

func (e *FactorRangeError) Error() string {
	return fmt.Sprintf("el factor %d debe estar entre 0 y 1 (valor: %s)", e.Index, e.Value.String())
}

// FactorTypeError una celda de factor no pudo coercionarse a numérico.
type FactorTypeError struct {
	Index int
}

func (e *FactorTypeError) Error() string {
	return fmt.Sprintf("el factor %d debe ser un valor numérico", e.Index)
}

// SumExceededError la suma de la ventana de factores supera 1.0.
// Total lleva la suma exacta calculada para mostrarla al usuario.
type SumExceededError struct {
	Start, End int
	Total      decimal.Decimal
}

func (e *SumExceededError) Error() string {
	return fmt.Sprintf("la suma de los factores %d al %d no puede superar 1.0 (actual: %s)",
		e.Start, e.End, e.Total.StringFixed(2))
}

// UnknownClientError el RUT no corresponde a un cliente registrado.
// Política vigente: los clientes deben pre-registrarse, nunca se crean
// automáticamente durante una calificación o carga.
type UnknownClientError struct {
	RUT string
}

func (e *UnknownClientError) Error() string {
	return fmt.Sprintf("no existe un cliente registrado con RUT %s", e.RUT)
}

// ConflictSummary resumen del registro de bolsa existente, suficiente para
// que el llamador ofrezca el remedio (cambiar fecha o tipo de impuesto).
type ConflictSummary struct {
	RecordID        string
	ClientID        string
	DeclarationDate string
	TaxType         string
}

// AuthoritativeConflictError ya existe una calificación de bolsa activa para
// (cliente, fecha, tipo de impuesto); una calificación local no puede
// duplicarla ni sobreescribirla.
type AuthoritativeConflictError struct {
	Existing ConflictSummary
}

func (e *AuthoritativeConflictError) Error() string {
	return fmt.Sprintf("ya existe una calificación de bolsa para el cliente %s con fecha %s y tipo %s",
		e.Existing.ClientID, e.Existing.DeclarationDate, e.Existing.TaxType)
}

// AuthorizationError el actor no es dueño del registro ni tiene rol privilegiado.
type AuthorizationError struct {
	ActorID  string
	RecordID string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("el usuario %s no puede modificar la calificación %s", e.ActorID, e.RecordID)
}

// PersistenceError falla del almacén en una escritura primaria. Se propaga
// siempre; solo los espejos y la auditoría se degradan a log.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("error de persistencia en %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
