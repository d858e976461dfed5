package entity

import "time"

// Party es una entidad del directorio compartido (clientes, corredores).
// El motor solo la consulta; el alta de clientes ocurre en otro sistema.
type Party struct {
	ID        string
	RUT       string
	Name      string
	LegalName string
	Role      string // RoleCliente para los sujetos de calificación
	Country   string
	CreatedAt time.Time
}
