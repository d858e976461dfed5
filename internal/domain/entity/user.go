package entity

import "time"

// Roles del sistema.
const (
	RoleAdministrador          = "administrador"
	RoleAnalistaMercado        = "analista_mercado"
	RoleAuditorTributario      = "auditor_tributario"
	RoleEspecialistaBeneficios = "especialista_beneficios"
	RoleCliente                = "cliente"
)

// Módulos funcionales sobre los que se otorgan permisos.
const (
	ModuleCalificaciones = "calificaciones"
	ModuleCargaMasiva    = "carga_masiva"
	ModuleSubsidios      = "subsidios"
	ModuleConsultar      = "consultar"
	ModuleReportes       = "reportes"
	ModuleUsuarios       = "usuarios"
)

// permissions matriz rol -> módulos habilitados.
var permissions = map[string]map[string]bool{
	RoleAdministrador: {
		ModuleCalificaciones: true,
		ModuleCargaMasiva:    true,
		ModuleSubsidios:      true,
		ModuleConsultar:      true,
		ModuleReportes:       true,
		ModuleUsuarios:       true,
	},
	RoleAnalistaMercado: {
		ModuleCalificaciones: true,
		ModuleCargaMasiva:    true,
		ModuleConsultar:      true,
		ModuleReportes:       true,
	},
	RoleAuditorTributario: {
		ModuleConsultar: true,
		ModuleReportes:  true,
	},
	RoleEspecialistaBeneficios: {
		ModuleSubsidios: true,
		ModuleConsultar: true,
		ModuleReportes:  true,
	},
	RoleCliente: {
		ModuleConsultar: true, // solo sus propios datos
		ModuleReportes:  true,
	},
}

// HasPermission indica si el rol puede acceder al módulo.
func HasPermission(role, module string) bool {
	return permissions[role][module]
}

// IsValidRole indica si el rol pertenece al catálogo.
func IsValidRole(role string) bool {
	_, ok := permissions[role]
	return ok
}

// User representa un usuario autenticable (pertenece a un corredor).
type User struct {
	ID           string
	BrokerID     string
	Email        string
	PasswordHash string // bcrypt; nunca plano después de persistir
	Name         string
	Role         string
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
