package dto

// ValidationReport resultado de la validación previa de una planilla.
type ValidationReport struct {
	ColumnasFaltantes []string         `json:"columnas_faltantes,omitempty"`
	PlanillaVacia     bool             `json:"planilla_vacia,omitempty"`
	ProblemasDeTipo   map[string][]int `json:"problemas_de_tipo,omitempty"`
	ErroresDeFila     []string         `json:"errores_de_fila,omitempty"`
	ClientesFaltantes []string         `json:"clientes_faltantes,omitempty"`
	Valida            bool             `json:"valida"`
}
