// Package tabular carga y escribe tablas CSV con tolerancia de codificación:
// las planillas que exporta Excel en Windows llegan en Latin-1 y con punto y
// coma como separador, las de otras fuentes en UTF-8 con coma.
package tabular

import "strings"

// Table es una planilla ya decodificada: encabezados y filas de datos.
type Table struct {
	Headers []string
	Rows    [][]string
}

// ColumnIndex devuelve la posición de la columna o -1 si no existe.
// La comparación ignora mayúsculas y espacios alrededor.
func (t *Table) ColumnIndex(name string) int {
	want := strings.ToLower(strings.TrimSpace(name))
	for i, h := range t.Headers {
		if strings.ToLower(strings.TrimSpace(h)) == want {
			return i
		}
	}
	return -1
}

// Cell devuelve la celda (fila, columna) o "" si la fila es corta.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// MissingColumns devuelve, en orden, los encabezados requeridos ausentes.
func (t *Table) MissingColumns(required []string) []string {
	var missing []string
	for _, name := range required {
		if t.ColumnIndex(name) < 0 {
			missing = append(missing, name)
		}
	}
	return missing
}
