// Package bulkimport procesa planillas de calificaciones de bolsa: valida
// esquema, tipos y contenido, y vuelca las filas al almacén compartido con
// semántica upsert sobre la clave (cliente, fecha, tipo de impuesto).
package bulkimport

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/tribunsys/internal/domain"
	"github.com/tu-usuario/tribunsys/internal/domain/entity"
	"github.com/tu-usuario/tribunsys/internal/domain/factors"
	"github.com/tu-usuario/tribunsys/internal/domain/repository"
	"github.com/tu-usuario/tribunsys/pkg/logger"
	"github.com/tu-usuario/tribunsys/pkg/rut"
	"github.com/tu-usuario/tribunsys/pkg/tabular"
)

// maxTypeIssuesPerColumn tope de filas reportadas por columna en la
// validación de tipos; con eso basta para diagnosticar la planilla.
const maxTypeIssuesPerColumn = 5

// RequiredColumns columnas exigidas a la planilla, en orden de plantilla.
var RequiredColumns = buildRequiredColumns()

func buildRequiredColumns() []string {
	cols := []string{"cliente_rut", "fecha_declaracion", "monto_declarado", "tipo_impuesto", "pais"}
	for i := 1; i <= factors.Count; i++ {
		cols = append(cols, fmt.Sprintf("factor_%d", i))
	}
	return cols
}

// SchemaError a la planilla le faltan columnas requeridas.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return "faltan columnas en la planilla: " + strings.Join(e.Missing, ", ")
}

// EmptyInputError la planilla no trae filas de datos.
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string {
	return "la planilla no contiene filas de datos"
}

// BatchSizeError la planilla supera el máximo de filas por carga.
type BatchSizeError struct {
	Limit, Got int
}

func (e *BatchSizeError) Error() string {
	return fmt.Sprintf("la carga admite hasta %d filas, la planilla trae %d", e.Limit, e.Got)
}

// ProgressFunc recibe el avance como porcentaje entero (0..100).
type ProgressFunc func(percent int)

// Result resumen de una carga masiva.
type Result struct {
	Total    int      `json:"total"`
	Created  int      `json:"creados"`
	Updated  int      `json:"actualizados"`
	Errors   []string `json:"errores"`
	Success  bool     `json:"exito"`
	Canceled bool     `json:"cancelado"`
}

// ConnectivityGuard verifica alcance del almacén antes del lote.
type ConnectivityGuard interface {
	Check(ctx context.Context) error
}

// Pipeline carga masiva de calificaciones de bolsa.
type Pipeline struct {
	quals    repository.QualificationRepository
	parties  repository.PartyDirectory
	audit    repository.AuditSink
	guard    ConnectivityGuard
	maxBatch int
	log      *logger.Logger
}

// NewPipeline construye la carga masiva. audit y guard pueden ser nil;
// maxBatch <= 0 usa 1000.
func NewPipeline(
	quals repository.QualificationRepository,
	parties repository.PartyDirectory,
	audit repository.AuditSink,
	guard ConnectivityGuard,
	maxBatch int,
	log *logger.Logger,
) *Pipeline {
	if maxBatch <= 0 {
		maxBatch = 1000
	}
	return &Pipeline{
		quals:    quals,
		parties:  parties,
		audit:    audit,
		guard:    guard,
		maxBatch: maxBatch,
		log:      log.Component("carga_masiva"),
	}
}

// ValidateSchema exige las columnas requeridas y al menos una fila de datos.
func (p *Pipeline) ValidateSchema(t *tabular.Table) error {
	if missing := t.MissingColumns(RequiredColumns); len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	if len(t.Rows) == 0 {
		return &EmptyInputError{}
	}
	return nil
}

// ValidateTypes revisa coercibilidad por columna (fecha, monto, factores) y
// devuelve hasta 5 índices de fila con problemas por columna (0-based).
// Cada columna corta en 5; las demás columnas se siguen revisando.
func (p *Pipeline) ValidateTypes(t *tabular.Table) map[string][]int {
	issues := map[string][]int{}

	check := func(column string, bad func(cell string) bool) {
		col := t.ColumnIndex(column)
		if col < 0 {
			return
		}
		for i := range t.Rows {
			if bad(t.Cell(i, col)) {
				issues[column] = append(issues[column], i)
				if len(issues[column]) == maxTypeIssuesPerColumn {
					break
				}
			}
		}
	}

	check("fecha_declaracion", func(cell string) bool {
		_, err := time.Parse("2006-01-02", strings.TrimSpace(cell))
		return err != nil
	})
	check("monto_declarado", func(cell string) bool {
		_, ok := factors.ParseFactor(cell)
		return !ok
	})
	for i := 1; i <= factors.Count; i++ {
		check(fmt.Sprintf("factor_%d", i), func(cell string) bool {
			_, ok := factors.ParseFactor(cell)
			return !ok
		})
	}
	return issues
}

// ValidateContent valida cada fila completa contra las reglas de negocio y
// devuelve un slice alineado con las filas; "" marca fila limpia.
func (p *Pipeline) ValidateContent(t *tabular.Table) []string {
	out := make([]string, len(t.Rows))
	cols := newColumnMap(t)
	for i := range t.Rows {
		if _, err := parseRow(t, cols, i); err != nil {
			out[i] = err.Error()
		}
	}
	return out
}

// PreflightClients resuelve los RUT distintos de la planilla y devuelve,
// formateados, todos los que no corresponden a clientes registrados.
// No escribe nada: es el chequeo previo que evita cargas a medias.
func (p *Pipeline) PreflightClients(ctx context.Context, t *tabular.Table) ([]string, error) {
	col := t.ColumnIndex("cliente_rut")
	if col < 0 {
		return nil, &SchemaError{Missing: []string{"cliente_rut"}}
	}

	seen := map[string]bool{}
	var missing []string
	for i := range t.Rows {
		raw := t.Cell(i, col)
		if err := rut.Validate(raw); err != nil {
			continue // el error de formato lo reporta ValidateContent
		}
		normalized := rut.Clean(raw)
		if seen[normalized] {
			continue
		}
		seen[normalized] = true

		client, err := p.parties.GetClientByRUT(ctx, normalized)
		if err != nil {
			return nil, &domain.PersistenceError{Op: "verificar clientes de la planilla", Err: err}
		}
		if client == nil {
			missing = append(missing, rut.Format(normalized))
		}
	}
	return missing, nil
}

// ImportRows procesa la planilla fila a fila como registros de bolsa.
// Una fila que falla no detiene el lote: queda en Errors con su número de
// fila de planilla (los datos parten en la fila 2, bajo el encabezado).
// La cancelación por contexto se atiende entre filas; lo ya importado queda.
func (p *Pipeline) ImportRows(ctx context.Context, t *tabular.Table, actorID string, progress ProgressFunc) (*Result, error) {
	if err := p.ValidateSchema(t); err != nil {
		return nil, err
	}
	if len(t.Rows) > p.maxBatch {
		return nil, &BatchSizeError{Limit: p.maxBatch, Got: len(t.Rows)}
	}
	if p.guard != nil {
		if err := p.guard.Check(ctx); err != nil {
			return nil, err
		}
	}

	res := &Result{Total: len(t.Rows)}
	cols := newColumnMap(t)
	total := len(t.Rows)

	for i := range t.Rows {
		if ctx.Err() != nil {
			res.Canceled = true
			break
		}
		updated, err := p.importRow(ctx, t, cols, i, actorID)
		switch {
		case err != nil:
			res.Errors = append(res.Errors, fmt.Sprintf("Fila %d: %s", i+2, err.Error()))
		case updated:
			res.Updated++
		default:
			res.Created++
		}
		if progress != nil {
			progress(int(math.Round(float64(i+1) * 100 / float64(total))))
		}
	}
	if progress != nil && !res.Canceled {
		progress(100)
	}

	res.Success = len(res.Errors) == 0 || res.Created+res.Updated > 0
	p.record(ctx, actorID, res)
	p.log.Info().
		Int("total", res.Total).
		Int("creados", res.Created).
		Int("actualizados", res.Updated).
		Int("errores", len(res.Errors)).
		Bool("exito", res.Success).
		Msg("carga masiva finalizada")
	return res, nil
}

// importRow valida y vuelca una fila como registro de bolsa. Devuelve si la
// fila actualizó un registro existente en vez de crear uno nuevo.
func (p *Pipeline) importRow(ctx context.Context, t *tabular.Table, cols columnMap, row int, actorID string) (bool, error) {
	payload, err := parseRow(t, cols, row)
	if err != nil {
		return false, err
	}

	client, err := p.parties.GetClientByRUT(ctx, payload.rut)
	if err != nil {
		return false, &domain.PersistenceError{Op: "buscar cliente", Err: err}
	}
	if client == nil {
		return false, &domain.UnknownClientError{RUT: rut.Format(payload.rut)}
	}

	// el upsert solo considera registros de bolsa: una calificación local
	// con la misma clave nunca se pisa desde la carga
	existing, err := p.quals.FindAuthoritative(ctx, client.ID, payload.date, payload.taxType)
	if err != nil {
		return false, &domain.PersistenceError{Op: "buscar registro de bolsa", Err: err}
	}

	now := time.Now().UTC()
	if existing != nil {
		existing.Country = payload.country
		existing.DeclaredAmount = payload.amount
		existing.AdjustedAmount = payload.amount
		existing.Factors = payload.factors
		existing.AppliedSubsidies = nil
		existing.ModifiedAt = now
		if err := p.quals.Update(ctx, existing); err != nil {
			return false, &domain.PersistenceError{Op: "actualizar registro de bolsa", Err: err}
		}
		return true, nil
	}

	q := &entity.Qualification{
		ID:              uuid.NewString(),
		ClientID:        client.ID,
		OwnerID:         actorID,
		DeclarationDate: payload.date,
		TaxType:         payload.taxType,
		Country:         payload.country,
		DeclaredAmount:  payload.amount,
		AdjustedAmount:  payload.amount,
		Factors:         payload.factors,
		IsAuthoritative: true,
		Active:          true,
		CreatedAt:       now,
		ModifiedAt:      now,
	}
	if err := p.quals.Create(ctx, q); err != nil {
		return false, &domain.PersistenceError{Op: "crear registro de bolsa", Err: err}
	}
	return false, nil
}

// Template devuelve la plantilla de carga con dos filas de ejemplo.
func Template() *tabular.Table {
	example := func(rutStr, date, amount, taxType, country string, f8 string) []string {
		row := []string{rutStr, date, amount, taxType, country}
		for i := 1; i <= factors.Count; i++ {
			cell := "0"
			if i == 1 {
				cell = "0.5"
			}
			if i == 8 {
				cell = f8
			}
			row = append(row, cell)
		}
		return row
	}
	return &tabular.Table{
		Headers: append([]string{}, RequiredColumns...),
		Rows: [][]string{
			example("12.345.678-5", "2026-04-30", "1500000", "Renta", "Chile", "0.25"),
			example("7.654.321-6", "2026-04-30", "890500.50", "IVA", "Peru", "0.1"),
		},
	}
}

// columnMap índices de columna resueltos una sola vez por planilla.
type columnMap struct {
	rut, date, amount, taxType, country int
	factorCols                          [factors.Count]int
}

func newColumnMap(t *tabular.Table) columnMap {
	cm := columnMap{
		rut:     t.ColumnIndex("cliente_rut"),
		date:    t.ColumnIndex("fecha_declaracion"),
		amount:  t.ColumnIndex("monto_declarado"),
		taxType: t.ColumnIndex("tipo_impuesto"),
		country: t.ColumnIndex("pais"),
	}
	for i := 1; i <= factors.Count; i++ {
		cm.factorCols[i-1] = t.ColumnIndex(fmt.Sprintf("factor_%d", i))
	}
	return cm
}

// rowPayload fila ya validada y tipada.
type rowPayload struct {
	rut     string // normalizado
	date    string
	taxType string
	country string
	amount  decimal.Decimal
	factors []decimal.Decimal
}

// parseRow valida una fila completa. Devuelve el primer error encontrado,
// en el orden de las columnas de la plantilla.
func parseRow(t *tabular.Table, cols columnMap, row int) (*rowPayload, error) {
	rawRUT := t.Cell(row, cols.rut)
	if err := rut.Validate(rawRUT); err != nil {
		return nil, err
	}

	date := strings.TrimSpace(t.Cell(row, cols.date))
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, &domain.ValidationError{Field: "fecha_declaracion", Reason: "formato esperado YYYY-MM-DD"}
	}

	amount, ok := factors.ParseFactor(t.Cell(row, cols.amount))
	if !ok {
		return nil, &domain.ValidationError{Field: "monto_declarado", Reason: "debe ser un valor numérico"}
	}
	if !amount.IsPositive() {
		return nil, &domain.ValidationError{Field: "monto_declarado", Reason: "debe ser mayor que cero"}
	}

	taxType := strings.TrimSpace(t.Cell(row, cols.taxType))
	if !entity.IsValidTaxType(taxType) {
		return nil, &domain.ValidationError{Field: "tipo_impuesto", Reason: "tipo de impuesto desconocido"}
	}
	country := strings.TrimSpace(t.Cell(row, cols.country))
	if !entity.IsValidCountry(country) {
		return nil, &domain.ValidationError{Field: "pais", Reason: "país fuera del catálogo"}
	}

	fs := make([]decimal.Decimal, factors.Count)
	for i := 0; i < factors.Count; i++ {
		f, ok := factors.ParseFactor(t.Cell(row, cols.factorCols[i]))
		if !ok {
			return nil, &domain.FactorTypeError{Index: i + 1}
		}
		fs[i] = f
	}
	if err := factors.ValidateVector(fs); err != nil {
		return nil, err
	}
	if _, err := factors.WindowSum(fs); err != nil {
		return nil, err
	}

	return &rowPayload{
		rut:     rut.Clean(rawRUT),
		date:    date,
		taxType: taxType,
		country: country,
		amount:  amount,
		factors: fs,
	}, nil
}

func (p *Pipeline) record(ctx context.Context, actorID string, res *Result) {
	if p.audit == nil {
		return
	}
	err := p.audit.Record(ctx, entity.AuditBulkImport, actorID, map[string]any{
		"total":        res.Total,
		"creados":      res.Created,
		"actualizados": res.Updated,
		"errores":      len(res.Errors),
		"exito":        res.Success,
		"cancelado":    res.Canceled,
	})
	if err != nil {
		p.log.Warn().Err(err).Msg("no se pudo registrar la auditoría de la carga")
	}
}
