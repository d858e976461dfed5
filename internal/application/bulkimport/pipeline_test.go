package bulkimport

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/tribunsys/internal/domain/entity"
	"github.com/tu-usuario/tribunsys/internal/domain/repository"
	"github.com/tu-usuario/tribunsys/pkg/logger"
	"github.com/tu-usuario/tribunsys/pkg/tabular"
)

// --- fakes en memoria ---

type qualRepoFake struct {
	byID map[string]*entity.Qualification
}

func newQualRepoFake() *qualRepoFake {
	return &qualRepoFake{byID: map[string]*entity.Qualification{}}
}

func (r *qualRepoFake) Create(_ context.Context, q *entity.Qualification) error {
	cp := *q
	r.byID[q.ID] = &cp
	return nil
}

func (r *qualRepoFake) GetByID(_ context.Context, id string) (*entity.Qualification, error) {
	q, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *q
	return &cp, nil
}

func (r *qualRepoFake) Update(_ context.Context, q *entity.Qualification) error {
	cp := *q
	r.byID[q.ID] = &cp
	return nil
}

func (r *qualRepoFake) SoftDelete(_ context.Context, id string, deletedAt time.Time) error {
	q := r.byID[id]
	q.Active = false
	q.DeletedAt = &deletedAt
	return nil
}

func (r *qualRepoFake) FindAuthoritative(_ context.Context, clientID, date, taxType string) (*entity.Qualification, error) {
	for _, q := range r.byID {
		if q.IsAuthoritative && q.Active && q.ClientID == clientID && q.DeclarationDate == date && q.TaxType == taxType {
			cp := *q
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *qualRepoFake) List(_ context.Context, _ repository.QualificationVisibility, _ repository.QualificationFilters) ([]*entity.Qualification, error) {
	var out []*entity.Qualification
	for _, q := range r.byID {
		cp := *q
		out = append(out, &cp)
	}
	return out, nil
}

type partyFake struct {
	byRUT map[string]*entity.Party
}

func (p *partyFake) GetClientByRUT(_ context.Context, r string) (*entity.Party, error) {
	return p.byRUT[r], nil
}

type auditSinkFake struct {
	actions []string
	details []map[string]any
}

func (a *auditSinkFake) Record(_ context.Context, action, _ string, details map[string]any) error {
	a.actions = append(a.actions, action)
	a.details = append(a.details, details)
	return nil
}

// --- armado común ---

const (
	rutCliente1 = "12.345.678-5"
	rutCliente2 = "7.654.321-6"
)

func validRow(rutStr, date, amount, taxType, country string) []string {
	row := []string{rutStr, date, amount, taxType, country}
	for i := 0; i < 19; i++ {
		row = append(row, "0")
	}
	return row
}

func buildTable(rows ...[]string) *tabular.Table {
	return &tabular.Table{
		Headers: append([]string{}, RequiredColumns...),
		Rows:    rows,
	}
}

type testEnv struct {
	pipeline *Pipeline
	quals    *qualRepoFake
	audit    *auditSinkFake
}

func newTestEnv(t *testing.T, maxBatch int) *testEnv {
	t.Helper()
	quals := newQualRepoFake()
	parties := &partyFake{byRUT: map[string]*entity.Party{
		"123456785": {ID: "cliente-1", RUT: "123456785", Role: "cliente"},
		"76543216":  {ID: "cliente-2", RUT: "76543216", Role: "cliente"},
	}}
	audit := &auditSinkFake{}
	return &testEnv{
		pipeline: NewPipeline(quals, parties, audit, nil, maxBatch, logger.Nop()),
		quals:    quals,
		audit:    audit,
	}
}

// --- tests ---

func TestPipeline_ValidateSchema(t *testing.T) {
	env := newTestEnv(t, 0)

	table := &tabular.Table{Headers: []string{"cliente_rut", "fecha_declaracion"}}
	err := env.pipeline.ValidateSchema(table)
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Missing, "monto_declarado")
	assert.Contains(t, se.Missing, "factor_19")

	err = env.pipeline.ValidateSchema(buildTable())
	var ee *EmptyInputError
	assert.ErrorAs(t, err, &ee, "Sin filas de datos la planilla se rechaza")

	assert.NoError(t, env.pipeline.ValidateSchema(buildTable(
		validRow(rutCliente1, "2026-04-30", "1000", "Renta", "Chile"),
	)))
}

func TestPipeline_ValidateTypesTopePorColumna(t *testing.T) {
	env := newTestEnv(t, 0)

	var rows [][]string
	for i := 0; i < 7; i++ {
		r := validRow(rutCliente1, "no-es-fecha", "1000", "Renta", "Chile")
		r[5] = "abc" // factor_1 también inválido
		rows = append(rows, r)
	}
	issues := env.pipeline.ValidateTypes(buildTable(rows...))

	assert.Equal(t, []int{0, 1, 2, 3, 4}, issues["fecha_declaracion"], "Cada columna corta en 5 filas")
	assert.Len(t, issues["factor_1"], 5, "El corte es por columna, no global")
	assert.Empty(t, issues["monto_declarado"])
}

func TestPipeline_ValidateContentAlineado(t *testing.T) {
	env := newTestEnv(t, 0)

	bad := validRow(rutCliente1, "2026-04-30", "-5", "Renta", "Chile")
	table := buildTable(
		validRow(rutCliente1, "2026-04-30", "1000", "Renta", "Chile"),
		bad,
		validRow("12.345.678-9", "2026-04-30", "1000", "Renta", "Chile"), // DV malo
	)

	out := env.pipeline.ValidateContent(table)
	require.Len(t, out, 3, "El resultado va alineado con las filas")
	assert.Empty(t, out[0])
	assert.Contains(t, out[1], "monto_declarado")
	assert.Contains(t, out[2], "dígito verificador")
}

func TestPipeline_PreflightClients(t *testing.T) {
	env := newTestEnv(t, 0)

	table := buildTable(
		validRow(rutCliente1, "2026-04-30", "1000", "Renta", "Chile"),
		validRow("21.232.535-K", "2026-04-30", "1000", "IVA", "Chile"), // válido, no registrado
		validRow("21.232.535-K", "2026-05-31", "1000", "IVA", "Chile"), // repetido
		validRow("malo", "2026-04-30", "1000", "IVA", "Chile"),         // formato inválido, no cuenta aquí
	)

	missing, err := env.pipeline.PreflightClients(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, []string{"21.232.535-K"}, missing, "Reporta cada RUT faltante una sola vez, formateado")
	assert.Empty(t, env.quals.byID, "El preflight no escribe")
}

func TestPipeline_ImportRowsCrea(t *testing.T) {
	env := newTestEnv(t, 0)

	var progress []int
	table := buildTable(
		validRow(rutCliente1, "2026-04-30", "1500000", "Renta", "Chile"),
		validRow(rutCliente2, "2026-04-30", "890500,50", "IVA", "Peru"),
	)

	res, err := env.pipeline.ImportRows(context.Background(), table, "admin-1", func(p int) {
		progress = append(progress, p)
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 2, res.Created)
	assert.Zero(t, res.Updated)
	assert.Empty(t, res.Errors)
	assert.True(t, res.Success)
	assert.Equal(t, []int{50, 100, 100}, progress, "Avance por fila y cierre en 100")

	require.Len(t, env.quals.byID, 2)
	for _, q := range env.quals.byID {
		assert.True(t, q.IsAuthoritative, "Todo lo cargado es registro de bolsa")
		assert.True(t, q.Active)
		assert.Equal(t, "admin-1", q.OwnerID)
		assert.True(t, q.AdjustedAmount.Equal(q.DeclaredAmount))
	}

	require.Len(t, env.audit.actions, 1, "Un solo evento de auditoría por lote")
	assert.Equal(t, entity.AuditBulkImport, env.audit.actions[0])
}

func TestPipeline_ImportRowsUpsertSoloBolsa(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	env.quals.byID["bolsa-1"] = &entity.Qualification{
		ID: "bolsa-1", ClientID: "cliente-1", DeclarationDate: "2026-04-30",
		TaxType: "Renta", DeclaredAmount: decimal.NewFromInt(1),
		IsAuthoritative: true, Active: true,
	}
	env.quals.byID["local-1"] = &entity.Qualification{
		ID: "local-1", ClientID: "cliente-2", OwnerID: "user-9", DeclarationDate: "2026-04-30",
		TaxType: "IVA", DeclaredAmount: decimal.NewFromInt(77),
		IsAuthoritative: false, Active: true,
	}

	table := buildTable(
		validRow(rutCliente1, "2026-04-30", "2000", "Renta", "Chile"), // misma clave que bolsa-1
		validRow(rutCliente2, "2026-04-30", "3000", "IVA", "Peru"),    // misma clave que local-1
	)

	res, err := env.pipeline.ImportRows(ctx, table, "admin-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated, "La fila con clave de bolsa existente actualiza")
	assert.Equal(t, 1, res.Created, "La clave ocupada solo por un registro local crea uno de bolsa nuevo")

	assert.True(t, env.quals.byID["bolsa-1"].DeclaredAmount.Equal(decimal.NewFromInt(2000)))
	local := env.quals.byID["local-1"]
	assert.True(t, local.DeclaredAmount.Equal(decimal.NewFromInt(77)), "El registro local no se toca")
	assert.False(t, local.IsAuthoritative)
	assert.Len(t, env.quals.byID, 3)
}

func TestPipeline_ImportRowsErroresPorFila(t *testing.T) {
	env := newTestEnv(t, 0)

	table := buildTable(
		validRow("21.232.535-K", "2026-04-30", "1000", "Renta", "Chile"), // cliente no registrado
		validRow(rutCliente1, "2026-04-30", "1000", "Renta", "Chile"),
	)

	res, err := env.pipeline.ImportRows(context.Background(), table, "admin-1", nil)
	require.NoError(t, err)

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Fila 2:", "La primera fila de datos es la 2 de la planilla")
	assert.Contains(t, res.Errors[0], "21.232.535-K")
	assert.Equal(t, 1, res.Created)
	assert.True(t, res.Success, "Basta una fila aterrizada para declarar éxito")
}

func TestPipeline_ImportRowsTodoFalla(t *testing.T) {
	env := newTestEnv(t, 0)

	table := buildTable(
		validRow("21.232.535-K", "2026-04-30", "1000", "Renta", "Chile"),
	)
	res, err := env.pipeline.ImportRows(context.Background(), table, "admin-1", nil)
	require.NoError(t, err)
	assert.False(t, res.Success, "Con errores y cero filas aterrizadas la carga fracasa")
}

func TestPipeline_ImportRowsCancelacion(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx, cancel := context.WithCancel(context.Background())

	table := buildTable(
		validRow(rutCliente1, "2026-04-30", "1000", "Renta", "Chile"),
		validRow(rutCliente2, "2026-04-30", "1000", "IVA", "Peru"),
		validRow(rutCliente1, "2026-05-31", "1000", "Renta", "Chile"),
	)

	res, err := env.pipeline.ImportRows(ctx, table, "admin-1", func(p int) {
		cancel() // cancela tras la primera fila
	})
	require.NoError(t, err)
	assert.True(t, res.Canceled)
	assert.Equal(t, 1, res.Created, "Lo ya importado antes de cancelar queda")
}

func TestPipeline_ImportRowsLimiteDeLote(t *testing.T) {
	env := newTestEnv(t, 1)

	table := buildTable(
		validRow(rutCliente1, "2026-04-30", "1000", "Renta", "Chile"),
		validRow(rutCliente2, "2026-04-30", "1000", "IVA", "Peru"),
	)
	_, err := env.pipeline.ImportRows(context.Background(), table, "admin-1", nil)
	var be *BatchSizeError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 1, be.Limit)
	assert.Equal(t, 2, be.Got)
}

func TestTemplate(t *testing.T) {
	env := newTestEnv(t, 0)
	tpl := Template()

	assert.Equal(t, RequiredColumns, tpl.Headers)
	require.Len(t, tpl.Rows, 2, "La plantilla trae dos filas de ejemplo")

	require.NoError(t, env.pipeline.ValidateSchema(tpl))
	for i, msg := range env.pipeline.ValidateContent(tpl) {
		assert.Empty(t, msg, "la fila de ejemplo %d debe ser válida", i+1)
	}
}

func TestRequiredColumns(t *testing.T) {
	assert.Len(t, RequiredColumns, 24)
	assert.Equal(t, "factor_1", RequiredColumns[5])
	assert.Equal(t, "factor_19", RequiredColumns[23])
}
