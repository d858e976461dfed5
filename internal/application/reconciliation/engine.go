// Package reconciliation contiene el motor de calificaciones: creación,
// edición y consulta de declaraciones con sus reglas de autorización y el
// choque contra los registros de bolsa.
package reconciliation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/tribunsys/internal/domain"
	"github.com/tu-usuario/tribunsys/internal/domain/entity"
	"github.com/tu-usuario/tribunsys/internal/domain/factors"
	"github.com/tu-usuario/tribunsys/internal/domain/repository"
	"github.com/tu-usuario/tribunsys/pkg/logger"
	"github.com/tu-usuario/tribunsys/pkg/rut"
)

// Actor identidad mínima para decidir autorización.
type Actor struct {
	ID   string
	Role string
}

// IsAdmin indica si el actor puede tocar registros de bolsa y ajenos.
func (a Actor) IsAdmin() bool { return a.Role == entity.RoleAdministrador }

// Input datos de negocio de una calificación, comunes a crear y actualizar.
type Input struct {
	ClientRUT       string
	DeclarationDate string // YYYY-MM-DD
	TaxType         string
	Country         string
	DeclaredAmount  decimal.Decimal
	Factors         []decimal.Decimal
	SubsidyIDs      []string // orden de aplicación de la cascada
}

// SubsidyResolver aplica la cascada de subsidios y deja traza local.
type SubsidyResolver interface {
	Resolve(ctx context.Context, amount decimal.Decimal, subsidyIDs []string) (decimal.Decimal, []entity.AppliedSubsidy, error)
	RecordApplications(ctx context.Context, qualificationID string, applied []entity.AppliedSubsidy)
}

// ConnectivityGuard verifica alcance del almacén antes de operar.
type ConnectivityGuard interface {
	Check(ctx context.Context) error
}

// Engine motor de calificaciones.
type Engine struct {
	quals     repository.QualificationRepository
	parties   repository.PartyDirectory
	subsidies SubsidyResolver
	audit     repository.AuditSink
	guard     ConnectivityGuard
	log       *logger.Logger
}

// NewEngine construye el motor. guard, subsidies y audit pueden ser nil.
func NewEngine(
	quals repository.QualificationRepository,
	parties repository.PartyDirectory,
	subsidies SubsidyResolver,
	audit repository.AuditSink,
	guard ConnectivityGuard,
	log *logger.Logger,
) *Engine {
	return &Engine{
		quals:     quals,
		parties:   parties,
		subsidies: subsidies,
		audit:     audit,
		guard:     guard,
		log:       log.Component("calificaciones"),
	}
}

// Create valida y persiste una calificación local del actor.
// Los clientes deben existir de antemano; un RUT sin cliente registrado
// rechaza la operación. Si ya hay una calificación de bolsa activa para la
// clave (cliente, fecha, tipo), también.
func (e *Engine) Create(ctx context.Context, actor Actor, in Input) (*entity.Qualification, error) {
	if err := e.checkGuard(ctx); err != nil {
		return nil, err
	}
	normalizedRUT, err := validateInput(in)
	if err != nil {
		return nil, err
	}

	client, err := e.resolveClient(ctx, normalizedRUT)
	if err != nil {
		return nil, err
	}

	if err := e.checkAuthoritativeConflict(ctx, client.ID, in.DeclarationDate, in.TaxType, ""); err != nil {
		return nil, err
	}

	adjusted, applied, err := e.applySubsidies(ctx, in.DeclaredAmount, in.SubsidyIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	q := &entity.Qualification{
		ID:               uuid.NewString(),
		ClientID:         client.ID,
		OwnerID:          actor.ID,
		DeclarationDate:  in.DeclarationDate,
		TaxType:          in.TaxType,
		Country:          in.Country,
		DeclaredAmount:   in.DeclaredAmount,
		AdjustedAmount:   adjusted,
		Factors:          in.Factors,
		AppliedSubsidies: applied,
		IsAuthoritative:  false,
		Active:           true,
		CreatedAt:        now,
		ModifiedAt:       now,
	}
	if err := e.quals.Create(ctx, q); err != nil {
		return nil, &domain.PersistenceError{Op: "crear calificación", Err: err}
	}

	if e.subsidies != nil {
		e.subsidies.RecordApplications(ctx, q.ID, applied)
	}
	e.record(ctx, entity.AuditQualificationCreated, actor.ID, map[string]any{
		"calificacion_id": q.ID,
		"cliente_id":      q.ClientID,
		"fecha":           q.DeclarationDate,
		"tipo_impuesto":   q.TaxType,
	})
	return q, nil
}

// Update reemplaza los datos de negocio de una calificación existente.
// Un actor sin rol administrador solo puede editar sus registros locales;
// los administradores pueden editar cualquiera, incluidos los de bolsa.
// El cliente queda fijo al crear: un RUT que resuelva a otro cliente
// rechaza la edición.
func (e *Engine) Update(ctx context.Context, actor Actor, id string, in Input) (*entity.Qualification, error) {
	if err := e.checkGuard(ctx); err != nil {
		return nil, err
	}
	q, err := e.getActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, q); err != nil {
		return nil, err
	}
	normalizedRUT, err := validateInput(in)
	if err != nil {
		return nil, err
	}

	client, err := e.resolveClient(ctx, normalizedRUT)
	if err != nil {
		return nil, err
	}
	if client.ID != q.ClientID {
		return nil, &domain.ValidationError{Field: "cliente_rut", Reason: "el cliente de una calificación no puede cambiar"}
	}

	// la clave pudo cambiar; el propio registro no cuenta como choque
	if err := e.checkAuthoritativeConflict(ctx, q.ClientID, in.DeclarationDate, in.TaxType, q.ID); err != nil {
		return nil, err
	}

	adjusted, applied, err := e.applySubsidies(ctx, in.DeclaredAmount, in.SubsidyIDs)
	if err != nil {
		return nil, err
	}

	q.DeclarationDate = in.DeclarationDate
	q.TaxType = in.TaxType
	q.Country = in.Country
	q.DeclaredAmount = in.DeclaredAmount
	q.AdjustedAmount = adjusted
	q.Factors = in.Factors
	q.AppliedSubsidies = applied
	q.ModifiedAt = time.Now().UTC()

	if err := e.quals.Update(ctx, q); err != nil {
		return nil, &domain.PersistenceError{Op: "actualizar calificación", Err: err}
	}

	if e.subsidies != nil {
		e.subsidies.RecordApplications(ctx, q.ID, applied)
	}
	e.record(ctx, entity.AuditQualificationUpdated, actor.ID, map[string]any{
		"calificacion_id": q.ID,
		"autoritativa":    q.IsAuthoritative,
	})
	return q, nil
}

// Delete desactiva una calificación (borrado lógico) con las mismas reglas
// de autorización que Update. El borrado de un registro de bolsa queda
// marcado en la auditoría.
func (e *Engine) Delete(ctx context.Context, actor Actor, id string) error {
	if err := e.checkGuard(ctx); err != nil {
		return err
	}
	q, err := e.getActive(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(actor, q); err != nil {
		return err
	}

	if err := e.quals.SoftDelete(ctx, id, time.Now().UTC()); err != nil {
		return &domain.PersistenceError{Op: "eliminar calificación", Err: err}
	}
	e.record(ctx, entity.AuditQualificationDeleted, actor.ID, map[string]any{
		"calificacion_id": id,
		"autoritativa":    q.IsAuthoritative,
	})
	return nil
}

// Get devuelve una calificación visible para el actor: de bolsa, propia, o
// cualquiera si es administrador.
func (e *Engine) Get(ctx context.Context, actor Actor, id string) (*entity.Qualification, error) {
	q, err := e.getActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !q.IsAuthoritative && q.OwnerID != actor.ID {
		return nil, domain.ErrForbidden
	}
	return q, nil
}

// List devuelve las calificaciones visibles para el actor según filtros.
func (e *Engine) List(ctx context.Context, actor Actor, f repository.QualificationFilters) ([]*entity.Qualification, error) {
	if f.DateFrom != "" && !validDate(f.DateFrom) {
		return nil, &domain.ValidationError{Field: "fecha_desde", Reason: "formato esperado YYYY-MM-DD"}
	}
	if f.DateTo != "" && !validDate(f.DateTo) {
		return nil, &domain.ValidationError{Field: "fecha_hasta", Reason: "formato esperado YYYY-MM-DD"}
	}
	if f.TaxType != "" && !entity.IsValidTaxType(f.TaxType) {
		return nil, &domain.ValidationError{Field: "tipo_impuesto", Reason: "tipo de impuesto desconocido"}
	}
	vis := repository.QualificationVisibility{Admin: actor.IsAdmin(), OwnerID: actor.ID}
	return e.quals.List(ctx, vis, f)
}

func (e *Engine) getActive(ctx context.Context, id string) (*entity.Qualification, error) {
	q, err := e.quals.GetByID(ctx, id)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "leer calificación", Err: err}
	}
	if q == nil || !q.Active {
		return nil, domain.ErrNotFound
	}
	return q, nil
}

func (e *Engine) resolveClient(ctx context.Context, normalizedRUT string) (*entity.Party, error) {
	client, err := e.parties.GetClientByRUT(ctx, normalizedRUT)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "buscar cliente", Err: err}
	}
	if client == nil {
		return nil, &domain.UnknownClientError{RUT: rut.Format(normalizedRUT)}
	}
	return client, nil
}

// checkAuthoritativeConflict rechaza si otra calificación de bolsa activa
// ocupa la clave. excludeID permite que una edición no choque consigo misma.
func (e *Engine) checkAuthoritativeConflict(ctx context.Context, clientID, date, taxType, excludeID string) error {
	existing, err := e.quals.FindAuthoritative(ctx, clientID, date, taxType)
	if err != nil {
		return &domain.PersistenceError{Op: "verificar choque con bolsa", Err: err}
	}
	if existing == nil || existing.ID == excludeID {
		return nil
	}
	return &domain.AuthoritativeConflictError{Existing: domain.ConflictSummary{
		RecordID:        existing.ID,
		ClientID:        existing.ClientID,
		DeclarationDate: existing.DeclarationDate,
		TaxType:         existing.TaxType,
	}}
}

func (e *Engine) applySubsidies(ctx context.Context, amount decimal.Decimal, ids []string) (decimal.Decimal, []entity.AppliedSubsidy, error) {
	if e.subsidies == nil || len(ids) == 0 {
		return amount, nil, nil
	}
	return e.subsidies.Resolve(ctx, amount, ids)
}

func (e *Engine) checkGuard(ctx context.Context) error {
	if e.guard == nil {
		return nil
	}
	return e.guard.Check(ctx)
}

func (e *Engine) record(ctx context.Context, action, actorID string, details map[string]any) {
	if e.audit == nil {
		return
	}
	if err := e.audit.Record(ctx, action, actorID, details); err != nil {
		e.log.Warn().Err(err).Str("accion", action).Msg("no se pudo registrar la auditoría")
	}
}

func authorize(actor Actor, q *entity.Qualification) error {
	if actor.IsAdmin() {
		return nil
	}
	if q.IsAuthoritative || q.OwnerID != actor.ID {
		return &domain.AuthorizationError{ActorID: actor.ID, RecordID: q.ID}
	}
	return nil
}

// validateInput valida campos y devuelve el RUT normalizado.
func validateInput(in Input) (string, error) {
	if err := rut.Validate(in.ClientRUT); err != nil {
		return "", err
	}
	normalized := rut.Clean(in.ClientRUT)
	if in.DeclarationDate == "" {
		return "", &domain.ValidationError{Field: "fecha_declaracion"}
	}
	if !validDate(in.DeclarationDate) {
		return "", &domain.ValidationError{Field: "fecha_declaracion", Reason: "formato esperado YYYY-MM-DD"}
	}
	if !entity.IsValidTaxType(in.TaxType) {
		return "", &domain.ValidationError{Field: "tipo_impuesto", Reason: "tipo de impuesto desconocido"}
	}
	if !entity.IsValidCountry(in.Country) {
		return "", &domain.ValidationError{Field: "pais", Reason: "país fuera del catálogo"}
	}
	if !in.DeclaredAmount.IsPositive() {
		return "", &domain.ValidationError{Field: "monto_declarado", Reason: "debe ser mayor que cero"}
	}
	if err := factors.ValidateVector(in.Factors); err != nil {
		return "", err
	}
	if _, err := factors.WindowSum(in.Factors); err != nil {
		return "", err
	}
	return normalized, nil
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
