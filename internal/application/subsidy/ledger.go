// Package subsidy administra el catálogo de subsidios del corredor: altas,
// bajas, importación desde planilla y la cascada de aplicación sobre montos.
package subsidy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/tribunsys/internal/domain"
	"github.com/tu-usuario/tribunsys/internal/domain/entity"
	"github.com/tu-usuario/tribunsys/internal/domain/repository"
	"github.com/tu-usuario/tribunsys/pkg/logger"
	"github.com/tu-usuario/tribunsys/pkg/tabular"
)

// Columnas requeridas de la planilla de importación.
var importColumns = []string{"nombre_subsidio", "valor_porcentual"}

var one = decimal.NewFromInt(1)

// ImportStats resultado de una importación de catálogo.
type ImportStats struct {
	Rows    int      `json:"filas"`
	Added   int      `json:"agregados"`
	Updated int      `json:"actualizados"`
	Errors  []string `json:"errores"`
}

// Ledger casos de uso del catálogo de subsidios. El almacén local manda;
// el espejo remoto y la auditoría son mejor-esfuerzo y nunca bloquean.
type Ledger struct {
	store    repository.SubsidyStore
	mirror   repository.SubsidyMirror
	audit    repository.AuditSink
	brokerID string
	log      *logger.Logger
}

// NewLedger construye el caso de uso. mirror y audit pueden ser nil.
func NewLedger(store repository.SubsidyStore, mirror repository.SubsidyMirror, audit repository.AuditSink, brokerID string, log *logger.Logger) *Ledger {
	return &Ledger{store: store, mirror: mirror, audit: audit, brokerID: brokerID, log: log.Component("subsidios")}
}

// NormalizePercentage lleva una entrada 0-100 a fracción [0,1].
// Valores ya fraccionarios (<= 1) pasan intactos; los mayores se dividen por
// 100 y se redondean a 4 decimales.
func NormalizePercentage(p decimal.Decimal) decimal.Decimal {
	if p.GreaterThan(one) {
		return p.Div(decimal.NewFromInt(100)).Round(4)
	}
	return p
}

// List devuelve el catálogo completo.
func (l *Ledger) List(ctx context.Context) ([]entity.Subsidy, error) {
	return l.store.List(ctx)
}

// Get obtiene un subsidio por ID. domain.ErrNotFound si no existe.
func (l *Ledger) Get(ctx context.Context, id string) (*entity.Subsidy, error) {
	s, err := l.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// Upsert valida, normaliza y guarda un subsidio. Si no trae ID se genera uno.
func (l *Ledger) Upsert(ctx context.Context, actorID string, s entity.Subsidy) (entity.Subsidy, error) {
	if s.Name == "" {
		return entity.Subsidy{}, &domain.ValidationError{Field: "nombre_subsidio"}
	}
	if s.Percentage.IsNegative() {
		return entity.Subsidy{}, &domain.ValidationError{Field: "valor_porcentual", Reason: "no puede ser negativo"}
	}
	s.Percentage = NormalizePercentage(s.Percentage)
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	if err := l.store.Upsert(ctx, s); err != nil {
		return entity.Subsidy{}, &domain.PersistenceError{Op: "guardar subsidio", Err: err}
	}
	l.mirrorUpsert(ctx, s)
	l.record(ctx, entity.AuditSubsidySaved, actorID, map[string]any{
		"subsidio_id": s.ID,
		"nombre":      s.Name,
		"porcentaje":  s.Percentage.String(),
	})
	return s, nil
}

// Delete elimina un subsidio del catálogo y de la réplica.
func (l *Ledger) Delete(ctx context.Context, actorID, id string) error {
	if err := l.store.Delete(ctx, id); err != nil {
		return err
	}
	if l.mirror != nil {
		if err := l.mirror.Delete(ctx, l.brokerID, id); err != nil {
			l.log.Warn().Err(err).Str("subsidio_id", id).Msg("no se pudo retirar el subsidio de la réplica")
		}
	}
	l.record(ctx, entity.AuditSubsidyDeleted, actorID, map[string]any{"subsidio_id": id})
	return nil
}

// DeleteAll vacía el catálogo completo. Devuelve cuántos subsidios había.
func (l *Ledger) DeleteAll(ctx context.Context, actorID string) (int, error) {
	n, err := l.store.DeleteAll(ctx)
	if err != nil {
		return 0, &domain.PersistenceError{Op: "vaciar catálogo de subsidios", Err: err}
	}
	if l.mirror != nil {
		if _, err := l.mirror.Clear(ctx, l.brokerID); err != nil {
			l.log.Warn().Err(err).Msg("no se pudo vaciar la réplica de subsidios")
		}
	}
	l.record(ctx, entity.AuditSubsidyDeleteAll, actorID, map[string]any{"eliminados": n})
	return n, nil
}

// Resolve aplica la cascada de subsidios sobre un monto, en el orden dado.
// Cada paso descuenta su porcentaje y redondea a 2 decimales antes del
// siguiente, así que el orden de la lista altera el resultado. IDs
// desconocidos se omiten con advertencia. Devuelve el monto final y las
// instantáneas aplicadas.
func (l *Ledger) Resolve(ctx context.Context, amount decimal.Decimal, subsidyIDs []string) (decimal.Decimal, []entity.AppliedSubsidy, error) {
	adjusted := amount
	var applied []entity.AppliedSubsidy
	for _, id := range subsidyIDs {
		s, err := l.store.GetByID(ctx, id)
		if err != nil {
			return amount, nil, &domain.PersistenceError{Op: "resolver subsidio", Err: err}
		}
		if s == nil {
			l.log.Warn().Str("subsidio_id", id).Msg("subsidio desconocido, se omite de la cascada")
			continue
		}
		adjusted = adjusted.Mul(one.Sub(s.Percentage)).Round(2)
		applied = append(applied, entity.AppliedSubsidy{
			SubsidyID:  s.ID,
			Name:       s.Name,
			Percentage: s.Percentage,
		})
	}
	return adjusted, applied, nil
}

// RecordApplications deja traza local de los subsidios aplicados a una
// calificación. Mejor-esfuerzo: una falla se registra y no se propaga.
func (l *Ledger) RecordApplications(ctx context.Context, qualificationID string, applied []entity.AppliedSubsidy) {
	now := time.Now().UTC().Format(time.RFC3339)
	for _, a := range applied {
		err := l.store.RecordApplication(ctx, entity.SubsidyApplication{
			ID:              uuid.NewString(),
			SubsidyID:       a.SubsidyID,
			QualificationID: qualificationID,
			AppliedAt:       now,
			Details:         fmt.Sprintf("porcentaje=%s", a.Percentage.String()),
		})
		if err != nil {
			l.log.Warn().Err(err).Str("subsidio_id", a.SubsidyID).Msg("no se pudo registrar la aplicación del subsidio")
		}
	}
}

// ImportFromTable incorpora una planilla al catálogo dentro de una
// transacción local. Cada fila se empareja primero por id_normativa y luego
// por nombre exacto; sin coincidencia se inserta. Las filas inválidas se
// reportan en Errors y se omiten sin abortar el lote.
func (l *Ledger) ImportFromTable(ctx context.Context, actorID string, t *tabular.Table) (ImportStats, error) {
	stats := ImportStats{Rows: len(t.Rows)}

	if missing := t.MissingColumns(importColumns); len(missing) > 0 {
		return stats, &domain.ValidationError{
			Field:  missing[0],
			Reason: "columna requerida ausente en la planilla",
		}
	}
	nameCol := t.ColumnIndex("nombre_subsidio")
	pctCol := t.ColumnIndex("valor_porcentual")
	refCol := t.ColumnIndex("id_normativa") // opcional

	err := l.store.ImportBatch(ctx, func(tx repository.SubsidyBatch) error {
		for i := range t.Rows {
			name := t.Cell(i, nameCol)
			if name == "" {
				stats.Errors = append(stats.Errors, fmt.Sprintf("Fila %d: nombre_subsidio vacío", i+2))
				continue
			}
			pct, ok := parsePercentCell(t.Cell(i, pctCol))
			if !ok {
				stats.Errors = append(stats.Errors, fmt.Sprintf("Fila %d: valor_porcentual inválido", i+2))
				continue
			}
			ref := ""
			if refCol >= 0 {
				ref = t.Cell(i, refCol)
			}

			s := entity.Subsidy{Name: name, Percentage: NormalizePercentage(pct), RegulationRef: ref}

			id := ""
			var err error
			if ref != "" {
				if id, err = tx.FindIDByRegulationRef(ref); err != nil {
					return err
				}
			}
			if id == "" {
				if id, err = tx.FindIDByName(name); err != nil {
					return err
				}
			}
			if id == "" {
				s.ID = uuid.NewString()
				if err := tx.Insert(s); err != nil {
					return err
				}
				stats.Added++
			} else {
				s.ID = id
				if err := tx.Update(s); err != nil {
					return err
				}
				stats.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return stats, &domain.PersistenceError{Op: "importar catálogo de subsidios", Err: err}
	}

	l.syncMirror(ctx)
	l.record(ctx, entity.AuditSubsidyImport, actorID, map[string]any{
		"filas":        stats.Rows,
		"agregados":    stats.Added,
		"actualizados": stats.Updated,
		"errores":      len(stats.Errors),
	})
	return stats, nil
}

// ExportTable vuelca el catálogo a una tabla lista para escribir como CSV.
func (l *Ledger) ExportTable(ctx context.Context) (*tabular.Table, error) {
	subs, err := l.store.List(ctx)
	if err != nil {
		return nil, err
	}
	t := &tabular.Table{Headers: []string{"id", "nombre_subsidio", "valor_porcentual", "id_normativa"}}
	for _, s := range subs {
		t.Rows = append(t.Rows, []string{s.ID, s.Name, s.Percentage.String(), s.RegulationRef})
	}
	return t, nil
}

// parsePercentCell acepta coma o punto decimal, igual que los factores.
func parsePercentCell(cell string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(normalizeDecimalSeparator(cell))
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

func normalizeDecimalSeparator(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ',' {
			c = '.'
		}
		if c == ' ' {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

func (l *Ledger) mirrorUpsert(ctx context.Context, s entity.Subsidy) {
	if l.mirror == nil {
		return
	}
	if err := l.mirror.Upsert(ctx, l.brokerID, s); err != nil {
		l.log.Warn().Err(err).Str("subsidio_id", s.ID).Msg("no se pudo replicar el subsidio")
	}
}

// syncMirror re-publica el catálogo completo tras una importación.
func (l *Ledger) syncMirror(ctx context.Context) {
	if l.mirror == nil {
		return
	}
	subs, err := l.store.List(ctx)
	if err != nil {
		l.log.Warn().Err(err).Msg("no se pudo leer el catálogo para sincronizar la réplica")
		return
	}
	for _, s := range subs {
		l.mirrorUpsert(ctx, s)
	}
}

func (l *Ledger) record(ctx context.Context, action, actorID string, details map[string]any) {
	if l.audit == nil {
		return
	}
	if err := l.audit.Record(ctx, action, actorID, details); err != nil {
		l.log.Warn().Err(err).Str("accion", action).Msg("no se pudo registrar la auditoría")
	}
}
