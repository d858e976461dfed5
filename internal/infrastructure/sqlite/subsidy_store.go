package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/tu-usuario/tribunsys/internal/domain"
	"github.com/tu-usuario/tribunsys/internal/domain/entity"
	"github.com/tu-usuario/tribunsys/internal/domain/repository"
)

var _ repository.SubsidyStore = (*SubsidyStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS subsidios (
	id TEXT PRIMARY KEY,
	nombre_subsidio TEXT NOT NULL,
	valor_porcentual TEXT NOT NULL,
	id_normativa TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS subsidios_aplicados (
	id TEXT PRIMARY KEY,
	subsidio_id TEXT NOT NULL,
	calificacion_id TEXT NOT NULL,
	fecha_aplicacion TEXT NOT NULL,
	detalles TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_subsidios_normativa ON subsidios (id_normativa);
CREATE INDEX IF NOT EXISTS idx_aplicados_calificacion ON subsidios_aplicados (calificacion_id);
`

// SubsidyStore almacén embebido de subsidios, un archivo por corredor.
// Los porcentajes se guardan como texto decimal para no perder precisión.
type SubsidyStore struct {
	db *sqlx.DB
}

// Open abre (o crea) la base local del corredor y asegura el esquema.
// Usar ":memory:" en tests.
func Open(path string) (*SubsidyStore, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("abrir base local de subsidios: %w", err)
	}
	// sqlite embebido: un solo escritor
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("crear esquema de subsidios: %w", err)
	}
	return &SubsidyStore{db: db}, nil
}

// Close cierra el archivo local.
func (s *SubsidyStore) Close() error {
	return s.db.Close()
}

type subsidyRow struct {
	ID            string `db:"id"`
	Name          string `db:"nombre_subsidio"`
	Percentage    string `db:"valor_porcentual"`
	RegulationRef string `db:"id_normativa"`
}

func (r subsidyRow) toEntity() (entity.Subsidy, error) {
	pct, err := decimalFromText(r.Percentage)
	if err != nil {
		return entity.Subsidy{}, fmt.Errorf("porcentaje corrupto en subsidio %s: %w", r.ID, err)
	}
	return entity.Subsidy{ID: r.ID, Name: r.Name, Percentage: pct, RegulationRef: r.RegulationRef}, nil
}

// List devuelve el catálogo completo ordenado por nombre.
func (s *SubsidyStore) List(ctx context.Context) ([]entity.Subsidy, error) {
	var rows []subsidyRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, nombre_subsidio, valor_porcentual, id_normativa FROM subsidios ORDER BY nombre_subsidio`)
	if err != nil {
		return nil, fmt.Errorf("listar subsidios: %w", err)
	}
	out := make([]entity.Subsidy, 0, len(rows))
	for _, r := range rows {
		e, err := r.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// GetByID obtiene un subsidio. nil si no existe.
func (s *SubsidyStore) GetByID(ctx context.Context, id string) (*entity.Subsidy, error) {
	var r subsidyRow
	err := s.db.GetContext(ctx, &r,
		`SELECT id, nombre_subsidio, valor_porcentual, id_normativa FROM subsidios WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subsidio: %w", err)
	}
	e, err := r.toEntity()
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Upsert inserta o reemplaza un subsidio por ID.
func (s *SubsidyStore) Upsert(ctx context.Context, sub entity.Subsidy) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subsidios (id, nombre_subsidio, valor_porcentual, id_normativa)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			nombre_subsidio = excluded.nombre_subsidio,
			valor_porcentual = excluded.valor_porcentual,
			id_normativa = excluded.id_normativa`,
		sub.ID, sub.Name, sub.Percentage.String(), sub.RegulationRef)
	if err != nil {
		return fmt.Errorf("guardar subsidio: %w", err)
	}
	return nil
}

// Delete elimina un subsidio. domain.ErrNotFound si no existe.
func (s *SubsidyStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subsidios WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("eliminar subsidio: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("eliminar subsidio: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ImportBatch ejecuta fn dentro de una transacción; si fn falla, nada queda.
func (s *SubsidyStore) ImportBatch(ctx context.Context, fn func(tx repository.SubsidyBatch) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("abrir transaccion de importacion: %w", err)
	}
	if err := fn(&batch{tx: tx}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("confirmar importacion: %w", err)
	}
	return nil
}

// DeleteAll vacía catálogo y aplicaciones en una transacción.
func (s *SubsidyStore) DeleteAll(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("abrir transaccion de borrado: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM subsidios`)
	if err != nil {
		return 0, fmt.Errorf("vaciar subsidios: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("vaciar subsidios: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM subsidios_aplicados`); err != nil {
		return 0, fmt.Errorf("vaciar aplicaciones: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("confirmar borrado: %w", err)
	}
	return int(n), nil
}

// RecordApplication guarda la traza local de un subsidio aplicado.
func (s *SubsidyStore) RecordApplication(ctx context.Context, app entity.SubsidyApplication) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO subsidios_aplicados (id, subsidio_id, calificacion_id, fecha_aplicacion, detalles)
		VALUES (:id, :subsidio_id, :calificacion_id, :fecha_aplicacion, :detalles)`, app)
	if err != nil {
		return fmt.Errorf("registrar aplicacion de subsidio: %w", err)
	}
	return nil
}

// batch implementa repository.SubsidyBatch sobre una transacción abierta.
type batch struct {
	tx *sqlx.Tx
}

func (b *batch) FindIDByRegulationRef(ref string) (string, error) {
	var id string
	err := b.tx.Get(&id, `SELECT id FROM subsidios WHERE id_normativa = ? LIMIT 1`, ref)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("buscar subsidio por normativa: %w", err)
	}
	return id, nil
}

func (b *batch) FindIDByName(name string) (string, error) {
	var id string
	err := b.tx.Get(&id, `SELECT id FROM subsidios WHERE nombre_subsidio = ? LIMIT 1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("buscar subsidio por nombre: %w", err)
	}
	return id, nil
}

func (b *batch) Insert(sub entity.Subsidy) error {
	_, err := b.tx.Exec(`
		INSERT INTO subsidios (id, nombre_subsidio, valor_porcentual, id_normativa)
		VALUES (?, ?, ?, ?)`,
		sub.ID, sub.Name, sub.Percentage.String(), sub.RegulationRef)
	if err != nil {
		return fmt.Errorf("insertar subsidio en lote: %w", err)
	}
	return nil
}

func (b *batch) Update(sub entity.Subsidy) error {
	_, err := b.tx.Exec(`
		UPDATE subsidios SET nombre_subsidio = ?, valor_porcentual = ?, id_normativa = ?
		WHERE id = ?`,
		sub.Name, sub.Percentage.String(), sub.RegulationRef, sub.ID)
	if err != nil {
		return fmt.Errorf("actualizar subsidio en lote: %w", err)
	}
	return nil
}
