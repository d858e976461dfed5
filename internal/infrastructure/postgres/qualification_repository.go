package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/tribunsys/internal/domain/entity"
	"github.com/tu-usuario/tribunsys/internal/domain/repository"
)

var _ repository.QualificationRepository = (*QualificationRepo)(nil)

// QualificationRepo adaptador del almacén compartido de calificaciones.
// El vector de factores y las instantáneas de subsidios se guardan como
// JSONB: el documento viaja completo, como en el almacén de origen.
type QualificationRepo struct {
	q Querier
}

// NewQualificationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewQualificationRepository(q Querier) *QualificationRepo {
	return &QualificationRepo{q: q}
}

const qualificationColumns = `
	id, cliente_id, propietario_id, fecha_declaracion, tipo_impuesto, pais,
	monto_declarado, monto_ajustado, factores, subsidios_aplicados,
	es_bolsa, activo, fecha_creacion, fecha_modificacion, fecha_eliminacion`

// Create persiste una nueva calificación.
func (r *QualificationRepo) Create(ctx context.Context, q *entity.Qualification) error {
	factores, err := json.Marshal(q.Factors)
	if err != nil {
		return fmt.Errorf("serializar factores: %w", err)
	}
	subsidios, err := json.Marshal(q.AppliedSubsidies)
	if err != nil {
		return fmt.Errorf("serializar subsidios: %w", err)
	}
	query := `
		INSERT INTO calificaciones (` + qualificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err = r.q.Exec(ctx, query,
		q.ID, q.ClientID, q.OwnerID, q.DeclarationDate, q.TaxType, q.Country,
		q.DeclaredAmount, q.AdjustedAmount, factores, subsidios,
		q.IsAuthoritative, q.Active, q.CreatedAt, q.ModifiedAt, q.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert calificacion: %w", err)
	}
	return nil
}

// GetByID obtiene una calificación por ID. nil si no existe.
func (r *QualificationRepo) GetByID(ctx context.Context, id string) (*entity.Qualification, error) {
	query := `SELECT ` + qualificationColumns + ` FROM calificaciones WHERE id = $1`
	q, err := scanQualification(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get calificacion: %w", err)
	}
	return q, nil
}

// Update reemplaza los campos de negocio del documento (mismo ID).
func (r *QualificationRepo) Update(ctx context.Context, q *entity.Qualification) error {
	factores, err := json.Marshal(q.Factors)
	if err != nil {
		return fmt.Errorf("serializar factores: %w", err)
	}
	subsidios, err := json.Marshal(q.AppliedSubsidies)
	if err != nil {
		return fmt.Errorf("serializar subsidios: %w", err)
	}
	query := `
		UPDATE calificaciones SET
			fecha_declaracion = $2, tipo_impuesto = $3, pais = $4,
			monto_declarado = $5, monto_ajustado = $6, factores = $7,
			subsidios_aplicados = $8, fecha_modificacion = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		q.ID, q.DeclarationDate, q.TaxType, q.Country,
		q.DeclaredAmount, q.AdjustedAmount, factores, subsidios, q.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("update calificacion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SoftDelete desactiva el registro; nunca borra la fila.
func (r *QualificationRepo) SoftDelete(ctx context.Context, id string, deletedAt time.Time) error {
	query := `
		UPDATE calificaciones SET activo = false, fecha_eliminacion = $2, fecha_modificacion = $2
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, deletedAt)
	if err != nil {
		return fmt.Errorf("soft delete calificacion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// FindAuthoritative busca la calificación de bolsa activa para la clave
// (cliente, fecha, tipo). nil si no existe.
func (r *QualificationRepo) FindAuthoritative(ctx context.Context, clientID, declarationDate, taxType string) (*entity.Qualification, error) {
	query := `
		SELECT ` + qualificationColumns + `
		FROM calificaciones
		WHERE cliente_id = $1 AND fecha_declaracion = $2 AND tipo_impuesto = $3
		  AND es_bolsa AND activo
		LIMIT 1`
	q, err := scanQualification(r.q.QueryRow(ctx, query, clientID, declarationDate, taxType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("buscar calificacion de bolsa: %w", err)
	}
	return q, nil
}

// List devuelve registros activos según visibilidad y filtros (AND).
func (r *QualificationRepo) List(ctx context.Context, vis repository.QualificationVisibility, f repository.QualificationFilters) ([]*entity.Qualification, error) {
	query := `SELECT ` + qualificationColumns + ` FROM calificaciones WHERE activo`
	args := []any{}
	n := 0
	arg := func(v any) string {
		n++
		args = append(args, v)
		return fmt.Sprintf("$%d", n)
	}

	if !vis.Admin {
		// bolsa visible para todos; locales solo del propietario
		query += ` AND (es_bolsa OR propietario_id = ` + arg(vis.OwnerID) + `)`
	}
	if f.DateFrom != "" {
		query += ` AND fecha_declaracion >= ` + arg(f.DateFrom)
	}
	if f.DateTo != "" {
		query += ` AND fecha_declaracion <= ` + arg(f.DateTo)
	}
	if f.TaxType != "" {
		query += ` AND tipo_impuesto = ` + arg(f.TaxType)
	}
	if f.Country != "" {
		query += ` AND pais = ` + arg(f.Country)
	}
	query += ` ORDER BY fecha_declaracion DESC, fecha_creacion DESC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar calificaciones: %w", err)
	}
	defer rows.Close()

	var list []*entity.Qualification
	for rows.Next() {
		q, err := scanQualification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan calificacion: %w", err)
		}
		list = append(list, q)
	}
	return list, rows.Err()
}

// scanQualification lee una fila completa, incluidos los campos JSONB.
func scanQualification(row pgx.Row) (*entity.Qualification, error) {
	var q entity.Qualification
	var factores, subsidios []byte
	var adjusted *decimal.Decimal
	err := row.Scan(
		&q.ID, &q.ClientID, &q.OwnerID, &q.DeclarationDate, &q.TaxType, &q.Country,
		&q.DeclaredAmount, &adjusted, &factores, &subsidios,
		&q.IsAuthoritative, &q.Active, &q.CreatedAt, &q.ModifiedAt, &q.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	if adjusted != nil {
		q.AdjustedAmount = *adjusted
	} else {
		q.AdjustedAmount = q.DeclaredAmount
	}
	if len(factores) > 0 {
		if err := json.Unmarshal(factores, &q.Factors); err != nil {
			return nil, fmt.Errorf("deserializar factores: %w", err)
		}
	}
	if len(subsidios) > 0 {
		if err := json.Unmarshal(subsidios, &q.AppliedSubsidies); err != nil {
			return nil, fmt.Errorf("deserializar subsidios: %w", err)
		}
	}
	return &q, nil
}
