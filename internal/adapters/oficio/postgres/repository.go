package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"oficri/mesapartes/internal/core/oficio"
)

// Repository implements the oficio.Repository interface using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewRepository creates a new PostgreSQL oficio repository.
func NewRepository(pool *pgxpool.Pool, log *slog.Logger) oficio.Repository {
	return &Repository{pool: pool, log: log}
}

const oficioColumns = `id, numero_oficio, asunto, examinado_incriminado, delito, tipos_de_examen,
	nombre_prioridad, perito_asignado, seccion_destino, ultimo_estado, observaciones,
	fecha_recepcion, created_at, updated_at`

// Create persists a new oficio and returns its ID.
func (r *Repository) Create(ctx context.Context, of oficio.Oficio) (int64, error) {
	tiposJSON, err := json.Marshal(of.TiposDeExamen)
	if err != nil {
		return 0, fmt.Errorf("marshal tipos_de_examen: %w", err)
	}

	query := `
		INSERT INTO oficios (
			numero_oficio, asunto, examinado_incriminado, delito, tipos_de_examen,
			nombre_prioridad, perito_asignado, seccion_destino, ultimo_estado,
			observaciones, fecha_recepcion
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	var id int64
	err = r.pool.QueryRow(ctx, query,
		of.NumeroOficio,
		of.Asunto,
		of.ExaminadoIncriminado,
		of.Delito,
		tiposJSON,
		of.NombrePrioridad,
		of.PeritoAsignado,
		of.SeccionDestino,
		of.UltimoEstado,
		of.Observaciones,
		of.FechaRecepcion,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, oficio.ErrNumeroDuplicado
		}
		return 0, fmt.Errorf("insert oficio: %w", err)
	}

	return id, nil
}

// Update replaces the mutable fields of an existing oficio.
func (r *Repository) Update(ctx context.Context, of oficio.Oficio) error {
	tiposJSON, err := json.Marshal(of.TiposDeExamen)
	if err != nil {
		return fmt.Errorf("marshal tipos_de_examen: %w", err)
	}

	query := `
		UPDATE oficios SET
			asunto = $1,
			examinado_incriminado = $2,
			delito = $3,
			tipos_de_examen = $4,
			nombre_prioridad = $5,
			perito_asignado = $6,
			seccion_destino = $7,
			observaciones = $8,
			updated_at = NOW()
		WHERE id = $9 AND deleted_at IS NULL
	`

	tag, err := r.pool.Exec(ctx, query,
		of.Asunto,
		of.ExaminadoIncriminado,
		of.Delito,
		tiposJSON,
		of.NombrePrioridad,
		of.PeritoAsignado,
		of.SeccionDestino,
		of.Observaciones,
		of.ID,
	)
	if err != nil {
		return fmt.Errorf("update oficio: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return oficio.ErrNoEncontrado
	}

	return nil
}

// FindByID retrieves an oficio by ID. Returns nil if not found.
func (r *Repository) FindByID(ctx context.Context, id int64) (*oficio.Oficio, error) {
	query := fmt.Sprintf(`SELECT %s FROM oficios WHERE id = $1 AND deleted_at IS NULL`, oficioColumns)

	of, err := scanOficio(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find oficio: %w", err)
	}

	return of, nil
}

// ExistsNumero checks whether a document number is already taken.
func (r *Repository) ExistsNumero(ctx context.Context, numero string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM oficios WHERE numero_oficio = $1 AND deleted_at IS NULL)`,
		numero,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check numero_oficio: %w", err)
	}
	return exists, nil
}

// List retrieves oficios with pagination and filtering. page is 1-based.
func (r *Repository) List(ctx context.Context, page, size int, filtro oficio.Filtro) ([]oficio.Oficio, int, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}

	where := []string{"deleted_at IS NULL"}
	args := []any{}

	if filtro.Busqueda != "" {
		args = append(args, "%"+filtro.Busqueda+"%")
		idx := len(args)
		where = append(where, fmt.Sprintf(
			"(numero_oficio ILIKE $%d OR asunto ILIKE $%d OR examinado_incriminado ILIKE $%d OR delito ILIKE $%d)",
			idx, idx, idx, idx))
	}
	if filtro.Estado != "" {
		args = append(args, filtro.Estado)
		where = append(where, fmt.Sprintf("ultimo_estado = $%d", len(args)))
	}
	if filtro.PeritoCIP != "" {
		args = append(args, filtro.PeritoCIP)
		where = append(where, fmt.Sprintf("perito_asignado = $%d", len(args)))
	}
	if filtro.SeccionDestino != "" {
		args = append(args, filtro.SeccionDestino)
		where = append(where, fmt.Sprintf("seccion_destino = $%d", len(args)))
	}
	if filtro.Prioridad != "" {
		args = append(args, filtro.Prioridad)
		where = append(where, fmt.Sprintf("nombre_prioridad = $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM oficios WHERE %s`, whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count oficios: %w", err)
	}

	args = append(args, size, (page-1)*size)
	listQuery := fmt.Sprintf(
		`SELECT %s FROM oficios WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		oficioColumns, whereClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list oficios: %w", err)
	}
	defer rows.Close()

	var result []oficio.Oficio
	for rows.Next() {
		of, err := scanOficio(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan oficio: %w", err)
		}
		result = append(result, *of)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate oficios: %w", err)
	}

	return result, total, nil
}

// AppendSeguimiento records a tracking event and updates the oficio's
// derived ultimo_estado in the same transaction.
func (r *Repository) AppendSeguimiento(ctx context.Context, seg oficio.Seguimiento) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO seguimientos (id, id_oficio, estado_anterior, estado_nuevo,
			fecha_seguimiento, usuario_asignado, nombre_usuario, observaciones)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		seg.ID,
		seg.OficioID,
		seg.EstadoAnterior,
		seg.EstadoNuevo,
		seg.FechaSeguimiento,
		seg.UsuarioAsignado,
		seg.NombreUsuario,
		seg.Observaciones,
	)
	if err != nil {
		return fmt.Errorf("insert seguimiento: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE oficios SET ultimo_estado = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`,
		seg.EstadoNuevo, seg.OficioID,
	)
	if err != nil {
		return fmt.Errorf("update ultimo_estado: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return oficio.ErrNoEncontrado
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Seguimientos returns the tracking history of an oficio in chronological order.
func (r *Repository) Seguimientos(ctx context.Context, oficioID int64) ([]oficio.Seguimiento, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, id_oficio, estado_anterior, estado_nuevo, fecha_seguimiento,
			usuario_asignado, nombre_usuario, observaciones
		FROM seguimientos
		WHERE id_oficio = $1
		ORDER BY fecha_seguimiento ASC
	`, oficioID)
	if err != nil {
		return nil, fmt.Errorf("list seguimientos: %w", err)
	}
	defer rows.Close()

	var result []oficio.Seguimiento
	for rows.Next() {
		var seg oficio.Seguimiento
		if err := rows.Scan(
			&seg.ID,
			&seg.OficioID,
			&seg.EstadoAnterior,
			&seg.EstadoNuevo,
			&seg.FechaSeguimiento,
			&seg.UsuarioAsignado,
			&seg.NombreUsuario,
			&seg.Observaciones,
		); err != nil {
			return nil, fmt.Errorf("scan seguimiento: %w", err)
		}
		result = append(result, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seguimientos: %w", err)
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOficio(row rowScanner) (*oficio.Oficio, error) {
	var of oficio.Oficio
	var tiposJSON []byte

	err := row.Scan(
		&of.ID,
		&of.NumeroOficio,
		&of.Asunto,
		&of.ExaminadoIncriminado,
		&of.Delito,
		&tiposJSON,
		&of.NombrePrioridad,
		&of.PeritoAsignado,
		&of.SeccionDestino,
		&of.UltimoEstado,
		&of.Observaciones,
		&of.FechaRecepcion,
		&of.CreatedAt,
		&of.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(tiposJSON) > 0 {
		if err := json.Unmarshal(tiposJSON, &of.TiposDeExamen); err != nil {
			return nil, fmt.Errorf("unmarshal tipos_de_examen: %w", err)
		}
	}

	return &of, nil
}
