package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"oficri/mesapartes/internal/core/referencia"
)

// Repository implements the referencia.Repository interface using
// PostgreSQL. The catalog name maps directly to the table name; every
// access validates the tipo first so no request-derived value ever
// reaches the query text.
type Repository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewRepository creates a new PostgreSQL reference-catalog repository.
func NewRepository(pool *pgxpool.Pool, log *slog.Logger) referencia.Repository {
	return &Repository{pool: pool, log: log}
}

// Create persists a new record in the catalog and returns its ID.
func (r *Repository) Create(ctx context.Context, tipo referencia.Tipo, reg referencia.Registro) (int64, error) {
	if !tipo.Valido() {
		return 0, referencia.ErrTipoInvalido
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (nombre, descripcion) VALUES ($1, $2) RETURNING id`, tipo)

	var id int64
	err := r.pool.QueryRow(ctx, query, reg.Nombre, reg.Descripcion).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, referencia.ErrNombreDuplicado
		}
		return 0, fmt.Errorf("insert %s: %w", tipo, err)
	}

	return id, nil
}

// Update replaces nombre/descripcion of an existing record.
func (r *Repository) Update(ctx context.Context, tipo referencia.Tipo, reg referencia.Registro) error {
	if !tipo.Valido() {
		return referencia.ErrTipoInvalido
	}

	query := fmt.Sprintf(
		`UPDATE %s SET nombre = $1, descripcion = $2, updated_at = NOW() WHERE id = $3`, tipo)

	tag, err := r.pool.Exec(ctx, query, reg.Nombre, reg.Descripcion, reg.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return referencia.ErrNombreDuplicado
		}
		return fmt.Errorf("update %s: %w", tipo, err)
	}
	if tag.RowsAffected() == 0 {
		return referencia.ErrNoEncontrado
	}

	return nil
}

// Delete removes a record from the catalog.
func (r *Repository) Delete(ctx context.Context, tipo referencia.Tipo, id int64) error {
	if !tipo.Valido() {
		return referencia.ErrTipoInvalido
	}

	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, tipo), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", tipo, err)
	}
	if tag.RowsAffected() == 0 {
		return referencia.ErrNoEncontrado
	}

	return nil
}

// FindByID retrieves a record by ID. Returns nil if not found.
func (r *Repository) FindByID(ctx context.Context, tipo referencia.Tipo, id int64) (*referencia.Registro, error) {
	if !tipo.Valido() {
		return nil, referencia.ErrTipoInvalido
	}

	query := fmt.Sprintf(
		`SELECT id, nombre, descripcion, created_at, updated_at FROM %s WHERE id = $1`, tipo)

	var reg referencia.Registro
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&reg.ID, &reg.Nombre, &reg.Descripcion, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %s: %w", tipo, err)
	}

	return &reg, nil
}

// List returns the whole catalog ordered by nombre.
func (r *Repository) List(ctx context.Context, tipo referencia.Tipo) ([]referencia.Registro, error) {
	if !tipo.Valido() {
		return nil, referencia.ErrTipoInvalido
	}

	query := fmt.Sprintf(
		`SELECT id, nombre, descripcion, created_at, updated_at FROM %s ORDER BY nombre ASC`, tipo)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", tipo, err)
	}
	defer rows.Close()

	var result []referencia.Registro
	for rows.Next() {
		var reg referencia.Registro
		if err := rows.Scan(&reg.ID, &reg.Nombre, &reg.Descripcion, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", tipo, err)
		}
		result = append(result, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", tipo, err)
	}

	return result, nil
}
