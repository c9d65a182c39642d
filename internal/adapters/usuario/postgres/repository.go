package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"oficri/mesapartes/internal/core/usuario"
)

// Repository implements the usuario.Repository interface using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewRepository creates a new PostgreSQL usuario repository.
func NewRepository(pool *pgxpool.Pool, log *slog.Logger) usuario.Repository {
	return &Repository{pool: pool, log: log}
}

const usuarioColumns = `cip, nombre_completo, rol, seccion_nombre, grado_nombre, turno_nombre,
	correo, password_hash, activo, created_at, updated_at`

// Create persists a new usuario.
func (r *Repository) Create(ctx context.Context, u usuario.Usuario) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO usuarios (cip, nombre_completo, rol, seccion_nombre, grado_nombre,
			turno_nombre, correo, password_hash, activo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		u.CIP,
		u.NombreCompleto,
		u.Rol,
		u.SeccionNombre,
		u.GradoNombre,
		u.TurnoNombre,
		u.Correo,
		u.PasswordHash,
		u.Activo,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return usuario.ErrYaExiste
		}
		return fmt.Errorf("insert usuario: %w", err)
	}

	return nil
}

// Update replaces the mutable fields of an existing usuario. The password
// hash is only overwritten when a new one is provided.
func (r *Repository) Update(ctx context.Context, u usuario.Usuario) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE usuarios SET
			nombre_completo = $1,
			seccion_nombre = $2,
			grado_nombre = $3,
			turno_nombre = $4,
			correo = $5,
			password_hash = COALESCE(NULLIF($6, ''), password_hash),
			activo = $7,
			updated_at = NOW()
		WHERE cip = $8 AND rol = $9 AND deleted_at IS NULL
	`,
		u.NombreCompleto,
		u.SeccionNombre,
		u.GradoNombre,
		u.TurnoNombre,
		u.Correo,
		u.PasswordHash,
		u.Activo,
		u.CIP,
		u.Rol,
	)
	if err != nil {
		return fmt.Errorf("update usuario: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return usuario.ErrNoEncontrado
	}

	return nil
}

// FindByCIP retrieves a usuario by CIP and rol. Returns nil if not found.
func (r *Repository) FindByCIP(ctx context.Context, cip string, rol usuario.Rol) (*usuario.Usuario, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM usuarios WHERE cip = $1 AND rol = $2 AND deleted_at IS NULL`,
		usuarioColumns)

	u, err := scanUsuario(r.pool.QueryRow(ctx, query, cip, rol))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find usuario: %w", err)
	}

	return u, nil
}

// List retrieves usuarios of a rol with pagination and search. page is 1-based.
func (r *Repository) List(ctx context.Context, rol usuario.Rol, page, size int, busqueda string) ([]usuario.Usuario, int, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}

	where := `rol = $1 AND deleted_at IS NULL`
	args := []any{rol}
	if busqueda != "" {
		args = append(args, "%"+busqueda+"%")
		where += ` AND (cip ILIKE $2 OR nombre_completo ILIKE $2)`
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM usuarios WHERE `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count usuarios: %w", err)
	}

	args = append(args, size, (page-1)*size)
	query := fmt.Sprintf(
		`SELECT %s FROM usuarios WHERE %s ORDER BY nombre_completo ASC LIMIT $%d OFFSET $%d`,
		usuarioColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list usuarios: %w", err)
	}
	defer rows.Close()

	var result []usuario.Usuario
	for rows.Next() {
		u, err := scanUsuario(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan usuario: %w", err)
		}
		result = append(result, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate usuarios: %w", err)
	}

	return result, total, nil
}

// Deactivate soft-deletes a usuario.
func (r *Repository) Deactivate(ctx context.Context, cip string, rol usuario.Rol) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE usuarios SET activo = FALSE, deleted_at = NOW(), updated_at = NOW()
		 WHERE cip = $1 AND rol = $2 AND deleted_at IS NULL`,
		cip, rol,
	)
	if err != nil {
		return fmt.Errorf("deactivate usuario: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return usuario.ErrNoEncontrado
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUsuario(row rowScanner) (*usuario.Usuario, error) {
	var u usuario.Usuario
	err := row.Scan(
		&u.CIP,
		&u.NombreCompleto,
		&u.Rol,
		&u.SeccionNombre,
		&u.GradoNombre,
		&u.TurnoNombre,
		&u.Correo,
		&u.PasswordHash,
		&u.Activo,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
