package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"oficri/mesapartes/internal/core/muestra"
)

// Repository implements the muestra.Repository interface using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewRepository creates a new PostgreSQL muestra repository.
func NewRepository(pool *pgxpool.Pool, log *slog.Logger) muestra.Repository {
	return &Repository{pool: pool, log: log}
}

// Create persists a new sample record and returns its ID.
func (r *Repository) Create(ctx context.Context, m muestra.Muestra) (string, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Resultados == nil {
		m.Resultados = map[string]string{}
	}

	resultadosJSON, err := json.Marshal(m.Resultados)
	if err != nil {
		return "", fmt.Errorf("marshal resultados: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO muestras (id, id_oficio, tipo_muestra, descripcion, cantidad, foto_uri, resultados)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		m.ID,
		m.OficioID,
		m.TipoMuestra,
		m.Descripcion,
		m.Cantidad,
		m.FotoURI,
		resultadosJSON,
	)
	if err != nil {
		return "", fmt.Errorf("insert muestra: %w", err)
	}

	return m.ID, nil
}

// Update replaces the mutable fields of an existing sample.
func (r *Repository) Update(ctx context.Context, m muestra.Muestra) error {
	resultadosJSON, err := json.Marshal(m.Resultados)
	if err != nil {
		return fmt.Errorf("marshal resultados: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE muestras SET
			tipo_muestra = $1,
			descripcion = $2,
			cantidad = $3,
			foto_uri = $4,
			resultados = $5,
			updated_at = NOW()
		WHERE id = $6
	`,
		m.TipoMuestra,
		m.Descripcion,
		m.Cantidad,
		m.FotoURI,
		resultadosJSON,
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("update muestra: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return muestra.ErrNoEncontrada
	}

	return nil
}

// MergeResultados merges new analysis results into the sample's result set,
// keeping results recorded by other sections.
func (r *Repository) MergeResultados(ctx context.Context, id string, resultados map[string]string) error {
	parcialJSON, err := json.Marshal(resultados)
	if err != nil {
		return fmt.Errorf("marshal resultados: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE muestras SET resultados = resultados || $1::jsonb, updated_at = NOW() WHERE id = $2`,
		parcialJSON, id,
	)
	if err != nil {
		return fmt.Errorf("merge resultados: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return muestra.ErrNoEncontrada
	}

	return nil
}

// FindByOficio lists the samples registered for an oficio.
func (r *Repository) FindByOficio(ctx context.Context, oficioID int64) ([]muestra.Muestra, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, id_oficio, tipo_muestra, descripcion, cantidad, foto_uri, resultados, created_at, updated_at
		FROM muestras
		WHERE id_oficio = $1
		ORDER BY created_at ASC
	`, oficioID)
	if err != nil {
		return nil, fmt.Errorf("list muestras: %w", err)
	}
	defer rows.Close()

	var result []muestra.Muestra
	for rows.Next() {
		m, err := scanMuestra(rows)
		if err != nil {
			return nil, fmt.Errorf("scan muestra: %w", err)
		}
		result = append(result, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate muestras: %w", err)
	}

	return result, nil
}

// FindByID retrieves one sample. Returns nil if not found.
func (r *Repository) FindByID(ctx context.Context, id string) (*muestra.Muestra, error) {
	m, err := scanMuestra(r.pool.QueryRow(ctx, `
		SELECT id, id_oficio, tipo_muestra, descripcion, cantidad, foto_uri, resultados, created_at, updated_at
		FROM muestras
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find muestra: %w", err)
	}

	return m, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMuestra(row rowScanner) (*muestra.Muestra, error) {
	var m muestra.Muestra
	var resultadosJSON []byte

	err := row.Scan(
		&m.ID,
		&m.OficioID,
		&m.TipoMuestra,
		&m.Descripcion,
		&m.Cantidad,
		&m.FotoURI,
		&resultadosJSON,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(resultadosJSON) > 0 {
		if err := json.Unmarshal(resultadosJSON, &m.Resultados); err != nil {
			return nil, fmt.Errorf("unmarshal resultados: %w", err)
		}
	}

	return &m, nil
}
