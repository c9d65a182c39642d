package muestra

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoEncontrada is returned when the requested muestra does not exist.
	ErrNoEncontrada = errors.New("muestra no encontrada")

	// ErrValidacion wraps field-level validation failures so handlers can
	// map them with errors.Is instead of matching message text.
	ErrValidacion = errors.New("datos de la muestra inválidos")
)

// Muestra is a sample taken from an examinee during the extraction step.
// Resultados holds free-form analysis outcomes keyed by test name, e.g.
// drug-panel booleans or an ethanol concentration; it is written during
// the per-section analysis steps and read during consolidation.
type Muestra struct {
	ID          string            `json:"id_muestra"`
	OficioID    int64             `json:"id_oficio"`
	TipoMuestra string            `json:"tipo_muestra"`
	Descripcion string            `json:"descripcion"`
	Cantidad    int               `json:"cantidad"`
	FotoURI     *string           `json:"foto_uri"`
	Resultados  map[string]string `json:"resultados"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Repository defines the persistence operations for muestras.
type Repository interface {
	// Create persists a new muestra and returns its ID.
	Create(ctx context.Context, m Muestra) (string, error)

	// Update replaces descriptive fields of an existing muestra.
	Update(ctx context.Context, m Muestra) error

	// MergeResultados merges the given result entries into the muestra's
	// result map, keeping keys not present in the update.
	MergeResultados(ctx context.Context, id string, resultados map[string]string) error

	// FindByOficio returns all muestras of an oficio in creation order.
	FindByOficio(ctx context.Context, oficioID int64) ([]Muestra, error)

	// FindByID retrieves a muestra by ID. Returns nil if not found.
	FindByID(ctx context.Context, id string) (*Muestra, error)
}
