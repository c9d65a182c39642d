package referencia

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoEncontrado is returned when the requested record does not exist.
	ErrNoEncontrado = errors.New("registro no encontrado")

	// ErrNombreDuplicado is returned when the nombre is taken in the catalog.
	ErrNombreDuplicado = errors.New("el nombre ya existe en el catálogo")

	// ErrTipoInvalido is returned for unknown catalog names.
	ErrTipoInvalido = errors.New("catálogo no reconocido")

	// ErrValidacion wraps field-level validation failures so handlers can
	// map them with errors.Is instead of matching message text.
	ErrValidacion = errors.New("datos del registro inválidos")
)

// Tipo names one of the CRUD-managed reference catalogs. The catalog name
// doubles as the table and cache key.
type Tipo string

const (
	TipoGrado        Tipo = "grados"
	TipoPrioridad    Tipo = "prioridades"
	TipoEspecialidad Tipo = "tipodepartamentos"
	TipoExamen       Tipo = "tiposdeexamen"
	TipoTurno        Tipo = "turnos"
)

// Tipos lists every catalog, in route order.
var Tipos = []Tipo{TipoGrado, TipoPrioridad, TipoEspecialidad, TipoExamen, TipoTurno}

// Valido reports whether t names a known catalog.
func (t Tipo) Valido() bool {
	for _, conocido := range Tipos {
		if t == conocido {
			return true
		}
	}
	return false
}

// Registro is a simple id+name(+description) reference record. All five
// catalogs (grados, prioridades, especialidades, tipos de examen, turnos)
// share this shape; there is no lifecycle beyond create/update/delete.
type Registro struct {
	ID          int64     `json:"id"`
	Nombre      string    `json:"nombre"`
	Descripcion *string   `json:"descripcion"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Repository defines the persistence operations shared by all catalogs.
type Repository interface {
	// Create persists a new record in the catalog and returns its ID.
	Create(ctx context.Context, tipo Tipo, r Registro) (int64, error)

	// Update replaces nombre/descripcion of an existing record.
	Update(ctx context.Context, tipo Tipo, r Registro) error

	// Delete removes a record from the catalog.
	Delete(ctx context.Context, tipo Tipo, id int64) error

	// FindByID retrieves a record by ID. Returns nil if not found.
	FindByID(ctx context.Context, tipo Tipo, id int64) (*Registro, error)

	// List returns the whole catalog ordered by nombre.
	List(ctx context.Context, tipo Tipo) ([]Registro, error)
}
