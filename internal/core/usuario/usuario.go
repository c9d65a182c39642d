package usuario

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoEncontrado is returned when the requested usuario does not exist.
	ErrNoEncontrado = errors.New("usuario no encontrado")

	// ErrYaExiste is returned when registering an already-taken CIP+rol.
	ErrYaExiste = errors.New("el usuario ya existe")

	// ErrCredencialesInvalidas is returned on bad CIP/password pairs. The
	// same error covers unknown users so login does not leak existence.
	ErrCredencialesInvalidas = errors.New("credenciales inválidas")

	// ErrValidacion wraps field-level validation failures so handlers can
	// map them with errors.Is instead of matching message text.
	ErrValidacion = errors.New("datos de usuario inválidos")
)

// Rol identifies the dashboard a user belongs to. Only one rol session is
// live at a time per the single-session design.
type Rol string

const (
	RolAdmin        Rol = "admin"
	RolPerito       Rol = "perito"
	RolMesaDePartes Rol = "mesadepartes"
)

// Usuario is a system user identified by CIP (national police ID).
// SeccionNombre is set only for peritos and gates which workflow actions
// they see.
type Usuario struct {
	CIP            string     `json:"cip"`
	NombreCompleto string     `json:"nombre_completo"`
	Rol            Rol        `json:"rol"`
	SeccionNombre  *string    `json:"seccion_nombre"`
	GradoNombre    *string    `json:"grado_nombre"`
	TurnoNombre    *string    `json:"turno_nombre"`
	Correo         *string    `json:"correo"`
	PasswordHash   string     `json:"-"`
	Activo         bool       `json:"activo"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"-"`
}

// Repository defines the persistence operations for usuarios.
type Repository interface {
	// Create persists a new usuario.
	Create(ctx context.Context, u Usuario) error

	// Update replaces the mutable fields of an existing usuario.
	Update(ctx context.Context, u Usuario) error

	// FindByCIP retrieves a usuario by CIP and rol. Returns nil if not found.
	FindByCIP(ctx context.Context, cip string, rol Rol) (*Usuario, error)

	// List retrieves usuarios of a rol with pagination and search.
	// Returns the page and the total row count.
	List(ctx context.Context, rol Rol, page, size int, busqueda string) ([]Usuario, int, error)

	// Deactivate soft-deletes a usuario.
	Deactivate(ctx context.Context, cip string, rol Rol) error
}
