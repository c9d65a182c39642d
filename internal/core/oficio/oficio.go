package oficio

import (
	"errors"
	"time"

	"oficri/mesapartes/internal/core/caso"
)

var (
	// ErrNoEncontrado is returned when the requested oficio does not exist.
	ErrNoEncontrado = errors.New("oficio no encontrado")

	// ErrNumeroDuplicado is returned when the document number is taken.
	ErrNumeroDuplicado = errors.New("el número de oficio ya existe")

	// ErrValidacion wraps field-level validation failures so handlers can
	// map them with errors.Is instead of matching message text.
	ErrValidacion = errors.New("datos del oficio inválidos")
)

// Oficio is the official case document tracked through the forensic
// workflow. The backend owns the record; UltimoEstado is derived from the
// latest tracking event and never written directly.
type Oficio struct {
	ID                   int64      `json:"id_oficio"`
	NumeroOficio         string     `json:"numero_oficio"`
	Asunto               string     `json:"asunto"`
	ExaminadoIncriminado string     `json:"examinado_incriminado"`
	Delito               string     `json:"delito"`
	TiposDeExamen        []string   `json:"tipos_de_examen"`
	NombrePrioridad      string     `json:"nombre_prioridad"`
	PeritoAsignado       *string    `json:"perito_asignado"`
	SeccionDestino       *string    `json:"seccion_destino"`
	UltimoEstado         string     `json:"ultimo_estado"`
	Observaciones        *string    `json:"observaciones"`
	FechaRecepcion       time.Time  `json:"fecha_recepcion"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	DeletedAt            *time.Time `json:"-"`
}

// EstadoActual resolves the case's current state from its last tracking
// event, falling back to SIN ESTADO for cases without history.
func (o *Oficio) EstadoActual() caso.Estado {
	if o.UltimoEstado == "" {
		return caso.EstadoSinEstado
	}
	return caso.Estado(o.UltimoEstado)
}

// Seguimiento is one immutable tracking event on an oficio. Events are
// ordered chronologically; the case's current state is the last event's
// EstadoNuevo.
type Seguimiento struct {
	ID               string    `json:"id_seguimiento"`
	OficioID         int64     `json:"id_oficio"`
	EstadoAnterior   string    `json:"estado_anterior"`
	EstadoNuevo      string    `json:"estado_nuevo"`
	FechaSeguimiento time.Time `json:"fecha_seguimiento"`
	UsuarioAsignado  string    `json:"usuario_asignado"`
	NombreUsuario    string    `json:"nombre_usuario"`
	Observaciones    *string   `json:"observaciones"`
}

// Filtro restricts oficio listings. Zero values mean "no restriction".
type Filtro struct {
	Busqueda       string
	Estado         string
	PeritoCIP      string
	SeccionDestino string
	Prioridad      string
}
