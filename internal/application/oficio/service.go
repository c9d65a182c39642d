package oficio

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"oficri/mesapartes/internal/core/caso"
	"oficri/mesapartes/internal/core/oficio"
)

// Notificador delivers out-of-band notices about case milestones. The
// SMTP adapter implements it; a nil notificador disables delivery.
type Notificador interface {
	NotificarListoParaRecojo(ctx context.Context, of oficio.Oficio) error
}

// Actor identifies the authenticated user applying a workflow event,
// taken from the token claims.
type Actor struct {
	CIP     string
	Nombre  string
	Rol     string
	Seccion string
}

// Service orchestrates the oficio lifecycle. Every state change is an
// event validated by caso.Transicion and recorded as a seguimiento; the
// oficio's ultimo_estado is never written directly.
type Service struct {
	repo        oficio.Repository
	notificador Notificador
	log         *slog.Logger
}

// NewService creates a new oficio service. notificador may be nil.
func NewService(repo oficio.Repository, notificador Notificador, log *slog.Logger) *Service {
	return &Service{repo: repo, notificador: notificador, log: log}
}

// CreateRequest carries the reception form fields for a new oficio.
type CreateRequest struct {
	NumeroOficio         string    `json:"numero_oficio"`
	Asunto               string    `json:"asunto"`
	ExaminadoIncriminado string    `json:"examinado_incriminado"`
	Delito               string    `json:"delito"`
	TiposDeExamen        []string  `json:"tipos_de_examen"`
	NombrePrioridad      string    `json:"nombre_prioridad"`
	Observaciones        *string   `json:"observaciones"`
	FechaRecepcion       time.Time `json:"fecha_recepcion"`
}

// UpdateRequest carries the editable fields of an oficio.
type UpdateRequest struct {
	Asunto               string   `json:"asunto"`
	ExaminadoIncriminado string   `json:"examinado_incriminado"`
	Delito               string   `json:"delito"`
	TiposDeExamen        []string `json:"tipos_de_examen"`
	NombrePrioridad      string   `json:"nombre_prioridad"`
	Observaciones        *string  `json:"observaciones"`
}

// ListRequest carries the pagination, filter and viewer parameters of a
// case listing.
type ListRequest struct {
	Page    int
	Size    int
	Filtro  oficio.Filtro
	Seccion string
	Funcion string
}

// CasoItem is one case in a listing, annotated with its display
// classification and the actions available to the viewer.
type CasoItem struct {
	oficio.Oficio
	Clasificacion caso.Clasificacion `json:"clasificacion"`
	Acciones      []caso.Accion      `json:"acciones"`
}

// ListResponse is a page of annotated cases.
type ListResponse struct {
	Data  []CasoItem `json:"data"`
	Page  int        `json:"page"`
	Pages int        `json:"pages"`
	Total int        `json:"total"`
}

// DetalleResponse is a case with its full tracking history.
type DetalleResponse struct {
	CasoItem
	Seguimientos []oficio.Seguimiento `json:"seguimientos"`
}

// DerivarRequest names the destination section of a derivation.
type DerivarRequest struct {
	SeccionDestino string  `json:"seccion_destino"`
	Observaciones  *string `json:"observaciones"`
}

// ExisteNumero reports whether a document number is already taken, so the
// intake form can reject duplicates before submitting.
func (s *Service) ExisteNumero(ctx context.Context, numero string) (bool, error) {
	numero = strings.TrimSpace(numero)
	if numero == "" {
		return false, fmt.Errorf("%w: numero_oficio es requerido", oficio.ErrValidacion)
	}

	exists, err := s.repo.ExistsNumero(ctx, numero)
	if err != nil {
		return false, fmt.Errorf("check numero_oficio: %w", err)
	}
	return exists, nil
}

// Create registers a new oficio, rejecting duplicate document numbers, and
// records the initial CREACION seguimiento.
func (s *Service) Create(ctx context.Context, actor Actor, req CreateRequest) (*oficio.Oficio, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsNumero(ctx, req.NumeroOficio)
	if err != nil {
		return nil, fmt.Errorf("check numero_oficio: %w", err)
	}
	if exists {
		return nil, oficio.ErrNumeroDuplicado
	}

	if req.FechaRecepcion.IsZero() {
		req.FechaRecepcion = time.Now()
	}

	of := oficio.Oficio{
		NumeroOficio:         strings.TrimSpace(req.NumeroOficio),
		Asunto:               strings.TrimSpace(req.Asunto),
		ExaminadoIncriminado: strings.TrimSpace(req.ExaminadoIncriminado),
		Delito:               strings.TrimSpace(req.Delito),
		TiposDeExamen:        req.TiposDeExamen,
		NombrePrioridad:      req.NombrePrioridad,
		UltimoEstado:         string(caso.EstadoCreacion),
		Observaciones:        req.Observaciones,
		FechaRecepcion:       req.FechaRecepcion,
	}

	id, err := s.repo.Create(ctx, of)
	if err != nil {
		return nil, err
	}
	of.ID = id

	seg := s.nuevoSeguimiento(actor, id, "", caso.EstadoCreacion, req.Observaciones)
	if err := s.repo.AppendSeguimiento(ctx, seg); err != nil {
		return nil, fmt.Errorf("record creación: %w", err)
	}

	s.log.InfoContext(ctx, "oficio creado",
		slog.Int64("id_oficio", id),
		slog.String("numero_oficio", of.NumeroOficio))

	return &of, nil
}

// Update edits the descriptive fields of an oficio. Workflow state is not
// touched here.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*oficio.Oficio, error) {
	of, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find oficio: %w", err)
	}
	if of == nil {
		return nil, oficio.ErrNoEncontrado
	}

	of.Asunto = strings.TrimSpace(req.Asunto)
	of.ExaminadoIncriminado = strings.TrimSpace(req.ExaminadoIncriminado)
	of.Delito = strings.TrimSpace(req.Delito)
	of.TiposDeExamen = req.TiposDeExamen
	of.NombrePrioridad = req.NombrePrioridad
	of.Observaciones = req.Observaciones

	if err := s.repo.Update(ctx, *of); err != nil {
		return nil, err
	}

	return of, nil
}

// List returns a page of cases annotated with the viewer's available
// actions. The page is always well-formed even when empty.
func (s *Service) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Size < 1 {
		req.Size = 10
	}

	oficios, total, err := s.repo.List(ctx, req.Page, req.Size, req.Filtro)
	if err != nil {
		return nil, fmt.Errorf("list oficios: %w", err)
	}

	seccion := caso.NormalizarSeccion(req.Seccion)
	funcion := caso.Funcion(req.Funcion)

	data := make([]CasoItem, 0, len(oficios))
	for _, of := range oficios {
		data = append(data, s.anotar(of, seccion, funcion))
	}

	pages := (total + req.Size - 1) / req.Size
	if pages < 1 {
		pages = 1
	}

	return &ListResponse{
		Data:  data,
		Page:  req.Page,
		Pages: pages,
		Total: total,
	}, nil
}

// Detalle returns one case with its tracking history and the viewer's
// available actions.
func (s *Service) Detalle(ctx context.Context, id int64, seccion, funcion string) (*DetalleResponse, error) {
	of, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find oficio: %w", err)
	}
	if of == nil {
		return nil, oficio.ErrNoEncontrado
	}

	seguimientos, err := s.repo.Seguimientos(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list seguimientos: %w", err)
	}

	item := s.anotar(*of, caso.NormalizarSeccion(seccion), caso.Funcion(funcion))
	return &DetalleResponse{CasoItem: item, Seguimientos: seguimientos}, nil
}

// AsignarPerito assigns a perito to the case and moves it to ASIGNADO.
func (s *Service) AsignarPerito(ctx context.Context, actor Actor, id int64, peritoCIP, peritoNombre string) error {
	if strings.TrimSpace(peritoCIP) == "" {
		return fmt.Errorf("%w: cip del perito es requerido", oficio.ErrValidacion)
	}

	of, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find oficio: %w", err)
	}
	if of == nil {
		return oficio.ErrNoEncontrado
	}

	nuevo, err := caso.Transicion(of.EstadoActual(), caso.EventoAsignarPerito,
		caso.SeccionDesconocida, caso.FuncionNinguna, caso.SeccionDesconocida)
	if err != nil {
		return err
	}

	of.PeritoAsignado = &peritoCIP
	if err := s.repo.Update(ctx, *of); err != nil {
		return fmt.Errorf("assign perito: %w", err)
	}

	obs := fmt.Sprintf("Perito asignado: %s", peritoNombre)
	seg := s.nuevoSeguimiento(actor, id, of.UltimoEstado, nuevo, &obs)
	return s.repo.AppendSeguimiento(ctx, seg)
}

// Derivar moves a finished-analysis case to another section.
func (s *Service) Derivar(ctx context.Context, actor Actor, id int64, req DerivarRequest) error {
	destino := caso.NormalizarSeccion(req.SeccionDestino)

	of, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find oficio: %w", err)
	}
	if of == nil {
		return oficio.ErrNoEncontrado
	}

	nuevo, err := caso.Transicion(of.EstadoActual(), caso.EventoDerivar,
		caso.NormalizarSeccion(actor.Seccion), caso.FuncionNinguna, destino)
	if err != nil {
		return err
	}

	destinoStr := string(destino)
	of.SeccionDestino = &destinoStr
	if err := s.repo.Update(ctx, *of); err != nil {
		return fmt.Errorf("set seccion_destino: %w", err)
	}

	seg := s.nuevoSeguimiento(actor, id, of.UltimoEstado, nuevo, req.Observaciones)
	if err := s.repo.AppendSeguimiento(ctx, seg); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "oficio derivado",
		slog.Int64("id_oficio", id),
		slog.String("destino", destinoStr))

	return nil
}

// Finalizar closes the consolidation and marks the case ready for pickup,
// notifying the requesting unit when a notificador is configured.
func (s *Service) Finalizar(ctx context.Context, actor Actor, id int64, observaciones *string) error {
	of, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find oficio: %w", err)
	}
	if of == nil {
		return oficio.ErrNoEncontrado
	}

	nuevo, err := caso.Transicion(of.EstadoActual(), caso.EventoFinalizarCaso,
		caso.NormalizarSeccion(actor.Seccion), caso.FuncionNinguna, caso.SeccionDesconocida)
	if err != nil {
		return err
	}

	seg := s.nuevoSeguimiento(actor, id, of.UltimoEstado, nuevo, observaciones)
	if err := s.repo.AppendSeguimiento(ctx, seg); err != nil {
		return err
	}

	if s.notificador != nil {
		of.UltimoEstado = string(nuevo)
		if err := s.notificador.NotificarListoParaRecojo(ctx, *of); err != nil {
			// Delivery failure must not roll back the state change.
			s.log.WarnContext(ctx, "notificación no enviada",
				slog.Int64("id_oficio", id),
				slog.String("error", err.Error()))
		}
	}

	return nil
}

// Archivar closes a picked-up case.
func (s *Service) Archivar(ctx context.Context, actor Actor, id int64, observaciones *string) error {
	of, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find oficio: %w", err)
	}
	if of == nil {
		return oficio.ErrNoEncontrado
	}

	nuevo, err := caso.Transicion(of.EstadoActual(), caso.EventoArchivar,
		caso.SeccionDesconocida, caso.FuncionNinguna, caso.SeccionDesconocida)
	if err != nil {
		return err
	}

	seg := s.nuevoSeguimiento(actor, id, of.UltimoEstado, nuevo, observaciones)
	return s.repo.AppendSeguimiento(ctx, seg)
}

// AplicarEvento validates and records an arbitrary workflow event. The
// procedure service uses it for the extraction/analysis/consolidation
// steps so every state write funnels through the same path.
func (s *Service) AplicarEvento(ctx context.Context, actor Actor, id int64, ev caso.Evento, funcion caso.Funcion, observaciones *string) (caso.Estado, error) {
	of, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("find oficio: %w", err)
	}
	if of == nil {
		return "", oficio.ErrNoEncontrado
	}

	nuevo, err := caso.Transicion(of.EstadoActual(), ev,
		caso.NormalizarSeccion(actor.Seccion), funcion, caso.SeccionDesconocida)
	if err != nil {
		return "", err
	}

	seg := s.nuevoSeguimiento(actor, id, of.UltimoEstado, nuevo, observaciones)
	if err := s.repo.AppendSeguimiento(ctx, seg); err != nil {
		return "", err
	}

	return nuevo, nil
}

func (s *Service) anotar(of oficio.Oficio, seccion caso.Seccion, funcion caso.Funcion) CasoItem {
	return CasoItem{
		Oficio:        of,
		Clasificacion: caso.ClasificarEstado(of.UltimoEstado),
		Acciones:      caso.AccionesDeLista(seccion, funcion, of.UltimoEstado),
	}
}

func (s *Service) nuevoSeguimiento(actor Actor, oficioID int64, anterior string, nuevo caso.Estado, obs *string) oficio.Seguimiento {
	return oficio.Seguimiento{
		ID:               uuid.NewString(),
		OficioID:         oficioID,
		EstadoAnterior:   anterior,
		EstadoNuevo:      string(nuevo),
		FechaSeguimiento: time.Now(),
		UsuarioAsignado:  actor.CIP,
		NombreUsuario:    actor.Nombre,
		Observaciones:    obs,
	}
}

func validateCreate(req CreateRequest) error {
	if strings.TrimSpace(req.NumeroOficio) == "" {
		return fmt.Errorf("%w: numero_oficio es requerido", oficio.ErrValidacion)
	}
	if strings.TrimSpace(req.Asunto) == "" {
		return fmt.Errorf("%w: asunto es requerido", oficio.ErrValidacion)
	}
	if strings.TrimSpace(req.ExaminadoIncriminado) == "" {
		return fmt.Errorf("%w: examinado_incriminado es requerido", oficio.ErrValidacion)
	}
	if len(req.TiposDeExamen) == 0 {
		return fmt.Errorf("%w: tipos_de_examen es requerido", oficio.ErrValidacion)
	}
	return nil
}
