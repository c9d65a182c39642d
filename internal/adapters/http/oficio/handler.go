package oficio

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	appoficio "oficri/mesapartes/internal/application/oficio"
	"oficri/mesapartes/internal/core/caso"
	"oficri/mesapartes/internal/core/oficio"
	httperrors "oficri/mesapartes/internal/infrastructure/http"
	"oficri/mesapartes/internal/infrastructure/http/middleware"
)

// Handler bridges HTTP traffic with the oficio application service.
type Handler struct {
	service *appoficio.Service
	log     *slog.Logger
}

// NewHandler creates a new oficio HTTP handler.
func NewHandler(service *appoficio.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Create handles POST /api/oficios requests.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorDe(r)
	if !ok {
		httperrors.WriteError(w, http.StatusUnauthorized, "Sesión no válida", nil, h.log)
		return
	}

	var reqBody appoficio.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es válido"}, h.log)
		return
	}

	of, err := h.service.Create(r.Context(), actor, reqBody)
	if err != nil {
		h.handleError(w, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusCreated, of, h.log)
}

// CheckNumero handles GET /api/oficios/check/{numero} requests, letting
// the intake form reject an already-taken document number before submit.
func (h *Handler) CheckNumero(w http.ResponseWriter, r *http.Request) {
	numero := chi.URLParam(r, "numero")
	if unescaped, err := url.PathUnescape(numero); err == nil {
		numero = unescaped
	}

	exists, err := h.service.ExisteNumero(r.Context(), numero)
	if err != nil {
		h.handleError(w, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, map[string]any{
		"numero_oficio": numero,
		"exists":        exists,
	}, h.log)
}

// List handles GET /api/oficios requests. The seccion/funcion query
// parameters drive which actions each row carries for the caller.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))

	seccion := q.Get("seccion")
	if seccion == "" {
		_, _, tokenSeccion, _ := middleware.SesionDesdeContexto(r.Context())
		seccion = tokenSeccion
	}

	resp, err := h.service.List(r.Context(), appoficio.ListRequest{
		Page: page,
		Size: size,
		Filtro: oficio.Filtro{
			Busqueda:       strings.TrimSpace(q.Get("busqueda")),
			Estado:         q.Get("estado"),
			PeritoCIP:      q.Get("perito"),
			SeccionDestino: q.Get("seccion_destino"),
			Prioridad:      q.Get("prioridad"),
		},
		Seccion: seccion,
		Funcion: q.Get("funcion"),
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, resp, h.log)
}

// Detalle handles GET /api/oficios/{id} requests.
func (h *Handler) Detalle(w http.ResponseWriter, r *http.Request) {
	id, ok := idDe(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	seccion := q.Get("seccion")
	if seccion == "" {
		_, _, tokenSeccion, _ := middleware.SesionDesdeContexto(r.Context())
		seccion = tokenSeccion
	}

	resp, err := h.service.Detalle(r.Context(), id, seccion, q.Get("funcion"))
	if err != nil {
		h.handleError(w, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, resp, h.log)
}

// Update handles PUT /api/oficios/{id} requests.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idDe(w, r)
	if !ok {
		return
	}

	var reqBody appoficio.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es válido"}, h.log)
		return
	}

	of, err := h.service.Update(r.Context(), id, reqBody)
	if err != nil {
		h.handleError(w, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, of, h.log)
}

// AsignarPerito handles POST /api/oficios/{id}/asignar-perito requests.
func (h *Handler) AsignarPerito(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorDe(r)
	if !ok {
		httperrors.WriteError(w, http.StatusUnauthorized, "Sesión no válida", nil, h.log)
		return
	}
	id, ok := idDe(w, r)
	if !ok {
		return
	}

	var reqBody struct {
		PeritoCIP    string `json:"perito_cip"`
		PeritoNombre string `json:"perito_nombre"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es válido"}, h.log)
		return
	}

	if err := h.service.AsignarPerito(r.Context(), actor, id, reqBody.PeritoCIP, reqBody.PeritoNombre); err != nil {
		h.handleError(w, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, map[string]any{"success": true}, h.log)
}

// Derivar handles POST /api/oficios/{id}/derivar requests.
func (h *Handler) Derivar(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorDe(r)
	if !ok {
		httperrors.WriteError(w, http.StatusUnauthorized, "Sesión no válida", nil, h.log)
		return
	}
	id, ok := idDe(w, r)
	if !ok {
		return
	}

	var reqBody appoficio.DerivarRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es válido"}, h.log)
		return
	}

	if err := h.service.Derivar(r.Context(), actor, id, reqBody); err != nil {
		h.handleError(w, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, map[string]any{"success": true}, h.log)
}

// Finalizar handles POST /api/oficios/{id}/finalizar requests.
func (h *Handler) Finalizar(w http.ResponseWriter, r *http.Request) {
	h.evento(w, r, h.service.Finalizar)
}

// Archivar handles POST /api/oficios/{id}/archivar requests.
func (h *Handler) Archivar(w http.ResponseWriter, r *http.Request) {
	h.evento(w, r, h.service.Archivar)
}

// Seguimientos handles GET /api/oficios/{id}/seguimientos requests.
func (h *Handler) Seguimientos(w http.ResponseWriter, r *http.Request) {
	id, ok := idDe(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Detalle(r.Context(), id, "", "")
	if err != nil {
		h.handleError(w, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, resp.Seguimientos, h.log)
}

type eventoFunc func(ctx context.Context, actor appoficio.Actor, id int64, observaciones *string) error

func (h *Handler) evento(w http.ResponseWriter, r *http.Request, fn eventoFunc) {
	actor, ok := actorDe(r)
	if !ok {
		httperrors.WriteError(w, http.StatusUnauthorized, "Sesión no válida", nil, h.log)
		return
	}
	id, ok := idDe(w, r)
	if !ok {
		return
	}

	var reqBody struct {
		Observaciones *string `json:"observaciones"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&reqBody)
	}

	if err := fn(r.Context(), actor, id, reqBody.Observaciones); err != nil {
		h.handleError(w, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, map[string]any{"success": true}, h.log)
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, oficio.ErrNoEncontrado):
		httperrors.WriteError(w, http.StatusNotFound, "Oficio no encontrado", []string{err.Error()}, h.log)
	case errors.Is(err, oficio.ErrNumeroDuplicado):
		httperrors.WriteError(w, http.StatusConflict, "Número de oficio duplicado", []string{err.Error()}, h.log)
	case errors.Is(err, caso.ErrTransicionInvalida):
		httperrors.WriteError(w, http.StatusConflict, "Transición no permitida", []string{err.Error()}, h.log)
	case errors.Is(err, oficio.ErrValidacion):
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{err.Error()}, h.log)
	default:
		httperrors.WriteError(w, http.StatusInternalServerError, "Error Interno del Servidor", []string{"Ha ocurrido un error interno"}, h.log)
	}
}

func actorDe(r *http.Request) (appoficio.Actor, bool) {
	s, ok := middleware.SesionCompleta(r.Context())
	if !ok {
		return appoficio.Actor{}, false
	}
	return appoficio.Actor{
		CIP:     s.CIP,
		Nombre:  s.Nombre,
		Rol:     string(s.Rol),
		Seccion: s.Seccion,
	}, true
}

func idDe(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"id de oficio no válido"}, nil)
		return 0, false
	}
	return id, true
}
