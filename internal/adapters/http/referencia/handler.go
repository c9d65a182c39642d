package referencia

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appreferencia "oficri/mesapartes/internal/application/referencia"
	"oficri/mesapartes/internal/core/referencia"
	httperrors "oficri/mesapartes/internal/infrastructure/http"
)

// Handler serves the five reference catalogs over a single route shape:
// /api/{catalogo} with the catalog name as a path parameter.
type Handler struct {
	service *appreferencia.Service
	log     *slog.Logger
}

// NewHandler creates a new reference-catalog HTTP handler.
func NewHandler(service *appreferencia.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Rutas mounts the catalog CRUD routes on a chi router.
func (h *Handler) Rutas(r chi.Router) {
	r.Get("/{catalogo}", h.List)
	r.Post("/{catalogo}", h.Create)
	r.Get("/{catalogo}/{id}", h.Get)
	r.Put("/{catalogo}/{id}", h.Update)
	r.Delete("/{catalogo}/{id}", h.Delete)
}

// List handles GET /api/{catalogo} requests.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tipo, ok := tipoDe(w, r, h.log)
	if !ok {
		return
	}

	registros, err := h.service.List(r.Context(), tipo)
	if err != nil {
		h.handleError(w, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, registros, h.log)
}

// Get handles GET /api/{catalogo}/{id} requests.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	tipo, ok := tipoDe(w, r, h.log)
	if !ok {
		return
	}
	id, ok := idDe(w, r, h.log)
	if !ok {
		return
	}

	reg, err := h.service.Get(r.Context(), tipo, id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, reg, h.log)
}

// Create handles POST /api/{catalogo} requests.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	tipo, ok := tipoDe(w, r, h.log)
	if !ok {
		return
	}

	var reqBody appreferencia.Request
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es válido"}, h.log)
		return
	}

	reg, err := h.service.Create(r.Context(), tipo, reqBody)
	if err != nil {
		h.handleError(w, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusCreated, reg, h.log)
}

// Update handles PUT /api/{catalogo}/{id} requests.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	tipo, ok := tipoDe(w, r, h.log)
	if !ok {
		return
	}
	id, ok := idDe(w, r, h.log)
	if !ok {
		return
	}

	var reqBody appreferencia.Request
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es válido"}, h.log)
		return
	}

	if err := h.service.Update(r.Context(), tipo, id, reqBody); err != nil {
		h.handleError(w, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, map[string]any{"success": true}, h.log)
}

// Delete handles DELETE /api/{catalogo}/{id} requests.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	tipo, ok := tipoDe(w, r, h.log)
	if !ok {
		return
	}
	id, ok := idDe(w, r, h.log)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), tipo, id); err != nil {
		h.handleError(w, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, map[string]any{"success": true}, h.log)
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, referencia.ErrTipoInvalido):
		httperrors.WriteError(w, http.StatusNotFound, "Catálogo no reconocido", []string{err.Error()}, h.log)
	case errors.Is(err, referencia.ErrNoEncontrado):
		httperrors.WriteError(w, http.StatusNotFound, "Registro no encontrado", []string{err.Error()}, h.log)
	case errors.Is(err, referencia.ErrNombreDuplicado):
		httperrors.WriteError(w, http.StatusConflict, "Nombre duplicado", []string{err.Error()}, h.log)
	case errors.Is(err, referencia.ErrValidacion):
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{err.Error()}, h.log)
	default:
		httperrors.WriteError(w, http.StatusInternalServerError, "Error Interno del Servidor", []string{"Ha ocurrido un error interno"}, h.log)
	}
}

func tipoDe(w http.ResponseWriter, r *http.Request, log *slog.Logger) (referencia.Tipo, bool) {
	tipo := referencia.Tipo(chi.URLParam(r, "catalogo"))
	if !tipo.Valido() {
		httperrors.WriteError(w, http.StatusNotFound, "Catálogo no reconocido", []string{string(tipo)}, log)
		return "", false
	}
	return tipo, true
}

func idDe(w http.ResponseWriter, r *http.Request, log *slog.Logger) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"id no válido"}, log)
		return 0, false
	}
	return id, true
}
