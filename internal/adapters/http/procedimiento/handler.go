package procedimiento

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"oficri/mesapartes/internal/application/imagen"
	appoficio "oficri/mesapartes/internal/application/oficio"
	appprocedimiento "oficri/mesapartes/internal/application/procedimiento"
	"oficri/mesapartes/internal/core/caso"
	"oficri/mesapartes/internal/core/muestra"
	"oficri/mesapartes/internal/core/oficio"
	httperrors "oficri/mesapartes/internal/infrastructure/http"
	"oficri/mesapartes/internal/infrastructure/http/middleware"
)

// Handler bridges HTTP traffic with the procedimiento application
// service. All routes here are perito-facing workflow steps.
type Handler struct {
	service *appprocedimiento.Service
	log     *slog.Logger
}

// NewHandler creates a new procedimiento HTTP handler.
func NewHandler(service *appprocedimiento.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Extraccion handles POST /api/procedimientos/{id}/extraccion requests.
func (h *Handler) Extraccion(w http.ResponseWriter, r *http.Request) {
	h.paso(w, r, func(ctx context.Context, actor appoficio.Actor, id int64, body []byte) (caso.Estado, error) {
		var reqBody appprocedimiento.ExtraccionRequest
		if err := json.Unmarshal(body, &reqBody); err != nil {
			return "", errBadBody
		}
		return h.service.RegistrarExtraccion(ctx, actor, id, reqBody)
	})
}

// Analisis handles POST /api/procedimientos/{id}/analisis requests.
func (h *Handler) Analisis(w http.ResponseWriter, r *http.Request) {
	h.paso(w, r, func(ctx context.Context, actor appoficio.Actor, id int64, body []byte) (caso.Estado, error) {
		var reqBody appprocedimiento.AnalisisRequest
		if err := json.Unmarshal(body, &reqBody); err != nil {
			return "", errBadBody
		}
		return h.service.RegistrarAnalisis(ctx, actor, id, reqBody)
	})
}

// AsignarConsolidacion handles POST /api/procedimientos/{id}/consolidacion/asignar.
func (h *Handler) AsignarConsolidacion(w http.ResponseWriter, r *http.Request) {
	h.paso(w, r, func(ctx context.Context, actor appoficio.Actor, id int64, body []byte) (caso.Estado, error) {
		var reqBody struct {
			Observaciones *string `json:"observaciones"`
		}
		_ = json.Unmarshal(body, &reqBody)
		return h.service.AsignarConsolidacion(ctx, actor, id, reqBody.Observaciones)
	})
}

// Consolidacion handles POST /api/procedimientos/{id}/consolidacion requests.
func (h *Handler) Consolidacion(w http.ResponseWriter, r *http.Request) {
	h.paso(w, r, func(ctx context.Context, actor appoficio.Actor, id int64, body []byte) (caso.Estado, error) {
		var reqBody appprocedimiento.ConsolidacionRequest
		if err := json.Unmarshal(body, &reqBody); err != nil {
			return "", errBadBody
		}
		return h.service.RegistrarConsolidacion(ctx, actor, id, reqBody)
	})
}

// Visto handles POST /api/procedimientos/{id}/visto requests.
func (h *Handler) Visto(w http.ResponseWriter, r *http.Request) {
	h.paso(w, r, func(ctx context.Context, actor appoficio.Actor, id int64, _ []byte) (caso.Estado, error) {
		return h.service.MarcarVisto(ctx, actor, id)
	})
}

// Muestras handles GET /api/procedimientos/{id}/muestras requests.
func (h *Handler) Muestras(w http.ResponseWriter, r *http.Request) {
	id, ok := idDe(w, r)
	if !ok {
		return
	}

	muestras, err := h.service.Muestras(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}
	if muestras == nil {
		muestras = []muestra.Muestra{}
	}

	httperrors.WriteJSON(w, http.StatusOK, muestras, h.log)
}

// EditarMuestra handles PUT /api/procedimientos/muestras/{idMuestra}.
func (h *Handler) EditarMuestra(w http.ResponseWriter, r *http.Request) {
	idMuestra := chi.URLParam(r, "idMuestra")
	if idMuestra == "" {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"id de muestra no válido"}, h.log)
		return
	}

	var reqBody appprocedimiento.MuestraInput
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es válido"}, h.log)
		return
	}

	if err := h.service.EditarMuestra(r.Context(), idMuestra, reqBody); err != nil {
		h.handleError(w, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, map[string]any{"success": true}, h.log)
}

var errBadBody = errors.New("el cuerpo de la petición no es válido")

type pasoFunc func(ctx context.Context, actor appoficio.Actor, id int64, body []byte) (caso.Estado, error)

func (h *Handler) paso(w http.ResponseWriter, r *http.Request, fn pasoFunc) {
	s, ok := middleware.SesionCompleta(r.Context())
	if !ok {
		httperrors.WriteError(w, http.StatusUnauthorized, "Sesión no válida", nil, h.log)
		return
	}
	id, ok := idDe(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{errBadBody.Error()}, h.log)
		return
	}
	if len(body) == 0 {
		body = []byte("{}")
	}

	actor := appoficio.Actor{CIP: s.CIP, Nombre: s.Nombre, Rol: string(s.Rol), Seccion: s.Seccion}
	estado, err := fn(r.Context(), actor, id, body)
	if err != nil {
		h.handleError(w, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"ultimo_estado": string(estado),
	}, h.log)
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBadBody):
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{errBadBody.Error()}, h.log)
	case errors.Is(err, oficio.ErrNoEncontrado), errors.Is(err, muestra.ErrNoEncontrada):
		httperrors.WriteError(w, http.StatusNotFound, "Recurso no encontrado", []string{err.Error()}, h.log)
	case errors.Is(err, caso.ErrTransicionInvalida):
		httperrors.WriteError(w, http.StatusConflict, "Transición no permitida", []string{err.Error()}, h.log)
	case errors.Is(err, imagen.ErrTipoNoSoportado), errors.Is(err, imagen.ErrImagenMuyGrande):
		httperrors.WriteError(w, http.StatusUnprocessableEntity, "Imagen rechazada", []string{err.Error()}, h.log)
	case errors.Is(err, muestra.ErrValidacion):
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{err.Error()}, h.log)
	default:
		httperrors.WriteError(w, http.StatusInternalServerError, "Error Interno del Servidor", []string{"Ha ocurrido un error interno"}, h.log)
	}
}

func idDe(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"id de oficio no válido"}, nil)
		return 0, false
	}
	return id, true
}
