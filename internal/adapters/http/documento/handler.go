package documento

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	appdocumento "oficri/mesapartes/internal/application/documento"
	"oficri/mesapartes/internal/core/oficio"
	httperrors "oficri/mesapartes/internal/infrastructure/http"
)

// Handler serves rendered case documents. Single documents stream as
// application/pdf; batches come back as JSON with base64 payloads so one
// response can carry per-case failures.
type Handler struct {
	service *appdocumento.Service
	log     *slog.Logger
}

// NewHandler creates a new documento HTTP handler.
func NewHandler(service *appdocumento.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Cargo handles GET /api/documentos/cargo/{id} requests.
func (h *Handler) Cargo(w http.ResponseWriter, r *http.Request) {
	h.servirPDF(w, r, "cargo", h.service.GenerarCargo)
}

// Informe handles GET /api/documentos/informe/{id} requests.
func (h *Handler) Informe(w http.ResponseWriter, r *http.Request) {
	h.servirPDF(w, r, "informe", h.service.GenerarInforme)
}

// Lote handles POST /api/documentos/informes/lote requests.
func (h *Handler) Lote(w http.ResponseWriter, r *http.Request) {
	var reqBody struct {
		Oficios []int64 `json:"oficios"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es válido"}, h.log)
		return
	}

	results, err := h.service.GenerarLote(r.Context(), reqBody.Oficios)
	if err != nil {
		h.handleError(w, err)
		return
	}

	type loteItem struct {
		OficioID int64  `json:"id_oficio"`
		PDF      string `json:"pdf,omitempty"`
		Error    string `json:"error,omitempty"`
	}

	items := make([]loteItem, 0, len(results))
	var fallos int
	for _, res := range results {
		item := loteItem{OficioID: res.OficioID}
		if res.Failed {
			fallos++
			item.Error = res.Error.Error()
		} else {
			item.PDF = base64.StdEncoding.EncodeToString(res.PDF)
		}
		items = append(items, item)
	}

	httperrors.WriteJSON(w, http.StatusOK, map[string]any{
		"documentos": items,
		"total":      len(items),
		"fallidos":   fallos,
	}, h.log)
}

type renderFunc func(ctx context.Context, id int64) ([]byte, error)

func (h *Handler) servirPDF(w http.ResponseWriter, r *http.Request, nombre string, fn renderFunc) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"id de oficio no válido"}, h.log)
		return
	}

	pdf, err := fn(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-%d.pdf", nombre, id))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		h.log.Error("failed to stream pdf", "error", err)
	}
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, oficio.ErrNoEncontrado):
		httperrors.WriteError(w, http.StatusNotFound, "Oficio no encontrado", []string{err.Error()}, h.log)
	case strings.Contains(err.Error(), "excede el máximo"):
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{err.Error()}, h.log)
	default:
		httperrors.WriteError(w, http.StatusInternalServerError, "Error Interno del Servidor", []string{"Ha ocurrido un error interno"}, h.log)
	}
}
