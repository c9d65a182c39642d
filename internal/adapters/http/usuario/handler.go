package usuario

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	appusuario "oficri/mesapartes/internal/application/usuario"
	"oficri/mesapartes/internal/core/usuario"
	httperrors "oficri/mesapartes/internal/infrastructure/http"
	"oficri/mesapartes/internal/infrastructure/http/middleware"
)

// Handler bridges HTTP traffic with the usuario application service.
// Login is mounted outside the auth middleware; the account-management
// routes sit behind it and are admin-gated by the router.
type Handler struct {
	service *appusuario.Service
	log     *slog.Logger
}

// NewHandler creates a new usuario HTTP handler.
func NewHandler(service *appusuario.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Login handles POST /api/auth/{rol}/login requests.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rol, ok := rolFromURL(r)
	if !ok {
		httperrors.WriteError(w, http.StatusNotFound, "Rol no reconocido", nil, h.log)
		return
	}

	var reqBody appusuario.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es válido"}, h.log)
		return
	}

	response, err := h.service.Login(r.Context(), rol, reqBody)
	if err != nil {
		if errors.Is(err, usuario.ErrCredencialesInvalidas) {
			httperrors.WriteError(w, http.StatusUnauthorized, "Credenciales inválidas", nil, h.log)
			return
		}
		h.handleError(w, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, response, h.log)
}

// Verify handles GET /api/auth/verify requests. Reaching it at all means
// the token passed the middleware; it echoes the session identity back.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	cip, rol, seccion, ok := middleware.SesionDesdeContexto(r.Context())
	if !ok {
		httperrors.WriteError(w, http.StatusUnauthorized, "Sesión no válida", nil, h.log)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, map[string]any{
		"valid":   true,
		"cip":     cip,
		"rol":     rol,
		"seccion": seccion,
	}, h.log)
}

// Info handles GET /api/auth/info requests, returning the authenticated
// user's full profile.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	cip, rol, _, ok := middleware.SesionDesdeContexto(r.Context())
	if !ok {
		httperrors.WriteError(w, http.StatusUnauthorized, "Sesión no válida", nil, h.log)
		return
	}

	u, err := h.service.Info(r.Context(), cip, usuario.Rol(rol))
	if err != nil {
		h.handleError(w, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, u, h.log)
}

// List handles GET /api/{rol plural} listing requests.
func (h *Handler) List(rol usuario.Rol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("size"))
		busqueda := strings.TrimSpace(r.URL.Query().Get("busqueda"))

		usuarios, total, err := h.service.List(r.Context(), rol, page, size, busqueda)
		if err != nil {
			h.handleError(w, err)
			return
		}

		if size < 1 {
			size = 10
		}
		pages := (total + size - 1) / size
		if pages < 1 {
			pages = 1
		}

		httperrors.WriteJSON(w, http.StatusOK, map[string]any{
			"data":  usuarios,
			"total": total,
			"pages": pages,
		}, h.log)
	}
}

// Register handles POST registration requests for a rol.
func (h *Handler) Register(rol usuario.Rol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reqBody appusuario.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es válido"}, h.log)
			return
		}

		u, err := h.service.Register(r.Context(), rol, reqBody)
		if err != nil {
			h.handleError(w, err)
			return
		}

		httperrors.WriteJSON(w, http.StatusCreated, u, h.log)
	}
}

// Update handles PUT requests on a rol's account.
func (h *Handler) Update(rol usuario.Rol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cip := chi.URLParam(r, "cip")

		var reqBody appusuario.UpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es válido"}, h.log)
			return
		}

		if err := h.service.Update(r.Context(), cip, rol, reqBody); err != nil {
			h.handleError(w, err)
			return
		}

		httperrors.WriteJSON(w, http.StatusOK, map[string]any{"success": true}, h.log)
	}
}

// Deactivate handles DELETE requests on a rol's account.
func (h *Handler) Deactivate(rol usuario.Rol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cip := chi.URLParam(r, "cip")

		if err := h.service.Deactivate(r.Context(), cip, rol); err != nil {
			h.handleError(w, err)
			return
		}

		httperrors.WriteJSON(w, http.StatusOK, map[string]any{"success": true}, h.log)
	}
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usuario.ErrNoEncontrado):
		httperrors.WriteError(w, http.StatusNotFound, "Usuario no encontrado", []string{err.Error()}, h.log)
	case errors.Is(err, usuario.ErrYaExiste):
		httperrors.WriteError(w, http.StatusConflict, "Usuario duplicado", []string{err.Error()}, h.log)
	case errors.Is(err, usuario.ErrValidacion):
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{err.Error()}, h.log)
	default:
		httperrors.WriteError(w, http.StatusInternalServerError, "Error Interno del Servidor", []string{"Ha ocurrido un error interno"}, h.log)
	}
}

func rolFromURL(r *http.Request) (usuario.Rol, bool) {
	switch chi.URLParam(r, "rol") {
	case "admin":
		return usuario.RolAdmin, true
	case "perito", "peritos":
		return usuario.RolPerito, true
	case "mesadepartes":
		return usuario.RolMesaDePartes, true
	}
	return "", false
}
