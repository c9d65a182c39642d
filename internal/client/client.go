package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

var (
	// ErrNoAutenticado indicates no stored session can serve the request.
	ErrNoAutenticado = errors.New("no hay una sesión activa")
	// ErrSesionExpirada indicates the server rejected the token. The
	// stored sessions have already been cleared when this is returned.
	ErrSesionExpirada = errors.New("la sesión ha expirado")
)

// ErrorAPI carries the error envelope returned by the API.
type ErrorAPI struct {
	StatusCode int
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
}

func (e *ErrorAPI) Error() string {
	return fmt.Sprintf("api respondió %d: %s", e.StatusCode, e.Message)
}

// Oficio mirrors the wire shape of a case as the dashboards consume it.
type Oficio struct {
	ID             int64    `json:"id"`
	Numero         string   `json:"numero"`
	Asunto         string   `json:"asunto"`
	Examinado      string   `json:"examinado"`
	Delito         string   `json:"delito"`
	UltimoEstado   string   `json:"ultimo_estado"`
	SeccionDestino string   `json:"seccion_destino"`
	PeritoAsignado string   `json:"perito_asignado,omitempty"`
	Prioridad      string   `json:"prioridad"`
	Clasificacion  string   `json:"clasificacion,omitempty"`
	Acciones       []string `json:"acciones,omitempty"`
}

// PaginaOficios is a page of cases. Responses that predate pagination
// arrive as a bare array and are normalized to a single page.
type PaginaOficios struct {
	Data  []Oficio `json:"data"`
	Page  int      `json:"page"`
	Pages int      `json:"pages"`
	Total int      `json:"total"`
}

// Config holds the knobs for building a Client.
type Config struct {
	BaseURL       string
	SessionFile   string
	Timeout       time.Duration
	MaxConcurrent int
	// OnSesionExpirada runs after a 401/403 wipes the stored sessions,
	// so a UI can redirect to its login screen.
	OnSesionExpirada func()
}

// Client talks to the mesa de partes API, attaching the stored bearer
// token and enforcing the single-session discipline on auth failures.
type Client struct {
	baseURL   string
	http      *http.Client
	store     *SessionStore
	limiter   *limitador
	onExpired func()
	log       *slog.Logger
}

// New builds a Client over the session file named in cfg.
func New(cfg Config, log *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL es requerido")
	}
	store, err := NewSessionStore(cfg.SessionFile)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxConc := cfg.MaxConcurrent
	if maxConc <= 0 {
		maxConc = 4
	}

	return &Client{
		baseURL:   cfg.BaseURL,
		http:      &http.Client{Timeout: timeout},
		store:     store,
		limiter:   newLimitador(maxConc),
		onExpired: cfg.OnSesionExpirada,
		log:       log,
	}, nil
}

// Sesiones exposes the underlying store, mainly so a CLI can inspect or
// clear the stored logins.
func (c *Client) Sesiones() *SessionStore {
	return c.store
}

type loginRespuesta struct {
	CIP            string `json:"cip"`
	NombreCompleto string `json:"nombre_completo"`
	Rol            string `json:"rol"`
	SeccionNombre  string `json:"seccion_nombre"`
	Token          string `json:"token"`
	ExpiresAt      int64  `json:"expires_at"`
}

// Login authenticates against the rol's endpoint and stores the session,
// displacing any session held by another rol.
func (c *Client) Login(ctx context.Context, rol Rol, cip, password string) (Sesion, error) {
	cuerpo := map[string]string{"cip": cip, "password": password}

	var resp loginRespuesta
	if err := c.do(ctx, http.MethodPost, "/api/auth/"+string(rol)+"/login", nil, cuerpo, &resp, false); err != nil {
		return Sesion{}, err
	}

	ses := Sesion{
		Token:          resp.Token,
		CIP:            resp.CIP,
		NombreCompleto: resp.NombreCompleto,
		Rol:            rol,
		SeccionNombre:  resp.SeccionNombre,
		ExpiresAt:      time.Unix(resp.ExpiresAt, 0),
	}
	if err := c.store.Set(ses); err != nil {
		return Sesion{}, err
	}
	return ses, nil
}

// FiltroOficios narrows a case listing.
type FiltroOficios struct {
	Busqueda string
	Estado   string
	Seccion  string
	Funcion  string
	Page     int
	Size     int
}

// ListarOficios fetches a page of cases. Legacy bare-array responses are
// wrapped into a single page so callers always see pagination fields.
func (c *Client) ListarOficios(ctx context.Context, filtro FiltroOficios) (PaginaOficios, error) {
	q := url.Values{}
	if filtro.Busqueda != "" {
		q.Set("busqueda", filtro.Busqueda)
	}
	if filtro.Estado != "" {
		q.Set("estado", filtro.Estado)
	}
	if filtro.Seccion != "" {
		q.Set("seccion", filtro.Seccion)
	}
	if filtro.Funcion != "" {
		q.Set("funcion", filtro.Funcion)
	}
	if filtro.Page > 0 {
		q.Set("page", strconv.Itoa(filtro.Page))
	}
	if filtro.Size > 0 {
		q.Set("size", strconv.Itoa(filtro.Size))
	}

	var crudo json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/oficios", q, nil, &crudo, true); err != nil {
		return PaginaOficios{}, err
	}
	return normalizarPagina(crudo)
}

// Detalle fetches one case with its tracking history.
func (c *Client) Detalle(ctx context.Context, id int64) (json.RawMessage, error) {
	var crudo json.RawMessage
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/oficios/%d", id), nil, nil, &crudo, true)
	return crudo, err
}

// AplicarPaso posts one workflow step (derivar, finalizar, extraccion,
// analisis...) with an arbitrary JSON body and returns the raw response.
func (c *Client) AplicarPaso(ctx context.Context, ruta string, cuerpo any) (json.RawMessage, error) {
	var crudo json.RawMessage
	err := c.do(ctx, http.MethodPost, ruta, nil, cuerpo, &crudo, true)
	return crudo, err
}

// normalizarPagina accepts either the paginated envelope or a bare array
// and always returns a populated page.
func normalizarPagina(crudo json.RawMessage) (PaginaOficios, error) {
	recortado := bytes.TrimLeft(crudo, " \t\r\n")
	if len(recortado) > 0 && recortado[0] == '[' {
		var data []Oficio
		if err := json.Unmarshal(crudo, &data); err != nil {
			return PaginaOficios{}, fmt.Errorf("decodificar listado: %w", err)
		}
		return PaginaOficios{Data: data, Page: 1, Pages: 1, Total: len(data)}, nil
	}

	var pagina PaginaOficios
	if err := json.Unmarshal(crudo, &pagina); err != nil {
		return PaginaOficios{}, fmt.Errorf("decodificar listado: %w", err)
	}
	if pagina.Page == 0 {
		pagina.Page = 1
	}
	if pagina.Pages == 0 {
		pagina.Pages = 1
	}
	if pagina.Total == 0 {
		pagina.Total = len(pagina.Data)
	}
	return pagina, nil
}

func (c *Client) do(ctx context.Context, metodo, ruta string, query url.Values, cuerpo, destino any, auth bool) error {
	if err := c.limiter.adquirir(ctx); err != nil {
		return err
	}
	defer c.limiter.liberar()

	var lector io.Reader
	if cuerpo != nil {
		data, err := json.Marshal(cuerpo)
		if err != nil {
			return fmt.Errorf("codificar cuerpo: %w", err)
		}
		lector = bytes.NewReader(data)
	}

	destinoURL := c.baseURL + ruta
	if len(query) > 0 {
		destinoURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, metodo, destinoURL, lector)
	if err != nil {
		return fmt.Errorf("crear request: %w", err)
	}
	if cuerpo != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		token, rol, ok := c.store.Token()
		if !ok {
			return ErrNoAutenticado
		}
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
		c.log.Debug("request autenticado", "metodo", metodo, "ruta", ruta, "rol", rol)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ejecutar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if auth {
			if err := c.store.ClearAll(); err != nil {
				c.log.Warn("no se pudo limpiar sesiones", "error", err)
			}
			if c.onExpired != nil {
				c.onExpired()
			}
			return ErrSesionExpirada
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("leer respuesta: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &ErrorAPI{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if destino != nil && len(data) > 0 {
		if err := json.Unmarshal(data, destino); err != nil {
			return fmt.Errorf("decodificar respuesta: %w", err)
		}
	}
	return nil
}
