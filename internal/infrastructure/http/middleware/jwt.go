package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"oficri/mesapartes/internal/core/usuario"
	"oficri/mesapartes/internal/infrastructure/config"
	httperrors "oficri/mesapartes/internal/infrastructure/http"
)

// ContextKeyToken exposes the verified JWT token via request context.
type ContextKeyToken struct{}

// JWTAuthenticator validates Authorization headers. Locally issued session
// tokens are verified with the HMAC secret; when a JWKS URI is configured,
// RS/ES tokens from the external issuer are accepted too.
type JWTAuthenticator struct {
	cfg        config.AuthSettings
	log        *slog.Logger
	jwks       keyfunc.Keyfunc
	cancel     context.CancelFunc
	bypassPath map[string]struct{}
}

func NewJWTAuthenticator(cfg config.AuthSettings, log *slog.Logger) (*JWTAuthenticator, error) {
	auth := &JWTAuthenticator{
		cfg:        cfg,
		log:        log,
		bypassPath: make(map[string]struct{}),
	}

	for _, path := range cfg.BypassPaths {
		if path != "" {
			auth.bypassPath[path] = struct{}{}
		}
	}

	if cfg.JWKSetURI == "" {
		return auth, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	override := keyfunc.Override{
		RefreshInterval: 6 * time.Hour,
		RefreshErrorHandlerFunc: func(url string) func(context.Context, error) {
			return func(c context.Context, err error) {
				log.Error("failed to refresh JWKS", "url", url, "error", err)
			}
		},
		HTTPTimeout: 10 * time.Second,
	}

	jwks, err := keyfunc.NewDefaultOverrideCtx(ctx, []string{cfg.JWKSetURI}, override)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("unable to load JWKS: %w", err)
	}
	auth.jwks = jwks
	auth.cancel = cancel

	return auth, nil
}

// Middleware enforces JWT validation on inbound requests. A 401 response
// signals the client to discard its stored session and re-authenticate.
func (a *JWTAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.shouldBypass(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		tokenString, err := extractBearerToken(r.Header.Get("Authorization"))
		if err != nil {
			httperrors.WriteError(w, http.StatusUnauthorized, "Error de Autenticación", []string{"Credenciales de acceso no válidas"}, a.log)
			return
		}

		token, err := a.parse(tokenString)
		if err != nil || !token.Valid {
			a.log.Warn("token validation failed", "error", err)
			httperrors.WriteError(w, http.StatusUnauthorized, "Error de Autenticación", []string{"Token inválido o expirado"}, a.log)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyToken{}, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *JWTAuthenticator) parse(tokenString string) (*jwt.Token, error) {
	if a.cfg.Secret != "" {
		token, err := jwt.Parse(tokenString,
			func(t *jwt.Token) (any, error) { return []byte(a.cfg.Secret), nil },
			jwt.WithLeeway(a.cfg.ClockSkew),
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		)
		if err == nil {
			return token, nil
		}
		if a.jwks == nil {
			return nil, err
		}
	}

	if a.jwks == nil {
		return nil, errors.New("no verification material configured")
	}

	return jwt.Parse(tokenString, a.jwks.Keyfunc,
		jwt.WithIssuer(a.cfg.IssuerURI),
		jwt.WithLeeway(a.cfg.ClockSkew),
		jwt.WithValidMethods([]string{
			jwt.SigningMethodRS256.Alg(),
			jwt.SigningMethodRS384.Alg(),
			jwt.SigningMethodRS512.Alg(),
			jwt.SigningMethodPS256.Alg(),
			jwt.SigningMethodES256.Alg(),
		}),
	)
}

// Close stops background JWKS refreshers.
func (a *JWTAuthenticator) Close() {
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *JWTAuthenticator) shouldBypass(path string) bool {
	_, ok := a.bypassPath[path]
	return ok
}

func extractBearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("missing Authorization header")
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid Authorization header format")
	}
	return parts[1], nil
}

// SesionDesdeContexto extracts the authenticated session claims placed in
// the context by the Middleware. ok is false for unauthenticated requests.
func SesionDesdeContexto(ctx context.Context) (cip string, rol usuario.Rol, seccion string, ok bool) {
	token, found := ctx.Value(ContextKeyToken{}).(*jwt.Token)
	if !found {
		return "", "", "", false
	}
	claims, found := token.Claims.(jwt.MapClaims)
	if !found {
		return "", "", "", false
	}

	cip, _ = claims["cip"].(string)
	rolStr, _ := claims["rol"].(string)
	seccion, _ = claims["seccion"].(string)
	return cip, usuario.Rol(rolStr), seccion, cip != ""
}

// Sesion is the full identity carried by a token.
type Sesion struct {
	CIP     string
	Nombre  string
	Rol     usuario.Rol
	Seccion string
}

// SesionCompleta extracts the full session identity, including the
// display name recorded on seguimientos.
func SesionCompleta(ctx context.Context) (Sesion, bool) {
	token, found := ctx.Value(ContextKeyToken{}).(*jwt.Token)
	if !found {
		return Sesion{}, false
	}
	claims, found := token.Claims.(jwt.MapClaims)
	if !found {
		return Sesion{}, false
	}

	var s Sesion
	s.CIP, _ = claims["cip"].(string)
	s.Nombre, _ = claims["nombre"].(string)
	rolStr, _ := claims["rol"].(string)
	s.Rol = usuario.Rol(rolStr)
	s.Seccion, _ = claims["seccion"].(string)
	return s, s.CIP != ""
}

// RequireRol guards a route subtree to the given roles. Requests with a
// valid token but the wrong rol get a 403; the client treats that the same
// as a 401 and drops its session.
func RequireRol(log *slog.Logger, roles ...usuario.Rol) func(http.Handler) http.Handler {
	permitidos := make(map[usuario.Rol]struct{}, len(roles))
	for _, rol := range roles {
		permitidos[rol] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, rol, _, ok := SesionDesdeContexto(r.Context())
			if !ok {
				httperrors.WriteError(w, http.StatusUnauthorized, "Error de Autenticación", []string{"Sesión no encontrada"}, log)
				return
			}
			if _, permitido := permitidos[rol]; !permitido {
				httperrors.WriteError(w, http.StatusForbidden, "Acceso Denegado", []string{"El rol de la sesión no tiene acceso a este recurso"}, log)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
