package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"oficri/mesapartes/internal/core/usuario"
	"oficri/mesapartes/internal/infrastructure/config"
	"oficri/mesapartes/internal/testutil"
)

const testSecret = "clave-de-prueba-para-tests"

func testAuthSettings() config.AuthSettings {
	return config.AuthSettings{
		Secret:    testSecret,
		TokenTTL:  time.Hour,
		ClockSkew: time.Minute,
	}
}

func firmarToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return token
}

func TestMiddleware_MissingHeader(t *testing.T) {
	auth, err := NewJWTAuthenticator(testAuthSettings(), testutil.NewTestLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without a token")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/oficios", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}

func TestMiddleware_ValidToken(t *testing.T) {
	auth, _ := NewJWTAuthenticator(testAuthSettings(), testutil.NewTestLogger())

	token := firmarToken(t, jwt.MapClaims{
		"cip":     "12345678",
		"nombre":  "Ana Torres",
		"rol":     "perito",
		"seccion": "Toxicología y Química Forense",
	})

	var ses Sesion
	var ok bool
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ses, ok = SesionCompleta(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := testutil.CreateRequest(http.MethodGet, "/api/oficios", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !ok {
		t.Fatal("expected session in context")
	}
	if ses.CIP != "12345678" || ses.Rol != usuario.RolPerito || ses.Nombre != "Ana Torres" {
		t.Errorf("session = %+v", ses)
	}
}

func TestMiddleware_ExpiredToken(t *testing.T) {
	auth, _ := NewJWTAuthenticator(testAuthSettings(), testutil.NewTestLogger())

	token := firmarToken(t, jwt.MapClaims{
		"cip": "12345678",
		"rol": "admin",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run with an expired token")
	}))

	req := testutil.CreateRequest(http.MethodGet, "/api/oficios", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
	response := testutil.ReadErrorResponse(t, w)
	if response["message"] != "Error de Autenticación" {
		t.Errorf("message = %v", response["message"])
	}
}

func TestMiddleware_WrongSigningMethod(t *testing.T) {
	auth, _ := NewJWTAuthenticator(testAuthSettings(), testutil.NewTestLogger())

	// alg none is always rejected regardless of claims.
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"cip": "12345678",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run with an unsigned token")
	}))

	req := testutil.CreateRequest(http.MethodGet, "/api/oficios", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}

func TestMiddleware_BypassPath(t *testing.T) {
	cfg := testAuthSettings()
	cfg.BypassPaths = []string{"/health"}
	auth, _ := NewJWTAuthenticator(cfg, testutil.NewTestLogger())

	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200 on bypass path, got %d", w.Code)
	}
}

func TestRequireRol(t *testing.T) {
	auth, _ := NewJWTAuthenticator(testAuthSettings(), testutil.NewTestLogger())

	tests := []struct {
		name       string
		rol        string
		permitidos []usuario.Rol
		wantStatus int
	}{
		{
			name:       "allowed rol",
			rol:        "mesadepartes",
			permitidos: []usuario.Rol{usuario.RolMesaDePartes, usuario.RolAdmin},
			wantStatus: http.StatusOK,
		},
		{
			name:       "forbidden rol",
			rol:        "perito",
			permitidos: []usuario.Rol{usuario.RolMesaDePartes, usuario.RolAdmin},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := firmarToken(t, jwt.MapClaims{"cip": "12345678", "rol": tt.rol})

			handler := auth.Middleware(
				RequireRol(testutil.NewTestLogger(), tt.permitidos...)(
					http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
						w.WriteHeader(http.StatusOK)
					}),
				),
			)

			req := testutil.CreateRequest(http.MethodGet, "/api/oficios", nil, map[string]string{
				"Authorization": "Bearer " + token,
			})
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestRequireRol_NoSession(t *testing.T) {
	handler := RequireRol(testutil.NewTestLogger(), usuario.RolAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not run without a session")
		}),
	)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/peritos", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}
