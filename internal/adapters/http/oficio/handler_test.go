package oficio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	appoficio "oficri/mesapartes/internal/application/oficio"
	"oficri/mesapartes/internal/testutil"
)

func newRouter(repo *testutil.MockOficioRepository) *chi.Mux {
	service := appoficio.NewService(repo, nil, testutil.NewNullLogger())
	handler := NewHandler(service, testutil.NewNullLogger())

	r := chi.NewRouter()
	r.Get("/api/oficios/check/{numero}", handler.CheckNumero)
	return r
}

func TestCheckNumeroEndpoint(t *testing.T) {
	repo := &testutil.MockOficioRepository{
		ExistsNumeroFunc: func(ctx context.Context, numero string) (bool, error) {
			return numero == "OF-2026-001", nil
		},
	}
	router := newRouter(repo)

	tests := []struct {
		name       string
		numero     string
		wantExists bool
	}{
		{"taken numero", "OF-2026-001", true},
		{"free numero", "OF-2026-999", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.CreateRequest(http.MethodGet, "/api/oficios/check/"+tt.numero, nil, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			var response map[string]any
			testutil.ReadJSONResponse(t, w, &response)

			if exists, _ := response["exists"].(bool); exists != tt.wantExists {
				t.Errorf("exists = %v, expected %v", exists, tt.wantExists)
			}
			if response["numero_oficio"] != tt.numero {
				t.Errorf("numero_oficio = %v", response["numero_oficio"])
			}
		})
	}
}

func TestCheckNumeroEndpoint_BlankNumero(t *testing.T) {
	router := newRouter(&testutil.MockOficioRepository{})

	req := testutil.CreateRequest(http.MethodGet, "/api/oficios/check/%20", nil, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}
