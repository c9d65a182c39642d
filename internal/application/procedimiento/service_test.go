package procedimiento

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"strings"
	"testing"

	"oficri/mesapartes/internal/application/imagen"
	appoficio "oficri/mesapartes/internal/application/oficio"
	"oficri/mesapartes/internal/core/caso"
	"oficri/mesapartes/internal/core/muestra"
	"oficri/mesapartes/internal/core/oficio"
	"oficri/mesapartes/internal/infrastructure/config"
	"oficri/mesapartes/internal/testutil"
)

func newService(t *testing.T, oficioRepo *testutil.MockOficioRepository, muestraRepo *testutil.MockMuestraRepository) *Service {
	t.Helper()
	log := testutil.NewNullLogger()
	oficios := appoficio.NewService(oficioRepo, nil, log)
	imagenes := imagen.NewService(config.UploadSettings{
		MaxImageBytes: 5 << 20,
		MaxWidth:      800,
		MaxHeight:     600,
		WebPQuality:   0.8,
	}, log)
	return NewService(oficios, muestraRepo, imagenes, log)
}

func oficioEnEstado(estado caso.Estado) *testutil.MockOficioRepository {
	return &testutil.MockOficioRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*oficio.Oficio, error) {
			return &oficio.Oficio{ID: id, UltimoEstado: string(estado)}, nil
		},
	}
}

func fotoJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 50, 50)), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestRegistrarExtraccion(t *testing.T) {
	tests := []struct {
		name       string
		funcion    string
		wantEstado caso.Estado
	}{
		{"extraccion only", "extraccion", caso.EstadoExtraccionFinalizada},
		{"extraccion y analisis", "extraccion_y_analisis", caso.EstadoPendienteAnalisisTM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var creadas []muestra.Muestra
			muestraRepo := &testutil.MockMuestraRepository{
				CreateFunc: func(ctx context.Context, m muestra.Muestra) (string, error) {
					creadas = append(creadas, m)
					return "m-1", nil
				},
			}

			svc := newService(t, oficioEnEstado(caso.EstadoAsignado), muestraRepo)
			actor := appoficio.Actor{CIP: "1", Seccion: "TOMA DE MUESTRA"}

			estado, err := svc.RegistrarExtraccion(context.Background(), actor, 5, ExtraccionRequest{
				Funcion: tt.funcion,
				Muestras: []MuestraInput{
					{TipoMuestra: "Sangre", Cantidad: 2},
				},
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if estado != tt.wantEstado {
				t.Errorf("expected estado %q, got %q", tt.wantEstado, estado)
			}
			if len(creadas) != 1 || creadas[0].OficioID != 5 {
				t.Errorf("expected one muestra for oficio 5, got %+v", creadas)
			}
		})
	}
}

func TestRegistrarExtraccionConvertsPhoto(t *testing.T) {
	var creada muestra.Muestra
	muestraRepo := &testutil.MockMuestraRepository{
		CreateFunc: func(ctx context.Context, m muestra.Muestra) (string, error) {
			creada = m
			return "m-1", nil
		},
	}

	svc := newService(t, oficioEnEstado(caso.EstadoAsignado), muestraRepo)
	_, err := svc.RegistrarExtraccion(context.Background(),
		appoficio.Actor{Seccion: "TOMA DE MUESTRA"}, 5, ExtraccionRequest{
			Funcion: "extraccion",
			Muestras: []MuestraInput{
				{TipoMuestra: "Orina", Foto: fotoJPEG(t), FotoTipo: "image/jpeg"},
			},
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creada.FotoURI == nil || !strings.HasPrefix(*creada.FotoURI, "data:image/webp;base64,") {
		t.Error("expected the stored muestra to carry a webp data URI")
	}
}

func TestRegistrarExtraccionRequiresMuestras(t *testing.T) {
	svc := newService(t, oficioEnEstado(caso.EstadoAsignado), &testutil.MockMuestraRepository{})
	_, err := svc.RegistrarExtraccion(context.Background(), appoficio.Actor{}, 5, ExtraccionRequest{})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !errors.Is(err, muestra.ErrValidacion) {
		t.Errorf("error = %v, expected ErrValidacion", err)
	}
}

func TestRegistrarExtraccionInvalidState(t *testing.T) {
	svc := newService(t, oficioEnEstado(caso.EstadoCerrado), &testutil.MockMuestraRepository{})
	_, err := svc.RegistrarExtraccion(context.Background(),
		appoficio.Actor{Seccion: "TOMA DE MUESTRA"}, 5, ExtraccionRequest{
			Funcion:  "extraccion",
			Muestras: []MuestraInput{{TipoMuestra: "Sangre"}},
		})
	if !errors.Is(err, caso.ErrTransicionInvalida) {
		t.Fatalf("expected ErrTransicionInvalida, got %v", err)
	}
}

func TestRegistrarAnalisisMergesResultados(t *testing.T) {
	var mergedID string
	var merged map[string]string
	muestraRepo := &testutil.MockMuestraRepository{
		FindByOficioFunc: func(ctx context.Context, oficioID int64) ([]muestra.Muestra, error) {
			return []muestra.Muestra{{ID: "m-77", OficioID: oficioID}}, nil
		},
		MergeResultadosFunc: func(ctx context.Context, id string, resultados map[string]string) error {
			mergedID = id
			merged = resultados
			return nil
		},
	}

	svc := newService(t, oficioEnEstado("DERIVADO A: LABORATORIO"), muestraRepo)
	estado, err := svc.RegistrarAnalisis(context.Background(),
		appoficio.Actor{Seccion: "LABORATORIO"}, 5, AnalisisRequest{
			Resultados: map[string]string{"etanol": "0.85 g/L"},
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if estado != caso.EstadoAnalisisLabFinalizado {
		t.Errorf("expected %q, got %q", caso.EstadoAnalisisLabFinalizado, estado)
	}
	if mergedID != "m-77" {
		t.Errorf("expected merge into the case's only muestra, got %q", mergedID)
	}
	if merged["etanol"] != "0.85 g/L" {
		t.Errorf("resultados not forwarded: %v", merged)
	}
}

func TestRegistrarAnalisisAmbiguousMuestra(t *testing.T) {
	muestraRepo := &testutil.MockMuestraRepository{
		FindByOficioFunc: func(ctx context.Context, oficioID int64) ([]muestra.Muestra, error) {
			return []muestra.Muestra{{ID: "a"}, {ID: "b"}}, nil
		},
	}

	svc := newService(t, oficioEnEstado("DERIVADO A: LABORATORIO"), muestraRepo)
	_, err := svc.RegistrarAnalisis(context.Background(),
		appoficio.Actor{Seccion: "LABORATORIO"}, 5, AnalisisRequest{
			Resultados: map[string]string{"etanol": "0.85 g/L"},
		})
	if err == nil {
		t.Error("expected an error when the muestra is ambiguous")
	}
}

func TestPipelineConsolidacion(t *testing.T) {
	estado := caso.EstadoAnalisisLabFinalizado
	oficioRepo := &testutil.MockOficioRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*oficio.Oficio, error) {
			return &oficio.Oficio{ID: id, UltimoEstado: string(estado)}, nil
		},
		AppendSeguimientoFunc: func(ctx context.Context, seg oficio.Seguimiento) error {
			estado = caso.Estado(seg.EstadoNuevo)
			return nil
		},
	}
	muestraRepo := &testutil.MockMuestraRepository{
		FindByOficioFunc: func(ctx context.Context, oficioID int64) ([]muestra.Muestra, error) {
			return []muestra.Muestra{{ID: "m-1"}}, nil
		},
	}

	svc := newService(t, oficioRepo, muestraRepo)
	actor := appoficio.Actor{CIP: "9", Seccion: "LABORATORIO"}

	if _, err := svc.AsignarConsolidacion(context.Background(), actor, 3, nil); err != nil {
		t.Fatalf("asignar consolidación: %v", err)
	}
	if estado != caso.EstadoPendienteConsolidacion {
		t.Fatalf("expected PENDIENTE_CONSOLIDACION, got %q", estado)
	}

	if _, err := svc.RegistrarConsolidacion(context.Background(), actor, 3, ConsolidacionRequest{
		Resultados: map[string]string{"conclusion": "positivo"},
	}); err != nil {
		t.Fatalf("registrar consolidación: %v", err)
	}
	if estado != caso.EstadoConsolidacionFinalizada {
		t.Fatalf("expected CONSOLIDACION_FINALIZADA, got %q", estado)
	}
}

func TestMarcarVisto(t *testing.T) {
	svc := newService(t, oficioEnEstado(caso.EstadoCreacion), &testutil.MockMuestraRepository{})
	estado, err := svc.MarcarVisto(context.Background(), appoficio.Actor{CIP: "2"}, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if estado != caso.EstadoVisto {
		t.Errorf("expected VISTO, got %q", estado)
	}
}
