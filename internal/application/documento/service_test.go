package documento

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"oficri/mesapartes/internal/core/muestra"
	"oficri/mesapartes/internal/core/oficio"
	"oficri/mesapartes/internal/infrastructure/config"
	"oficri/mesapartes/internal/testutil"
)

func testSettings() config.DocumentosSettings {
	return config.DocumentosSettings{WorkerPoolSize: 4, BatchSize: 25}
}

func repoConOficios() *testutil.MockOficioRepository {
	return &testutil.MockOficioRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*oficio.Oficio, error) {
			return &oficio.Oficio{
				ID:                   id,
				NumeroOficio:         "OF-2026-0009",
				Asunto:               "Dosaje etílico",
				ExaminadoIncriminado: "Carlos Quispe",
				Delito:               "Conducción en estado de ebriedad",
				TiposDeExamen:        []string{"Dosaje Etílico"},
				NombrePrioridad:      "URGENTE",
				UltimoEstado:         "CONSOLIDACION FINALIZADA",
			}, nil
		},
	}
}

func TestGenerarCargo(t *testing.T) {
	svc := NewService(repoConOficios(), &testutil.MockMuestraRepository{}, testSettings(), testutil.NewNullLogger())

	pdf, err := svc.GenerarCargo(context.Background(), 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("expected a PDF document")
	}
}

func TestGenerarInforme(t *testing.T) {
	muestraRepo := &testutil.MockMuestraRepository{
		FindByOficioFunc: func(ctx context.Context, oficioID int64) ([]muestra.Muestra, error) {
			return []muestra.Muestra{
				{ID: "m-1", TipoMuestra: "Sangre", Cantidad: 1, Resultados: map[string]string{"etanol": "0.85 g/L"}},
			}, nil
		},
	}

	svc := NewService(repoConOficios(), muestraRepo, testSettings(), testutil.NewNullLogger())
	pdf, err := svc.GenerarInforme(context.Background(), 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("expected a PDF document")
	}
}

func TestGenerarInformeNotFound(t *testing.T) {
	svc := NewService(&testutil.MockOficioRepository{}, &testutil.MockMuestraRepository{}, testSettings(), testutil.NewNullLogger())

	_, err := svc.GenerarInforme(context.Background(), 404)
	if !errors.Is(err, oficio.ErrNoEncontrado) {
		t.Fatalf("expected ErrNoEncontrado, got %v", err)
	}
}

func TestGenerarLote(t *testing.T) {
	svc := NewService(repoConOficios(), &testutil.MockMuestraRepository{}, testSettings(), testutil.NewNullLogger())

	ids := []int64{1, 2, 3, 4, 5}
	results, err := svc.GenerarLote(context.Background(), ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != len(ids) {
		t.Fatalf("expected %d results, got %d", len(ids), len(results))
	}
	for i, res := range results {
		if res.Index != i {
			t.Errorf("results must come back in submission order, got index %d at %d", res.Index, i)
		}
		if res.Failed {
			t.Errorf("oficio %d failed: %v", res.OficioID, res.Error)
		}
		if !bytes.HasPrefix(res.PDF, []byte("%PDF")) {
			t.Errorf("oficio %d did not render a PDF", res.OficioID)
		}
	}
}

func TestGenerarLotePartialFailure(t *testing.T) {
	repo := repoConOficios()
	base := repo.FindByIDFunc
	repo.FindByIDFunc = func(ctx context.Context, id int64) (*oficio.Oficio, error) {
		if id == 2 {
			return nil, nil
		}
		return base(ctx, id)
	}

	svc := NewService(repo, &testutil.MockMuestraRepository{}, testSettings(), testutil.NewNullLogger())
	results, err := svc.GenerarLote(context.Background(), []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var fallos int
	for _, res := range results {
		if res.Failed {
			fallos++
			if res.OficioID != 2 {
				t.Errorf("unexpected failure for oficio %d", res.OficioID)
			}
		}
	}
	if fallos != 1 {
		t.Errorf("expected exactly one failure, got %d", fallos)
	}
}

func TestGenerarLoteRejectsOversizeBatch(t *testing.T) {
	cfg := testSettings()
	cfg.BatchSize = 2
	svc := NewService(repoConOficios(), &testutil.MockMuestraRepository{}, cfg, testutil.NewNullLogger())

	if _, err := svc.GenerarLote(context.Background(), []int64{1, 2, 3}); err == nil {
		t.Error("expected an oversize batch error")
	}
}

func TestGenerarLoteEmpty(t *testing.T) {
	svc := NewService(repoConOficios(), &testutil.MockMuestraRepository{}, testSettings(), testutil.NewNullLogger())

	results, err := svc.GenerarLote(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
