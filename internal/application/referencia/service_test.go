package referencia

import (
	"context"
	"errors"
	"testing"
	"time"

	"oficri/mesapartes/internal/core/referencia"
	"oficri/mesapartes/internal/infrastructure/config"
	"oficri/mesapartes/internal/testutil"
)

func newService(repo referencia.Repository) *Service {
	return NewService(repo, config.CacheSettings{
		ReferenceTTL:    time.Minute,
		CleanupInterval: time.Minute,
	}, testutil.NewNullLogger())
}

func TestListCachesRepeatReads(t *testing.T) {
	var llamadas int
	repo := &testutil.MockReferenciaRepository{
		ListFunc: func(ctx context.Context, tipo referencia.Tipo) ([]referencia.Registro, error) {
			llamadas++
			return []referencia.Registro{{ID: 1, Nombre: "URGENTE"}}, nil
		},
	}

	svc := newService(repo)
	for i := 0; i < 3; i++ {
		registros, err := svc.List(context.Background(), referencia.TipoPrioridad)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(registros) != 1 || registros[0].Nombre != "URGENTE" {
			t.Fatalf("unexpected registros: %+v", registros)
		}
	}

	if llamadas != 1 {
		t.Errorf("expected one repository hit, got %d", llamadas)
	}
}

func TestWriteInvalidatesCache(t *testing.T) {
	var llamadas int
	repo := &testutil.MockReferenciaRepository{
		ListFunc: func(ctx context.Context, tipo referencia.Tipo) ([]referencia.Registro, error) {
			llamadas++
			return []referencia.Registro{}, nil
		},
	}

	svc := newService(repo)
	ctx := context.Background()

	if _, err := svc.List(ctx, referencia.TipoGrado); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Create(ctx, referencia.TipoGrado, Request{Nombre: "Capitán"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.List(ctx, referencia.TipoGrado); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if llamadas != 2 {
		t.Errorf("expected the create to invalidate the cache, repo hits: %d", llamadas)
	}
}

func TestCachesAreIndependentPerCatalog(t *testing.T) {
	visto := map[referencia.Tipo]int{}
	repo := &testutil.MockReferenciaRepository{
		ListFunc: func(ctx context.Context, tipo referencia.Tipo) ([]referencia.Registro, error) {
			visto[tipo]++
			return []referencia.Registro{}, nil
		},
	}

	svc := newService(repo)
	ctx := context.Background()

	for _, tipo := range referencia.Tipos {
		if _, err := svc.List(ctx, tipo); err != nil {
			t.Fatalf("list %s: %v", tipo, err)
		}
	}
	if err := svc.Delete(ctx, referencia.TipoTurno, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, tipo := range referencia.Tipos {
		if _, err := svc.List(ctx, tipo); err != nil {
			t.Fatalf("list %s: %v", tipo, err)
		}
	}

	if visto[referencia.TipoTurno] != 2 {
		t.Errorf("turnos must be re-read after its delete, hits: %d", visto[referencia.TipoTurno])
	}
	if visto[referencia.TipoGrado] != 1 {
		t.Errorf("grados must stay cached, hits: %d", visto[referencia.TipoGrado])
	}
}

func TestListRejectsUnknownCatalog(t *testing.T) {
	svc := newService(&testutil.MockReferenciaRepository{})
	_, err := svc.List(context.Background(), referencia.Tipo("otros"))
	if !errors.Is(err, referencia.ErrTipoInvalido) {
		t.Fatalf("expected ErrTipoInvalido, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newService(&testutil.MockReferenciaRepository{})
	_, err := svc.Create(context.Background(), referencia.TipoGrado, Request{Nombre: "  "})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !errors.Is(err, referencia.ErrValidacion) {
		t.Errorf("error = %v, expected ErrValidacion", err)
	}
}

func TestGetNotFound(t *testing.T) {
	svc := newService(&testutil.MockReferenciaRepository{})
	_, err := svc.Get(context.Background(), referencia.TipoGrado, 99)
	if !errors.Is(err, referencia.ErrNoEncontrado) {
		t.Fatalf("expected ErrNoEncontrado, got %v", err)
	}
}
