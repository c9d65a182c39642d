package referencia

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gocache "github.com/patrickmn/go-cache"

	"oficri/mesapartes/internal/core/referencia"
	"oficri/mesapartes/internal/infrastructure/config"
)

// Service manages the reference catalogs (grados, prioridades,
// especialidades, tipos de examen, turnos). Catalog listings are hot on
// every dashboard form, so reads go through an in-memory cache keyed by
// catalog name; any write flushes that catalog's entry.
type Service struct {
	repo  referencia.Repository
	cache *gocache.Cache
	log   *slog.Logger
}

// NewService creates a new reference-catalog service.
func NewService(repo referencia.Repository, cfg config.CacheSettings, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: gocache.New(cfg.ReferenceTTL, cfg.CleanupInterval),
		log:   log,
	}
}

// Request carries the fields of a catalog record.
type Request struct {
	Nombre      string  `json:"nombre"`
	Descripcion *string `json:"descripcion"`
}

// List returns the whole catalog, serving repeat reads from cache.
func (s *Service) List(ctx context.Context, tipo referencia.Tipo) ([]referencia.Registro, error) {
	if !tipo.Valido() {
		return nil, referencia.ErrTipoInvalido
	}

	if cached, found := s.cache.Get(string(tipo)); found {
		return cached.([]referencia.Registro), nil
	}

	registros, err := s.repo.List(ctx, tipo)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", tipo, err)
	}
	if registros == nil {
		registros = []referencia.Registro{}
	}

	s.cache.Set(string(tipo), registros, gocache.DefaultExpiration)
	return registros, nil
}

// Get returns one catalog record.
func (s *Service) Get(ctx context.Context, tipo referencia.Tipo, id int64) (*referencia.Registro, error) {
	reg, err := s.repo.FindByID(ctx, tipo, id)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, referencia.ErrNoEncontrado
	}
	return reg, nil
}

// Create adds a record to the catalog and invalidates its cache entry.
func (s *Service) Create(ctx context.Context, tipo referencia.Tipo, req Request) (*referencia.Registro, error) {
	if strings.TrimSpace(req.Nombre) == "" {
		return nil, fmt.Errorf("%w: nombre es requerido", referencia.ErrValidacion)
	}

	reg := referencia.Registro{
		Nombre:      strings.TrimSpace(req.Nombre),
		Descripcion: req.Descripcion,
	}

	id, err := s.repo.Create(ctx, tipo, reg)
	if err != nil {
		return nil, err
	}
	reg.ID = id

	s.cache.Delete(string(tipo))
	return &reg, nil
}

// Update edits a record and invalidates the catalog's cache entry.
func (s *Service) Update(ctx context.Context, tipo referencia.Tipo, id int64, req Request) error {
	if strings.TrimSpace(req.Nombre) == "" {
		return fmt.Errorf("%w: nombre es requerido", referencia.ErrValidacion)
	}

	err := s.repo.Update(ctx, tipo, referencia.Registro{
		ID:          id,
		Nombre:      strings.TrimSpace(req.Nombre),
		Descripcion: req.Descripcion,
	})
	if err != nil {
		return err
	}

	s.cache.Delete(string(tipo))
	return nil
}

// Delete removes a record and invalidates the catalog's cache entry.
func (s *Service) Delete(ctx context.Context, tipo referencia.Tipo, id int64) error {
	if err := s.repo.Delete(ctx, tipo, id); err != nil {
		return err
	}

	s.cache.Delete(string(tipo))
	return nil
}
