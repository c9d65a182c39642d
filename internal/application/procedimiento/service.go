package procedimiento

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"oficri/mesapartes/internal/application/imagen"
	appoficio "oficri/mesapartes/internal/application/oficio"
	"oficri/mesapartes/internal/core/caso"
	"oficri/mesapartes/internal/core/muestra"
)

// Service orchestrates the perito-facing workflow steps: sample
// extraction, per-section analysis and final consolidation. Each step
// records its muestras first, then applies the workflow event; a rejected
// transition leaves no partial state change on the case itself.
type Service struct {
	oficios  *appoficio.Service
	muestras muestra.Repository
	imagenes *imagen.Service
	log      *slog.Logger
}

// NewService creates a new procedimiento service.
func NewService(oficios *appoficio.Service, muestras muestra.Repository, imagenes *imagen.Service, log *slog.Logger) *Service {
	return &Service{oficios: oficios, muestras: muestras, imagenes: imagenes, log: log}
}

// MuestraInput is one sample captured during extraction. Foto carries the
// raw upload; it is converted to a bounded WebP data URI before storage.
type MuestraInput struct {
	TipoMuestra string `json:"tipo_muestra"`
	Descripcion string `json:"descripcion"`
	Cantidad    int    `json:"cantidad"`
	Foto        []byte `json:"foto,omitempty"`
	FotoTipo    string `json:"foto_tipo,omitempty"`
}

// ExtraccionRequest registers the extraction step of a case.
type ExtraccionRequest struct {
	Funcion       string         `json:"funcion"`
	Muestras      []MuestraInput `json:"muestras"`
	Observaciones *string        `json:"observaciones"`
}

// AnalisisRequest registers the analysis results of the acting section.
type AnalisisRequest struct {
	Resultados    map[string]string `json:"resultados"`
	MuestraID     string            `json:"id_muestra"`
	Observaciones *string           `json:"observaciones"`
}

// ConsolidacionRequest registers the consolidated result of a case.
type ConsolidacionRequest struct {
	Resultados    map[string]string `json:"resultados"`
	MuestraID     string            `json:"id_muestra"`
	Observaciones *string           `json:"observaciones"`
}

// RegistrarExtraccion stores the captured muestras and applies the
// extraction event. Peritos with the extraccion_y_analisis función keep
// the case in their own queue for analysis instead of finishing the step.
func (s *Service) RegistrarExtraccion(ctx context.Context, actor appoficio.Actor, oficioID int64, req ExtraccionRequest) (caso.Estado, error) {
	if len(req.Muestras) == 0 {
		return "", fmt.Errorf("%w: se requiere al menos una muestra", muestra.ErrValidacion)
	}

	for i, in := range req.Muestras {
		if strings.TrimSpace(in.TipoMuestra) == "" {
			return "", fmt.Errorf("%w: muestra %d: tipo_muestra es requerido", muestra.ErrValidacion, i+1)
		}

		m := muestra.Muestra{
			OficioID:    oficioID,
			TipoMuestra: strings.TrimSpace(in.TipoMuestra),
			Descripcion: in.Descripcion,
			Cantidad:    in.Cantidad,
		}

		if len(in.Foto) > 0 {
			res, err := s.imagenes.Convertir(in.Foto, in.FotoTipo)
			if err != nil {
				return "", fmt.Errorf("muestra %d: %w", i+1, err)
			}
			m.FotoURI = &res.DataURI
		}

		if _, err := s.muestras.Create(ctx, m); err != nil {
			return "", fmt.Errorf("registrar muestra: %w", err)
		}
	}

	return s.oficios.AplicarEvento(ctx, actor, oficioID,
		caso.EventoRegistrarExtraccion, caso.Funcion(req.Funcion), req.Observaciones)
}

// RegistrarAnalisis merges the section's results into a muestra and
// applies the analysis event for the acting section.
func (s *Service) RegistrarAnalisis(ctx context.Context, actor appoficio.Actor, oficioID int64, req AnalisisRequest) (caso.Estado, error) {
	if len(req.Resultados) == 0 {
		return "", fmt.Errorf("%w: se requiere al menos un resultado", muestra.ErrValidacion)
	}

	if err := s.mergeEnMuestra(ctx, oficioID, req.MuestraID, req.Resultados); err != nil {
		return "", err
	}

	return s.oficios.AplicarEvento(ctx, actor, oficioID,
		caso.EventoRegistrarAnalisis, caso.FuncionNinguna, req.Observaciones)
}

// AsignarConsolidacion queues a lab-finished case for consolidation.
func (s *Service) AsignarConsolidacion(ctx context.Context, actor appoficio.Actor, oficioID int64, observaciones *string) (caso.Estado, error) {
	return s.oficios.AplicarEvento(ctx, actor, oficioID,
		caso.EventoAsignarConsolidacion, caso.FuncionNinguna, observaciones)
}

// RegistrarConsolidacion stores the consolidated results and closes the
// consolidation step.
func (s *Service) RegistrarConsolidacion(ctx context.Context, actor appoficio.Actor, oficioID int64, req ConsolidacionRequest) (caso.Estado, error) {
	if len(req.Resultados) > 0 {
		if err := s.mergeEnMuestra(ctx, oficioID, req.MuestraID, req.Resultados); err != nil {
			return "", err
		}
	}

	return s.oficios.AplicarEvento(ctx, actor, oficioID,
		caso.EventoRegistrarConsolidado, caso.FuncionNinguna, req.Observaciones)
}

// MarcarVisto acknowledges a newly created case.
func (s *Service) MarcarVisto(ctx context.Context, actor appoficio.Actor, oficioID int64) (caso.Estado, error) {
	return s.oficios.AplicarEvento(ctx, actor, oficioID,
		caso.EventoMarcarVisto, caso.FuncionNinguna, nil)
}

// Muestras lists the samples of a case.
func (s *Service) Muestras(ctx context.Context, oficioID int64) ([]muestra.Muestra, error) {
	muestras, err := s.muestras.FindByOficio(ctx, oficioID)
	if err != nil {
		return nil, fmt.Errorf("list muestras: %w", err)
	}
	return muestras, nil
}

// EditarMuestra updates the descriptive fields of a sample, reprocessing
// the photo when a new one is uploaded.
func (s *Service) EditarMuestra(ctx context.Context, id string, in MuestraInput) error {
	m, err := s.muestras.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find muestra: %w", err)
	}
	if m == nil {
		return muestra.ErrNoEncontrada
	}

	m.TipoMuestra = strings.TrimSpace(in.TipoMuestra)
	m.Descripcion = in.Descripcion
	m.Cantidad = in.Cantidad

	if len(in.Foto) > 0 {
		res, err := s.imagenes.Convertir(in.Foto, in.FotoTipo)
		if err != nil {
			return err
		}
		m.FotoURI = &res.DataURI
	}

	return s.muestras.Update(ctx, *m)
}

// mergeEnMuestra merges resultados into the named muestra, or into the
// case's only muestra when the ID is omitted.
func (s *Service) mergeEnMuestra(ctx context.Context, oficioID int64, muestraID string, resultados map[string]string) error {
	if muestraID == "" {
		muestras, err := s.muestras.FindByOficio(ctx, oficioID)
		if err != nil {
			return fmt.Errorf("list muestras: %w", err)
		}
		if len(muestras) != 1 {
			return fmt.Errorf("%w: id_muestra es requerido cuando el oficio tiene %d muestras", muestra.ErrValidacion, len(muestras))
		}
		muestraID = muestras[0].ID
	}

	if err := s.muestras.MergeResultados(ctx, muestraID, resultados); err != nil {
		return fmt.Errorf("merge resultados: %w", err)
	}
	return nil
}
