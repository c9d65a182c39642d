package documento

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"oficri/mesapartes/internal/core/caso"
	"oficri/mesapartes/internal/core/muestra"
	"oficri/mesapartes/internal/core/oficio"
	"oficri/mesapartes/internal/infrastructure/config"
)

// Service renders printable case documents: the reception cargo handed to
// the requesting unit and the informe pericial with the consolidated
// results. Batch rendering fans the per-case work out over a worker pool.
type Service struct {
	oficios  oficio.Repository
	muestras muestra.Repository
	cfg      config.DocumentosSettings
	log      *slog.Logger
}

// NewService creates a new documento service.
func NewService(oficios oficio.Repository, muestras muestra.Repository, cfg config.DocumentosSettings, log *slog.Logger) *Service {
	return &Service{oficios: oficios, muestras: muestras, cfg: cfg, log: log}
}

// GenerarCargo renders the reception cargo of an oficio.
func (s *Service) GenerarCargo(ctx context.Context, id int64) ([]byte, error) {
	of, err := s.oficios.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find oficio: %w", err)
	}
	if of == nil {
		return nil, oficio.ErrNoEncontrado
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	encabezado(pdf, "CARGO DE RECEPCIÓN")

	pdf.SetFont("Arial", "", 12)
	campo(pdf, "Número de Oficio", of.NumeroOficio)
	campo(pdf, "Fecha de Recepción", of.FechaRecepcion.Format("02/01/2006 15:04"))
	campo(pdf, "Asunto", of.Asunto)
	campo(pdf, "Examinado", of.ExaminadoIncriminado)
	campo(pdf, "Delito", of.Delito)
	campo(pdf, "Prioridad", of.NombrePrioridad)
	if len(of.TiposDeExamen) > 0 {
		campo(pdf, "Exámenes Solicitados", strings.Join(of.TiposDeExamen, ", "))
	}

	return cerrar(pdf)
}

// GenerarInforme renders the informe pericial of an oficio, including its
// tracking history and the consolidated sample results.
func (s *Service) GenerarInforme(ctx context.Context, id int64) ([]byte, error) {
	of, err := s.oficios.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find oficio: %w", err)
	}
	if of == nil {
		return nil, oficio.ErrNoEncontrado
	}

	seguimientos, err := s.oficios.Seguimientos(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list seguimientos: %w", err)
	}

	muestras, err := s.muestras.FindByOficio(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list muestras: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	encabezado(pdf, "INFORME PERICIAL")

	pdf.SetFont("Arial", "", 12)
	campo(pdf, "Número de Oficio", of.NumeroOficio)
	campo(pdf, "Examinado", of.ExaminadoIncriminado)
	campo(pdf, "Delito", of.Delito)
	campo(pdf, "Estado", caso.ClasificarEstado(of.UltimoEstado).Etiqueta)
	pdf.Ln(4)

	if len(muestras) > 0 {
		seccionTitulo(pdf, "Muestras y Resultados")
		for _, m := range muestras {
			pdf.SetFont("Arial", "B", 11)
			pdf.Cell(0, 8, fmt.Sprintf("%s (cantidad: %d)", m.TipoMuestra, m.Cantidad))
			pdf.Ln(7)
			pdf.SetFont("Arial", "", 11)
			if m.Descripcion != "" {
				pdf.Cell(0, 7, m.Descripcion)
				pdf.Ln(6)
			}
			for clave, valor := range m.Resultados {
				pdf.Cell(0, 7, fmt.Sprintf("  %s: %s", clave, valor))
				pdf.Ln(6)
			}
			pdf.Ln(2)
		}
	}

	if len(seguimientos) > 0 {
		seccionTitulo(pdf, "Historial del Caso")
		pdf.SetFont("Arial", "", 10)
		for _, seg := range seguimientos {
			linea := fmt.Sprintf("%s  %s  (%s)",
				seg.FechaSeguimiento.Format("02/01/2006 15:04"),
				seg.EstadoNuevo,
				seg.NombreUsuario)
			pdf.Cell(0, 6, linea)
			pdf.Ln(5)
		}
	}

	return cerrar(pdf)
}

func encabezado(pdf *gofpdf.Fpdf, titulo string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "OFICRI - Mesa de Partes", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 12, titulo, "", 1, "C", false, 0, "")
	pdf.Ln(6)
}

func seccionTitulo(pdf *gofpdf.Fpdf, titulo string) {
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 10, titulo)
	pdf.Ln(10)
}

func campo(pdf *gofpdf.Fpdf, etiqueta, valor string) {
	pdf.Cell(0, 8, fmt.Sprintf("%s: %s", etiqueta, valor))
	pdf.Ln(7)
}

func cerrar(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
