package imagen

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"oficri/mesapartes/internal/infrastructure/config"
)

var (
	// ErrTipoNoSoportado is returned for MIME types outside jpeg/png/gif.
	ErrTipoNoSoportado = errors.New("tipo de imagen no soportado")

	// ErrImagenMuyGrande is returned when the upload exceeds the size limit.
	ErrImagenMuyGrande = errors.New("la imagen excede el tamaño máximo")
)

// Service converts uploaded sample photos into bounded WebP data URIs.
// Images are downscaled to fit the configured box preserving aspect ratio;
// images already inside the box are kept at their original dimensions.
type Service struct {
	cfg config.UploadSettings
	log *slog.Logger
}

// NewService creates a new image conversion service.
func NewService(cfg config.UploadSettings, log *slog.Logger) *Service {
	return &Service{cfg: cfg, log: log}
}

// Resultado describes one converted image.
type Resultado struct {
	DataURI string
	Ancho   int
	Alto    int
}

// Convertir validates and converts an uploaded image to a WebP data URI.
// contentType must be one of image/jpeg, image/png or image/gif.
func (s *Service) Convertir(data []byte, contentType string) (*Resultado, error) {
	if int64(len(data)) > s.cfg.MaxImageBytes {
		return nil, fmt.Errorf("%w: %d bytes, máximo %d", ErrImagenMuyGrande, len(data), s.cfg.MaxImageBytes)
	}

	var (
		img image.Image
		err error
	)
	switch contentType {
	case "image/jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
	case "image/png":
		img, err = png.Decode(bytes.NewReader(data))
	case "image/gif":
		img, err = gif.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrTipoNoSoportado, contentType)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", contentType, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > s.cfg.MaxWidth || bounds.Dy() > s.cfg.MaxHeight {
		img = imaging.Fit(img, s.cfg.MaxWidth, s.cfg.MaxHeight, imaging.Lanczos)
		bounds = img.Bounds()
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: s.cfg.WebPQuality * 100}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}

	return &Resultado{
		DataURI: "data:image/webp;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Ancho:   bounds.Dx(),
		Alto:    bounds.Dy(),
	}, nil
}
