package caso

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Seccion identifies one of the fixed organizational sections a perito
// belongs to. The zero value means the section could not be recognized.
type Seccion string

const (
	SeccionTomaMuestra         Seccion = "TOMA DE MUESTRA"
	SeccionLaboratorio         Seccion = "LABORATORIO"
	SeccionInstrumentalizacion Seccion = "INSTRUMENTALIZACION"
	SeccionDesconocida         Seccion = ""
)

// NormalizarTexto strips Unicode diacritics (NFD decomposition plus
// combining-mark removal), trims, collapses internal whitespace and
// upper-cases the input. Section names arrive from the backend with
// inconsistent accents and spacing; this is the canonical form used
// for all section comparisons.
func NormalizarTexto(raw string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, raw)
	if err != nil {
		stripped = raw
	}
	return strings.ToUpper(strings.Join(strings.Fields(stripped), " "))
}

// NormalizarSeccion resolves a free-form section name to its canonical key.
// Compact spellings without spaces ("tomademuestra") are also recognized.
func NormalizarSeccion(raw string) Seccion {
	normalizado := NormalizarTexto(raw)
	switch normalizado {
	case string(SeccionTomaMuestra), string(SeccionLaboratorio), string(SeccionInstrumentalizacion):
		return Seccion(normalizado)
	}

	switch strings.ReplaceAll(normalizado, " ", "") {
	case "TOMADEMUESTRA":
		return SeccionTomaMuestra
	case "LABORATORIO":
		return SeccionLaboratorio
	case "INSTRUMENTALIZACION":
		return SeccionInstrumentalizacion
	}

	return SeccionDesconocida
}
