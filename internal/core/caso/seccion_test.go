package caso

import "testing"

func TestNormalizarTexto(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"capitalización mixta", "Toma de Muestra", "TOMA DE MUESTRA"},
		{"espacios repetidos", "TOMA  DE   MUESTRA", "TOMA DE MUESTRA"},
		{"forma compacta", "tomademuestra", "TOMADEMUESTRA"},
		{"diacríticos", "Instrumentalización", "INSTRUMENTALIZACION"},
		{"espacios exteriores", "  laboratorio \t", "LABORATORIO"},
		{"vacío", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizarTexto(tt.raw); got != tt.want {
				t.Errorf("NormalizarTexto(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizarSeccion(t *testing.T) {
	tests := []struct {
		raw  string
		want Seccion
	}{
		{"Toma de Muestra", SeccionTomaMuestra},
		{"TOMA  DE   MUESTRA", SeccionTomaMuestra},
		{"tomademuestra", SeccionTomaMuestra},
		{"TOMA DE MUESTRA", SeccionTomaMuestra},
		{"Laboratorio", SeccionLaboratorio},
		{"LABORATORIO", SeccionLaboratorio},
		{"Instrumentalización", SeccionInstrumentalizacion},
		{"INSTRUMENTALIZACION", SeccionInstrumentalizacion},
		{"instrumentalizacion", SeccionInstrumentalizacion},
		{"MESA DE PARTES", SeccionDesconocida},
		{"", SeccionDesconocida},
	}

	for _, tt := range tests {
		if got := NormalizarSeccion(tt.raw); got != tt.want {
			t.Errorf("NormalizarSeccion(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
