package caso

import "testing"

func TestClasificarEstado(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		wantEtiqueta  string
		wantCategoria Categoria
	}{
		{
			name:          "creación del oficio",
			raw:           "CREACION DEL OFICIO",
			wantEtiqueta:  "Recién Creado",
			wantCategoria: CategoriaInfo,
		},
		{
			name:          "oficio visto",
			raw:           "OFICIO VISTO",
			wantEtiqueta:  "Visto",
			wantCategoria: CategoriaIndigo,
		},
		{
			name:          "oficio en proceso",
			raw:           "OFICIO EN PROCESO",
			wantEtiqueta:  "En Proceso",
			wantCategoria: CategoriaWarning,
		},
		{
			name:          "completado",
			raw:           "COMPLETADO",
			wantEtiqueta:  "Finalizado",
			wantCategoria: CategoriaSuccess,
		},
		{
			name:          "cerrado",
			raw:           "CERRADO",
			wantEtiqueta:  "Finalizado",
			wantCategoria: CategoriaSuccess,
		},
		{
			name:          "derivado por prefijo",
			raw:           "DERIVADO A: LABORATORIO",
			wantEtiqueta:  "Derivado",
			wantCategoria: CategoriaPurple,
		},
		{
			name:          "derivado sin destino",
			raw:           "DERIVADO",
			wantEtiqueta:  "Derivado",
			wantCategoria: CategoriaPurple,
		},
		{
			name:          "minúsculas normalizadas",
			raw:           "creacion del oficio",
			wantEtiqueta:  "Recién Creado",
			wantCategoria: CategoriaInfo,
		},
		{
			name:          "estado desconocido pasa tal cual",
			raw:           "ESTADO_RARO",
			wantEtiqueta:  "ESTADO_RARO",
			wantCategoria: CategoriaNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClasificarEstado(tt.raw)
			if got.Etiqueta != tt.wantEtiqueta {
				t.Errorf("etiqueta = %q, want %q", got.Etiqueta, tt.wantEtiqueta)
			}
			if got.Categoria != tt.wantCategoria {
				t.Errorf("categoría = %q, want %q", got.Categoria, tt.wantCategoria)
			}
		})
	}
}

func TestClasificarEstado_SinEstado(t *testing.T) {
	for _, raw := range []string{"", "   "} {
		got := ClasificarEstado(raw)
		if got.Estado != EstadoSinEstado {
			t.Errorf("ClasificarEstado(%q).Estado = %q, want %q", raw, got.Estado, EstadoSinEstado)
		}
		if got.Etiqueta != "Pendiente" {
			t.Errorf("ClasificarEstado(%q).Etiqueta = %q, want %q", raw, got.Etiqueta, "Pendiente")
		}
		if got.Categoria != CategoriaNeutral {
			t.Errorf("ClasificarEstado(%q).Categoria = %q, want neutral", raw, got.Categoria)
		}
	}
}

func TestEsDerivado(t *testing.T) {
	tests := []struct {
		estado string
		want   bool
	}{
		{"DERIVADO A: LABORATORIO", true},
		{"DERIVADO A: INSTRUMENTALIZACION", true},
		{"DERIVADO", true},
		{"  derivado a: laboratorio  ", true},
		{"ANALISIS_TM_FINALIZADO", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := EsDerivado(tt.estado); got != tt.want {
			t.Errorf("EsDerivado(%q) = %v, want %v", tt.estado, got, tt.want)
		}
	}
}

func TestDerivadoA(t *testing.T) {
	got := DerivadoA(SeccionLaboratorio)
	if got != "DERIVADO A: LABORATORIO" {
		t.Errorf("DerivadoA(LABORATORIO) = %q", got)
	}
	if !EsDerivado(string(got)) {
		t.Error("DerivadoA output must be recognized by EsDerivado")
	}
}
