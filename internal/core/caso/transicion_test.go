package caso

import (
	"errors"
	"testing"
)

func TestTransicion_PipelineCompleto(t *testing.T) {
	// Walk an oficio through the whole pipeline in order:
	// creación → asignado → extracción → derivado → análisis inst →
	// derivado a lab → análisis lab → consolidación → recojo → cierre.
	estado := EstadoCreacion

	pasos := []struct {
		ev      Evento
		seccion Seccion
		funcion Funcion
		destino Seccion
		want    Estado
	}{
		{EventoAsignarPerito, SeccionDesconocida, FuncionNinguna, SeccionDesconocida, EstadoAsignado},
		{EventoRegistrarExtraccion, SeccionTomaMuestra, FuncionExtraccion, SeccionDesconocida, EstadoExtraccionFinalizada},
		{EventoDerivar, SeccionTomaMuestra, FuncionNinguna, SeccionInstrumentalizacion, "DERIVADO A: INSTRUMENTALIZACION"},
		{EventoRegistrarAnalisis, SeccionInstrumentalizacion, FuncionNinguna, SeccionDesconocida, EstadoAnalisisInstFinalizado},
		{EventoDerivar, SeccionInstrumentalizacion, FuncionNinguna, SeccionLaboratorio, "DERIVADO A: LABORATORIO"},
		{EventoRegistrarAnalisis, SeccionLaboratorio, FuncionAnalisisLab, SeccionDesconocida, EstadoAnalisisLabFinalizado},
		{EventoAsignarConsolidacion, SeccionLaboratorio, FuncionNinguna, SeccionDesconocida, EstadoPendienteConsolidacion},
		{EventoRegistrarConsolidado, SeccionLaboratorio, FuncionConsolidacionLab, SeccionDesconocida, EstadoConsolidacionFinalizada},
		{EventoFinalizarCaso, SeccionLaboratorio, FuncionConsolidacionLab, SeccionDesconocida, EstadoListoParaRecojo},
		{EventoArchivar, SeccionDesconocida, FuncionNinguna, SeccionDesconocida, EstadoCerrado},
	}

	for i, paso := range pasos {
		siguiente, err := Transicion(estado, paso.ev, paso.seccion, paso.funcion, paso.destino)
		if err != nil {
			t.Fatalf("paso %d (%s desde %q): unexpected error: %v", i, paso.ev, estado, err)
		}
		if siguiente != paso.want {
			t.Fatalf("paso %d (%s): estado = %q, want %q", i, paso.ev, siguiente, paso.want)
		}
		estado = siguiente
	}
}

func TestTransicion_ExtraccionYAnalisisQuedaPendiente(t *testing.T) {
	got, err := Transicion(EstadoAsignado, EventoRegistrarExtraccion, SeccionTomaMuestra, FuncionExtraccionYAnalisis, SeccionDesconocida)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != EstadoPendienteAnalisisTM {
		t.Errorf("estado = %q, want %q", got, EstadoPendienteAnalisisTM)
	}

	// Then the same perito finishes the TM analysis.
	got, err = Transicion(got, EventoRegistrarAnalisis, SeccionTomaMuestra, FuncionExtraccionYAnalisis, SeccionDesconocida)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != EstadoAnalisisTMFinalizado {
		t.Errorf("estado = %q, want %q", got, EstadoAnalisisTMFinalizado)
	}
}

func TestTransicion_Invalidas(t *testing.T) {
	tests := []struct {
		name    string
		actual  Estado
		ev      Evento
		seccion Seccion
		destino Seccion
	}{
		{"derivar recién creado", EstadoCreacion, EventoDerivar, SeccionTomaMuestra, SeccionLaboratorio},
		{"derivar sin destino", EstadoExtraccionFinalizada, EventoDerivar, SeccionTomaMuestra, SeccionDesconocida},
		{"finalizar sin consolidar", EstadoAnalisisLabFinalizado, EventoFinalizarCaso, SeccionLaboratorio, SeccionDesconocida},
		{"archivar antes de recojo", EstadoConsolidacionFinalizada, EventoArchivar, SeccionDesconocida, SeccionDesconocida},
		{"extraer caso cerrado", EstadoCerrado, EventoRegistrarExtraccion, SeccionTomaMuestra, SeccionDesconocida},
		{"consolidar sin asignación", EstadoAnalisisLabFinalizado, EventoRegistrarConsolidado, SeccionLaboratorio, SeccionDesconocida},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transicion(tt.actual, tt.ev, tt.seccion, FuncionNinguna, tt.destino)
			if !errors.Is(err, ErrTransicionInvalida) {
				t.Fatalf("expected ErrTransicionInvalida, got err=%v", err)
			}
			if got != tt.actual {
				t.Errorf("failed transition must keep current state, got %q", got)
			}
		})
	}
}

func TestTransicion_AnalisisDesdeDerivado(t *testing.T) {
	estado := DerivadoA(SeccionLaboratorio)
	got, err := Transicion(estado, EventoRegistrarAnalisis, SeccionLaboratorio, FuncionAnalisisLab, SeccionDesconocida)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != EstadoAnalisisLabFinalizado {
		t.Errorf("estado = %q, want %q", got, EstadoAnalisisLabFinalizado)
	}
}
