package caso

import (
	"errors"
	"fmt"
)

// ErrTransicionInvalida is returned when a workflow event is not allowed
// from the case's current state.
var ErrTransicionInvalida = errors.New("transición de estado no permitida")

// Evento is a workflow event applied to a case. Events are the single
// write-path for state changes: every mutation of an oficio's estado goes
// through Transicion, which rejects anything outside the pipeline order.
type Evento string

const (
	EventoAsignarPerito         Evento = "ASIGNAR_PERITO"
	EventoMarcarVisto           Evento = "MARCAR_VISTO"
	EventoRegistrarExtraccion   Evento = "REGISTRAR_EXTRACCION"
	EventoRegistrarAnalisis     Evento = "REGISTRAR_ANALISIS"
	EventoDerivar               Evento = "DERIVAR"
	EventoAsignarConsolidacion  Evento = "ASIGNAR_CONSOLIDACION"
	EventoRegistrarConsolidado  Evento = "REGISTRAR_CONSOLIDACION"
	EventoFinalizarCaso         Evento = "FINALIZAR_CASO"
	EventoArchivar              Evento = "ARCHIVAR"
)

// Transicion computes the next state for an event, validating the source
// state. The destino section only matters for EventoDerivar; the funcion
// only for EventoRegistrarExtraccion (extraccion_y_analisis keeps the case
// inside Toma de Muestra for its own analysis instead of finishing the
// extraction step).
func Transicion(actual Estado, ev Evento, seccion Seccion, funcion Funcion, destino Seccion) (Estado, error) {
	derivado := EsDerivado(string(actual))

	switch ev {
	case EventoAsignarPerito:
		if actual == EstadoCreacion || actual == EstadoVisto || actual == EstadoEnProceso {
			return EstadoAsignado, nil
		}

	case EventoMarcarVisto:
		if actual == EstadoCreacion {
			return EstadoVisto, nil
		}

	case EventoRegistrarExtraccion:
		if actual == EstadoCreacion || actual == EstadoAsignado {
			if funcion == FuncionExtraccionYAnalisis {
				return EstadoPendienteAnalisisTM, nil
			}
			return EstadoExtraccionFinalizada, nil
		}

	case EventoRegistrarAnalisis:
		switch seccion {
		case SeccionTomaMuestra:
			if actual == EstadoCreacion || actual == EstadoAsignado || actual == EstadoPendienteAnalisisTM || derivado {
				return EstadoAnalisisTMFinalizado, nil
			}
		case SeccionInstrumentalizacion:
			if actual == EstadoCreacion || derivado {
				return EstadoAnalisisInstFinalizado, nil
			}
		case SeccionLaboratorio:
			if actual == EstadoCreacion || derivado {
				return EstadoAnalisisLabFinalizado, nil
			}
		}

	case EventoDerivar:
		if destino == SeccionDesconocida {
			return actual, fmt.Errorf("%w: destino de derivación no reconocido", ErrTransicionInvalida)
		}
		if actual == EstadoExtraccionFinalizada || actual == EstadoAnalisisTMFinalizado || actual == EstadoAnalisisInstFinalizado {
			return DerivadoA(destino), nil
		}

	case EventoAsignarConsolidacion:
		if actual == EstadoAnalisisLabFinalizado {
			return EstadoPendienteConsolidacion, nil
		}

	case EventoRegistrarConsolidado:
		if actual == EstadoPendienteConsolidacion {
			return EstadoConsolidacionFinalizada, nil
		}

	case EventoFinalizarCaso:
		if actual == EstadoConsolidacionFinalizada {
			return EstadoListoParaRecojo, nil
		}

	case EventoArchivar:
		if actual == EstadoListoParaRecojo {
			return EstadoCerrado, nil
		}
	}

	return actual, fmt.Errorf("%w: evento %s desde estado %q", ErrTransicionInvalida, ev, actual)
}
