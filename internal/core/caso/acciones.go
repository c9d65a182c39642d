package caso

import "strings"

// Funcion is the role-within-workflow a dashboard route implies for a
// perito. It refines the section: a Toma de Muestra perito may only
// extract, or extract and analyze, depending on route.
type Funcion string

const (
	FuncionExtraccion          Funcion = "extraccion"
	FuncionExtraccionYAnalisis Funcion = "extraccion_y_analisis"
	FuncionAnalisisTM          Funcion = "analisis_tm"
	FuncionAnalisisLab         Funcion = "analisis_lab"
	FuncionConsolidacionLab    Funcion = "consolidacion_lab"
	FuncionNinguna             Funcion = ""
)

// Accion is one of the workflow actions available on a case card.
type Accion string

const (
	AccionIniciarExtraccion    Accion = "INICIAR_EXTRACCION"
	AccionIniciarAnalisis      Accion = "INICIAR_ANALISIS"
	AccionIniciarConsolidacion Accion = "INICIAR_CONSOLIDACION"
	AccionEditarExtraccion     Accion = "EDITAR_EXTRACCION"
	AccionEditarProcedimiento  Accion = "EDITAR_PROCEDIMIENTO"
	AccionEditarAnalisis       Accion = "EDITAR_ANALISIS"
	AccionEditarConsolidacion  Accion = "EDITAR_CONSOLIDACION"
	AccionDerivar              Accion = "DERIVAR"
	AccionAsignarConsolidacion Accion = "ASIGNAR_CONSOLIDACION"
	AccionFinalizarCaso        Accion = "FINALIZAR_CASO"
	AccionVerDetalle           Accion = "VER_DETALLE"
)

// ResolverAcciones decides which workflow actions are available for a case
// given the acting user's section, the route función and the case's current
// state. The decision is deterministic: same inputs, same actions, in
// primary-then-secondary order. Unmatched combinations yield no actions.
func ResolverAcciones(seccion Seccion, funcion Funcion, estadoCaso string) []Accion {
	estado := Estado(strings.ToUpper(strings.TrimSpace(estadoCaso)))
	derivado := EsDerivado(string(estado))

	switch seccion {
	case SeccionTomaMuestra:
		// Derivar gates on the finished-analysis states regardless of función.
		if estado == EstadoAnalisisTMFinalizado || estado == EstadoExtraccionFinalizada {
			return []Accion{AccionDerivar, AccionEditarProcedimiento}
		}
		switch funcion {
		case FuncionExtraccion:
			if estado == EstadoCreacion || estado == EstadoAsignado {
				return []Accion{AccionIniciarExtraccion}
			}
		case FuncionExtraccionYAnalisis:
			if estado == EstadoCreacion || estado == EstadoAsignado {
				return []Accion{AccionIniciarExtraccion}
			}
			if estado == EstadoPendienteAnalisisTM {
				return []Accion{AccionIniciarAnalisis, AccionEditarExtraccion}
			}
		case FuncionAnalisisTM:
			if estado == EstadoCreacion || estado == EstadoAsignado || derivado {
				return []Accion{AccionIniciarAnalisis}
			}
		}

	case SeccionInstrumentalizacion:
		if derivado || estado == EstadoCreacion {
			return []Accion{AccionIniciarAnalisis}
		}
		if estado == EstadoAnalisisInstFinalizado {
			return []Accion{AccionDerivar, AccionEditarAnalisis}
		}

	case SeccionLaboratorio:
		switch funcion {
		case FuncionAnalisisLab:
			if estado == EstadoCreacion || derivado {
				return []Accion{AccionIniciarAnalisis}
			}
			if estado == EstadoAnalisisLabFinalizado {
				return []Accion{AccionAsignarConsolidacion, AccionEditarAnalisis}
			}
		case FuncionConsolidacionLab:
			if estado == EstadoPendienteConsolidacion {
				return []Accion{AccionIniciarConsolidacion}
			}
			if estado == EstadoConsolidacionFinalizada {
				return []Accion{AccionFinalizarCaso, AccionEditarConsolidacion}
			}
		}
	}

	return nil
}

// AccionesDeLista resolves the actions for an actionable list view, where
// a detail action is always offered on top of whatever the decision table
// yields. Read-only views call ResolverAcciones directly.
func AccionesDeLista(seccion Seccion, funcion Funcion, estadoCaso string) []Accion {
	return append(ResolverAcciones(seccion, funcion, estadoCaso), AccionVerDetalle)
}
