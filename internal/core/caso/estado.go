package caso

import "strings"

// Estado represents a case state within the OFICRI workflow taxonomy.
type Estado string

// Known case states. The workflow pipeline moves an oficio from creation
// through sample extraction, per-section analysis, consolidation and pickup.
const (
	EstadoCreacion                Estado = "CREACION DEL OFICIO"
	EstadoAsignado                Estado = "ASIGNADO"
	EstadoVisto                   Estado = "OFICIO VISTO"
	EstadoEnProceso               Estado = "OFICIO EN PROCESO"
	EstadoPendienteAnalisisTM     Estado = "PENDIENTE_ANALISIS_TM"
	EstadoExtraccionFinalizada    Estado = "EXTRACCION_FINALIZADA"
	EstadoAnalisisTMFinalizado    Estado = "ANALISIS_TM_FINALIZADO"
	EstadoAnalisisInstFinalizado  Estado = "ANALISIS_INST_FINALIZADO"
	EstadoAnalisisLabFinalizado   Estado = "ANALISIS_LAB_FINALIZADO"
	EstadoPendienteConsolidacion  Estado = "PENDIENTE_CONSOLIDACION"
	EstadoConsolidacionFinalizada Estado = "CONSOLIDACION_FINALIZADA"
	EstadoListoParaRecojo         Estado = "LISTO_PARA_RECOJO"
	EstadoCompletado              Estado = "COMPLETADO"
	EstadoCerrado                 Estado = "CERRADO"

	// EstadoSinEstado is the fallback for oficios without tracking history.
	EstadoSinEstado Estado = "SIN ESTADO"
)

// prefijoDerivado matches the whole "DERIVADO A: <seccion>" family of states.
const prefijoDerivado = "DERIVADO"

// DerivadoA builds the state string recorded when a case is handed off
// to the given section.
func DerivadoA(destino Seccion) Estado {
	return Estado("DERIVADO A: " + string(destino))
}

// EsDerivado reports whether the state belongs to the DERIVADO family.
// Matching is by prefix, not exact string: the suffix carries the target
// section and is free-form.
func EsDerivado(estado string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(estado)), prefijoDerivado)
}

// Categoria identifies the badge color family used to render a state.
type Categoria string

const (
	CategoriaInfo    Categoria = "info"
	CategoriaIndigo  Categoria = "indigo"
	CategoriaWarning Categoria = "warning"
	CategoriaSuccess Categoria = "success"
	CategoriaPurple  Categoria = "purple"
	CategoriaNeutral Categoria = "neutral"
)

// Clasificacion is the display classification of a raw state string.
type Clasificacion struct {
	Estado    Estado    `json:"estado"`
	Etiqueta  string    `json:"etiqueta"`
	Categoria Categoria `json:"categoria"`
}

// ClasificarEstado maps a raw state string to its display label and color
// category. State strings are matched as exact upper-cased literals except
// for the DERIVADO family, which matches by prefix. Empty input falls back
// to SIN ESTADO / "Pendiente". Unknown states pass through as-is with a
// neutral category.
func ClasificarEstado(raw string) Clasificacion {
	estado := strings.ToUpper(strings.TrimSpace(raw))
	if estado == "" {
		return Clasificacion{Estado: EstadoSinEstado, Etiqueta: "Pendiente", Categoria: CategoriaNeutral}
	}

	if EsDerivado(estado) {
		return Clasificacion{Estado: Estado(estado), Etiqueta: "Derivado", Categoria: CategoriaPurple}
	}

	switch Estado(estado) {
	case EstadoCreacion:
		return Clasificacion{Estado: EstadoCreacion, Etiqueta: "Recién Creado", Categoria: CategoriaInfo}
	case EstadoVisto:
		return Clasificacion{Estado: EstadoVisto, Etiqueta: "Visto", Categoria: CategoriaIndigo}
	case EstadoEnProceso:
		return Clasificacion{Estado: EstadoEnProceso, Etiqueta: "En Proceso", Categoria: CategoriaWarning}
	case EstadoCompletado, EstadoCerrado:
		return Clasificacion{Estado: Estado(estado), Etiqueta: "Finalizado", Categoria: CategoriaSuccess}
	}

	return Clasificacion{Estado: Estado(estado), Etiqueta: raw, Categoria: CategoriaNeutral}
}
