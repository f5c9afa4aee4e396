package service

import "mindcare-llm/internal/domain"

// AggregateSeverity reduce una lista de indicadores a la severidad global
// y el flag de accion inmediata. Es una reduccion pura: la severidad es
// el maximo de los indicadores (0 sin indicadores) y la accion inmediata
// se activa si alguna categoria lo exige.
func AggregateSeverity(indicators []domain.CrisisIndicator) (int, bool) {
	maxSeverity := 0
	immediate := false
	for _, ind := range indicators {
		if ind.Severity > maxSeverity {
			maxSeverity = ind.Severity
		}
		if ind.Category.ImmediateAction() {
			immediate = true
		}
	}
	return maxSeverity, immediate
}
