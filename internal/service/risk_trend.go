package service

import (
	"time"

	"mindcare-llm/internal/domain"
	"mindcare-llm/internal/repository"
)

const (
	riskHistoryLimit    = 10
	trendWindowSize     = 3
	trendDeltaThreshold = 0.5
	attentionSeverity   = 3
)

// RiskTrendTracker mantiene la ventana acotada de severidades por usuario
// y clasifica la tendencia sobre el store de estado de cuidado.
type RiskTrendTracker struct {
	store repository.CareStateStore
}

func NewRiskTrendTracker(store repository.CareStateStore) *RiskTrendTracker {
	return &RiskTrendTracker{store: store}
}

// Record agrega la severidad observada al historial del usuario (FIFO,
// maximo 10 entradas) y devuelve el estado derivado.
func (t *RiskTrendTracker) Record(userID string, severity int) domain.RiskTrendState {
	entry := domain.RiskEntry{Severity: severity, RecordedAt: time.Now().UTC()}

	var out domain.RiskTrendState
	t.store.Update(userID, func(state *repository.CareState) {
		state.RiskHistory = append(state.RiskHistory, entry)
		if len(state.RiskHistory) > riskHistoryLimit {
			state.RiskHistory = state.RiskHistory[len(state.RiskHistory)-riskHistoryLimit:]
		}
		out = deriveTrendState(state.RiskHistory)
	})
	return out
}

// Current devuelve el estado derivado sin registrar nada nuevo.
func (t *RiskTrendTracker) Current(userID string) domain.RiskTrendState {
	state := t.store.Get(userID)
	return deriveTrendState(state.RiskHistory)
}

// deriveTrendState compara la media de las ultimas 3 entradas contra la
// media de todas las anteriores a esas 3, con umbral de +-0.5.
func deriveTrendState(history []domain.RiskEntry) domain.RiskTrendState {
	out := domain.RiskTrendState{
		History: append([]domain.RiskEntry(nil), history...),
		Trend:   domain.TrendInsufficientData,
	}
	if len(history) < trendWindowSize {
		return out
	}

	split := len(history) - trendWindowSize
	recent := mean(history[split:])
	if split == 0 {
		// Sin entradas previas a las ultimas 3 no hay con que comparar.
		out.Trend = domain.TrendStable
	} else {
		delta := recent - mean(history[:split])
		switch {
		case delta > trendDeltaThreshold:
			out.Trend = domain.TrendIncreasing
		case delta < -trendDeltaThreshold:
			out.Trend = domain.TrendDecreasing
		default:
			out.Trend = domain.TrendStable
		}
	}

	current := history[len(history)-1].Severity
	out.RequiresAttention = out.Trend == domain.TrendIncreasing && current >= attentionSeverity
	return out
}

func mean(entries []domain.RiskEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	sum := 0
	for _, e := range entries {
		sum += e.Severity
	}
	return float64(sum) / float64(len(entries))
}
