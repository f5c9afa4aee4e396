package service

import (
	"time"

	"go.uber.org/zap"

	"mindcare-llm/internal/domain"
	"mindcare-llm/internal/repository"
)

const (
	defaultInterventionCooldown = 3600 * time.Second
	moderateUrgencyMaxCount     = 3
	highUrgencyThreshold        = 4
	moderateUrgencyThreshold    = 3
)

// InterventionPolicy decide si corresponde intervenir con un usuario a
// partir del analisis de patrones, el contador de intervenciones previas
// y la ventana de enfriamiento.
type InterventionPolicy struct {
	logger   *zap.Logger
	store    repository.CareStateStore
	cooldown InterventionCooldownStore
	window   time.Duration
}

func NewInterventionPolicy(logger *zap.Logger, store repository.CareStateStore, cooldown InterventionCooldownStore, window time.Duration) *InterventionPolicy {
	if logger == nil {
		logger = zap.NewNop()
	}
	if window <= 0 {
		window = defaultInterventionCooldown
	}
	return &InterventionPolicy{
		logger:   logger,
		store:    store,
		cooldown: cooldown,
		window:   window,
	}
}

// ShouldIntervene aplica las reglas en orden estricto. El enfriamiento
// tiene prioridad absoluta sobre cualquier urgencia.
func (p *InterventionPolicy) ShouldIntervene(userID string, patterns domain.PatternAnalysis) (bool, domain.InterventionReason, int) {
	if p.inCooldown(userID) {
		return false, domain.ReasonTooRecent, 0
	}

	maxUrgency := 0
	for _, pattern := range patterns.IdentifiedPatterns {
		if pattern.UrgencyLevel > maxUrgency {
			maxUrgency = pattern.UrgencyLevel
		}
	}

	state := p.store.Get(userID)

	if maxUrgency >= highUrgencyThreshold {
		return true, domain.ReasonHighUrgency, maxUrgency
	}
	if maxUrgency >= moderateUrgencyThreshold && state.InterventionCount < moderateUrgencyMaxCount {
		return true, domain.ReasonModerateUrgency, maxUrgency
	}
	if patterns.WellnessTrends.RiskTrajectory == string(domain.TrendIncreasing) {
		return true, domain.ReasonIncreasingRisk, maxUrgency
	}
	return false, domain.ReasonNoInterventionNeeded, 0
}

// RecordIntervention registra la intervencion emitida: agrega el record,
// incrementa el contador, actualiza el timestamp y arma el enfriamiento.
func (p *InterventionPolicy) RecordIntervention(userID string, reason domain.InterventionReason, urgency int, plan domain.InterventionPlan) domain.InterventionRecord {
	record := domain.InterventionRecord{
		UserID:    userID,
		Reason:    reason,
		Urgency:   urgency,
		Plan:      plan,
		CreatedAt: time.Now().UTC(),
	}

	p.store.Update(userID, func(state *repository.CareState) {
		state.Interventions = append(state.Interventions, record)
		state.InterventionCount++
		state.LastInterventionAt = record.CreatedAt
	})

	if p.cooldown != nil {
		if err := p.cooldown.MarkIntervened(userID, p.window); err != nil {
			p.logger.Warn("mark intervention cooldown failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return record
}

// inCooldown consulta primero el store compartido; si falla o no existe,
// cae al timestamp en memoria.
func (p *InterventionPolicy) inCooldown(userID string) bool {
	if p.cooldown != nil {
		active, err := p.cooldown.InCooldown(userID)
		if err == nil {
			if active {
				return true
			}
		} else {
			p.logger.Warn("cooldown store check failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	state := p.store.Get(userID)
	if state.LastInterventionAt.IsZero() {
		return false
	}
	return time.Now().UTC().Sub(state.LastInterventionAt) < p.window
}
