package repository

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"mindcare-llm/internal/domain"
)

// CareState es el estado de cuidado de un usuario: historial de riesgo,
// intervenciones emitidas y el ultimo analisis de patrones. Vive en
// memoria durante el proceso; el snapshot a disco es mejor esfuerzo.
type CareState struct {
	UserID             string                      `json:"user_id"`
	RiskHistory        []domain.RiskEntry          `json:"risk_history"`
	Interventions      []domain.InterventionRecord `json:"interventions"`
	InterventionCount  int                         `json:"intervention_count"`
	LastInterventionAt time.Time                   `json:"last_intervention_at"`
	LastPatterns       *domain.PatternAnalysis     `json:"last_patterns,omitempty"`
	LastAnalyzedAt     time.Time                   `json:"last_analyzed_at"`
}

// CareStateStore abstrae el acceso al estado por usuario. Update aplica la
// mutacion bajo el lock del store para evitar carreras entre requests
// concurrentes del mismo usuario.
type CareStateStore interface {
	Get(userID string) CareState
	Update(userID string, fn func(state *CareState))
}

// MemoryCareStateStore guarda el estado en un mapa protegido por mutex.
type MemoryCareStateStore struct {
	mu     sync.Mutex
	states map[string]*CareState
}

func NewMemoryCareStateStore() *MemoryCareStateStore {
	return &MemoryCareStateStore{states: make(map[string]*CareState)}
}

func (s *MemoryCareStateStore) Get(userID string) CareState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.states[userID]
	if state == nil {
		return CareState{UserID: userID}
	}
	return cloneState(state)
}

func (s *MemoryCareStateStore) Update(userID string, fn func(state *CareState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.states[userID]
	if state == nil {
		state = &CareState{UserID: userID}
		s.states[userID] = state
	}
	fn(state)
}

// Snapshot serializa todos los estados a JSON. No es un contrato de
// durabilidad: sirve solo para precalentar tras un reinicio.
func (s *MemoryCareStateStore) Snapshot(path string) error {
	if path == "" {
		return errors.New("snapshot path is empty")
	}
	s.mu.Lock()
	all := make(map[string]CareState, len(s.states))
	for id, state := range s.states {
		all[id] = cloneState(state)
	}
	s.mu.Unlock()

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Restore carga un snapshot previo. Un archivo ausente no es un error.
func (s *MemoryCareStateStore) Restore(path string) error {
	if path == "" {
		return errors.New("snapshot path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	var all map[string]CareState
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, state := range all {
		copied := state
		s.states[id] = &copied
	}
	return nil
}

func cloneState(state *CareState) CareState {
	out := *state
	out.RiskHistory = append([]domain.RiskEntry(nil), state.RiskHistory...)
	out.Interventions = append([]domain.InterventionRecord(nil), state.Interventions...)
	if state.LastPatterns != nil {
		patterns := *state.LastPatterns
		out.LastPatterns = &patterns
	}
	return out
}
