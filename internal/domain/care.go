package domain

import "time"

// InterventionReason explica la decision de la politica de intervencion.
type InterventionReason string

const (
	ReasonTooRecent            InterventionReason = "too_recent"
	ReasonNoInterventionNeeded InterventionReason = "no_intervention_needed"
	ReasonHighUrgency          InterventionReason = "high_urgency"
	ReasonModerateUrgency      InterventionReason = "moderate_urgency"
	ReasonIncreasingRisk       InterventionReason = "increasing_risk"
)

// InterventionRecord es una intervencion emitida. Append-only por usuario.
type InterventionRecord struct {
	UserID    string             `json:"user_id"`
	Reason    InterventionReason `json:"reason"`
	Urgency   int                `json:"urgency"` // 0-5
	Plan      InterventionPlan   `json:"plan"`
	CreatedAt time.Time          `json:"created_at"`
}

// IdentifiedPattern es un patron derivado por el LLM en el analisis
// periodico. UrgencyLevel (1-5) es una escala distinta a la severidad de
// crisis y no debe mezclarse con ella.
type IdentifiedPattern struct {
	PatternType           string  `json:"pattern_type"` // emotional | behavioral | crisis | engagement
	Description           string  `json:"description"`
	Confidence            float64 `json:"confidence"`
	SuggestedIntervention string  `json:"suggested_intervention"`
	UrgencyLevel          int     `json:"urgency_level"`
}

type RecommendedAction struct {
	ActionType  string `json:"action_type"` // check_in | resource | activity | professional
	Description string `json:"description"`
	Timing      string `json:"timing"` // immediate | next_session | scheduled
	Priority    int    `json:"priority"`
}

// WellnessTrends resume la direccion general del bienestar del usuario.
type WellnessTrends struct {
	EmotionalTrajectory string `json:"emotional_trajectory"` // improving | stable | declining
	EngagementQuality   string `json:"engagement_quality"`   // high | moderate | low
	RiskTrajectory      string `json:"risk_trajectory"`      // decreasing | stable | increasing
}

// PatternAnalysis es la salida validada del analisis de patrones.
// IsFallback marca que el LLM fallo y se uso el resultado neutro.
type PatternAnalysis struct {
	UserID             string              `json:"user_id"`
	IdentifiedPatterns []IdentifiedPattern `json:"identified_patterns"`
	RecommendedActions []RecommendedAction `json:"recommended_actions"`
	WellnessTrends     WellnessTrends      `json:"wellness_trends"`
	IsFallback         bool                `json:"is_fallback"`
	AnalyzedAt         time.Time           `json:"analyzed_at"`
}

// RiskTrend clasifica la direccion del riesgo sobre la ventana de historial.
type RiskTrend string

const (
	TrendIncreasing       RiskTrend = "increasing"
	TrendDecreasing       RiskTrend = "decreasing"
	TrendStable           RiskTrend = "stable"
	TrendInsufficientData RiskTrend = "insufficient_data"
)

// RiskEntry es una observacion de severidad en el historial del usuario.
type RiskEntry struct {
	Severity   int       `json:"severity"`
	RecordedAt time.Time `json:"recorded_at"`
}

// RiskTrendState es la ventana acotada de severidades de un usuario.
// El historial nunca supera las 10 entradas.
type RiskTrendState struct {
	History           []RiskEntry `json:"history"`
	Trend             RiskTrend   `json:"trend"`
	RequiresAttention bool        `json:"requires_attention"`
}

// CurrentSeverity devuelve la severidad mas reciente o 0 sin historial.
func (s RiskTrendState) CurrentSeverity() int {
	if len(s.History) == 0 {
		return 0
	}
	return s.History[len(s.History)-1].Severity
}

// InterventionFollowUp describe el seguimiento planificado.
type InterventionFollowUp struct {
	Timing  string   `json:"timing"`
	Type    string   `json:"type"`
	Metrics []string `json:"metrics"`
}

// InterventionPlan es el contenido generado que acompana a una intervencion.
type InterventionPlan struct {
	InterventionType string               `json:"intervention_type"` // check_in | activity | resource | professional
	UrgencyLevel     int                  `json:"urgency_level"`
	Message          string               `json:"message"`
	SuggestedActions []string             `json:"suggested_actions"`
	Resources        []string             `json:"resources"`
	FollowUp         InterventionFollowUp `json:"follow_up"`
}

// TherapistReport es el contexto estructurado para un profesional.
type TherapistReport struct {
	UserID           string            `json:"user_id"`
	GeneratedAt      time.Time         `json:"generated_at"`
	SeverityLevel    int               `json:"severity_level"`
	ImmediateAction  bool              `json:"immediate_action_needed"`
	KeyThemes        []string          `json:"key_themes"`
	EmotionFrequency map[string]int    `json:"emotion_frequency"`
	DominantEmotions []string          `json:"dominant_emotions"`
	CrisisIncidents  []CrisisIndicator `json:"crisis_incidents"`
	EngagementLevel  int               `json:"engagement_level"`
	AINotes          string            `json:"ai_notes"`
}

// WellnessActivity es una sugerencia puntual de autocuidado.
type WellnessActivity struct {
	ActivityName     string   `json:"activity_name"`
	Description      string   `json:"description"`
	Duration         string   `json:"duration"`
	Difficulty       string   `json:"difficulty"` // easy | moderate | challenging
	Benefits         []string `json:"benefits"`
	Steps            []string `json:"steps"`
	CulturalElements []string `json:"cultural_elements"`
}

// InsightReport es el resumen periodico para profesionales de salud.
type InsightReport struct {
	UserID             string    `json:"user_id"`
	GeneratedAt        time.Time `json:"generated_at"`
	OverallStatus      string    `json:"overall_status"`
	KeyConcerns        []string  `json:"key_concerns"`
	ProgressIndicators []string  `json:"progress_indicators"`
	BehavioralPatterns []string  `json:"behavioral_patterns"`
	CurrentRiskLevel   int       `json:"current_risk_level"`
	RiskTrend          string    `json:"risk_trend"`
	ImmediateActions   []string  `json:"immediate_actions"`
	LongTermStrategies []string  `json:"long_term_strategies"`
	FollowUpTiming     string    `json:"follow_up_timing"`
}
