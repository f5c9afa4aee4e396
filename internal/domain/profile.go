package domain

import "time"

// UserProfile guarda el resultado del onboarding: sintomas, banderas de riesgo
// y preferencias de estilo que alimentan la personalizacion del prompt.
type UserProfile struct {
	ID                    string    `json:"id"`
	UserID                string    `json:"user_id"`
	SupportContext        string    `json:"support_context"` // "general", "academic", "family"
	CommunicationStyle    string    `json:"communication_style"`
	PreferredTherapyStyle []string  `json:"preferred_therapy_style"`
	PreferredLanguage     string    `json:"preferred_language"`
	CulturalNotes         string    `json:"cultural_notes,omitempty"`
	PreferredTopics       []string  `json:"preferred_topics"`
	PrimaryConcerns       []string  `json:"primary_concerns"`
	TherapyGoals          []string  `json:"therapy_goals"`
	TherapyExperience     string    `json:"therapy_experience,omitempty"`
	CurrentSymptoms       []string  `json:"current_symptoms"`
	SymptomSeverity       int       `json:"symptom_severity"` // 1-10
	SymptomDuration       string    `json:"symptom_duration,omitempty"`
	SuicidalIdeationFlag  bool      `json:"suicidal_ideation_flag"`
	SelfHarmRiskFlag      bool      `json:"self_harm_risk_flag"`
	SubstanceUseFlag      bool      `json:"substance_use_flag"`
	InitialMoodScore      int       `json:"initial_mood_score"` // 1-10
	StressLevel           int       `json:"stress_level"`       // 1-10
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// RiskScreen es el resultado del tamizaje de riesgo sobre datos de onboarding.
type RiskScreen struct {
	Level                string   `json:"level"` // "low", "medium", "high"
	Score                int      `json:"score"`
	Factors              []string `json:"factors"`
	RequiresProfessional bool     `json:"requires_professional"`
}

// HasRiskFlags indica si el perfil trae alguna bandera directa de riesgo.
func (p *UserProfile) HasRiskFlags() bool {
	return p.SuicidalIdeationFlag || p.SelfHarmRiskFlag || p.SubstanceUseFlag
}
