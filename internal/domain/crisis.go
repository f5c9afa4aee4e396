package domain

import "time"

// CrisisCategory identifica el tipo de riesgo detectado en un mensaje.
type CrisisCategory string

const (
	CategorySuicidalIdeation           CrisisCategory = "suicidal_ideation"
	CategorySelfHarm                   CrisisCategory = "self_harm"
	CategorySevereDepression           CrisisCategory = "severe_depression"
	CategorySubstanceAbuse             CrisisCategory = "substance_abuse"
	CategoryEatingDisorder             CrisisCategory = "eating_disorder"
	CategoryPanicAttack                CrisisCategory = "panic_attack"
	CategoryPersistentNegativeEmotions CrisisCategory = "persistent_negative_emotions"
)

// ImmediateAction indica si la categoria obliga a marcar la evaluacion
// como de accion inmediata, sin importar el resto de indicadores.
func (c CrisisCategory) ImmediateAction() bool {
	return c == CategorySuicidalIdeation || c == CategorySelfHarm
}

// IsValid devuelve true solo para categorias conocidas. Lo que venga del
// LLM fuera de esta lista se descarta.
func (c CrisisCategory) IsValid() bool {
	switch c {
	case CategorySuicidalIdeation,
		CategorySelfHarm,
		CategorySevereDepression,
		CategorySubstanceAbuse,
		CategoryEatingDisorder,
		CategoryPanicAttack,
		CategoryPersistentNegativeEmotions:
		return true
	}
	return false
}

// AssessmentSource distingue si la evaluacion vino del clasificador LLM
// o del matcher de palabras clave.
type AssessmentSource string

const (
	SourceLLM     AssessmentSource = "llm"
	SourceKeyword AssessmentSource = "keyword"
)

// CrisisIndicator es una senal individual detectada. Inmutable una vez creada.
type CrisisIndicator struct {
	Category   CrisisCategory `json:"category"`
	Severity   int            `json:"severity"`   // 1-5
	Evidence   string         `json:"evidence"`
	Confidence float64        `json:"confidence"` // 0.1-1.0
	DetectedAt time.Time      `json:"detected_at"`
}

// CrisisAssessment es el resultado agregado para un mensaje.
// SeverityLevel siempre es el maximo de los indicadores (0 si no hay).
type CrisisAssessment struct {
	UserID                  string            `json:"user_id"`
	Indicators              []CrisisIndicator `json:"indicators"`
	SeverityLevel           int               `json:"severity_level"`
	ImmediateActionRequired bool              `json:"immediate_action_required"`
	Reasoning               string            `json:"reasoning"`
	Source                  AssessmentSource  `json:"source"`
	Timestamp               time.Time         `json:"timestamp"`
}

// CrisisResource es una entrada del listado estatico de ayuda
// (lineas telefonicas, tecnicas de autorregulacion, etc).
type CrisisResource struct {
	Name        string `json:"name"`
	Contact     string `json:"contact,omitempty"`
	Description string `json:"description"`
	Available   string `json:"available,omitempty"`
}

// ResourceListing agrupa los recursos segun la severidad evaluada.
// ImmediateHelp solo se llena cuando severity >= 3.
type ResourceListing struct {
	SeverityLevel int              `json:"severity_level"`
	ImmediateHelp []CrisisResource `json:"immediate_help,omitempty"`
	Helplines     []CrisisResource `json:"helplines"`
	SelfCare      []CrisisResource `json:"self_care"`
	Disclaimer    string           `json:"disclaimer"`
}
