package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mindcare-llm/internal/domain"
	"mindcare-llm/internal/llm"
)

// ClassificationError describe por que fallo el camino LLM. Siempre se
// rutea al fallback de palabras clave, nunca llega al caller final.
type ClassificationError struct {
	Stage string // "llm", "parse", "schema"
	Err   error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("crisis classification failed at %s: %v", e.Stage, e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// LLMCrisisClassifier evalua un mensaje con una sola llamada al LLM
// pidiendo un JSON con esquema estricto. No reintenta: cualquier falla
// devuelve ClassificationError y el caller decide el fallback.
type LLMCrisisClassifier struct {
	llmClient llm.LLMClient
}

func NewLLMCrisisClassifier(client llm.LLMClient) *LLMCrisisClassifier {
	return &LLMCrisisClassifier{llmClient: client}
}

type rawCrisisIndicator struct {
	Category   string   `json:"category"`
	Severity   *int     `json:"severity"`
	Evidence   string   `json:"evidence"`
	Confidence *float64 `json:"confidence"`
}

type rawCrisisAssessment struct {
	Indicators              *[]rawCrisisIndicator `json:"indicators"`
	SeverityLevel           *int                  `json:"severity_level"`
	ImmediateActionRequired *bool                 `json:"immediate_action_required"`
	Reasoning               *string               `json:"reasoning"`
}

func (c *LLMCrisisClassifier) Classify(
	ctx context.Context,
	userID string,
	message string,
	recentMessages []domain.Message,
	recentEmotions []domain.EmotionState,
) (domain.CrisisAssessment, error) {
	if c.llmClient == nil {
		return domain.CrisisAssessment{}, &ClassificationError{Stage: "llm", Err: fmt.Errorf("llm client not configured")}
	}

	prompt := buildCrisisPrompt(message, recentMessages, recentEmotions)

	raw, err := c.llmClient.Generate(ctx, prompt)
	if err != nil {
		return domain.CrisisAssessment{}, &ClassificationError{Stage: "llm", Err: err}
	}

	cleaned := CleanLLMJSONResponse(raw)
	jsonObj := extractFirstJSONObject(cleaned)
	if jsonObj == "" {
		return domain.CrisisAssessment{}, &ClassificationError{Stage: "parse", Err: fmt.Errorf("no json object in response")}
	}

	var parsed rawCrisisAssessment
	if err := json.Unmarshal([]byte(jsonObj), &parsed); err != nil {
		return domain.CrisisAssessment{}, &ClassificationError{Stage: "parse", Err: err}
	}

	if parsed.Indicators == nil || parsed.SeverityLevel == nil || parsed.ImmediateActionRequired == nil || parsed.Reasoning == nil {
		return domain.CrisisAssessment{}, &ClassificationError{Stage: "schema", Err: fmt.Errorf("missing required fields")}
	}

	now := time.Now().UTC()
	var indicators []domain.CrisisIndicator
	for _, ri := range *parsed.Indicators {
		category := domain.CrisisCategory(strings.ToLower(strings.TrimSpace(ri.Category)))
		if !category.IsValid() {
			continue
		}
		severity := 3
		if ri.Severity != nil {
			severity = clampInt(*ri.Severity, 1, 5)
		}
		confidence := 0.5
		if ri.Confidence != nil {
			confidence = clampFloat(*ri.Confidence, 0.1, 1.0)
		}
		indicators = append(indicators, domain.CrisisIndicator{
			Category:   category,
			Severity:   severity,
			Evidence:   strings.TrimSpace(ri.Evidence),
			Confidence: confidence,
			DetectedAt: now,
		})
	}

	// La severidad global se recalcula siempre desde los indicadores para
	// sostener el invariante del maximo, aunque el LLM diga otra cosa.
	severityLevel, immediate := AggregateSeverity(indicators)

	return domain.CrisisAssessment{
		UserID:                  userID,
		Indicators:              indicators,
		SeverityLevel:           severityLevel,
		ImmediateActionRequired: immediate,
		Reasoning:               strings.TrimSpace(*parsed.Reasoning),
		Source:                  domain.SourceLLM,
		Timestamp:               now,
	}, nil
}

func buildCrisisPrompt(message string, recentMessages []domain.Message, recentEmotions []domain.EmotionState) string {
	var sb strings.Builder

	sb.WriteString("You are a mental health crisis assessment expert. Analyze this conversation for crisis indicators.\n\n")

	sb.WriteString("Recent conversation context:\n")
	start := len(recentMessages) - 5
	if start < 0 {
		start = 0
	}
	for _, msg := range recentMessages[start:] {
		speaker := "AI"
		if msg.Role == domain.RoleUser {
			speaker = "User"
		}
		sb.WriteString(speaker)
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
	}

	sb.WriteString("\nCurrent message: ")
	sb.WriteString(message)
	sb.WriteString("\n\nRecent emotional states:\n")
	emoStart := len(recentEmotions) - 3
	if emoStart < 0 {
		emoStart = 0
	}
	for _, state := range recentEmotions[emoStart:] {
		sb.WriteString("- ")
		if len(state.Emotions) > 0 {
			sb.WriteString(strings.Join(state.Emotions, ", "))
		} else {
			sb.WriteString("unknown")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(`
Assessment Instructions:
1. Evaluate the message and context for signs of:
   - Suicidal ideation or self-harm thoughts
   - Severe depression or hopelessness
   - Substance abuse issues
   - Eating disorders
   - Panic attacks or severe anxiety
2. Consider cultural context (Indian youth mental health)
3. Assess need for immediate professional intervention
4. Evaluate overall risk level

Valid categories: suicidal_ideation, self_harm, severe_depression, substance_abuse, eating_disorder, panic_attack, persistent_negative_emotions

Return ONLY a JSON object with this EXACT schema - do not modify or add fields:
{
    "indicators": [
        {
            "category": "string",
            "severity": 5,
            "evidence": "string",
            "confidence": 0.9
        }
    ],
    "severity_level": 5,
    "immediate_action_required": true,
    "reasoning": "string"
}

IMPORTANT:
- Only return valid JSON
- Do not add or change field names
- severity must be a number 1-5
- confidence must be a number 0.1-1.0
- Do not include any explanation text, ONLY the JSON object`)

	return sb.String()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
