package service

import (
	"fmt"
	"strings"
	"time"

	"mindcare-llm/internal/domain"
)

// crisisPattern define una categoria de riesgo con su severidad fija y
// las palabras/frases que la disparan. El orden del slice es el orden de
// evaluacion, asi dos corridas sobre el mismo mensaje producen la misma
// lista de indicadores.
type crisisPattern struct {
	category domain.CrisisCategory
	severity int
	keywords []string
}

// Incluye variantes en hindi/devanagari porque el publico objetivo
// escribe mezclando idiomas.
var crisisPatterns = []crisisPattern{
	{
		category: domain.CategorySuicidalIdeation,
		severity: 5,
		keywords: []string{
			"suicide", "kill myself", "end it all", "want to die",
			"better off dead", "no reason to live", "cant go on",
			"आत्महत्या", "मरना चाहता", "जीने का मन नहीं",
		},
	},
	{
		category: domain.CategorySelfHarm,
		severity: 4,
		keywords: []string{
			"cut myself", "hurt myself", "self harm", "self-harm",
			"harm myself", "punish myself", "खुद को नुकसान",
		},
	},
	{
		category: domain.CategorySevereDepression,
		severity: 4,
		keywords: []string{
			"completely hopeless", "cant cope anymore", "given up",
			"too much pain", "trapped", "no way out", "worthless",
			"बहुत निराश", "कोई उम्मीद नहीं",
		},
	},
	{
		category: domain.CategorySubstanceAbuse,
		severity: 3,
		keywords: []string{
			"overdose", "drunk all day", "using drugs", "cant stop drinking",
			"addiction", "substance abuse", "नशा", "शराब",
		},
	},
	{
		category: domain.CategoryEatingDisorder,
		severity: 3,
		keywords: []string{
			"starving myself", "purging", "anorexia", "bulimia",
			"binge eating", "cant eat", "hate eating",
		},
	},
	{
		category: domain.CategoryPanicAttack,
		severity: 3,
		keywords: []string{
			"cant breathe", "heart racing", "panic attack", "anxiety attack",
			"feeling faint", "दिल तेज धड़क रहा", "सांस नहीं आ रही",
		},
	},
}

var concerningEmotions = map[string]struct{}{
	"sadness":      {},
	"despair":      {},
	"hopelessness": {},
	"anxiety":      {},
}

const (
	keywordConfidence         = 0.7
	emotionTrendConfidence    = 0.6
	emotionWindowSize         = 5
	emotionWindowThreshold    = 4
	persistentEmotionSeverity = 3
)

// KeywordMatcher detecta indicadores de crisis por substring sobre la
// taxonomia fija. No tiene dependencias externas y nunca falla: es el
// piso duro del sistema cuando el LLM no responde.
type KeywordMatcher struct{}

// DefaultKeywordMatcher permite uso directo sin instanciar.
var DefaultKeywordMatcher = KeywordMatcher{}

// Match evalua el mensaje y la historia emocional reciente. Cada
// categoria dispara a lo sumo una vez (gana la primera palabra que
// matchea, con la severidad fija de la categoria).
func (KeywordMatcher) Match(message string, emotionHistory []domain.EmotionState) []domain.CrisisIndicator {
	now := time.Now().UTC()
	lower := strings.ToLower(message)

	var indicators []domain.CrisisIndicator
	if strings.TrimSpace(lower) != "" {
		for _, pattern := range crisisPatterns {
			for _, keyword := range pattern.keywords {
				if strings.Contains(lower, strings.ToLower(keyword)) {
					indicators = append(indicators, domain.CrisisIndicator{
						Category:   pattern.category,
						Severity:   pattern.severity,
						Evidence:   fmt.Sprintf("matched keyword: %s", keyword),
						Confidence: keywordConfidence,
						DetectedAt: now,
					})
					break
				}
			}
		}
	}

	// Ventana emocional: si 4 de las ultimas 5 lecturas traen una emocion
	// preocupante, se emite un indicador sintetico de negatividad persistente.
	if concerning := countConcerningEntries(emotionHistory); concerning >= emotionWindowThreshold {
		indicators = append(indicators, domain.CrisisIndicator{
			Category:   domain.CategoryPersistentNegativeEmotions,
			Severity:   persistentEmotionSeverity,
			Evidence:   fmt.Sprintf("found %d concerning emotion readings in recent history", concerning),
			Confidence: emotionTrendConfidence,
			DetectedAt: now,
		})
	}

	return indicators
}

func countConcerningEntries(history []domain.EmotionState) int {
	if len(history) == 0 {
		return 0
	}
	start := len(history) - emotionWindowSize
	if start < 0 {
		start = 0
	}
	count := 0
	for _, state := range history[start:] {
		for _, emotion := range state.Emotions {
			if _, ok := concerningEmotions[strings.ToLower(strings.TrimSpace(emotion))]; ok {
				count++
				break
			}
		}
	}
	return count
}
