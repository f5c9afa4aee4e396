package service

import (
	"strings"

	"mindcare-llm/internal/domain"
)

// StyleModifiers son las instrucciones de estilo derivadas del perfil.
type StyleModifiers struct {
	Tone           string
	Language       string
	UseEmojis      bool
	HindiUsage     string
	Metaphors      string
	Techniques     []string
	QuestionStyles []string
	Structure      string
}

type communicationStyle struct {
	tone       string
	language   string
	emojis     bool
	hindiUsage string
	metaphors  string
}

var communicationStyles = map[string]communicationStyle{
	"formal": {
		tone:       "professional and structured",
		language:   "formal but warm",
		emojis:     false,
		hindiUsage: "minimal",
		metaphors:  "professional",
	},
	"casual": {
		tone:       "friendly and conversational",
		language:   "simple and relatable",
		emojis:     true,
		hindiUsage: "moderate",
		metaphors:  "everyday life",
	},
	"supportive": {
		tone:       "warm and encouraging",
		language:   "nurturing and validating",
		emojis:     true,
		hindiUsage: "frequent",
		metaphors:  "comforting",
	},
	"balanced": {
		tone:       "professional yet warm",
		language:   "balanced and adaptable",
		emojis:     true,
		hindiUsage: "selective",
		metaphors:  "balanced",
	},
}

type therapyStyle struct {
	techniques    []string
	questionStyle string
	goalOriented  bool
}

var therapyStyles = map[string]therapyStyle{
	"cbt": {
		techniques:    []string{"thought challenging", "behavioral activation", "cognitive restructuring"},
		questionStyle: "socratic",
		goalOriented:  true,
	},
	"mindfulness": {
		techniques:    []string{"meditation", "grounding", "breath awareness"},
		questionStyle: "exploratory",
	},
	"solution_focused": {
		techniques:    []string{"miracle question", "scaling", "exception finding"},
		questionStyle: "goal-directed",
		goalOriented:  true,
	},
	"supportive": {
		techniques:    []string{"active listening", "reflection", "validation"},
		questionStyle: "empathetic",
	},
}

var languageHindiUsage = map[string]string{
	"english":  "avoid",
	"hindi":    "frequent",
	"balanced": "selective",
}

// DeriveStyleModifiers mapea las preferencias del perfil a modificadores
// de estilo. Con perfil nil devuelve el estilo balanceado por defecto.
func DeriveStyleModifiers(profile *domain.UserProfile) StyleModifiers {
	base := communicationStyles["balanced"]
	therapyNames := []string{"supportive"}
	language := "balanced"

	if profile != nil {
		if cs, ok := communicationStyles[strings.ToLower(strings.TrimSpace(profile.CommunicationStyle))]; ok {
			base = cs
		}
		if len(profile.PreferredTherapyStyle) > 0 {
			therapyNames = profile.PreferredTherapyStyle
		}
		if lang := strings.ToLower(strings.TrimSpace(profile.PreferredLanguage)); lang != "" {
			language = lang
		}
	}

	mods := StyleModifiers{
		Tone:       base.tone,
		Language:   base.language,
		UseEmojis:  base.emojis,
		HindiUsage: base.hindiUsage,
		Metaphors:  base.metaphors,
		Structure:  "balanced",
	}

	for _, name := range therapyNames {
		ts, ok := therapyStyles[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		mods.Techniques = append(mods.Techniques, ts.techniques...)
		mods.QuestionStyles = append(mods.QuestionStyles, ts.questionStyle)
		if ts.goalOriented {
			mods.Structure = "goal-oriented"
		}
	}
	if len(mods.Techniques) == 0 {
		mods.Techniques = therapyStyles["supportive"].techniques
		mods.QuestionStyles = []string{"empathetic"}
	}

	// La preferencia de idioma pisa el uso de hindi del estilo de comunicacion.
	if usage, ok := languageHindiUsage[language]; ok {
		mods.HindiUsage = usage
	}

	return mods
}
