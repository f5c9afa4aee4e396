package service

import (
	"fmt"
	"strings"

	"mindcare-llm/internal/domain"
)

// SupportPromptBuilder arma el prompt completo para el LLM de chat a
// partir del contexto de apoyo, el perfil, los recuerdos relevantes y la
// evaluacion de crisis del mensaje actual.
type SupportPromptBuilder struct{}

// DefaultSupportPromptBuilder permite uso directo sin instanciar.
var DefaultSupportPromptBuilder = SupportPromptBuilder{}

func (SupportPromptBuilder) Build(
	supportContext string,
	profile *domain.UserProfile,
	memories []domain.SupportMemory,
	recentMessages []domain.Message,
	emotion domain.EmotionState,
	assessment domain.CrisisAssessment,
	userMessage string,
) string {
	var sb strings.Builder

	// 1. Prompt base segun contexto
	sb.WriteString(ContextPrompt(supportContext))
	sb.WriteString("\n\n")

	// 2. Estilo derivado de preferencias
	mods := DeriveStyleModifiers(profile)
	sb.WriteString("Additional Style Instructions:\n")
	fmt.Fprintf(&sb, "- Communication Tone: %s\n", mods.Tone)
	fmt.Fprintf(&sb, "- Language Style: %s\n", mods.Language)
	if mods.UseEmojis {
		sb.WriteString("- Emoji Usage: use sparingly\n")
	} else {
		sb.WriteString("- Emoji Usage: avoid\n")
	}
	fmt.Fprintf(&sb, "- Hindi Usage: %s\n", mods.HindiUsage)
	fmt.Fprintf(&sb, "- Metaphor Style: %s\n", mods.Metaphors)
	fmt.Fprintf(&sb, "- Therapeutic Structure: %s\n", mods.Structure)
	fmt.Fprintf(&sb, "- Preferred Techniques: %s\n", strings.Join(mods.Techniques, ", "))
	fmt.Fprintf(&sb, "- Question Styles: %s\n\n", strings.Join(mods.QuestionStyles, ", "))

	// 3. Contexto del usuario desde onboarding
	if profile != nil {
		sb.WriteString("User Context:\n")
		fmt.Fprintf(&sb, "- Primary Concerns: %s\n", joinOrNotSpecified(profile.PrimaryConcerns))
		fmt.Fprintf(&sb, "- Therapy Goals: %s\n", joinOrNotSpecified(profile.TherapyGoals))
		fmt.Fprintf(&sb, "- Preferred Topics: %s\n", joinOrNotSpecified(profile.PreferredTopics))
		if strings.TrimSpace(profile.CulturalNotes) != "" {
			fmt.Fprintf(&sb, "- Cultural Background Notes: %s\n", profile.CulturalNotes)
		}
		sb.WriteString("\n")
	}

	// 4. Recuerdos relevantes (busqueda por similitud)
	if len(memories) > 0 {
		sb.WriteString("Relevant things the user has shared before:\n")
		for _, m := range memories {
			fmt.Fprintf(&sb, "- %s\n", m.Content)
		}
		sb.WriteString("\n")
	}

	// 5. Buffer de conversacion reciente
	if len(recentMessages) > 0 {
		sb.WriteString("Recent conversation:\n")
		for _, msg := range recentMessages {
			speaker := "MindCare"
			if msg.Role == domain.RoleUser {
				speaker = "User"
			}
			fmt.Fprintf(&sb, "%s: %s\n", speaker, msg.Content)
		}
		sb.WriteString("\n")
	}

	// 6. Estado emocional detectado
	if len(emotion.Emotions) > 0 {
		fmt.Fprintf(&sb, "Detected emotional state: %s (intensity %d/100)\n\n",
			strings.Join(emotion.Emotions, ", "), emotion.Intensity)
	}

	// 7. Protocolo de riesgo: manda sobre todo lo anterior
	if section := riskProtocolSection(assessment); section != "" {
		sb.WriteString(section)
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "User message: %q\n\n", userMessage)
	sb.WriteString("Respond as MindCare with a single supportive message. Plain text only, no JSON, no markdown headings.")

	return sb.String()
}

// riskProtocolSection agrega instrucciones obligatorias segun la
// severidad evaluada. Con severidad 0 no agrega nada.
func riskProtocolSection(assessment domain.CrisisAssessment) string {
	if assessment.SeverityLevel <= 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("CRISIS PROTOCOL (overrides all style instructions):\n")
	fmt.Fprintf(&sb, "- Detected crisis severity: %d/5\n", assessment.SeverityLevel)

	switch {
	case assessment.ImmediateActionRequired:
		sb.WriteString("- The user may be at immediate risk. Respond with calm, direct care.\n")
		sb.WriteString("- Acknowledge their pain without judgment and tell them help is available right now.\n")
		sb.WriteString("- Share these helplines explicitly: KIRAN Mental Health Helpline 1800-599-0019 (24/7), AASRA +91-9820466726, Emergency 112.\n")
		sb.WriteString("- Gently ask if they would be willing to speak with a counselor now.\n")
	case assessment.SeverityLevel >= 4:
		sb.WriteString("- Express serious concern and strongly encourage speaking with a mental health professional.\n")
		sb.WriteString("- Offer to share helpline numbers if they want them.\n")
	default:
		sb.WriteString("- Acknowledge that what they are going through sounds really challenging.\n")
		sb.WriteString("- Suggest that a mental health professional could provide better strategies and support.\n")
	}

	return sb.String()
}

func joinOrNotSpecified(items []string) string {
	if len(items) == 0 {
		return "Not specified"
	}
	return strings.Join(items, ", ")
}
