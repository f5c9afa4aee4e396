package service

import (
	"sort"
	"strings"
	"time"

	"mindcare-llm/internal/domain"
)

// Listado estatico de recursos de crisis para India. No depende de red.
var (
	emergencyResources = []domain.CrisisResource{
		{Name: "Emergency Services", Contact: "112", Description: "National emergency number", Available: "24/7"},
	}
	helplineResources = []domain.CrisisResource{
		{Name: "KIRAN Mental Health Helpline", Contact: "1800-599-0019", Description: "Government mental health helpline (Hindi/English)", Available: "24/7"},
		{Name: "AASRA", Contact: "+91-9820466726", Description: "Suicide prevention helpline", Available: "24/7"},
		{Name: "Snehi Helpline", Contact: "+91-9582208181", Description: "Emotional support and counseling", Available: "24/7"},
	}
	selfCareResources = []domain.CrisisResource{
		{Name: "Grounding exercise", Description: "5-4-3-2-1 technique: name 5 things you see, 4 you can touch, 3 you hear, 2 you smell, 1 you taste"},
		{Name: "Box breathing", Description: "Breathe in 4s, hold 4s, out 4s, hold 4s; repeat for two minutes"},
		{Name: "Reach out", Description: "Message one trusted friend or family member about how you feel"},
	}
)

const resourcesDisclaimer = "MindCare provides emotional support, not medical care. If you are in danger, contact emergency services immediately."

// CrisisResources devuelve el listado apropiado segun la severidad.
// Con severidad >= 3 se incluye el nivel de ayuda inmediata.
func CrisisResources(severityLevel int) domain.ResourceListing {
	listing := domain.ResourceListing{
		SeverityLevel: severityLevel,
		Helplines:     helplineResources,
		SelfCare:      selfCareResources,
		Disclaimer:    resourcesDisclaimer,
	}
	if severityLevel >= 3 {
		listing.ImmediateHelp = emergencyResources
	}
	return listing
}

// Temas de conversacion detectables por pertenencia a conjuntos de
// palabras clave, con variantes en hindi.
var conversationThemes = []struct {
	name     string
	keywords []string
}{
	{"family", []string{"family", "parents", "siblings", "परिवार"}},
	{"academic", []string{"study", "exam", "school", "college", "पढ़ाई"}},
	{"social", []string{"friends", "relationship", "social", "दोस्त"}},
	{"career", []string{"job", "career", "future", "नौकरी"}},
	{"mental_health", []string{"anxiety", "depression", "stress", "तनाव"}},
}

// TherapistContextBuilder arma el reporte estructurado para derivar a un
// profesional. Es una transformacion pura de datos, sin LLM.
type TherapistContextBuilder struct{}

// DefaultTherapistContextBuilder permite uso directo sin instanciar.
var DefaultTherapistContextBuilder = TherapistContextBuilder{}

func (TherapistContextBuilder) Build(
	userID string,
	assessment domain.CrisisAssessment,
	conversationHistory []domain.Message,
	emotionHistory []domain.EmotionState,
) domain.TherapistReport {
	report := domain.TherapistReport{
		UserID:          userID,
		GeneratedAt:     time.Now().UTC(),
		SeverityLevel:   assessment.SeverityLevel,
		ImmediateAction: assessment.ImmediateActionRequired,
		CrisisIncidents: append([]domain.CrisisIndicator(nil), assessment.Indicators...),
		EngagementLevel: len(conversationHistory),
	}

	report.EmotionFrequency = tallyEmotions(emotionHistory)
	report.DominantEmotions = topEmotions(report.EmotionFrequency, 3)
	report.KeyThemes = extractThemes(conversationHistory)
	report.AINotes = buildAINotes(assessment.SeverityLevel, report.DominantEmotions, report.KeyThemes)
	return report
}

func tallyEmotions(history []domain.EmotionState) map[string]int {
	freq := make(map[string]int)
	for _, state := range history {
		for _, emotion := range state.Emotions {
			emotion = strings.ToLower(strings.TrimSpace(emotion))
			if emotion != "" {
				freq[emotion]++
			}
		}
	}
	return freq
}

func topEmotions(freq map[string]int, n int) []string {
	type pair struct {
		emotion string
		count   int
	}
	pairs := make([]pair, 0, len(freq))
	for emotion, count := range freq {
		pairs = append(pairs, pair{emotion, count})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].emotion < pairs[j].emotion
	})
	if len(pairs) > n {
		pairs = pairs[:n]
	}
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p.emotion)
	}
	return out
}

func extractThemes(conversationHistory []domain.Message) []string {
	var themes []string
	for _, theme := range conversationThemes {
		for _, msg := range conversationHistory {
			lower := strings.ToLower(msg.Content)
			matched := false
			for _, keyword := range theme.keywords {
				if strings.Contains(lower, keyword) {
					matched = true
					break
				}
			}
			if matched {
				themes = append(themes, theme.name)
				break
			}
		}
	}
	return themes
}

func buildAINotes(severityLevel int, dominantEmotions, themes []string) string {
	var notes []string

	if severityLevel >= 4 {
		notes = append(notes, "HIGH RISK: immediate attention recommended")
	} else if severityLevel == 3 {
		notes = append(notes, "MODERATE RISK: early intervention suggested")
	}

	if len(dominantEmotions) > 0 {
		notes = append(notes, "Primary emotional theme: "+dominantEmotions[0])
	}

	hasFamily := containsString(themes, "family")
	hasAcademic := containsString(themes, "academic")
	if hasFamily && hasAcademic {
		notes = append(notes, "Shows concurrent family and academic stressors")
	}
	if containsString(themes, "mental_health") {
		notes = append(notes, "Demonstrates awareness of mental health challenges")
	}

	return strings.Join(notes, " | ")
}

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
