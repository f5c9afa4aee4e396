package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"mindcare-llm/internal/domain"
	"mindcare-llm/internal/repository"
	"mindcare-llm/internal/service"
)

const (
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorReset  = "\033[0m"
)

type Scenario struct {
	Input             string
	Emotions          []domain.EmotionState
	ExpectedSeverity  int
	ExpectedImmediate bool
}

// Harness offline del pipeline de crisis: corre los escenarios contra el
// detector por palabras clave, la tendencia de riesgo y la politica de
// intervencion, sin base de datos ni LLM.
func main() {
	ctx := context.Background()
	logger := zap.NewNop()

	assessor := service.NewCrisisAssessor(logger, nil)
	store := repository.NewMemoryCareStateStore()
	trends := service.NewRiskTrendTracker(store)
	policy := service.NewInterventionPolicy(logger, store, service.NewMemoryCooldownStore(), time.Hour)

	sadEmotions := repeatedEmotion("sadness", 4)

	scenarios := []Scenario{
		{Input: "I want to kill myself", ExpectedSeverity: 5, ExpectedImmediate: true},
		{Input: "I want to hurt myself when things get bad", ExpectedSeverity: 4, ExpectedImmediate: true},
		{Input: "Everything feels hopeless and worthless", ExpectedSeverity: 4, ExpectedImmediate: false},
		{Input: "I had a normal day at college", Emotions: sadEmotions, ExpectedSeverity: 3, ExpectedImmediate: false},
		{Input: "I'm a bit tired today", ExpectedSeverity: 0, ExpectedImmediate: false},
	}

	userID := "crisis-check-user"
	passed := 0
	for _, sc := range scenarios {
		fmt.Printf("%s[Input]%s %s\n", colorCyan, colorReset, sc.Input)

		assessment := assessor.Assess(ctx, userID, sc.Input, nil, sc.Emotions)
		trend := trends.Record(userID, assessment.SeverityLevel)

		ok := assessment.SeverityLevel == sc.ExpectedSeverity && assessment.ImmediateActionRequired == sc.ExpectedImmediate
		if ok {
			passed++
		}

		status := colorGreen + "OK" + colorReset
		if !ok {
			status = colorRed + "MISMATCH" + colorReset
		}
		fmt.Printf("  severity=%d immediate=%v source=%s trend=%s [%s]\n",
			assessment.SeverityLevel, assessment.ImmediateActionRequired, assessment.Source, trend.Trend, status)
		for _, ind := range assessment.Indicators {
			fmt.Printf("  %s- %s (conf %.1f): %s%s\n", colorYellow, ind.Category, ind.Confidence, ind.Evidence, colorReset)
		}
		fmt.Println()
	}

	// La politica deberia intervenir una vez y despues respetar el cooldown.
	patterns := domain.PatternAnalysis{
		UserID: userID,
		IdentifiedPatterns: []domain.IdentifiedPattern{
			{PatternType: "escalating distress", UrgencyLevel: 4},
		},
	}
	intervene, reason, urgency := policy.ShouldIntervene(userID, patterns)
	fmt.Printf("first intervention check: intervene=%v reason=%s urgency=%d\n", intervene, reason, urgency)
	if !intervene {
		log.Fatal("expected first high urgency check to intervene")
	}
	policy.RecordIntervention(userID, reason, urgency, domain.InterventionPlan{InterventionType: "supportive_message"})

	intervene, reason, _ = policy.ShouldIntervene(userID, patterns)
	fmt.Printf("second intervention check: intervene=%v reason=%s\n\n", intervene, reason)
	if intervene || reason != domain.ReasonTooRecent {
		log.Fatal("expected cooldown to suppress second intervention")
	}

	fmt.Printf("==== %d/%d scenarios matched ====\n", passed, len(scenarios))
	if passed != len(scenarios) {
		log.Fatal("crisis check failed")
	}
}

func repeatedEmotion(name string, count int) []domain.EmotionState {
	out := make([]domain.EmotionState, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, domain.EmotionState{
			Emotions:  []string{name},
			Primary:   name,
			Intensity: 70,
			CreatedAt: time.Now().UTC(),
		})
	}
	return out
}
