package service

import (
	"reflect"
	"testing"

	"mindcare-llm/internal/domain"
)

func sadEmotion() domain.EmotionState {
	return domain.EmotionState{Emotions: []string{"sadness"}, Primary: "sadness"}
}

func calmEmotion() domain.EmotionState {
	return domain.EmotionState{Emotions: []string{"calm"}, Primary: "calm"}
}

func TestKeywordMatcherMatch(t *testing.T) {
	matcher := DefaultKeywordMatcher

	t.Run("ideacion suicida dispara severidad 5", func(t *testing.T) {
		indicators := matcher.Match("I want to kill myself", nil)
		if len(indicators) != 1 {
			t.Fatalf("expected 1 indicator, got %d", len(indicators))
		}
		ind := indicators[0]
		if ind.Category != domain.CategorySuicidalIdeation {
			t.Fatalf("unexpected category: %s", ind.Category)
		}
		if ind.Severity != 5 {
			t.Fatalf("expected severity 5, got %d", ind.Severity)
		}
		if ind.Confidence != keywordConfidence {
			t.Fatalf("expected confidence %.1f, got %.1f", keywordConfidence, ind.Confidence)
		}
		severity, immediate := AggregateSeverity(indicators)
		if severity != 5 || !immediate {
			t.Fatalf("expected (5, true), got (%d, %v)", severity, immediate)
		}
	})

	t.Run("mensaje benigno no dispara nada", func(t *testing.T) {
		if indicators := matcher.Match("I'm a bit tired today", nil); len(indicators) != 0 {
			t.Fatalf("expected no indicators, got %+v", indicators)
		}
	})

	t.Run("una categoria dispara a lo sumo una vez", func(t *testing.T) {
		indicators := matcher.Match("I think about suicide, I want to die", nil)
		if len(indicators) != 1 {
			t.Fatalf("expected 1 indicator for repeated category, got %d", len(indicators))
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		indicators := matcher.Match("SELF HARM is on my mind", nil)
		if len(indicators) != 1 || indicators[0].Category != domain.CategorySelfHarm {
			t.Fatalf("expected self_harm indicator, got %+v", indicators)
		}
	})

	t.Run("palabra clave en hindi", func(t *testing.T) {
		indicators := matcher.Match("मुझे लगता है आत्महत्या ही रास्ता है", nil)
		if len(indicators) != 1 || indicators[0].Category != domain.CategorySuicidalIdeation {
			t.Fatalf("expected suicidal_ideation indicator, got %+v", indicators)
		}
	})

	t.Run("dos corridas producen los mismos indicadores", func(t *testing.T) {
		msg := "I feel trapped and cant breathe, using drugs again"
		a := matcher.Match(msg, nil)
		b := matcher.Match(msg, nil)
		if len(a) != 3 {
			t.Fatalf("expected 3 indicators, got %d", len(a))
		}
		for i := range a {
			a[i].DetectedAt = b[i].DetectedAt
		}
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("expected identical indicator lists\nfirst:  %+v\nsecond: %+v", a, b)
		}
	})

	t.Run("ventana emocional 4 de 5", func(t *testing.T) {
		history := []domain.EmotionState{
			sadEmotion(), sadEmotion(), calmEmotion(), sadEmotion(), sadEmotion(),
		}
		indicators := matcher.Match("just checking in", history)
		if len(indicators) != 1 {
			t.Fatalf("expected 1 synthetic indicator, got %+v", indicators)
		}
		ind := indicators[0]
		if ind.Category != domain.CategoryPersistentNegativeEmotions {
			t.Fatalf("unexpected category: %s", ind.Category)
		}
		if ind.Severity != persistentEmotionSeverity {
			t.Fatalf("expected severity %d, got %d", persistentEmotionSeverity, ind.Severity)
		}
		if ind.Confidence != emotionTrendConfidence {
			t.Fatalf("expected confidence %.1f, got %.1f", emotionTrendConfidence, ind.Confidence)
		}
	})

	t.Run("ventana emocional 3 de 5 no dispara", func(t *testing.T) {
		history := []domain.EmotionState{
			sadEmotion(), sadEmotion(), calmEmotion(), sadEmotion(), calmEmotion(),
		}
		if indicators := matcher.Match("just checking in", history); len(indicators) != 0 {
			t.Fatalf("expected no indicators, got %+v", indicators)
		}
	})

	t.Run("solo cuentan las ultimas 5 lecturas", func(t *testing.T) {
		// Cuatro lecturas tristes viejas seguidas de cinco calmas: la
		// ventana solo ve las calmas.
		history := []domain.EmotionState{
			sadEmotion(), sadEmotion(), sadEmotion(), sadEmotion(),
			calmEmotion(), calmEmotion(), calmEmotion(), calmEmotion(), calmEmotion(),
		}
		if indicators := matcher.Match("just checking in", history); len(indicators) != 0 {
			t.Fatalf("expected no indicators, got %+v", indicators)
		}
	})

	t.Run("mensaje vacio con historia preocupante", func(t *testing.T) {
		history := []domain.EmotionState{
			sadEmotion(), sadEmotion(), sadEmotion(), sadEmotion(),
		}
		indicators := matcher.Match("   ", history)
		if len(indicators) != 1 || indicators[0].Category != domain.CategoryPersistentNegativeEmotions {
			t.Fatalf("expected only the synthetic indicator, got %+v", indicators)
		}
	})
}

func TestAggregateSeverity(t *testing.T) {
	t.Run("sin indicadores", func(t *testing.T) {
		severity, immediate := AggregateSeverity(nil)
		if severity != 0 || immediate {
			t.Fatalf("expected (0, false), got (%d, %v)", severity, immediate)
		}
	})

	t.Run("maximo de severidades", func(t *testing.T) {
		indicators := []domain.CrisisIndicator{
			{Category: domain.CategoryPanicAttack, Severity: 3},
			{Category: domain.CategorySevereDepression, Severity: 4},
		}
		severity, immediate := AggregateSeverity(indicators)
		if severity != 4 || immediate {
			t.Fatalf("expected (4, false), got (%d, %v)", severity, immediate)
		}
	})

	t.Run("self harm fuerza accion inmediata", func(t *testing.T) {
		indicators := []domain.CrisisIndicator{
			{Category: domain.CategorySelfHarm, Severity: 4},
		}
		severity, immediate := AggregateSeverity(indicators)
		if severity != 4 || !immediate {
			t.Fatalf("expected (4, true), got (%d, %v)", severity, immediate)
		}
	})
}
