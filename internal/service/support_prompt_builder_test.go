package service

import (
	"strings"
	"testing"

	"mindcare-llm/internal/domain"
)

func TestSupportPromptBuilderBuild(t *testing.T) {
	builder := DefaultSupportPromptBuilder

	t.Run("prompt minimo sin perfil", func(t *testing.T) {
		prompt := builder.Build("general", nil, nil, nil, domain.EmotionState{}, domain.CrisisAssessment{}, "hello")
		if !strings.Contains(prompt, `User message: "hello"`) {
			t.Fatalf("prompt missing user message:\n%s", prompt)
		}
		if strings.Contains(prompt, "CRISIS PROTOCOL") {
			t.Fatalf("no crisis protocol expected with severity 0")
		}
		if strings.Contains(prompt, "User Context:") {
			t.Fatalf("no user context section expected without profile")
		}
		if !strings.Contains(prompt, "Respond as MindCare") {
			t.Fatalf("prompt missing closing instruction")
		}
	})

	t.Run("perfil y recuerdos entran al prompt", func(t *testing.T) {
		profile := &domain.UserProfile{
			PrimaryConcerns: []string{"exam stress"},
			TherapyGoals:    []string{"sleep better"},
			CulturalNotes:   "lives in a joint family",
		}
		memories := []domain.SupportMemory{{Content: "user mentioned board exams in March"}}
		history := []domain.Message{
			{Role: domain.RoleUser, Content: "I am worried about results"},
			{Role: domain.RoleAssistant, Content: "that sounds stressful"},
		}
		emotion := domain.EmotionState{Emotions: []string{"anxiety"}, Intensity: 60}

		prompt := builder.Build("academic", profile, memories, history, emotion, domain.CrisisAssessment{}, "results tomorrow")
		for _, want := range []string{
			"exam stress",
			"sleep better",
			"joint family",
			"board exams in March",
			"User: I am worried about results",
			"MindCare: that sounds stressful",
			"anxiety (intensity 60/100)",
		} {
			if !strings.Contains(prompt, want) {
				t.Fatalf("prompt missing %q:\n%s", want, prompt)
			}
		}
	})

	t.Run("accion inmediata agrega lineas de ayuda", func(t *testing.T) {
		assessment := domain.CrisisAssessment{SeverityLevel: 5, ImmediateActionRequired: true}
		prompt := builder.Build("general", nil, nil, nil, domain.EmotionState{}, assessment, "msg")
		if !strings.Contains(prompt, "CRISIS PROTOCOL") {
			t.Fatalf("crisis protocol section missing")
		}
		if !strings.Contains(prompt, "1800-599-0019") || !strings.Contains(prompt, "112") {
			t.Fatalf("helplines missing from immediate action protocol:\n%s", prompt)
		}
	})

	t.Run("severidad 4 sin accion inmediata sugiere profesional", func(t *testing.T) {
		assessment := domain.CrisisAssessment{SeverityLevel: 4}
		prompt := builder.Build("general", nil, nil, nil, domain.EmotionState{}, assessment, "msg")
		if !strings.Contains(prompt, "strongly encourage speaking with a mental health professional") {
			t.Fatalf("expected severity 4 guidance:\n%s", prompt)
		}
		if strings.Contains(prompt, "1800-599-0019") {
			t.Fatalf("helpline numbers are reserved for immediate action")
		}
	})

	t.Run("severidad baja sugiere apoyo sin alarmar", func(t *testing.T) {
		assessment := domain.CrisisAssessment{SeverityLevel: 2}
		prompt := builder.Build("general", nil, nil, nil, domain.EmotionState{}, assessment, "msg")
		if !strings.Contains(prompt, "sounds really challenging") {
			t.Fatalf("expected low severity guidance:\n%s", prompt)
		}
	})
}
