package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"mindcare-llm/internal/domain"
)

// CheckinService orquesta el check-in diario: preguntas fijas de animo
// cuyas respuestas pasan por el analisis emocional.
type CheckinService struct {
	logger     *zap.Logger
	emotionSvc *EmotionService
	analyzeFn  func(ctx context.Context, userID, messageID, text string) domain.EmotionState
}

var (
	ErrCheckinNotConfigured = errors.New("checkin service not configured")
	ErrCheckinInvalidInput  = errors.New("checkin invalid input")
)

func NewCheckinService(logger *zap.Logger, emotionSvc *EmotionService) *CheckinService {
	svc := &CheckinService{
		logger:     logger,
		emotionSvc: emotionSvc,
	}
	if emotionSvc != nil {
		svc.analyzeFn = emotionSvc.AnalyzeAndPersist
	}
	return svc
}

// CheckinQuestions devuelve el cuestionario fijo del check-in diario.
func (s *CheckinService) CheckinQuestions() []string {
	return []string{
		"How are you feeling right now, in your own words?",
		"What was the best part of your day so far?",
		"Is anything weighing on your mind today?",
		"How did you sleep last night?",
		"On a scale of 1 to 10, how stressed do you feel today?",
		"Did you get a chance to do something just for yourself today?",
	}
}

// AnalyzeCheckinResponses concatena las respuestas y las pasa por el
// analisis emocional para registrar la lectura del dia.
func (s *CheckinService) AnalyzeCheckinResponses(ctx context.Context, userID string, responses map[string]string) (domain.EmotionState, error) {
	if s == nil || s.analyzeFn == nil {
		return domain.EmotionState{}, ErrCheckinNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" || len(responses) == 0 {
		return domain.EmotionState{}, ErrCheckinInvalidInput
	}

	checkinText := s.buildCheckinText(responses)

	if s.logger != nil {
		s.logger.Info("analyzing daily checkin", zap.String("user_id", userID))
	}

	state := s.analyzeFn(ctx, userID, "", checkinText)
	return state, nil
}

func (s *CheckinService) buildCheckinText(responses map[string]string) string {
	var fullText strings.Builder
	fullText.WriteString("Daily check-in answers from the user:\n")

	preferredOrder := s.CheckinQuestions()
	used := make(map[string]struct{}, len(preferredOrder))

	for _, question := range preferredOrder {
		answer, ok := responses[question]
		if !ok {
			continue
		}
		fmt.Fprintf(&fullText, "Q: %s\nA: %s\n---\n", strings.TrimSpace(question), strings.TrimSpace(answer))
		used[question] = struct{}{}
	}

	var extras []string
	for question := range responses {
		if _, ok := used[question]; !ok {
			extras = append(extras, question)
		}
	}
	sort.Strings(extras)
	for _, question := range extras {
		fmt.Fprintf(&fullText, "Q: %s\nA: %s\n---\n", strings.TrimSpace(question), strings.TrimSpace(responses[question]))
	}

	return fullText.String()
}
