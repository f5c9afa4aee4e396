package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mindcare-llm/internal/domain"
)

// crisisClassifier es la etapa falible (LLM) de la evaluacion.
type crisisClassifier interface {
	Classify(ctx context.Context, userID, message string, recentMessages []domain.Message, recentEmotions []domain.EmotionState) (domain.CrisisAssessment, error)
}

// CrisisAssessor compone el clasificador LLM con el matcher de palabras
// clave: se intenta el LLM una sola vez y cualquier falla cae al matcher.
// Assess nunca devuelve error; el caller siempre recibe una evaluacion valida.
type CrisisAssessor struct {
	logger     *zap.Logger
	classifier crisisClassifier
	matcher    KeywordMatcher
}

func NewCrisisAssessor(logger *zap.Logger, classifier crisisClassifier) *CrisisAssessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CrisisAssessor{
		logger:     logger,
		classifier: classifier,
		matcher:    DefaultKeywordMatcher,
	}
}

func (a *CrisisAssessor) Assess(
	ctx context.Context,
	userID string,
	message string,
	recentMessages []domain.Message,
	recentEmotions []domain.EmotionState,
) domain.CrisisAssessment {
	if a.classifier != nil {
		assessment, err := a.classifier.Classify(ctx, userID, message, recentMessages, recentEmotions)
		if err == nil {
			return assessment
		}
		a.logger.Warn("llm crisis classification failed, using keyword fallback",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
	return a.assessWithKeywords(userID, message, recentEmotions)
}

func (a *CrisisAssessor) assessWithKeywords(userID, message string, recentEmotions []domain.EmotionState) domain.CrisisAssessment {
	indicators := a.matcher.Match(message, recentEmotions)
	severity, immediate := AggregateSeverity(indicators)
	return domain.CrisisAssessment{
		UserID:                  userID,
		Indicators:              indicators,
		SeverityLevel:           severity,
		ImmediateActionRequired: immediate,
		Reasoning:               "analysis based on pattern matching (fallback mode)",
		Source:                  domain.SourceKeyword,
		Timestamp:               time.Now().UTC(),
	}
}
