package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mindcare-llm/internal/domain"
	"mindcare-llm/internal/llm"
	"mindcare-llm/internal/repository"
)

// EmotionService infiere el estado emocional de cada mensaje con el LLM
// y lo persiste para alimentar la deteccion de crisis y los reportes.
type EmotionService struct {
	logger      *zap.Logger
	llmClient   llm.LLMClient
	emotionRepo repository.EmotionRepository
}

func NewEmotionService(logger *zap.Logger, llmClient llm.LLMClient, emotionRepo repository.EmotionRepository) *EmotionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmotionService{
		logger:      logger,
		llmClient:   llmClient,
		emotionRepo: emotionRepo,
	}
}

type emotionAnalysisResponse struct {
	Emotions  []string `json:"emotions"`
	Primary   string   `json:"primary_emotion"`
	Intensity int      `json:"intensity"`
}

// Analyze etiqueta las emociones del mensaje. Si el LLM falla devuelve
// una lectura neutra en vez de error: una emocion no etiquetada nunca
// debe frenar el flujo del chat.
func (s *EmotionService) Analyze(ctx context.Context, userID, messageID, text string) domain.EmotionState {
	state := domain.EmotionState{
		ID:        uuid.NewString(),
		UserID:    userID,
		MessageID: messageID,
		Emotions:  []string{"neutral"},
		Primary:   "neutral",
		Intensity: 0,
		CreatedAt: time.Now().UTC(),
	}

	parsed, err := s.runAnalysis(ctx, text)
	if err != nil {
		s.logger.Warn("emotion analysis failed, using neutral reading",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return state
	}

	if len(parsed.Emotions) > 0 {
		emotions := make([]string, 0, len(parsed.Emotions))
		for _, e := range parsed.Emotions {
			e = strings.ToLower(strings.TrimSpace(e))
			if e != "" {
				emotions = append(emotions, e)
			}
		}
		if len(emotions) > 0 {
			state.Emotions = emotions
			state.Primary = emotions[0]
		}
	}
	if primary := strings.ToLower(strings.TrimSpace(parsed.Primary)); primary != "" {
		state.Primary = primary
	}
	state.Intensity = clampInt(parsed.Intensity, 0, 100)
	return state
}

// AnalyzeAndPersist etiqueta y guarda la lectura. El error de persistencia
// se loguea pero no se propaga.
func (s *EmotionService) AnalyzeAndPersist(ctx context.Context, userID, messageID, text string) domain.EmotionState {
	state := s.Analyze(ctx, userID, messageID, text)
	if s.emotionRepo != nil {
		if err := s.emotionRepo.Create(ctx, state); err != nil {
			s.logger.Warn("emotion state persist failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}
	return state
}

func (s *EmotionService) runAnalysis(ctx context.Context, text string) (emotionAnalysisResponse, error) {
	if s.llmClient == nil {
		return emotionAnalysisResponse{}, fmt.Errorf("llm client not configured")
	}

	prompt := `You are an emotion analysis expert for a youth mental health support service. Analyze the emotional content of the user's message.

Return ONLY a JSON object:
{
  "emotions": ["sadness", "anxiety"],
  "primary_emotion": "sadness",
  "intensity": 65
}

Rules:
- emotions: lowercase labels such as joy, sadness, anger, fear, anxiety, despair, hopelessness, loneliness, calm, neutral
- primary_emotion: the dominant label
- intensity: 0-100 where 0-20 is trivial chatter and 81-100 is acute distress

User message:
` + strings.TrimSpace(text)

	raw, err := s.llmClient.Generate(ctx, prompt)
	if err != nil {
		return emotionAnalysisResponse{}, fmt.Errorf("llm generate: %w", err)
	}

	jsonObj := extractFirstJSONObject(CleanLLMJSONResponse(raw))
	if jsonObj == "" {
		return emotionAnalysisResponse{}, fmt.Errorf("no json object in response")
	}

	var parsed emotionAnalysisResponse
	if err := json.Unmarshal([]byte(jsonObj), &parsed); err != nil {
		return emotionAnalysisResponse{}, fmt.Errorf("parse llm response: %w", err)
	}
	return parsed, nil
}
