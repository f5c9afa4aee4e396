package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"mindcare-llm/internal/domain"
	"mindcare-llm/internal/llm"
	"mindcare-llm/internal/repository"
)

// Respuestas estaticas por nivel de severidad cuando el LLM no responde.
// En crisis el usuario nunca se queda sin contestacion.
var staticCrisisReplies = map[int]string{
	5: `I hear you're in intense pain right now. Your life has value, and help is available 24/7.

IMMEDIATE SUPPORT AVAILABLE:
- KIRAN Mental Health Helpline: 1800-599-0019
- Emergency: Dial 112
- AASRA: +91-9820466726

Would you be willing to speak with a counselor? I can help connect you right now.`,
	4: `I'm very concerned about what you're sharing. While I'm here to listen, I believe speaking with a professional would be really helpful right now.

Would you be open to exploring professional support? I can help you find someone who specializes in this area.`,
	3: `What you're going through sounds really challenging. While I'm here to support you, I think speaking with a mental health professional could provide you with better strategies and support.

Would you like to learn more about professional counseling options?`,
}

// ChatResult agrupa la respuesta generada con los metadatos del analisis.
type ChatResult struct {
	Reply        domain.Message             `json:"reply"`
	Emotion      domain.EmotionState        `json:"emotion"`
	Assessment   domain.CrisisAssessment    `json:"assessment"`
	Trend        domain.RiskTrendState      `json:"trend"`
	Intervention *domain.InterventionRecord `json:"intervention,omitempty"`
	Resources    *domain.ResourceListing    `json:"resources,omitempty"`
	UsedFallback bool                       `json:"used_fallback"`
}

// SupportService orquesta el flujo completo de un mensaje: emociones,
// evaluacion de crisis, tendencia de riesgo, prompt personalizado,
// generacion de respuesta y agente de cuidado.
type SupportService struct {
	logger         *zap.Logger
	llmClient      llm.LLMClient
	embedder       llm.EmbeddingClient
	messageRepo    repository.MessageRepository
	profileRepo    repository.ProfileRepository
	memoryRepo     repository.MemoryRepository
	emotionRepo    repository.EmotionRepository
	emotionService *EmotionService
	assessor       *CrisisAssessor
	careService    *CareService
	trends         *RiskTrendTracker
	contextService ContextService
	promptBuilder  SupportPromptBuilder
}

func NewSupportService(
	logger *zap.Logger,
	llmClient llm.LLMClient,
	embedder llm.EmbeddingClient,
	messageRepo repository.MessageRepository,
	profileRepo repository.ProfileRepository,
	memoryRepo repository.MemoryRepository,
	emotionRepo repository.EmotionRepository,
	emotionService *EmotionService,
	assessor *CrisisAssessor,
	careService *CareService,
	trends *RiskTrendTracker,
	contextService ContextService,
) *SupportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupportService{
		logger:         logger,
		llmClient:      llmClient,
		embedder:       embedder,
		messageRepo:    messageRepo,
		profileRepo:    profileRepo,
		memoryRepo:     memoryRepo,
		emotionRepo:    emotionRepo,
		emotionService: emotionService,
		assessor:       assessor,
		careService:    careService,
		trends:         trends,
		contextService: contextService,
		promptBuilder:  DefaultSupportPromptBuilder,
	}
}

// Chat procesa un mensaje del usuario de punta a punta y devuelve la
// respuesta con todos los metadatos del analisis.
func (s *SupportService) Chat(ctx context.Context, userID, sessionID, supportContext, userMessage string) (ChatResult, error) {
	if strings.TrimSpace(userMessage) == "" {
		return ChatResult{}, fmt.Errorf("message is empty")
	}

	userMsg := domain.Message{
		ID:        uuid.NewString(),
		UserID:    userID,
		SessionID: sessionID,
		Content:   userMessage,
		Role:      domain.RoleUser,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messageRepo.Create(ctx, userMsg); err != nil {
		return ChatResult{}, fmt.Errorf("persist user message: %w", err)
	}

	// 1. Lectura emocional del mensaje (con fallback neutro interno).
	emotion := s.emotionService.AnalyzeAndPersist(ctx, userID, userMsg.ID, userMessage)

	// 2. Historia reciente para el clasificador y el prompt.
	recentEmotions := s.recentEmotions(ctx, userID)
	recentMessages, err := s.contextService.RecentMessages(ctx, sessionID, 10)
	if err != nil {
		s.logger.Warn("load recent messages failed", zap.String("session_id", sessionID), zap.Error(err))
		recentMessages = nil
	}

	// 3. Evaluacion de crisis: LLM con fallback a palabras clave, nunca falla.
	assessment := s.assessor.Assess(ctx, userID, userMessage, recentMessages, recentEmotions)

	// 4. Registrar severidad en la ventana de tendencia.
	trend := s.trends.Record(userID, assessment.SeverityLevel)

	// 5. Perfil y recuerdos relevantes, ambos mejor esfuerzo.
	profile := s.loadProfile(ctx, userID)
	memories := s.searchMemories(ctx, userID, userMessage)

	// 6. Generar la respuesta de apoyo.
	prompt := s.promptBuilder.Build(supportContext, profile, memories, recentMessages, emotion, assessment, userMessage)
	replyText, usedFallback, err := s.generateReply(ctx, prompt, assessment)
	if err != nil {
		return ChatResult{}, err
	}

	reply := domain.Message{
		ID:        uuid.NewString(),
		UserID:    userID,
		SessionID: sessionID,
		Content:   replyText,
		Role:      domain.RoleAssistant,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messageRepo.Create(ctx, reply); err != nil {
		return ChatResult{}, fmt.Errorf("persist reply: %w", err)
	}

	result := ChatResult{
		Reply:        reply,
		Emotion:      emotion,
		Assessment:   assessment,
		Trend:        trend,
		UsedFallback: usedFallback,
	}

	if assessment.SeverityLevel >= 3 {
		resources := CrisisResources(assessment.SeverityLevel)
		result.Resources = &resources
	}

	// 7. Agente de cuidado: solo cuando hay senal que lo amerite, para no
	// gastar una llamada extra de LLM en cada mensaje.
	if s.careService != nil && (assessment.SeverityLevel >= 3 || trend.RequiresAttention) {
		s.careService.AnalyzePatterns(ctx, userID, recentMessages, recentEmotions, []domain.CrisisAssessment{assessment})
		if record, _ := s.careService.MaybeIntervene(ctx, userID, supportContext); record != nil {
			result.Intervention = record
		}
	}

	return result, nil
}

// generateReply llama al LLM; si falla y hay crisis detectada, usa la
// plantilla estatica del nivel para no dejar al usuario sin respuesta.
func (s *SupportService) generateReply(ctx context.Context, prompt string, assessment domain.CrisisAssessment) (string, bool, error) {
	reply, err := s.llmClient.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(reply) != "" {
		return strings.TrimSpace(reply), false, nil
	}
	if err != nil {
		s.logger.Warn("support reply generation failed", zap.Error(err))
	}

	severity := assessment.SeverityLevel
	if severity > 5 {
		severity = 5
	}
	for level := severity; level >= 3; level-- {
		if template, ok := staticCrisisReplies[level]; ok {
			return template, true, nil
		}
	}
	if err == nil {
		err = fmt.Errorf("llm empty response")
	}
	return "", false, fmt.Errorf("generate reply: %w", err)
}

// ConsolidateSession resume la sesion con el LLM y guarda el resumen
// como recuerdo con embedding para futuras busquedas por similitud.
func (s *SupportService) ConsolidateSession(ctx context.Context, userID, sessionID string) (*domain.SupportMemory, error) {
	messages, err := s.messageRepo.ListBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session messages: %w", err)
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("session has no messages")
	}

	var sb strings.Builder
	sb.WriteString("Summarize this mental health support conversation for future reference.\n\nConversation:\n")
	for _, msg := range messages {
		speaker := "MindCare"
		if msg.Role == domain.RoleUser {
			speaker = "User"
		}
		fmt.Fprintf(&sb, "%s: %s\n", speaker, msg.Content)
	}
	sb.WriteString(`
Return ONLY a JSON object:
{
  "summary": "third-person summary of what the user shared and how they felt",
  "key_concerns": ["concern1", "concern2"],
  "emotional_tone": "dominant emotional tone of the session"
}`)

	raw, err := s.llmClient.Generate(ctx, sb.String())
	if err != nil {
		return nil, fmt.Errorf("llm generate: %w", err)
	}
	jsonObj := extractFirstJSONObject(CleanLLMJSONResponse(raw))
	if jsonObj == "" {
		return nil, fmt.Errorf("no json object in response")
	}

	var parsed domain.SessionConsolidation
	if err := json.Unmarshal([]byte(jsonObj), &parsed); err != nil {
		return nil, fmt.Errorf("parse consolidation: %w", err)
	}
	if strings.TrimSpace(parsed.Summary) == "" {
		return nil, fmt.Errorf("consolidation without summary")
	}

	memory := domain.SupportMemory{
		ID:              uuid.NewString(),
		UserID:          userID,
		Content:         parsed.Summary,
		EmotionCategory: strings.ToLower(strings.TrimSpace(parsed.EmotionalTone)),
		CreatedAt:       time.Now().UTC(),
	}

	if s.embedder != nil {
		embed, err := s.embedder.CreateEmbedding(ctx, parsed.Summary)
		if err != nil {
			return nil, fmt.Errorf("create embedding: %w", err)
		}
		memory.Embedding = pgvector.NewVector(embed)
	}

	if err := s.memoryRepo.Create(ctx, memory); err != nil {
		return nil, fmt.Errorf("persist memory: %w", err)
	}
	return &memory, nil
}

func (s *SupportService) recentEmotions(ctx context.Context, userID string) []domain.EmotionState {
	if s.emotionRepo == nil {
		return nil
	}
	states, err := s.emotionRepo.ListRecentByUserID(ctx, userID, 5)
	if err != nil {
		s.logger.Warn("load recent emotions failed", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	return states
}

func (s *SupportService) loadProfile(ctx context.Context, userID string) *domain.UserProfile {
	if s.profileRepo == nil {
		return nil
	}
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil
	}
	return &profile
}

func (s *SupportService) searchMemories(ctx context.Context, userID, query string) []domain.SupportMemory {
	if s.memoryRepo == nil || s.embedder == nil {
		return nil
	}
	embed, err := s.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		s.logger.Warn("query embedding failed", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	memories, err := s.memoryRepo.Search(ctx, userID, pgvector.NewVector(embed), 5)
	if err != nil {
		s.logger.Warn("memory search failed", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	return memories
}
