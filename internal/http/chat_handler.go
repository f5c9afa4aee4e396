package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"mindcare-llm/internal/domain"
	"mindcare-llm/internal/repository"
	"mindcare-llm/internal/service"
	"mindcare-llm/internal/tts"
)

// ChatHandler mantiene dependencias para endpoints de sesiones y chat.
type ChatHandler struct {
	logger      *zap.Logger
	sessions    repository.SessionRepository
	messages    repository.MessageRepository
	supportServ *service.SupportService
	synthesizer tts.Synthesizer
	ttsVoice    string
	chatLimiter service.RateLimiter
}

// NewChatHandler crea una instancia de ChatHandler con dependencias necesarias.
func NewChatHandler(
	logger *zap.Logger,
	sessions repository.SessionRepository,
	messages repository.MessageRepository,
	supportServ *service.SupportService,
	synthesizer tts.Synthesizer,
	ttsVoice string,
	chatLimiter service.RateLimiter,
) *ChatHandler {
	return &ChatHandler{
		logger:      logger,
		sessions:    sessions,
		messages:    messages,
		supportServ: supportServ,
		synthesizer: synthesizer,
		ttsVoice:    ttsVoice,
		chatLimiter: chatLimiter,
	}
}

// CreateSession maneja POST /sessions.
func (h *ChatHandler) CreateSession(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		SupportContext string `json:"support_context"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create session request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.SupportContext == "" {
		req.SupportContext = "general"
	}

	session := domain.Session{
		ID:             uuid.NewString(),
		UserID:         claims.UserID,
		Token:          uuid.NewString(),
		SupportContext: req.SupportContext,
		ExpiresAt:      time.Now().UTC().Add(24 * time.Hour),
		CreatedAt:      time.Now().UTC(),
	}

	if err := h.sessions.Create(c.Request.Context(), session); err != nil {
		h.logger.Error("create session failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create session"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// PostMessage maneja POST /chat.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		SessionID string `json:"session_id" binding:"required"`
		Content   string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if h.chatLimiter != nil && !h.chatLimiter.Allow(claims.UserID) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many messages"})
		return
	}

	session, err := h.loadOwnedSession(c, claims.UserID, req.SessionID)
	if err != nil {
		return
	}

	result, err := h.supportServ.Chat(c.Request.Context(), claims.UserID, session.ID, session.SupportContext, req.Content)
	if err != nil {
		h.logger.Error("chat failed", zap.Error(err), zap.String("user_id", claims.UserID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate response"})
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListMessages maneja GET /sessions/:id/messages.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	session, err := h.loadOwnedSession(c, claims.UserID, c.Param("id"))
	if err != nil {
		return
	}

	messages, err := h.messages.ListBySessionID(c.Request.Context(), session.ID)
	if err != nil {
		h.logger.Error("list messages failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// ConsolidateSession maneja POST /sessions/:id/consolidate.
func (h *ChatHandler) ConsolidateSession(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	session, err := h.loadOwnedSession(c, claims.UserID, c.Param("id"))
	if err != nil {
		return
	}

	memory, err := h.supportServ.ConsolidateSession(c.Request.Context(), claims.UserID, session.ID)
	if err != nil {
		h.logger.Error("consolidate session failed", zap.Error(err), zap.String("session_id", session.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not consolidate session"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"memory": memory})
}

// Speak maneja POST /chat/tts: convierte texto de respuesta en audio.
func (h *ChatHandler) Speak(c *gin.Context) {
	if _, ok := GetAuthClaims(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Text    string `json:"text" binding:"required"`
		VoiceID string `json:"voice_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid tts request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if h.synthesizer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "tts unavailable"})
		return
	}

	voice := req.VoiceID
	if voice == "" {
		voice = h.ttsVoice
	}
	result, err := h.synthesizer.Synthesize(c.Request.Context(), req.Text, voice)
	if err != nil {
		if errors.Is(err, tts.ErrDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "tts unavailable"})
			return
		}
		h.logger.Error("tts synthesis failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not synthesize audio"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"audio": result})
}

// loadOwnedSession valida que la sesion exista, pertenezca al usuario
// autenticado y no este vencida. Escribe la respuesta de error si falla.
func (h *ChatHandler) loadOwnedSession(c *gin.Context, userID, sessionID string) (domain.Session, error) {
	session, err := h.sessions.GetByID(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return domain.Session{}, err
		}
		h.logger.Error("load session failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load session"})
		return domain.Session{}, err
	}
	if session.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "session does not belong to user"})
		return domain.Session{}, errors.New("session owner mismatch")
	}
	if time.Now().UTC().After(session.ExpiresAt) {
		c.JSON(http.StatusGone, gin.H{"error": "session expired"})
		return domain.Session{}, errors.New("session expired")
	}
	return session, nil
}
