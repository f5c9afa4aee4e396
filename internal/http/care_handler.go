package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mindcare-llm/internal/domain"
	"mindcare-llm/internal/repository"
	"mindcare-llm/internal/service"
)

// CareHandler expone recursos de crisis, tendencia de riesgo, reportes
// y las operaciones del agente de cuidado.
type CareHandler struct {
	logger      *zap.Logger
	careServ    *service.CareService
	trends      *service.RiskTrendTracker
	assessor    *service.CrisisAssessor
	checkinServ *service.CheckinService
	messages    repository.MessageRepository
	emotions    repository.EmotionRepository
}

func NewCareHandler(
	logger *zap.Logger,
	careServ *service.CareService,
	trends *service.RiskTrendTracker,
	assessor *service.CrisisAssessor,
	checkinServ *service.CheckinService,
	messages repository.MessageRepository,
	emotions repository.EmotionRepository,
) *CareHandler {
	return &CareHandler{
		logger:      logger,
		careServ:    careServ,
		trends:      trends,
		assessor:    assessor,
		checkinServ: checkinServ,
		messages:    messages,
		emotions:    emotions,
	}
}

// Resources maneja GET /care/resources. El parametro severity ajusta
// que tan visibles quedan las lineas de ayuda inmediata.
func (h *CareHandler) Resources(c *gin.Context) {
	severity := 0
	if raw := c.Query("severity"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > 5 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid severity"})
			return
		}
		severity = parsed
	}
	c.JSON(http.StatusOK, service.CrisisResources(severity))
}

// Trend maneja GET /care/trend.
func (h *CareHandler) Trend(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trend": h.trends.Current(claims.UserID)})
}

// TherapistReport maneja GET /care/report: resumen estructurado para
// compartir con un profesional.
func (h *CareHandler) TherapistReport(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	history, emotions, ok := h.loadHistory(c, claims.UserID)
	if !ok {
		return
	}

	lastMessage := ""
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == domain.RoleUser {
			lastMessage = history[i].Content
			break
		}
	}
	assessment := h.assessor.Assess(c.Request.Context(), claims.UserID, lastMessage, history, emotions)
	report := service.DefaultTherapistContextBuilder.Build(claims.UserID, assessment, history, emotions)
	c.JSON(http.StatusOK, gin.H{"report": report})
}

// Analyze maneja POST /care/analyze: corre el analisis de patrones y,
// si la politica lo permite, genera una intervencion proactiva.
func (h *CareHandler) Analyze(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		SupportContext string `json:"support_context"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.SupportContext == "" {
		req.SupportContext = "general"
	}

	history, emotions, ok := h.loadHistory(c, claims.UserID)
	if !ok {
		return
	}

	analysis := h.careServ.AnalyzePatterns(c.Request.Context(), claims.UserID, history, emotions, nil)
	record, reason := h.careServ.MaybeIntervene(c.Request.Context(), claims.UserID, req.SupportContext)

	resp := gin.H{"analysis": analysis, "reason": reason}
	if record != nil {
		resp["intervention"] = record
	}
	c.JSON(http.StatusOK, resp)
}

// Insights maneja GET /care/insights.
func (h *CareHandler) Insights(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	report, err := h.careServ.GenerateInsightReport(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("insight report failed", zap.Error(err), zap.String("user_id", claims.UserID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate insights"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": report})
}

// Activity maneja POST /care/activity: una actividad de bienestar
// personalizada al contexto de apoyo.
func (h *CareHandler) Activity(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		SupportContext string `json:"support_context"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.SupportContext == "" {
		req.SupportContext = "general"
	}

	activity, err := h.careServ.GenerateWellnessActivity(c.Request.Context(), claims.UserID, req.SupportContext)
	if err != nil {
		h.logger.Error("wellness activity failed", zap.Error(err), zap.String("user_id", claims.UserID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate activity"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": activity})
}

// CheckinQuestions maneja GET /checkin/questions.
func (h *CareHandler) CheckinQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"questions": h.checkinServ.CheckinQuestions()})
}

// SubmitCheckin maneja POST /checkin.
func (h *CareHandler) SubmitCheckin(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Responses map[string]string `json:"responses" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	state, err := h.checkinServ.AnalyzeCheckinResponses(c.Request.Context(), claims.UserID, req.Responses)
	if err != nil {
		if errors.Is(err, service.ErrCheckinInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		h.logger.Error("checkin analysis failed", zap.Error(err), zap.String("user_id", claims.UserID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not analyze checkin"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"emotion": state})
}

func (h *CareHandler) loadHistory(c *gin.Context, userID string) ([]domain.Message, []domain.EmotionState, bool) {
	history, err := h.messages.ListRecentByUserID(c.Request.Context(), userID, 10)
	if err != nil {
		h.logger.Error("load conversation history failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load history"})
		return nil, nil, false
	}
	emotions, err := h.emotions.ListRecentByUserID(c.Request.Context(), userID, 5)
	if err != nil {
		h.logger.Warn("load emotion history failed", zap.Error(err))
		emotions = nil
	}
	return history, emotions, true
}
