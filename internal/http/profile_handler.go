package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"mindcare-llm/internal/domain"
	"mindcare-llm/internal/service"
)

// ProfileHandler expone el onboarding y la consulta del perfil.
type ProfileHandler struct {
	logger     *zap.Logger
	onboarding *service.OnboardingService
}

func NewProfileHandler(logger *zap.Logger, onboarding *service.OnboardingService) *ProfileHandler {
	return &ProfileHandler{logger: logger, onboarding: onboarding}
}

// PutProfile maneja PUT /profile: guarda el onboarding completo y
// devuelve el tamizaje de riesgo inicial.
func (h *ProfileHandler) PutProfile(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var profile domain.UserProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		h.logger.Warn("invalid profile request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	saved, screen, err := h.onboarding.SaveProfile(c.Request.Context(), claims.UserID, profile)
	if err != nil {
		if errors.Is(err, service.ErrProfileInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("save profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": saved, "risk_screen": screen})
}

// GetProfile maneja GET /profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	profile, err := h.onboarding.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		h.logger.Error("get profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// ListContexts maneja GET /contexts: los contextos de apoyo disponibles.
func (h *ProfileHandler) ListContexts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"contexts": service.AvailableContexts()})
}
