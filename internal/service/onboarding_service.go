package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mindcare-llm/internal/domain"
	"mindcare-llm/internal/repository"
)

var ErrProfileInvalid = errors.New("profile invalid")

// OnboardingService guarda el perfil de onboarding y corre el tamizaje
// inicial de riesgo sobre sus banderas y puntajes.
type OnboardingService struct {
	logger   *zap.Logger
	profiles repository.ProfileRepository
}

func NewOnboardingService(logger *zap.Logger, profiles repository.ProfileRepository) *OnboardingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OnboardingService{logger: logger, profiles: profiles}
}

// SaveProfile valida, normaliza y persiste el perfil; devuelve tambien
// el tamizaje de riesgo calculado sobre los datos entregados.
func (s *OnboardingService) SaveProfile(ctx context.Context, userID string, profile domain.UserProfile) (domain.UserProfile, domain.RiskScreen, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.UserProfile{}, domain.RiskScreen{}, ErrProfileInvalid
	}

	profile.UserID = userID
	profile.SupportContext = strings.ToLower(strings.TrimSpace(profile.SupportContext))
	if profile.SupportContext == "" {
		profile.SupportContext = "general"
	}
	if !validSupportContext(profile.SupportContext) {
		return domain.UserProfile{}, domain.RiskScreen{}, fmt.Errorf("%w: unknown support context %q", ErrProfileInvalid, profile.SupportContext)
	}
	profile.CommunicationStyle = strings.ToLower(strings.TrimSpace(profile.CommunicationStyle))
	profile.PreferredLanguage = strings.ToLower(strings.TrimSpace(profile.PreferredLanguage))
	profile.SymptomSeverity = clampRange(profile.SymptomSeverity, 0, 10)
	profile.InitialMoodScore = clampRange(profile.InitialMoodScore, 0, 10)
	profile.StressLevel = clampRange(profile.StressLevel, 0, 10)

	now := time.Now().UTC()
	if profile.ID == "" {
		profile.ID = uuid.NewString()
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return domain.UserProfile{}, domain.RiskScreen{}, fmt.Errorf("upsert profile: %w", err)
	}

	screen := ScreenRisk(profile)
	if screen.Level == "high" {
		s.logger.Warn("onboarding risk screen high",
			zap.String("user_id", userID),
			zap.Int("score", screen.Score),
			zap.Strings("factors", screen.Factors),
		)
	}
	return profile, screen, nil
}

func (s *OnboardingService) GetProfile(ctx context.Context, userID string) (domain.UserProfile, error) {
	return s.profiles.GetByUserID(ctx, userID)
}

// ScreenRisk puntua el perfil de onboarding. Las banderas directas pesan
// mas que los puntajes subjetivos; la ideacion suicida o autolesion
// obliga derivacion profesional sin importar el resto.
func ScreenRisk(profile domain.UserProfile) domain.RiskScreen {
	score := 0
	var factors []string

	if profile.SuicidalIdeationFlag {
		score += 40
		factors = append(factors, "suicidal ideation reported")
	}
	if profile.SelfHarmRiskFlag {
		score += 30
		factors = append(factors, "self-harm risk reported")
	}
	if profile.SubstanceUseFlag {
		score += 15
		factors = append(factors, "substance use reported")
	}
	if profile.SymptomSeverity >= 7 {
		score += 15
		factors = append(factors, "high symptom severity")
	}
	if profile.StressLevel >= 8 {
		score += 10
		factors = append(factors, "high stress level")
	}
	if profile.InitialMoodScore > 0 && profile.InitialMoodScore <= 3 {
		score += 10
		factors = append(factors, "low initial mood")
	}

	level := "low"
	switch {
	case score >= 40:
		level = "high"
	case score >= 20:
		level = "medium"
	}

	return domain.RiskScreen{
		Level:                level,
		Score:                score,
		Factors:              factors,
		RequiresProfessional: profile.SuicidalIdeationFlag || profile.SelfHarmRiskFlag || score >= 40,
	}
}

func validSupportContext(supportContext string) bool {
	for _, known := range AvailableContexts() {
		if known == supportContext {
			return true
		}
	}
	return false
}

func clampRange(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
