package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"mindcare-llm/internal/domain"
	"mindcare-llm/internal/llm"
	"mindcare-llm/internal/repository"
)

// CareService es el agente proactivo de cuidado: analiza patrones del
// usuario, decide intervenciones y genera reportes para profesionales.
type CareService struct {
	logger    *zap.Logger
	llmClient llm.LLMClient
	store     repository.CareStateStore
	policy    *InterventionPolicy
	trends    *RiskTrendTracker
}

func NewCareService(logger *zap.Logger, llmClient llm.LLMClient, store repository.CareStateStore, policy *InterventionPolicy, trends *RiskTrendTracker) *CareService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CareService{
		logger:    logger,
		llmClient: llmClient,
		store:     store,
		policy:    policy,
		trends:    trends,
	}
}

type rawPatternAnalysis struct {
	IdentifiedPatterns *[]rawIdentifiedPattern `json:"identified_patterns"`
	RecommendedActions *[]rawRecommendedAction `json:"recommended_actions"`
	WellnessTrends     *rawWellnessTrends      `json:"wellness_trends"`
}

type rawIdentifiedPattern struct {
	PatternType           string   `json:"pattern_type"`
	Description           string   `json:"description"`
	Confidence            *float64 `json:"confidence"`
	SuggestedIntervention string   `json:"suggested_intervention"`
	UrgencyLevel          *int     `json:"urgency_level"`
}

type rawRecommendedAction struct {
	ActionType  string `json:"action_type"`
	Description string `json:"description"`
	Timing      string `json:"timing"`
	Priority    *int   `json:"priority"`
}

type rawWellnessTrends struct {
	EmotionalTrajectory *string `json:"emotional_trajectory"`
	EngagementQuality   *string `json:"engagement_quality"`
	RiskTrajectory      *string `json:"risk_trajectory"`
}

// AnalyzePatterns corre una pasada de analisis sobre el historial del
// usuario. Nunca devuelve error: si el LLM falla o la salida no cumple
// el esquema, se guarda y devuelve el analisis neutro marcado como fallback.
func (s *CareService) AnalyzePatterns(
	ctx context.Context,
	userID string,
	conversationHistory []domain.Message,
	emotionHistory []domain.EmotionState,
	crisisHistory []domain.CrisisAssessment,
) domain.PatternAnalysis {
	analysis, err := s.analyzePatternsLLM(ctx, userID, conversationHistory, emotionHistory, crisisHistory)
	if err != nil {
		s.logger.Warn("pattern analysis failed, using neutral fallback",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		analysis = neutralPatternAnalysis(userID)
	}

	s.store.Update(userID, func(state *repository.CareState) {
		copied := analysis
		state.LastPatterns = &copied
		state.LastAnalyzedAt = analysis.AnalyzedAt
	})
	return analysis
}

func (s *CareService) analyzePatternsLLM(
	ctx context.Context,
	userID string,
	conversationHistory []domain.Message,
	emotionHistory []domain.EmotionState,
	crisisHistory []domain.CrisisAssessment,
) (domain.PatternAnalysis, error) {
	if s.llmClient == nil {
		return domain.PatternAnalysis{}, fmt.Errorf("llm client not configured")
	}

	prompt := buildPatternPrompt(conversationHistory, emotionHistory, crisisHistory)
	raw, err := s.llmClient.Generate(ctx, prompt)
	if err != nil {
		return domain.PatternAnalysis{}, err
	}

	jsonObj := extractFirstJSONObject(CleanLLMJSONResponse(raw))
	if jsonObj == "" {
		return domain.PatternAnalysis{}, fmt.Errorf("no json object in response")
	}

	var parsed rawPatternAnalysis
	if err := json.Unmarshal([]byte(jsonObj), &parsed); err != nil {
		return domain.PatternAnalysis{}, err
	}
	if parsed.IdentifiedPatterns == nil || parsed.RecommendedActions == nil || parsed.WellnessTrends == nil {
		return domain.PatternAnalysis{}, fmt.Errorf("missing required fields")
	}
	wt := parsed.WellnessTrends
	if wt.EmotionalTrajectory == nil || wt.EngagementQuality == nil || wt.RiskTrajectory == nil {
		return domain.PatternAnalysis{}, fmt.Errorf("missing wellness trend fields")
	}

	analysis := domain.PatternAnalysis{
		UserID: userID,
		WellnessTrends: domain.WellnessTrends{
			EmotionalTrajectory: strings.TrimSpace(*wt.EmotionalTrajectory),
			EngagementQuality:   strings.TrimSpace(*wt.EngagementQuality),
			RiskTrajectory:      strings.TrimSpace(*wt.RiskTrajectory),
		},
		AnalyzedAt: time.Now().UTC(),
	}
	for _, rp := range *parsed.IdentifiedPatterns {
		pattern := domain.IdentifiedPattern{
			PatternType:           strings.TrimSpace(rp.PatternType),
			Description:           strings.TrimSpace(rp.Description),
			SuggestedIntervention: strings.TrimSpace(rp.SuggestedIntervention),
			UrgencyLevel:          1,
			Confidence:            0.5,
		}
		if rp.UrgencyLevel != nil {
			pattern.UrgencyLevel = clampInt(*rp.UrgencyLevel, 1, 5)
		}
		if rp.Confidence != nil {
			pattern.Confidence = clampFloat(*rp.Confidence, 0, 1)
		}
		analysis.IdentifiedPatterns = append(analysis.IdentifiedPatterns, pattern)
	}
	for _, ra := range *parsed.RecommendedActions {
		action := domain.RecommendedAction{
			ActionType:  strings.TrimSpace(ra.ActionType),
			Description: strings.TrimSpace(ra.Description),
			Timing:      strings.TrimSpace(ra.Timing),
			Priority:    1,
		}
		if ra.Priority != nil {
			action.Priority = clampInt(*ra.Priority, 1, 5)
		}
		analysis.RecommendedActions = append(analysis.RecommendedActions, action)
	}
	return analysis, nil
}

func neutralPatternAnalysis(userID string) domain.PatternAnalysis {
	return domain.PatternAnalysis{
		UserID:             userID,
		IdentifiedPatterns: []domain.IdentifiedPattern{},
		RecommendedActions: []domain.RecommendedAction{},
		WellnessTrends: domain.WellnessTrends{
			EmotionalTrajectory: "stable",
			EngagementQuality:   "moderate",
			RiskTrajectory:      "stable",
		},
		IsFallback: true,
		AnalyzedAt: time.Now().UTC(),
	}
}

// MaybeIntervene evalua la politica con el ultimo analisis de patrones y,
// si corresponde, genera el plan con el LLM y lo registra. Si la
// generacion del plan falla no se registra nada: la proxima evaluacion
// vuelve a intentar sin gastar la ventana de enfriamiento.
func (s *CareService) MaybeIntervene(ctx context.Context, userID string, supportContext string) (*domain.InterventionRecord, domain.InterventionReason) {
	state := s.store.Get(userID)
	patterns := neutralPatternAnalysis(userID)
	if state.LastPatterns != nil {
		patterns = *state.LastPatterns
	}

	intervene, reason, urgency := s.policy.ShouldIntervene(userID, patterns)
	if !intervene {
		return nil, reason
	}

	plan, err := s.generateInterventionPlan(ctx, reason, urgency, supportContext, patterns)
	if err != nil {
		s.logger.Warn("intervention plan generation failed, skipping intervention",
			zap.String("user_id", userID),
			zap.String("reason", string(reason)),
			zap.Error(err),
		)
		return nil, reason
	}

	record := s.policy.RecordIntervention(userID, reason, urgency, *plan)
	s.logger.Info("intervention emitted",
		zap.String("user_id", userID),
		zap.String("reason", string(reason)),
		zap.Int("urgency", urgency),
	)
	return &record, reason
}

func (s *CareService) generateInterventionPlan(
	ctx context.Context,
	reason domain.InterventionReason,
	urgency int,
	supportContext string,
	patterns domain.PatternAnalysis,
) (*domain.InterventionPlan, error) {
	if s.llmClient == nil {
		return nil, fmt.Errorf("llm client not configured")
	}
	if supportContext == "" {
		supportContext = "general"
	}

	patternsJSON, _ := json.MarshalIndent(patterns, "", "  ")
	var sb strings.Builder
	sb.WriteString("Generate an AI care agent intervention for a user.\n\n")
	fmt.Fprintf(&sb, "Context: %s support mode\n", supportContext)
	fmt.Fprintf(&sb, "Intervention Reason: %s\n", reason)
	fmt.Fprintf(&sb, "Urgency Level: %d\n", urgency)
	fmt.Fprintf(&sb, "User Patterns: %s\n", patternsJSON)
	sb.WriteString(`
Design an intervention that:
1. Addresses the specific reason for intervention
2. Is appropriate for the urgency level
3. Considers cultural context and preferences (Indian youth)
4. Provides clear, actionable support
5. Includes follow-up steps

Return a JSON intervention plan:
{
    "intervention_type": "check_in|activity|resource|professional",
    "urgency_level": 1-5,
    "message": "Intervention message to user",
    "suggested_actions": ["action1", "action2"],
    "resources": ["resource1", "resource2"],
    "follow_up": {
        "timing": "when to follow up",
        "type": "how to follow up",
        "metrics": ["what", "to", "check"]
    }
}`)

	raw, err := s.llmClient.Generate(ctx, sb.String())
	if err != nil {
		return nil, err
	}
	jsonObj := extractFirstJSONObject(CleanLLMJSONResponse(raw))
	if jsonObj == "" {
		return nil, fmt.Errorf("no json object in response")
	}

	var plan domain.InterventionPlan
	if err := json.Unmarshal([]byte(jsonObj), &plan); err != nil {
		return nil, err
	}
	if strings.TrimSpace(plan.Message) == "" {
		return nil, fmt.Errorf("intervention plan without message")
	}
	plan.UrgencyLevel = clampInt(plan.UrgencyLevel, 1, 5)
	return &plan, nil
}

// GenerateWellnessActivity pide al LLM una actividad de autocuidado
// personalizada segun los patrones guardados del usuario.
func (s *CareService) GenerateWellnessActivity(ctx context.Context, userID string, supportContext string) (*domain.WellnessActivity, error) {
	if s.llmClient == nil {
		return nil, fmt.Errorf("llm client not configured")
	}
	if supportContext == "" {
		supportContext = "general"
	}

	state := s.store.Get(userID)
	patternsJSON := []byte("{}")
	if state.LastPatterns != nil {
		patternsJSON, _ = json.MarshalIndent(state.LastPatterns, "", "  ")
	}

	var sb strings.Builder
	sb.WriteString("Generate a personalized wellness activity for a user.\n\n")
	fmt.Fprintf(&sb, "Context: %s support mode\n", supportContext)
	fmt.Fprintf(&sb, "User Patterns: %s\n", patternsJSON)
	sb.WriteString(`
The activity should:
1. Be culturally appropriate for Indian youth
2. Consider the user's current emotional state and patterns
3. Be specific, actionable, and engaging
4. Include both immediate and long-term benefits
5. Have clear instructions and expected outcomes

Return a JSON activity plan:
{
    "activity_name": "Name of activity",
    "description": "Detailed description",
    "duration": "Expected duration",
    "difficulty": "easy|moderate|challenging",
    "benefits": ["list", "of", "benefits"],
    "steps": ["step1", "step2"],
    "cultural_elements": ["relevant", "cultural", "aspects"]
}`)

	raw, err := s.llmClient.Generate(ctx, sb.String())
	if err != nil {
		return nil, err
	}
	jsonObj := extractFirstJSONObject(CleanLLMJSONResponse(raw))
	if jsonObj == "" {
		return nil, fmt.Errorf("no json object in response")
	}

	var activity domain.WellnessActivity
	if err := json.Unmarshal([]byte(jsonObj), &activity); err != nil {
		return nil, err
	}
	if strings.TrimSpace(activity.ActivityName) == "" {
		return nil, fmt.Errorf("activity without name")
	}
	return &activity, nil
}

// GenerateInsightReport arma el reporte periodico para profesionales a
// partir del estado acumulado del usuario.
func (s *CareService) GenerateInsightReport(ctx context.Context, userID string) (*domain.InsightReport, error) {
	if s.llmClient == nil {
		return nil, fmt.Errorf("llm client not configured")
	}

	state := s.store.Get(userID)
	trend := s.trends.Current(userID)

	patternsJSON := []byte("{}")
	if state.LastPatterns != nil {
		patternsJSON, _ = json.MarshalIndent(state.LastPatterns, "", "  ")
	}
	recentInterventions := state.Interventions
	if len(recentInterventions) > 3 {
		recentInterventions = recentInterventions[len(recentInterventions)-3:]
	}
	interventionsJSON, _ := json.MarshalIndent(recentInterventions, "", "  ")
	trendJSON, _ := json.MarshalIndent(trend, "", "  ")

	var sb strings.Builder
	sb.WriteString("Generate a weekly mental health insight report for healthcare professionals.\n\n")
	fmt.Fprintf(&sb, "User Patterns: %s\n", patternsJSON)
	fmt.Fprintf(&sb, "Recent Interventions: %s\n", interventionsJSON)
	fmt.Fprintf(&sb, "Risk Trends: %s\n", trendJSON)
	sb.WriteString(`
Return ONLY a JSON report with this structure:
{
    "overall_status": "status description",
    "key_concerns": ["concern1", "concern2"],
    "progress_indicators": ["indicator1", "indicator2"],
    "behavioral_patterns": ["pattern1", "pattern2"],
    "current_risk_level": 1-5,
    "immediate_actions": ["action1", "action2"],
    "long_term_strategies": ["strategy1", "strategy2"],
    "follow_up_timing": "when to follow up"
}`)

	raw, err := s.llmClient.Generate(ctx, sb.String())
	if err != nil {
		return nil, err
	}
	jsonObj := extractFirstJSONObject(CleanLLMJSONResponse(raw))
	if jsonObj == "" {
		return nil, fmt.Errorf("no json object in response")
	}

	var report domain.InsightReport
	if err := json.Unmarshal([]byte(jsonObj), &report); err != nil {
		return nil, err
	}
	report.UserID = userID
	report.GeneratedAt = time.Now().UTC()
	report.RiskTrend = string(trend.Trend)
	report.CurrentRiskLevel = clampInt(report.CurrentRiskLevel, 0, 5)
	return &report, nil
}

func buildPatternPrompt(conversationHistory []domain.Message, emotionHistory []domain.EmotionState, crisisHistory []domain.CrisisAssessment) string {
	var sb strings.Builder
	sb.WriteString("You are an AI mental health care agent analyzing user patterns.\n\n")

	sb.WriteString("Recent Conversations:\n")
	start := len(conversationHistory) - 5
	if start < 0 {
		start = 0
	}
	for _, msg := range conversationHistory[start:] {
		content := msg.Content
		if len(content) > 100 {
			content = content[:100] + "..."
		}
		fmt.Fprintf(&sb, "- %s\n", content)
	}

	sb.WriteString("\nEmotional History:\n")
	emoStart := len(emotionHistory) - 5
	if emoStart < 0 {
		emoStart = 0
	}
	for _, state := range emotionHistory[emoStart:] {
		fmt.Fprintf(&sb, "- %s\n", strings.Join(state.Emotions, ", "))
	}

	sb.WriteString("\nCrisis History:\n")
	crisisStart := len(crisisHistory) - 3
	if crisisStart < 0 {
		crisisStart = 0
	}
	for _, crisis := range crisisHistory[crisisStart:] {
		reasoning := crisis.Reasoning
		if reasoning == "" {
			reasoning = "No reasoning provided"
		}
		fmt.Fprintf(&sb, "- Level %d: %s\n", crisis.SeverityLevel, reasoning)
	}

	sb.WriteString(`
Analyze patterns and return a JSON object with this exact structure:

{
    "identified_patterns": [
        {
            "pattern_type": "emotional|behavioral|crisis|engagement",
            "description": "Description of pattern",
            "confidence": 0-1,
            "suggested_intervention": "intervention type",
            "urgency_level": 1-5
        }
    ],
    "recommended_actions": [
        {
            "action_type": "check_in|resource|activity|professional",
            "description": "What should be done",
            "timing": "immediate|next_session|scheduled",
            "priority": 1-5
        }
    ],
    "wellness_trends": {
        "emotional_trajectory": "improving|stable|declining",
        "engagement_quality": "high|moderate|low",
        "risk_trajectory": "decreasing|stable|increasing"
    }
}`)

	return sb.String()
}
