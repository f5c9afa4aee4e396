package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"mindcare-llm/internal/domain"
)

// ProfileRepository persiste los perfiles de onboarding.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile domain.UserProfile) error
	GetByUserID(ctx context.Context, userID string) (domain.UserProfile, error)
}

// PgProfileRepository implementa ProfileRepository usando pgxpool.
// Las listas (sintomas, metas, temas) se guardan como arrays de Postgres.
type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

func (r *PgProfileRepository) Upsert(ctx context.Context, profile domain.UserProfile) error {
	const query = `
		INSERT INTO user_profiles (
			id, user_id, support_context, communication_style, preferred_therapy_style,
			preferred_language, cultural_notes, preferred_topics, primary_concerns,
			therapy_goals, therapy_experience, current_symptoms, symptom_severity,
			symptom_duration, suicidal_ideation_flag, self_harm_risk_flag,
			substance_use_flag, initial_mood_score, stress_level, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (user_id) DO UPDATE SET
			support_context = EXCLUDED.support_context,
			communication_style = EXCLUDED.communication_style,
			preferred_therapy_style = EXCLUDED.preferred_therapy_style,
			preferred_language = EXCLUDED.preferred_language,
			cultural_notes = EXCLUDED.cultural_notes,
			preferred_topics = EXCLUDED.preferred_topics,
			primary_concerns = EXCLUDED.primary_concerns,
			therapy_goals = EXCLUDED.therapy_goals,
			therapy_experience = EXCLUDED.therapy_experience,
			current_symptoms = EXCLUDED.current_symptoms,
			symptom_severity = EXCLUDED.symptom_severity,
			symptom_duration = EXCLUDED.symptom_duration,
			suicidal_ideation_flag = EXCLUDED.suicidal_ideation_flag,
			self_harm_risk_flag = EXCLUDED.self_harm_risk_flag,
			substance_use_flag = EXCLUDED.substance_use_flag,
			initial_mood_score = EXCLUDED.initial_mood_score,
			stress_level = EXCLUDED.stress_level,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query,
		profile.ID,
		profile.UserID,
		profile.SupportContext,
		profile.CommunicationStyle,
		profile.PreferredTherapyStyle,
		profile.PreferredLanguage,
		profile.CulturalNotes,
		profile.PreferredTopics,
		profile.PrimaryConcerns,
		profile.TherapyGoals,
		profile.TherapyExperience,
		profile.CurrentSymptoms,
		profile.SymptomSeverity,
		profile.SymptomDuration,
		profile.SuicidalIdeationFlag,
		profile.SelfHarmRiskFlag,
		profile.SubstanceUseFlag,
		profile.InitialMoodScore,
		profile.StressLevel,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	return err
}

func (r *PgProfileRepository) GetByUserID(ctx context.Context, userID string) (domain.UserProfile, error) {
	const query = `
		SELECT id, user_id, support_context, communication_style, preferred_therapy_style,
			preferred_language, cultural_notes, preferred_topics, primary_concerns,
			therapy_goals, therapy_experience, current_symptoms, symptom_severity,
			symptom_duration, suicidal_ideation_flag, self_harm_risk_flag,
			substance_use_flag, initial_mood_score, stress_level, created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`
	var p domain.UserProfile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.ID,
		&p.UserID,
		&p.SupportContext,
		&p.CommunicationStyle,
		&p.PreferredTherapyStyle,
		&p.PreferredLanguage,
		&p.CulturalNotes,
		&p.PreferredTopics,
		&p.PrimaryConcerns,
		&p.TherapyGoals,
		&p.TherapyExperience,
		&p.CurrentSymptoms,
		&p.SymptomSeverity,
		&p.SymptomDuration,
		&p.SuicidalIdeationFlag,
		&p.SelfHarmRiskFlag,
		&p.SubstanceUseFlag,
		&p.InitialMoodScore,
		&p.StressLevel,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return domain.UserProfile{}, err
	}
	return p, nil
}
