package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"mindcare-llm/internal/domain"
)

// EmotionRepository persiste las lecturas emocionales por mensaje.
type EmotionRepository interface {
	Create(ctx context.Context, state domain.EmotionState) error
	ListRecentByUserID(ctx context.Context, userID string, limit int) ([]domain.EmotionState, error)
}

type PgEmotionRepository struct {
	pool *pgxpool.Pool
}

func NewPgEmotionRepository(pool *pgxpool.Pool) *PgEmotionRepository {
	return &PgEmotionRepository{pool: pool}
}

func (r *PgEmotionRepository) Create(ctx context.Context, state domain.EmotionState) error {
	const query = `
		INSERT INTO emotion_states (id, user_id, message_id, emotions, primary_emotion, intensity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var messageID interface{}
	if state.MessageID != "" {
		messageID = state.MessageID
	}

	_, err := r.pool.Exec(ctx, query,
		state.ID,
		state.UserID,
		messageID,
		state.Emotions,
		state.Primary,
		state.Intensity,
		state.CreatedAt,
	)
	return err
}

// ListRecentByUserID devuelve las lecturas mas recientes en orden cronologico
// ascendente, para que la ultima posicion sea la mas nueva.
func (r *PgEmotionRepository) ListRecentByUserID(ctx context.Context, userID string, limit int) ([]domain.EmotionState, error) {
	if limit <= 0 {
		limit = 5
	}
	const query = `
		SELECT id, user_id, message_id, emotions, primary_emotion, intensity, created_at
		FROM (
			SELECT id, user_id, message_id, emotions, primary_emotion, intensity, created_at
			FROM emotion_states
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []domain.EmotionState
	for rows.Next() {
		var e domain.EmotionState
		var messageIDValue *string
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&messageIDValue,
			&e.Emotions,
			&e.Primary,
			&e.Intensity,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		if messageIDValue != nil {
			e.MessageID = *messageIDValue
		}
		states = append(states, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return states, nil
}
