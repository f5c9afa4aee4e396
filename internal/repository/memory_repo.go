package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"mindcare-llm/internal/domain"
)

// MemoryRepository persiste recuerdos consolidados con su embedding.
type MemoryRepository interface {
	Create(ctx context.Context, memory domain.SupportMemory) error
	Search(ctx context.Context, userID string, queryEmbedding pgvector.Vector, k int) ([]domain.SupportMemory, error)
	ListRecentByUserID(ctx context.Context, userID string, limit int) ([]domain.SupportMemory, error)
}

type PgMemoryRepository struct {
	pool *pgxpool.Pool
}

func NewPgMemoryRepository(pool *pgxpool.Pool) *PgMemoryRepository {
	return &PgMemoryRepository{pool: pool}
}

func (r *PgMemoryRepository) Create(ctx context.Context, memory domain.SupportMemory) error {
	category := memory.EmotionCategory
	if category == "" {
		category = "neutral"
	}
	const query = `
		INSERT INTO support_memories (id, user_id, content, embedding, emotion_category, intensity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		memory.ID,
		memory.UserID,
		memory.Content,
		memory.Embedding,
		category,
		memory.Intensity,
		memory.CreatedAt,
	)
	return err
}

// Search ordena por distancia coseno del embedding respecto a la consulta.
func (r *PgMemoryRepository) Search(ctx context.Context, userID string, queryEmbedding pgvector.Vector, k int) ([]domain.SupportMemory, error) {
	if k <= 0 {
		k = 5
	}
	const query = `
		SELECT id, user_id, content, embedding, emotion_category, intensity, created_at
		FROM support_memories
		WHERE user_id = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, userID, queryEmbedding, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSupportMemories(rows)
}

func (r *PgMemoryRepository) ListRecentByUserID(ctx context.Context, userID string, limit int) ([]domain.SupportMemory, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
		SELECT id, user_id, content, embedding, emotion_category, intensity, created_at
		FROM support_memories
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSupportMemories(rows)
}

func scanSupportMemories(rows pgxRows) ([]domain.SupportMemory, error) {
	var memories []domain.SupportMemory
	for rows.Next() {
		var m domain.SupportMemory
		if err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.Content,
			&m.Embedding,
			&m.EmotionCategory,
			&m.Intensity,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return memories, nil
}

// pgxRows is a minimal interface to allow scanning from pgx rows and simplify testing.
type pgxRows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
	Close()
}
