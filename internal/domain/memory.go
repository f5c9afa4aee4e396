package domain

import (
	"time"

	pgvector "github.com/pgvector/pgvector-go"
)

// SupportMemory es un fragmento consolidado de las conversaciones del
// usuario, con su embedding para busqueda por similitud.
// Usamos pgvector.Vector para embeddings vectoriales.
type SupportMemory struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Content         string          `json:"content"`
	Embedding       pgvector.Vector `json:"embedding"`
	EmotionCategory string          `json:"emotion_category"`
	Intensity       int             `json:"intensity"` // 0-100
	CreatedAt       time.Time       `json:"created_at"`
}

// SessionConsolidation es la estructura esperada del LLM al resumir una sesion.
type SessionConsolidation struct {
	Summary       string   `json:"summary"`
	KeyConcerns   []string `json:"key_concerns"`
	EmotionalTone string   `json:"emotional_tone"`
}
