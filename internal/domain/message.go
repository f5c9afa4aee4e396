package domain

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id,omitempty"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// EmotionState es una lectura emocional asociada a un mensaje del usuario.
// Emotions lista las etiquetas detectadas; Primary es la dominante.
type EmotionState struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	MessageID string    `json:"message_id,omitempty"`
	Emotions  []string  `json:"emotions"`
	Primary   string    `json:"primary"`
	Intensity int       `json:"intensity"` // 0-100
	CreatedAt time.Time `json:"created_at"`
}
