package domain

import "time"

// Emisores posibles de un mensaje de chat.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// ChatMessage es una entrada inmutable de la conversación con el asistente.
type ChatMessage struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Sender      string    `json:"sender"`
	CreatedAt   time.Time `json:"created_at"`
	Language    string    `json:"language"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

// QuickQuestion es un atajo de pregunta frecuente del chat.
type QuickQuestion struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}
