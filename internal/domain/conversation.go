package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser   = "user"
	RoleSystem = "system"
)

// Conversation es un turno dentro de un chat.
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	ChatID    uuid.UUID `json:"chat_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HistoryEntry es la vista reducida que expone el historial.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
