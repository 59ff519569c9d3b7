package domain

import (
	"time"

	"github.com/google/uuid"
)

// Chat agrupa los mensajes y archivos de una conversacion.
type Chat struct {
	ID        uuid.UUID `json:"id"`
	Name      *string   `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatSummary es la proyeccion usada en listados.
type ChatSummary struct {
	ID   uuid.UUID `json:"id"`
	Name *string   `json:"name"`
}
