package domain

import (
	"time"

	"github.com/google/uuid"
)

// File describe un archivo almacenado fuera del servicio. Path es opaco.
type File struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	FileType  string    `json:"file_type"`
	ChatID    uuid.UUID `json:"chat_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
