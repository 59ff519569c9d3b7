package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"chatlog-api/internal/domain"
)

// ChatRepository define el contrato de persistencia para chats.
type ChatRepository interface {
	Create(ctx context.Context, chat domain.Chat) (domain.Chat, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Chat, error)
	List(ctx context.Context) ([]domain.ChatSummary, error)
	Touch(ctx context.Context, id uuid.UUID) (time.Time, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PgChatRepository struct {
	db DBTX
}

func NewPgChatRepository(db DBTX) *PgChatRepository {
	return &PgChatRepository{db: db}
}

func (r *PgChatRepository) Create(ctx context.Context, chat domain.Chat) (domain.Chat, error) {
	const query = `
		INSERT INTO chat (id, name)
		VALUES ($1, $2)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, chat.ID, chat.Name).Scan(&chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		return domain.Chat{}, err
	}
	return chat, nil
}

func (r *PgChatRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Chat, error) {
	const query = `
		SELECT id, name, created_at, updated_at
		FROM chat
		WHERE id = $1
	`
	var chat domain.Chat
	err := r.db.QueryRow(ctx, query, id).Scan(
		&chat.ID,
		&chat.Name,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	)
	if err != nil {
		return domain.Chat{}, translateNoRows(err)
	}
	return chat, nil
}

func (r *PgChatRepository) List(ctx context.Context) ([]domain.ChatSummary, error) {
	const query = `
		SELECT id, name
		FROM chat
		ORDER BY created_at ASC, id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chats := []domain.ChatSummary{}
	for rows.Next() {
		var c domain.ChatSummary
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return chats, nil
}

// Touch actualiza updated_at a la hora del servidor y devuelve el valor nuevo.
func (r *PgChatRepository) Touch(ctx context.Context, id uuid.UUID) (time.Time, error) {
	const query = `
		UPDATE chat
		SET updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	var updatedAt time.Time
	if err := r.db.QueryRow(ctx, query, id).Scan(&updatedAt); err != nil {
		return time.Time{}, translateNoRows(err)
	}
	return updatedAt, nil
}

// Delete borra el chat; conversaciones y archivos caen por ON DELETE CASCADE.
func (r *PgChatRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM chat WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
