package repository

import (
	"context"

	"github.com/google/uuid"

	"chatlog-api/internal/domain"
)

type ConversationRepository interface {
	Create(ctx context.Context, conv domain.Conversation) (domain.Conversation, error)
	ListByChatID(ctx context.Context, chatID uuid.UUID) ([]domain.Conversation, error)
}

type PgConversationRepository struct {
	db DBTX
}

func NewPgConversationRepository(db DBTX) *PgConversationRepository {
	return &PgConversationRepository{db: db}
}

func (r *PgConversationRepository) Create(ctx context.Context, conv domain.Conversation) (domain.Conversation, error) {
	const query = `
		INSERT INTO conversation (id, role, content, chat_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		conv.ID,
		conv.Role,
		conv.Content,
		conv.ChatID,
	).Scan(&conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return domain.Conversation{}, translateWriteErr(err)
	}
	return conv, nil
}

func (r *PgConversationRepository) ListByChatID(ctx context.Context, chatID uuid.UUID) ([]domain.Conversation, error) {
	const query = `
		SELECT id, COALESCE(role, ''), COALESCE(content, ''), chat_id, created_at, updated_at
		FROM conversation
		WHERE chat_id = $1
		ORDER BY created_at ASC, id
	`
	rows, err := r.db.Query(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanConversations(rows)
}

func scanConversations(rows pgxRows) ([]domain.Conversation, error) {
	convs := []domain.Conversation{}
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(
			&c.ID,
			&c.Role,
			&c.Content,
			&c.ChatID,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return convs, nil
}

// pgxRows is a minimal interface to allow scanning from pgx rows and simplify testing.
type pgxRows interface {
	Next() bool
	Scan(...any) error
	Err() error
	Close()
}
