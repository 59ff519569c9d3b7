package repository

import (
	"context"

	"github.com/google/uuid"

	"chatlog-api/internal/domain"
)

type FileRepository interface {
	Create(ctx context.Context, file domain.File) (domain.File, error)
	ListByChatID(ctx context.Context, chatID uuid.UUID) ([]domain.File, error)
}

type PgFileRepository struct {
	db DBTX
}

func NewPgFileRepository(db DBTX) *PgFileRepository {
	return &PgFileRepository{db: db}
}

func (r *PgFileRepository) Create(ctx context.Context, file domain.File) (domain.File, error) {
	const query = `
		INSERT INTO files (id, name, path, file_type, chat_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		file.ID,
		file.Name,
		file.Path,
		file.FileType,
		file.ChatID,
	).Scan(&file.CreatedAt, &file.UpdatedAt)
	if err != nil {
		return domain.File{}, translateWriteErr(err)
	}
	return file, nil
}

func (r *PgFileRepository) ListByChatID(ctx context.Context, chatID uuid.UUID) ([]domain.File, error) {
	const query = `
		SELECT id, COALESCE(name, ''), COALESCE(path, ''), COALESCE(file_type, ''), chat_id, created_at, updated_at
		FROM files
		WHERE chat_id = $1
		ORDER BY created_at ASC, id
	`
	rows, err := r.db.Query(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := []domain.File{}
	for rows.Next() {
		var f domain.File
		if err := rows.Scan(&f.ID, &f.Name, &f.Path, &f.FileType, &f.ChatID, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return files, nil
}
