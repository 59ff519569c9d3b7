package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chatlog-api/internal/domain"
	"chatlog-api/internal/repository"
)

// ChatService cubre el alta y consulta de chats y de la metadata de archivos.
type ChatService struct {
	logger *zap.Logger
	store  repository.Store
}

func NewChatService(logger *zap.Logger, store repository.Store) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{logger: logger, store: store}
}

func (s *ChatService) CreateChat(ctx context.Context, name string) (domain.Chat, error) {
	if s == nil || s.store == nil {
		return domain.Chat{}, ErrServiceNotConfigured
	}
	chat, err := s.store.Chats().Create(ctx, domain.Chat{ID: uuid.New(), Name: &name})
	if err != nil {
		return domain.Chat{}, storageErr("create chat", err)
	}
	s.logger.Info("chat created", zap.String("chat_id", chat.ID.String()))
	return chat, nil
}

func (s *ChatService) GetChat(ctx context.Context, chatID uuid.UUID) (domain.Chat, error) {
	if s == nil || s.store == nil {
		return domain.Chat{}, ErrServiceNotConfigured
	}
	return getChat(ctx, s.store, chatID)
}

// ListChats devuelve la proyeccion id + nombre de todos los chats.
func (s *ChatService) ListChats(ctx context.Context) ([]domain.ChatSummary, error) {
	if s == nil || s.store == nil {
		return nil, ErrServiceNotConfigured
	}
	chats, err := s.store.Chats().List(ctx)
	if err != nil {
		return nil, storageErr("list chats", err)
	}
	return chats, nil
}

// History devuelve las conversaciones del chat en orden de creacion.
func (s *ChatService) History(ctx context.Context, chatID uuid.UUID) ([]domain.Conversation, error) {
	if s == nil || s.store == nil {
		return nil, ErrServiceNotConfigured
	}
	if _, err := getChat(ctx, s.store, chatID); err != nil {
		return nil, err
	}
	convs, err := s.store.Conversations().ListByChatID(ctx, chatID)
	if err != nil {
		return nil, storageErr("list conversations", err)
	}
	return convs, nil
}

type AddFileInput struct {
	Name     string
	Path     string
	FileType string
}

// AddFile registra la metadata de un archivo; el contenido no pasa por aqui.
func (s *ChatService) AddFile(ctx context.Context, chatID uuid.UUID, input AddFileInput) (domain.File, error) {
	if s == nil || s.store == nil {
		return domain.File{}, ErrServiceNotConfigured
	}
	if _, err := getChat(ctx, s.store, chatID); err != nil {
		return domain.File{}, err
	}
	file, err := s.store.Files().Create(ctx, domain.File{
		ID:       uuid.New(),
		Name:     input.Name,
		Path:     input.Path,
		FileType: input.FileType,
		ChatID:   chatID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.File{}, ErrChatNotFound
		}
		return domain.File{}, storageErr("create file", err)
	}
	return file, nil
}

func (s *ChatService) ListFiles(ctx context.Context, chatID uuid.UUID) ([]domain.File, error) {
	if s == nil || s.store == nil {
		return nil, ErrServiceNotConfigured
	}
	if _, err := getChat(ctx, s.store, chatID); err != nil {
		return nil, err
	}
	files, err := s.store.Files().ListByChatID(ctx, chatID)
	if err != nil {
		return nil, storageErr("list files", err)
	}
	return files, nil
}

// DeleteChat borra el chat junto con sus conversaciones y archivos.
func (s *ChatService) DeleteChat(ctx context.Context, chatID uuid.UUID) error {
	if s == nil || s.store == nil {
		return ErrServiceNotConfigured
	}
	if err := s.store.Chats().Delete(ctx, chatID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrChatNotFound
		}
		return storageErr("delete chat", err)
	}
	s.logger.Info("chat deleted", zap.String("chat_id", chatID.String()))
	return nil
}

func getChat(ctx context.Context, store repository.Store, chatID uuid.UUID) (domain.Chat, error) {
	chat, err := store.Chats().GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Chat{}, ErrChatNotFound
		}
		return domain.Chat{}, storageErr("get chat", err)
	}
	return chat, nil
}
