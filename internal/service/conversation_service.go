package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chatlog-api/internal/domain"
	"chatlog-api/internal/reply"
	"chatlog-api/internal/repository"
)

// ConversationService registra un intercambio usuario/sistema en un chat.
type ConversationService struct {
	logger    *zap.Logger
	store     repository.Store
	generator reply.Generator
	limiter   AppendRateLimiter
}

// NewConversationService arma el servicio. limiter puede ser nil.
func NewConversationService(logger *zap.Logger, store repository.Store, generator reply.Generator, limiter AppendRateLimiter) *ConversationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationService{
		logger:    logger,
		store:     store,
		generator: generator,
		limiter:   limiter,
	}
}

// AppendExchange guarda el mensaje del usuario, genera la respuesta y la
// guarda junto con el updated_at del chat en una sola transaccion.
//
// El mensaje del usuario se confirma antes de generar la respuesta. Si la
// generacion falla, se devuelve ese mensaje junto con ErrReplyGeneration.
func (s *ConversationService) AppendExchange(ctx context.Context, chatID uuid.UUID, userText string) (domain.Conversation, domain.Conversation, error) {
	var none domain.Conversation
	if s == nil || s.store == nil || s.generator == nil {
		return none, none, ErrServiceNotConfigured
	}

	if _, err := getChat(ctx, s.store, chatID); err != nil {
		return none, none, err
	}

	if s.limiter != nil && !s.limiter.Allow(ctx, chatID) {
		s.logger.Warn("append rate limited", zap.String("chat_id", chatID.String()))
		return none, none, ErrAppendRateLimited
	}

	userMsg, err := s.store.Conversations().Create(ctx, domain.Conversation{
		ID:      uuid.New(),
		Role:    domain.RoleUser,
		Content: userText,
		ChatID:  chatID,
	})
	if err != nil {
		return none, none, s.writeErr("create user message", err)
	}

	replyText, err := s.generate(ctx, userText)
	if err != nil {
		s.logger.Warn("reply generation failed",
			zap.String("chat_id", chatID.String()),
			zap.String("user_message_id", userMsg.ID.String()),
			zap.Error(err),
		)
		return userMsg, none, fmt.Errorf("%w: %w", ErrReplyGeneration, err)
	}

	var systemMsg domain.Conversation
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		systemMsg, err = tx.Conversations().Create(ctx, domain.Conversation{
			ID:      uuid.New(),
			Role:    domain.RoleSystem,
			Content: replyText,
			ChatID:  chatID,
		})
		if err != nil {
			return err
		}
		_, err = tx.Chats().Touch(ctx, chatID)
		return err
	})
	if err != nil {
		return userMsg, none, s.writeErr("create system message", err)
	}

	return userMsg, systemMsg, nil
}

// generate aisla al llamador de un panic en el generador.
func (s *ConversationService) generate(ctx context.Context, userText string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panic: %v", r)
		}
	}()
	return s.generator.Generate(ctx, userText)
}

func (s *ConversationService) writeErr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrChatNotFound
	}
	return storageErr(op, err)
}
