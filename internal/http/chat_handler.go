package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"chatlog-api/internal/domain"
	"chatlog-api/internal/service"
)

// ChatManager cubre las operaciones de alta y consulta de chats.
type ChatManager interface {
	CreateChat(ctx context.Context, name string) (domain.Chat, error)
	GetChat(ctx context.Context, chatID uuid.UUID) (domain.Chat, error)
	ListChats(ctx context.Context) ([]domain.ChatSummary, error)
	History(ctx context.Context, chatID uuid.UUID) ([]domain.Conversation, error)
	AddFile(ctx context.Context, chatID uuid.UUID, input service.AddFileInput) (domain.File, error)
	ListFiles(ctx context.Context, chatID uuid.UUID) ([]domain.File, error)
	DeleteChat(ctx context.Context, chatID uuid.UUID) error
}

// ExchangeAppender registra un intercambio usuario/sistema.
type ExchangeAppender interface {
	AppendExchange(ctx context.Context, chatID uuid.UUID, userText string) (domain.Conversation, domain.Conversation, error)
}

// ChatHandler mantiene dependencias para endpoints de chats y mensajes.
type ChatHandler struct {
	logger        *zap.Logger
	chats         ChatManager
	conversations ExchangeAppender
}

// NewChatHandler crea una instancia de ChatHandler con dependencias necesarias.
func NewChatHandler(logger *zap.Logger, chats ChatManager, conversations ExchangeAppender) *ChatHandler {
	return &ChatHandler{
		logger:        logger,
		chats:         chats,
		conversations: conversations,
	}
}

// CreateChat maneja POST /chat.
func (h *ChatHandler) CreateChat(c *gin.Context) {
	var req struct {
		Name *string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	chat, err := h.chats.CreateChat(c.Request.Context(), *req.Name)
	if err != nil {
		h.fail(c, "create chat failed", err)
		return
	}

	c.JSON(http.StatusCreated, chat)
}

// ListChats maneja GET /allchats.
func (h *ChatHandler) ListChats(c *gin.Context) {
	chats, err := h.chats.ListChats(c.Request.Context())
	if err != nil {
		h.fail(c, "list chats failed", err)
		return
	}
	c.JSON(http.StatusOK, chats)
}

// GetChat maneja GET /chat/:chatId.
func (h *ChatHandler) GetChat(c *gin.Context) {
	chatID, ok := h.chatID(c)
	if !ok {
		return
	}
	chat, err := h.chats.GetChat(c.Request.Context(), chatID)
	if err != nil {
		h.fail(c, "get chat failed", err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

// PostMessage maneja POST /chat/:chatId y devuelve [usuario, sistema].
func (h *ChatHandler) PostMessage(c *gin.Context) {
	chatID, ok := h.chatID(c)
	if !ok {
		return
	}
	var req struct {
		// Puntero para exigir el campo y aceptar "" igualmente.
		Message *string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid post message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userMsg, systemMsg, err := h.conversations.AppendExchange(c.Request.Context(), chatID, *req.Message)
	if err != nil {
		if errors.Is(err, service.ErrReplyGeneration) {
			h.logger.Error("reply generation failed", zap.String("chat_id", chatID.String()), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{
				"error":        "could not generate reply",
				"user_message": userMsg,
			})
			return
		}
		h.fail(c, "append exchange failed", err)
		return
	}

	c.JSON(http.StatusCreated, []domain.Conversation{userMsg, systemMsg})
}

// History maneja GET /chathistory/:chatId.
func (h *ChatHandler) History(c *gin.Context) {
	chatID, ok := h.chatID(c)
	if !ok {
		return
	}
	convs, err := h.chats.History(c.Request.Context(), chatID)
	if err != nil {
		h.fail(c, "chat history failed", err)
		return
	}

	out := make([]domain.HistoryEntry, 0, len(convs))
	for _, conv := range convs {
		out = append(out, domain.HistoryEntry{Role: conv.Role, Content: conv.Content})
	}
	c.JSON(http.StatusOK, out)
}

// AddFile maneja POST /addfile/:chatId. Solo guarda metadata.
func (h *ChatHandler) AddFile(c *gin.Context) {
	chatID, ok := h.chatID(c)
	if !ok {
		return
	}
	// name y path deben venir, pero pueden ser "".
	var req struct {
		Name     *string `json:"name" binding:"required"`
		Path     *string `json:"path" binding:"required"`
		FileType string  `json:"file_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid add file request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	file, err := h.chats.AddFile(c.Request.Context(), chatID, service.AddFileInput{
		Name:     *req.Name,
		Path:     *req.Path,
		FileType: req.FileType,
	})
	if err != nil {
		h.fail(c, "add file failed", err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

// ListFiles maneja GET /chatfiles/:chatId.
func (h *ChatHandler) ListFiles(c *gin.Context) {
	chatID, ok := h.chatID(c)
	if !ok {
		return
	}
	files, err := h.chats.ListFiles(c.Request.Context(), chatID)
	if err != nil {
		h.fail(c, "list files failed", err)
		return
	}
	c.JSON(http.StatusOK, files)
}

// DeleteChat maneja DELETE /chat/:chatId.
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	chatID, ok := h.chatID(c)
	if !ok {
		return
	}
	if err := h.chats.DeleteChat(c.Request.Context(), chatID); err != nil {
		h.fail(c, "delete chat failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ChatHandler) chatID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("chatId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return uuid.Nil, false
	}
	return id, true
}

// fail traduce errores de servicio a respuestas HTTP.
func (h *ChatHandler) fail(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrChatNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
	case errors.Is(err, service.ErrAppendRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many messages"})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
