package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ecovision/internal/service"
)

// ChatHandler expone el asistente por HTTP.
type ChatHandler struct {
	logger *zap.Logger
	chat   *service.ChatService
}

func NewChatHandler(logger *zap.Logger, chat *service.ChatService) *ChatHandler {
	return &ChatHandler{logger: logger, chat: chat}
}

// Welcome maneja GET /api/chat/welcome y reinicia la conversación.
func (h *ChatHandler) Welcome(c *gin.Context) {
	msg := h.chat.Welcome(c.Request.Context(), GetClientID(c))
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// QuickQuestions maneja GET /api/chat/quick-questions.
func (h *ChatHandler) QuickQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"questions": h.chat.QuickQuestions()})
}

// Transcript maneja GET /api/chat/transcript.
func (h *ChatHandler) Transcript(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"messages": h.chat.Transcript(GetClientID(c))})
}

// PostMessage maneja POST /api/chat. Texto vacío se ignora con 204.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userMsg, reply, err := h.chat.Send(c.Request.Context(), GetClientID(c), req.Text, req.Language)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			c.Status(http.StatusNoContent)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			h.logger.Info("chat request cancelled", zap.Error(err))
			c.JSON(http.StatusRequestTimeout, gin.H{"error": "request cancelled", "user_message": userMsg})
		default:
			h.logger.Error("chat reply failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate reply", "user_message": userMsg})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_message":      userMsg,
		"assistant_message": reply,
	})
}
