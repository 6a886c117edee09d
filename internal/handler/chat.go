package handler

import (
	"context"
	"net/http"

	"repo-saga-backend/internal/middleware"
	"repo-saga-backend/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ChatReplier 由 service.ChatService 实现
type ChatReplier interface {
	Reply(ctx context.Context, message string, history []model.ChatMessage, lang model.Language) (string, error)
}

type ChatHandler struct {
	chatService ChatReplier
}

func NewChatHandler(chatService ChatReplier) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// Chat POST /chat。失败时返回 200 和一条随机的兜底回复
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lang := model.LanguageFor(req.Lang, req.Locale)
	reply, err := h.chatService.Reply(c.Request.Context(), req.UserMessage(), req.ConversationHistory, lang)
	if err != nil {
		logFailure("chat", err, logrus.Fields{
			"request_id": middleware.RequestID(c),
			"history":    len(req.ConversationHistory),
			"language":   lang,
		})
		c.JSON(http.StatusOK, model.ChatResponse{Response: fallbackChat(lang)})
		return
	}

	c.JSON(http.StatusOK, model.ChatResponse{Response: reply})
}
