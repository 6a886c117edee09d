package service

import (
	"context"
	"fmt"
	"strings"

	"repo-saga-backend/internal/model"
	"repo-saga-backend/pkg/logger"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const (
	// ChatModelID 助手对话固定使用的模型，不受 OPENROUTER_MODEL 影响
	ChatModelID = "openai/gpt-oss-20b"
	// ChatTemperature 对话温度略高
	ChatTemperature float32 = 0.8
	// MaxHistoryMessages 最多保留最近 20 条历史（10 轮对话）
	MaxHistoryMessages = 20
)

// ChatService 以固定的 Repo Saga 助手人设完成单轮对话，不保存任何会话状态
type ChatService struct {
	chatModel einoModel.ChatModel
}

func NewChatService(chatModel einoModel.ChatModel) *ChatService {
	return &ChatService{chatModel: chatModel}
}

// Reply 组装人设、最近历史与当前消息，调用一次模型
func (s *ChatService) Reply(ctx context.Context, message string, history []model.ChatMessage, lang model.Language) (string, error) {
	recent := RecentHistory(history, MaxHistoryMessages)
	messages, err := assistantPromptFor(lang).Format(ctx, map[string]any{
		keyHistory: toSchemaMessages(recent),
		keyMessage: message,
	})
	if err != nil {
		return "", fmt.Errorf("format chat prompt: %w", err)
	}

	logger.Infof("Assistant chat: %d history messages (of %d), language %s", len(recent), len(history), lang)

	reply, err := model.Complete(ctx, s.chatModel, messages,
		einoModel.WithModel(ChatModelID),
		einoModel.WithTemperature(ChatTemperature),
	)
	if err != nil {
		return "", fmt.Errorf("assistant chat: %w", err)
	}
	return reply, nil
}

// RecentHistory 保留最后 limit 条，顺序不变
func RecentHistory(history []model.ChatMessage, limit int) []model.ChatMessage {
	if len(history) <= limit {
		return history
	}
	return history[len(history)-limit:]
}

// toSchemaMessages 历史消息原样转发，未知角色按 user 处理
func toSchemaMessages(history []model.ChatMessage) []*schema.Message {
	result := make([]*schema.Message, 0, len(history))
	for _, msg := range history {
		role := schema.User
		switch strings.ToLower(msg.Role) {
		case model.RoleAssistant:
			role = schema.Assistant
		case model.RoleSystem:
			role = schema.System
		}
		result = append(result, &schema.Message{
			Role:    role,
			Content: msg.Content,
		})
	}
	return result
}
