package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"

	"repo-saga-backend/pkg/logger"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"
	openai "github.com/sashabaranov/go-openai"
)

// openRouterChatModel 通过 go-openai 调用 OpenRouter 的 chat-completions 接口。
// 每次 Generate 只做一次网络往返，不重试、不缓存。
type openRouterChatModel struct {
	client      *openai.Client
	apiKey      string
	model       string
	temperature float32
}

// 实现eino.ChatModel接口
func (m *openRouterChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...einoModel.Option) (*schema.Message, error) {
	req, err := m.buildRequest(messages, opts...)
	if err != nil {
		return nil, err
	}

	log := logger.WithFields(logrus.Fields{
		"model":       req.Model,
		"messages":    len(req.Messages),
		"temperature": req.Temperature,
	})
	log.Info("calling chat completion")
	if len(req.Messages) > 0 {
		log.Debugf("first message preview: role=%s content=%s", req.Messages[0].Role, preview(req.Messages[0].Content, 200))
	}

	resp, err := m.client.CreateChatCompletion(ctx, req)
	if err != nil {
		classified := classifyError(err)
		log.WithError(classified).Warn("chat completion failed")
		return nil, classified
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		log.Errorf("chat completion returned empty content, choices=%d", len(resp.Choices))
		return nil, ErrEmptyContent
	}

	content := resp.Choices[0].Message.Content
	log.Infof("chat completion succeeded, content length %d", len(content))

	return &schema.Message{
		Role:    schema.Assistant,
		Content: content,
	}, nil
}

func (m *openRouterChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	req, err := m.buildRequest(messages, opts...)
	if err != nil {
		return nil, err
	}
	req.Stream = true

	stream, err := m.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, classifyError(err)
	}

	reader, writer := schema.Pipe[*schema.Message](100)

	go func() {
		defer stream.Close()
		defer writer.Close()

		for {
			response, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				writer.Send(nil, classifyError(err))
				return
			}

			if len(response.Choices) > 0 && response.Choices[0].Delta.Content != "" {
				closed := writer.Send(&schema.Message{
					Role:    schema.Assistant,
					Content: response.Choices[0].Delta.Content,
				}, nil)
				if closed {
					return
				}
			}
		}
	}()

	return reader, nil
}

// BindTools 不支持工具调用，直接忽略
func (m *openRouterChatModel) BindTools(tools []*schema.ToolInfo) error {
	return nil
}

// buildRequest 在发起任何网络请求之前检查凭证，并应用 WithModel / WithTemperature 覆盖
func (m *openRouterChatModel) buildRequest(messages []*schema.Message, opts ...einoModel.Option) (openai.ChatCompletionRequest, error) {
	if m.apiKey == "" {
		return openai.ChatCompletionRequest{}, ErrMissingAPIKey
	}

	defaultModel := m.model
	defaultTemperature := m.temperature
	options := einoModel.GetCommonOptions(&einoModel.Options{
		Model:       &defaultModel,
		Temperature: &defaultTemperature,
	}, opts...)

	return openai.ChatCompletionRequest{
		Model:       *options.Model,
		Messages:    convertMessages(messages),
		Temperature: *options.Temperature,
	}, nil
}

// 消息格式转换，保持顺序与内容不变
func convertMessages(messages []*schema.Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		if msg == nil {
			continue
		}

		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case schema.Assistant:
			role = openai.ChatMessageRoleAssistant
		case schema.System:
			role = openai.ChatMessageRoleSystem
		}

		result = append(result, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}
	return result
}

// classifyError 把 go-openai 的错误归入 TransportError 或 ErrEmptyContent
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &TransportError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body := ""
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return &TransportError{StatusCode: reqErr.HTTPStatusCode, Body: body, Err: err}
	}

	// 网络层失败，包括连接中途被关闭
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &TransportError{Err: err}
	}

	// 200 但响应体为空、被截断或不是预期的 JSON
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrEmptyContent, err)
	}

	return &TransportError{Err: err}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
