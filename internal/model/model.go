package model

import (
	"context"
	"net/http"
	"strings"

	"repo-saga-backend/internal/config"
	"repo-saga-backend/internal/utils"
	"repo-saga-backend/pkg/logger"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	openai "github.com/sashabaranov/go-openai"
)

// NewChatModel 根据启动时读取的配置创建 OpenRouter chat model。
// API Key 缺失时仍返回可用实例，调用 Generate 时立即返回 ErrMissingAPIKey。
func NewChatModel(cfg config.OpenRouterConfig) einoModel.ChatModel {
	if cfg.APIKey == "" {
		logger.Warnf("OPENROUTER_API_KEY is not set, every chat completion will fail until it is configured")
	} else {
		logger.Infof("Using OpenRouter model %s, API key %s", cfg.Model, maskKey(cfg.APIKey))
	}

	headers := map[string]string{}
	if cfg.SiteURL != "" {
		headers["HTTP-Referer"] = cfg.SiteURL
	}
	if cfg.AppTitle != "" {
		headers["X-Title"] = cfg.AppTitle
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	clientConfig.HTTPClient = utils.NewHTTPClient(cfg.Timeout, func(base http.RoundTripper) http.RoundTripper {
		return NewHeaderTransport(base, headers, cfg.DebugRequest)
	})

	return &openRouterChatModel{
		client:      openai.NewClientWithConfig(clientConfig),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

// Complete 调用一次 chat model 并返回首个回复的文本；空文本视为 ErrEmptyContent
func Complete(ctx context.Context, cm einoModel.ChatModel, messages []*schema.Message, opts ...einoModel.Option) (string, error) {
	msg, err := cm.Generate(ctx, messages, opts...)
	if err != nil {
		return "", err
	}
	if msg == nil || msg.Content == "" {
		return "", ErrEmptyContent
	}
	return msg.Content, nil
}

// HeaderTransport 为每个出站请求附加固定的标识请求头，debug 打开时记录脱敏后的请求头
type HeaderTransport struct {
	base    http.RoundTripper
	headers map[string]string
	debug   bool
}

func NewHeaderTransport(base http.RoundTripper, headers map[string]string, debug bool) *HeaderTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &HeaderTransport{
		base:    base,
		headers: headers,
		debug:   debug,
	}
}

// RoundTrip 实现http.RoundTripper接口
func (t *HeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) > 0 {
		req = req.Clone(req.Context())
		for name, value := range t.headers {
			req.Header.Set(name, value)
		}
	}

	if t.debug {
		t.logRequest(req)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil && t.debug {
		logger.Errorf("[OpenRouter Debug] request failed: %v", err)
	}
	return resp, err
}

func (t *HeaderTransport) logRequest(req *http.Request) {
	logger.Debugf("[OpenRouter Debug] %s %s", req.Method, req.URL.String())
	for name, values := range req.Header {
		if isSensitiveHeader(name) {
			logger.Debugf("[OpenRouter Debug]   %s: [REDACTED]", name)
			continue
		}
		logger.Debugf("[OpenRouter Debug]   %s: %s", name, strings.Join(values, ", "))
	}
}

func isSensitiveHeader(name string) bool {
	for _, sensitive := range []string{"Authorization", "X-Api-Key", "Cookie"} {
		if strings.EqualFold(name, sensitive) {
			return true
		}
	}
	return false
}

// maskKey 只保留前后少量字符
func maskKey(key string) string {
	if len(key) <= 14 {
		return "***"
	}
	return key[:10] + "..." + key[len(key)-4:]
}
