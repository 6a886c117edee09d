package model

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey 是运维可修复的配置错误，在任何网络请求之前返回
	ErrMissingAPIKey = errors.New("missing OpenRouter API key: set OPENROUTER_API_KEY")
	// ErrEmptyContent 表示响应结构上成功但没有可用文本（包括无法解析的响应）
	ErrEmptyContent = errors.New("chat completion returned empty content")
)

// TransportError 表示上游返回非 2xx 状态或网络失败（StatusCode 为 0）
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("chat completion request failed: %v", e.Err)
	}
	return fmt.Sprintf("chat completion returned status %d: %s", e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsConfigError 判断错误是否源于缺少配置
func IsConfigError(err error) bool {
	return errors.Is(err, ErrMissingAPIKey)
}
