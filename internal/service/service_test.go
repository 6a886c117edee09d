package service

import (
	"context"
	"errors"
	"sync"

	"repo-saga-backend/internal/model"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// recordedCall 记录一次 Generate 调用收到的消息与选项
type recordedCall struct {
	Messages    []*schema.Message
	Model       *string
	Temperature *float32
}

// fakeChatModel 按顺序返回预设回复，并记录每次调用
type fakeChatModel struct {
	mu      sync.Mutex
	replies []string
	errAt   int // 第几次调用（从 1 开始）返回 err，0 表示从不
	err     error
	calls   []recordedCall
}

func (f *fakeChatModel) Generate(_ context.Context, messages []*schema.Message, opts ...einoModel.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	options := einoModel.GetCommonOptions(&einoModel.Options{}, opts...)
	f.calls = append(f.calls, recordedCall{
		Messages:    messages,
		Model:       options.Model,
		Temperature: options.Temperature,
	})

	n := len(f.calls)
	if f.errAt == n {
		return nil, f.err
	}
	reply := "reply"
	if n <= len(f.replies) {
		reply = f.replies[n-1]
	}
	return schema.AssistantMessage(reply, nil), nil
}

func (f *fakeChatModel) Stream(context.Context, []*schema.Message, ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func (f *fakeChatModel) BindTools([]*schema.ToolInfo) error {
	return nil
}

func (f *fakeChatModel) Calls() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

var errUpstream = &model.TransportError{StatusCode: 503, Body: "unavailable"}
