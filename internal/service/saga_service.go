package service

import (
	"context"
	"fmt"
	"strings"

	"repo-saga-backend/internal/model"
	"repo-saga-backend/internal/repo"
	"repo-saga-backend/pkg/logger"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/sirupsen/logrus"
)

// PoemTemperature 诗歌步骤使用更高的温度
const PoemTemperature float32 = 0.9

// Describer 提供仓库元数据，可选
type Describer interface {
	Describe(ctx context.Context, id repo.Identifier) (*repo.Metadata, error)
}

// SagaService 依次生成洞察报告、诗歌与短篇小说
type SagaService struct {
	chatModel einoModel.ChatModel
	describer Describer
}

// NewSagaService describer 为 nil 时不查询仓库元数据
func NewSagaService(chatModel einoModel.ChatModel, describer Describer) *SagaService {
	return &SagaService{
		chatModel: chatModel,
		describer: describer,
	}
}

// Generate 三个步骤严格串行执行，任一步失败立即返回，不产生部分结果
func (s *SagaService) Generate(ctx context.Context, repoURL string, presets model.GenerationPresets) (*model.SagaResult, error) {
	id := repo.Extract(repoURL)
	prompts := promptsFor(presets.Language)

	log := logger.WithFields(logrus.Fields{
		"repo":     id.String(),
		"language": presets.Language,
	})
	log.Infof("Starting saga generation for %s", repoURL)

	vars := map[string]any{
		keyOwner:    id.Owner,
		keyName:     id.Name,
		keyMetadata: s.metadataHint(ctx, id, prompts),
	}

	log.Info("Step 1/3: generating insight report")
	insight, err := s.run(ctx, prompts.insight, vars)
	if err != nil {
		log.WithError(err).Error("Step 1/3 failed")
		return nil, fmt.Errorf("generate insight report: %w", err)
	}
	log.Infof("Step 1/3 completed, insight report length %d", len(insight))

	vars = map[string]any{
		keyOwner:         id.Owner,
		keyName:          id.Name,
		keyInsightReport: insight,
		keyHints:         prompts.poemHints(presets),
	}

	log.Info("Step 2/3: generating poem")
	poem, err := s.run(ctx, prompts.poem, vars, einoModel.WithTemperature(PoemTemperature))
	if err != nil {
		log.WithError(err).Error("Step 2/3 failed")
		return nil, fmt.Errorf("generate poem: %w", err)
	}
	log.Infof("Step 2/3 completed, poem length %d", len(poem))

	vars[keyHints] = prompts.novelHints(presets)

	log.Info("Step 3/3: generating novel")
	novel, err := s.run(ctx, prompts.novel, vars)
	if err != nil {
		log.WithError(err).Error("Step 3/3 failed")
		return nil, fmt.Errorf("generate novel: %w", err)
	}
	log.Infof("Step 3/3 completed, novel length %d", len(novel))

	log.Info("All steps completed")
	return &model.SagaResult{
		InsightReport: strings.TrimSpace(insight),
		Poem:          strings.TrimSpace(poem),
		Novel:         strings.TrimSpace(novel),
	}, nil
}

// run 渲染模板并调用一次模型
func (s *SagaService) run(ctx context.Context, tpl prompt.ChatTemplate, vars map[string]any, opts ...einoModel.Option) (string, error) {
	messages, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("format prompt: %w", err)
	}
	return model.Complete(ctx, s.chatModel, messages, opts...)
}

// metadataHint 查询失败只记录日志，生成继续
func (s *SagaService) metadataHint(ctx context.Context, id repo.Identifier, prompts *sagaPrompts) string {
	if s.describer == nil || id.IsUnknown() {
		return ""
	}

	md, err := s.describer.Describe(ctx, id)
	if err != nil {
		logger.Warnf("Repository metadata lookup for %s failed, continuing without it: %v", id, err)
		return ""
	}
	return prompts.metadataHint(md)
}
