package handler

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"time"

	"repo-saga-backend/internal/middleware"
	"repo-saga-backend/internal/model"
	"repo-saga-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

//go:embed example_saga.json
var exampleSaga []byte

// SagaGenerator 由 service.SagaService 实现
type SagaGenerator interface {
	Generate(ctx context.Context, repoURL string, presets model.GenerationPresets) (*model.SagaResult, error)
}

type SagaHandler struct {
	generator SagaGenerator
}

func NewSagaHandler(generator SagaGenerator) *SagaHandler {
	return &SagaHandler{
		generator: generator,
	}
}

// Root GET /
func (h *SagaHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to Repo Saga Engine API"})
}

// Example GET /example，返回固定示例，不调用模型。
// 示例内容以繁体中文书写，与最初的简体版本不逐字相同。
func (h *SagaHandler) Example(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", exampleSaga)
}

// Health GET /health
func (h *SagaHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

// Generate POST /generate。生成失败时仍返回 200 和固定的兜底内容
func (h *SagaHandler) Generate(c *gin.Context) {
	var req model.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	repoURL := req.RepoURL()
	presets := req.Presets()
	saga, err := h.generator.Generate(c.Request.Context(), repoURL, presets)
	if err != nil {
		logFailure("generate", err, logrus.Fields{
			"request_id": middleware.RequestID(c),
			"repo_url":   repoURL,
			"language":   presets.Language,
		})
		c.JSON(http.StatusOK, fallbackSaga(repoURL, presets.Language))
		return
	}

	c.JSON(http.StatusOK, model.NewLiteraryWorkResponse(repoURL, saga))
}

// logFailure 配置错误与临时性错误分开记录
func logFailure(op string, err error, fields logrus.Fields) {
	entry := logger.WithFields(fields).WithError(err)

	var transportErr *model.TransportError
	switch {
	case model.IsConfigError(err):
		entry.Errorf("%s failed: OpenRouter API key is not configured, set OPENROUTER_API_KEY; serving fallback", op)
	case errors.As(err, &transportErr):
		entry.WithField("status", transportErr.StatusCode).Warnf("%s failed: upstream error; serving fallback", op)
	case errors.Is(err, model.ErrEmptyContent):
		entry.Warnf("%s failed: model returned empty content; serving fallback", op)
	default:
		entry.Warnf("%s failed; serving fallback", op)
	}
}
