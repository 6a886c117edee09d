// Package middleware 存放 Gin 中间件
package middleware

import (
	"time"

	"repo-saga-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestLogger 为每个请求分配 request id，并在结束时记录一条访问日志。
// 客户端带了 X-Request-ID 时沿用。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"request_id":    requestID,
			"status":        c.Writer.Status(),
			"latency":       time.Since(startTime).String(),
			"client_ip":     c.ClientIP(),
			"method":        c.Request.Method,
			"path":          c.Request.URL.Path,
			"response_size": c.Writer.Size(),
		})
		if len(c.Errors) > 0 {
			entry.WithField("errors", c.Errors.String()).Warn("HTTP request")
			return
		}
		entry.Info("HTTP request")
	}
}

// RequestID 返回当前请求的 id，中间件未启用时为空
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
