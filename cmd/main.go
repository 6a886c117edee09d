package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"repo-saga-backend/internal/config"
	"repo-saga-backend/internal/handler"
	"repo-saga-backend/internal/middleware"
	"repo-saga-backend/internal/model"
	"repo-saga-backend/internal/repo"
	"repo-saga-backend/internal/service"
	"repo-saga-backend/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// 初始化服务
	chatModel := model.NewChatModel(cfg.OpenRouter)
	sagaService := service.NewSagaService(chatModel, newDescriber(cfg.GitHub))
	chatService := service.NewChatService(chatModel)

	// 初始化处理器
	sagaHandler := handler.NewSagaHandler(sagaService)
	chatHandler := handler.NewChatHandler(chatService)

	// 创建路由
	router := setupRouter(cfg, sagaHandler, chatHandler)

	// 创建HTTP服务器
	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	// 启动服务器
	go func() {
		logger.Infof("服务器启动在端口 %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 等待信号优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("服务器正在关闭...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("服务器关闭失败: %v", err)
	}
	logger.Info("服务器已关闭")
}

// newDescriber 未开启元数据补充或创建失败时返回 nil
func newDescriber(cfg config.GitHubConfig) service.Describer {
	if !cfg.EnrichMetadata {
		return nil
	}
	client, err := repo.NewMetadataClient(cfg.Token, cfg.BaseURL, cfg.Timeout)
	if err != nil {
		logger.Warnf("GitHub metadata enrichment disabled: %v", err)
		return nil
	}
	logger.Info("GitHub metadata enrichment enabled")
	return client
}

func setupRouter(cfg *config.Config, sagaHandler *handler.SagaHandler, chatHandler *handler.ChatHandler) *gin.Engine {
	// 设置gin模式
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// 中间件
	router.Use(middleware.RequestLogger())
	// panic 堆栈写入同一个 logrus 实例
	router.Use(gin.RecoveryWithWriter(logger.Logger().WriterLevel(logrus.ErrorLevel)))

	// CORS配置
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))

	router.GET("/", sagaHandler.Root)
	router.GET("/health", sagaHandler.Health)
	router.GET("/example", sagaHandler.Example)
	router.POST("/generate", sagaHandler.Generate)
	router.POST("/chat", chatHandler.Chat)

	return router
}
