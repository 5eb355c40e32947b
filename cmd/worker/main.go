package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"remark-go/internal/config"
	"remark-go/internal/infra/database"
	infraKafka "remark-go/internal/infra/kafka"
	"remark-go/internal/model"
	"remark-go/internal/repository"
	"remark-go/pkg/logger"

	"go.uber.org/zap"
)

// 审计归档 worker：消费审计事件并落库为只追加的审计日志
func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.FilePath); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	if err := database.AutoMigrate(&model.AuditLog{}); err != nil {
		logger.Fatal("Failed to auto migrate", zap.Error(err))
	}

	auditRepo := repository.NewAuditRepository(database.Get())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号，优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	auditTopic := cfg.Kafka.Topics["audit"]
	if auditTopic == "" {
		logger.Fatal("Audit topic not configured")
	}
	groupID := "remark-go-audit-worker"

	logger.Info("Audit worker started",
		zap.String("topic", auditTopic),
		zap.String("group", groupID),
		zap.Strings("brokers", cfg.Kafka.Brokers),
	)

	handler := func(event *infraKafka.AuditEvent) error {
		return auditRepo.Create(&model.AuditLog{
			ActorID:    event.ActorID,
			Action:     event.Action,
			TargetType: event.TargetType,
			TargetID:   event.TargetID,
			Details:    event.Details,
			OccurredAt: event.OccurredAt,
		})
	}

	infraKafka.StartAuditConsumer(ctx, cfg.Kafka.Brokers, auditTopic, groupID, handler)
}
